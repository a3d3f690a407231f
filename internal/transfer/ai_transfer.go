package transfer

type GenerateRequest struct {
	Platform       string   `json:"platform"`    // youtube, instagram, tiktok
	ContentType    string   `json:"contentType"` // title, description, hashtags, tags, all
	VideoTitle     string   `json:"videoTitle"`
	VideoDesc      string   `json:"videoDescription"`
	Keywords       []string `json:"keywords"`
	VoiceProfileID int64    `json:"voiceProfileId"`
}

type GenerateResult struct {
	Titles       []string `json:"titles,omitempty"`
	Descriptions []string `json:"descriptions,omitempty"`
	Hashtags     []string `json:"hashtags,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}
