package transfer

// PostCreation is the composer payload. ScheduledFor is optional; when
// empty the post is published immediately (or kept as a draft).
type PostCreation struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
	MediaIDs     []int64  `json:"media_ids"`
	Platforms    []string `json:"platforms"`
	ScheduledFor string   `json:"scheduled_for"`
	Draft        bool     `json:"draft"`
}

type PostUpdate struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
	ScheduledFor string   `json:"scheduled_for"`
}
