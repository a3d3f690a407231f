package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hibiken/asynq"

	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/models"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/service"
)

type fakePostRepo struct {
	posts     map[int64]*models.Post
	denyClaim map[int64]bool
	published map[int64]time.Time
	failed    map[int64]bool
}

func newFakePostRepo(posts ...*models.Post) *fakePostRepo {
	r := &fakePostRepo{
		posts:     make(map[int64]*models.Post),
		denyClaim: make(map[int64]bool),
		published: make(map[int64]time.Time),
		failed:    make(map[int64]bool),
	}
	for _, p := range posts {
		r.posts[p.ID] = p
	}
	return r
}

func (r *fakePostRepo) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	return 0, errors.New("not implemented")
}

func (r *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	return r.posts[id], nil
}

func (r *fakePostRepo) GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	return nil, nil
}

func (r *fakePostRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Post, error) {
	var due []*models.Post
	for _, p := range r.posts {
		if p.Status == models.PostStatusScheduled && p.ScheduledFor != nil && !p.ScheduledFor.After(now) {
			due = append(due, p)
		}
		if len(due) == limit {
			break
		}
	}
	return due, nil
}

func (r *fakePostRepo) ClaimForProcessing(ctx context.Context, id int64) (bool, error) {
	if r.denyClaim[id] {
		return false, nil
	}
	p := r.posts[id]
	if p == nil || p.Status != models.PostStatusScheduled {
		return false, nil
	}
	p.Status = models.PostStatusProcessing
	return true, nil
}

func (r *fakePostRepo) MarkPublished(ctx context.Context, id int64, publishedAt time.Time) error {
	r.published[id] = publishedAt
	r.posts[id].Status = models.PostStatusPublished
	return nil
}

func (r *fakePostRepo) MarkFailed(ctx context.Context, id int64) error {
	r.failed[id] = true
	r.posts[id].Status = models.PostStatusFailed
	return nil
}

func (r *fakePostRepo) Update(ctx context.Context, post *models.Post) error { return nil }

func (r *fakePostRepo) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	return false, nil
}

func (r *fakePostRepo) Remove(ctx context.Context, id int64) error { return nil }

type platformCall struct {
	platformPostID string
	errorMessage   string
	status         string
}

type fakePlatformPostRepo struct {
	calls map[string]platformCall
}

func newFakePlatformPostRepo() *fakePlatformPostRepo {
	return &fakePlatformPostRepo{calls: make(map[string]platformCall)}
}

func key(postID int64, platform string) string {
	return fmt.Sprintf("%d/%s", postID, platform)
}

func (r *fakePlatformPostRepo) Create(ctx context.Context, tx *sql.Tx, pp *models.PlatformPost) (int64, error) {
	return 0, nil
}

func (r *fakePlatformPostRepo) ListByPostID(ctx context.Context, postID int64) ([]*models.PlatformPost, error) {
	return nil, nil
}

func (r *fakePlatformPostRepo) UpsertPending(ctx context.Context, postID int64, platform, platformPostID string) error {
	r.calls[key(postID, platform)] = platformCall{platformPostID: platformPostID, status: models.PlatformPostStatusPending}
	return nil
}

func (r *fakePlatformPostRepo) SetPublished(ctx context.Context, postID int64, platform, platformPostID string, publishedAt time.Time) error {
	r.calls[key(postID, platform)] = platformCall{platformPostID: platformPostID, status: models.PlatformPostStatusPublished}
	return nil
}

func (r *fakePlatformPostRepo) SetFailed(ctx context.Context, postID int64, platform, errorMessage string) error {
	r.calls[key(postID, platform)] = platformCall{errorMessage: errorMessage, status: models.PlatformPostStatusFailed}
	return nil
}

func (r *fakePlatformPostRepo) FailAllForPost(ctx context.Context, postID int64, errorMessage string) error {
	r.calls[key(postID, "*")] = platformCall{errorMessage: errorMessage, status: models.PlatformPostStatusFailed}
	return nil
}

type fakeAccountRepo struct {
	active map[string]*models.ConnectedAccount
}

func (r *fakeAccountRepo) Upsert(ctx context.Context, acc *models.ConnectedAccount) (int64, error) {
	return 0, nil
}

func (r *fakeAccountRepo) GetByID(ctx context.Context, id int64) (*models.ConnectedAccount, error) {
	return nil, nil
}

func (r *fakeAccountRepo) GetActive(ctx context.Context, userID int64, platform string) (*models.ConnectedAccount, error) {
	return r.active[platform], nil
}

func (r *fakeAccountRepo) ListInfoByUserID(ctx context.Context, userID int64) ([]*models.ConnectedAccount, error) {
	return nil, nil
}

func (r *fakeAccountRepo) ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.ConnectedAccount, error) {
	return nil, nil
}

func (r *fakeAccountRepo) CheckByUserID(ctx context.Context, accountID, userID int64) (bool, error) {
	return false, nil
}

func (r *fakeAccountRepo) SetToken(ctx context.Context, accountID int64, oldAccessToken, accessToken string, expiresAt time.Time) error {
	return nil
}

func (r *fakeAccountRepo) Remove(ctx context.Context, id int64) error { return nil }

type fakeMediaRepo struct {
	assets map[int64]*models.MediaAsset
}

func (r *fakeMediaRepo) Create(ctx context.Context, tx *sql.Tx, ma *models.MediaAsset) (int64, error) {
	return 0, nil
}

func (r *fakeMediaRepo) GetByID(ctx context.Context, id int64) (*models.MediaAsset, error) {
	return r.assets[id], nil
}

func (r *fakeMediaRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.MediaAsset, error) {
	return nil, nil
}

func (r *fakeMediaRepo) CheckByUserID(ctx context.Context, assetID, userID int64) (bool, error) {
	return false, nil
}

func (r *fakeMediaRepo) Remove(ctx context.Context, id int64) error { return nil }

type fakeResolver struct {
	data []byte
	err  error
}

func (f *fakeResolver) Resolve(ctx context.Context, asset *models.MediaAsset) ([]byte, error) {
	return f.data, f.err
}

type fakePublisher struct {
	simulated bool
	outcome   *service.PublishOutcome
	failFor   map[int64]error
	calls     int
}

func (p *fakePublisher) Publish(ctx context.Context, acc *models.ConnectedAccount, post *models.Post, media []byte, scheduledFor *time.Time) (*service.PublishOutcome, error) {
	p.calls++
	if err := p.failFor[post.ID]; err != nil {
		return nil, err
	}
	return p.outcome, nil
}

func (p *fakePublisher) Simulated() bool { return p.simulated }

func duePost(id int64, platforms ...string) *models.Post {
	past := time.Now().Add(-time.Minute)
	return &models.Post{
		ID:           id,
		UserID:       7,
		Title:        "Release day",
		Status:       models.PostStatusScheduled,
		ScheduledFor: &past,
		Platforms:    platforms,
		MediaIDs:     []int64{1},
	}
}

func newTestProcessor(pr *fakePostRepo, pp *fakePlatformPostRepo, resolver service.MediaResolver, publishers map[string]service.PlatformPublisher) *Processor {
	sa := &fakeAccountRepo{active: map[string]*models.ConnectedAccount{
		models.PlatformYoutube: {ID: 1, UserID: 7, Platform: models.PlatformYoutube},
	}}
	ma := &fakeMediaRepo{assets: map[int64]*models.MediaAsset{
		1: {ID: 1, UserID: 7, FileType: models.MediaTypeVideo, StoragePath: "7/a.mp4"},
	}}
	return NewProcessor(pr, pp, sa, ma, resolver, publishers)
}

func TestRunPublishesDuePost(t *testing.T) {
	pr := newFakePostRepo(duePost(1, models.PlatformYoutube))
	pp := newFakePlatformPostRepo()
	yt := &fakePublisher{outcome: &service.PublishOutcome{PlatformPostID: "vid123", Status: models.PlatformPostStatusPublished}}

	p := newTestProcessor(pr, pp, &fakeResolver{data: []byte("video")}, map[string]service.PlatformPublisher{
		models.PlatformYoutube: yt,
	})

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Processed != 1 {
		t.Fatalf("expected processed=1 got %d", summary.Processed)
	}
	if !summary.Results[0].Success {
		t.Fatalf("expected success, got error %q", summary.Results[0].Error)
	}
	if _, ok := pr.published[1]; !ok {
		t.Fatal("post was not marked published")
	}
	call := pp.calls[key(1, models.PlatformYoutube)]
	if call.status != models.PlatformPostStatusPublished || call.platformPostID != "vid123" {
		t.Fatalf("unexpected platform post call: %+v", call)
	}
}

func TestRunSkipsAlreadyClaimedPost(t *testing.T) {
	pr := newFakePostRepo(duePost(1, models.PlatformYoutube))
	pr.denyClaim[1] = true
	pp := newFakePlatformPostRepo()
	yt := &fakePublisher{outcome: &service.PublishOutcome{PlatformPostID: "vid123", Status: models.PlatformPostStatusPublished}}

	p := newTestProcessor(pr, pp, &fakeResolver{data: []byte("video")}, map[string]service.PlatformPublisher{
		models.PlatformYoutube: yt,
	})

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Processed != 0 {
		t.Fatalf("expected processed=0 got %d", summary.Processed)
	}
	if yt.calls != 0 {
		t.Fatalf("publisher should not have been called, got %d calls", yt.calls)
	}
}

func TestRunIsolatesFailingPost(t *testing.T) {
	pr := newFakePostRepo(duePost(1, models.PlatformYoutube), duePost(2, models.PlatformYoutube))
	pp := newFakePlatformPostRepo()
	yt := &fakePublisher{
		outcome: &service.PublishOutcome{PlatformPostID: "vid456", Status: models.PlatformPostStatusPublished},
		failFor: map[int64]error{1: errors.New("upload rejected")},
	}

	p := newTestProcessor(pr, pp, &fakeResolver{data: []byte("video")}, map[string]service.PlatformPublisher{
		models.PlatformYoutube: yt,
	})

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Processed != 2 {
		t.Fatalf("expected processed=2 got %d", summary.Processed)
	}
	if !pr.failed[1] {
		t.Fatal("failing post was not marked failed")
	}
	if _, ok := pr.published[2]; !ok {
		t.Fatal("healthy post was not published")
	}
	call := pp.calls[key(1, models.PlatformYoutube)]
	if call.status != models.PlatformPostStatusFailed || call.errorMessage == "" {
		t.Fatalf("expected failed platform row with message, got %+v", call)
	}
}

func TestRunIsolatesFailingPlatform(t *testing.T) {
	pr := newFakePostRepo(duePost(1, models.PlatformYoutube, models.PlatformInstagram))
	pp := newFakePlatformPostRepo()
	yt := &fakePublisher{failFor: map[int64]error{1: errors.New("no channel")}}
	ig := &fakePublisher{
		simulated: true,
		outcome:   &service.PublishOutcome{PlatformPostID: "ig_1", Status: models.PlatformPostStatusPending},
	}

	p := newTestProcessor(pr, pp, &fakeResolver{data: []byte("video")}, map[string]service.PlatformPublisher{
		models.PlatformYoutube:   yt,
		models.PlatformInstagram: ig,
	})

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	ytCall := pp.calls[key(1, models.PlatformYoutube)]
	if ytCall.status != models.PlatformPostStatusFailed {
		t.Fatalf("expected youtube row failed, got %+v", ytCall)
	}
	igCall := pp.calls[key(1, models.PlatformInstagram)]
	if igCall.status != models.PlatformPostStatusPending || igCall.platformPostID != "ig_1" {
		t.Fatalf("expected instagram placeholder pending, got %+v", igCall)
	}
	if !pr.failed[1] {
		t.Fatal("post was not marked failed")
	}
}

func TestRunMediaFailureFailsAllPlatforms(t *testing.T) {
	pr := newFakePostRepo(duePost(1, models.PlatformYoutube))
	pp := newFakePlatformPostRepo()
	yt := &fakePublisher{}

	p := newTestProcessor(pr, pp, &fakeResolver{err: errors.New("object missing")}, map[string]service.PlatformPublisher{
		models.PlatformYoutube: yt,
	})

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Results[0].Success {
		t.Fatal("expected failure result")
	}
	if yt.calls != 0 {
		t.Fatal("publisher should not run when media cannot be resolved")
	}
	call := pp.calls[key(1, "*")]
	if call.status != models.PlatformPostStatusFailed {
		t.Fatalf("expected all platform rows failed, got %+v", call)
	}
	if !pr.failed[1] {
		t.Fatal("post was not marked failed")
	}
}

func TestRunSecondSweepFindsNothing(t *testing.T) {
	pr := newFakePostRepo(duePost(1, models.PlatformYoutube))
	pp := newFakePlatformPostRepo()
	yt := &fakePublisher{outcome: &service.PublishOutcome{PlatformPostID: "vid123", Status: models.PlatformPostStatusPublished}}

	p := newTestProcessor(pr, pp, &fakeResolver{data: []byte("video")}, map[string]service.PlatformPublisher{
		models.PlatformYoutube: yt,
	})

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if summary.Processed != 0 {
		t.Fatalf("expected second sweep to be empty, processed %d", summary.Processed)
	}
	if yt.calls != 1 {
		t.Fatalf("expected exactly one publish call, got %d", yt.calls)
	}
}

func TestHandleSchedulePostTask(t *testing.T) {
	pr := newFakePostRepo(duePost(1, models.PlatformYoutube))
	pp := newFakePlatformPostRepo()
	yt := &fakePublisher{outcome: &service.PublishOutcome{PlatformPostID: "vid123", Status: models.PlatformPostStatusPublished}}

	p := newTestProcessor(pr, pp, &fakeResolver{data: []byte("video")}, map[string]service.PlatformPublisher{
		models.PlatformYoutube: yt,
	})

	payload, _ := json.Marshal(SchedulePostPayload{PostID: 1})
	task := asynq.NewTask(TaskTypeSchedulePost, payload)

	if err := p.HandleSchedulePostTask(context.Background(), task); err != nil {
		t.Fatalf("HandleSchedulePostTask: %v", err)
	}
	if _, ok := pr.published[1]; !ok {
		t.Fatal("post was not published")
	}

	// The same task firing again must be a no-op.
	if err := p.HandleSchedulePostTask(context.Background(), task); err != nil {
		t.Fatalf("second HandleSchedulePostTask: %v", err)
	}
	if yt.calls != 1 {
		t.Fatalf("expected exactly one publish call, got %d", yt.calls)
	}
}
