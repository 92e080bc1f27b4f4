package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/technicalserena/tunegram/internal/gate"
	"github.com/technicalserena/tunegram/internal/store"
)

type memUserStore struct {
	records map[int64]*store.UserRecord
}

func newMemUserStore() *memUserStore {
	return &memUserStore{records: map[int64]*store.UserRecord{}}
}

func (m *memUserStore) Get(_ context.Context, userID int64) (*store.UserRecord, error) {
	rec, ok := m.records[userID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *memUserStore) EnsureExists(_ context.Context, userID int64, displayName string) error {
	if _, ok := m.records[userID]; !ok {
		m.records[userID] = &store.UserRecord{UserID: userID, DisplayName: displayName, CreatedAt: time.Now()}
	}
	return nil
}

func (m *memUserStore) SetPremiumUntil(_ context.Context, userID int64, until time.Time) error {
	rec, ok := m.records[userID]
	if !ok {
		rec = &store.UserRecord{UserID: userID}
		m.records[userID] = rec
	}
	rec.PremiumUntil = &until
	return nil
}

func (m *memUserStore) ClearPremium(_ context.Context, userID int64) error {
	if rec, ok := m.records[userID]; ok {
		rec.PremiumUntil = nil
	}
	return nil
}

func (m *memUserStore) SetLastSentAt(_ context.Context, userID int64, at time.Time) error {
	rec, ok := m.records[userID]
	if !ok {
		rec = &store.UserRecord{UserID: userID}
		m.records[userID] = rec
	}
	rec.LastSentAt = &at
	return nil
}

func (m *memUserStore) ListUserIDs(_ context.Context) ([]int64, error) {
	ids := make([]int64, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	return ids, nil
}

type fakeTitles struct {
	title string
	err   error
	calls int
}

func (f *fakeTitles) VideoTitle(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.title, f.err
}

// fakeExtractor writes a real file so cleanup can be observed.
type fakeExtractor struct {
	dir   string
	err   error
	calls int
	path  string
	title string
}

func (f *fakeExtractor) Extract(_ context.Context, videoID, title string) (string, error) {
	f.calls++
	f.title = title
	if f.err != nil {
		return "", f.err
	}
	f.path = filepath.Join(f.dir, videoID+".mp3")
	if err := os.WriteFile(f.path, []byte("audio"), 0o644); err != nil {
		return "", err
	}
	return f.path, nil
}

type fakeDeliverer struct {
	err   error
	calls int
	path  string
	title string
}

func (f *fakeDeliverer) SendAudio(_ context.Context, _ int64, path, title string) error {
	f.calls++
	f.path = path
	f.title = title
	return f.err
}

func newTestPipeline(t *testing.T, users store.UserStore) (*Pipeline, *fakeTitles, *fakeExtractor, *fakeDeliverer) {
	t.Helper()
	titles := &fakeTitles{title: "Test Song"}
	extractor := &fakeExtractor{dir: t.TempDir()}
	deliverer := &fakeDeliverer{}
	g := gate.New(users, 10*time.Second)
	return NewPipeline(g, titles, extractor, deliverer), titles, extractor, deliverer
}

func TestPipelineDelivers(t *testing.T) {
	users := newMemUserStore()
	p, _, extractor, deliverer := newTestPipeline(t, users)

	res := p.Run(context.Background(), 42, "abc123")
	if res.State != StateDelivered {
		t.Fatalf("state = %q, want %q (err: %v)", res.State, StateDelivered, res.Err)
	}
	if res.Title != "Test Song" {
		t.Errorf("title = %q, want %q", res.Title, "Test Song")
	}
	if deliverer.calls != 1 || deliverer.path != extractor.path {
		t.Errorf("deliverer calls = %d path = %q, want 1 call with %q", deliverer.calls, deliverer.path, extractor.path)
	}
	rec, _ := users.Get(context.Background(), 42)
	if rec == nil || rec.LastSentAt == nil {
		t.Error("last sent timestamp not recorded after delivery")
	}
	if _, err := os.Stat(extractor.path); !os.IsNotExist(err) {
		t.Errorf("artifact %q not cleaned up after delivery", extractor.path)
	}
}

func TestPipelineRejectsDuringCooldown(t *testing.T) {
	users := newMemUserStore()
	p, _, extractor, deliverer := newTestPipeline(t, users)

	now := time.Now().UTC()
	if err := users.SetLastSentAt(context.Background(), 42, now); err != nil {
		t.Fatal(err)
	}

	res := p.Run(context.Background(), 42, "abc123")
	if res.State != StateRejectedCooldown {
		t.Fatalf("state = %q, want %q", res.State, StateRejectedCooldown)
	}
	if res.Wait <= 0 || res.Wait > 10*time.Second {
		t.Errorf("wait = %v, want within (0, 10s]", res.Wait)
	}
	if extractor.calls != 0 {
		t.Error("extraction attempted during cooldown")
	}
	if deliverer.calls != 0 {
		t.Error("delivery attempted during cooldown")
	}
}

func TestPipelineTitleFallback(t *testing.T) {
	users := newMemUserStore()
	p, titles, extractor, deliverer := newTestPipeline(t, users)
	titles.err = errors.New("quota exceeded")
	titles.title = ""

	res := p.Run(context.Background(), 42, "abc123")
	if res.State != StateDelivered {
		t.Fatalf("state = %q, want %q (err: %v)", res.State, StateDelivered, res.Err)
	}
	if extractor.title != "abc123" {
		t.Errorf("extractor title = %q, want raw video id", extractor.title)
	}
	if deliverer.title != "abc123" {
		t.Errorf("deliverer title = %q, want raw video id", deliverer.title)
	}
}

func TestPipelineExtractionFailure(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantState string
	}{
		{"download error", errors.New("yt-dlp exited 1"), StateFailedDownload},
		{"missing artifact", ErrMissingArtifact, StateFailedMissingArtifact},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := newMemUserStore()
			p, _, extractor, deliverer := newTestPipeline(t, users)
			extractor.err = tt.err

			res := p.Run(context.Background(), 42, "abc123")
			if res.State != tt.wantState {
				t.Fatalf("state = %q, want %q", res.State, tt.wantState)
			}
			if deliverer.calls != 0 {
				t.Error("delivery attempted after failed extraction")
			}
			rec, _ := users.Get(context.Background(), 42)
			if rec != nil && rec.LastSentAt != nil {
				t.Error("last sent recorded for a failed run")
			}
		})
	}
}

func TestPipelineDeliveryFailureStillCleansUp(t *testing.T) {
	users := newMemUserStore()
	p, _, extractor, deliverer := newTestPipeline(t, users)
	deliverer.err = errors.New("forbidden: bot was blocked by the user")

	res := p.Run(context.Background(), 42, "abc123")
	if res.State != StateFailedDelivery {
		t.Fatalf("state = %q, want %q", res.State, StateFailedDelivery)
	}
	if _, err := os.Stat(extractor.path); !os.IsNotExist(err) {
		t.Errorf("artifact %q not cleaned up after failed delivery", extractor.path)
	}
	rec, _ := users.Get(context.Background(), 42)
	if rec != nil && rec.LastSentAt != nil {
		t.Error("last sent recorded for a failed delivery")
	}
}

func TestResultFailed(t *testing.T) {
	tests := []struct {
		state string
		want  bool
	}{
		{StateDelivered, false},
		{StateRejectedCooldown, false},
		{StateFailedDownload, true},
		{StateFailedMissingArtifact, true},
		{StateFailedDelivery, true},
		{StateFailedGate, true},
	}
	for _, tt := range tests {
		if got := (Result{State: tt.state}).Failed(); got != tt.want {
			t.Errorf("Failed(%q) = %v, want %v", tt.state, got, tt.want)
		}
	}
}
