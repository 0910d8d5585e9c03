package session

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"spelling-service/internal/constants"
	"spelling-service/internal/models"
	"spelling-service/internal/selector"
)

type fakeMessenger struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeMessenger) Broadcast(channel, event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, channel+":"+event)
}

func (f *fakeMessenger) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return ""
	}
	return f.events[len(f.events)-1]
}

func (f *fakeMessenger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func testBroadcaster() (*Broadcaster, *fakeMessenger) {
	m := &fakeMessenger{}
	b := NewBroadcaster(selector.New(rand.New(rand.NewSource(1))), m, nil)
	return b, m
}

func testPool() []models.Word {
	return []models.Word{
		{ID: "1", Text: "hive", SourceTier: constants.SourceTierAuthoritative},
		{ID: "2", Text: "nectar", SourceTier: constants.SourceTierAuthoritative},
		{ID: "3", Text: "pollen", SourceTier: constants.SourceTierSupplementary},
	}
}

func TestStartSessionActivatesAndBroadcasts(t *testing.T) {
	b, m := testBroadcaster()
	ctx := context.Background()

	words, err := b.StartSession(ctx, StartRequest{
		ClassID:          "c1",
		Mode:             constants.SessionModeStandard,
		PerWordTimerSecs: 30,
		WordLimit:        selector.CountAll,
	}, testPool())
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if len(words) != 2 {
		t.Errorf("selected %d words, want the 2 authoritative ones", len(words))
	}
	if m.last() != "c1:"+EventTestStarted {
		t.Errorf("last broadcast = %s, want test_started on c1", m.last())
	}

	cfg, ok := b.CurrentSession(ctx, "c1")
	if !ok || !cfg.Active {
		t.Fatal("late joiner must see the active config")
	}
}

func TestStartSessionRefusesEmptyPool(t *testing.T) {
	b, m := testBroadcaster()
	ctx := context.Background()

	pool := []models.Word{
		{ID: "1", Text: "pollen", SourceTier: constants.SourceTierSupplementary},
	}
	_, err := b.StartSession(ctx, StartRequest{
		ClassID:   "c1",
		Mode:      constants.SessionModeStandard,
		WordLimit: selector.CountAll,
	}, pool)
	if !errors.Is(err, ErrNoWordsAvailable) {
		t.Fatalf("StartSession() error = %v, want ErrNoWordsAvailable", err)
	}
	if m.count() != 0 {
		t.Error("a refused start must not broadcast anything")
	}
	if _, ok := b.CurrentSession(ctx, "c1"); ok {
		t.Error("a refused start must not activate a config")
	}
}

func TestStartSessionSupersedesPrior(t *testing.T) {
	b, _ := testBroadcaster()
	ctx := context.Background()

	if _, err := b.StartSession(ctx, StartRequest{
		ClassID: "c1", Mode: constants.SessionModeStandard, WordLimit: selector.CountAll,
	}, testPool()); err != nil {
		t.Fatal(err)
	}
	first, _ := b.CurrentSession(ctx, "c1")

	if _, err := b.StartSession(ctx, StartRequest{
		ClassID: "c1", Mode: constants.SessionModeRush, GlobalTimerSecs: 60, WordLimit: selector.CountAll,
	}, testPool()); err != nil {
		t.Fatal(err)
	}

	cfg, _ := b.CurrentSession(ctx, "c1")
	if cfg.Mode != constants.SessionModeRush {
		t.Errorf("current mode = %s, want the superseding rush config", cfg.Mode)
	}
	if b.IsCurrent("c1", first.Generation) {
		t.Error("the superseded generation must no longer be current")
	}
	if !b.IsCurrent("c1", cfg.Generation) {
		t.Error("the superseding generation must be current")
	}
}

func TestStopSessionIdempotent(t *testing.T) {
	b, m := testBroadcaster()
	ctx := context.Background()

	if _, err := b.StartSession(ctx, StartRequest{
		ClassID: "c1", Mode: constants.SessionModeStandard, WordLimit: selector.CountAll,
	}, testPool()); err != nil {
		t.Fatal(err)
	}

	b.StopSession(ctx, "c1")
	stops := m.count()
	b.StopSession(ctx, "c1")

	if m.count() != stops {
		t.Error("second stop must not broadcast again")
	}
	cfg, ok := b.CurrentSession(ctx, "c1")
	if !ok || cfg.Active {
		t.Error("config must stay inactive after repeated stops")
	}

	// Unknown class is also a no-op.
	b.StopSession(ctx, "ghost")
}

func TestPushWordRequiresActiveSession(t *testing.T) {
	b, m := testBroadcaster()
	ctx := context.Background()
	word := models.Word{ID: "1", Text: "hive"}

	if err := b.PushWord(ctx, "c1", word); !errors.Is(err, ErrSessionSuperseded) {
		t.Errorf("PushWord() with no session error = %v, want ErrSessionSuperseded", err)
	}

	if _, err := b.StartSession(ctx, StartRequest{
		ClassID: "c1", Mode: constants.SessionModeStandard, WordLimit: selector.CountAll,
	}, testPool()); err != nil {
		t.Fatal(err)
	}
	if err := b.PushWord(ctx, "c1", word); err != nil {
		t.Errorf("PushWord() on active session error = %v", err)
	}
	if m.last() != "c1:"+EventNewWord {
		t.Errorf("last broadcast = %s, want new_word on c1", m.last())
	}

	b.StopSession(ctx, "c1")
	if err := b.PushWord(ctx, "c1", word); !errors.Is(err, ErrSessionSuperseded) {
		t.Errorf("PushWord() after stop error = %v, want ErrSessionSuperseded", err)
	}
}
