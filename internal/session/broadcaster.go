package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"spelling-service/internal/models"
	"spelling-service/internal/selector"
	"spelling-service/pkg/cache"
)

// Events pushed on a class channel.
const (
	EventTestStarted = "test_started"
	EventTestStopped = "test_stopped"
	EventNewWord     = "new_word"
)

const configTTL = 24 * time.Hour

var (
	ErrNoWordsAvailable  = selector.ErrNoWordsAvailable
	ErrSessionSuperseded = errors.New("session config superseded or stopped")
)

// Messenger is the injected transport used to push events to everyone
// subscribed to a class channel. The websocket hub implements it in
// production; tests use a double.
type Messenger interface {
	Broadcast(channel, event string, payload any)
}

type StartRequest struct {
	ClassID          string
	Mode             string
	GlobalTimerSecs  int
	PerWordTimerSecs int
	WordLimit        int
}

type TestStartedPayload struct {
	Mode             string `json:"mode"`
	GlobalTimerSecs  int    `json:"global_timer_seconds"`
	PerWordTimerSecs int    `json:"per_word_timer_seconds"`
	WordLimit        int    `json:"word_limit"`
}

type TestStoppedPayload struct {
	ClassID string `json:"class_id"`
}

// Broadcaster is the single source of truth for "is class X currently under
// a live test, and with what configuration". The config is held as durable
// per-class state rather than only an ephemeral event so late subscribers
// still get catch-up. Concurrent starts for one class resolve last-write-
// wins; starting a test is an explicit, rare, human-triggered action.
type Broadcaster struct {
	mu         sync.RWMutex
	sessions   map[string]models.SessionConfig
	generation int64

	selector  *selector.Selector
	messenger Messenger
	redis     *cache.RedisClient
}

func NewBroadcaster(sel *selector.Selector, messenger Messenger, redis *cache.RedisClient) *Broadcaster {
	return &Broadcaster{
		sessions:  make(map[string]models.SessionConfig),
		selector:  sel,
		messenger: messenger,
		redis:     redis,
	}
}

// StartSession activates a live test for the class, superseding any prior
// config, and returns the selected word list for the run. Graded tests only
// draw authoritative words; an empty filtered pool refuses to activate with
// ErrNoWordsAvailable.
func (b *Broadcaster) StartSession(ctx context.Context, req StartRequest, pool []models.Word) ([]models.Word, error) {
	words, err := b.selector.Select(pool, selector.Options{
		SourceFilter: selector.FilterAuthoritative,
		Count:        req.WordLimit,
	})
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.generation++
	cfg := models.SessionConfig{
		ClassID:          req.ClassID,
		Active:           true,
		Mode:             req.Mode,
		GlobalTimerSecs:  req.GlobalTimerSecs,
		PerWordTimerSecs: req.PerWordTimerSecs,
		WordLimit:        req.WordLimit,
		Generation:       b.generation,
	}
	b.sessions[req.ClassID] = cfg
	b.mu.Unlock()

	b.mirrorConfig(ctx, cfg)

	b.messenger.Broadcast(req.ClassID, EventTestStarted, TestStartedPayload{
		Mode:             cfg.Mode,
		GlobalTimerSecs:  cfg.GlobalTimerSecs,
		PerWordTimerSecs: cfg.PerWordTimerSecs,
		WordLimit:        cfg.WordLimit,
	})

	log.Printf("Live test started: class=%s mode=%s words=%d", req.ClassID, req.Mode, len(words))
	return words, nil
}

// StopSession idempotently marks the class config inactive. Already-inactive
// or unknown classes are a no-op, never an error.
func (b *Broadcaster) StopSession(ctx context.Context, classID string) {
	b.mu.Lock()
	cfg, ok := b.sessions[classID]
	if !ok || !cfg.Active {
		b.mu.Unlock()
		return
	}
	cfg.Active = false
	b.sessions[classID] = cfg
	b.mu.Unlock()

	b.mirrorConfig(ctx, cfg)

	b.messenger.Broadcast(classID, EventTestStopped, TestStoppedPayload{ClassID: classID})
	log.Printf("Live test stopped: class=%s", classID)
}

// CurrentSession returns the latest config for the class, including to
// clients that subscribe after StartSession already ran. Falls back to the
// redis mirror so a restarted instance still answers late joiners.
func (b *Broadcaster) CurrentSession(ctx context.Context, classID string) (models.SessionConfig, bool) {
	b.mu.RLock()
	cfg, ok := b.sessions[classID]
	b.mu.RUnlock()
	if ok {
		return cfg, true
	}

	if b.redis == nil {
		return models.SessionConfig{}, false
	}
	data, err := b.redis.Get(ctx, configKey(classID))
	if err != nil {
		return models.SessionConfig{}, false
	}
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		log.Printf("Failed to decode mirrored session config for class %s: %v", classID, err)
		return models.SessionConfig{}, false
	}

	b.mu.Lock()
	if _, exists := b.sessions[classID]; !exists {
		b.sessions[classID] = cfg
	}
	b.mu.Unlock()
	return cfg, true
}

// PushWord broadcasts the next prompt to the class channel. Words are only
// pushed while the test is active.
func (b *Broadcaster) PushWord(ctx context.Context, classID string, word models.Word) error {
	cfg, ok := b.CurrentSession(ctx, classID)
	if !ok || !cfg.Active {
		return ErrSessionSuperseded
	}
	b.messenger.Broadcast(classID, EventNewWord, word)
	return nil
}

// IsCurrent reports whether the given generation is still the authoritative
// active config for the class. A running engine checks this to detect that
// it was stopped or replaced and must abort its countdown.
func (b *Broadcaster) IsCurrent(classID string, generation int64) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	cfg, ok := b.sessions[classID]
	return ok && cfg.Active && cfg.Generation == generation
}

func (b *Broadcaster) mirrorConfig(ctx context.Context, cfg models.SessionConfig) {
	if b.redis == nil {
		return
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return
	}
	if err := b.redis.Set(ctx, configKey(cfg.ClassID), string(data), configTTL); err != nil {
		log.Printf("Failed to mirror session config for class %s: %v", cfg.ClassID, err)
	}
}

func configKey(classID string) string {
	return fmt.Sprintf("session:%s:config", classID)
}
