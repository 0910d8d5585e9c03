package websocket

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"spelling-service/internal/constants"
	"spelling-service/internal/models"
	"spelling-service/internal/session"
)

// liveTest is the server-side state of one teacher-driven class run. The
// generation pins it to the broadcaster config that created it; a stop or a
// restart makes every pending timer for the old generation a no-op.
type liveTest struct {
	classID      string
	generation   int64
	words        []models.Word
	index        int
	mode         string
	perWordSecs  int
	scores       map[string]int
	answered     map[string]int    // userID -> 1 + index of last answered word
	schools      map[string]string // captured at answer time, survives disconnects
	startedAt    time.Time
	advanceTimer *time.Timer
	endTimer     *time.Timer
}

func (h *Hub) handleStartTest(c *Client, payload any) {
	var req StartTestPayload
	if err := decodePayload(payload, &req); err != nil {
		c.SendError("Invalid start_test payload")
		return
	}
	if req.ClassID == "" {
		req.ClassID = c.ClassID
	}
	if req.Mode == "" {
		req.Mode = constants.SessionModeStandard
	}
	if req.WordLimit <= 0 {
		req.WordLimit = h.gameCfg.DefaultWordLimit
	}
	if req.PerWordTimerSecs <= 0 {
		req.PerWordTimerSecs = h.gameCfg.DefaultPerWordSeconds
	}
	if req.Mode == constants.SessionModeRush && req.GlobalTimerSecs <= 0 {
		req.GlobalTimerSecs = h.gameCfg.DefaultGlobalSeconds
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := h.wordClient.GetWords(ctx, req.ClassID)
	if err != nil {
		log.Printf("Failed to fetch word pool for class %s: %v", req.ClassID, err)
		c.SendError("Could not load words for this class")
		return
	}

	words, err := h.broadcaster.StartSession(ctx, session.StartRequest{
		ClassID:          req.ClassID,
		Mode:             req.Mode,
		GlobalTimerSecs:  req.GlobalTimerSecs,
		PerWordTimerSecs: req.PerWordTimerSecs,
		WordLimit:        req.WordLimit,
	}, pool)
	if err != nil {
		if errors.Is(err, session.ErrNoWordsAvailable) {
			c.SendError("No authoritative words available for this class")
		} else {
			c.SendError("Could not start the test")
		}
		return
	}

	cfg, _ := h.broadcaster.CurrentSession(ctx, req.ClassID)

	// The live test takes over the class channel; solo runs in this class
	// are superseded without a Result.
	h.supersedeSoloRuns(req.ClassID)

	h.liveMu.Lock()
	if prev, ok := h.liveTests[req.ClassID]; ok {
		prev.cancelTimers()
	}
	lt := &liveTest{
		classID:     req.ClassID,
		generation:  cfg.Generation,
		words:       words,
		mode:        req.Mode,
		perWordSecs: req.PerWordTimerSecs,
		scores:      make(map[string]int),
		answered:    make(map[string]int),
		schools:     make(map[string]string),
		startedAt:   time.Now(),
	}
	h.liveTests[req.ClassID] = lt
	h.scheduleAdvanceLocked(lt)
	if req.Mode == constants.SessionModeRush {
		classID, gen := lt.classID, lt.generation
		lt.endTimer = time.AfterFunc(time.Duration(req.GlobalTimerSecs)*time.Second, func() {
			h.finishLiveTest(classID, gen)
		})
	}
	h.liveMu.Unlock()

	if err := h.broadcaster.PushWord(context.Background(), req.ClassID, words[0]); err != nil {
		log.Printf("Failed to push first word: class=%s err=%v", req.ClassID, err)
	}
}

func (h *Hub) handleStopTest(c *Client, payload any) {
	var req StopTestPayload
	if err := decodePayload(payload, &req); err != nil {
		c.SendError("Invalid stop_test payload")
		return
	}
	if req.ClassID == "" {
		req.ClassID = c.ClassID
	}

	h.liveMu.Lock()
	lt, ok := h.liveTests[req.ClassID]
	if ok {
		delete(h.liveTests, req.ClassID)
		lt.cancelTimers()
	}
	h.liveMu.Unlock()

	h.broadcaster.StopSession(context.Background(), req.ClassID)
	if ok {
		h.persistLiveScores(lt)
	}
}

func (h *Hub) handleLiveAnswer(c *Client, payload any) {
	var req SubmitAnswerPayload
	if err := decodePayload(payload, &req); err != nil {
		c.SendError("Invalid submit_answer payload")
		return
	}
	if req.ClassID == "" {
		req.ClassID = c.ClassID
	}

	h.liveMu.Lock()
	lt, ok := h.liveTests[req.ClassID]
	if !ok || !h.broadcaster.IsCurrent(req.ClassID, lt.generation) {
		h.liveMu.Unlock()
		c.SendError("No live test is running for this class")
		return
	}
	if lt.answered[c.UserID] > lt.index {
		// Already answered the word being shown.
		h.liveMu.Unlock()
		return
	}
	lt.answered[c.UserID] = lt.index + 1
	lt.schools[c.UserID] = c.SchoolID

	target := lt.words[lt.index].Text
	correct := strings.EqualFold(strings.TrimSpace(req.Answer), strings.TrimSpace(target))
	if correct {
		lt.scores[c.UserID]++
	}
	score, index := lt.scores[c.UserID], lt.index
	h.liveMu.Unlock()

	c.SendMessage(MessageTypeAnswerResult, AnswerResultPayload{
		Correct: correct,
		Score:   score,
		Index:   index,
	})
}

// advanceLiveTest moves the whole class to the next word. Fired by the
// per-word timer; a stale generation (test stopped or restarted meanwhile)
// is dropped silently.
func (h *Hub) advanceLiveTest(classID string, generation int64) {
	if !h.broadcaster.IsCurrent(classID, generation) {
		return
	}

	h.liveMu.Lock()
	lt, ok := h.liveTests[classID]
	if !ok || lt.generation != generation {
		h.liveMu.Unlock()
		return
	}

	lt.index++
	if lt.index >= len(lt.words) {
		h.liveMu.Unlock()
		h.finishLiveTest(classID, generation)
		return
	}
	word := lt.words[lt.index]
	h.scheduleAdvanceLocked(lt)
	h.liveMu.Unlock()

	if err := h.broadcaster.PushWord(context.Background(), classID, word); err != nil {
		log.Printf("Failed to push word: class=%s err=%v", classID, err)
	}
}

// finishLiveTest ends the run: the global countdown expired or the last word
// timed out. Scores accumulated so far become each participant's result.
func (h *Hub) finishLiveTest(classID string, generation int64) {
	if !h.broadcaster.IsCurrent(classID, generation) {
		return
	}

	h.liveMu.Lock()
	lt, ok := h.liveTests[classID]
	if !ok || lt.generation != generation {
		h.liveMu.Unlock()
		return
	}
	delete(h.liveTests, classID)
	lt.cancelTimers()
	h.liveMu.Unlock()

	h.broadcaster.StopSession(context.Background(), classID)
	h.persistLiveScores(lt)
}

func (h *Hub) persistLiveScores(lt *liveTest) {
	timeTaken := int(time.Since(lt.startedAt) / time.Second)

	for userID, schoolID := range h.liveIdentities(lt) {
		h.persistResult(nil, &models.Result{
			ParticipantID: userID,
			ClassID:       lt.classID,
			SchoolID:      schoolID,
			Score:         lt.scores[userID],
			Total:         len(lt.words),
			Mode:          lt.mode,
			TimeTakenSecs: timeTaken,
			RecordedAt:    time.Now(),
		})
	}
}

// liveIdentities returns participant -> school for everyone whose score
// should be recorded: students still on the class channel plus anyone who
// answered earlier and disconnected before the test ended.
func (h *Hub) liveIdentities(lt *liveTest) map[string]string {
	identities := make(map[string]string)

	h.mu.RLock()
	for c := range h.clients[lt.classID] {
		if !c.IsTeacher() {
			identities[c.UserID] = c.SchoolID
		}
	}
	h.mu.RUnlock()

	for userID, schoolID := range lt.schools {
		if _, ok := identities[userID]; !ok {
			identities[userID] = schoolID
		}
	}
	return identities
}

func (h *Hub) scheduleAdvanceLocked(lt *liveTest) {
	if lt.perWordSecs <= 0 {
		return
	}
	if lt.advanceTimer != nil {
		lt.advanceTimer.Stop()
	}
	classID, gen := lt.classID, lt.generation
	lt.advanceTimer = time.AfterFunc(time.Duration(lt.perWordSecs)*time.Second, func() {
		h.advanceLiveTest(classID, gen)
	})
}

// sendCatchUp replays the active session config, and the word currently
// being shown, to a client that subscribed after the test started.
func (h *Hub) sendCatchUp(c *Client) {
	if c.ClassID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cfg, ok := h.broadcaster.CurrentSession(ctx, c.ClassID)
	if !ok || !cfg.Active {
		return
	}

	c.SendMessage(MessageTypeTestStarted, session.TestStartedPayload{
		Mode:             cfg.Mode,
		GlobalTimerSecs:  cfg.GlobalTimerSecs,
		PerWordTimerSecs: cfg.PerWordTimerSecs,
		WordLimit:        cfg.WordLimit,
	})

	h.liveMu.Lock()
	lt, running := h.liveTests[c.ClassID]
	var word models.Word
	if running && lt.index < len(lt.words) {
		word = lt.words[lt.index]
	} else {
		running = false
	}
	h.liveMu.Unlock()

	if running {
		c.SendMessage(MessageTypeNewWord, word)
	}
}

func (lt *liveTest) cancelTimers() {
	if lt.advanceTimer != nil {
		lt.advanceTimer.Stop()
	}
	if lt.endTimer != nil {
		lt.endTimer.Stop()
	}
}
