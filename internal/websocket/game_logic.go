package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"time"

	"spelling-service/internal/constants"
	"spelling-service/internal/engine"
	"spelling-service/internal/leaderboard"
	"spelling-service/internal/models"
	"spelling-service/internal/selector"

	"github.com/google/uuid"
)

func (h *Hub) handleStartGame(c *Client, payload any) {
	var req StartGamePayload
	if err := decodePayload(payload, &req); err != nil {
		c.SendError("Invalid start_game payload")
		return
	}
	if req.ClassID == "" {
		req.ClassID = c.ClassID
	}
	if req.Mode == "" {
		req.Mode = constants.ModePractice
	}
	if req.GameType == "" {
		req.GameType = constants.GameTypeSpelling
	}
	if !validGameType(req.GameType) {
		c.SendError("Unknown game type: " + req.GameType)
		return
	}
	if req.WordLimit <= 0 {
		req.WordLimit = h.gameCfg.DefaultWordLimit
	}
	if req.Mode == constants.ModeTestRush && req.GlobalTimerSecs <= 0 {
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

	// Graded modes only draw from the authoritative tier; practice and fun
	// runs may use the whole pool.
	filter := selector.FilterAll
	if req.Mode == constants.ModeTestStandard || req.Mode == constants.ModeTestRush {
		filter = selector.FilterAuthoritative
	}
	words, err := h.selector.Select(pool, selector.Options{
		SourceFilter: filter,
		Count:        req.WordLimit,
	})
	if err != nil {
		if errors.Is(err, selector.ErrNoWordsAvailable) {
			c.SendError("No words available for this class")
		} else {
			c.SendError("Could not start the game")
		}
		return
	}

	// A fresh start supersedes any run already attached to this connection.
	h.stopSoloRun(c)

	eng := engine.New(engine.Config{
		Words:          words,
		Mode:           req.Mode,
		GameType:       req.GameType,
		PerWordSeconds: req.PerWordTimerSecs,
		GlobalSeconds:  req.GlobalTimerSecs,
	}, rand.New(rand.NewSource(time.Now().UnixNano())))
	eng.Start()
	c.engine = eng

	if req.Mode == constants.ModeTestRush || req.PerWordTimerSecs > 0 {
		c.runner = engine.NewRunner(eng, func(out engine.Outcome) {
			h.onSoloTick(c, eng, out)
		})
		c.runner.Start()
	}

	c.SendMessage(MessageTypeGameStarted, GameStartedPayload{
		Mode:     req.Mode,
		GameType: req.GameType,
		Total:    eng.Total(),
		TimeLeft: eng.TimeLeft(),
	})
	h.sendPrompt(c, eng)

	log.Printf("Solo game started: user=%s mode=%s type=%s words=%d",
		c.UserID, req.Mode, req.GameType, len(words))
}

func (h *Hub) handleAnswer(c *Client, payload any) {
	var req AnswerPayload
	if err := decodePayload(payload, &req); err != nil {
		c.SendError("Invalid answer payload")
		return
	}
	if c.engine == nil {
		c.SendError("No game in progress")
		return
	}
	h.applyOutcome(c, c.engine.Submit(req.Answer))
}

func (h *Hub) handleChoose(c *Client, payload any) {
	var req ChoosePayload
	if err := decodePayload(payload, &req); err != nil {
		c.SendError("Invalid choose payload")
		return
	}
	if c.engine == nil {
		c.SendError("No game in progress")
		return
	}
	h.applyOutcome(c, c.engine.SubmitChoice(req.Correct))
}

// handleSetInput mirrors the participant's in-progress text server-side so
// a reconnecting client can restore what it was typing.
func (h *Hub) handleSetInput(c *Client, payload any) {
	var req SetInputPayload
	if err := decodePayload(payload, &req); err != nil {
		c.SendError("Invalid set_input payload")
		return
	}
	if c.engine == nil {
		c.SendError("No game in progress")
		return
	}
	c.engine.SetInput(req.Input)
}

func (h *Hub) handleHint(c *Client) {
	if c.engine == nil {
		c.SendError("No game in progress")
		return
	}

	text, ok := c.engine.RequestHint()
	if !ok {
		c.SendError("No hints left for this word")
		return
	}
	hint := c.engine.Hint()
	c.SendMessage(MessageTypeHintResult, HintResultPayload{
		Level:  hint.LevelUsed,
		Text:   text,
		Budget: hint.Budget,
	})
}

func (h *Hub) handleSkip(c *Client) {
	if c.engine == nil {
		c.SendError("No game in progress")
		return
	}
	h.applyOutcome(c, c.engine.Skip())
}

func (h *Hub) handleStopGame(c *Client) {
	if c.engine == nil {
		c.SendError("No game in progress")
		return
	}

	result := c.engine.Stop()
	if c.runner != nil {
		c.runner.Stop()
		c.runner = nil
	}
	if result != nil {
		h.finishSolo(c, result)
	}
	c.engine = nil
}

// applyOutcome reports an evaluated submit/skip back to the client and
// either shows the next prompt or closes out the run.
func (h *Hub) applyOutcome(c *Client, out engine.Outcome) {
	if !out.Evaluated {
		return
	}

	c.SendMessage(MessageTypeAnswerResult, AnswerResultPayload{
		Correct: out.Correct,
		Score:   out.Score,
		Index:   out.Index,
	})

	if out.Done {
		if out.Result != nil {
			h.finishSolo(c, out.Result)
		} else {
			c.SendMessage(MessageTypeGameFinished, GameFinishedPayload{
				Score: out.Score,
				Total: c.engine.Total(),
				Mode:  c.engine.Mode(),
			})
		}
		if c.runner != nil {
			c.runner.Stop()
			c.runner = nil
		}
		c.engine = nil
		return
	}
	h.sendPrompt(c, c.engine)
}

// onSoloTick runs on the runner goroutine. It closes over the engine its
// runner was created for and never touches c.engine/c.runner; those belong
// to the hub loop, and a tick in flight across a restart must not observe
// the run that replaced its own.
func (h *Hub) onSoloTick(c *Client, eng *engine.Engine, out engine.Outcome) {
	if out.Done {
		if out.Result != nil {
			h.finishSolo(c, out.Result)
		} else {
			c.SendMessage(MessageTypeGameFinished, GameFinishedPayload{
				Score: out.Score,
				Total: eng.Total(),
				Mode:  eng.Mode(),
			})
		}
		return
	}

	if out.Evaluated {
		// A per-word countdown expired: the word was auto-submitted as
		// incorrect and the run moved on.
		c.SendMessage(MessageTypeAnswerResult, AnswerResultPayload{
			Correct: false,
			Score:   out.Score,
			Index:   out.Index,
		})
		h.sendPrompt(c, eng)
		return
	}

	c.SendMessage(MessageTypeTick, TickPayload{TimeLeft: out.TimeLeft})
}

func (h *Hub) sendPrompt(c *Client, eng *engine.Engine) {
	word, ok := eng.CurrentWord()
	if !ok {
		return
	}

	prompt := PromptPayload{
		Word:     word,
		Index:    eng.Index(),
		Total:    eng.Total(),
		TimeLeft: eng.TimeLeft(),
	}
	switch eng.GameType() {
	case constants.GameTypeUnscramble:
		prompt.Scramble = eng.Scramble()
	case constants.GameTypeBlanks:
		prompt.Blanks = eng.Blanks()
	case constants.GameTypeQuiz, constants.GameTypeOrigin:
		prompt.Options = eng.Options()
	}
	c.SendMessage(MessageTypePrompt, prompt)
}

// finishSolo completes a graded run: announce the outcome, then persist and
// publish it off the hot path.
func (h *Hub) finishSolo(c *Client, result *models.Result) {
	result.ParticipantID = c.UserID
	result.ClassID = c.ClassID
	result.SchoolID = c.SchoolID

	c.SendMessage(MessageTypeGameFinished, GameFinishedPayload{
		Score:     result.Score,
		Total:     result.Total,
		Mode:      result.Mode,
		TimeTaken: result.TimeTakenSecs,
		Tier:      leaderboard.Tier(result.Score, result.Total),
	})

	h.persistResult(c, result)
}

// supersedeSoloRuns aborts every solo run on the class channel. A live test
// taking over the class replaces whatever its students were playing; the
// abandoned runs emit no Result and their runners stop on the next tick.
func (h *Hub) supersedeSoloRuns(classID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[classID] {
		if c.engine != nil {
			c.engine.Supersede()
		}
	}
}

// stopSoloRun tears down the run attached to the connection, persisting a
// graded partial result. Used on disconnect and when a new start supersedes
// the old run; pass nil for the notify target once the socket is gone.
func (h *Hub) stopSoloRun(c *Client) {
	if c.runner != nil {
		c.runner.Stop()
		c.runner = nil
	}
	if c.engine != nil {
		if result := c.engine.Stop(); result != nil {
			result.ParticipantID = c.UserID
			result.ClassID = c.ClassID
			result.SchoolID = c.SchoolID
			h.persistResult(nil, result)
		}
		c.engine = nil
	}
}

// persistResult stores the result and publishes the recorded event without
// blocking gameplay. A storage failure never interrupts the session; the
// participant just gets a warning that the score may not be saved.
func (h *Hub) persistResult(c *Client, result *models.Result) {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if result.RecordedAt.IsZero() {
		result.RecordedAt = time.Now()
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if h.resultRepo != nil {
			if err := h.resultRepo.InsertResult(ctx, result); err != nil {
				log.Printf("Failed to persist result %s: %v", result.ID, err)
				if c != nil {
					c.SendMessage(MessageTypeWarning, ErrorPayload{
						Message: "Your score may not have been saved",
					})
				}
				return
			}
		}

		if h.rabbit != nil {
			body, err := json.Marshal(result)
			if err != nil {
				return
			}
			if err := h.rabbit.Publish(ctx, h.resultQueue, body); err != nil {
				log.Printf("Failed to publish result %s: %v", result.ID, err)
			}
		}
	}()
}

func validGameType(gameType string) bool {
	switch gameType {
	case constants.GameTypeSpelling, constants.GameTypeQuiz, constants.GameTypeUnscramble,
		constants.GameTypeBlanks, constants.GameTypeOrigin:
		return true
	}
	return false
}
