package engine

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"spelling-service/internal/constants"
	"spelling-service/internal/models"
)

const (
	StateIdle     = "idle"
	StateRunning  = "running"
	StateTerminal = "terminal"
)

const hintBudget = 3

// HintState is reset every time the word index advances.
type HintState struct {
	Budget       int    `json:"budget"`
	LevelUsed    int    `json:"level_used"`
	LastHintText string `json:"last_hint_text"`
}

// Outcome describes one engine step: a submit, a skip, or a tick that
// expired a countdown. Result is non-nil only on a terminal transition.
type Outcome struct {
	Evaluated bool
	Correct   bool
	Index     int
	Score     int
	TimeLeft  int
	Done      bool
	Result    *models.Result
}

type Config struct {
	Words          []models.Word
	Mode           string // "practice", "test_standard", "test_rush", "fun"
	GameType       string // "spelling", "quiz", "unscramble", "blanks", "origin"
	PerWordSeconds int    // 0 means untimed
	GlobalSeconds  int    // rush mode only
}

// Engine walks a fixed word list for one participant: it presents one of
// five game variants, scores answers, manages the countdown and the hint
// budget, and emits a Result on the terminal transition. All mutation is
// a sequential reaction to a tick or an inbound event; the engine itself
// never blocks.
type Engine struct {
	mu sync.Mutex

	cfg       Config
	state     string
	index     int
	score     int
	input     string
	timeLeft  int
	startedAt time.Time
	hint      HintState
	options   []Option

	rng *rand.Rand
	now func() time.Time
}

func New(cfg Config, rng *rand.Rand) *Engine {
	return &Engine{
		cfg:   cfg,
		state: StateIdle,
		rng:   rng,
		now:   time.Now,
	}
}

// WithClock overrides the engine's clock. Tests only.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Start transitions Idle -> Running with index 0, score 0, a fresh hint
// budget and the first countdown per the timer policy.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateIdle || len(e.cfg.Words) == 0 {
		return
	}
	e.state = StateRunning
	e.index = 0
	e.score = 0
	e.input = ""
	e.startedAt = e.now()
	e.resetHint()
	e.options = nil

	if e.rushMode() {
		e.timeLeft = e.cfg.GlobalSeconds
	} else {
		e.timeLeft = e.cfg.PerWordSeconds
	}
}

func (e *Engine) rushMode() bool {
	return e.cfg.Mode == constants.ModeTestRush
}

func (e *Engine) graded() bool {
	return e.cfg.Mode != constants.ModeFun
}

// Submit evaluates free-text input against the current word. Spelling,
// blanks and unscramble all use the same trimmed case-insensitive match;
// for unscramble only the prompt differs, so a regenerated scramble never
// changes correctness.
func (e *Engine) Submit(answer string) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		return e.outcome(false)
	}
	target := e.cfg.Words[e.index].Text
	correct := strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(target))
	return e.advance(correct)
}

// SubmitChoice records a quiz/origin selection. The client picks one of
// four options and correctness arrives as a boolean, bypassing text
// comparison.
func (e *Engine) SubmitChoice(correct bool) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		return e.outcome(false)
	}
	return e.advance(correct)
}

// Skip is an explicit override that always evaluates to incorrect. It does
// not count as the user's free-text submission.
func (e *Engine) Skip() Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		return e.outcome(false)
	}
	return e.advance(false)
}

// Tick decrements the active countdown by one second. When it reaches zero:
// rush runs terminate with the score accumulated so far, per-word runs
// auto-submit the current word as a timeout and advance.
func (e *Engine) Tick() Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		return e.outcome(false)
	}
	if !e.rushMode() && e.cfg.PerWordSeconds == 0 {
		// Untimed run.
		return e.outcome(false)
	}

	e.timeLeft--
	if e.timeLeft > 0 {
		return e.outcome(false)
	}

	if e.rushMode() {
		// The whole run ends; the word being shown is not processed and
		// index does not advance.
		e.state = StateTerminal
		out := e.outcome(false)
		out.Done = true
		out.Result = e.buildResult()
		return out
	}

	out := e.advance(false)
	out.Evaluated = true
	return out
}

// Stop abandons the run with the score accumulated so far. Graded modes
// still emit a partial Result; fun runs emit none.
func (e *Engine) Stop() *models.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		return nil
	}
	e.state = StateTerminal
	if !e.graded() {
		return nil
	}
	return e.buildResult()
}

// Supersede aborts the run because its session config was stopped or
// replaced. The countdown must not keep ticking and no Result is emitted.
func (e *Engine) Supersede() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateRunning {
		e.state = StateIdle
	}
}

// RequestHint reveals the next hint level while budget remains:
// 1 definition, 2 usage with the target word masked, 3 etymology.
// Calls past level 3 or with an exhausted budget are no-ops.
func (e *Engine) RequestHint() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning || e.hint.Budget == 0 || e.hint.LevelUsed >= hintBudget {
		return "", false
	}

	e.hint.LevelUsed++
	e.hint.Budget--

	w := e.cfg.Words[e.index]
	var text string
	switch e.hint.LevelUsed {
	case 1:
		text = w.Definition
	case 2:
		text = maskWord(w.Usage, w.Text)
	case 3:
		text = w.Etymology
	}
	e.hint.LastHintText = text
	return text, true
}

// SetInput mirrors the participant's in-progress text so a reconnecting
// client can restore it. Cleared on every advance.
func (e *Engine) SetInput(s string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.input = s
}

func (e *Engine) Input() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.input
}

// Scramble returns a random character permutation of the current word.
// It is recomputed per call, never stored: correctness checks always run
// against the original word.
func (e *Engine) Scramble() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		return ""
	}
	letters := []rune(e.cfg.Words[e.index].Text)
	e.rng.Shuffle(len(letters), func(i, j int) {
		letters[i], letters[j] = letters[j], letters[i]
	})
	return string(letters)
}

// Blanks returns the current word with its interior letters blanked out,
// keeping the first and last visible.
func (e *Engine) Blanks() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		return ""
	}
	letters := []rune(e.cfg.Words[e.index].Text)
	if len(letters) <= 2 {
		return string(letters)
	}
	for i := 1; i < len(letters)-1; i++ {
		letters[i] = '_'
	}
	return string(letters)
}

func (e *Engine) advance(correct bool) Outcome {
	if correct {
		e.score++
	}
	e.index++

	if e.index >= len(e.cfg.Words) {
		e.state = StateTerminal
		out := e.outcome(correct)
		out.Evaluated = true
		out.Done = true
		out.Result = e.buildResult()
		return out
	}

	e.input = ""
	e.resetHint()
	e.options = nil
	if !e.rushMode() {
		e.timeLeft = e.cfg.PerWordSeconds
	}

	out := e.outcome(correct)
	out.Evaluated = true
	return out
}

func (e *Engine) resetHint() {
	e.hint = HintState{Budget: hintBudget}
}

func (e *Engine) buildResult() *models.Result {
	return &models.Result{
		Score:         e.score,
		Total:         len(e.cfg.Words),
		Mode:          e.cfg.Mode,
		TimeTakenSecs: int(e.now().Sub(e.startedAt) / time.Second),
		RecordedAt:    e.now(),
	}
}

func (e *Engine) outcome(correct bool) Outcome {
	return Outcome{
		Correct:  correct,
		Index:    e.index,
		Score:    e.score,
		TimeLeft: e.timeLeft,
	}
}

// Accessors below take the lock so the Runner's ticks and the transport's
// events can interleave safely.

func (e *Engine) State() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) Index() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index
}

func (e *Engine) Score() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.score
}

func (e *Engine) TimeLeft() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timeLeft
}

func (e *Engine) Total() int {
	return len(e.cfg.Words)
}

func (e *Engine) Mode() string {
	return e.cfg.Mode
}

func (e *Engine) GameType() string {
	return e.cfg.GameType
}

// CurrentWord returns the word being shown, or false once terminal.
func (e *Engine) CurrentWord() (models.Word, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		return models.Word{}, false
	}
	return e.cfg.Words[e.index], true
}

func (e *Engine) Hint() HintState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hint
}

// maskWord hides every occurrence of target inside text, case-insensitively,
// so a usage-sentence hint does not give the spelling away.
func maskWord(text, target string) string {
	if target == "" {
		return text
	}
	mask := strings.Repeat("_", len(target))
	lowerText := strings.ToLower(text)
	lowerTarget := strings.ToLower(target)

	var b strings.Builder
	for {
		i := strings.Index(lowerText, lowerTarget)
		if i < 0 {
			b.WriteString(text)
			return b.String()
		}
		b.WriteString(text[:i])
		b.WriteString(mask)
		text = text[i+len(target):]
		lowerText = lowerText[i+len(lowerTarget):]
	}
}
