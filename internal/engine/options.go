package engine

import "spelling-service/internal/constants"

// placeholderOption pads the distractor set when the run holds fewer than
// four words.
const placeholderOption = "N/A"

type Option struct {
	Text    string `json:"text"`
	Correct bool   `json:"is_correct"`
}

// Options returns the four choices for the current quiz/origin word:
// the correct value plus three distinct other run-words' values, shuffled.
// The set is cached per word, so regenerating a render never changes which
// option is flagged correct. Non-choice game types get nil.
func (e *Engine) Options() []Option {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		return nil
	}
	if e.cfg.GameType != constants.GameTypeQuiz && e.cfg.GameType != constants.GameTypeOrigin {
		return nil
	}
	if e.options == nil {
		e.options = e.generateOptions()
	}

	out := make([]Option, len(e.options))
	copy(out, e.options)
	return out
}

// ReshuffleOptions permutes the cached option order in place. The correct
// flag travels with its text.
func (e *Engine) ReshuffleOptions() []Option {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.options == nil {
		return nil
	}
	e.rng.Shuffle(len(e.options), func(i, j int) {
		e.options[i], e.options[j] = e.options[j], e.options[i]
	})
	out := make([]Option, len(e.options))
	copy(out, e.options)
	return out
}

func (e *Engine) generateOptions() []Option {
	field := func(i int) string {
		w := e.cfg.Words[i]
		if e.cfg.GameType == constants.GameTypeOrigin {
			return w.Etymology
		}
		return w.Definition
	}

	options := []Option{{Text: field(e.index), Correct: true}}

	// Sample three distinct other run-words as distractors.
	others := make([]int, 0, len(e.cfg.Words)-1)
	for i := range e.cfg.Words {
		if i != e.index {
			others = append(others, i)
		}
	}
	e.rng.Shuffle(len(others), func(i, j int) {
		others[i], others[j] = others[j], others[i]
	})

	for _, i := range others {
		if len(options) == 4 {
			break
		}
		options = append(options, Option{Text: field(i)})
	}
	for len(options) < 4 {
		options = append(options, Option{Text: placeholderOption})
	}

	e.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}
