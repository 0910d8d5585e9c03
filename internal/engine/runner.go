package engine

import (
	"sync"
	"time"
)

// Runner drives an Engine's countdown with a once-per-second ticker. It is
// tied 1:1 to its run and stops itself on the terminal transition, so a
// stopped or superseded run can never keep ticking against stale state.
type Runner struct {
	engine *Engine
	onTick func(Outcome)

	stopOnce sync.Once
	done     chan struct{}
}

func NewRunner(e *Engine, onTick func(Outcome)) *Runner {
	return &Runner{
		engine: e,
		onTick: onTick,
		done:   make(chan struct{}),
	}
}

func (r *Runner) Start() {
	go r.loop()
}

func (r *Runner) loop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if r.engine.State() != StateRunning {
				r.Stop()
				return
			}
			out := r.engine.Tick()
			r.onTick(out)
			if out.Done {
				r.Stop()
				return
			}
		case <-r.done:
			return
		}
	}
}

// Stop cancels the ticker. Safe to call more than once.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
	})
}
