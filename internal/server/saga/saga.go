// Package saga runs a short ordered list of steps against stores that do
// not share a transaction. When a step fails, the Undo of every step that
// already succeeded runs in reverse order and the failing step's error is
// returned.
package saga

import (
	"context"
	"fmt"
	"time"

	"github.com/jaftdelgado/aureum-services/internal/logging"
)

// UndoTimeout bounds every compensation call. Undo runs on a context that
// is detached from the caller's cancellation, so a dropped request still
// gets rolled back.
var UndoTimeout = 10 * time.Second

// Step is one unit of work. Undo may be nil for a step that leaves nothing
// behind, typically the last one.
type Step struct {
	Name string
	Do   func(ctx context.Context) error
	Undo func(ctx context.Context) error
}

// StepError tags the original error with the step that produced it.
// errors.Is and errors.As see through it to Err.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Run executes steps sequentially. On the first failure it compensates the
// completed steps, most recent first. Compensation failures are logged and
// never replace the returned *StepError.
func Run(ctx context.Context, log logging.Logger, steps ...Step) error {
	for i, step := range steps {
		if err := step.Do(ctx); err != nil {
			log.Warn(ctx, "saga step failed, compensating",
				"step", step.Name, "completed", i, "error", err)
			compensate(ctx, log, steps[:i])
			return &StepError{Step: step.Name, Err: err}
		}
	}
	return nil
}

func compensate(ctx context.Context, log logging.Logger, done []Step) {
	base := context.WithoutCancel(ctx)
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.Undo == nil {
			continue
		}
		undoCtx, cancel := context.WithTimeout(base, UndoTimeout)
		err := step.Undo(undoCtx)
		cancel()
		if err != nil {
			log.Error(ctx, "saga compensation failed", "step", step.Name, "error", err)
		}
	}
}
