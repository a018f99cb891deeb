// Package pipeline runs the validation stages for a configuration file.
//
// A run is strictly sequential: each stage sees the state produced by the
// stages before it, and the first failure aborts the run. Every stage ends
// in exactly one of three outcomes, logged as PASSED, FAILED or SKIPPED.
package pipeline

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/declarr/internal/ports"
)

// Stage is one unit of the validation pipeline.
type Stage struct {
	// Name is the display name used in log lines and result reports.
	Name string

	// Skip, when set, is consulted before Run. Returning true records the
	// stage as skipped with the given reason and moves on.
	Skip func(st *State) (reason string, skip bool)

	// Run does the stage's work, reading and updating st.
	Run func(ctx context.Context, st *State, log ports.Logger) error
}

// Controller executes stages in order and records their outcomes.
type Controller struct {
	logger  ports.Logger
	results []StageResult
}

// NewController returns a Controller that reports stage transitions on the
// given logger.
func NewController(logger ports.Logger) *Controller {
	return &Controller{logger: logger}
}

// Run executes the stages one after another. The first failure stops the
// run and is returned wrapped in a StageError; stages after it never
// execute. A nil return means every stage either passed or was skipped.
func (c *Controller) Run(ctx context.Context, st *State, stages ...Stage) error {
	for _, stage := range stages {
		if err := c.runStage(ctx, st, stage); err != nil {
			return err
		}
	}
	return nil
}

// Results returns the outcome of every stage that has run so far, in
// execution order.
func (c *Controller) Results() []StageResult {
	out := make([]StageResult, len(c.results))
	copy(out, c.results)
	return out
}

func (c *Controller) runStage(ctx context.Context, st *State, stage Stage) error {
	if stage.Skip != nil {
		if reason, skip := stage.Skip(st); skip {
			c.logger.Info(ctx, fmt.Sprintf("%s: SKIPPED (%s)", stage.Name, reason))
			c.results = append(c.results, StageResult{Stage: stage.Name, Status: StatusSkipped, Reason: reason})
			return nil
		}
	}

	c.logger.Debug(ctx, "starting stage", ports.F("stage", stage.Name))

	err := stage.Run(ctx, st, c.logger)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		c.logger.Error(ctx, fmt.Sprintf("%s: FAILED", stage.Name), ports.F("error", err))
		c.results = append(c.results, StageResult{Stage: stage.Name, Status: StatusFailed, Err: err})
		return &StageError{Stage: stage.Name, Err: err}
	}

	c.logger.Info(ctx, fmt.Sprintf("%s: PASSED", stage.Name))
	c.results = append(c.results, StageResult{Stage: stage.Name, Status: StatusPassed})
	return nil
}
