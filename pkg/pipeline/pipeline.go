package pipeline

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/kirill-oleynik/signup-service/pkg/outcome"
	"github.com/kirill-oleynik/signup-service/pkg/tracing"
)

// StepFunc is one stage of a pipeline. It consumes the current payload and
// produces the next one wrapped in an Outcome. Anticipated domain failures
// must be converted into a failure Outcome by the step itself; a non-nil
// error is a fatal fault that aborts the run and propagates to the caller.
type StepFunc func(ctx context.Context, payload any) (outcome.Outcome[any], error)

// Step pairs a StepFunc with a name used for spans and logs.
type Step struct {
	Name string
	Run  StepFunc
}

// Pipeline is an ordered sequence of steps, fixed at construction. Each Run
// threads its own payload chain, so a Pipeline is safe for concurrent use.
type Pipeline struct {
	name   string
	steps  []Step
	logger ectologger.Logger
}

// New creates a pipeline executing the given steps in order.
func New(name string, logger ectologger.Logger, steps ...Step) *Pipeline {
	return &Pipeline{
		name:   name,
		steps:  steps,
		logger: logger,
	}
}

// Run folds the steps left to right starting from input. The first failure
// outcome short-circuits the run: later steps never execute and the failure
// is returned unchanged. An empty pipeline succeeds with the input payload.
// The executor never retries and has no timeout of its own; cancellation is
// the caller's concern and flows through ctx.
func (p *Pipeline) Run(ctx context.Context, input any) (outcome.Outcome[any], error) {
	ctx, span := tracing.StartSpan(ctx, "pipeline."+p.name)
	defer span.End()

	payload := input
	for _, step := range p.steps {
		stepCtx, stepSpan := tracing.StartSpan(ctx, "pipeline."+p.name+"."+step.Name)

		result, err := step.Run(stepCtx, payload)
		stepSpan.End()
		if err != nil {
			p.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"pipeline": p.name,
				"step":     step.Name,
			}).Error("pipeline step returned a fatal error")
			return outcome.Outcome[any]{}, err
		}

		if result.IsFailure() {
			p.logger.WithContext(ctx).WithFields(map[string]any{
				"pipeline": p.name,
				"step":     step.Name,
				"tag":      string(result.FailureTag()),
			}).Info("pipeline halted by step failure")
			return result, nil
		}

		payload = result.Value()
	}

	return outcome.Success(payload), nil
}
