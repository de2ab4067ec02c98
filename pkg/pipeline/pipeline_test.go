package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirill-oleynik/signup-service/pkg/outcome"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func countingStep(name string, counter *int, run StepFunc) Step {
	return Step{
		Name: name,
		Run: func(ctx context.Context, payload any) (outcome.Outcome[any], error) {
			*counter++
			return run(ctx, payload)
		},
	}
}

func TestRunComposesStepsInOrder(t *testing.T) {
	p := New("test", testLogger(),
		Step{Name: "double", Run: func(_ context.Context, payload any) (outcome.Outcome[any], error) {
			return outcome.Success[any](payload.(int) * 2), nil
		}},
		Step{Name: "increment", Run: func(_ context.Context, payload any) (outcome.Outcome[any], error) {
			return outcome.Success[any](payload.(int) + 1), nil
		}},
	)

	result, err := p.Run(context.Background(), 10)
	require.NoError(t, err)

	require.True(t, result.IsSuccess())
	assert.Equal(t, 21, result.Value())
}

func TestRunShortCircuitsOnFirstFailure(t *testing.T) {
	detail := outcome.FieldErrors{"email": {"is missing"}}
	var first, second, third int

	p := New("test", testLogger(),
		countingStep("first", &first, func(_ context.Context, payload any) (outcome.Outcome[any], error) {
			return outcome.Success(payload), nil
		}),
		countingStep("second", &second, func(_ context.Context, _ any) (outcome.Outcome[any], error) {
			return outcome.Failure[any](outcome.TagInvalid, detail), nil
		}),
		countingStep("third", &third, func(_ context.Context, payload any) (outcome.Outcome[any], error) {
			return outcome.Success(payload), nil
		}),
	)

	result, err := p.Run(context.Background(), "input")
	require.NoError(t, err)

	require.True(t, result.IsFailure())
	assert.Equal(t, outcome.TagInvalid, result.FailureTag())
	assert.Equal(t, detail, result.FailureDetail())

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 0, third, "steps after a failure must never run")
}

func TestRunEmptyPipelineReturnsInputUnchanged(t *testing.T) {
	p := New("empty", testLogger())

	result, err := p.Run(context.Background(), "unchanged")
	require.NoError(t, err)

	require.True(t, result.IsSuccess())
	assert.Equal(t, "unchanged", result.Value())
}

func TestRunFatalErrorAbortsAndPropagates(t *testing.T) {
	fatal := errors.New("connection reset")
	var after int

	p := New("test", testLogger(),
		Step{Name: "explode", Run: func(_ context.Context, _ any) (outcome.Outcome[any], error) {
			return outcome.Outcome[any]{}, fatal
		}},
		countingStep("after", &after, func(_ context.Context, payload any) (outcome.Outcome[any], error) {
			return outcome.Success(payload), nil
		}),
	)

	_, err := p.Run(context.Background(), nil)
	require.ErrorIs(t, err, fatal)
	assert.Equal(t, 0, after)
}
