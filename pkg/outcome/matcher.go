package outcome

import "fmt"

// UnhandledOutcomeError is returned by Dispatch when a failure outcome has no
// registered handler for its tag. It indicates a wiring bug in the caller's
// handler configuration.
type UnhandledOutcomeError struct {
	Tag Tag
}

func (e *UnhandledOutcomeError) Error() string {
	return fmt.Sprintf("outcome: no handler registered for failure tag '%s'", e.Tag)
}

type failureHandler[T any, R any] struct {
	tags    []Tag
	handler func(Tag, any) R
}

func (h failureHandler[T, R]) matches(tag Tag) bool {
	// An empty tag filter is a wildcard and matches any failure.
	if len(h.tags) == 0 {
		return true
	}
	for _, t := range h.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Matcher routes a resolved Outcome to the caller-supplied handler for its
// variant. Failure handlers are tried in registration order; the first whose
// tag filter matches wins. The Matcher itself has no side effects.
type Matcher[T any, R any] struct {
	success  func(T) R
	failures []failureHandler[T, R]
}

// NewMatcher creates a matcher with the mandatory success handler.
func NewMatcher[T any, R any](onSuccess func(T) R) *Matcher[T, R] {
	return &Matcher[T, R]{success: onSuccess}
}

// OnFailure registers a failure handler for the given tags. With no tags the
// handler matches every failure.
func (m *Matcher[T, R]) OnFailure(handler func(Tag, any) R, tags ...Tag) *Matcher[T, R] {
	m.failures = append(m.failures, failureHandler[T, R]{tags: tags, handler: handler})
	return m
}

// Dispatch invokes the handler matching the outcome's variant and returns its
// result. A failure with no matching handler returns *UnhandledOutcomeError.
func (m *Matcher[T, R]) Dispatch(o Outcome[T]) (R, error) {
	if o.IsSuccess() {
		return m.success(o.Value()), nil
	}

	tag := o.FailureTag()
	for _, fh := range m.failures {
		if fh.matches(tag) {
			return fh.handler(tag, o.FailureDetail()), nil
		}
	}

	var zero R
	return zero, &UnhandledOutcomeError{Tag: tag}
}
