package outcome

import "fmt"

// Tag is the discriminator carried by a failure outcome. Handlers are routed
// by tag.
type Tag string

// TagInvalid marks domain validation failures, including uniqueness
// conflicts surfaced by the repository.
const TagInvalid = Tag("invalid")

// FieldErrors maps a field name to the list of messages describing why it
// was rejected.
type FieldErrors map[string][]string

// Add appends a message to the given field.
func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

// InvalidStateError is returned by panic when a success-only or failure-only
// accessor is called on the wrong variant. It indicates a logic bug, not a
// recoverable condition.
type InvalidStateError struct {
	Accessor string
	Variant  string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("outcome: %s called on %s outcome", e.Accessor, e.Variant)
}

// Outcome is a two-variant result value: either a success holding a value or
// a failure holding a tag and tag-specific detail. Exactly one variant is
// populated.
type Outcome[T any] struct {
	ok     bool
	value  T
	tag    Tag
	detail any
}

// Success constructs a success outcome wrapping value.
func Success[T any](value T) Outcome[T] {
	return Outcome[T]{ok: true, value: value}
}

// Failure constructs a failure outcome with the given tag and detail.
func Failure[T any](tag Tag, detail any) Outcome[T] {
	return Outcome[T]{ok: false, tag: tag, detail: detail}
}

func (o Outcome[T]) IsSuccess() bool {
	return o.ok
}

func (o Outcome[T]) IsFailure() bool {
	return !o.ok
}

// Value returns the success value. It panics with *InvalidStateError when
// called on a failure.
func (o Outcome[T]) Value() T {
	if !o.ok {
		panic(&InvalidStateError{Accessor: "Value", Variant: "failure"})
	}
	return o.value
}

// FailureTag returns the failure tag. It panics with *InvalidStateError when
// called on a success.
func (o Outcome[T]) FailureTag() Tag {
	if o.ok {
		panic(&InvalidStateError{Accessor: "FailureTag", Variant: "success"})
	}
	return o.tag
}

// FailureDetail returns the failure detail. It panics with
// *InvalidStateError when called on a success.
func (o Outcome[T]) FailureDetail() any {
	if o.ok {
		panic(&InvalidStateError{Accessor: "FailureDetail", Variant: "success"})
	}
	return o.detail
}

// FieldErrors returns the failure detail as FieldErrors when it carries one.
func (o Outcome[T]) FieldErrors() (FieldErrors, bool) {
	if o.ok {
		return nil, false
	}
	fe, ok := o.detail.(FieldErrors)
	return fe, ok
}
