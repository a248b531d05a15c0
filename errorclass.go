package tsruntime

import "fmt"

// ErrorObject is the runtime's built-in `Error` class: name, message,
// source location, and an optional wrapped cause, matching spec.md §4.6.
// It is a plain Go value, deliberately outside the Heap/Object/Vtable
// model: thrown errors are control-flow payloads carried by
// [ControlSignal] and Go's own return values, never stored as object
// fields that the collector would need to trace, so they never need
// refcounting, weak-ref invalidation, or mark-sweep visitation in the
// first place.
type ErrorObject struct {
	Name     string
	Message  string
	Filename string
	Line     int
	Col      int
	Cause    any
}

// NewErrorObject constructs an Error with name defaulting to "Error".
func NewErrorObject(message string) *ErrorObject {
	return &ErrorObject{Name: "Error", Message: message}
}

// String renders the error in the original runtime's default `to_string`
// format (`original_source/runtime/ts_exception.c`), supplemented into
// this module because spec.md scenario 6 asserts this exact shape.
func (e *ErrorObject) String() string {
	if e == nil {
		return "[TS Error] message:[]"
	}
	s := fmt.Sprintf("[TS Error] message:[%s]", e.Message)
	if e.Filename != "" {
		s += fmt.Sprintf(" at %s:%d:%d", e.Filename, e.Line, e.Col)
	}
	if e.Cause != nil {
		s += fmt.Sprintf(" caused by: %v", e.Cause)
	}
	return s
}
