// Package validation implements the static type system (§4.6-4.9): the
// validation context, per-entity limit checks, the instruction validator's
// abstract interpreter, and the module-level orchestrator.
//
// The instruction validator is grounded primarily on wagon's validate.go
// (_examples/other_examples/acce7eef_go-interpreter-wagon__validate-validate.go.go),
// whose mockVM is the same "abstract operand stack + control-frame stack +
// polymorphic operand" algorithm spec.md §4.8 calls for, translated here
// from wagon's single-pass decode-and-validate over raw bytes into a
// second pass over the already-typed ast.Expression tree internal/decoder
// produces — matching spec.md's architecture of two decoupled layers. The
// teacher itself has no static validator (vm/vm.go only executes), so this
// package and its control-flow rules are new work grounded on the pack
// rather than adapted from teacher code, per spec.md §9 Open Question 5.
package validation

import "fmt"

// Error is a static-semantic validation failure. Unlike cursor.Error, it
// carries no decode offset — the instruction validator may optionally name
// the offending index, per spec.md §7's permission to enrich messages.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}
