// Package service contains the application use cases: task mutations guarded
// by the workflow rules, bulk transitions, and user registration.
//
// Services receive their stores through constructor injection and never depend
// on a concrete persistence implementation. Every mutating task operation loads
// the task, asks workflow.Check whether the actor may touch it and, for status
// changes, asks workflow.Validate whether the move is legal before anything is
// written. Transitions run inside a single store transaction with the task row
// locked, so the check and the write cannot be separated by a concurrent caller.
//
// Errors keep their sentinel identity through wrapping: callers use errors.Is
// with store.ErrNotFound, domain.ErrPermissionDenied, domain.ErrInvalidTransition,
// domain.ErrInvalidState and domain.ErrValidation to pick a response.
package service
