// Package errors provides structured error types for the incrstruct library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: struct type, field name,
// path, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLayout, errors.KindFieldOrder).
//		GoType("Conn").
//		Field("endpoint").
//		Detail("head field declared after a tail field").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.FieldOrder(errors.PhaseLayout, "Conn", "endpoint")
//	err := errors.InvalidTag("Conn", "view", "tial")
//
// All errors implement the standard error interface and support errors.Is/As.
//
// Errors returned by a caller's tail-field initializer are never wrapped in
// this package's Error type; they propagate unchanged.
package errors
