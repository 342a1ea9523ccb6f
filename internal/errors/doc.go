// Package errors defines error types for ipclink.
//
// This package provides structured error types that wrap the different failure
// scenarios of the framing transport and the process runner. All error types
// support error unwrapping and can be checked using errors.Is, errors.As, and
// errors.AsType.
//
// Invariant violations (a negative pending-write count, consuming more bytes
// than are buffered) are not represented here: they panic.
package errors
