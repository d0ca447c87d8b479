// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import "fmt"

// ErrorKind categorizes shader graph compilation errors.
type ErrorKind uint8

const (
	// ErrCycle indicates the evaluator call stack exceeded its depth bound,
	// either because the graph is cyclic or pathologically deep.
	ErrCycle ErrorKind = iota

	// ErrUnsupportedCast indicates a value cast that cannot be expressed
	// (for example Object to a numeric type).
	ErrUnsupportedCast

	// ErrDivideByZero indicates a division with a constant-zero divisor.
	ErrDivideByZero

	// ErrSRVOverflow indicates the texture slot budget was exhausted.
	ErrSRVOverflow

	// ErrMissingAsset indicates a referenced graph, texture, or gameplay
	// globals asset failed to resolve.
	ErrMissingAsset

	// ErrMissingVariable indicates a named variable was not found inside a
	// resolved gameplay globals asset.
	ErrMissingVariable

	// ErrTemplateFailure indicates a template file was unreadable or held an
	// unexpected placeholder. Fatal: the compile aborts without source.
	ErrTemplateFailure

	// ErrMalformedGraph indicates the graph is structurally unusable (for
	// example no root node). Fatal: the compile aborts without source.
	ErrMalformedGraph

	// ErrInternal indicates an unexpected compiler state, such as a node
	// type no handler understands.
	ErrInternal
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrCycle:
		return "Cycle"
	case ErrUnsupportedCast:
		return "UnsupportedCast"
	case ErrDivideByZero:
		return "DivideByZero"
	case ErrSRVOverflow:
		return "SRVOverflow"
	case ErrMissingAsset:
		return "MissingAsset"
	case ErrMissingVariable:
		return "MissingVariable"
	case ErrTemplateFailure:
		return "TemplateFailure"
	case ErrMalformedGraph:
		return "MalformedGraph"
	case ErrInternal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Fatal reports whether this error kind aborts the compile. Non-fatal kinds
// substitute a typed zero value and accumulate as diagnostics so a broken
// graph still yields complete, parseable HLSL for authoring feedback.
func (k ErrorKind) Fatal() bool {
	return k == ErrTemplateFailure || k == ErrMalformedGraph
}

// Error represents a fatal compilation error.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Message provides details about the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("hlsl %s: %s", e.Kind, e.Message)
}

// NewError creates a new compilation error.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Diagnostic is a recoverable compile problem tied to a graph location.
// The offending value was replaced by a typed zero and compilation went on.
type Diagnostic struct {
	// Kind categorizes the problem.
	Kind ErrorKind

	// Node is the id of the offending node, 0 when not node-specific.
	Node uint32

	// Box is the offending box id on the node, -1 when not box-specific.
	Box int16

	// Message is the human-readable description shown in the editor.
	Message string
}

// Error implements the error interface so diagnostics can aggregate into a
// single error value.
func (d Diagnostic) Error() string {
	switch {
	case d.Node != 0 && d.Box >= 0:
		return fmt.Sprintf("hlsl %s at node %d box %d: %s", d.Kind, d.Node, d.Box, d.Message)
	case d.Node != 0:
		return fmt.Sprintf("hlsl %s at node %d: %s", d.Kind, d.Node, d.Message)
	default:
		return fmt.Sprintf("hlsl %s: %s", d.Kind, d.Message)
	}
}
