package graph

import "fmt"

// ErrorKind categorizes graph serialization errors. All of them are fatal:
// a malformed stream aborts the load, there is no partial graph.
type ErrorKind uint8

const (
	// ErrBadMagic indicates the stream does not start with the graph magic.
	ErrBadMagic ErrorKind = iota

	// ErrUnsupportedVersion indicates a version other than 7000.
	ErrUnsupportedVersion

	// ErrTruncated indicates the stream ended mid-structure.
	ErrTruncated

	// ErrMissingEndMark indicates the trailing end marker is absent.
	ErrMissingEndMark

	// ErrDanglingConnection indicates a connection target that does not
	// exist in the stream.
	ErrDanglingConnection

	// ErrMalformed indicates any other structural violation: duplicate node
	// ids, non-dense box ids, oversized names, unknown variant tags.
	ErrMalformed
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrBadMagic:
		return "BadMagic"
	case ErrUnsupportedVersion:
		return "UnsupportedVersion"
	case ErrTruncated:
		return "Truncated"
	case ErrMissingEndMark:
		return "MissingEndMark"
	case ErrDanglingConnection:
		return "DanglingConnection"
	case ErrMalformed:
		return "Malformed"
	default:
		return "Unknown"
	}
}

// Error is a graph serialization error.
type Error struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("graph %s: %s", e.Kind, e.Message)
}

func errf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
