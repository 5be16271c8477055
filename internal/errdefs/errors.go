// Package errdefs defines the service's error taxonomy so callers can
// tell retriable failures (external ports) from fatal ones (bad input,
// broken storage) without string matching.
package errdefs

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// KindParse: malformed document, the caller must resubmit a valid file.
	KindParse Kind = "parse_error"
	// KindChunkConfig: invalid size/overlap configuration, fatal at startup.
	KindChunkConfig Kind = "chunk_config_error"
	// KindEmbedding: embedding port failure, retriable by the caller.
	KindEmbedding Kind = "embedding_error"
	// KindGeneration: language-model port failure, retriable by the caller.
	KindGeneration Kind = "generation_error"
	// KindStoreUnavailable: persisted collection inaccessible.
	KindStoreUnavailable Kind = "store_unavailable"
)

// Error carries a Kind alongside the wrapped cause.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Err: errors.New(msg)}
}

func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches a kind to err. A nil err returns nil so call sites can
// wrap unconditionally.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// KindOf returns the kind of err, or "" when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
