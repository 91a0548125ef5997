package mdbxx

import (
	"errors"
	"fmt"

	"github.com/erigontech/mdbx-go/mdbx"
)

// Kind partitions every failure this package can surface into a closed
// set, so callers can switch exhaustively instead of matching on base
// classes or sentinel values.
type Kind uint8

const (
	// KindRuntime is the catch-all for any engine status code that has
	// no more specific classification.
	KindRuntime Kind = iota

	// KindLogic marks API misuse: operating on a committed transaction,
	// a closed environment, a closed cursor. Logic errors are produced
	// by this package, never by the engine.
	KindLogic

	// KindKeyExist: an insert collided with an existing key under flags
	// that forbid overwrite.
	KindKeyExist

	// KindNotFound: the key/data pair was not found. Point lookups and
	// cursor positioning report absence as a boolean instead; this kind
	// only appears where absence is not a documented outcome.
	KindNotFound

	// KindCorrupted: the on-disk structure failed a consistency check.
	// The environment should be considered unusable.
	KindCorrupted

	// KindPanic: the engine detected a fatal internal condition. The
	// process should stop using this environment.
	KindPanic
)

func (k Kind) String() string {
	switch k {
	case KindLogic:
		return "logic"
	case KindKeyExist:
		return "key-exist"
	case KindNotFound:
		return "not-found"
	case KindCorrupted:
		return "corrupted"
	case KindPanic:
		return "panic"
	default:
		return "runtime"
	}
}

// ErrorCode is a raw MDBX status code. Zero means success.
type ErrorCode int

// Status codes, matching libmdbx.
const (
	Success ErrorCode = 0

	ErrKeyExist     ErrorCode = -30799
	ErrNotFound     ErrorCode = -30798
	ErrPageNotFound ErrorCode = -30797
	ErrCorrupted    ErrorCode = -30796
	ErrPanic        ErrorCode = -30795

	ErrVersionMismatch ErrorCode = -30794
	ErrInvalid         ErrorCode = -30793
	ErrMapFull         ErrorCode = -30792
	ErrDBsFull         ErrorCode = -30791
	ErrReadersFull     ErrorCode = -30790
	ErrTxnFull         ErrorCode = -30788
	ErrCursorFull      ErrorCode = -30787
	ErrPageFull        ErrorCode = -30786
	ErrIncompatible    ErrorCode = -30784
	ErrBadRSlot        ErrorCode = -30783
	ErrBadTxn          ErrorCode = -30782
	ErrBadValSize      ErrorCode = -30781
	ErrBadDBI          ErrorCode = -30780
	ErrProblem         ErrorCode = -30779
	ErrBusy            ErrorCode = -30778
)

// kindOf is the total classification table: one Kind per status code,
// deterministic. Page-not-found is a corruption symptom (a referenced
// page is missing from the tree), so it classifies with ErrCorrupted.
func kindOf(code ErrorCode) Kind {
	switch code {
	case ErrKeyExist:
		return KindKeyExist
	case ErrNotFound:
		return KindNotFound
	case ErrCorrupted, ErrPageNotFound:
		return KindCorrupted
	case ErrPanic:
		return KindPanic
	default:
		return KindRuntime
	}
}

// Error carries the failing engine operation, the raw status code and
// its classification. It wraps the engine's own error when one exists.
type Error struct {
	Kind Kind
	Op   string    // engine operation, e.g. "mdbx_txn_commit"
	Code ErrorCode // raw status code; 0 for logic errors with no engine code
	Err  error     // underlying engine error, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mdbxx: %s: %v", e.Op, e.Err)
	}
	if e.Code != 0 {
		return fmt.Sprintf("mdbxx: %s: %s (%d)", e.Op, e.Kind, e.Code)
	}
	return fmt.Sprintf("mdbxx: %s: %s error", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// operr classifies a nonzero engine result. A nil err returns nil, so
// call sites can translate unconditionally.
func operr(op string, err error) error {
	if err == nil {
		return nil
	}
	code := errnoOf(err)
	return &Error{Kind: kindOf(code), Op: op, Code: code, Err: err}
}

// logicErr reports misuse of a released or mis-stateful handle.
func logicErr(op string, code ErrorCode) error {
	return &Error{Kind: KindLogic, Op: op, Code: code}
}

// errnoOf digs the raw status code out of an mdbx-go error. The engine
// reports NOTFOUND as a bare sentinel rather than a wrapped errno, so
// it needs its own check.
func errnoOf(err error) ErrorCode {
	if mdbx.IsNotFound(err) {
		return ErrNotFound
	}
	var op *mdbx.OpError
	if errors.As(err, &op) {
		err = op.Errno
	}
	var e mdbx.Errno
	if errors.As(err, &e) {
		return ErrorCode(e)
	}
	return ErrProblem
}

// KindOf returns the classification of err, or KindRuntime when err did
// not originate in this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindRuntime
}

// Code returns the raw status code carried by err, or Success for nil.
func Code(err error) ErrorCode {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrProblem
}

// IsNotFound returns true if the error classifies as not-found.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsKeyExist returns true if the error classifies as key-exist.
func IsKeyExist(err error) bool {
	return KindOf(err) == KindKeyExist
}

// IsCorrupted returns true if the error indicates database corruption.
func IsCorrupted(err error) bool {
	return KindOf(err) == KindCorrupted
}

// IsPanic returns true if the error indicates a fatal engine condition.
func IsPanic(err error) bool {
	return KindOf(err) == KindPanic
}

// IsLogic returns true if the error reports misuse of this API.
func IsLogic(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindLogic
	}
	return false
}
