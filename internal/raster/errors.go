package raster

import (
	"errors"
	"fmt"
)

// Kind is a stable category for programmatic error handling.
//
// Callers should branch on Kind (or the sentinel errors below) rather than
// matching error strings.
type Kind string

const (
	// KindIO covers missing, unreadable or unwritable files and short reads/writes.
	KindIO Kind = "IoError"

	// KindFormat covers malformed or unsupported raster streams.
	KindFormat Kind = "FormatError"

	// KindInvariant covers buffers that violate the dimension contract after
	// they were accepted by the codec.
	KindInvariant Kind = "InvariantViolation"
)

// Sentinel causes carried by format and invariant errors. Use errors.Is.
var (
	ErrBadMagic          = errors.New("bad magic")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrUnsupportedDepth  = errors.New("unsupported depth")
	ErrTruncated         = errors.New("truncated pixel data")
	ErrMalformedHeader   = errors.New("malformed header")
	ErrMalformedPixel    = errors.New("malformed pixel data")
	ErrLengthMismatch    = errors.New("sample count does not match dimensions")
	ErrInvalidScale      = errors.New("invalid scale")
)

// Error is the package's structured error type.
type Error struct {
	Kind Kind
	// Op names the operation that failed, e.g. "decode text" or "write".
	Op string
	// Path is the file involved, if any.
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func formatError(op string, cause error, detail string, args ...any) error {
	if detail != "" {
		cause = fmt.Errorf("%w: "+detail, append([]any{cause}, args...)...)
	}
	return &Error{Kind: KindFormat, Op: op, Err: cause}
}

func ioError(op, path string, cause error) error {
	return &Error{Kind: KindIO, Op: op, Path: path, Err: cause}
}

func invariantError(op string, cause error, detail string, args ...any) error {
	if detail != "" {
		cause = fmt.Errorf("%w: "+detail, append([]any{cause}, args...)...)
	}
	return &Error{Kind: KindInvariant, Op: op, Err: cause}
}

// InvariantError reports a dimension or length contract violation detected
// outside this package, such as in the embedding transforms.
func InvariantError(op, detail string, args ...any) error {
	return invariantError(op, ErrLengthMismatch, detail, args...)
}

// IsKind reports whether err is (or wraps) an *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// KindOf returns the Kind of the outermost *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}

// withPath attaches path to err if it is an *Error that has none yet.
func withPath(err error, path string) error {
	var e *Error
	if errors.As(err, &e) && e.Path == "" {
		e.Path = path
	}
	return err
}
