package types

import (
	"errors"
	"strings"
)

// FailureKind classifies why a data source produced no entries.
type FailureKind int

const (
	FailureNotFound FailureKind = iota + 1
	FailurePermission
	FailureRead
	FailureDecode
	FailureUnsupported
)

var (
	ErrNotFound    = errors.New("data file not found")
	ErrPermission  = errors.New("data file not readable")
	ErrRead        = errors.New("data file read failed")
	ErrDecode      = errors.New("data file could not be decoded")
	ErrUnsupported = errors.New("data file format not supported")
)

// String returns the name used as the failing set's name fragment.
func (k FailureKind) String() string {
	switch k {
	case FailureNotFound:
		return "FileNotFoundError"
	case FailurePermission:
		return "PermissionError"
	case FailureRead:
		return "IOError"
	case FailureDecode:
		return "DecodeError"
	case FailureUnsupported:
		return "UnsupportedFormatError"
	}
	return "LoadError"
}

// Sentinel returns the error matched by errors.Is for this kind.
func (k FailureKind) Sentinel() error {
	switch k {
	case FailureNotFound:
		return ErrNotFound
	case FailurePermission:
		return ErrPermission
	case FailureRead:
		return ErrRead
	case FailureDecode:
		return ErrDecode
	case FailureUnsupported:
		return ErrUnsupported
	}
	return nil
}

// Failure records a data-source load failure. It is carried as data
// through expansion and only surfaces as an error when the affected test
// runs.
type Failure struct {
	Kind   FailureKind
	Path   string
	Reason string
	Err    error
}

// NewFailure builds a Failure whose Reason always mentions path.
func NewFailure(kind FailureKind, path string, err error) *Failure {
	reason := kind.Sentinel().Error()
	if err != nil {
		reason = err.Error()
	}
	if path != "" && !strings.Contains(reason, path) {
		reason = path + ": " + reason
	}
	return &Failure{Kind: kind, Path: path, Reason: reason, Err: err}
}

func (f *Failure) Error() string {
	return f.Kind.String() + ": " + f.Reason
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Is matches the sentinel for the failure's kind.
func (f *Failure) Is(target error) bool {
	return target != nil && target == f.Kind.Sentinel()
}
