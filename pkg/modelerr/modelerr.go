// Package modelerr is the four-level error taxonomy every component in
// machomodel surfaces through: IoError, MalformedBinary, UnsupportedBinary
// and InconsistentModel. Each is a sentinel usable with errors.Is, wrapping
// a message and, where useful, the location the failure occurred at.
package modelerr

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is / errors.As. Every wrapped error in this package
// satisfies errors.Is against exactly one of these.
var (
	// ErrIo marks an unreadable file.
	ErrIo = errors.New("io error")
	// ErrMalformedBinary marks a container, symbol-table, or STABS/RTTI
	// structure that fails structural checks.
	ErrMalformedBinary = errors.New("malformed binary")
	// ErrUnsupportedBinary marks a well-formed binary this reconstruction
	// pipeline does not support (64-bit, missing CPU slice, non-zero
	// vmi_class_type_info flags).
	ErrUnsupportedBinary = errors.New("unsupported binary")
	// ErrInconsistentModel marks a cross-entity invariant violation
	// (base-class size mismatch, vtable entry with no function record).
	// Reported as a warning; the caller retains partial results.
	ErrInconsistentModel = errors.New("inconsistent model")
)

// IoError wraps a failure to read the input file.
type IoError struct {
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrIo, e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return ErrIo }

// NewIoError builds an IoError for path, wrapping the underlying cause.
func NewIoError(path string, err error) error {
	return &IoError{Path: path, Err: err}
}

// MalformedBinary wraps a structural parse failure at a named location
// (e.g. "load commands", "symbol table", "vtable at 0x1000").
type MalformedBinary struct {
	Location string
	Err      error
}

func (e *MalformedBinary) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrMalformedBinary, e.Location, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrMalformedBinary, e.Location)
}

func (e *MalformedBinary) Unwrap() error { return ErrMalformedBinary }

// NewMalformedBinary builds a MalformedBinary at location, optionally
// wrapping cause (cause may be nil).
func NewMalformedBinary(location string, cause error) error {
	return &MalformedBinary{Location: location, Err: cause}
}

// UnsupportedBinary wraps a well-formed input this pipeline refuses to
// process (64-bit, requested CPU slice absent, unsupported RTTI flags).
type UnsupportedBinary struct {
	Reason string
}

func (e *UnsupportedBinary) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnsupportedBinary, e.Reason)
}

func (e *UnsupportedBinary) Unwrap() error { return ErrUnsupportedBinary }

// NewUnsupportedBinary builds an UnsupportedBinary with the given reason.
func NewUnsupportedBinary(reason string) error {
	return &UnsupportedBinary{Reason: reason}
}

// InconsistentModel wraps a cross-entity invariant violation discovered
// during reconstruction. These are always non-fatal: the caller logs and
// keeps the partial result that was already built.
type InconsistentModel struct {
	Location string
	Detail   string
}

func (e *InconsistentModel) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInconsistentModel, e.Location, e.Detail)
}

func (e *InconsistentModel) Unwrap() error { return ErrInconsistentModel }

// NewInconsistentModel builds an InconsistentModel at location describing
// detail.
func NewInconsistentModel(location, detail string) error {
	return &InconsistentModel{Location: location, Detail: detail}
}
