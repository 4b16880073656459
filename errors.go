// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package untar

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrFormat is matched by every [FormatError]. A non-zero header block that cannot be
	// decoded rejects the whole archive.
	ErrFormat = errors.New("invalid tar header")

	// ErrChecksum is returned when the stored header checksum does not match the sum
	// computed over the header block.
	ErrChecksum = errors.New("header checksum mismatch")

	// ErrTruncated is returned when the archive ends inside the content region of a member.
	ErrTruncated = errors.New("truncated content")

	// ErrNotFound is matched by every [NotFoundError].
	ErrNotFound = errors.New("entry not found")

	// ErrExtract is matched by every [ExtractError].
	ErrExtract = errors.New("extraction failed")

	// ErrMaxInputSizeExceeded is returned when the archive is larger than the configured maximum.
	ErrMaxInputSizeExceeded = errors.New("maximum input size exceeded")

	// ErrMaxEntriesExceeded is returned when the archive holds more members than allowed.
	ErrMaxEntriesExceeded = errors.New("maximum number of entries exceeded")

	// ErrMaxExtractionSizeExceeded is returned when extracted content exceeds the configured maximum.
	ErrMaxExtractionSizeExceeded = errors.New("maximum extraction size exceeded")
)

// FormatError describes a header block that could not be decoded.
type FormatError struct {
	// Offset is the position of the header block in the archive.
	Offset int64

	// Field is the name of the header field that failed, if any.
	Field string

	// Reason describes the failure.
	Reason string

	// Err is an optional more specific cause, e.g. [ErrChecksum].
	Err error
}

func (e *FormatError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s at offset %d: field %s: %s", ErrFormat, e.Offset, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s at offset %d: %s", ErrFormat, e.Offset, e.Reason)
}

// Is reports ErrFormat, and the wrapped cause if set.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat || (e.Err != nil && target == e.Err)
}

// Unwrap returns the wrapped cause.
func (e *FormatError) Unwrap() error {
	return e.Err
}

// NotFoundError is returned when a name is not present in the catalog.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNotFound, e.Name)
}

// Is reports ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ExtractError is returned when an entry cannot be written to the destination.
type ExtractError struct {
	Name string
	Err  error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("cannot extract %s: %s", e.Name, e.Err)
}

// Is reports ErrExtract.
func (e *ExtractError) Is(target error) bool {
	return target == ErrExtract
}

// Unwrap returns the underlying error.
func (e *ExtractError) Unwrap() error {
	return e.Err
}
