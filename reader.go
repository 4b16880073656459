// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package untar

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

// archiveReader turns a flat byte stream into a sequence of complete entries.
// It owns the read cursor of the stream.
//
// Termination policy: a single all-zero block is padding and is skipped. A second
// consecutive all-zero block is the end-of-archive marker and nothing after it is
// read. A stream that ends, or ends with less than a full block, terminates the
// scan without an error.
type archiveReader struct {
	r      *limitErrorReader
	cfg    *Config
	td     *TelemetryData
	offset int64
	block  [blockSize]byte
	done   bool
}

// newArchiveReader returns a reader positioned at offset 0 of r
func newArchiveReader(r io.Reader, cfg *Config, td *TelemetryData) *archiveReader {
	return &archiveReader{
		r:   newLimitErrorReader(r, cfg.MaxInputSize()),
		cfg: cfg,
		td:  td,
	}
}

// Next returns the next entry in archive order. It returns io.EOF once the
// archive is exhausted or the end-of-archive marker was found.
func (ar *archiveReader) Next(ctx context.Context) (*Entry, error) {
	if ar.done {
		return nil, io.EOF
	}

	zeroBlocks := 0
	for {
		// check if context is canceled
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		headerOffset := ar.offset
		ok, err := ar.readBlock()
		if err != nil {
			return nil, err
		}
		if !ok {
			ar.done = true
			return nil, io.EOF
		}

		// padding or end-of-archive marker
		if isZeroBlock(ar.block[:]) {
			zeroBlocks++
			if zeroBlocks == 2 {
				ar.cfg.Logger().Debug("end of archive marker", "offset", headerOffset)
				ar.done = true
				return nil, io.EOF
			}
			continue
		}
		if zeroBlocks == 1 {
			ar.td.PaddingBlocks++
		}

		entry, err := decodeHeader(ar.block[:])
		if err != nil {
			return nil, atOffset(err, headerOffset)
		}
		if ar.cfg.VerifyChecksum() {
			if err := verifyChecksum(entry, ar.block[:]); err != nil {
				return nil, atOffset(err, headerOffset)
			}
		}
		entry.Offset = headerOffset

		if err := ar.readContent(entry); err != nil {
			return nil, err
		}
		return entry, nil
	}
}

// readBlock reads the next header block. It returns false if less than a full
// block is left in the stream.
func (ar *archiveReader) readBlock() (bool, error) {
	n, err := io.ReadFull(ar.r, ar.block[:])
	ar.offset += int64(n)
	switch {
	case err == nil:
		return true, nil
	case err == io.EOF:
		return false, nil
	case err == io.ErrUnexpectedEOF:
		ar.cfg.Logger().Debug("ignoring trailing partial block", "offset", ar.offset-int64(n), "size", n)
		return false, nil
	case errors.Is(err, ErrMaxInputSizeExceeded):
		return false, err
	default:
		return false, errors.Wrapf(err, "read header at offset %d", ar.offset-int64(n))
	}
}

// readContent reads the content region of e and skips the padding up to the
// next block boundary.
func (ar *archiveReader) readContent(e *Entry) error {
	content, err := io.ReadAll(io.LimitReader(ar.r, e.Size))
	ar.offset += int64(len(content))
	if err != nil {
		if errors.Is(err, ErrMaxInputSizeExceeded) {
			return err
		}
		return errors.Wrapf(err, "read content of %s", e.Name)
	}
	if int64(len(content)) < e.Size {
		return errors.Wrapf(ErrTruncated, "%s: expected %d bytes, got %d", e.Name, e.Size, len(content))
	}
	e.Content = content

	// a short padding region means the stream ends here, the next readBlock reports it
	padding := (blockSize - e.Size%blockSize) % blockSize
	skipped, err := io.CopyN(io.Discard, ar.r, padding)
	ar.offset += skipped
	if err != nil && err != io.EOF {
		if errors.Is(err, ErrMaxInputSizeExceeded) {
			return err
		}
		return errors.Wrapf(err, "skip padding of %s", e.Name)
	}
	return nil
}

// InputSize returns the number of bytes consumed from the underlying stream
func (ar *archiveReader) InputSize() int64 {
	return ar.r.ReadBytes()
}

// atOffset sets the block offset on a FormatError
func atOffset(err error, offset int64) error {
	var fe *FormatError
	if errors.As(err, &fe) {
		fe.Offset = offset
	}
	return err
}
