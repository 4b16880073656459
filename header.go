// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package untar

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// blockSize is the size of a header block and the alignment of content regions
const blockSize = 512

// common header layout, shared by both dialects
const (
	offName     = 0
	lenName     = 100
	offMode     = 100
	lenMode     = 8
	offUID      = 108
	lenUID      = 8
	offGID      = 116
	lenGID      = 8
	offSize     = 124
	lenSize     = 12
	offMtime    = 136
	lenMtime    = 12
	offChksum   = 148
	lenChksum   = 8
	offTypeflag = 156
	offLinkname = 157
	lenLinkname = 100
	offRest     = 257
	lenRest     = 255
)

// layout of the rest region, relative to offRest. Both dialects share the
// fields up to devminor.
const (
	restMagic    = 0
	lenMagic     = 6
	restVersion  = 6
	lenVersion   = 2
	restUname    = 8
	lenUname     = 32
	restGname    = 40
	lenGname     = 32
	restDevMajor = 72
	lenDevMajor  = 8
	restDevMinor = 80
	lenDevMinor  = 8
)

// ustar only: the prefix joined in front of the name
const (
	restPrefix = 88
	lenPrefix  = 155
)

// magicUSTAR identifies the POSIX dialect
var magicUSTAR = []byte("ustar\x00")

// decodeHeader decodes a 512-byte header block into an entry without content.
// All-zero blocks must be filtered by the caller.
func decodeHeader(block []byte) (*Entry, error) {
	if len(block) != blockSize {
		return nil, &FormatError{Reason: "header block must be 512 bytes, got " + strconv.Itoa(len(block))}
	}

	e := &Entry{
		Name:     cString(field(block, offName, lenName)),
		Mode:     cString(field(block, offMode, lenMode)),
		Linkname: cString(field(block, offLinkname, lenLinkname)),
	}

	var err error
	if e.UID, err = numericField(block, "uid", offUID, lenUID); err != nil {
		return nil, err
	}
	if e.GID, err = numericField(block, "gid", offGID, lenGID); err != nil {
		return nil, err
	}
	if e.Size, err = numericField(block, "size", offSize, lenSize); err != nil {
		return nil, err
	}
	mtime, err := numericField(block, "mtime", offMtime, lenMtime)
	if err != nil {
		return nil, err
	}
	e.ModTime = time.Unix(mtime, 0)
	if e.Checksum, err = numericField(block, "checksum", offChksum, lenChksum); err != nil {
		return nil, err
	}
	if e.Type, err = parseEntryType(block[offTypeflag]); err != nil {
		return nil, &FormatError{Field: "typeflag", Reason: err.Error()}
	}

	rest := field(block, offRest, lenRest)
	if bytes.Equal(field(rest, restMagic, lenMagic), magicUSTAR) {
		decodeUSTAR(e, rest)
	} else {
		decodeV7(e, rest)
	}
	return e, nil
}

// decodeUSTAR decodes the rest region of a POSIX ustar header.
func decodeUSTAR(e *Entry, rest []byte) {
	e.Format = FormatUSTAR
	decodeOwnerAndDevice(e, rest)
	if prefix := cString(field(rest, restPrefix, lenPrefix)); prefix != "" {
		e.Name = prefix + "/" + e.Name
	}
}

// decodeV7 decodes the rest region of a pre-POSIX header. Owner and group names
// may still be present, there is no prefix.
func decodeV7(e *Entry, rest []byte) {
	e.Format = FormatV7
	decodeOwnerAndDevice(e, rest)
}

// decodeOwnerAndDevice decodes the fields both dialects share in the rest region.
// Device numbers are only decoded for device entries, other writers leave
// arbitrary bytes there. An unreadable device number decodes as 0.
func decodeOwnerAndDevice(e *Entry, rest []byte) {
	e.Uname = cString(field(rest, restUname, lenUname))
	e.Gname = cString(field(rest, restGname, lenGname))

	if e.Type != CharDevice && e.Type != BlockDevice {
		return
	}
	if v, err := parseNumeric(field(rest, restDevMajor, lenDevMajor)); err == nil {
		e.DevMajor = v
	}
	if v, err := parseNumeric(field(rest, restDevMinor, lenDevMinor)); err == nil {
		e.DevMinor = v
	}
}

// field returns the byte range [off, off+n) of b
func field(b []byte, off, n int) []byte {
	return b[off : off+n]
}

// cString strips trailing NUL bytes from a textual field
func cString(b []byte) string {
	return string(bytes.TrimRight(b, "\x00"))
}

// numericField decodes a numeric header field and reports failures as [FormatError].
func numericField(b []byte, name string, off, n int) (int64, error) {
	v, err := parseNumeric(field(b, off, n))
	if err != nil {
		return 0, &FormatError{Field: name, Reason: err.Error()}
	}
	return v, nil
}

// parseNumeric decodes an octal ASCII number. Surrounding spaces and NULs are
// ignored and an empty field is zero. A leading 0x80 byte marks the GNU base-256
// encoding used for values that do not fit the octal field.
func parseNumeric(b []byte) (int64, error) {
	if len(b) > 0 && b[0]&0x80 != 0 {
		return parseBase256(b)
	}

	s := strings.Trim(string(b), " \x00")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 8, 63)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok {
			err = ne.Err
		}
		return 0, &numericError{value: s, err: err}
	}
	return int64(n), nil
}

// parseBase256 decodes the GNU binary number format. Negative values are rejected.
func parseBase256(b []byte) (int64, error) {
	if b[0] == 0xff {
		return 0, &numericError{value: "base-256", err: errNegative}
	}
	var n int64
	for i, c := range b {
		if i == 0 {
			c &= 0x7f
		}
		if n > math.MaxInt64>>8 {
			return 0, &numericError{value: "base-256", err: strconv.ErrRange}
		}
		n = n<<8 | int64(c)
	}
	return n, nil
}

// errNegative is reported for negative base-256 numbers
var errNegative = errors.New("negative value")

// numericError describes a numeric field that could not be decoded
type numericError struct {
	value string
	err   error
}

func (e *numericError) Error() string {
	return "cannot parse " + strconv.Quote(e.value) + " as octal number: " + e.err.Error()
}

// checksums returns the unsigned sum of block and the signed sum some historic
// writers produced. The checksum field itself is counted as eight spaces.
func checksums(block []byte) (unsigned int64, signed int64) {
	for i, c := range block {
		if i >= offChksum && i < offChksum+lenChksum {
			c = ' '
		}
		unsigned += int64(c)
		signed += int64(int8(c))
	}
	return unsigned, signed
}

// verifyChecksum compares the stored checksum of e with the sums of block.
func verifyChecksum(e *Entry, block []byte) error {
	unsigned, signed := checksums(block)
	if e.Checksum != unsigned && e.Checksum != signed {
		return &FormatError{
			Field:  "checksum",
			Reason: "stored " + strconv.FormatInt(e.Checksum, 10) + ", computed " + strconv.FormatInt(unsigned, 10),
			Err:    ErrChecksum,
		}
	}
	return nil
}

// isZeroBlock returns true if every byte of block is zero
func isZeroBlock(block []byte) bool {
	for _, c := range block {
		if c != 0 {
			return false
		}
	}
	return true
}
