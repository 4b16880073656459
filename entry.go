// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package untar

import (
	"strings"
	"time"
)

// Format is the header dialect a member was stored with.
type Format int

const (
	// FormatV7 is the pre-POSIX header layout. GNU archives, whose magic is "ustar  \x00",
	// are decoded with this layout as well.
	FormatV7 Format = iota

	// FormatUSTAR is the POSIX.1-1988 layout, identified by the "ustar\x00" magic.
	FormatUSTAR
)

// String returns the name of the format.
func (f Format) String() string {
	if f == FormatUSTAR {
		return "ustar"
	}
	return "v7"
}

// Entry is one member of an archive.
type Entry struct {
	Name     string    // path of the member, unique within a catalog
	Mode     string    // permission field, kept verbatim
	UID      int64     // owner id
	GID      int64     // group id
	Size     int64     // content length in bytes
	ModTime  time.Time // modification time
	Checksum int64     // stored header checksum
	Type     EntryType // member type
	Linkname string    // target of link types
	Uname    string    // owner name
	Gname    string    // group name
	DevMajor int64     // major device number (device types only)
	DevMinor int64     // minor device number (device types only)
	Format   Format    // header dialect
	Offset   int64     // offset of the header block in the archive

	// Content holds exactly Size bytes of payload. It is shared with the catalog and
	// must not be modified.
	Content []byte
}

// IsDir returns true if the entry is an explicit directory.
func (e *Entry) IsDir() bool {
	return e.Type == Directory
}

// Text returns a textual view of the content. Bytes outside of the ASCII range are dropped.
func (e *Entry) Text() string {
	var sb strings.Builder
	sb.Grow(len(e.Content))
	for _, b := range e.Content {
		if b < 0x80 {
			sb.WriteByte(b)
		}
	}
	return sb.String()
}
