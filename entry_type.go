// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package untar

import "fmt"

// EntryType classifies an archive member. The set is closed: every type flag byte
// is mapped by [parseEntryType] or rejected.
type EntryType int

const (
	RegularFile EntryType = iota
	HardLink
	SymbolicLink
	CharDevice
	BlockDevice
	Directory
	Fifo
	Reserved
	DirectoryEntry
	LongLinkName
	LongPathname
	ContinuationFile
	RenameCommand
	SparseFile
	VolumeHeaderName
)

// parseEntryType maps a header type flag byte to its [EntryType].
// The NUL flag is the regular file marker of old archives.
func parseEntryType(flag byte) (EntryType, error) {
	switch flag {
	case '0', 0:
		return RegularFile, nil
	case '1':
		return HardLink, nil
	case '2':
		return SymbolicLink, nil
	case '3':
		return CharDevice, nil
	case '4':
		return BlockDevice, nil
	case '5':
		return Directory, nil
	case '6':
		return Fifo, nil
	case '7':
		return Reserved, nil
	case 'D':
		return DirectoryEntry, nil
	case 'K':
		return LongLinkName, nil
	case 'L':
		return LongPathname, nil
	case 'M':
		return ContinuationFile, nil
	case 'N':
		return RenameCommand, nil
	case 'S':
		return SparseFile, nil
	case 'V':
		return VolumeHeaderName, nil
	default:
		return 0, fmt.Errorf("unknown type flag %q", flag)
	}
}

// String returns the human readable label of t.
func (t EntryType) String() string {
	switch t {
	case RegularFile:
		return "Regular file"
	case HardLink:
		return "Hard link"
	case SymbolicLink:
		return "Symbolic link"
	case CharDevice:
		return "Character device node"
	case BlockDevice:
		return "Block device node"
	case Directory:
		return "Directory"
	case Fifo:
		return "FIFO node"
	case Reserved:
		return "Reserved"
	case DirectoryEntry:
		return "Directory entry"
	case LongLinkName:
		return "Long linkname"
	case LongPathname:
		return "Long pathname"
	case ContinuationFile:
		return "Continue of last file"
	case RenameCommand:
		return "Rename/symlink command"
	case SparseFile:
		return "`sparse' regular file"
	case VolumeHeaderName:
		return "`name' is tape/volume header name"
	default:
		return fmt.Sprintf("EntryType(%d)", int(t))
	}
}
