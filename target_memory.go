// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package untar

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// TargetMemory is an in-memory filesystem implementation of [Target]. It is a map of
// file paths to MemoryEntry. Paths must be valid [io/fs] paths, so the destination of
// an extraction into memory is "." or a relative directory. Permissions on entries
// are not enforced.
type TargetMemory struct {
	files sync.Map // map[string]*MemoryEntry
}

// NewTargetMemory creates a new in-memory filesystem.
func NewTargetMemory() *TargetMemory {
	return &TargetMemory{
		files: sync.Map{},
	}
}

// CreateFile creates a new file in the in-memory filesystem. The file is created with the given mode.
// If the overwrite flag is set to false and the file already exists, an error is returned. The parent
// directory must exist. The maxSize parameter can be used to limit the size of the file. If the file
// exceeds the maxSize, an error is returned. If the file is created successfully, the number of bytes
// written is returned.
func (m *TargetMemory) CreateFile(path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error) {
	if !fs.ValidPath(path) {
		return 0, fmt.Errorf("%w: %s", fs.ErrInvalid, path)
	}
	if e, ok := m.files.Load(path); ok {
		if e.(*MemoryEntry).IsDir() {
			return 0, fmt.Errorf("%w: is a directory: %s", fs.ErrExist, path)
		}
		if !overwrite {
			return 0, fmt.Errorf("%w: %s", fs.ErrExist, path)
		}
	}
	if parent := filepath.Dir(path); parent != "." {
		if e, ok := m.files.Load(parent); !ok || !e.(*MemoryEntry).IsDir() {
			return 0, fmt.Errorf("%w: parent directory of %s", fs.ErrNotExist, path)
		}
	}

	// create byte buffered writer
	var buf bytes.Buffer
	w := limitWriter(&buf, maxSize)

	// write to buffer
	n, err := io.Copy(w, src)
	if err != nil {
		return n, err
	}

	// create entry
	m.files.Store(path, &MemoryEntry{
		FileInfo: &MemoryFileInfo{name: filepath.Base(path), size: n, mode: mode.Perm(), modTime: now()},
		Data:     buf.Bytes(),
	})

	// return number of bytes written
	return n, nil
}

// CreateDir creates a new directory in the in-memory filesystem. The parent directory
// must exist. If the directory already exists, nothing is done.
func (m *TargetMemory) CreateDir(path string, mode fs.FileMode) error {
	if !fs.ValidPath(path) {
		return fmt.Errorf("%w: %s", fs.ErrInvalid, path)
	}
	if path == "." {
		return nil
	}

	// check if an entry already exists
	if e, ok := m.files.Load(path); ok {
		if !e.(*MemoryEntry).IsDir() {
			return fmt.Errorf("%w: not a directory: %s", fs.ErrExist, path)
		}
		return nil
	}
	if parent := filepath.Dir(path); parent != "." {
		if e, ok := m.files.Load(parent); !ok || !e.(*MemoryEntry).IsDir() {
			return fmt.Errorf("%w: parent directory of %s", fs.ErrNotExist, path)
		}
	}

	// create entry
	m.files.Store(path, &MemoryEntry{
		FileInfo: &MemoryFileInfo{name: filepath.Base(path), mode: mode.Perm() | fs.ModeDir, modTime: now()},
	})

	return nil
}

// Lstat returns the FileInfo for the given path. If the path does not exist, an error is returned.
func (m *TargetMemory) Lstat(path string) (fs.FileInfo, error) {
	if !fs.ValidPath(path) {
		return nil, fmt.Errorf("%w: %s", fs.ErrInvalid, path)
	}
	if path == "." {
		return &MemoryFileInfo{name: ".", mode: fs.ModeDir | 0755}, nil
	}
	if e, ok := m.files.Load(path); ok {
		return e.(*MemoryEntry).FileInfo, nil
	}
	return nil, fmt.Errorf("%w: %s", fs.ErrNotExist, path)
}

// Chtimes sets the modification time of the entry at the given path.
func (m *TargetMemory) Chtimes(path string, _, mtime time.Time) error {
	if !fs.ValidPath(path) {
		return fmt.Errorf("%w: %s", fs.ErrInvalid, path)
	}
	e, ok := m.files.Load(path)
	if !ok {
		return fmt.Errorf("%w: %s", fs.ErrNotExist, path)
	}
	me := e.(*MemoryEntry)
	fi := *me.FileInfo
	fi.modTime = mtime
	m.files.Store(path, &MemoryEntry{FileInfo: &fi, Data: me.Data})
	return nil
}

// ReadFile returns the content of the file at the given path.
func (m *TargetMemory) ReadFile(path string) ([]byte, error) {
	if !fs.ValidPath(path) {
		return nil, fmt.Errorf("%w: %s", fs.ErrInvalid, path)
	}
	if e, ok := m.files.Load(path); ok {
		me := e.(*MemoryEntry)
		if me.IsDir() {
			return nil, fmt.Errorf("cannot read directory")
		}
		return me.Data, nil
	}
	return nil, fmt.Errorf("%w: %s", fs.ErrNotExist, path)
}

// Paths returns the paths of all entries, sorted.
func (m *TargetMemory) Paths() []string {
	var paths []string
	m.files.Range(func(path, _ any) bool {
		paths = append(paths, path.(string))
		return true
	})
	sort.Strings(paths)
	return paths
}

// MemoryEntry is an entry in the in-memory filesystem
type MemoryEntry struct {
	FileInfo *MemoryFileInfo
	Data     []byte
}

// IsDir returns true if the entry is a directory
func (me *MemoryEntry) IsDir() bool {
	return me.FileInfo.IsDir()
}

// MemoryFileInfo is a FileInfo implementation for the in-memory filesystem
type MemoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

// Name returns the name of the file
func (fi *MemoryFileInfo) Name() string {
	return fi.name
}

// Size returns the size of the file
func (fi *MemoryFileInfo) Size() int64 {
	return fi.size
}

// Mode returns the mode of the file
func (fi *MemoryFileInfo) Mode() fs.FileMode {
	return fi.mode
}

// ModTime returns the modification time of the file
func (fi *MemoryFileInfo) ModTime() time.Time {
	return fi.modTime
}

// IsDir returns true if the file is a directory
func (fi *MemoryFileInfo) IsDir() bool {
	return fi.mode.IsDir()
}

// Sys returns the underlying data source (nil for in-memory filesystem)
func (fi *MemoryFileInfo) Sys() any {
	return nil
}
