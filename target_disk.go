// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package untar

import (
	"fmt"
	"io"
	"io/fs"
	"os"
)

// TargetDisk is the struct type that holds all information for interacting with the filesystem
type TargetDisk struct{}

// NewTargetDisk creates a new target that writes to the filesystem of the OS
func NewTargetDisk() *TargetDisk {
	// create object
	td := &TargetDisk{}
	return td
}

// CreateDir creates the directory path with the given mode. The parent directory must
// exist already. An existing directory at path is left as it is.
func (d *TargetDisk) CreateDir(path string, mode fs.FileMode) error {
	err := os.Mkdir(path, mode.Perm())
	if err == nil {
		return nil
	}
	if fi, statErr := os.Lstat(path); statErr == nil && fi.IsDir() {
		return nil
	}
	return fmt.Errorf("failed to create directory (%w)", err)
}

// CreateFile creates a file at the specified path with src as content.
// The mode parameter is the file mode that should be set on the file. If the file already exists and
// overwrite is false, an error should be returned. If the file does not exist, it should be created.
// The size of the file should not exceed maxSize. If the file is created successfully, the number of bytes written
// should be returned. If an error occurs, the number of bytes written should be returned along with the error.
// If maxSize < 0, the file size is not limited.
func (d *TargetDisk) CreateFile(path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error) {
	// Check for path validity and if file existence+overwrite
	if _, err := os.Lstat(path); !os.IsNotExist(err) {

		// something wrong with path
		if err != nil {
			return 0, fmt.Errorf("invalid path: %w", err)
		}

		// check for overwrite
		if !overwrite {
			return 0, fmt.Errorf("file already exists")
		}
	}

	// create dst file
	dstFile, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		dstFile.Close()
	}()

	// write data to file
	writer := limitWriter(dstFile, maxSize)
	n, err := io.Copy(writer, src)
	if err != nil {
		return n, fmt.Errorf("failed to write file: %w", err)
	}

	return n, err
}

// Lstat returns the FileInfo structure describing the named file.
// If there is an error, it will be of type *PathError.
func (d *TargetDisk) Lstat(name string) (fs.FileInfo, error) {
	return os.Lstat(name)
}
