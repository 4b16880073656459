// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package untar

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

//go:generate mockgen -source=target.go -destination=mock_target_test.go -package=untar_test

// Target specifies all function that are needed to be implemented to extract contents from an archive
type Target interface {
	// CreateFile creates a file at the specified path with src as content. The mode parameter is the file mode that
	// should be set on the file. If the file already exists and overwrite is false, an error should be returned. The
	// parent directory is not created; if it does not exist an error should be returned. The size of the file should
	// not exceed maxSize. If the file is created successfully, the number of bytes written should be returned. If an
	// error occurs, the number of bytes written should be returned along with the error. If maxSize < 0, the file
	// size is not limited.
	CreateFile(path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error)

	// CreateDir creates at the specified path with the specified mode. The parent directory must exist.
	// If the directory already exists, nothing is done.
	// The function returns an error if there's a problem creating the directory. If the function completes successfully,
	// it returns nil.
	CreateDir(path string, mode fs.FileMode) error

	// Lstat see docs for os.Lstat. Main purpose is to check for symlinks in the extraction path
	// and for zip-slip attacks.
	Lstat(path string) (fs.FileInfo, error)

	// Chtimes see docs for os.Chtimes. Main purpose is to restore the modification time of an entry.
	// Symlinks are not followed.
	Chtimes(name string, atime, mtime time.Time) error
}

// targetPath converts the slash separated name of an entry to a path below dst
func targetPath(dst string, name string) string {
	parts := strings.Split(name, "/")
	return filepath.Join(dst, filepath.Join(parts...))
}

// prepareDestination ensures that dst exists. If it does not exist and
// cfg.CreateDestination() is set, it is created along with its missing parents
// using cfg.CustomCreateDirMode().
func prepareDestination(t Target, dst string, cfg *Config) error {
	if len(dst) == 0 || dst == "." {
		return nil
	}
	_, err := t.Lstat(dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("invalid destination: %w", err)
	}
	if !cfg.CreateDestination() {
		return fmt.Errorf("destination does not exist")
	}
	if err := createDirAll(t, dst, cfg.CustomCreateDirMode()); err != nil {
		return fmt.Errorf("failed to create destination directory %w", err)
	}
	cfg.Logger().Info("created destination directory", "path", dst)
	return nil
}

// createDirAll creates path and every missing parent, outermost first.
func createDirAll(t Target, path string, mode fs.FileMode) error {
	var missing []string
	for p := path; ; p = filepath.Dir(p) {
		_, err := t.Lstat(p)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		missing = append(missing, p)
		if filepath.Dir(p) == p {
			break
		}
	}
	for i := len(missing) - 1; i >= 0; i-- {
		if err := t.CreateDir(missing[i], mode); err != nil {
			return err
		}
	}
	return nil
}

// createDir creates the directory entry name below dst.
//
// If the name is empty, the function returns an error.
//
// If the path contains path traversal or a symlink, the function returns an error.
func createDir(t Target, dst string, name string, cfg *Config) (string, error) {
	if len(name) == 0 {
		return "", fmt.Errorf("cannot create directory without name")
	}
	if err := securityCheck(t, dst, name); err != nil {
		return "", fmt.Errorf("security check path failed: %w", err)
	}
	path := targetPath(dst, name)
	return path, t.CreateDir(path, cfg.CustomCreateDirMode())
}

// createFile writes src to the file entry name below dst. Missing parent
// directories are not created.
//
// If the name is empty, the function returns an error.
//
// If the path contains path traversal or a symlink, the function returns an error.
//
// If the file is created successfully, the function returns the number of bytes written and nil.
func createFile(t Target, dst string, name string, src io.Reader, maxSize int64, cfg *Config) (string, int64, error) {
	if len(name) == 0 {
		return "", 0, fmt.Errorf("cannot create file without name")
	}
	if err := securityCheck(t, dst, name); err != nil {
		return "", 0, fmt.Errorf("security check path failed: %w", err)
	}
	path := targetPath(dst, name)
	n, err := t.CreateFile(path, src, cfg.CustomFileMode(), cfg.Overwrite(), maxSize)
	return path, n, err
}

// securityCheck checks if name, relative to dst, contains path traversal
// and if an existing element of the path is a symlink.
func securityCheck(t Target, dst string, name string) error {
	// an absolute name is only refused if there is no destination to anchor it
	if len(dst) == 0 && filepath.IsAbs(name) {
		return fmt.Errorf("absolute path detected")
	}

	// clean the name
	parts := strings.Split(name, "/")
	name = filepath.Join(parts...)
	if name == "." || name == "" {
		return nil
	}

	// get relative path from base to new directory target
	rel, err := filepath.Rel(filepath.Join(dst, "."), filepath.Join(dst, name))
	if err != nil {
		return fmt.Errorf("failed to get relative path: %w", err)
	}
	// check if the relative path is local
	if !filepath.IsLocal(rel) {
		return fmt.Errorf("path traversal detected")
	}

	// check each element of the path
	elements := strings.Split(rel, string(os.PathSeparator))
	for i := range elements {
		checkPath := filepath.Join(dst, filepath.Join(elements[:i+1]...))
		stat, err := t.Lstat(checkPath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				// nothing below a missing element can exist
				return nil
			}
			return fmt.Errorf("invalid path: %w", err)
		}
		if stat.Mode()&fs.ModeSymlink != 0 {
			return fmt.Errorf("symlink in path: %s", checkPath)
		}
	}

	return nil
}
