// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package untar

import (
	"fmt"
	"os"
	"time"
)

// Chtimes changes the access and modification times of the named file.
// Symlinks are followed on this platform.
func (d *TargetDisk) Chtimes(name string, atime, mtime time.Time) error {
	if err := os.Chtimes(name, atime, mtime); err != nil {
		return fmt.Errorf("chtimes failed: %w", err)
	}
	return nil
}
