// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

//go:build unix

package untar

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Chtimes changes the access and modification times of the named file.
// A symlink is changed itself instead of its target.
func (d *TargetDisk) Chtimes(name string, atime, mtime time.Time) error {
	if err := unix.Lutimes(name, []unix.Timeval{
		unixTimeval(atime),
		unixTimeval(mtime),
	}); err != nil {
		return fmt.Errorf("chtimes failed: %w", err)
	}
	return nil
}

// unixTimeval converts a time.Time to a unix.Timeval. Note that it always rounds
// up to the nearest microsecond, so even one nanosecond past the previous nanosecond
// will be rounded up to the next microsecond.
// See the implementation of unix.NsecToTimeval for details on how this happens.
func unixTimeval(t time.Time) unix.Timeval {
	return unix.NsecToTimeval(t.UnixNano())
}
