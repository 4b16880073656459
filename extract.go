// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package untar

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

// Extract writes all entries of the archive below the directory dst on disk.
func (a *Archive) Extract(ctx context.Context, dst string) error {
	return a.ExtractTo(ctx, NewTargetDisk(), dst)
}

// ExtractTo writes all entries of the archive below dst in t.
//
// Entries are processed in sorted name order, so an explicit directory entry is
// created before the members below it. Directory entries are created, every other
// type is written as a file with its content verbatim. Parent directories that are
// not themselves entries of the archive are not created, such members fail with an
// [ExtractError]. Link types are not resolved and are written as (usually empty)
// regular files.
//
// The first failing entry aborts the extraction, unless [WithContinueOnError] is set.
func (a *Archive) ExtractTo(ctx context.Context, t Target, dst string) error {
	cfg := a.cfg

	// prepare telemetry capturing
	td := &TelemetryData{Operation: OperationExtract}
	defer cfg.TelemetryHook()(ctx, td)
	defer captureDuration(td, now())

	if err := prepareDestination(t, dst, cfg); err != nil {
		td.ExtractionErrors++
		td.LastError = &ExtractError{Name: dst, Err: err}
		return td.LastError
	}

	cfg.Logger().Info("start extraction", "destination", dst, "entries", a.Len())
	for _, name := range a.List() {

		// check if context is canceled
		if err := ctx.Err(); err != nil {
			td.LastError = err
			return err
		}

		// check if file needs to match patterns
		match, err := checkPatterns(cfg.Patterns(), name)
		if err != nil {
			return handleError(cfg, td, name, err)
		}
		if !match {
			cfg.Logger().Info("skipping entry (pattern mismatch)", "name", name)
			td.PatternMismatches++
			continue
		}

		e := a.catalog.entries[name]
		cfg.Logger().Debug("extract", "name", name, "type", e.Type)

		var path string
		if e.IsDir() {
			if path, err = createDir(t, dst, name, cfg); err != nil {
				if err := handleError(cfg, td, name, err); err != nil {
					return err
				}
				continue
			}
			td.ExtractedDirs++
		} else {
			// check extraction size
			if err := cfg.CheckExtractionSize(td.ExtractionSize + e.Size); err != nil {
				td.LastError = &ExtractError{Name: name, Err: err}
				return td.LastError
			}

			maxSize := int64(-1)
			if cfg.MaxExtractionSize() >= 0 {
				maxSize = cfg.MaxExtractionSize() - td.ExtractionSize
			}
			var n int64
			path, n, err = createFile(t, dst, name, bytes.NewReader(e.Content), maxSize, cfg)
			td.ExtractionSize += n
			if err != nil {
				if err := handleError(cfg, td, name, err); err != nil {
					return err
				}
				continue
			}
			td.ExtractedFiles++
		}

		if cfg.PreserveModTime() {
			if err := t.Chtimes(path, e.ModTime, e.ModTime); err != nil {
				if err := handleError(cfg, td, name, err); err != nil {
					return err
				}
			}
		}
	}

	cfg.Logger().Info("extraction finished", "files", td.ExtractedFiles, "dirs", td.ExtractedDirs, "size", humanize.Bytes(uint64(td.ExtractionSize)))
	return nil
}

// checkPatterns checks if the given path matches any of the given patterns.
// If no patterns are given, the function returns true.
func checkPatterns(patterns []string, path string) (bool, error) {

	// no patterns given
	if len(patterns) == 0 {
		return true, nil
	}

	// check if path matches any pattern
	for _, pattern := range patterns {
		if match, err := filepath.Match(pattern, path); err != nil {
			return false, fmt.Errorf("failed to match pattern: %s", err)
		} else if match {
			return true, nil
		}
	}
	return false, nil
}

// handleError increases the error counter, sets the latest error and
// decides if extraction should continue.
func handleError(c *Config, td *TelemetryData, name string, err error) error {

	// increase error counter and set error
	td.ExtractionErrors++
	td.LastError = &ExtractError{Name: name, Err: err}

	// do not end on error
	if c.ContinueOnError() {
		c.Logger().Error("extraction error", "name", name, "error", err)
		return nil
	}

	// end extraction on error
	return td.LastError
}
