// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package untar

import (
	"context"
	"io"
	"os"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// Archive is an opened tar archive. All members, including their content, are
// held in memory; the archive file is not kept open.
type Archive struct {
	catalog *Catalog
	cfg     *Config
}

// Open opens the archive at path and scans it completely. The file is closed
// before Open returns, on every path. The archive is rejected as a whole if any
// header cannot be decoded.
func Open(ctx context.Context, path string, cfg *Config) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open archive")
	}
	defer f.Close()

	return Read(ctx, f, cfg)
}

// Read scans the tar archive in src. A nil cfg uses the default configuration.
func Read(ctx context.Context, src io.Reader, cfg *Config) (*Archive, error) {
	if cfg == nil {
		cfg = NewConfig()
	}

	// prepare telemetry capturing
	td := &TelemetryData{Operation: OperationScan}
	defer cfg.TelemetryHook()(ctx, td)
	defer captureDuration(td, now())

	ar := newArchiveReader(src, cfg, td)
	defer func() { td.InputSize = ar.InputSize() }()

	catalog, err := scan(ctx, ar, cfg, td)
	if err != nil {
		td.LastError = err
		return nil, err
	}
	cfg.Logger().Info("archive scanned", "entries", catalog.Len(), "duplicates", td.DuplicateEntries, "size", humanize.Bytes(uint64(ar.InputSize())))
	return &Archive{catalog: catalog, cfg: cfg}, nil
}

// scan consumes every entry of ar into a catalog.
func scan(ctx context.Context, ar *archiveReader, cfg *Config, td *TelemetryData) (*Catalog, error) {
	b := newCatalogBuilder()
	for {
		e, err := ar.Next(ctx)
		if err == io.EOF {
			return b.build(), nil
		}
		if err != nil {
			return nil, err
		}

		td.Entries++
		if err := cfg.CheckMaxEntries(td.Entries); err != nil {
			return nil, err
		}

		cfg.Logger().Debug("entry", "name", e.Name, "type", e.Type, "size", e.Size, "offset", e.Offset)
		if b.insert(e) {
			td.DuplicateEntries++
			cfg.Logger().Warn("duplicate entry, keeping the later one", "name", e.Name, "offset", e.Offset)
		}
	}
}

// Catalog returns the read-only catalog of the archive.
func (a *Archive) Catalog() *Catalog {
	return a.catalog
}

// Len returns the number of entries in the archive.
func (a *Archive) Len() int {
	return a.catalog.Len()
}

// Entry returns the entry stored under name or a [NotFoundError].
func (a *Archive) Entry(name string) (Entry, error) {
	return a.catalog.Get(name)
}

// List returns all entry names, sorted by byte value.
func (a *Archive) List() []string {
	return slices.Sorted(a.catalog.Names())
}
