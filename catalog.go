// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package untar

import (
	"iter"
	"slices"
)

// Catalog maps member names to entries. It is built once while an archive is
// scanned and is read-only afterwards.
type Catalog struct {
	entries    map[string]*Entry
	order      []string
	duplicates []string
}

// catalogBuilder collects entries before a [Catalog] is handed out. A name that
// is inserted twice keeps the later entry.
type catalogBuilder struct {
	entries    map[string]*Entry
	order      []string
	duplicates []string
}

// newCatalogBuilder returns an empty builder
func newCatalogBuilder() *catalogBuilder {
	return &catalogBuilder{entries: make(map[string]*Entry)}
}

// insert adds e and reports whether it replaced an entry with the same name.
// The replaced entry keeps its position in insertion order.
func (b *catalogBuilder) insert(e *Entry) bool {
	_, exists := b.entries[e.Name]
	if exists {
		if !slices.Contains(b.duplicates, e.Name) {
			b.duplicates = append(b.duplicates, e.Name)
		}
	} else {
		b.order = append(b.order, e.Name)
	}
	b.entries[e.Name] = e
	return exists
}

// build hands the collected entries over to a Catalog. The builder must not be
// used afterwards.
func (b *catalogBuilder) build() *Catalog {
	c := &Catalog{
		entries:    b.entries,
		order:      b.order,
		duplicates: b.duplicates,
	}
	b.entries, b.order, b.duplicates = nil, nil, nil
	return c
}

// Names returns all member names in archive order.
func (c *Catalog) Names() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, name := range c.order {
			if !yield(name) {
				return
			}
		}
	}
}

// Get returns the entry stored under name or a [NotFoundError].
func (c *Catalog) Get(name string) (Entry, error) {
	e, ok := c.entries[name]
	if !ok {
		return Entry{}, &NotFoundError{Name: name}
	}
	return *e, nil
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Duplicates returns the names that occurred more than once in the archive.
// For each of them only the last member is kept.
func (c *Catalog) Duplicates() []string {
	return slices.Clone(c.duplicates)
}
