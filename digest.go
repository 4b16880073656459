// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package untar

import (
	_ "crypto/sha256"

	"github.com/opencontainers/go-digest"
)

// Digest returns the sha256 content digest of the entry stored under name, or a
// [NotFoundError]. Entries without content share the digest of the empty input.
func (a *Archive) Digest(name string) (digest.Digest, error) {
	e, err := a.catalog.Get(name)
	if err != nil {
		return "", err
	}
	return digest.FromBytes(e.Content), nil
}
