// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package untar reads tar archives into an in-memory catalog.
//
// An archive is scanned once, eagerly, when it is opened with [Open] or [Read]. The
// 512-byte headers are decoded in both the pre-POSIX and the POSIX ustar dialect and every
// member, including its content, is stored in a [Catalog]. The resulting [Archive] can be
// listed ([Archive.List]), inspected ([Archive.Info]), hashed ([Archive.Digest]) and
// extracted to the underlying OS, to memory, or to a custom [Target] ([Archive.Extract],
// [Archive.ExtractTo]).
//
// Configuration is done using the [Config], which holds the logger, the telemetry hook and
// the limits that protect against exhaustion while scanning and extracting untrusted input.
package untar
