// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package untar

import (
	"context"
	"encoding/json"
	"time"
)

const (
	// OperationScan marks telemetry captured while opening an archive
	OperationScan = "scan"

	// OperationExtract marks telemetry captured while extracting an archive
	OperationExtract = "extract"
)

// TelemetryData holds all telemetry data of a scan or an extraction.
type TelemetryData struct {
	// DuplicateEntries is the number of members shadowed by a later member with the same name
	DuplicateEntries int64 `json:"duplicate_entries"`

	// Duration is the time the operation took
	Duration time.Duration `json:"duration"`

	// Entries is the number of members read from the archive
	Entries int64 `json:"entries"`

	// ExtractedDirs is the number of extracted directories
	ExtractedDirs int64 `json:"extracted_dirs"`

	// ExtractedFiles is the number of extracted files
	ExtractedFiles int64 `json:"extracted_files"`

	// ExtractionErrors is the number of errors during extraction
	ExtractionErrors int64 `json:"extraction_errors"`

	// ExtractionSize is the size of the extracted files
	ExtractionSize int64 `json:"extraction_size"`

	// InputSize is the size of the input
	InputSize int64 `json:"input_size"`

	// LastError is the last error of the operation
	LastError error `json:"last_error"`

	// Operation is either [OperationScan] or [OperationExtract]
	Operation string `json:"operation"`

	// PaddingBlocks is the number of single all-zero blocks skipped between members
	PaddingBlocks int64 `json:"padding_blocks"`

	// PatternMismatches is the number of skipped entries
	PatternMismatches int64 `json:"pattern_mismatches"`
}

// String returns a string representation of [TelemetryData].
func (m TelemetryData) String() string {
	b, _ := json.Marshal(m)
	return string(b)
}

// MarshalJSON implements the [encoding/json.Marshaler] interface.
func (m TelemetryData) MarshalJSON() ([]byte, error) {
	var lastError string
	if m.LastError != nil {
		lastError = m.LastError.Error()
	}

	type Alias TelemetryData
	return json.Marshal(&struct {
		LastError string `json:"last_error"`
		*Alias
	}{
		LastError: lastError,
		Alias:     (*Alias)(&m),
	})
}

// TelemetryHook is a function type that performs operations on [TelemetryData]
// after a scan or an extraction has finished which can be used to submit the
// [TelemetryData] to a telemetry service, for example.
type TelemetryHook func(context.Context, *TelemetryData)

// now is a function point that returns time.Now to the caller.
var now = time.Now

// captureDuration captures the duration of an operation
func captureDuration(td *TelemetryData, start time.Time) {
	td.Duration = now().Sub(start)
}
