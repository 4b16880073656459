// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package untar

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"time"
)

// ConfigOption is a function pointer to implement the option pattern
type ConfigOption func(*Config)

// Config provides a configuration struct and options to adjust the configuration.
//
// The configuration struct holds all configuration options for scanning and extracting an
// archive. The configuration options can be adjusted using the option pattern style.
//
// The default configuration is designed to be secure by default and prevent exhaustion
// and path traversal.
type Config struct {
	// continueOnError decides if the extraction should be continued even if an error occurred
	continueOnError bool

	// create destination directory if it does not exist
	createDestination bool

	// customCreateDirMode is the file mode for created directories (respecting umask)
	customCreateDirMode fs.FileMode

	// customFileMode is the file mode for extracted files (respecting umask)
	customFileMode fs.FileMode

	// location is used to render modification times
	location *time.Location

	// logger stream for scan and extraction
	logger logger

	// maxEntries is the maximum of members in an archive.
	// Set value to -1 to disable the check.
	maxEntries int64

	// maxExtractionSize is the maximum size of all extracted files.
	// Set value to -1 to disable the check.
	maxExtractionSize int64

	// maxInputSize is the maximum size of the input
	// Set value to -1 to disable the check.
	maxInputSize int64

	// Define if files should be overwritten in the destination
	overwrite bool

	// patterns is a list of file patterns to match files to extract
	patterns []string

	// preserveModTime restores the modification time stored in the header
	preserveModTime bool

	// telemetryHook is a function to consume telemetry data after a finished scan or extraction
	telemetryHook TelemetryHook

	// verifyChecksum rejects headers with a checksum mismatch
	verifyChecksum bool
}

// CheckMaxEntries checks if counter exceeds the configured maximum. If the maximum is exceeded,
// a [ErrMaxEntriesExceeded] error is returned.
func (c *Config) CheckMaxEntries(counter int64) error {

	// check if disabled
	if c.MaxEntries() == -1 {
		return nil
	}

	// check value
	if counter > c.MaxEntries() {
		return ErrMaxEntriesExceeded
	}
	return nil
}

// CheckExtractionSize checks if size exceeds configured maximum. If the maximum is exceeded,
// a [ErrMaxExtractionSizeExceeded] error is returned.
func (c *Config) CheckExtractionSize(size int64) error {

	// check if disabled
	if c.MaxExtractionSize() == -1 {
		return nil
	}

	// check value
	if size > c.MaxExtractionSize() {
		return ErrMaxExtractionSizeExceeded
	}
	return nil
}

// ContinueOnError returns true if the extraction should continue on error.
func (c *Config) ContinueOnError() bool {
	return c.continueOnError
}

// CreateDestination returns true if the destination directory should be
// created if it does not exist.
func (c *Config) CreateDestination() bool {
	return c.createDestination
}

// CustomCreateDirMode returns the file mode for created directories. (respecting umask)
func (c *Config) CustomCreateDirMode() fs.FileMode {
	return c.customCreateDirMode
}

// CustomFileMode returns the file mode for extracted files. (respecting umask)
func (c *Config) CustomFileMode() fs.FileMode {
	return c.customFileMode
}

// Location returns the location used to render modification times.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// Logger returns the logger.
func (c *Config) Logger() logger {
	return c.logger
}

// MaxEntries returns the maximum of members in an archive.
func (c *Config) MaxEntries() int64 {
	return c.maxEntries
}

// MaxExtractionSize returns the maximum size over all extracted files.
func (c *Config) MaxExtractionSize() int64 {
	return c.maxExtractionSize
}

// MaxInputSize returns the maximum size of the input.
func (c *Config) MaxInputSize() int64 {
	return c.maxInputSize
}

// Overwrite returns true if files should be overwritten in the destination.
func (c *Config) Overwrite() bool {
	return c.overwrite
}

// Patterns returns a list of unix-filepath patterns to match files to extract
// Patterns are matched using [path/filepath.Match].
func (c *Config) Patterns() []string {
	return c.patterns
}

// PreserveModTime returns true if the modification time of extracted entries
// should be set to the value stored in the archive.
func (c *Config) PreserveModTime() bool {
	return c.preserveModTime
}

// TelemetryHook returns the telemetry hook.
func (c *Config) TelemetryHook() TelemetryHook {
	if c.telemetryHook == nil {
		return defaultTelemetryHook
	}
	return c.telemetryHook
}

// VerifyChecksum returns true if header checksums are verified while scanning.
func (c *Config) VerifyChecksum() bool {
	return c.verifyChecksum
}

const (
	defaultContinueOnError     = false         // stop on error and return error
	defaultCreateDestination   = false         // don't create destination directory
	defaultCustomCreateDirMode = 0750          // default directory permissions rwxr-x---
	defaultCustomFileMode      = 0640          // default file permissions rw-r-----
	defaultMaxEntries          = 100000        // 100k entries
	defaultMaxExtractionSize   = 1 << (10 * 3) // 1 Gb
	defaultMaxInputSize        = 1 << (10 * 3) // 1 Gb
	defaultOverwrite           = false         // don't overwrite existing files
	defaultPreserveModTime     = false         // extracted files get the current time
	defaultVerifyChecksum      = true          // reject corrupted headers
)

var (
	// slog to discard
	defaultLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	// no operation telemetry hook
	defaultTelemetryHook = func(ctx context.Context, d *TelemetryData) {
		// noop
	}
)

// NewConfig is a generator option that takes opts as adjustments of the
// default configuration in an option pattern style.
func NewConfig(opts ...ConfigOption) *Config {

	// setup default values
	config := &Config{
		continueOnError:     defaultContinueOnError,
		createDestination:   defaultCreateDestination,
		customCreateDirMode: defaultCustomCreateDirMode,
		customFileMode:      defaultCustomFileMode,
		location:            time.Local,
		logger:              defaultLogger,
		maxEntries:          defaultMaxEntries,
		maxExtractionSize:   defaultMaxExtractionSize,
		maxInputSize:        defaultMaxInputSize,
		overwrite:           defaultOverwrite,
		preserveModTime:     defaultPreserveModTime,
		telemetryHook:       defaultTelemetryHook,
		verifyChecksum:      defaultVerifyChecksum,
	}

	// Loop through each option
	for _, opt := range opts {
		opt(config)
	}

	return config
}

// WithContinueOnError options pattern function to continue on error during extraction. If set to true,
// the error is logged and the extraction continues. If set to false, the extraction stops and returns the error.
func WithContinueOnError(yes bool) ConfigOption {
	return func(c *Config) {
		c.continueOnError = yes
	}
}

// WithCreateDestination options pattern function to create
// destination directory if it does not exist.
func WithCreateDestination(create bool) ConfigOption {
	return func(c *Config) {
		c.createDestination = create
	}
}

// WithCustomCreateDirMode options pattern function to set the file mode
// for created directories. (respecting umask)
func WithCustomCreateDirMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) {
		c.customCreateDirMode = mode
	}
}

// WithCustomFileMode options pattern function to set the file mode for extracted files. (respecting umask)
func WithCustomFileMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) {
		c.customFileMode = mode
	}
}

// WithLocation options pattern function to set the location used to render modification times.
func WithLocation(loc *time.Location) ConfigOption {
	return func(c *Config) {
		if loc != nil {
			c.location = loc
		}
	}
}

// WithLogger options pattern function to set a custom logger.
func WithLogger(logger logger) ConfigOption {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithMaxEntries options pattern function to set the maximum number of members
// accepted while scanning an archive. (-1 to disable check)
func WithMaxEntries(maxEntries int64) ConfigOption {
	return func(c *Config) {
		c.maxEntries = maxEntries
	}
}

// WithMaxExtractionSize options pattern function to set maximum size over all
// extracted files. (-1 to disable check)
func WithMaxExtractionSize(maxExtractionSize int64) ConfigOption {
	return func(c *Config) {
		c.maxExtractionSize = maxExtractionSize
	}
}

// WithMaxInputSize options pattern function to set MaxInputSize for the archive. (-1 to disable check)
func WithMaxInputSize(maxInputSize int64) ConfigOption {
	return func(c *Config) {
		c.maxInputSize = maxInputSize
	}
}

// WithOverwrite options pattern function specify if files should be overwritten in the destination.
func WithOverwrite(enable bool) ConfigOption {
	return func(c *Config) {
		c.overwrite = enable
	}
}

// WithPatterns options pattern function to set filepath pattern, that files need to match to be extracted.
// Patterns are matched using [path/filepath.Match].
func WithPatterns(pattern ...string) ConfigOption {
	return func(c *Config) {
		c.patterns = append(c.patterns, pattern...)
	}
}

// WithPreserveModTime options pattern function to restore the modification time
// stored in the archive on extracted entries.
func WithPreserveModTime(preserve bool) ConfigOption {
	return func(c *Config) {
		c.preserveModTime = preserve
	}
}

// WithTelemetryHook options pattern function to set a [TelemetryHook], which is called after
// a scan and after an extraction.
func WithTelemetryHook(hook TelemetryHook) ConfigOption {
	return func(c *Config) {
		c.telemetryHook = hook
	}
}

// WithVerifyChecksum options pattern function to enable/disable header checksum verification.
// With verification disabled a corrupted but structurally valid header is accepted silently.
func WithVerifyChecksum(verify bool) ConfigOption {
	return func(c *Config) {
		c.verifyChecksum = verify
	}
}
