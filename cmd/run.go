// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/hashicorp/go-untar"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// CLI are the cli parameters for the untar binary
type CLI struct {
	Archive           string           `arg:"" name:"archive" help:"Path to the tar archive." type:"existingfile"`
	List              bool             `short:"l" help:"List the contents of an archive."`
	Extract           bool             `short:"x" help:"Extract files from an archive."`
	Info              bool             `short:"i" help:"Print information about the files in an archive."`
	Digest            bool             `short:"s" help:"Print the sha256 content digest of the files in an archive."`
	Destination       string           `short:"d" default:"." help:"Output directory for extraction."`
	CreateDestination bool             `short:"c" help:"Create destination directory if it does not exist."`
	DryRun            bool             `help:"Extract into memory only, nothing is written to disk."`
	MaxEntries        int64            `optional:"" default:"100000" help:"Maximum number of entries accepted in an archive. (disable check: -1)"`
	MaxExtractionSize int64            `optional:"" default:"1073741824" help:"Maximum extraction size that allowed is (in bytes). (disable check: -1)"`
	MaxInputSize      int64            `optional:"" default:"1073741824" help:"Maximum input size that allowed is (in bytes). (disable check: -1)"`
	Metrics           bool             `short:"M" optional:"" default:"false" help:"Print metrics to log after scan and extraction."`
	NoChecksum        bool             `optional:"" help:"Accept headers with a checksum mismatch."`
	Overwrite         bool             `short:"O" help:"Overwrite if exist."`
	PreserveMtime     bool             `short:"p" help:"Restore the modification time stored in the archive."`
	UTC               bool             `name:"utc" help:"Print modification times in UTC instead of local time."`
	Verbose           bool             `short:"v" optional:"" help:"Verbose logging."`
	Version           kong.VersionFlag `short:"V" optional:"" help:"Print release version information."`
}

// hasAction returns true if at least one action flag is set
func (c *CLI) hasAction() bool {
	return c.List || c.Extract || c.Info || c.Digest
}

// Run the entrypoint into untar as a cli tool. It returns the process exit code.
func Run(args []string, stdout, stderr io.Writer, version, commit, date string) int {
	ctx := context.Background()

	var cli CLI
	exitCode := -1
	parser, err := kong.New(&cli,
		kong.Name("untar"),
		kong.Description("A tar archive reader"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) {
			if exitCode == -1 {
				exitCode = code
			}
		}),
		kong.Vars{
			"version": fmt.Sprintf("untar (%s), commit %s, built at %s", version, commit, date),
		},
	)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", err)
		return exitError
	}

	// parse arguments, help and version end here as well
	_, err = parser.Parse(args)
	if exitCode != -1 {
		return exitCode
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", err)
		return exitUsage
	}
	if !cli.hasAction() {
		fmt.Fprintln(stderr, "error: action must be specified (--list, --info, --digest or --extract)")
		return exitUsage
	}

	// Check for verbose output
	logLevel := slog.LevelError
	if cli.Verbose {
		logLevel = slog.LevelDebug
	}

	// setup logger
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	// setup metrics hook
	metricsToLog := func(ctx context.Context, td *untar.TelemetryData) {
		if cli.Metrics {
			fmt.Fprintf(stderr, "%s finished: %s\n", td.Operation, td)
		}
	}

	location := time.Local
	if cli.UTC {
		location = time.UTC
	}

	// process cli params
	config := untar.NewConfig(
		untar.WithCreateDestination(cli.CreateDestination),
		untar.WithLocation(location),
		untar.WithLogger(logger),
		untar.WithMaxEntries(cli.MaxEntries),
		untar.WithMaxExtractionSize(cli.MaxExtractionSize),
		untar.WithMaxInputSize(cli.MaxInputSize),
		untar.WithOverwrite(cli.Overwrite),
		untar.WithPreserveModTime(cli.PreserveMtime),
		untar.WithTelemetryHook(metricsToLog),
		untar.WithVerifyChecksum(!cli.NoChecksum),
	)

	// open archive
	archive, err := untar.Open(ctx, cli.Archive, config)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", err)
		return exitError
	}

	switch {
	case cli.Info:
		if err := printInfo(stdout, archive); err != nil {
			fmt.Fprintf(stderr, "error: %s\n", err)
			return exitError
		}
	case cli.List:
		for _, name := range archive.List() {
			fmt.Fprintln(stdout, name)
		}
	case cli.Digest:
		if err := printDigests(stdout, archive); err != nil {
			fmt.Fprintf(stderr, "error: %s\n", err)
			return exitError
		}
	}

	if cli.Extract {
		if err := extract(ctx, archive, cli.Destination, cli.DryRun); err != nil {
			fmt.Fprintf(stderr, "error during extraction: %s\n", err)
			return exitError
		}
	}

	return exitOK
}

// extract writes the archive to dst, or into memory for a dry run
func extract(ctx context.Context, archive *untar.Archive, dst string, dryRun bool) error {
	if !dryRun {
		return archive.Extract(ctx, dst)
	}
	return archive.ExtractTo(ctx, untar.NewTargetMemory(), filepath.ToSlash(filepath.Clean(dst)))
}

// printInfo prints the report of every entry in sorted order, followed by a blank line
func printInfo(w io.Writer, archive *untar.Archive) error {
	for _, name := range archive.List() {
		fields, err := archive.Info(name)
		if err != nil {
			return err
		}
		printFields(w, fields)
		fmt.Fprintln(w)
	}
	return nil
}

// printDigests prints "digest  name" for every entry in sorted order
func printDigests(w io.Writer, archive *untar.Archive) error {
	for _, name := range archive.List() {
		d, err := archive.Digest(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s  %s\n", d, name)
	}
	return nil
}

// printFields prints one "label : value" line per field, with the labels
// right-aligned to the widest label
func printFields(w io.Writer, fields []untar.Field) {
	width := 0
	for _, f := range fields {
		width = max(width, len(f.Label))
	}
	for _, f := range fields {
		fmt.Fprintf(w, "%s%s : %s\n", strings.Repeat(" ", width-len(f.Label)), f.Label, f.Value)
	}
}
