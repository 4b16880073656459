// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"os"

	"github.com/hashicorp/go-untar/cmd"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// main start the untar cli
func main() {
	os.Exit(cmd.Run(os.Args[1:], os.Stdout, os.Stderr, version, commit, date))
}
