// Package main provides the entry point for the dealgraph CLI tool.
package main

import (
	"github.com/dealgraph/dealgraph/cmd/dealgraph/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
