// Package main hosts the Marquee CLI entrypoint and command graph.
//
// The Cobra-based command tree serves the web UI, answers recommendation
// queries from the terminal, maintains the catalog artifact, reports
// readiness, and scaffolds configuration. It centralizes configuration
// resolution and logger setup so subcommands only wire internal packages
// together.
package main
