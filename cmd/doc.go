// Package cmd implements the command-line interface for calsetup.
//
// This package provides the following commands:
//   - setup: Authorize, verify the calendar connection and optionally create a demo event
//   - verify: Only verify the calendar connection
//   - demo-event: Only create the demo event
//   - version: Display version information
//
// The setup command is the default command when no subcommand is specified.
package cmd
