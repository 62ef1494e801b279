// Package cmd implements the command-line interface for the dSEQ distributed
// sequence generator. It provides a hierarchical command structure with
// operations for running the server and interacting with it as a client.
//
// The package is organized into several subpackages:
//
//   - seq: Commands for sequence operations (next, init, exists, perf)
//   - ctr: Commands for raw counter store operations (get, set, inc, etc.)
//   - serve: Commands for starting and configuring the dSEQ server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See dseq -help for a list of all commands.
package cmd
