// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for topomap.
//
// This package implements the Cobra command hierarchy: the root command,
// analyze (the topology pipeline, optionally in watch mode), the channels and
// classes listings, capability manifest generation and validation, and the
// config subcommands.
package cmd
