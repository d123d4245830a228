// SPDX-License-Identifier: MPL-2.0

// Package issue holds user-facing failures: ActionableError for operation,
// resource and suggestions, and a catalog of Markdown guidance rendered with
// glamour for the failure classes the CLI maps to exit codes.
package issue
