// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers include environment management (MustSetenv, SetConfigHome),
// directory and file operations (MustChdir, MustMkdirAll, MustWriteFile) and
// source-tree fixtures (WriteTree, SiteWhereTree).
package testutil
