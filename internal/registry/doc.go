// SPDX-License-Identifier: MPL-2.0

// Package registry produces the canonical channel (topic) identifiers of the
// analysed system.
//
// The primary source is the central naming class: every String constant whose
// name contains the selection marker contributes its statically evaluated value.
// Explicit lists, from configuration or a capability manifest, are the
// non-reflective alternative.
package registry
