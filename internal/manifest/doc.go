// SPDX-License-Identifier: MPL-2.0

// Package manifest reads and writes capability manifests: CUE documents that
// declare the channels of a system and, per service, the role-bearing classes
// and optionally the channels each one uses. A manifest replaces source
// analysis when the source tree is unavailable or the heuristics need help.
package manifest
