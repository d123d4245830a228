// SPDX-License-Identifier: MPL-2.0

// Package scanner maps a multi-service source tree to per-service class
// identifiers.
//
// A scan locates the service directory under the analysis root, collects the
// marker subtrees (directories named "kafka" by default) below the service
// source root and converts the source files found at most two levels inside
// each marker into qualified class names. Every directory listing is sorted, so
// results do not depend on filesystem enumeration order.
package scanner
