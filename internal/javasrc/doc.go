// SPDX-License-Identifier: MPL-2.0

// Package javasrc extracts type declarations from Java source files.
//
// Parsing is done with tree-sitter's Java grammar. Only the declaration
// surface needed for topology analysis is kept: the package, imports, each
// top-level type with its superclass, and its declared fields together with
// a small expression tree for field initializers (string literals,
// concatenation and constant references). Method bodies are never inspected.
package javasrc
