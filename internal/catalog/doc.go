// SPDX-License-Identifier: MPL-2.0

// Package catalog indexes the type declarations of a Java source tree by
// qualified name.
//
// The catalog is the closed universe every later stage works against: the
// registry reads its naming class from it and the classifier walks superclass
// chains through it. A name that is not in the catalog is treated as external.
package catalog
