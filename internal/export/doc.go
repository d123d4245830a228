// SPDX-License-Identifier: MPL-2.0

// Package export renders a relation set as a Graphviz digraph, a console
// summary or a machine-readable report.
package export
