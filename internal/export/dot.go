// SPDX-License-Identifier: MPL-2.0

package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/topomap/topomap/internal/graph"
)

// DOTOptions controls RenderDOT.
type DOTOptions struct {
	// Dedupe drops repeated body lines, keeping the first occurrence.
	Dedupe bool
}

// RenderDOT renders set in relation order. For each relation:
//
//   - only consumers: one "<consumer>;" line per consumer
//   - only producers: one "<producer>;" line per producer
//   - both: one labelled edge per producer/consumer pair
//   - neither: nothing
//
// Node identifiers are service names with spaces removed.
func RenderDOT(set *graph.Set, opts DOTOptions) string {
	var lines []string
	for _, r := range set.Snapshot() {
		switch {
		case len(r.Producers) == 0 && len(r.Consumers) > 0:
			for _, c := range r.Consumers {
				lines = append(lines, NodeID(c)+";")
			}
		case len(r.Producers) > 0 && len(r.Consumers) == 0:
			for _, p := range r.Producers {
				lines = append(lines, NodeID(p)+";")
			}
		case len(r.Producers) > 0:
			for _, p := range r.Producers {
				for _, c := range r.Consumers {
					lines = append(lines, fmt.Sprintf("%s -> %s[ label=%q];", NodeID(p), NodeID(c), r.Channel+" "))
				}
			}
		}
	}
	if opts.Dedupe {
		lines = dedupe(lines)
	}

	var b strings.Builder
	b.WriteString("digraph {\n")
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteString("}\n")
	return b.String()
}

// WriteDOT writes RenderDOT output to w.
func WriteDOT(w io.Writer, set *graph.Set, opts DOTOptions) error {
	_, err := io.WriteString(w, RenderDOT(set, opts))
	return err
}

// NodeID is the DOT identifier of a service.
func NodeID(service string) string {
	return strings.ReplaceAll(service, " ", "")
}

func dedupe(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := lines[:0]
	for _, l := range lines {
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
