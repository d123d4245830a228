// SPDX-License-Identifier: MPL-2.0

package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/topomap/topomap/internal/graph"
)

// SummaryLine formats one relation for the console.
func SummaryLine(r graph.Snapshot) string {
	return fmt.Sprintf("Consumers:  %s ---  Topic: %s --- Producers: %s",
		strings.Join(r.Consumers, " "), r.Channel, strings.Join(r.Producers, " "))
}

// Summarize returns one SummaryLine per relation, newline terminated.
func Summarize(set *graph.Set) string {
	var b strings.Builder
	for _, r := range set.Snapshot() {
		b.WriteString(SummaryLine(r))
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteSummary writes Summarize output to w.
func WriteSummary(w io.Writer, set *graph.Set) error {
	_, err := io.WriteString(w, Summarize(set))
	return err
}
