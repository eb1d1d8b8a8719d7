package graph

import (
	"strings"

	"github.com/OFFIS-RIT/stormgraph/pkg/common"
)

func normalizeDedupeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Dedupe keeps one candidate per case-insensitive, trimmed name. A later
// candidate replaces the kept one only with a strictly greater confidence and
// takes over its position, so the output follows first-arrival order.
func Dedupe[T common.Concept](items []T) []T {
	if len(items) == 0 {
		return items
	}

	index := make(map[string]int, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		key := normalizeDedupeKey(item.Label())
		pos, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, item)
			continue
		}
		if item.Score() > out[pos].Score() {
			out[pos] = item
		}
	}
	return out
}

// DedupeOutput applies Dedupe to every concept type independently.
func DedupeOutput(output common.ExtractionOutput) common.ExtractionOutput {
	return common.ExtractionOutput{
		Aggregates: Dedupe(output.Aggregates),
		Commands:   Dedupe(output.Commands),
		Events:     Dedupe(output.Events),
		Policies:   Dedupe(output.Policies),
		Mock:       output.Mock,
	}
}
