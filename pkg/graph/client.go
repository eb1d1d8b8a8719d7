package graph

import (
	"context"
	"reflect"

	"github.com/OFFIS-RIT/stormgraph/internal/metrics"
	"github.com/OFFIS-RIT/stormgraph/pkg/ai"
	"github.com/OFFIS-RIT/stormgraph/pkg/common"
	"github.com/OFFIS-RIT/stormgraph/pkg/logger"
)

// DefaultMaxFragments caps the fragments sent to the oracle per job.
const DefaultMaxFragments = 10

// GraphClient runs the extraction pipeline: oracle calls, merging, relationship
// inference and graph writes.
//
// A GraphClient should be created using NewGraphClient.
type GraphClient struct {
	aiClient       ai.GraphAIClient
	maxFragments   int
	maxRetries     int
	chunkMaxLength int
}

// NewGraphClientParams defines the configuration parameters for creating
// a new GraphClient.
//
// AIClient may be nil, in which case extraction returns the mock dataset.
// MaxRetries is the number of oracle attempts per fragment.
type NewGraphClientParams struct {
	AIClient       ai.GraphAIClient
	MaxFragments   int
	MaxRetries     int
	ChunkMaxLength int
}

// NewGraphClient creates and returns a new GraphClient configured with
// the provided parameters.
//
// Example:
//
//	client := graph.NewGraphClient(graph.NewGraphClientParams{
//		AIClient:     aiClient,
//		MaxFragments: 10,
//	})
func NewGraphClient(params NewGraphClientParams) *GraphClient {
	maxFragments := params.MaxFragments
	if maxFragments <= 0 {
		maxFragments = DefaultMaxFragments
	}
	maxRetries := params.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}
	chunkMaxLength := params.ChunkMaxLength
	if chunkMaxLength <= 0 {
		chunkMaxLength = DefaultChunkMaxLength
	}

	aiClient := params.AIClient
	if isNilClient(aiClient) {
		aiClient = nil
	}

	return &GraphClient{
		aiClient:       aiClient,
		maxFragments:   maxFragments,
		maxRetries:     maxRetries,
		chunkMaxLength: chunkMaxLength,
	}
}

// isNilClient also catches typed nil pointers stored in the interface.
func isNilClient(c ai.GraphAIClient) bool {
	if c == nil {
		return true
	}
	v := reflect.ValueOf(c)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// ExtractionEnabled reports whether an oracle is configured.
func (g *GraphClient) ExtractionEnabled() bool {
	return g.aiClient != nil
}

// ChunkMaxLength is the fragment size used when documents are ingested.
func (g *GraphClient) ChunkMaxLength() int {
	return g.chunkMaxLength
}

// Fragments chunks the pages of a document with the configured size.
func (g *GraphClient) Fragments(docID string, pages []string) ([]common.Fragment, error) {
	return FragmentPages(docID, pages, g.chunkMaxLength)
}

// ExtractConcepts sends the first fragments to the oracle one at a time and
// returns the merged, deduplicated candidates. Fragments that fail are logged
// and skipped. Without an oracle the mock dataset is returned.
//
// Only a cancelled context is reported as an error.
func (g *GraphClient) ExtractConcepts(ctx context.Context, fragments []common.Fragment) (*common.ExtractionOutput, error) {
	if g.aiClient == nil {
		logger.Warn("[Extract] No extraction model configured, returning mock data")
		out := MockExtraction(fragments)
		return &out, nil
	}

	if len(fragments) > g.maxFragments {
		logger.Debug("[Extract] Fragment limit reached", "total", len(fragments), "processed", g.maxFragments)
		metrics.FragmentsTotal.WithLabelValues("skipped").Add(float64(len(fragments) - g.maxFragments))
		fragments = fragments[:g.maxFragments]
	}

	var merged common.ExtractionOutput
	for _, fragment := range fragments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := extractFromFragment(ctx, g.aiClient, fragment, g.maxRetries)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logger.Warn("[Extract] Extraction failed for fragment", "fragment_id", fragment.ID, "err", err)
			metrics.FragmentsTotal.WithLabelValues("failed").Inc()
			continue
		}

		logger.Debug(
			"[Extract] Fragment processed",
			"fragment_id", fragment.ID,
			"aggregates", len(out.Aggregates),
			"commands", len(out.Commands),
			"events", len(out.Events),
			"policies", len(out.Policies),
		)
		metrics.FragmentsTotal.WithLabelValues("extracted").Inc()
		merged.Append(out)
	}

	result := DedupeOutput(merged)
	return &result, nil
}

// ModelMetrics returns the oracle usage since the last reset.
func (g *GraphClient) ModelMetrics() ai.ModelMetrics {
	if g.aiClient == nil {
		return ai.ModelMetrics{}
	}
	return g.aiClient.GetMetrics()
}
