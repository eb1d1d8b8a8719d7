package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/OFFIS-RIT/stormgraph/internal/metrics"
	"github.com/OFFIS-RIT/stormgraph/pkg/common"
	"github.com/OFFIS-RIT/stormgraph/pkg/logger"
	"github.com/OFFIS-RIT/stormgraph/pkg/store"
)

// WriteResult counts the writes issued by WriteGraph.
type WriteResult struct {
	NodesWritten int `json:"nodes_written"`
	EdgesCreated int `json:"edges_created"`
	// EdgesExisting counts edges that were already stored.
	EdgesExisting int `json:"edges_existing"`
	EdgesSkipped  int `json:"edges_skipped"`
}

// WriteGraph stores the nodes of set one by one and then merges edges one by
// one. An edge is only written when both of its endpoints were written by
// this call. The first failing write aborts the rest; everything written
// before it stays in the store.
func WriteGraph(ctx context.Context, s store.GraphStorage, set *ConceptSet, edges []common.Edge) (WriteResult, error) {
	var res WriteResult

	nodes, err := set.Nodes()
	if err != nil {
		return res, err
	}

	written := make(map[string]struct{}, len(nodes))
	for _, node := range nodes {
		if err := s.UpsertNode(ctx, node); err != nil {
			metrics.GraphWritesTotal.WithLabelValues("node", "failed").Inc()
			return res, fmt.Errorf("failed to store node %s: %w", node.ID, err)
		}
		written[node.ID] = struct{}{}
		res.NodesWritten++
		metrics.GraphWritesTotal.WithLabelValues("node", "created").Inc()
	}

	for _, edge := range edges {
		_, fromOK := written[edge.FromID]
		_, toOK := written[edge.ToID]
		if !fromOK || !toOK {
			logger.Debug("[Graph] Skipping edge with unwritten endpoint", "edge_id", edge.ID, "type", edge.Type)
			res.EdgesSkipped++
			metrics.GraphWritesTotal.WithLabelValues("edge", "skipped").Inc()
			continue
		}
		if err := mergeEdge(ctx, s, edge, &res); err != nil {
			return res, err
		}
	}

	return res, nil
}

// WriteProvenance merges DERIVED_FROM edges from concepts to the fragment
// nodes already in the store. Edges whose fragment is missing are skipped.
func WriteProvenance(ctx context.Context, s store.GraphStorage, edges []common.Edge) (WriteResult, error) {
	var res WriteResult
	for _, edge := range edges {
		err := mergeEdge(ctx, s, edge, &res)
		if errors.Is(err, store.ErrEndpointMissing) {
			res.EdgesSkipped++
			metrics.GraphWritesTotal.WithLabelValues("edge", "skipped").Inc()
			continue
		}
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

func mergeEdge(ctx context.Context, s store.GraphStorage, edge common.Edge, res *WriteResult) error {
	created, err := s.MergeEdge(ctx, edge)
	if err != nil {
		if !errors.Is(err, store.ErrEndpointMissing) {
			metrics.GraphWritesTotal.WithLabelValues("edge", "failed").Inc()
		}
		return fmt.Errorf("failed to store %s edge %s: %w", edge.Type, edge.ID, err)
	}
	if created {
		res.EdgesCreated++
		metrics.GraphWritesTotal.WithLabelValues("edge", "created").Inc()
	} else {
		res.EdgesExisting++
		metrics.GraphWritesTotal.WithLabelValues("edge", "merged").Inc()
	}
	return nil
}
