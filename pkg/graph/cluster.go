package graph

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/OFFIS-RIT/stormgraph/pkg/common"
	"github.com/OFFIS-RIT/stormgraph/pkg/store"
)

const (
	// MaxClusters is the number of recommendations returned per document.
	MaxClusters     = 5
	clusterMaxHops  = 2
	maxClusterScore = 0.9
)

// clusterEdgeTypes are the relationships that count as coupling between
// aggregates.
var clusterEdgeTypes = []common.EdgeType{common.EdgeTargets, common.EdgeEmits, common.EdgeAffects}

// ClusterConfidence scores a cluster by its number of connecting paths.
func ClusterConfidence(connections int) float64 {
	return math.Min(maxClusterScore, float64(connections)/10.0)
}

// RecommendClusters proposes microservice candidates for a document. Every
// aggregate that reaches other aggregates within two hops forms a cluster with
// them. Clusters are ranked by their number of connecting paths; ties keep
// the order returned by the store.
func RecommendClusters(ctx context.Context, s store.GraphStorage, docID string) ([]common.Cluster, error) {
	groups, err := s.FindAggregateConnections(ctx, docID, clusterEdgeTypes, clusterMaxHops)
	if err != nil {
		return nil, fmt.Errorf("failed to query aggregate connections: %w", err)
	}

	groups = slices.Clone(groups)
	slices.SortStableFunc(groups, func(a, b store.AggregateConnections) int {
		return b.Connections - a.Connections
	})
	if len(groups) > MaxClusters {
		groups = groups[:MaxClusters]
	}

	clusters := make([]common.Cluster, 0, len(groups))
	for _, g := range groups {
		aggregates := make([]string, 0, len(g.Connected)+1)
		aggregates = append(aggregates, g.Name)
		aggregates = append(aggregates, g.Connected...)
		clusters = append(clusters, common.Cluster{
			Aggregates: aggregates,
			Rationale:  fmt.Sprintf("Strongly connected through %d relationships", g.Connections),
			Confidence: ClusterConfidence(g.Connections),
		})
	}
	return clusters, nil
}
