package graph

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/OFFIS-RIT/stormgraph/pkg/common"
	"github.com/OFFIS-RIT/stormgraph/pkg/store"
	"github.com/OFFIS-RIT/stormgraph/pkg/store/memory"
)

type connectionsStore struct {
	store.GraphStorage
	groups  []store.AggregateConnections
	err     error
	types   []common.EdgeType
	maxHops int
	lastDoc string
}

func (s *connectionsStore) FindAggregateConnections(ctx context.Context, docID string, types []common.EdgeType, maxHops int) ([]store.AggregateConnections, error) {
	s.lastDoc = docID
	s.types = types
	s.maxHops = maxHops
	return s.groups, s.err
}

func TestClusterConfidence(t *testing.T) {
	tests := []struct {
		connections int
		want        float64
	}{
		{1, 0.1},
		{3, 0.3},
		{9, 0.9},
		{10, 0.9},
		{42, 0.9},
	}
	for _, tt := range tests {
		if got := ClusterConfidence(tt.connections); got != tt.want {
			t.Errorf("ClusterConfidence(%d) = %v, want %v", tt.connections, got, tt.want)
		}
	}
}

func TestRecommendClustersRanksAndLimits(t *testing.T) {
	s := &connectionsStore{groups: []store.AggregateConnections{
		{Name: "A", Connected: []string{"B"}, Connections: 1},
		{Name: "B", Connected: []string{"A", "C"}, Connections: 4},
		{Name: "C", Connected: []string{"B"}, Connections: 2},
		{Name: "D", Connected: []string{"E"}, Connections: 2},
		{Name: "E", Connected: []string{"D"}, Connections: 12},
		{Name: "F", Connected: []string{"G"}, Connections: 1},
		{Name: "G", Connected: []string{"F"}, Connections: 3},
	}}

	got, err := RecommendClusters(context.Background(), s, "doc-1")
	if err != nil {
		t.Fatalf("RecommendClusters returned error: %v", err)
	}

	want := []common.Cluster{
		{Aggregates: []string{"E", "D"}, Rationale: "Strongly connected through 12 relationships", Confidence: 0.9},
		{Aggregates: []string{"B", "A", "C"}, Rationale: "Strongly connected through 4 relationships", Confidence: 0.4},
		{Aggregates: []string{"G", "F"}, Rationale: "Strongly connected through 3 relationships", Confidence: 0.3},
		{Aggregates: []string{"C", "B"}, Rationale: "Strongly connected through 2 relationships", Confidence: 0.2},
		{Aggregates: []string{"D", "E"}, Rationale: "Strongly connected through 2 relationships", Confidence: 0.2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("RecommendClusters() =\n%+v\nwant\n%+v", got, want)
	}

	wantTypes := []common.EdgeType{common.EdgeTargets, common.EdgeEmits, common.EdgeAffects}
	if !reflect.DeepEqual(s.types, wantTypes) || s.maxHops != 2 || s.lastDoc != "doc-1" {
		t.Fatalf("unexpected query: types=%v hops=%d doc=%s", s.types, s.maxHops, s.lastDoc)
	}
	if s.groups[0].Name != "A" {
		t.Fatal("store result was reordered in place")
	}
}

func TestRecommendClustersStoreError(t *testing.T) {
	s := store.NewUnavailable(errors.New("connection refused"))
	if _, err := RecommendClusters(context.Background(), s, "doc-1"); !errors.Is(err, store.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestRecommendClustersFromMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	for _, n := range []common.Node{
		{ID: "agg-order", DocID: "doc-1", Type: common.ConceptAggregate, Name: "Order"},
		{ID: "agg-customer", DocID: "doc-1", Type: common.ConceptAggregate, Name: "Customer"},
		{ID: "agg-payment", DocID: "doc-1", Type: common.ConceptAggregate, Name: "Payment"},
	} {
		if err := s.UpsertNode(ctx, n); err != nil {
			t.Fatalf("UpsertNode: %v", err)
		}
	}
	for _, e := range []common.Edge{
		NewEdge(common.EdgeAffects, "agg-order", "agg-customer"),
		NewEdge(common.EdgeAffects, "agg-order", "agg-payment"),
	} {
		if _, err := s.MergeEdge(ctx, e); err != nil {
			t.Fatalf("MergeEdge: %v", err)
		}
	}

	got, err := RecommendClusters(ctx, s, "doc-1")
	if err != nil {
		t.Fatalf("RecommendClusters returned error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 clusters, got %d: %+v", len(got), got)
	}
	first := got[0]
	if !reflect.DeepEqual(first.Aggregates, []string{"Order", "Customer", "Payment"}) || first.Confidence != 0.2 {
		t.Fatalf("unexpected top cluster: %+v", first)
	}
	for _, c := range got {
		if len(got) > MaxClusters {
			t.Fatalf("too many clusters: %d", len(got))
		}
		if c.Confidence < 0 || c.Confidence > 0.9 {
			t.Fatalf("confidence out of range: %+v", c)
		}
	}
}
