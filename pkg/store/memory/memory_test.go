package memory

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/OFFIS-RIT/stormgraph/pkg/common"
	"github.com/OFFIS-RIT/stormgraph/pkg/store"
)

func mustUpsert(t *testing.T, s *Store, nodes ...common.Node) {
	t.Helper()
	for _, n := range nodes {
		if err := s.UpsertNode(context.Background(), n); err != nil {
			t.Fatalf("upsert %s: %v", n.ID, err)
		}
	}
}

func mustMerge(t *testing.T, s *Store, edges ...common.Edge) {
	t.Helper()
	for _, e := range edges {
		if _, err := s.MergeEdge(context.Background(), e); err != nil {
			t.Fatalf("merge %s: %v", e.ID, err)
		}
	}
}

func aggregate(id, name string) common.Node {
	return common.Node{ID: id, DocID: "doc-1", Type: common.ConceptAggregate, Name: name}
}

func edge(id string, typ common.EdgeType, from, to string) common.Edge {
	return common.Edge{ID: id, Type: typ, FromID: from, ToID: to}
}

func TestMergeEdgeIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New()
	mustUpsert(t, s, aggregate("agg-1", "Order"), aggregate("agg-2", "Customer"))

	created, err := s.MergeEdge(ctx, edge("e1", common.EdgeAffects, "agg-1", "agg-2"))
	if err != nil || !created {
		t.Fatalf("expected first merge to create, got created=%v err=%v", created, err)
	}
	created, err = s.MergeEdge(ctx, edge("e1-again", common.EdgeAffects, "agg-1", "agg-2"))
	if err != nil || created {
		t.Fatalf("expected second merge to be a no-op, got created=%v err=%v", created, err)
	}

	edges, err := s.GetEdges(ctx, "doc-1", nil)
	if err != nil {
		t.Fatalf("GetEdges: %v", err)
	}
	if len(edges) != 1 {
		t.Fatalf("expected exactly one stored edge, got %d", len(edges))
	}
}

func TestMergeEdgeRequiresEndpoints(t *testing.T) {
	ctx := context.Background()
	s := New()
	mustUpsert(t, s, aggregate("agg-1", "Order"))
	other := aggregate("agg-9", "Foreign")
	other.DocID = "doc-2"
	mustUpsert(t, s, other)

	if _, err := s.MergeEdge(ctx, edge("e1", common.EdgeAffects, "agg-1", "missing")); !errors.Is(err, store.ErrEndpointMissing) {
		t.Fatalf("expected ErrEndpointMissing, got %v", err)
	}
	if _, err := s.MergeEdge(ctx, edge("e2", common.EdgeAffects, "agg-1", "agg-9")); !errors.Is(err, store.ErrEndpointMissing) {
		t.Fatalf("expected ErrEndpointMissing across documents, got %v", err)
	}
}

func TestUpsertNodeOverwritesProps(t *testing.T) {
	ctx := context.Background()
	s := New()
	n := aggregate("agg-1", "Order")
	n.Props = map[string]any{"confidence": 0.5}
	mustUpsert(t, s, n)
	n.Props = map[string]any{"confidence": 0.9}
	mustUpsert(t, s, n)

	got, err := s.GetNode(ctx, "agg-1")
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}
	if got.Props["confidence"] != 0.9 {
		t.Fatalf("expected updated confidence, got %v", got.Props["confidence"])
	}
	nodes, _ := s.GetNodes(ctx, "doc-1", nil)
	if len(nodes) != 1 {
		t.Fatalf("expected a single node, got %d", len(nodes))
	}
}

func TestDeleteNodeRemovesEdges(t *testing.T) {
	ctx := context.Background()
	s := New()
	mustUpsert(t, s, aggregate("agg-1", "Order"), aggregate("agg-2", "Customer"))
	mustMerge(t, s, edge("e1", common.EdgeAffects, "agg-1", "agg-2"))

	if err := s.DeleteNode(ctx, "agg-2"); err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}
	edges, _ := s.GetEdges(ctx, "doc-1", nil)
	if len(edges) != 0 {
		t.Fatalf("expected edges to be removed, got %v", edges)
	}
	if err := s.DeleteNode(ctx, "agg-2"); !errors.Is(err, store.ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
	if err := s.DeleteEdge(ctx, "e1"); !errors.Is(err, store.ErrEdgeNotFound) {
		t.Fatalf("expected ErrEdgeNotFound, got %v", err)
	}
}

func TestFragmentsAndTrace(t *testing.T) {
	ctx := context.Background()
	s := New()
	fragments := []common.Fragment{
		{ID: "doc-1-p2-1", DocID: "doc-1", Page: 2, Start: 0, End: 4, Text: "late"},
		{ID: "doc-1-p1-0", DocID: "doc-1", Page: 1, Start: 0, End: 5, Text: "early"},
	}
	if err := s.SaveFragments(ctx, fragments); err != nil {
		t.Fatalf("SaveFragments: %v", err)
	}
	got, err := s.GetFragments(ctx, "doc-1", 0)
	if err != nil {
		t.Fatalf("GetFragments: %v", err)
	}
	if got[0].ID != "doc-1-p1-0" || got[1].ID != "doc-1-p2-1" {
		t.Fatalf("expected page order, got %v", got)
	}
	if limited, _ := s.GetFragments(ctx, "doc-1", 1); len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}

	mustUpsert(t, s, aggregate("agg-1", "Order"))
	mustMerge(t, s, edge("d1", common.EdgeDerivedFrom, "agg-1", "doc-1-p2-1"))
	trace, err := s.GetNodeTrace(ctx, "agg-1")
	if err != nil {
		t.Fatalf("GetNodeTrace: %v", err)
	}
	if len(trace) != 1 || trace[0].Text != "late" {
		t.Fatalf("unexpected trace %v", trace)
	}
	if _, err := s.GetNodeTrace(ctx, "nope"); !errors.Is(err, store.ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestFindAggregateConnections(t *testing.T) {
	ctx := context.Background()
	s := New()
	mustUpsert(t, s,
		aggregate("agg-order", "Order"),
		aggregate("agg-customer", "Customer"),
		aggregate("agg-payment", "Payment"),
		common.Node{ID: "cmd-pay", DocID: "doc-1", Type: common.ConceptCommand, Name: "PayOrder"},
	)
	mustMerge(t, s,
		edge("e1", common.EdgeAffects, "agg-order", "agg-customer"),
		edge("e2", common.EdgeTargets, "cmd-pay", "agg-payment"),
		edge("e3", common.EdgeTargets, "cmd-pay", "agg-order"),
		edge("e4", common.EdgeListens, "agg-order", "agg-payment"),
	)

	got, err := s.FindAggregateConnections(ctx, "doc-1", []common.EdgeType{common.EdgeTargets, common.EdgeEmits, common.EdgeAffects}, 2)
	if err != nil {
		t.Fatalf("FindAggregateConnections: %v", err)
	}
	want := []store.AggregateConnections{
		{Name: "Order", Connected: []string{"Customer", "Payment"}, Connections: 2},
		{Name: "Customer", Connected: []string{"Order"}, Connections: 1},
		{Name: "Payment", Connected: []string{"Order"}, Connections: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v\nwant %+v", got, want)
	}
}

func TestClosedStoreIsUnavailable(t *testing.T) {
	s := New()
	_ = s.Close(context.Background())
	if s.Status() != store.StatusDisconnected {
		t.Fatal("expected disconnected after close")
	}
	if _, err := s.GetNodes(context.Background(), "doc-1", nil); !errors.Is(err, store.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
