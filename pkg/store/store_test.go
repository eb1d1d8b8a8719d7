package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/OFFIS-RIT/stormgraph/pkg/common"
)

func TestUnavailableFailsFast(t *testing.T) {
	cause := errors.New("connection refused")
	s := NewUnavailable(cause)

	if s.Status() != StatusDisconnected {
		t.Fatalf("expected disconnected status, got %s", s.Status())
	}
	_, err := s.GetNodes(context.Background(), "doc-1", nil)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if created, err := s.MergeEdge(context.Background(), edgeFixture()); created || !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected failed merge, got created=%v err=%v", created, err)
	}
}

func TestChunkRange(t *testing.T) {
	var windows [][2]int
	err := ChunkRange(5, 2, func(start, end int) error {
		windows = append(windows, [2]int{start, end})
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][2]int{{0, 2}, {2, 4}, {4, 5}}
	if !reflect.DeepEqual(windows, want) {
		t.Fatalf("got %v, want %v", windows, want)
	}
}

func TestDedupeStrings(t *testing.T) {
	got := DedupeStrings([]string{"b", "", "a", "b"})
	want := []string{"b", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func edgeFixture() common.Edge {
	return common.Edge{ID: "edge-1", Type: common.EdgeAffects, FromID: "agg-1", ToID: "agg-2"}
}
