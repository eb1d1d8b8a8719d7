package store

import (
	"context"
	"errors"

	"github.com/OFFIS-RIT/stormgraph/pkg/common"
)

var (
	// ErrStoreUnavailable is returned by every operation while the process
	// runs without a graph store connection.
	ErrStoreUnavailable = errors.New("graph store unavailable")
	ErrNodeNotFound     = errors.New("node not found")
	ErrEdgeNotFound     = errors.New("edge not found")
	// ErrEndpointMissing is returned when an edge names a node that does not
	// exist or belongs to another document.
	ErrEndpointMissing = errors.New("edge endpoint missing")
)

// Status is the connectivity state of a graph store handle.
type Status int

const (
	StatusConnected Status = iota
	StatusDisconnected
)

func (s Status) String() string {
	if s == StatusConnected {
		return "connected"
	}
	return "disconnected"
}

// AggregateConnections groups the multi-hop paths starting at one aggregate.
// Connected holds the distinct names of the reachable aggregates and
// Connections the number of paths.
type AggregateConnections struct {
	Name        string
	Connected   []string
	Connections int
}

// GraphStorage persists extracted concept graphs. Every node and edge write
// is atomic on its own; there are no transactions across calls.
type GraphStorage interface {
	Status() Status

	SaveFragments(ctx context.Context, fragments []common.Fragment) error
	// GetFragments returns the fragments of a document ordered by page and
	// offset. limit <= 0 returns all of them.
	GetFragments(ctx context.Context, docID string, limit int) ([]common.Fragment, error)
	// GetNodeTrace returns the fragments a node was derived from.
	GetNodeTrace(ctx context.Context, nodeID string) ([]common.Fragment, error)

	// UpsertNode creates the node or overwrites the properties of the node
	// with the same id.
	UpsertNode(ctx context.Context, node common.Node) error
	// MergeEdge creates the edge unless one of the same type already links the
	// two endpoints. created reports whether a new edge was stored.
	MergeEdge(ctx context.Context, edge common.Edge) (created bool, err error)

	GetNode(ctx context.Context, id string) (common.Node, error)
	GetNodes(ctx context.Context, docID string, types []common.ConceptType) ([]common.Node, error)
	GetEdges(ctx context.Context, docID string, types []common.EdgeType) ([]common.Edge, error)
	DeleteNode(ctx context.Context, id string) error
	DeleteEdge(ctx context.Context, id string) error

	// FindAggregateConnections enumerates the simple paths of 1 to maxHops
	// edges of the given types, in either direction, between distinct
	// aggregates of a document, grouped by the starting aggregate.
	FindAggregateConnections(ctx context.Context, docID string, types []common.EdgeType, maxHops int) ([]AggregateConnections, error)

	Close(ctx context.Context) error
}
