package store

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/stormgraph/pkg/common"
)

// Unavailable is the store handle used when no graph store could be reached.
// Every call fails fast with ErrStoreUnavailable.
type Unavailable struct {
	cause error
}

// NewUnavailable returns a disconnected store that reports cause on every call.
func NewUnavailable(cause error) *Unavailable {
	return &Unavailable{cause: cause}
}

func (u *Unavailable) err() error {
	if u.cause == nil {
		return ErrStoreUnavailable
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, u.cause)
}

func (u *Unavailable) Status() Status { return StatusDisconnected }

func (u *Unavailable) SaveFragments(context.Context, []common.Fragment) error { return u.err() }

func (u *Unavailable) GetFragments(context.Context, string, int) ([]common.Fragment, error) {
	return nil, u.err()
}

func (u *Unavailable) GetNodeTrace(context.Context, string) ([]common.Fragment, error) {
	return nil, u.err()
}

func (u *Unavailable) UpsertNode(context.Context, common.Node) error { return u.err() }

func (u *Unavailable) MergeEdge(context.Context, common.Edge) (bool, error) { return false, u.err() }

func (u *Unavailable) GetNode(context.Context, string) (common.Node, error) {
	return common.Node{}, u.err()
}

func (u *Unavailable) GetNodes(context.Context, string, []common.ConceptType) ([]common.Node, error) {
	return nil, u.err()
}

func (u *Unavailable) GetEdges(context.Context, string, []common.EdgeType) ([]common.Edge, error) {
	return nil, u.err()
}

func (u *Unavailable) DeleteNode(context.Context, string) error { return u.err() }

func (u *Unavailable) DeleteEdge(context.Context, string) error { return u.err() }

func (u *Unavailable) FindAggregateConnections(context.Context, string, []common.EdgeType, int) ([]AggregateConnections, error) {
	return nil, u.err()
}

func (u *Unavailable) Close(context.Context) error { return nil }
