package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/OFFIS-RIT/stormgraph/pkg/common"
	"github.com/OFFIS-RIT/stormgraph/pkg/store"
)

type edgeKey struct {
	from string
	to   string
	typ  common.EdgeType
}

// Store is an in-process GraphStorage. Query results follow insertion order,
// which makes cluster rankings reproducible.
type Store struct {
	mu sync.RWMutex

	nodes     map[string]common.Node
	nodeOrder []string

	edges     map[string]common.Edge
	edgeKeys  map[edgeKey]string
	edgeOrder []string

	fragments map[string]common.Fragment
	fragOrder []string
	closed    bool
}

var _ store.GraphStorage = (*Store)(nil)

func New() *Store {
	return &Store{
		nodes:     make(map[string]common.Node),
		edges:     make(map[string]common.Edge),
		edgeKeys:  make(map[edgeKey]string),
		fragments: make(map[string]common.Fragment),
	}
}

func (s *Store) Status() store.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return store.StatusDisconnected
	}
	return store.StatusConnected
}

func (s *Store) check() error {
	if s.closed {
		return fmt.Errorf("%w: memory store closed", store.ErrStoreUnavailable)
	}
	return nil
}

func cloneNode(n common.Node) common.Node {
	n.Props = maps.Clone(n.Props)
	return n
}

func cloneEdge(e common.Edge) common.Edge {
	e.Props = maps.Clone(e.Props)
	return e
}

func (s *Store) SaveFragments(ctx context.Context, fragments []common.Fragment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}

	for _, f := range fragments {
		if _, ok := s.fragments[f.ID]; !ok {
			s.fragOrder = append(s.fragOrder, f.ID)
		}
		s.fragments[f.ID] = f
		s.putNode(fragmentNode(f))
	}
	return nil
}

func fragmentNode(f common.Fragment) common.Node {
	return common.Node{
		ID:    f.ID,
		DocID: f.DocID,
		Type:  common.ConceptFragment,
		Name:  f.ID,
		Props: map[string]any{"page": f.Page, "start": f.Start, "end": f.End, "text": f.Text},
	}
}

func sortFragments(out []common.Fragment) {
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Page != out[j].Page {
			return out[i].Page < out[j].Page
		}
		return out[i].Start < out[j].Start
	})
}

func (s *Store) GetFragments(ctx context.Context, docID string, limit int) ([]common.Fragment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	var out []common.Fragment
	for _, id := range s.fragOrder {
		if f := s.fragments[id]; f.DocID == docID {
			out = append(out, f)
		}
	}
	sortFragments(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) GetNodeTrace(ctx context.Context, nodeID string) ([]common.Fragment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	if _, ok := s.nodes[nodeID]; !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrNodeNotFound, nodeID)
	}

	out := []common.Fragment{}
	for _, id := range s.edgeOrder {
		e := s.edges[id]
		if e.Type != common.EdgeDerivedFrom || e.FromID != nodeID {
			continue
		}
		if f, ok := s.fragments[e.ToID]; ok {
			out = append(out, f)
		}
	}
	sortFragments(out)
	return out, nil
}

func (s *Store) putNode(node common.Node) {
	if _, ok := s.nodes[node.ID]; !ok {
		s.nodeOrder = append(s.nodeOrder, node.ID)
	}
	s.nodes[node.ID] = cloneNode(node)
}

func (s *Store) UpsertNode(ctx context.Context, node common.Node) error {
	if node.ID == "" {
		return fmt.Errorf("node id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}

	if existing, ok := s.nodes[node.ID]; ok && existing.DocID != node.DocID {
		return fmt.Errorf("node %s belongs to document %s", node.ID, existing.DocID)
	}
	s.putNode(node)
	return nil
}

func (s *Store) MergeEdge(ctx context.Context, edge common.Edge) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return false, err
	}

	from, okFrom := s.nodes[edge.FromID]
	to, okTo := s.nodes[edge.ToID]
	if !okFrom || !okTo || from.DocID != to.DocID {
		return false, fmt.Errorf("%w: %s -[%s]-> %s", store.ErrEndpointMissing, edge.FromID, edge.Type, edge.ToID)
	}

	key := edgeKey{from: edge.FromID, to: edge.ToID, typ: edge.Type}
	if _, ok := s.edgeKeys[key]; ok {
		return false, nil
	}
	if edge.ID == "" {
		return false, fmt.Errorf("edge id is required")
	}

	s.edgeKeys[key] = edge.ID
	s.edges[edge.ID] = cloneEdge(edge)
	s.edgeOrder = append(s.edgeOrder, edge.ID)
	return true, nil
}

func (s *Store) GetNode(ctx context.Context, id string) (common.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return common.Node{}, err
	}

	node, ok := s.nodes[id]
	if !ok {
		return common.Node{}, fmt.Errorf("%w: %s", store.ErrNodeNotFound, id)
	}
	return cloneNode(node), nil
}

func (s *Store) GetNodes(ctx context.Context, docID string, types []common.ConceptType) ([]common.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	out := []common.Node{}
	for _, id := range s.nodeOrder {
		n := s.nodes[id]
		if n.DocID != docID {
			continue
		}
		if len(types) > 0 && !slices.Contains(types, n.Type) {
			continue
		}
		out = append(out, cloneNode(n))
	}
	return out, nil
}

func (s *Store) GetEdges(ctx context.Context, docID string, types []common.EdgeType) ([]common.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	out := []common.Edge{}
	for _, id := range s.edgeOrder {
		e := s.edges[id]
		if s.nodes[e.FromID].DocID != docID {
			continue
		}
		if len(types) > 0 && !slices.Contains(types, e.Type) {
			continue
		}
		out = append(out, cloneEdge(e))
	}
	return out, nil
}

func (s *Store) removeEdge(id string) {
	e := s.edges[id]
	delete(s.edges, id)
	delete(s.edgeKeys, edgeKey{from: e.FromID, to: e.ToID, typ: e.Type})
	s.edgeOrder = slices.DeleteFunc(s.edgeOrder, func(v string) bool { return v == id })
}

func (s *Store) DeleteNode(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	if _, ok := s.nodes[id]; !ok {
		return fmt.Errorf("%w: %s", store.ErrNodeNotFound, id)
	}

	for _, edgeID := range slices.Clone(s.edgeOrder) {
		if e := s.edges[edgeID]; e.FromID == id || e.ToID == id {
			s.removeEdge(edgeID)
		}
	}
	delete(s.nodes, id)
	s.nodeOrder = slices.DeleteFunc(s.nodeOrder, func(v string) bool { return v == id })
	if _, ok := s.fragments[id]; ok {
		delete(s.fragments, id)
		s.fragOrder = slices.DeleteFunc(s.fragOrder, func(v string) bool { return v == id })
	}
	return nil
}

func (s *Store) DeleteEdge(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	if _, ok := s.edges[id]; !ok {
		return fmt.Errorf("%w: %s", store.ErrEdgeNotFound, id)
	}
	s.removeEdge(id)
	return nil
}

func (s *Store) FindAggregateConnections(ctx context.Context, docID string, types []common.EdgeType, maxHops int) ([]store.AggregateConnections, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	incident := make(map[string][]common.Edge)
	for _, id := range s.edgeOrder {
		e := s.edges[id]
		if !slices.Contains(types, e.Type) {
			continue
		}
		incident[e.FromID] = append(incident[e.FromID], e)
		if e.ToID != e.FromID {
			incident[e.ToID] = append(incident[e.ToID], e)
		}
	}

	isAggregate := func(id string) bool {
		n, ok := s.nodes[id]
		return ok && n.Type == common.ConceptAggregate && n.DocID == docID
	}

	var out []store.AggregateConnections
	for _, startID := range s.nodeOrder {
		if !isAggregate(startID) {
			continue
		}

		var names []string
		connections := 0
		var walk func(at string, used []string, depth int)
		walk = func(at string, used []string, depth int) {
			for _, e := range incident[at] {
				if slices.Contains(used, e.ID) {
					continue
				}
				next := e.ToID
				if next == at {
					next = e.FromID
				}
				if next != startID && isAggregate(next) {
					connections++
					names = append(names, s.nodes[next].Name)
				}
				if depth+1 < maxHops {
					walk(next, append(used, e.ID), depth+1)
				}
			}
		}
		walk(startID, nil, 0)

		if connections > 0 {
			out = append(out, store.AggregateConnections{
				Name:        s.nodes[startID].Name,
				Connected:   store.DedupeStrings(names),
				Connections: connections,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Connections > out[j].Connections
	})
	return out, nil
}

func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
