package graph

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/stormgraph/pkg/common"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var nodeIDPrefixes = map[common.ConceptType]string{
	common.ConceptAggregate: "agg-",
	common.ConceptCommand:   "cmd-",
	common.ConceptEvent:     "evt-",
	common.ConceptPolicy:    "pol-",
}

// Assigned pairs a concept with the id of the node that represents it.
type Assigned[T common.Concept] struct {
	NodeID  string
	Concept T
}

// ConceptSet is the deduplicated output of one extraction run with node ids
// assigned. Relationship inference and graph writes operate on it.
type ConceptSet struct {
	DocID      string
	Mock       bool
	Aggregates []Assigned[common.Aggregate]
	Commands   []Assigned[common.Command]
	Events     []Assigned[common.Event]
	Policies   []Assigned[common.Policy]
}

// NewNodeID returns a fresh id for a node of the given type.
func NewNodeID(kind common.ConceptType) (string, error) {
	prefix, ok := nodeIDPrefixes[kind]
	if !ok {
		return "", fmt.Errorf("no id prefix for node type %q", kind)
	}
	suffix, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	return prefix + suffix, nil
}

// NodeIDMatches reports whether id carries the prefix of node type kind.
func NodeIDMatches(kind common.ConceptType, id string) bool {
	prefix, ok := nodeIDPrefixes[kind]
	return ok && strings.HasPrefix(id, prefix) && len(id) > len(prefix)
}

func assign[T common.Concept](items []T) ([]Assigned[T], error) {
	out := make([]Assigned[T], 0, len(items))
	for _, item := range items {
		id, err := NewNodeID(item.Kind())
		if err != nil {
			return nil, err
		}
		out = append(out, Assigned[T]{NodeID: id, Concept: item})
	}
	return out, nil
}

// AssignNodes gives every concept of an already deduplicated output a fresh
// node id.
func AssignNodes(docID string, output common.ExtractionOutput) (*ConceptSet, error) {
	set := &ConceptSet{DocID: docID, Mock: output.Mock}
	var err error
	if set.Aggregates, err = assign(output.Aggregates); err != nil {
		return nil, err
	}
	if set.Commands, err = assign(output.Commands); err != nil {
		return nil, err
	}
	if set.Events, err = assign(output.Events); err != nil {
		return nil, err
	}
	if set.Policies, err = assign(output.Policies); err != nil {
		return nil, err
	}
	return set, nil
}

func anchorProps(c common.Concept, mock bool) map[string]any {
	a := c.Anchor()
	props := map[string]any{
		"confidence": c.Score(),
		"page":       a.Page,
		"span_start": a.Span[0],
		"span_end":   a.Span[1],
	}
	if a.FragmentID != "" {
		props["fragment_id"] = a.FragmentID
	}
	if mock {
		props["mock"] = true
	}
	return props
}

// Nodes converts the set into storable nodes: aggregates first, then
// commands, events and policies, each in set order.
func (s *ConceptSet) Nodes() ([]common.Node, error) {
	nodes := make([]common.Node, 0, len(s.Aggregates)+len(s.Commands)+len(s.Events)+len(s.Policies))

	for _, a := range s.Aggregates {
		props := anchorProps(a.Concept, s.Mock)
		props["description"] = a.Concept.Description
		nodes = append(nodes, s.node(a.NodeID, a.Concept, props))
	}
	for _, c := range s.Commands {
		props := anchorProps(c.Concept, s.Mock)
		props["intent"] = string(c.Concept.Intent)
		preconditions := c.Concept.Preconditions
		if preconditions == nil {
			preconditions = []string{}
		}
		props["preconditions"] = preconditions
		nodes = append(nodes, s.node(c.NodeID, c.Concept, props))
	}
	for _, e := range s.Events {
		props := anchorProps(e.Concept, s.Mock)
		// Stored as a JSON string: node properties cannot hold maps.
		hint, err := json.Marshal(e.Concept.SchemaHint)
		if err != nil {
			return nil, fmt.Errorf("encode schema hint for %q: %w", e.Concept.Name, err)
		}
		props["schema_hint"] = string(hint)
		nodes = append(nodes, s.node(e.NodeID, e.Concept, props))
	}
	for _, p := range s.Policies {
		props := anchorProps(p.Concept, s.Mock)
		props["policy_type"] = string(p.Concept.Type)
		props["condition"] = p.Concept.Condition
		nodes = append(nodes, s.node(p.NodeID, p.Concept, props))
	}

	return nodes, nil
}

func (s *ConceptSet) node(id string, c common.Concept, props map[string]any) common.Node {
	return common.Node{
		ID:    id,
		DocID: s.DocID,
		Type:  c.Kind(),
		Name:  c.Label(),
		Props: props,
	}
}
