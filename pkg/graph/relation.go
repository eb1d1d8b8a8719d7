package graph

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"github.com/OFFIS-RIT/stormgraph/pkg/common"
)

// emitPrefixes are stripped from command names before matching events.
var emitPrefixes = []string{"create", "process", "update"}

// EdgeID derives a stable id from the edge endpoints and type, so merging the
// same relationship twice addresses the same edge.
func EdgeID(fromID string, typ common.EdgeType, toID string) string {
	sum := sha1.Sum([]byte(fromID + "|" + string(typ) + "|" + toID))
	return "edge-" + hex.EncodeToString(sum[:8])
}

// NewEdge builds an edge with its derived id.
func NewEdge(typ common.EdgeType, fromID, toID string) common.Edge {
	return common.Edge{
		ID:     EdgeID(fromID, typ, toID),
		Type:   typ,
		FromID: fromID,
		ToID:   toID,
	}
}

type edgeCollector struct {
	edges []common.Edge
	seen  map[string]struct{}
}

func (c *edgeCollector) add(typ common.EdgeType, fromID, toID string) {
	edge := NewEdge(typ, fromID, toID)
	if _, ok := c.seen[edge.ID]; ok {
		return
	}
	c.seen[edge.ID] = struct{}{}
	c.edges = append(c.edges, edge)
}

// emitStems returns the lower-cased command name once per prefix, with that
// prefix removed when present. A name that is only a prefix has no stems.
func emitStems(commandName string) []string {
	lower := strings.ToLower(commandName)
	stems := make([]string, 0, len(emitPrefixes))
	for _, prefix := range emitPrefixes {
		stem := strings.TrimPrefix(lower, prefix)
		if stem == "" {
			return nil
		}
		stems = append(stems, stem)
	}
	return stems
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

// InferRelationships proposes edges between the concepts of one document
// using naming heuristics:
//
//   - TARGETS: command to the first aggregate whose name is contained in the
//     command name.
//   - EMITS: command to every event whose name contains the command name
//     with a create/process/update prefix stripped.
//   - LISTENS: policy to every event named in the policy condition.
//   - ISSUES: policy to every command named in the policy condition.
//
// All comparisons are case-insensitive substring checks. The result only
// depends on the set contents and order.
func InferRelationships(set *ConceptSet) []common.Edge {
	c := &edgeCollector{seen: make(map[string]struct{})}

	for _, cmd := range set.Commands {
		cmdName := strings.ToLower(cmd.Concept.Name)
		for _, a := range set.Aggregates {
			aggName := strings.ToLower(a.Concept.Name)
			if aggName != "" && strings.Contains(cmdName, aggName) {
				c.add(common.EdgeTargets, cmd.NodeID, a.NodeID)
				break
			}
		}
	}

	for _, cmd := range set.Commands {
		stems := emitStems(cmd.Concept.Name)
		for _, evt := range set.Events {
			if containsAny(strings.ToLower(evt.Concept.Name), stems) {
				c.add(common.EdgeEmits, cmd.NodeID, evt.NodeID)
			}
		}
	}

	for _, pol := range set.Policies {
		condition := strings.ToLower(pol.Concept.Condition)
		for _, evt := range set.Events {
			evtName := strings.ToLower(evt.Concept.Name)
			if evtName != "" && strings.Contains(condition, evtName) {
				c.add(common.EdgeListens, pol.NodeID, evt.NodeID)
			}
		}
	}

	for _, pol := range set.Policies {
		condition := strings.ToLower(pol.Concept.Condition)
		for _, cmd := range set.Commands {
			cmdName := strings.ToLower(cmd.Concept.Name)
			if cmdName != "" && strings.Contains(condition, cmdName) {
				c.add(common.EdgeIssues, pol.NodeID, cmd.NodeID)
			}
		}
	}

	return c.edges
}

// ProvenanceEdges links every concept to the fragment it was extracted from.
func ProvenanceEdges(set *ConceptSet) []common.Edge {
	c := &edgeCollector{seen: make(map[string]struct{})}
	link := func(nodeID string, concept common.Concept) {
		if fragmentID := concept.Anchor().FragmentID; fragmentID != "" {
			c.add(common.EdgeDerivedFrom, nodeID, fragmentID)
		}
	}
	for _, a := range set.Aggregates {
		link(a.NodeID, a.Concept)
	}
	for _, cmd := range set.Commands {
		link(cmd.NodeID, cmd.Concept)
	}
	for _, evt := range set.Events {
		link(evt.NodeID, evt.Concept)
	}
	for _, pol := range set.Policies {
		link(pol.NodeID, pol.Concept)
	}
	return c.edges
}
