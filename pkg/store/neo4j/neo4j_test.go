package neo4j

import (
	"testing"

	"github.com/OFFIS-RIT/stormgraph/pkg/common"
)

func TestRelTypes(t *testing.T) {
	got, err := relTypes([]common.EdgeType{common.EdgeTargets, common.EdgeEmits, common.EdgeAffects})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "TARGETS|EMITS|AFFECTS" {
		t.Fatalf("unexpected pattern %q", got)
	}
	if _, err := relTypes([]common.EdgeType{"KNOWS`]->() DETACH DELETE (n"}); err == nil {
		t.Fatal("expected unknown edge type to be rejected")
	}
}

func TestNodeTypeLabel(t *testing.T) {
	for _, typ := range []common.ConceptType{common.ConceptAggregate, common.ConceptFragment} {
		if _, err := nodeTypeLabel(typ); err != nil {
			t.Fatalf("expected %s to be accepted: %v", typ, err)
		}
	}
	if _, err := nodeTypeLabel("User"); err == nil {
		t.Fatal("expected unknown label to be rejected")
	}
}
