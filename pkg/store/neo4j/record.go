package neo4j

import (
	"github.com/OFFIS-RIT/stormgraph/pkg/common"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

func getString(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func getInt(record *neo4j.Record, key string) int {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func getStrings(record *neo4j.Record, key string) []string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return nil
	}
	items, ok := val.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func getMap(record *neo4j.Record, key string) map[string]any {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return map[string]any{}
	}
	if m, ok := val.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func nodeFromRecord(record *neo4j.Record) common.Node {
	props := getMap(record, "props")
	for _, k := range []string{"id", "doc_id", "type", "name"} {
		delete(props, k)
	}
	return common.Node{
		ID:    getString(record, "id"),
		DocID: getString(record, "doc_id"),
		Type:  common.ConceptType(getString(record, "type")),
		Name:  getString(record, "name"),
		Props: props,
	}
}

func fragmentFromRecord(record *neo4j.Record) common.Fragment {
	return common.Fragment{
		ID:    getString(record, "id"),
		DocID: getString(record, "doc_id"),
		Page:  getInt(record, "page"),
		Start: getInt(record, "start"),
		End:   getInt(record, "end"),
		Text:  getString(record, "text"),
	}
}
