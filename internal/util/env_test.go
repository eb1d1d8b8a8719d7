package util

import (
	"reflect"
	"testing"
	"time"
)

func TestGetEnvInt(t *testing.T) {
	t.Setenv("STORMGRAPH_INT", " 42 ")
	if got := GetEnvInt("STORMGRAPH_INT", 1); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	t.Setenv("STORMGRAPH_INT", "nope")
	if got := GetEnvInt("STORMGRAPH_INT", 7); got != 7 {
		t.Fatalf("expected default 7, got %d", got)
	}
	if got := GetEnvInt("STORMGRAPH_UNSET_INT", 3); got != 3 {
		t.Fatalf("expected default 3, got %d", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("STORMGRAPH_BOOL", "true")
	if !GetEnvBool("STORMGRAPH_BOOL", false) {
		t.Fatal("expected true")
	}
	t.Setenv("STORMGRAPH_BOOL", "yes")
	if GetEnvBool("STORMGRAPH_BOOL", false) {
		t.Fatal("expected default false for unrecognized value")
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("STORMGRAPH_LIST", "http://a, ,http://b ")
	got := GetEnvList("STORMGRAPH_LIST", nil)
	want := []string{"http://a", "http://b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"CHUNK_MAX_LENGTH", "EXTRACT_MAX_FRAGMENTS", "CORS_ORIGINS", "NEO4J_TIMEOUT_SECONDS"} {
		t.Setenv(key, "")
	}
	cfg := LoadConfig()
	if cfg.ChunkMaxLength != 1200 {
		t.Errorf("expected chunk max length 1200, got %d", cfg.ChunkMaxLength)
	}
	if cfg.ExtractMaxFragments != 10 {
		t.Errorf("expected 10 fragments, got %d", cfg.ExtractMaxFragments)
	}
	if !reflect.DeepEqual(cfg.CORSOrigin, []string{"http://localhost:5173"}) {
		t.Errorf("unexpected cors origins %v", cfg.CORSOrigin)
	}
	if cfg.Neo4jTimeout != 10*time.Second {
		t.Errorf("expected 10s neo4j timeout, got %s", cfg.Neo4jTimeout)
	}
}
