package bootstrap

import (
	"context"
	"testing"

	"github.com/OFFIS-RIT/stormgraph/internal/util"
	"github.com/OFFIS-RIT/stormgraph/pkg/jobs"
	"github.com/OFFIS-RIT/stormgraph/pkg/leaselock"
	"github.com/OFFIS-RIT/stormgraph/pkg/store"
)

func TestNewAIClient(t *testing.T) {
	tests := []struct {
		name    string
		cfg     util.Config
		wantNil bool
		wantErr bool
	}{
		{"disabled", util.Config{AIAdapter: "none"}, true, false},
		{"openai without key", util.Config{AIAdapter: "openai"}, true, false},
		{"openai", util.Config{AIAdapter: "openai", AIChatKey: "sk-test", AIExtractModel: "gpt-4"}, false, false},
		{"ollama", util.Config{AIAdapter: "ollama", AIExtractModel: "llama3"}, false, false},
		{"unknown", util.Config{AIAdapter: "bedrock"}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewAIClient(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if (client == nil) != tt.wantNil {
				t.Fatalf("client = %v, wantNil %v", client, tt.wantNil)
			}
		})
	}
}

func TestNewGraphClientFallsBackToMock(t *testing.T) {
	client := NewGraphClient(util.Config{AIAdapter: "openai"})
	if client.ExtractionEnabled() {
		t.Fatal("expected extraction to be disabled without a key")
	}
}

func TestNewGraphStoreMemory(t *testing.T) {
	s := NewGraphStore(context.Background(), util.Config{GraphStore: "memory"})
	if s.Status() != store.StatusConnected {
		t.Fatalf("status = %s", s.Status())
	}
}

func TestNewBackendsMemory(t *testing.T) {
	b, err := NewBackends(context.Background(), util.Config{JobStore: "memory"})
	if err != nil {
		t.Fatalf("NewBackends returned error: %v", err)
	}
	defer b.Close()

	if _, ok := b.Jobs.(*jobs.MemoryStore); !ok {
		t.Fatalf("job store = %T", b.Jobs)
	}
	if _, ok := b.Locker.(leaselock.Nop); !ok {
		t.Fatalf("locker = %T", b.Locker)
	}
	if b.Pool != nil {
		t.Fatal("expected no postgres pool")
	}
}

func TestNewBackendsRequiresDatabaseURL(t *testing.T) {
	if _, err := NewBackends(context.Background(), util.Config{JobStore: "postgres"}); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
	if _, err := NewBackends(context.Background(), util.Config{JobStore: "memory", DocLockEnabled: true}); err == nil {
		t.Fatal("expected error for lease lock without DATABASE_URL")
	}
}

func TestNewBackendsUnknownStore(t *testing.T) {
	if _, err := NewBackends(context.Background(), util.Config{JobStore: "etcd"}); err == nil {
		t.Fatal("expected error for unknown job store")
	}
}
