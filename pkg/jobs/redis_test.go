package jobs

import (
	"context"
	"reflect"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// recordHook answers every command locally and keeps its arguments.
type recordHook struct {
	args [][]any
}

func (h *recordHook) DialHook(next goredis.DialHook) goredis.DialHook {
	return next
}

func (h *recordHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		h.args = append(h.args, cmd.Args())
		if c, ok := cmd.(*goredis.BoolCmd); ok {
			c.SetVal(true)
		}
		return nil
	}
}

func (h *recordHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return next
}

func newRecordedRedisStore(ttl time.Duration) (*RedisStore, *recordHook) {
	rdb := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"})
	hook := &recordHook{}
	rdb.AddHook(hook)
	return newRedisStore(rdb, ttl), hook
}

func TestRedisStoreExpiry(t *testing.T) {
	job := Job{ID: "job-1", DocID: "doc-1", Status: StatusQueued, Message: "Job queued"}

	tests := []struct {
		name       string
		ttl        time.Duration
		wantCreate []any
		wantUpdate []any
	}{
		{
			name:       "no ttl keeps records",
			ttl:        0,
			wantCreate: []any{"setnx", "stormgraph:job:job-1"},
			wantUpdate: []any{"set", "stormgraph:job:job-1", "xx"},
		},
		{
			name:       "negative ttl keeps records",
			ttl:        -time.Hour,
			wantCreate: []any{"setnx", "stormgraph:job:job-1"},
			wantUpdate: []any{"set", "stormgraph:job:job-1", "xx"},
		},
		{
			name:       "ttl expires records",
			ttl:        2 * time.Hour,
			wantCreate: []any{"set", "stormgraph:job:job-1", "ex", int64(7200), "nx"},
			wantUpdate: []any{"set", "stormgraph:job:job-1", "ex", int64(7200), "xx"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, hook := newRecordedRedisStore(tt.ttl)
			defer s.Close()

			if err := s.Create(context.Background(), job); err != nil {
				t.Fatalf("Create returned error: %v", err)
			}
			if err := s.Update(context.Background(), job); err != nil {
				t.Fatalf("Update returned error: %v", err)
			}
			if len(hook.args) != 2 {
				t.Fatalf("expected 2 commands, got %v", hook.args)
			}
			if got := withoutValue(hook.args[0]); !reflect.DeepEqual(got, tt.wantCreate) {
				t.Fatalf("create args = %v, want %v", got, tt.wantCreate)
			}
			if got := withoutValue(hook.args[1]); !reflect.DeepEqual(got, tt.wantUpdate) {
				t.Fatalf("update args = %v, want %v", got, tt.wantUpdate)
			}
		})
	}
}

// withoutValue drops the encoded job, the third argument of every SET.
func withoutValue(args []any) []any {
	out := append([]any{}, args[:2]...)
	return append(out, args[3:]...)
}
