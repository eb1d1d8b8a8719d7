package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/OFFIS-RIT/stormgraph/pkg/graph"
	"github.com/OFFIS-RIT/stormgraph/pkg/jobs"
	"github.com/OFFIS-RIT/stormgraph/pkg/leaselock"
	"github.com/OFFIS-RIT/stormgraph/pkg/logger"
	"github.com/OFFIS-RIT/stormgraph/pkg/store"
)

// Runner executes extraction jobs, optionally holding a per-document lease
// so that jobs of one document do not overlap.
type Runner struct {
	Graph   *graph.GraphClient
	Tracker *jobs.Tracker
	Store   store.GraphStorage
	Locker  leaselock.Locker
}

// Run executes the job. It only returns an error when the job could not be
// started; failures during the run are recorded on the job itself.
func (r *Runner) Run(ctx context.Context, msg ExtractJobMsg) error {
	if msg.JobID == "" || msg.DocID == "" {
		return fmt.Errorf("job message needs job_id and doc_id")
	}
	locker := r.Locker
	if locker == nil {
		locker = leaselock.Nop{}
	}

	logger.Info("[Queue] Starting extraction job", "job_id", msg.JobID, "doc_id", msg.DocID)
	return locker.WithLease(ctx, leaselock.DocKey(msg.DocID), func(ctx context.Context) error {
		r.Graph.RunExtraction(ctx, msg.JobID, msg.DocID, r.Tracker, r.Store)
		return nil
	})
}

// Abandon fails a job that will not be run.
func (r *Runner) Abandon(ctx context.Context, msg ExtractJobMsg, cause error) {
	if msg.JobID == "" {
		return
	}
	if err := r.Tracker.Fail(context.WithoutCancel(ctx), msg.JobID, cause.Error()); err != nil {
		logger.Warn("[Queue] Failed to mark abandoned job", "job_id", msg.JobID, "err", err)
	}
}

// DecodeJobMsg parses a message body from ExtractQueue.
func DecodeJobMsg(body []byte) (ExtractJobMsg, error) {
	var msg ExtractJobMsg
	if err := json.Unmarshal(body, &msg); err != nil {
		return ExtractJobMsg{}, fmt.Errorf("decode job message: %w", err)
	}
	return msg, nil
}
