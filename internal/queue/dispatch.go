package queue

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/OFFIS-RIT/stormgraph/pkg/jobs"
	"github.com/OFFIS-RIT/stormgraph/pkg/logger"
)

// ExtractJobMsg is the body of a message on ExtractQueue.
type ExtractJobMsg struct {
	JobID string `json:"job_id"`
	DocID string `json:"doc_id"`
}

// Dispatcher starts a queued job in the background. Dispatch returns once the
// job has been handed off.
type Dispatcher interface {
	Dispatch(ctx context.Context, job jobs.Job) error
}

// InProcess runs jobs on goroutines of the current process. Runs are detached
// from the dispatching request and only stop with the base context.
type InProcess struct {
	base   context.Context
	runner *Runner
	wg     sync.WaitGroup
}

func NewInProcess(base context.Context, runner *Runner) *InProcess {
	return &InProcess{base: base, runner: runner}
}

func (d *InProcess) Dispatch(ctx context.Context, job jobs.Job) error {
	msg := ExtractJobMsg{JobID: job.ID, DocID: job.DocID}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.runner.Run(d.base, msg); err != nil {
			logger.Error("[Queue] Extraction job could not run", "job_id", msg.JobID, "err", err)
			d.runner.Abandon(d.base, msg, err)
		}
	}()
	return nil
}

// Wait blocks until every dispatched job has finished.
func (d *InProcess) Wait() {
	d.wg.Wait()
}

// AMQP publishes jobs to ExtractQueue for cmd/worker.
type AMQP struct {
	mu sync.Mutex
	ch Publisher
}

func NewAMQP(ch Publisher) *AMQP {
	return &AMQP{ch: ch}
}

func (d *AMQP) Dispatch(ctx context.Context, job jobs.Job) error {
	body, err := json.Marshal(ExtractJobMsg{JobID: job.ID, DocID: job.DocID})
	if err != nil {
		return err
	}
	// amqp channels are not safe for concurrent publishing.
	d.mu.Lock()
	defer d.mu.Unlock()
	return PublishFIFO(d.ch, ExtractQueue, body)
}
