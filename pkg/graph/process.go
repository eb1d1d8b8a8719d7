package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/stormgraph/internal/metrics"
	"github.com/OFFIS-RIT/stormgraph/pkg/common"
	"github.com/OFFIS-RIT/stormgraph/pkg/jobs"
	"github.com/OFFIS-RIT/stormgraph/pkg/logger"
	"github.com/OFFIS-RIT/stormgraph/pkg/store"
)

// ErrNoFragments fails a job whose document has no stored fragments.
var ErrNoFragments = errors.New("no fragments found for document")

// RunExtraction executes one extraction job for docID and reports every phase
// to tracker. Failures end the job with status error and are not returned.
func (g *GraphClient) RunExtraction(
	ctx context.Context,
	jobID string,
	docID string,
	tracker *jobs.Tracker,
	s store.GraphStorage,
) {
	log := logger.With("job_id", jobID, "doc_id", docID)
	// The job must reach done or error even when ctx is cancelled mid-run.
	finishCtx := context.WithoutCancel(ctx)
	start := time.Now()
	status := jobs.StatusError
	defer func() {
		metrics.JobsTotal.WithLabelValues(string(status)).Inc()
		metrics.JobDuration.Observe(time.Since(start).Seconds())
	}()
	defer func() {
		if r := recover(); r != nil {
			log.Error("[Extract] Extraction job panicked", "panic", r)
			g.fail(finishCtx, tracker, jobID, fmt.Sprintf("internal error: %v", r))
		}
	}()

	message, err := g.runExtraction(ctx, jobID, docID, tracker, s)
	if err != nil {
		log.Error("[Extract] Extraction job failed", "err", err)
		g.fail(finishCtx, tracker, jobID, err.Error())
		return
	}

	if err := tracker.Complete(finishCtx, jobID, message); err != nil {
		log.Error("[Extract] Failed to complete job", "err", err)
		return
	}
	status = jobs.StatusDone
	log.Info("[Extract] Extraction job completed", "duration", time.Since(start).String())
}

func (g *GraphClient) fail(ctx context.Context, tracker *jobs.Tracker, jobID string, message string) {
	if err := tracker.Fail(ctx, jobID, message); err != nil {
		logger.Error("[Extract] Failed to mark job as failed", "job_id", jobID, "err", err)
	}
}

func (g *GraphClient) runExtraction(
	ctx context.Context,
	jobID string,
	docID string,
	tracker *jobs.Tracker,
	s store.GraphStorage,
) (string, error) {
	if err := tracker.Advance(ctx, jobID, jobs.ProgressRetrieving, "Retrieving document fragments..."); err != nil {
		return "", err
	}
	fragments, err := s.GetFragments(ctx, docID, 0)
	if err != nil {
		return "", fmt.Errorf("failed to load fragments: %w", err)
	}
	if len(fragments) == 0 {
		return "", ErrNoFragments
	}

	if err := tracker.Advance(ctx, jobID, jobs.ProgressExtracting, "Extracting domain concepts..."); err != nil {
		return "", err
	}
	output, err := g.ExtractConcepts(ctx, fragments)
	if err != nil {
		return "", err
	}
	recordConcepts(output)

	if err := tracker.Advance(ctx, jobID, jobs.ProgressStoring, "Storing graph data..."); err != nil {
		return "", err
	}
	set, err := AssignNodes(docID, *output)
	if err != nil {
		return "", err
	}
	res, err := WriteGraph(ctx, s, set, InferRelationships(set))
	if err != nil {
		return "", err
	}
	prov, err := WriteProvenance(ctx, s, ProvenanceEdges(set))
	if err != nil {
		return "", err
	}

	m := g.ModelMetrics()
	logger.Info(
		"[Extract] Graph stored",
		"job_id", jobID,
		"mock", output.Mock,
		"nodes", res.NodesWritten,
		"edges_created", res.EdgesCreated,
		"edges_existing", res.EdgesExisting,
		"provenance_edges", prov.EdgesCreated+prov.EdgesExisting,
		"model_requests", m.Requests,
		"input_tokens", m.InputTokens,
		"output_tokens", m.OutputTokens,
		"tokens_per_second", m.TokenPerSecond,
	)

	return fmt.Sprintf(
		"Extracted %d aggregates, %d commands, %d events, %d policies",
		len(output.Aggregates), len(output.Commands), len(output.Events), len(output.Policies),
	), nil
}

func recordConcepts(output *common.ExtractionOutput) {
	metrics.ConceptsTotal.WithLabelValues(string(common.ConceptAggregate)).Add(float64(len(output.Aggregates)))
	metrics.ConceptsTotal.WithLabelValues(string(common.ConceptCommand)).Add(float64(len(output.Commands)))
	metrics.ConceptsTotal.WithLabelValues(string(common.ConceptEvent)).Add(float64(len(output.Events)))
	metrics.ConceptsTotal.WithLabelValues(string(common.ConceptPolicy)).Add(float64(len(output.Policies)))
}
