package commands

import (
	"context"
	"sync"

	"github.com/riftlang/rift/pkg/engine"
	"github.com/riftlang/rift/pkg/stores"
)

// historyRecorder adapts the history store to the engine's recorder
// port. Fuse and deployment records arrive while their run is still in
// flight, before the run row exists, so they are buffered per run and
// flushed once the run row lands. The runs table is the foreign key
// parent for both child tables.
type historyRecorder struct {
	store stores.Store

	mu      sync.Mutex
	pending map[string]*pendingRun
}

type pendingRun struct {
	fuses   []*stores.FuseExecution
	deploys []*stores.Deployment
}

func newHistoryRecorder(store stores.Store) *historyRecorder {
	return &historyRecorder{
		store:   store,
		pending: make(map[string]*pendingRun),
	}
}

// RecordRun inserts the run row and flushes any buffered child records.
func (h *historyRecorder) RecordRun(ctx context.Context, rec engine.RunRecord) error {
	run := &stores.Run{
		ID:         rec.ID,
		SessionID:  rec.SessionID,
		Mode:       rec.Mode,
		Status:     stores.RunStatus(rec.Status),
		StartedAt:  rec.StartedAt,
		DurationMS: rec.Duration.Milliseconds(),
		Source:     rec.Source,
		Error:      optionalString(rec.Error),
	}
	if err := h.store.CreateRun(ctx, run); err != nil {
		h.discard(rec.ID)
		return err
	}
	return h.flush(ctx, rec.ID)
}

// RecordFuse buffers one fuse execution until its run row exists.
func (h *historyRecorder) RecordFuse(_ context.Context, rec engine.FuseRecord) error {
	if rec.RunID == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	p := h.pendingLocked(rec.RunID)
	p.fuses = append(p.fuses, &stores.FuseExecution{
		RunID:      rec.RunID,
		Language:   rec.Language,
		Hash:       rec.Hash,
		Cached:     rec.Cached,
		DurationMS: rec.Duration.Milliseconds(),
		Error:      optionalString(rec.Error),
	})
	return nil
}

// RecordDeployment buffers one sink outcome until its run row exists.
func (h *historyRecorder) RecordDeployment(_ context.Context, rec engine.DeployRecord) error {
	if rec.RunID == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	p := h.pendingLocked(rec.RunID)
	p.deploys = append(p.deploys, &stores.Deployment{
		RunID:      rec.RunID,
		Sink:       rec.Sink,
		Attempts:   rec.Attempts,
		Status:     stores.DeploymentStatus(rec.Status),
		DurationMS: rec.Duration.Milliseconds(),
		Error:      optionalString(rec.Error),
	})
	return nil
}

func (h *historyRecorder) pendingLocked(runID string) *pendingRun {
	p, ok := h.pending[runID]
	if !ok {
		p = &pendingRun{}
		h.pending[runID] = p
	}
	return p
}

func (h *historyRecorder) flush(ctx context.Context, runID string) error {
	h.mu.Lock()
	p := h.pending[runID]
	delete(h.pending, runID)
	h.mu.Unlock()

	if p == nil {
		return nil
	}
	for _, exec := range p.fuses {
		if err := h.store.AppendFuseExecution(ctx, exec); err != nil {
			return err
		}
	}
	for _, dep := range p.deploys {
		if err := h.store.AppendDeployment(ctx, dep); err != nil {
			return err
		}
	}
	return nil
}

func (h *historyRecorder) discard(runID string) {
	h.mu.Lock()
	delete(h.pending, runID)
	h.mu.Unlock()
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
