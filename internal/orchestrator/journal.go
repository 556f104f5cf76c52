package orchestrator

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cyperf-demos/pan-demo-setup/internal/models"
)

// Journal records runs. *store.RunStore implements it.
type Journal interface {
	Create(ctx context.Context, run models.Run) error
	SetController(ctx context.Context, id, address string) error
	Finish(ctx context.Context, id string, status models.RunStatus, err error) error
	AddResource(ctx context.Context, r models.RunResource) error
}

// runRecorder writes one run to the journal. Journal failures are logged and
// never fail the run.
type runRecorder struct {
	id      string
	journal Journal
	log     *zap.SugaredLogger
}

func (o *Orchestrator) startRun(ctx context.Context, kind models.RunKind) *runRecorder {
	r := &runRecorder{
		id:      uuid.NewString(),
		journal: o.journal,
		log:     zap.S().Named("journal"),
	}
	r.log.Debugw("run started", "run", r.id, "kind", kind)
	if r.journal == nil {
		return r
	}
	if err := r.journal.Create(ctx, models.Run{ID: r.id, Kind: kind, Status: models.RunStatusRunning}); err != nil {
		r.log.Warnw("failed to record run", "run", r.id, "error", err)
		r.journal = nil
	}
	return r
}

func (r *runRecorder) setController(ctx context.Context, address string) {
	if r.journal == nil {
		return
	}
	if err := r.journal.SetController(ctx, r.id, address); err != nil {
		r.log.Warnw("failed to record controller", "run", r.id, "error", err)
	}
}

func (r *runRecorder) addResource(ctx context.Context, kind models.RunResourceKind, id, url string) {
	if r.journal == nil {
		return
	}
	err := r.journal.AddResource(ctx, models.RunResource{RunID: r.id, Kind: kind, ResourceID: id, URL: url})
	if err != nil {
		r.log.Warnw("failed to record resource", "run", r.id, "kind", kind, "id", id, "error", err)
	}
}

func (r *runRecorder) finish(ctx context.Context, runErr error) {
	if r.journal == nil {
		return
	}
	status := models.RunStatusSucceeded
	if runErr != nil {
		status = models.RunStatusFailed
	}
	// the run context may already be cancelled
	if err := r.journal.Finish(context.WithoutCancel(ctx), r.id, status, runErr); err != nil {
		r.log.Warnw("failed to record run result", "run", r.id, "error", err)
	}
}
