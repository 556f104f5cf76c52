package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/cyperf-demos/pan-demo-setup/internal/models"
	"github.com/cyperf-demos/pan-demo-setup/pkg/poller"
)

// TrafficController starts and stops traffic on a session.
type TrafficController struct {
	client TestOperationsClient
	gate   *RetryGate
	poller *poller.Poller
}

func NewTrafficController(client TestOperationsClient, gate *RetryGate, p *poller.Poller) *TrafficController {
	return &TrafficController{client: client, gate: gate, poller: p}
}

func (t *TrafficController) Start(ctx context.Context, session models.Session) error {
	return t.run(ctx, "start traffic", session, t.client.StartTraffic)
}

func (t *TrafficController) Stop(ctx context.Context, session models.Session) error {
	return t.run(ctx, "stop traffic", session, t.client.StopTraffic)
}

func (t *TrafficController) run(ctx context.Context, name string, session models.Session, submit func(context.Context, string) (models.AsyncJob, error)) error {
	job, err := Retry(ctx, t.gate, func(ctx context.Context) (models.AsyncJob, error) {
		return submit(ctx, session.ID)
	})
	if err != nil {
		return err
	}

	zap.S().Named("traffic").Infow("waiting for traffic operation", "operation", name, "session", session.ID)
	if _, err := t.poller.Await(ctx, operationHandle(t.client, t.gate, name+" "+session.ID, job)); err != nil {
		return err
	}
	zap.S().Named("traffic").Infow("traffic operation completed", "operation", name, "session", session.ID)
	return nil
}
