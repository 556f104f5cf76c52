package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cyperf-demos/pan-demo-setup/internal/models"
	srvErrors "github.com/cyperf-demos/pan-demo-setup/pkg/errors"
)

// SessionManager creates and deletes sessions. A session is always stopped
// before it is deleted.
type SessionManager struct {
	client  SessionClient
	gate    *RetryGate
	configs *ConfigurationManager
	traffic *TrafficController
}

func NewSessionManager(client SessionClient, gate *RetryGate, configs *ConfigurationManager, traffic *TrafficController) *SessionManager {
	return &SessionManager{client: client, gate: gate, configs: configs, traffic: traffic}
}

// Create creates a session for the configuration. It returns nil when the
// controller created nothing.
func (m *SessionManager) Create(ctx context.Context, configURL string) (*models.Session, error) {
	sessions, err := Retry(ctx, m.gate, func(ctx context.Context) ([]models.Session, error) {
		return m.client.CreateSessions(ctx, []string{configURL})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session for %s: %w", configURL, err)
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	s := sessions[0]
	zap.S().Named("session").Infow("session created", "id", s.ID, "config", configURL)
	return &s, nil
}

// CreateByConfigName creates a session from the configuration with the given
// display name. It returns nil when no such configuration exists.
func (m *SessionManager) CreateByConfigName(ctx context.Context, name string) (*models.Session, error) {
	cfg, err := m.configs.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, nil
	}
	return m.Create(ctx, cfg.ConfigURL)
}

// Delete stops and deletes each session. A failure is logged and the
// remaining sessions are still deleted; all failures are returned joined.
func (m *SessionManager) Delete(ctx context.Context, sessions ...models.Session) error {
	var errs []error
	for _, s := range sessions {
		err := m.delete(ctx, s)
		if err == nil {
			continue
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
		zap.S().Named("session").Errorw("failed to delete session, continuing", "id", s.ID, "error", err)
	}
	return errors.Join(errs...)
}

func (m *SessionManager) delete(ctx context.Context, s models.Session) error {
	log := zap.S().Named("session").With("id", s.ID)

	status, err := Retry(ctx, m.gate, func(ctx context.Context) (models.TestStatus, error) {
		return m.client.GetTestStatus(ctx, s.ID)
	})
	if srvErrors.IsResourceNotFoundError(err) {
		log.Info("session already gone")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get test status of session %s: %w", s.ID, err)
	}

	if status != models.TestStatusStopped {
		log.Infow("stopping traffic before delete", "status", status)
		if err := m.traffic.Stop(ctx, s); err != nil {
			return fmt.Errorf("failed to stop traffic on session %s: %w", s.ID, err)
		}
	}

	err = m.gate.Do(ctx, func(ctx context.Context) error {
		return m.client.DeleteSession(ctx, s.ID)
	})
	if err != nil && !srvErrors.IsResourceNotFoundError(err) {
		return fmt.Errorf("failed to delete session %s: %w", s.ID, err)
	}
	log.Info("session deleted")
	return nil
}

// DeleteAll deletes every session on the controller.
func (m *SessionManager) DeleteAll(ctx context.Context) error {
	sessions, err := Retry(ctx, m.gate, func(ctx context.Context) ([]models.Session, error) {
		return m.client.ListSessions(ctx)
	})
	if err != nil {
		return err
	}
	return m.Delete(ctx, sessions...)
}
