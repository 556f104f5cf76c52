package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cyperf-demos/pan-demo-setup/internal/models"
	srvErrors "github.com/cyperf-demos/pan-demo-setup/pkg/errors"
	"github.com/cyperf-demos/pan-demo-setup/pkg/poller"
)

// ConfigurationManager imports configuration bundles and removes configurations.
type ConfigurationManager struct {
	client ConfigurationClient
	gate   *RetryGate
	poller *poller.Poller
}

func NewConfigurationManager(client ConfigurationClient, gate *RetryGate, p *poller.Poller) *ConfigurationManager {
	return &ConfigurationManager{client: client, gate: gate, poller: p}
}

// Import submits one import job per bundle before waiting for any of them and
// returns the configurations of all jobs, in submission order.
func (m *ConfigurationManager) Import(ctx context.Context, locations []string) ([]models.ConfigurationRecord, error) {
	log := zap.S().Named("configuration")

	handles := make([]poller.Handle, 0, len(locations))
	for _, loc := range locations {
		job, err := Retry(ctx, m.gate, func(ctx context.Context) (models.AsyncJob, error) {
			return m.client.StartConfigImport(ctx, loc)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to start import of %s: %w", loc, err)
		}
		log.Infow("configuration import started", "bundle", loc, "job", job.ID)
		handles = append(handles, m.operationHandle("import "+loc, job))
	}

	jobs, err := m.poller.AwaitAll(ctx, handles)
	if err != nil {
		return nil, err
	}

	var configs []models.ConfigurationRecord
	for i, job := range jobs {
		if len(job.Result) == 0 {
			continue
		}
		var records []models.ConfigurationRecord
		if err := json.Unmarshal(job.Result, &records); err != nil {
			return nil, fmt.Errorf("failed to decode import result of %s: %w", locations[i], err)
		}
		configs = append(configs, records...)
	}

	log.Infow("configurations imported", "bundles", len(locations), "configurations", len(configs))
	return configs, nil
}

// ImportOne imports a single bundle and returns its first configuration, or nil.
func (m *ConfigurationManager) ImportOne(ctx context.Context, location string) (*models.ConfigurationRecord, error) {
	configs, err := m.Import(ctx, []string{location})
	if err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		return nil, nil
	}
	return &configs[0], nil
}

// FindByName returns the first configuration with the given display name, or nil.
func (m *ConfigurationManager) FindByName(ctx context.Context, name string) (*models.ConfigurationRecord, error) {
	configs, err := Retry(ctx, m.gate, func(ctx context.Context) ([]models.ConfigurationRecord, error) {
		return m.client.ListConfigurations(ctx, models.ByDisplayName(name))
	})
	if err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		return nil, nil
	}
	return &configs[0], nil
}

// Delete deletes each configuration. A failure is logged and the remaining
// configurations are still deleted; all failures are returned joined.
func (m *ConfigurationManager) Delete(ctx context.Context, ids ...string) error {
	log := zap.S().Named("configuration")

	var errs []error
	for _, id := range ids {
		err := m.gate.Do(ctx, func(ctx context.Context) error {
			return m.client.DeleteConfiguration(ctx, id)
		})
		if err != nil && !srvErrors.IsResourceNotFoundError(err) {
			errs = append(errs, fmt.Errorf("failed to delete configuration %s: %w", id, err))
			if ctx.Err() != nil {
				break
			}
			log.Errorw("failed to delete configuration, continuing", "id", id, "error", err)
			continue
		}
		log.Infow("configuration deleted", "id", id)
	}
	return errors.Join(errs...)
}

// DeleteAll deletes every configuration that is not readonly.
func (m *ConfigurationManager) DeleteAll(ctx context.Context) error {
	configs, err := Retry(ctx, m.gate, func(ctx context.Context) ([]models.ConfigurationRecord, error) {
		return m.client.ListConfigurations(ctx, models.ConfigurationFilter{})
	})
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(configs))
	for _, c := range configs {
		if c.Readonly {
			continue
		}
		ids = append(ids, c.ID)
	}
	return m.Delete(ctx, ids...)
}

func (m *ConfigurationManager) operationHandle(name string, job models.AsyncJob) poller.Handle {
	return operationHandle(m.client, m.gate, name, job)
}

// operationHandle polls a job through the gate so a controller restart in the
// middle of a job does not fail it.
func operationHandle(client OperationClient, gate *RetryGate, name string, job models.AsyncJob) poller.Handle {
	return poller.HandleFunc(name, func(ctx context.Context) (models.AsyncJob, error) {
		return Retry(ctx, gate, func(ctx context.Context) (models.AsyncJob, error) {
			return client.GetOperation(ctx, job)
		})
	})
}
