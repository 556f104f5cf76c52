package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cyperf-demos/pan-demo-setup/pkg/poller"
)

const DefaultReadyTimeout = 10 * time.Minute

type ControllerOptions struct {
	Address           string
	LicenseServer     string
	LicenseUser       string
	LicensePassword   string
	PollInterval      time.Duration
	RetryInterval     time.Duration
	RetryMaxElapsed   time.Duration
	ReadyTimeout      time.Duration
	LicenseSettleWait time.Duration
}

// Controller drives one test controller. It owns the per-instance state: the
// agent table and the license servers attached through it.
type Controller struct {
	Address        string
	LicenseServers *LicenseServerManager
	Configurations *ConfigurationManager
	Sessions       *SessionManager
	Agents         *AgentAssignmentEngine
	Traffic        *TrafficController
}

// NewController waits for the controller API to come up, attaches the license
// server when one is configured and loads the agent table.
func NewController(ctx context.Context, client RemoteClient, opts ControllerOptions) (*Controller, error) {
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = DefaultReadyTimeout
	}
	gate := NewRetryGate(opts.RetryInterval, opts.RetryMaxElapsed)
	p := poller.New(opts.PollInterval)

	configs := NewConfigurationManager(client, gate, p)
	traffic := NewTrafficController(client, gate, p)

	c := &Controller{
		Address: opts.Address,
		LicenseServers: NewLicenseServerManager(client, gate, p, LicenseServerOptions{
			Target:     opts.LicenseServer,
			Controller: opts.Address,
			User:       opts.LicenseUser,
			Password:   opts.LicensePassword,
			SettleWait: opts.LicenseSettleWait,
		}),
		Configurations: configs,
		Sessions:       NewSessionManager(client, gate, configs, traffic),
		Agents:         NewAgentAssignmentEngine(client, gate),
		Traffic:        traffic,
	}

	log := zap.S().Named("controller").With("address", opts.Address)

	log.Info("waiting for controller to come up")
	ready := NewRetryGate(opts.RetryInterval, opts.ReadyTimeout)
	if err := ready.Do(ctx, client.Ping); err != nil {
		return nil, fmt.Errorf("controller %s is not ready: %w", opts.Address, err)
	}

	if err := c.LicenseServers.Attach(ctx); err != nil {
		return c, fmt.Errorf("failed to attach license server: %w", err)
	}

	if err := c.Agents.Load(ctx); err != nil {
		return c, err
	}

	log.Infow("controller ready", "agents", len(c.Agents.Agents()))
	return c, nil
}
