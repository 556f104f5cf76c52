// Package infra provides the infrastructure stand-in used by the e2e suite.
package infra

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/cyperf-demos/pan-demo-setup/internal/models"
	"github.com/cyperf-demos/pan-demo-setup/internal/orchestrator"
	"github.com/cyperf-demos/pan-demo-setup/test/simulator"
)

// AgentHost is one provisioned agent: the controller registers it under ID.
type AgentHost struct {
	ID        string
	PrivateIP string
}

// Topology plays the role of the provisioning tool. Apply boots a simulated
// controller and Destroy shuts it down; Outputs mirrors what terraform would
// print for the demo topology.
type Topology struct {
	// LicenseServer is reported as the license_server output when not empty.
	LicenseServer string
	// BootRequests is how many requests the controller rejects while starting.
	BootRequests int
	// SessionConfig is the configuration document of created sessions.
	SessionConfig string
	// Agents maps an agent role output key to its hosts.
	Agents map[string][]AgentHost

	mu        sync.Mutex
	sim       *simulator.Simulator
	applied   int
	destroyed int
}

var _ orchestrator.Provisioner = (*Topology)(nil)

func (t *Topology) Apply(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.applied++
	if t.sim != nil {
		return nil
	}

	sim, err := simulator.New()
	if err != nil {
		return err
	}
	sim.Unavailable(t.BootRequests)
	if t.SessionConfig != "" {
		sim.SetNewSessionConfig(t.SessionConfig)
	}
	for _, hosts := range t.Agents {
		for _, h := range hosts {
			sim.AddAgent(h.ID, h.PrivateIP)
		}
	}
	t.sim = sim
	return nil
}

// Outputs is empty once the topology is destroyed, like a state without resources.
func (t *Topology) Outputs(ctx context.Context) (models.Outputs, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sim == nil {
		return models.Outputs{}, nil
	}

	values := map[string]any{
		models.OutputControllerDetail: map[string]string{"public_ip": t.sim.URL()},
	}
	if t.LicenseServer != "" {
		values[models.OutputLicenseServer] = t.LicenseServer
	}
	for key, hosts := range t.Agents {
		records := make([]map[string]string, 0, len(hosts))
		for _, h := range hosts {
			records = append(records, map[string]string{"private_ip": h.PrivateIP})
		}
		values[key] = records
	}

	out := make(models.Outputs, len(values))
	for k, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[k] = raw
	}
	return out, nil
}

func (t *Topology) Destroy(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.destroyed++
	if t.sim == nil {
		return nil
	}
	t.sim.Close()
	t.sim = nil
	return nil
}

// Controller returns the running controller. It fails before Apply or after Destroy.
func (t *Topology) Controller() (*simulator.Simulator, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sim == nil {
		return nil, errors.New("topology is not provisioned")
	}
	return t.sim, nil
}

func (t *Topology) Destroyed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.destroyed
}
