package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cyperf-demos/pan-demo-setup/internal/models"
)

// AgentAssignmentEngine assigns controller agents to the network segments of a session.
type AgentAssignmentEngine struct {
	client AgentClient
	gate   *RetryGate
	agents models.AgentTable
}

func NewAgentAssignmentEngine(client AgentClient, gate *RetryGate) *AgentAssignmentEngine {
	return &AgentAssignmentEngine{client: client, gate: gate}
}

// Load fetches the agent table. It only hits the controller the first time it succeeds.
func (e *AgentAssignmentEngine) Load(ctx context.Context) error {
	if e.agents != nil {
		return nil
	}
	agents, err := Retry(ctx, e.gate, func(ctx context.Context) ([]models.Agent, error) {
		return e.client.ListAgents(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to list agents: %w", err)
	}
	e.agents = models.NewAgentTable(agents)
	zap.S().Named("agent_assignment").Infow("agents loaded", "count", len(agents))
	return nil
}

func (e *AgentAssignmentEngine) Agents() models.AgentTable {
	return e.agents
}

// Assign applies agentMap to every segment of the session whose name is a key of
// the map. Unknown IPs are dropped. With augment the agents are appended to the
// existing assignments, otherwise they replace them. Each changed segment is
// sent to the controller on its own; other segments are left alone.
func (e *AgentAssignmentEngine) Assign(ctx context.Context, session *models.Session, agentMap models.AgentMap, augment bool) error {
	log := zap.S().Named("agent_assignment").With("session", session.ID)

	if err := e.Load(ctx); err != nil {
		return err
	}

	if session.Config == nil {
		cfg, err := Retry(ctx, e.gate, func(ctx context.Context) (*models.SessionConfig, error) {
			return e.client.GetSessionConfig(ctx, session.ID)
		})
		if err != nil {
			return fmt.Errorf("failed to get configuration of session %s: %w", session.ID, err)
		}
		session.Config = cfg
	}

	for pi := range session.Config.NetworkProfiles {
		profile := &session.Config.NetworkProfiles[pi]
		for si := range profile.IPNetworkSegments {
			segment := &profile.IPNetworkSegments[si]
			ips, ok := agentMap[segment.Name]
			if !ok {
				continue
			}

			details := make([]models.AgentAssignmentDetails, 0, len(ips))
			for _, ip := range ips {
				agent, found := e.agents.Lookup(ip)
				if !found {
					log.Debugw("no agent with this ip, skipping", "segment", segment.Name, "ip", ip)
					continue
				}
				details = append(details, models.NewAgentAssignmentDetails(agent.ID))
			}

			if segment.AgentAssignments == nil {
				segment.AgentAssignments = &models.AgentAssignments{
					ByID:  []models.AgentAssignmentDetails{},
					ByTag: []string{},
				}
			}
			if augment {
				segment.AgentAssignments.ByID = append(segment.AgentAssignments.ByID, details...)
			} else {
				segment.AgentAssignments.ByID = details
			}

			err := e.gate.Do(ctx, func(ctx context.Context) error {
				return e.client.UpdateNetworkSegment(ctx, session.ID, profile.ID, *segment)
			})
			if err != nil {
				return fmt.Errorf("failed to update segment %s: %w", segment.Name, err)
			}
			log.Infow("agents assigned", "segment", segment.Name, "agents", len(segment.AgentAssignments.ByID), "augment", augment)
		}
	}
	return nil
}
