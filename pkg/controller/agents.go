package controller

import (
	"context"
	"net/http"

	"github.com/cyperf-demos/pan-demo-setup/internal/models"
)

func (c *Client) ListAgents(ctx context.Context) ([]models.Agent, error) {
	var wire []agent
	err := c.do(ctx, request{
		operation: "list agents",
		method:    http.MethodGet,
		path:      apiPrefix + "/agents",
	}, &wire)
	if err != nil {
		return nil, err
	}
	agents := make([]models.Agent, 0, len(wire))
	for _, a := range wire {
		agents = append(agents, models.Agent{ID: string(a.ID), IP: a.IP})
	}
	return agents, nil
}

// UpdateNetworkSegment writes back one network segment of a session configuration.
func (c *Client) UpdateNetworkSegment(ctx context.Context, sessionID, profileID string, segment models.IPNetworkSegment) error {
	sp, err := c.sessionPath(sessionID)
	if err != nil {
		return err
	}
	pp, err := pathParam("networkProfileId", profileID)
	if err != nil {
		return err
	}
	segp, err := pathParam("ipNetworkSegmentId", segment.ID)
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		operation: "update network segment",
		method:    http.MethodPatch,
		path:      sp + "/config/config/NetworkProfiles/" + pp + "/IPNetworkSegment/" + segp,
		body:      segment,
		target:    resource{kind: "network segment", id: segment.ID},
	}, nil)
}
