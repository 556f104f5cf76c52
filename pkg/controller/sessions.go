package controller

import (
	"context"
	"net/http"

	"github.com/cyperf-demos/pan-demo-setup/internal/models"
)

const sessionsPath = apiPrefix + "/sessions"

func (c *Client) sessionPath(sessionID string) (string, error) {
	p, err := pathParam("sessionId", sessionID)
	if err != nil {
		return "", err
	}
	return sessionsPath + "/" + p, nil
}

func (c *Client) CreateSessions(ctx context.Context, configURLs []string) ([]models.Session, error) {
	body := make([]session, 0, len(configURLs))
	for _, u := range configURLs {
		body = append(body, session{ConfigURL: u})
	}

	var wire []session
	err := c.do(ctx, request{
		operation: "create sessions",
		method:    http.MethodPost,
		path:      sessionsPath,
		body:      body,
	}, &wire)
	if err != nil {
		return nil, err
	}
	sessions := make([]models.Session, 0, len(wire))
	for _, s := range wire {
		sessions = append(sessions, s.toModel())
	}
	return sessions, nil
}

func (c *Client) ListSessions(ctx context.Context) ([]models.Session, error) {
	var wire []session
	err := c.do(ctx, request{
		operation: "list sessions",
		method:    http.MethodGet,
		path:      sessionsPath,
	}, &wire)
	if err != nil {
		return nil, err
	}
	sessions := make([]models.Session, 0, len(wire))
	for _, s := range wire {
		sessions = append(sessions, s.toModel())
	}
	return sessions, nil
}

func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	p, err := c.sessionPath(sessionID)
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		operation: "delete session",
		method:    http.MethodDelete,
		path:      p,
		target:    resource{kind: "session", id: sessionID},
	}, nil)
}

func (c *Client) GetTestStatus(ctx context.Context, sessionID string) (models.TestStatus, error) {
	p, err := c.sessionPath(sessionID)
	if err != nil {
		return "", err
	}
	var t test
	err = c.do(ctx, request{
		operation: "get test",
		method:    http.MethodGet,
		path:      p + "/test",
		target:    resource{kind: "session", id: sessionID},
	}, &t)
	if err != nil {
		return "", err
	}
	return models.TestStatus(t.Status), nil
}

func (c *Client) GetSessionConfig(ctx context.Context, sessionID string) (*models.SessionConfig, error) {
	p, err := c.sessionPath(sessionID)
	if err != nil {
		return nil, err
	}
	var cfg models.SessionConfig
	err = c.do(ctx, request{
		operation: "get session config",
		method:    http.MethodGet,
		path:      p + "/config/config",
		target:    resource{kind: "session", id: sessionID},
	}, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Client) StartTraffic(ctx context.Context, sessionID string) (models.AsyncJob, error) {
	return c.testRun(ctx, sessionID, "start")
}

func (c *Client) StopTraffic(ctx context.Context, sessionID string) (models.AsyncJob, error) {
	return c.testRun(ctx, sessionID, "stop")
}

func (c *Client) testRun(ctx context.Context, sessionID, op string) (models.AsyncJob, error) {
	p, err := c.sessionPath(sessionID)
	if err != nil {
		return models.AsyncJob{}, err
	}
	return c.submit(ctx, request{
		operation: op + " traffic",
		method:    http.MethodPost,
		path:      p + "/test-run/operations/" + op,
		target:    resource{kind: "session", id: sessionID},
	})
}
