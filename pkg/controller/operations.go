package controller

import (
	"context"
	"net/http"
	"strings"

	"github.com/cyperf-demos/pan-demo-setup/internal/models"
)

// submit starts an asynchronous operation and returns its job. A job without
// a url is polled at <path>/<id>.
func (c *Client) submit(ctx context.Context, r request) (models.AsyncJob, error) {
	var wire asyncJob
	if err := c.do(ctx, r, &wire); err != nil {
		return models.AsyncJob{}, err
	}
	job := wire.toModel()
	if job.URL == "" {
		job.URL = r.path + "/" + job.ID
	}
	return job, nil
}

// GetOperation fetches the current state of a job.
func (c *Client) GetOperation(ctx context.Context, job models.AsyncJob) (models.AsyncJob, error) {
	path := job.URL
	if !strings.HasPrefix(path, "/") && !strings.Contains(path, "://") {
		path = "/" + path
	}
	var wire asyncJob
	err := c.do(ctx, request{
		operation: "get operation",
		method:    http.MethodGet,
		path:      path,
		target:    resource{kind: "operation", id: job.ID},
	}, &wire)
	if err != nil {
		return models.AsyncJob{}, err
	}
	polled := wire.toModel()
	if polled.ID == "" {
		polled.ID = job.ID
	}
	polled.URL = job.URL
	return polled, nil
}
