package controller

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/cyperf-demos/pan-demo-setup/internal/models"
)

const configsPath = apiPrefix + "/configs"

// StartConfigImport uploads a configuration bundle and starts importing it.
func (c *Client) StartConfigImport(ctx context.Context, location string) (models.AsyncJob, error) {
	f, err := os.Open(location)
	if err != nil {
		return models.AsyncJob{}, fmt.Errorf("failed to open configuration bundle: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(location))
	if err != nil {
		return models.AsyncJob{}, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return models.AsyncJob{}, fmt.Errorf("failed to read configuration bundle: %w", err)
	}
	if err := w.Close(); err != nil {
		return models.AsyncJob{}, err
	}

	return c.submit(ctx, request{
		operation:   "import configuration",
		method:      http.MethodPost,
		path:        configsPath + "/operations/import",
		rawBody:     buf.Bytes(),
		contentType: w.FormDataContentType(),
	})
}

func (c *Client) ListConfigurations(ctx context.Context, filter models.ConfigurationFilter) ([]models.ConfigurationRecord, error) {
	query := url.Values{}
	if filter.SearchCol != "" {
		if err := addQueryParam(query, "searchCol", filter.SearchCol); err != nil {
			return nil, err
		}
	}
	if filter.SearchVal != "" {
		if err := addQueryParam(query, "searchVal", filter.SearchVal); err != nil {
			return nil, err
		}
	}

	var configs []models.ConfigurationRecord
	err := c.do(ctx, request{
		operation: "list configurations",
		method:    http.MethodGet,
		path:      configsPath,
		query:     query,
	}, &configs)
	return configs, err
}

func (c *Client) DeleteConfiguration(ctx context.Context, configID string) error {
	p, err := pathParam("configId", configID)
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		operation: "delete configuration",
		method:    http.MethodDelete,
		path:      configsPath + "/" + p,
		target:    resource{kind: "configuration", id: configID},
	}, nil)
}
