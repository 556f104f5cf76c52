package controller

import (
	"context"
	"net/http"

	"github.com/cyperf-demos/pan-demo-setup/internal/models"
)

const licenseServersPath = apiPrefix + "/license-servers"

func (c *Client) ListLicenseServers(ctx context.Context) ([]models.LicenseServer, error) {
	var wire []licenseServer
	err := c.do(ctx, request{
		operation: "list license servers",
		method:    http.MethodGet,
		path:      licenseServersPath,
	}, &wire)
	if err != nil {
		return nil, err
	}
	servers := make([]models.LicenseServer, 0, len(wire))
	for _, s := range wire {
		servers = append(servers, s.toModel())
	}
	return servers, nil
}

func (c *Client) GetLicenseServer(ctx context.Context, serverID string) (models.LicenseServer, error) {
	p, err := pathParam("licenseServerId", serverID)
	if err != nil {
		return models.LicenseServer{}, err
	}
	var wire licenseServer
	err = c.do(ctx, request{
		operation: "get license server",
		method:    http.MethodGet,
		path:      licenseServersPath + "/" + p,
		target:    resource{kind: "license server", id: serverID},
	}, &wire)
	if err != nil {
		return models.LicenseServer{}, err
	}
	return wire.toModel(), nil
}

func (c *Client) CreateLicenseServers(ctx context.Context, specs []models.LicenseServerSpec) ([]models.LicenseServer, error) {
	body := make([]licenseServerSpec, 0, len(specs))
	for _, s := range specs {
		body = append(body, licenseServerSpec{
			HostName:            s.HostName,
			TrustNewCertificate: s.TrustNewCertificate,
			User:                s.User,
			Password:            s.Password,
		})
	}

	var wire []licenseServer
	err := c.do(ctx, request{
		operation: "create license servers",
		method:    http.MethodPost,
		path:      licenseServersPath,
		body:      body,
	}, &wire)
	if err != nil {
		return nil, err
	}
	servers := make([]models.LicenseServer, 0, len(wire))
	for _, s := range wire {
		servers = append(servers, s.toModel())
	}
	return servers, nil
}

func (c *Client) DeleteLicenseServer(ctx context.Context, serverID string) error {
	p, err := pathParam("licenseServerId", serverID)
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		operation: "delete license server",
		method:    http.MethodDelete,
		path:      licenseServersPath + "/" + p,
		target:    resource{kind: "license server", id: serverID},
	}, nil)
}
