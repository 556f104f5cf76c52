package services

import (
	"context"

	"github.com/cyperf-demos/pan-demo-setup/internal/models"
)

// The controller client is an external collaborator. Each manager depends only on the
// capability it drives.

type HealthClient interface {
	// Ping returns a ServiceUnavailableError while the controller is still starting.
	Ping(ctx context.Context) error
}

type LicenseServerClient interface {
	ListLicenseServers(ctx context.Context) ([]models.LicenseServer, error)
	GetLicenseServer(ctx context.Context, id string) (models.LicenseServer, error)
	CreateLicenseServers(ctx context.Context, specs []models.LicenseServerSpec) ([]models.LicenseServer, error)
	DeleteLicenseServer(ctx context.Context, id string) error
}

type OperationClient interface {
	// GetOperation returns the current state of a previously submitted job.
	GetOperation(ctx context.Context, job models.AsyncJob) (models.AsyncJob, error)
}

type ConfigurationClient interface {
	OperationClient
	StartConfigImport(ctx context.Context, location string) (models.AsyncJob, error)
	ListConfigurations(ctx context.Context, filter models.ConfigurationFilter) ([]models.ConfigurationRecord, error)
	DeleteConfiguration(ctx context.Context, id string) error
}

type SessionClient interface {
	CreateSessions(ctx context.Context, configURLs []string) ([]models.Session, error)
	ListSessions(ctx context.Context) ([]models.Session, error)
	DeleteSession(ctx context.Context, id string) error
	GetTestStatus(ctx context.Context, sessionID string) (models.TestStatus, error)
	GetSessionConfig(ctx context.Context, sessionID string) (*models.SessionConfig, error)
}

type AgentClient interface {
	ListAgents(ctx context.Context) ([]models.Agent, error)
	GetSessionConfig(ctx context.Context, sessionID string) (*models.SessionConfig, error)
	UpdateNetworkSegment(ctx context.Context, sessionID, profileID string, segment models.IPNetworkSegment) error
}

type TestOperationsClient interface {
	OperationClient
	StartTraffic(ctx context.Context, sessionID string) (models.AsyncJob, error)
	StopTraffic(ctx context.Context, sessionID string) (models.AsyncJob, error)
}

// RemoteClient is everything the controller facade needs.
type RemoteClient interface {
	HealthClient
	LicenseServerClient
	ConfigurationClient
	SessionClient
	AgentClient
	TestOperationsClient
}
