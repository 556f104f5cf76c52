package models

import "time"

type RunKind string

const (
	RunKindDeploy  RunKind = "deploy"
	RunKindDestroy RunKind = "destroy"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one deploy or destroy invocation as recorded in the journal.
type Run struct {
	ID         string
	Kind       RunKind
	Controller string
	Status     RunStatus
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}

type RunResourceKind string

const (
	RunResourceLicenseServer RunResourceKind = "license_server"
	RunResourceConfiguration RunResourceKind = "configuration"
	RunResourceSession       RunResourceKind = "session"
)

// RunResource is a controller resource created during a run.
type RunResource struct {
	RunID      string
	Kind       RunResourceKind
	ResourceID string
	URL        string
	CreatedAt  time.Time
}
