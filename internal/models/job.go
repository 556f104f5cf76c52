package models

import "encoding/json"

type JobStatus string

const (
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusComplete   JobStatus = "COMPLETE"
	JobStatusError      JobStatus = "ERROR"
)

// ParseJobStatus maps a wire state onto a JobStatus. The controller reports
// successful operations as "SUCCESS".
func ParseJobStatus(s string) JobStatus {
	switch s {
	case "IN_PROGRESS", "in-progress", "":
		return JobStatusInProgress
	case "COMPLETE", "SUCCESS", "success":
		return JobStatusComplete
	default:
		return JobStatusError
	}
}

// AsyncJob is a server-side long-running operation. It only lives for the
// duration of the polling loop.
type AsyncJob struct {
	ID      string
	URL     string
	Status  JobStatus
	Message string
	Result  json.RawMessage
}

func (j AsyncJob) Done() bool {
	return j.Status != JobStatusInProgress
}
