package errors

import (
	"errors"
	"fmt"
	"time"
)

// ServiceUnavailableError is returned when the controller API is reachable but not ready
// to serve requests yet (typically right after the controller boots).
type ServiceUnavailableError struct {
	StatusCode int
	Message    string
}

func NewServiceUnavailableError(statusCode int, message string) *ServiceUnavailableError {
	return &ServiceUnavailableError{StatusCode: statusCode, Message: message}
}

func (e *ServiceUnavailableError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("controller service unavailable: %s", e.Message)
	}
	return fmt.Sprintf("controller service unavailable (status %d): %s", e.StatusCode, e.Message)
}

func IsServiceUnavailableError(err error) bool {
	var e *ServiceUnavailableError
	return errors.As(err, &e)
}

// RemoteOperationError is returned when a long-running job ends in an error state or
// when the controller rejects a call.
type RemoteOperationError struct {
	Operation  string
	Cause      string
	StatusCode int
}

func NewRemoteOperationError(operation, cause string) *RemoteOperationError {
	return &RemoteOperationError{Operation: operation, Cause: cause}
}

func NewRemoteCallError(operation string, statusCode int, cause string) *RemoteOperationError {
	return &RemoteOperationError{Operation: operation, Cause: cause, StatusCode: statusCode}
}

func (e *RemoteOperationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote operation %q failed (status %d): %s", e.Operation, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("remote operation %q failed: %s", e.Operation, e.Cause)
}

func IsRemoteOperationError(err error) bool {
	var e *RemoteOperationError
	return errors.As(err, &e)
}

type LicenseServerConnectError struct {
	HostName string
	Status   string
}

func NewLicenseServerConnectError(hostName, status string) *LicenseServerConnectError {
	return &LicenseServerConnectError{HostName: hostName, Status: status}
}

func (e *LicenseServerConnectError) Error() string {
	return fmt.Sprintf("could not connect to license server %s: connection status %s", e.HostName, e.Status)
}

func IsLicenseServerConnectError(err error) bool {
	var e *LicenseServerConnectError
	return errors.As(err, &e)
}

// ControllerUnreachableError is returned when the controller kept answering "not ready"
// for longer than the configured bound.
type ControllerUnreachableError struct {
	Elapsed time.Duration
	Err     error
}

func NewControllerUnreachableError(elapsed time.Duration, err error) *ControllerUnreachableError {
	return &ControllerUnreachableError{Elapsed: elapsed, Err: err}
}

func (e *ControllerUnreachableError) Error() string {
	return fmt.Sprintf("controller not ready after %s: %v", e.Elapsed.Round(time.Second), e.Err)
}

func (e *ControllerUnreachableError) Unwrap() error {
	return e.Err
}

func IsControllerUnreachableError(err error) bool {
	var e *ControllerUnreachableError
	return errors.As(err, &e)
}

type ResourceNotFoundError struct {
	Kind string
	ID   string
}

func NewResourceNotFoundError(kind, id string) *ResourceNotFoundError {
	return &ResourceNotFoundError{Kind: kind, ID: id}
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func IsResourceNotFoundError(err error) bool {
	var e *ResourceNotFoundError
	return errors.As(err, &e)
}

type NoSessionCreatedError struct {
	ConfigURL string
}

func NewNoSessionCreatedError(configURL string) *NoSessionCreatedError {
	return &NoSessionCreatedError{ConfigURL: configURL}
}

func (e *NoSessionCreatedError) Error() string {
	return fmt.Sprintf("controller created no session for configuration %s", e.ConfigURL)
}

func IsNoSessionCreatedError(err error) bool {
	var e *NoSessionCreatedError
	return errors.As(err, &e)
}

type AgentRoleOutputMissingError struct {
	Segment   string
	OutputKey string
}

func NewAgentRoleOutputMissingError(segment, outputKey string) *AgentRoleOutputMissingError {
	return &AgentRoleOutputMissingError{Segment: segment, OutputKey: outputKey}
}

func (e *AgentRoleOutputMissingError) Error() string {
	return fmt.Sprintf("provisioning output %q for segment %q is missing", e.OutputKey, e.Segment)
}

func IsAgentRoleOutputMissingError(err error) bool {
	var e *AgentRoleOutputMissingError
	return errors.As(err, &e)
}
