// Package fakeclient provides an in-memory controller for testing the services
// and orchestrator packages without a network.
package fakeclient

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cyperf-demos/pan-demo-setup/internal/models"
	"github.com/cyperf-demos/pan-demo-setup/internal/services"
	srvErrors "github.com/cyperf-demos/pan-demo-setup/pkg/errors"
)

// SegmentUpdate records one UpdateNetworkSegment call.
type SegmentUpdate struct {
	SessionID string
	ProfileID string
	Segment   models.IPNetworkSegment
}

type job struct {
	remaining int
	final     models.AsyncJob
	onDone    func()
}

// Controller is a fake controller. Fields may be set directly before use; use
// the methods once the fake is shared with the code under test.
type Controller struct {
	mu sync.Mutex

	// JobPolls is how many polls a job stays IN_PROGRESS.
	JobPolls int
	// LicenseStatus is the status a created license server ends up with.
	LicenseStatus models.LicenseConnectionStatus
	// LicensePolls is how many polls a created license server stays IN_PROGRESS.
	LicensePolls int
	// ImportResults maps an import location to the records the job yields.
	ImportResults map[string][]models.ConfigurationRecord
	// ImportErrors maps an import location to the message of a failed job.
	ImportErrors map[string]string

	Agents         []models.Agent
	LicenseServers []models.LicenseServer
	Configurations []models.ConfigurationRecord
	Sessions       []models.Session
	SessionConfigs map[string]*models.SessionConfig
	TestStatuses   map[string]models.TestStatus
	// NewSessionConfig, when set, is copied as the configuration of every created session.
	NewSessionConfig *models.SessionConfig

	faults       map[string][]error
	calls        []string
	updates      []SegmentUpdate
	jobs         map[string]*job
	licensePolls map[string]int
	nextID       int
}

var _ services.RemoteClient = (*Controller)(nil)

func New() *Controller {
	return &Controller{
		LicenseStatus:  models.LicenseConnectionEstablished,
		ImportResults:  map[string][]models.ConfigurationRecord{},
		ImportErrors:   map[string]string{},
		SessionConfigs: map[string]*models.SessionConfig{},
		TestStatuses:   map[string]models.TestStatus{},
		faults:         map[string][]error{},
		jobs:           map[string]*job{},
		licensePolls:   map[string]int{},
	}
}

// Fail makes the next calls of method return errs, one per call, in order.
func (c *Controller) Fail(method string, errs ...error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.faults[method] = append(c.faults[method], errs...)
}

// Unavailable makes the next n calls of method report the controller as not ready.
func (c *Controller) Unavailable(method string, n int) {
	errs := make([]error, n)
	for i := range errs {
		errs[i] = srvErrors.NewServiceUnavailableError(503, "starting")
	}
	c.Fail(method, errs...)
}

// Calls returns the recorded calls as "Method" or "Method:arg".
func (c *Controller) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

// CountCalls returns how many times call was recorded.
func (c *Controller) CountCalls(call string) int {
	n := 0
	for _, got := range c.Calls() {
		if got == call {
			n++
		}
	}
	return n
}

func (c *Controller) Updates() []SegmentUpdate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]SegmentUpdate(nil), c.updates...)
}

func (c *Controller) ListedLicenseServers() []models.LicenseServer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.LicenseServer(nil), c.LicenseServers...)
}

func (c *Controller) ListedConfigurations() []models.ConfigurationRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.ConfigurationRecord(nil), c.Configurations...)
}

func (c *Controller) ListedSessions() []models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Session(nil), c.Sessions...)
}

// enter records a call and returns the injected fault, if any. It must be
// called with the lock held.
func (c *Controller) enter(method string, arg string) error {
	if arg == "" {
		c.calls = append(c.calls, method)
	} else {
		c.calls = append(c.calls, method+":"+arg)
	}
	if errs := c.faults[method]; len(errs) > 0 {
		c.faults[method] = errs[1:]
		return errs[0]
	}
	return nil
}

func (c *Controller) id(prefix string) string {
	c.nextID++
	return fmt.Sprintf("%s-%d", prefix, c.nextID)
}

func (c *Controller) submit(prefix string, final models.AsyncJob, onDone func()) models.AsyncJob {
	id := c.id(prefix)
	final.ID = id
	final.URL = "/operations/" + id
	c.jobs[id] = &job{remaining: c.JobPolls, final: final, onDone: onDone}
	return models.AsyncJob{ID: id, URL: final.URL, Status: models.JobStatusInProgress}
}

func (c *Controller) Ping(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enter("Ping", "")
}

func (c *Controller) GetOperation(ctx context.Context, in models.AsyncJob) (models.AsyncJob, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter("GetOperation", in.ID); err != nil {
		return models.AsyncJob{}, err
	}
	j, ok := c.jobs[in.ID]
	if !ok {
		return models.AsyncJob{}, srvErrors.NewResourceNotFoundError("operation", in.ID)
	}
	if j.remaining > 0 {
		j.remaining--
		return models.AsyncJob{ID: in.ID, URL: in.URL, Status: models.JobStatusInProgress}, nil
	}
	if j.onDone != nil {
		j.onDone()
		j.onDone = nil
	}
	return j.final, nil
}

func (c *Controller) ListLicenseServers(ctx context.Context) ([]models.LicenseServer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter("ListLicenseServers", ""); err != nil {
		return nil, err
	}
	return append([]models.LicenseServer(nil), c.LicenseServers...), nil
}

func (c *Controller) GetLicenseServer(ctx context.Context, id string) (models.LicenseServer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter("GetLicenseServer", id); err != nil {
		return models.LicenseServer{}, err
	}
	for i, s := range c.LicenseServers {
		if s.ID != id {
			continue
		}
		if c.licensePolls[id] > 0 {
			c.licensePolls[id]--
			return s, nil
		}
		c.LicenseServers[i].ConnectionStatus = c.LicenseStatus
		return c.LicenseServers[i], nil
	}
	return models.LicenseServer{}, srvErrors.NewResourceNotFoundError("license server", id)
}

func (c *Controller) CreateLicenseServers(ctx context.Context, specs []models.LicenseServerSpec) ([]models.LicenseServer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter("CreateLicenseServers", ""); err != nil {
		return nil, err
	}
	created := make([]models.LicenseServer, 0, len(specs))
	for _, spec := range specs {
		s := models.LicenseServer{
			ID:               c.id("ls"),
			HostName:         spec.HostName,
			ConnectionStatus: models.LicenseConnectionInProgress,
		}
		c.licensePolls[s.ID] = c.LicensePolls
		c.LicenseServers = append(c.LicenseServers, s)
		created = append(created, s)
	}
	return created, nil
}

func (c *Controller) DeleteLicenseServer(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter("DeleteLicenseServer", id); err != nil {
		return err
	}
	for i, s := range c.LicenseServers {
		if s.ID == id {
			c.LicenseServers = append(c.LicenseServers[:i], c.LicenseServers[i+1:]...)
			return nil
		}
	}
	return srvErrors.NewResourceNotFoundError("license server", id)
}

func (c *Controller) StartConfigImport(ctx context.Context, location string) (models.AsyncJob, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter("StartConfigImport", location); err != nil {
		return models.AsyncJob{}, err
	}
	if msg, ok := c.ImportErrors[location]; ok {
		return c.submit("import", models.AsyncJob{Status: models.JobStatusError, Message: msg}, nil), nil
	}
	records := c.ImportResults[location]
	result, err := json.Marshal(records)
	if err != nil {
		return models.AsyncJob{}, err
	}
	return c.submit("import", models.AsyncJob{Status: models.JobStatusComplete, Result: result}, func() {
		c.Configurations = append(c.Configurations, records...)
	}), nil
}

func (c *Controller) ListConfigurations(ctx context.Context, filter models.ConfigurationFilter) ([]models.ConfigurationRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter("ListConfigurations", filter.SearchVal); err != nil {
		return nil, err
	}
	var out []models.ConfigurationRecord
	for _, r := range c.Configurations {
		if filter.SearchVal != "" && r.DisplayName != filter.SearchVal {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (c *Controller) DeleteConfiguration(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter("DeleteConfiguration", id); err != nil {
		return err
	}
	for i, r := range c.Configurations {
		if r.ID == id {
			c.Configurations = append(c.Configurations[:i], c.Configurations[i+1:]...)
			return nil
		}
	}
	return srvErrors.NewResourceNotFoundError("configuration", id)
}

func (c *Controller) CreateSessions(ctx context.Context, configURLs []string) ([]models.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter("CreateSessions", ""); err != nil {
		return nil, err
	}
	created := make([]models.Session, 0, len(configURLs))
	for _, u := range configURLs {
		s := models.Session{ID: c.id("session"), ConfigURL: u}
		c.Sessions = append(c.Sessions, s)
		c.TestStatuses[s.ID] = models.TestStatusStopped
		if c.NewSessionConfig != nil {
			c.SessionConfigs[s.ID] = cloneConfig(c.NewSessionConfig)
		}
		created = append(created, s)
	}
	return created, nil
}

func (c *Controller) ListSessions(ctx context.Context) ([]models.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter("ListSessions", ""); err != nil {
		return nil, err
	}
	return append([]models.Session(nil), c.Sessions...), nil
}

func (c *Controller) DeleteSession(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter("DeleteSession", id); err != nil {
		return err
	}
	for i, s := range c.Sessions {
		if s.ID == id {
			c.Sessions = append(c.Sessions[:i], c.Sessions[i+1:]...)
			delete(c.TestStatuses, id)
			return nil
		}
	}
	return srvErrors.NewResourceNotFoundError("session", id)
}

func (c *Controller) GetTestStatus(ctx context.Context, sessionID string) (models.TestStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter("GetTestStatus", sessionID); err != nil {
		return "", err
	}
	status, ok := c.TestStatuses[sessionID]
	if !ok {
		return "", srvErrors.NewResourceNotFoundError("session", sessionID)
	}
	return status, nil
}

func (c *Controller) GetSessionConfig(ctx context.Context, sessionID string) (*models.SessionConfig, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter("GetSessionConfig", sessionID); err != nil {
		return nil, err
	}
	cfg, ok := c.SessionConfigs[sessionID]
	if !ok {
		return nil, srvErrors.NewResourceNotFoundError("session config", sessionID)
	}
	return cloneConfig(cfg), nil
}

func (c *Controller) ListAgents(ctx context.Context) ([]models.Agent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter("ListAgents", ""); err != nil {
		return nil, err
	}
	return append([]models.Agent(nil), c.Agents...), nil
}

func (c *Controller) UpdateNetworkSegment(ctx context.Context, sessionID, profileID string, segment models.IPNetworkSegment) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter("UpdateNetworkSegment", segment.Name); err != nil {
		return err
	}
	c.updates = append(c.updates, SegmentUpdate{SessionID: sessionID, ProfileID: profileID, Segment: segment})
	return nil
}

func (c *Controller) StartTraffic(ctx context.Context, sessionID string) (models.AsyncJob, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter("StartTraffic", sessionID); err != nil {
		return models.AsyncJob{}, err
	}
	return c.submit("start", models.AsyncJob{Status: models.JobStatusComplete}, func() {
		c.TestStatuses[sessionID] = models.TestStatusStarted
	}), nil
}

func (c *Controller) StopTraffic(ctx context.Context, sessionID string) (models.AsyncJob, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter("StopTraffic", sessionID); err != nil {
		return models.AsyncJob{}, err
	}
	return c.submit("stop", models.AsyncJob{Status: models.JobStatusComplete}, func() {
		c.TestStatuses[sessionID] = models.TestStatusStopped
	}), nil
}

func cloneConfig(cfg *models.SessionConfig) *models.SessionConfig {
	b, err := json.Marshal(cfg)
	if err != nil {
		panic(err)
	}
	var out models.SessionConfig
	if err := json.Unmarshal(b, &out); err != nil {
		panic(err)
	}
	return &out
}
