package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cyperf-demos/pan-demo-setup/internal/models"
	srvErrors "github.com/cyperf-demos/pan-demo-setup/pkg/errors"
	"github.com/cyperf-demos/pan-demo-setup/pkg/poller"
)

const DefaultLicenseSettleWait = 5 * time.Second

type LicenseServerOptions struct {
	// Target is the license server host name. Empty, or equal to Controller, disables the manager.
	Target     string
	Controller string
	User       string
	Password   string
	// SettleWait is how long to wait after deleting a stale server before creating a new one.
	SettleWait time.Duration
}

// LicenseServerManager attaches a license server to the controller and tracks
// the servers it created so that only those are removed on detach.
type LicenseServerManager struct {
	client LicenseServerClient
	gate   *RetryGate
	poller *poller.Poller
	opts   LicenseServerOptions

	mu    sync.Mutex
	state models.LicenseServerState
	owned []models.LicenseServer
}

func NewLicenseServerManager(client LicenseServerClient, gate *RetryGate, p *poller.Poller, opts LicenseServerOptions) *LicenseServerManager {
	if opts.SettleWait <= 0 {
		opts.SettleWait = DefaultLicenseSettleWait
	}
	return &LicenseServerManager{
		client: client,
		gate:   gate,
		poller: p,
		opts:   opts,
		state:  models.LicenseServerStateAbsent,
	}
}

func (m *LicenseServerManager) enabled() bool {
	return m.opts.Target != "" && m.opts.Target != m.opts.Controller
}

func (m *LicenseServerManager) State() models.LicenseServerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Owned returns the servers recorded during this run.
func (m *LicenseServerManager) Owned() []models.LicenseServer {
	m.mu.Lock()
	defer m.mu.Unlock()
	owned := make([]models.LicenseServer, len(m.owned))
	copy(owned, m.owned)
	return owned
}

func (m *LicenseServerManager) setState(s models.LicenseServerState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

func (m *LicenseServerManager) own(s models.LicenseServer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.owned {
		if o.ID == s.ID {
			return
		}
	}
	m.owned = append(m.owned, s)
}

// Attach makes sure the target license server is connected. An established
// server with the same host name is reused.
func (m *LicenseServerManager) Attach(ctx context.Context) error {
	if !m.enabled() {
		return nil
	}
	return m.gate.Do(ctx, m.attach)
}

func (m *LicenseServerManager) attach(ctx context.Context) error {
	log := zap.S().Named("license_server").With("host", m.opts.Target)

	servers, err := m.client.ListLicenseServers(ctx)
	if err != nil {
		return err
	}

	for _, s := range servers {
		if s.HostName != m.opts.Target {
			continue
		}
		if s.ConnectionStatus == models.LicenseConnectionEstablished {
			m.own(s)
			m.setState(models.LicenseServerStateEstablished)
			log.Infow("license server is already configured", "id", s.ID)
			return nil
		}

		log.Infow("removing license server stuck in non-established state", "id", s.ID, "status", s.ConnectionStatus)
		if err := m.client.DeleteLicenseServer(ctx, s.ID); err != nil && !srvErrors.IsResourceNotFoundError(err) {
			return err
		}
		// TODO: poll the delete once the controller exposes its completion instead of sleeping.
		log.Infow("waiting for license server deletion to settle", "wait", m.opts.SettleWait)
		if err := sleep(ctx, m.opts.SettleWait); err != nil {
			return err
		}
		break
	}

	return m.create(ctx)
}

func (m *LicenseServerManager) create(ctx context.Context) error {
	log := zap.S().Named("license_server").With("host", m.opts.Target)

	log.Info("configuring new license server")
	m.setState(models.LicenseServerStateConfiguring)

	created, err := m.client.CreateLicenseServers(ctx, []models.LicenseServerSpec{{
		HostName:            m.opts.Target,
		TrustNewCertificate: true,
		User:                m.opts.User,
		Password:            m.opts.Password,
	}})
	if err != nil {
		m.setState(models.LicenseServerStateAbsent)
		return err
	}

	handles := make([]poller.Handle, 0, len(created))
	for _, s := range created {
		m.own(s)
		handles = append(handles, m.connectionHandle(s.ID))
	}

	jobs, err := m.poller.AwaitAll(ctx, handles)
	if err != nil {
		m.setState(models.LicenseServerStateFailed)
		return err
	}

	for i, job := range jobs {
		status := models.LicenseConnectionStatus(job.Message)
		if status != models.LicenseConnectionEstablished {
			m.setState(models.LicenseServerStateFailed)
			return srvErrors.NewLicenseServerConnectError(m.hostOf(created[i]), string(status))
		}
		log.Infow("successfully added license server", "id", created[i].ID)
	}

	m.setState(models.LicenseServerStateEstablished)
	return nil
}

func (m *LicenseServerManager) hostOf(s models.LicenseServer) string {
	if s.HostName != "" {
		return s.HostName
	}
	return m.opts.Target
}

// connectionHandle exposes a server's connection status as a job: IN_PROGRESS
// while connecting, complete otherwise with the final status in Message.
func (m *LicenseServerManager) connectionHandle(id string) poller.Handle {
	return poller.HandleFunc("license-server/"+id, func(ctx context.Context) (models.AsyncJob, error) {
		s, err := Retry(ctx, m.gate, func(ctx context.Context) (models.LicenseServer, error) {
			return m.client.GetLicenseServer(ctx, id)
		})
		if err != nil {
			return models.AsyncJob{}, err
		}
		job := models.AsyncJob{ID: id, Status: models.JobStatusComplete, Message: string(s.ConnectionStatus)}
		if s.ConnectionStatus == models.LicenseConnectionInProgress {
			job.Status = models.JobStatusInProgress
		}
		return job, nil
	})
}

// Detach deletes every server this run recorded. Failures are logged and do
// not stop the remaining deletions.
func (m *LicenseServerManager) Detach(ctx context.Context) error {
	if !m.enabled() {
		return nil
	}
	return m.gate.Do(ctx, m.detach)
}

func (m *LicenseServerManager) detach(ctx context.Context) error {
	log := zap.S().Named("license_server")

	var remaining []models.LicenseServer
	for _, s := range m.Owned() {
		err := m.client.DeleteLicenseServer(ctx, s.ID)
		switch {
		case err == nil, srvErrors.IsResourceNotFoundError(err):
			log.Infow("license server removed", "id", s.ID, "host", s.HostName)
		case srvErrors.IsServiceUnavailableError(err):
			return err
		default:
			log.Errorw("failed to remove license server", "id", s.ID, "host", s.HostName, "error", err)
			remaining = append(remaining, s)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	m.mu.Lock()
	m.owned = remaining
	if len(remaining) == 0 {
		m.state = models.LicenseServerStateAbsent
	}
	m.mu.Unlock()
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
