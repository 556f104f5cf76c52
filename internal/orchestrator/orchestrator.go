package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/cyperf-demos/pan-demo-setup/internal/config"
	"github.com/cyperf-demos/pan-demo-setup/internal/models"
	"github.com/cyperf-demos/pan-demo-setup/internal/services"
	srvErrors "github.com/cyperf-demos/pan-demo-setup/pkg/errors"
)

// Provisioner stands the infrastructure up and down.
type Provisioner interface {
	Apply(ctx context.Context) error
	Outputs(ctx context.Context) (models.Outputs, error)
	Destroy(ctx context.Context) error
}

// ClientFactory builds a controller client bound to address.
type ClientFactory func(address string) (services.RemoteClient, error)

type Option func(*Orchestrator)

// WithJournal records every run in j.
func WithJournal(j Journal) Option {
	return func(o *Orchestrator) {
		o.journal = j
	}
}

// WithOutput sets where the controller address is reported. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(o *Orchestrator) {
		o.out = w
	}
}

type Orchestrator struct {
	provisioner Provisioner
	newClient   ClientFactory
	controller  config.Controller
	roles       []models.AgentRole
	journal     Journal
	out         io.Writer
}

func New(provisioner Provisioner, newClient ClientFactory, cfg config.Configuration, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provisioner: provisioner,
		newClient:   newClient,
		controller:  cfg.Controller,
		roles:       cfg.Orchestrator.AgentRoles,
		out:         os.Stdout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type DeployOptions struct {
	// ConfigFile is the configuration bundle imported into the controller.
	ConfigFile string
}

// Deploy provisions the infrastructure and prepares the controller: license
// server, configuration, session and agent assignment. Any failure aborts the
// run and leaves the infrastructure in place.
func (o *Orchestrator) Deploy(ctx context.Context, opts DeployOptions) (err error) {
	run := o.startRun(ctx, models.RunKindDeploy)
	defer func() { run.finish(ctx, err) }()

	log := zap.S().Named("orchestrator").With("run", run.id)

	log.Info("provisioning infrastructure")
	if err := o.provisioner.Apply(ctx); err != nil {
		return fmt.Errorf("failed to provision infrastructure: %w", err)
	}

	outputs, err := o.provisioner.Outputs(ctx)
	if err != nil {
		return fmt.Errorf("failed to read provisioning outputs: %w", err)
	}

	address := outputs.ControllerAddress()
	if address == "" {
		return fmt.Errorf("provisioning outputs name no controller address (%s.public_ip)", models.OutputControllerDetail)
	}
	run.setController(ctx, address)

	ctrl, err := o.connect(ctx, address, outputs.LicenseServer())
	if ctrl != nil {
		for _, s := range ctrl.LicenseServers.Owned() {
			run.addResource(ctx, models.RunResourceLicenseServer, s.ID, "")
		}
	}
	if err != nil {
		return err
	}

	log.Infow("importing configuration", "file", opts.ConfigFile)
	cfg, err := ctrl.Configurations.ImportOne(ctx, opts.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", opts.ConfigFile, err)
	}
	if cfg == nil {
		return srvErrors.NewRemoteOperationError("import configuration", fmt.Sprintf("%s yielded no configuration", opts.ConfigFile))
	}
	run.addResource(ctx, models.RunResourceConfiguration, cfg.ID, cfg.ConfigURL)

	session, err := ctrl.Sessions.Create(ctx, cfg.ConfigURL)
	if err != nil {
		return err
	}
	if session == nil {
		return srvErrors.NewNoSessionCreatedError(cfg.ConfigURL)
	}
	run.addResource(ctx, models.RunResourceSession, session.ID, "")

	agentMap, err := BuildAgentMap(outputs, o.roles)
	if err != nil {
		return err
	}

	if err := ctrl.Agents.Assign(ctx, session, agentMap, false); err != nil {
		return fmt.Errorf("failed to assign agents: %w", err)
	}

	log.Infow("deploy finished", "controller", address, "session", session.ID)
	o.report(address)
	return nil
}

// Destroy removes the controller resources and then tears the infrastructure
// down. Controller cleanup is best effort; the teardown always runs and its
// error is the one returned.
func (o *Orchestrator) Destroy(ctx context.Context) (err error) {
	run := o.startRun(ctx, models.RunKindDestroy)
	defer func() { run.finish(ctx, err) }()

	log := zap.S().Named("orchestrator").With("run", run.id)

	outputs, err := o.provisioner.Outputs(ctx)
	if err != nil {
		log.Warnw("failed to read provisioning outputs, skipping controller cleanup", "error", err)
		outputs = models.Outputs{}
	}

	address, license := outputs.ControllerAddress(), outputs.LicenseServer()
	switch {
	case address == "":
		log.Info("no controller in provisioning outputs, skipping controller cleanup")
	case license == "":
		log.Infow("no license server in provisioning outputs, skipping controller cleanup", "controller", address)
	default:
		run.setController(ctx, address)
		o.cleanup(ctx, address, license)
	}

	log.Info("destroying infrastructure")
	if err := o.provisioner.Destroy(ctx); err != nil {
		return fmt.Errorf("failed to destroy infrastructure: %w", err)
	}
	log.Info("destroy finished")
	return nil
}

func (o *Orchestrator) cleanup(ctx context.Context, address, license string) {
	log := zap.S().Named("orchestrator").With("controller", address)

	ctrl, err := o.connect(ctx, address, license)
	if ctrl == nil {
		log.Errorw("controller unavailable, skipping controller cleanup", "error", err)
		return
	}
	if err != nil {
		log.Warnw("controller connected with errors, continuing cleanup", "error", err)
	}

	if err := ctrl.Sessions.DeleteAll(ctx); err != nil {
		log.Errorw("failed to delete sessions", "error", err)
	}
	if err := ctrl.Configurations.DeleteAll(ctx); err != nil {
		log.Errorw("failed to delete configurations", "error", err)
	}
	if err := ctrl.LicenseServers.Detach(ctx); err != nil {
		log.Errorw("failed to detach license server", "error", err)
	}
}

// connect builds the controller facade. A non-nil controller may come back
// with an error when only the license server attach failed.
func (o *Orchestrator) connect(ctx context.Context, address, license string) (*services.Controller, error) {
	client, err := o.newClient(address)
	if err != nil {
		return nil, fmt.Errorf("failed to create controller client for %s: %w", address, err)
	}
	return services.NewController(ctx, client, services.ControllerOptions{
		Address:           address,
		LicenseServer:     license,
		LicenseUser:       o.controller.AdminUser,
		LicensePassword:   o.controller.AdminPassword,
		PollInterval:      o.controller.PollInterval,
		RetryInterval:     o.controller.RetryInterval,
		RetryMaxElapsed:   o.controller.RetryMaxElapsed,
		ReadyTimeout:      o.controller.ReadyTimeout,
		LicenseSettleWait: o.controller.LicenseSettleWait,
	})
}

func (o *Orchestrator) report(address string) {
	url := color.New(color.FgGreen, color.Bold).Sprintf("https://%s", address)
	fmt.Fprintf(o.out, "Controller is ready at %s\n", url)
}

// BuildAgentMap resolves every role to the agent IPs listed in its output.
func BuildAgentMap(outputs models.Outputs, roles []models.AgentRole) (models.AgentMap, error) {
	agentMap := make(models.AgentMap, len(roles))
	for _, r := range roles {
		ips, ok, err := outputs.AgentIPs(r.OutputKey)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, srvErrors.NewAgentRoleOutputMissingError(r.Segment, r.OutputKey)
		}
		agentMap[r.Segment] = append(agentMap[r.Segment], ips...)
	}
	return agentMap, nil
}
