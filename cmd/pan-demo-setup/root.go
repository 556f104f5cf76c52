package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/jzelinskie/cobrautil/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cyperf-demos/pan-demo-setup/internal/config"
	"github.com/cyperf-demos/pan-demo-setup/internal/logger"
	"github.com/cyperf-demos/pan-demo-setup/internal/models"
	"github.com/cyperf-demos/pan-demo-setup/internal/orchestrator"
	"github.com/cyperf-demos/pan-demo-setup/internal/provision"
	"github.com/cyperf-demos/pan-demo-setup/internal/services"
	"github.com/cyperf-demos/pan-demo-setup/internal/store"
	"github.com/cyperf-demos/pan-demo-setup/pkg/controller"
)

const historyLimit = 20

// workflow is the part of the orchestrator the command drives.
type workflow interface {
	Deploy(ctx context.Context, opts orchestrator.DeployOptions) error
	Destroy(ctx context.Context) error
}

type rootFlags struct {
	deploy   bool
	destroy  bool
	history  bool
	settings string
}

func NewRootCommand() *cobra.Command {
	var f rootFlags
	defaults := config.NewConfigurationWithOptionsAndDefaults()

	cmd := &cobra.Command{
		Use:           "pan-demo-setup",
		Short:         "Deploy and destroy the Palo Alto firewall CyPerf demo",
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE:       cobrautil.SyncViperPreRunE(config.EnvPrefix),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&f.deploy, "deploy", false, "provision the infrastructure and prepare the controller")
	flags.BoolVar(&f.destroy, "destroy", false, "clean the controller and destroy the infrastructure")
	flags.BoolVar(&f.history, "history", false, "list recent runs from the journal")
	flags.StringVar(&f.settings, "settings", "", "optional YAML settings file")
	flags.String("config-file", defaults.Orchestrator.ConfigFile, "configuration bundle to import")
	flags.Bool("interactive-eula", defaults.Controller.InteractiveEULA, "prompt for the controller EULA instead of reading "+controller.EULAEnvVar)
	flags.String("log-level", defaults.LogLevel, "log level (debug, info, warn, error)")
	flags.String("log-format", defaults.LogFormat, "log format (console, json)")
	flags.String("terraform-dir", defaults.Terraform.Dir, "terraform working directory")
	flags.String("journal", defaults.Journal.Path, "run journal path, empty to disable")

	// --deploy --destroy runs a full cycle: deploy, then destroy.
	cmd.MarkFlagsMutuallyExclusive("deploy", "history")
	cmd.MarkFlagsMutuallyExclusive("destroy", "history")
	cmd.MarkFlagsOneRequired("deploy", "destroy", "history")

	return cmd
}

func run(cmd *cobra.Command, f rootFlags) error {
	cfg, err := config.Load(f.settings, cmd.Flags())
	if err != nil {
		return err
	}

	undo, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer undo()

	log := zap.S().Named("main")
	log.Debugw("configuration loaded", "config", cfg.DebugMap())

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	journal, err := openJournal(ctx, cfg.Journal)
	if err != nil {
		if f.history {
			return err
		}
		log.Warnw("run journal unavailable", "path", cfg.Journal.Path, "error", err)
	}
	if journal != nil {
		defer journal.Close()
	}

	if f.history {
		if journal == nil {
			return errors.New("the run journal is disabled")
		}
		return printHistory(ctx, cmd.OutOrStdout(), journal)
	}

	tf, err := provision.New(cfg.Terraform)
	if err != nil {
		return err
	}

	opts := []orchestrator.Option{orchestrator.WithOutput(cmd.OutOrStdout())}
	if journal != nil {
		opts = append(opts, orchestrator.WithJournal(journal.Runs()))
	}
	o := orchestrator.New(tf, clientFactory(cfg.Controller), *cfg, opts...)

	if err := runActions(ctx, o, f, cfg.Orchestrator.ConfigFile); err != nil {
		log.Errorw("run failed", "error", err)
		return err
	}
	return nil
}

// runActions deploys and then destroys, as selected. A failed deploy skips the destroy.
func runActions(ctx context.Context, w workflow, f rootFlags, configFile string) error {
	if f.deploy {
		if err := w.Deploy(ctx, orchestrator.DeployOptions{ConfigFile: configFile}); err != nil {
			return err
		}
	}
	if f.destroy {
		return w.Destroy(ctx)
	}
	return nil
}

func clientFactory(cfg config.Controller) orchestrator.ClientFactory {
	return func(address string) (services.RemoteClient, error) {
		c, err := controller.NewClient(address,
			controller.WithCredentials(cfg.AdminUser, cfg.AdminPassword),
			controller.WithEULA(cfg.InteractiveEULA, os.Stdin, os.Stdout),
		)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

func openJournal(ctx context.Context, cfg config.Journal) (*store.Store, error) {
	if cfg.Path == "" {
		return nil, nil
	}
	return store.Open(ctx, cfg.Path)
}

func printHistory(ctx context.Context, out io.Writer, s *store.Store) error {
	runs, err := s.Runs().List(ctx, store.WithLimit(historyLimit))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tKIND\tSTATUS\tCONTROLLER\tSTARTED\tDURATION\tRESOURCES\tERROR")
	for _, r := range runs {
		resources, err := s.Runs().Resources(ctx, r.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.Kind, r.Status, r.Controller,
			r.StartedAt.Local().Format(time.DateTime), duration(r), len(resources), r.Error)
	}
	return w.Flush()
}

func duration(r models.Run) string {
	if r.FinishedAt == nil {
		return "-"
	}
	return r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
}
