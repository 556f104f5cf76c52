// Package provision stands up and tears down the demo infrastructure with
// Terraform.
package provision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/hashicorp/terraform-exec/tfexec"
	"go.uber.org/zap"

	"github.com/cyperf-demos/pan-demo-setup/internal/config"
	"github.com/cyperf-demos/pan-demo-setup/internal/models"
)

// Runner is the subset of tfexec.Terraform used here.
type Runner interface {
	Init(ctx context.Context, opts ...tfexec.InitOption) error
	Apply(ctx context.Context, opts ...tfexec.ApplyOption) error
	Output(ctx context.Context, opts ...tfexec.OutputOption) (map[string]tfexec.OutputMeta, error)
	Destroy(ctx context.Context, opts ...tfexec.DestroyOption) error
}

type Option func(*Terraform)

// WithRunner replaces the terraform binary.
func WithRunner(r Runner) Option {
	return func(t *Terraform) {
		t.runner = r
	}
}

// WithLocalStateDir sets the directory holding a stray local terraform.tfstate
// removed on destroy. It defaults to the current directory.
func WithLocalStateDir(dir string) Option {
	return func(t *Terraform) {
		t.localStateDir = dir
	}
}

type Terraform struct {
	dir           string
	varsFile      string
	localStateDir string
	runner        Runner
}

func New(cfg config.Terraform, opts ...Option) (*Terraform, error) {
	t := &Terraform{
		dir:           cfg.Dir,
		varsFile:      cfg.VarsFile,
		localStateDir: ".",
	}
	for _, o := range opts {
		o(t)
	}
	if t.runner != nil {
		return t, nil
	}

	execPath := cfg.ExecPath
	if execPath == "" {
		p, err := exec.LookPath("terraform")
		if err != nil {
			return nil, fmt.Errorf("terraform binary not found: %w", err)
		}
		execPath = p
	}
	tf, err := tfexec.NewTerraform(cfg.Dir, execPath)
	if err != nil {
		return nil, fmt.Errorf("failed to set up terraform: %w", err)
	}
	tf.SetStdout(os.Stdout)
	tf.SetStderr(os.Stderr)
	t.runner = tf
	return t, nil
}

// Apply copies the variables file into the working directory, initializes it
// and applies the configuration.
func (t *Terraform) Apply(ctx context.Context) error {
	if err := t.init(ctx); err != nil {
		return err
	}
	zap.S().Named("terraform").Infow("applying", "dir", t.dir)
	if err := t.runner.Apply(ctx); err != nil {
		return fmt.Errorf("terraform apply failed: %w", err)
	}
	return nil
}

func (t *Terraform) Outputs(ctx context.Context) (models.Outputs, error) {
	metas, err := t.runner.Output(ctx)
	if err != nil {
		return nil, fmt.Errorf("terraform output failed: %w", err)
	}
	outputs := make(models.Outputs, len(metas))
	for k, m := range metas {
		outputs[k] = m.Value
	}
	return outputs, nil
}

// Destroy tears the infrastructure down and removes the local state. The
// variables file is copied again first since credentials may have changed.
func (t *Terraform) Destroy(ctx context.Context) error {
	if err := t.init(ctx); err != nil {
		return err
	}
	zap.S().Named("terraform").Infow("destroying", "dir", t.dir)
	if err := t.runner.Destroy(ctx); err != nil {
		return fmt.Errorf("terraform destroy failed: %w", err)
	}
	return t.cleanup()
}

func (t *Terraform) init(ctx context.Context) error {
	if err := copyFile(t.varsFile, filepath.Join(t.dir, filepath.Base(t.varsFile))); err != nil {
		return fmt.Errorf("failed to copy %s into %s: %w", t.varsFile, t.dir, err)
	}
	if err := t.runner.Init(ctx); err != nil {
		return fmt.Errorf("terraform init failed: %w", err)
	}
	return nil
}

func (t *Terraform) cleanup() error {
	files := []string{
		filepath.Join(t.dir, filepath.Base(t.varsFile)),
		filepath.Join(t.dir, "terraform.tfstate"),
		filepath.Join(t.dir, "terraform.tfstate.backup"),
		filepath.Join(t.dir, ".terraform.lock.hcl"),
		filepath.Join(t.localStateDir, "terraform.tfstate"),
	}
	for _, f := range files {
		if err := os.Remove(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", f, err)
		}
	}
	if err := os.RemoveAll(filepath.Join(t.dir, ".terraform")); err != nil {
		return fmt.Errorf("failed to remove terraform plugin directory: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	if a, b := filepath.Clean(src), filepath.Clean(dst); a == b {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
