package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/cyperf-demos/pan-demo-setup/internal/models"
	srvErrors "github.com/cyperf-demos/pan-demo-setup/pkg/errors"
)

// ListOption narrows a run listing.
type ListOption func(sq.SelectBuilder) sq.SelectBuilder

func ByKind(kinds ...models.RunKind) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(kinds) == 0 {
			return b
		}
		values := make([]string, 0, len(kinds))
		for _, k := range kinds {
			values = append(values, string(k))
		}
		return b.Where(sq.Eq{"kind": values})
	}
}

func ByStatus(statuses ...models.RunStatus) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(statuses) == 0 {
			return b
		}
		values := make([]string, 0, len(statuses))
		for _, s := range statuses {
			values = append(values, string(s))
		}
		return b.Where(sq.Eq{"status": values})
	}
}

func ByController(address string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"controller": address})
	}
}

func WithLimit(limit uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if limit == 0 {
			return b
		}
		return b.Limit(limit)
	}
}

// RunStore records deploy and destroy runs with the controller resources they created.
type RunStore struct {
	db *sql.DB
}

func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

func (s *RunStore) Create(ctx context.Context, run models.Run) error {
	if run.Status == "" {
		run.Status = models.RunStatusRunning
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, queryInsertRun,
		run.ID, string(run.Kind), run.Controller, string(run.Status), run.Error, run.StartedAt.UTC())
	return err
}

// SetController records the controller address once the run learns it.
func (s *RunStore) SetController(ctx context.Context, id, address string) error {
	res, err := s.db.ExecContext(ctx, querySetRunController, address, id)
	if err != nil {
		return err
	}
	return mustAffect(res, id)
}

func (s *RunStore) Finish(ctx context.Context, id string, status models.RunStatus, runErr error) error {
	var msg string
	if runErr != nil {
		msg = runErr.Error()
	}
	res, err := s.db.ExecContext(ctx, queryFinishRun, string(status), msg, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return mustAffect(res, id)
}

func (s *RunStore) AddResource(ctx context.Context, r models.RunResource) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, queryInsertRunResource,
		r.RunID, string(r.Kind), r.ResourceID, r.URL, r.CreatedAt.UTC())
	return err
}

func (s *RunStore) Get(ctx context.Context, id string) (*models.Run, error) {
	query, args, err := runColumns().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	run, err := scanRun(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewResourceNotFoundError("run", id)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// List returns runs newest first.
func (s *RunStore) List(ctx context.Context, opts ...ListOption) ([]models.Run, error) {
	builder := runColumns().OrderBy("started_at DESC", "id")
	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Resources returns the resources recorded for runID in creation order.
func (s *RunStore) Resources(ctx context.Context, runID string) ([]models.RunResource, error) {
	query, args, err := sq.Select("run_id", "kind", "resource_id", "url", "created_at").
		From("run_resources").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("created_at", "resource_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []models.RunResource
	for rows.Next() {
		var (
			r    models.RunResource
			kind string
		)
		if err := rows.Scan(&r.RunID, &kind, &r.ResourceID, &r.URL, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Kind = models.RunResourceKind(kind)
		resources = append(resources, r)
	}
	return resources, rows.Err()
}

func runColumns() sq.SelectBuilder {
	return sq.Select("id", "kind", "controller", "status", "error", "started_at", "finished_at").From("runs")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.Run, error) {
	var (
		run                  models.Run
		kind, status         string
		controller, runError sql.NullString
		finished             sql.NullTime
	)
	if err := row.Scan(&run.ID, &kind, &controller, &status, &runError, &run.StartedAt, &finished); err != nil {
		return nil, err
	}
	run.Kind = models.RunKind(kind)
	run.Status = models.RunStatus(status)
	run.Controller = controller.String
	run.Error = runError.String
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return &run, nil
}

func mustAffect(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return srvErrors.NewResourceNotFoundError("run", id)
	}
	return nil
}
