// Package store implements the run journal of pan-demo-setup.
//
// The journal is a DuckDB file recording every deploy and destroy run and the
// controller resources each run created. It is informational: the workflows
// never read it back to decide what to do, and a failing journal write is
// logged without aborting the run.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────┐
//	│                  Store (facade)                 │
//	├─────────────────────────────────────────────────┤
//	│                    RunStore                     │
//	│           ▼                        ▼            │
//	│         runs                 run_resources      │
//	└─────────────────────────────────────────────────┘
//
// # Tables
//
// Created by migrations (internal/store/migrations/sql/):
//
//	┌────────────────────┬─────────────────────────────────────────────┐
//	│  Table             │  Purpose                                    │
//	├────────────────────┼─────────────────────────────────────────────┤
//	│  runs              │  One row per deploy/destroy invocation      │
//	│  run_resources     │  License servers, configs, sessions created │
//	│  schema_migrations │  Migration version tracking                 │
//	└────────────────────┴─────────────────────────────────────────────┘
//
// # Initialization Flow
//
//	Open(ctx, path)
//	    ├── NewDB(path)       → sql.Open("duckdb", path)
//	    ├── migrations.Run()  → Creates runs, run_resources
//	    └── NewStore(db)
//
// # RunStore
//
// Methods:
//   - Create(ctx, run): inserts a run, status defaults to running
//   - SetController(ctx, id, address)
//   - Finish(ctx, id, status, err): stamps finished_at and the error text
//   - AddResource(ctx, resource)
//   - Get(ctx, id): ResourceNotFoundError when the run is unknown
//   - List(ctx, opts...): newest first
//   - Resources(ctx, runID): creation order
//
// List uses the functional options pattern. Each ListOption modifies the
// squirrel select builder:
//
//	runs, err := s.Runs().List(ctx,
//	    store.ByKind(models.RunKindDeploy),
//	    store.ByStatus(models.RunStatusFailed),
//	    store.WithLimit(10),
//	)
//
// # Concurrency
//
// DuckDB allows one writer per process, so NewDB caps the pool at a single
// connection. Statements from concurrent goroutines are serialized by
// database/sql.
package store
