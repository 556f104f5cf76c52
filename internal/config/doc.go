// Package config defines the configuration of pan-demo-setup.
//
// Configuration is organized into sections and uses code generation via
// optgen to create functional option helpers.
//
// # Configuration Structure
//
//	Configuration
//	├── Controller     - controller credentials, polling and retry timing
//	├── Terraform      - provisioning working directory and variables file
//	├── Orchestrator   - configuration bundle and agent role table
//	├── Journal        - run journal location
//	├── LogFormat      - Logging format
//	└── LogLevel       - Logging verbosity
//
// # Controller Configuration
//
//	┌───────────────────┬─────────────────────┬──────────────────────────────────────────┐
//	│ Field             │ Default             │ Description                              │
//	├───────────────────┼─────────────────────┼──────────────────────────────────────────┤
//	│ AdminUser         │ "admin"             │ Controller and license server user       │
//	│ AdminPassword     │ "CyPerf&Keysight#1" │ Controller and license server password   │
//	│ InteractiveEULA   │ false               │ Ask before accepting the EULA            │
//	│ PollInterval      │ 1s                  │ Async job polling interval               │
//	│ RetryInterval     │ 2s                  │ Wait between "not ready" retries         │
//	│ RetryMaxElapsed   │ 10m                 │ Give up retrying after this long (0=off) │
//	│ ReadyTimeout      │ 10m                 │ Wait for the controller to boot          │
//	│ LicenseSettleWait │ 5s                  │ Wait after removing a stuck license      │
//	└───────────────────┴─────────────────────┴──────────────────────────────────────────┘
//
// # Terraform Configuration
//
//	┌──────────┬────────────────────┬────────────────────────────────────────┐
//	│ Field    │ Default            │ Description                            │
//	├──────────┼────────────────────┼────────────────────────────────────────┤
//	│ Dir      │ "./terraform"      │ Terraform working directory            │
//	│ VarsFile │ "terraform.tfvars" │ Variables copied into Dir              │
//	│ ExecPath │ ""                 │ terraform binary, looked up in PATH    │
//	└──────────┴────────────────────┴────────────────────────────────────────┘
//
// # Orchestrator Configuration
//
// ConfigFile is the configuration bundle imported on deploy. AgentRoles binds
// each network segment of the bundle to the provisioning output listing its
// agents; the default table covers the four segments of the firewall demo.
//
// # Loading
//
// Load merges, by increasing precedence:
//
//  1. defaults from the struct tags
//  2. the YAML settings file passed with --settings
//  3. PAN_DEMO_* environment variables (PAN_DEMO_CONTROLLER_POLL_INTERVAL, ...)
//  4. command line flags that were set
//
// # Debug Logging
//
// DebugMap() returns a map suitable for structured logging. The admin
// password is tagged `debugmap:"sensitive"` and never shows up in it:
//
//	zap.S().Debugw("configuration loaded", "config", cfg.DebugMap())
package config
