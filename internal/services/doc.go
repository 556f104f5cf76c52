// Package services implements the controller side of the demo setup: the
// managers that drive a test controller through its REST control plane.
//
// Every manager depends on a narrow capability interface from client.go, so
// tests can substitute an in-memory fake for the REST client.
//
// # Service Dependency Graph
//
//	Orchestrator
//	    │
//	    ▼
//	Controller (facade)
//	    ├── LicenseServerManager ──► LicenseServerClient, RetryGate, Poller
//	    ├── ConfigurationManager ──► ConfigurationClient, RetryGate, Poller
//	    ├── SessionManager ────────► SessionClient, RetryGate, ConfigurationManager, TrafficController
//	    ├── AgentAssignmentEngine ─► AgentClient, RetryGate
//	    └── TrafficController ─────► TestOperationsClient, RetryGate, Poller
//
// # RetryGate
//
// Right after the controller boots its API answers "service unavailable" for
// a while. RetryGate re-runs a call every interval while that is the case and
// returns any other error immediately. Once the elapsed bound is reached the
// gate gives up with ControllerUnreachableError. A zero bound retries forever.
//
// # LicenseServerManager
//
// State Machine:
//
//	┌────────┐    ┌─────────────┐    ┌─────────────┐
//	│ Absent │───►│ Configuring │───►│ Established │
//	└────────┘    └─────────────┘    └─────────────┘
//	    ▲  │             │                 │
//	    │  │             ▼                 │
//	    │  │        ┌────────┐             │
//	    │  │        │ Failed │             │
//	    │  │        └────────┘             │
//	    │  └─────────────────────────────► │ (already connected)
//	    └──────────────────────────────────┘
//	                 (detach)
//
// Attach lists the license servers known to the controller:
//   - a server with the target host name and status ESTABLISHED is reused
//   - a server with the target host name in any other status is deleted and,
//     after a short settle wait, a new one is created
//   - otherwise a new one is created and its connection status is polled
//     until it leaves IN_PROGRESS
//
// Every server seen as established or created by this instance is recorded
// as owned, and Detach removes only those. A target that is empty or equal
// to the controller address disables the manager.
//
// # ConfigurationManager
//
// Import submits all import jobs first and then waits for them together, so
// the controller processes them concurrently. The records of every job are
// returned in submission order. DeleteAll never touches readonly records.
//
// # SessionManager
//
// Sessions with traffic running cannot be deleted, so Delete stops the test
// first when its status is anything but STOPPED.
//
// # AgentAssignmentEngine
//
// Usage:
//
//	err := engine.Assign(ctx, session, models.AgentMap{
//	    "PAN-VM-FW-Client": {"10.0.2.10", "10.0.2.11"},
//	}, false)
//
// Segments not named in the map are left untouched and not sent back.
//
// # Thread Safety
//
// LicenseServerManager guards its state with a mutex. The other managers are
// meant to be used by a single orchestration run.
package services
