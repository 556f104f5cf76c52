// Package orchestrator sequences the deploy and destroy workflows.
//
// The provisioning outputs are the only external input. They name the
// controller address (mdw_detail.public_ip), an optional license server
// (license_server) and one output per agent role listing the agents'
// private_ip.
//
// # Deploy
//
//	Apply ─► Outputs ─► NewController ─► ImportOne ─► Sessions.Create
//	                     (ready, license,                    │
//	                      agent table)                       ▼
//	                                     report URL ◄─ Agents.Assign(replace)
//
// Any error aborts the run; the infrastructure is left for inspection or a
// later destroy.
//
// # Destroy
//
//	Outputs ─┬─ controller and license server named ─► NewController
//	         │                                           ├─ Sessions.DeleteAll
//	         │                                           ├─ Configurations.DeleteAll
//	         │                                           └─ LicenseServers.Detach
//	         └─ otherwise: skip controller cleanup
//	                               ▼
//	                     Provisioner.Destroy (always)
//
// Cleanup failures are logged and the remaining steps still run, so destroy
// can be repeated against a partially cleaned controller.
//
// # Agent roles
//
// The agent map is built from a role table binding a segment name to an
// output key. A role whose output is missing fails the deploy with
// AgentRoleOutputMissingError.
//
// # Journal
//
// Each run gets a uuid. With a Journal the run, its controller and every
// resource it created are recorded. Journal errors are only logged.
package orchestrator
