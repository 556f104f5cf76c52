/*
Package e2e runs the deploy and destroy workflows end to end: the orchestrator
drives the real REST client against an in-process controller simulator.

# Package Structure

	test/e2e/
	├── doc.go             This file
	├── e2e_suite_test.go  Ginkgo runner, logger setup, EULA environment
	├── workflow_test.go   Deploy, destroy and re-entrant destroy specs
	└── infra/
	    └── infra.go       Topology: provisioning stand-in backed by the simulator

# Topology

Topology implements orchestrator.Provisioner:

	Apply    ─► start simulator (503 for BootRequests requests, agents registered)
	Outputs  ─► mdw_detail.public_ip = simulator URL, license_server, agent roles
	Destroy  ─► stop simulator; later Outputs are empty

Specs keep a handle on the simulator obtained after Apply so they can inspect
its state after Destroy.

# Running

	go test ./test/e2e/...
*/
package e2e
