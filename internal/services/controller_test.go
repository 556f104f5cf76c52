package services_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cyperf-demos/pan-demo-setup/internal/models"
	"github.com/cyperf-demos/pan-demo-setup/internal/services"
	srvErrors "github.com/cyperf-demos/pan-demo-setup/pkg/errors"
	"github.com/cyperf-demos/pan-demo-setup/test/fakeclient"
)

var _ = Describe("Controller", func() {
	var (
		ctx  context.Context
		fake *fakeclient.Controller
		opts services.ControllerOptions
	)

	BeforeEach(func() {
		ctx = context.Background()
		fake = fakeclient.New()
		fake.Agents = []models.Agent{{ID: "agent-1", IP: "10.0.2.10"}}
		opts = services.ControllerOptions{
			Address:           "34.1.1.1",
			LicenseServer:     "10.0.1.20",
			PollInterval:      5 * time.Millisecond,
			RetryInterval:     5 * time.Millisecond,
			RetryMaxElapsed:   time.Second,
			ReadyTimeout:      time.Second,
			LicenseSettleWait: time.Millisecond,
		}
	})

	// Given a controller that is still booting
	// When we connect
	// Then we wait for it, attach the license server and load the agents
	It("should wait for readiness then attach and load agents", func() {
		fake.Unavailable("Ping", 3)

		c, err := services.NewController(ctx, fake, opts)

		Expect(err).NotTo(HaveOccurred())
		Expect(fake.CountCalls("Ping")).To(Equal(4))
		Expect(c.LicenseServers.State()).To(Equal(models.LicenseServerStateEstablished))
		Expect(c.Agents.Agents()).To(HaveKey("10.0.2.10"))

		calls := fake.Calls()
		Expect(indexOf(calls, "ListLicenseServers")).To(BeNumerically("<", indexOf(calls, "ListAgents")))
	})

	// Given a controller that never becomes ready
	// When the readiness timeout passes
	// Then ControllerUnreachableError is returned
	It("should give up when the controller never becomes ready", func() {
		fake.Unavailable("Ping", 1000)
		opts.ReadyTimeout = 50 * time.Millisecond

		_, err := services.NewController(ctx, fake, opts)

		Expect(srvErrors.IsControllerUnreachableError(err)).To(BeTrue())
		Expect(fake.CountCalls("ListLicenseServers")).To(BeZero())
	})

	// Given a license server that fails to connect
	// When we connect
	// Then the controller is still returned so the caller can detach what was created
	It("should return the controller along with a license error", func() {
		fake.LicenseStatus = models.LicenseConnectionError

		c, err := services.NewController(ctx, fake, opts)

		Expect(srvErrors.IsLicenseServerConnectError(err)).To(BeTrue())
		Expect(c).NotTo(BeNil())
		Expect(c.LicenseServers.Owned()).To(HaveLen(1))
	})
})
