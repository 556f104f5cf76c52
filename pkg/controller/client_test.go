package controller_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cyperf-demos/pan-demo-setup/internal/models"
	"github.com/cyperf-demos/pan-demo-setup/internal/services"
	"github.com/cyperf-demos/pan-demo-setup/pkg/controller"
	srvErrors "github.com/cyperf-demos/pan-demo-setup/pkg/errors"
	"github.com/cyperf-demos/pan-demo-setup/test/simulator"
)

var _ services.RemoteClient = (*controller.Client)(nil)

const sessionConfig = `{
  "NetworkProfiles": [{
    "id": "1",
    "IPNetworkSegment": [
      {"id": "1", "name": "PAN-VM-FW-Client"},
      {"id": "2", "name": "PAN-VM-FW-Server", "agentAssignments": {"ByID": [{"agentId": "a0", "id": "a0"}], "ByTag": ["srv"]}}
    ]
  }]
}`

func awaitJob(ctx context.Context, client *controller.Client, job models.AsyncJob) models.AsyncJob {
	var polled models.AsyncJob
	Eventually(func(g Gomega) {
		var err error
		polled, err = client.GetOperation(ctx, job)
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(polled.Done()).To(BeTrue())
	}).WithTimeout(2 * time.Second).WithPolling(10 * time.Millisecond).Should(Succeed())
	return polled
}

var _ = Describe("Client", func() {
	var (
		ctx    context.Context
		sim    *simulator.Simulator
		client *controller.Client
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		sim, err = simulator.New()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(sim.Close)

		Expect(os.Setenv(controller.EULAEnvVar, "true")).To(Succeed())
		DeferCleanup(os.Unsetenv, controller.EULAEnvVar)

		client, err = controller.NewClient(sim.URL(), controller.WithCredentials(simulator.User, simulator.Password))
		Expect(err).NotTo(HaveOccurred())
	})

	Context("authentication", func() {
		// Given an unaccepted EULA and CYPERF_EULA_ACCEPTED=true
		// When we ping
		// Then the EULA is accepted and a token is issued
		It("should accept the EULA from the environment and log in", func() {
			Expect(client.Ping(ctx)).To(Succeed())

			Expect(sim.EULAAccepted()).To(BeTrue())
			Expect(sim.TokensIssued()).To(Equal(1))
		})

		It("should reuse the token across calls", func() {
			_, err := client.ListAgents(ctx)
			Expect(err).NotTo(HaveOccurred())
			_, err = client.ListSessions(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(sim.TokensIssued()).To(Equal(1))
		})

		It("should refuse to continue when the EULA is not accepted", func() {
			Expect(os.Setenv(controller.EULAEnvVar, "false")).To(Succeed())

			err := client.Ping(ctx)

			Expect(errors.Is(err, controller.ErrEULANotAccepted)).To(BeTrue())
			Expect(sim.EULAAccepted()).To(BeFalse())
		})

		It("should ask the user when interactive", func() {
			Expect(os.Unsetenv(controller.EULAEnvVar)).To(Succeed())
			var out strings.Builder
			interactive, err := controller.NewClient(sim.URL(),
				controller.WithCredentials(simulator.User, simulator.Password),
				controller.WithEULA(true, strings.NewReader("yes\n"), &out),
			)
			Expect(err).NotTo(HaveOccurred())

			Expect(interactive.Ping(ctx)).To(Succeed())

			Expect(out.String()).To(ContainSubstring("EULA"))
			Expect(sim.EULAAccepted()).To(BeTrue())
		})

		It("should report wrong credentials as a remote error", func() {
			bad, err := controller.NewClient(sim.URL(), controller.WithCredentials("admin", "wrong"))
			Expect(err).NotTo(HaveOccurred())

			err = bad.Ping(ctx)

			Expect(srvErrors.IsRemoteOperationError(err)).To(BeTrue())
			Expect(srvErrors.IsServiceUnavailableError(err)).To(BeFalse())
		})
	})

	Context("status mapping", func() {
		// Given a controller that is still starting
		// When we call it
		// Then the call fails with ServiceUnavailableError until it is up
		It("should report 503 as service unavailable", func() {
			sim.Unavailable(1)

			err := client.Ping(ctx)

			Expect(srvErrors.IsServiceUnavailableError(err)).To(BeTrue())
			Expect(client.Ping(ctx)).To(Succeed())
		})

		It("should report connection errors as service unavailable", func() {
			down, err := controller.NewClient("http://127.0.0.1:1", controller.WithCredentials(simulator.User, simulator.Password))
			Expect(err).NotTo(HaveOccurred())

			Expect(srvErrors.IsServiceUnavailableError(down.Ping(ctx))).To(BeTrue())
		})

		It("should report 404 as not found", func() {
			err := client.DeleteSession(ctx, "missing")

			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("missing"))
		})
	})

	Context("license servers", func() {
		It("should create, get, list and delete license servers", func() {
			created, err := client.CreateLicenseServers(ctx, []models.LicenseServerSpec{{
				HostName: "10.0.1.20", TrustNewCertificate: true, User: "admin", Password: "secret",
			}})
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(HaveLen(1))
			Expect(created[0].ID).NotTo(BeEmpty())
			Expect(created[0].ConnectionStatus).To(Equal(models.LicenseConnectionInProgress))
			Expect(sim.LicenseServers()[0].TrustCertificate).To(BeTrue())

			got, err := client.GetLicenseServer(ctx, created[0].ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ConnectionStatus).To(Equal(models.LicenseConnectionEstablished))

			list, err := client.ListLicenseServers(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(ConsistOf(HaveField("HostName", "10.0.1.20")))

			Expect(client.DeleteLicenseServer(ctx, created[0].ID)).To(Succeed())
			Expect(sim.LicenseServers()).To(BeEmpty())
			Expect(srvErrors.IsResourceNotFoundError(client.DeleteLicenseServer(ctx, created[0].ID))).To(BeTrue())
		})
	})

	Context("configurations", func() {
		var bundle string

		BeforeEach(func() {
			bundle = filepath.Join(GinkgoT().TempDir(), "Palo-Alto-Firewall-Demo.zip")
			Expect(os.WriteFile(bundle, []byte("PK\x03\x04"), 0o600)).To(Succeed())
		})

		// Given a configuration bundle on disk
		// When we import it and poll the job
		// Then the job result lists the imported configuration
		It("should upload a bundle and report the imported configuration", func() {
			sim.SetJobPolls(2)

			job, err := client.StartConfigImport(ctx, bundle)
			Expect(err).NotTo(HaveOccurred())
			Expect(job.Status).To(Equal(models.JobStatusInProgress))
			Expect(job.URL).NotTo(BeEmpty())

			done := awaitJob(ctx, client, job)
			Expect(done.Status).To(Equal(models.JobStatusComplete))

			var records []models.ConfigurationRecord
			Expect(json.Unmarshal(done.Result, &records)).To(Succeed())
			Expect(records).To(HaveLen(1))
			Expect(records[0].ID).NotTo(BeEmpty())
			Expect(records[0].ConfigURL).To(HavePrefix("appsec-"))

			found, err := client.ListConfigurations(ctx, models.ByDisplayName("Palo-Alto-Firewall-Demo"))
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(HaveLen(1))
			Expect(found[0].ID).To(Equal(records[0].ID))
		})

		It("should fail locally for a missing bundle", func() {
			_, err := client.StartConfigImport(ctx, filepath.Join(GinkgoT().TempDir(), "nope.zip"))

			Expect(err).To(HaveOccurred())
			Expect(srvErrors.IsServiceUnavailableError(err)).To(BeFalse())
		})

		It("should list with and without a filter and delete", func() {
			sim.AddConfiguration(simulator.Configuration{ID: 7, DisplayName: "a", ConfigURL: "appsec-7"})
			sim.AddConfiguration(simulator.Configuration{ID: 8, DisplayName: "b", ConfigURL: "appsec-8", Readonly: true})

			all, err := client.ListConfigurations(ctx, models.ConfigurationFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))
			Expect(all[1].Readonly).To(BeTrue())

			Expect(client.DeleteConfiguration(ctx, "7")).To(Succeed())
			Expect(sim.Configurations()).To(ConsistOf(HaveField("ID", 8)))
		})
	})

	Context("sessions", func() {
		var session models.Session

		BeforeEach(func() {
			sessions, err := client.CreateSessions(ctx, []string{"appsec-1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(sessions).To(HaveLen(1))
			session = sessions[0]
		})

		// Given a session with traffic started
		// When we delete it without stopping
		// Then the controller rejects it, and accepts it once traffic is stopped
		It("should run traffic operations and delete stopped sessions", func() {
			job, err := client.StartTraffic(ctx, session.ID)
			Expect(err).NotTo(HaveOccurred())
			awaitJob(ctx, client, job)

			status, err := client.GetTestStatus(ctx, session.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(models.TestStatusStarted))

			err = client.DeleteSession(ctx, session.ID)
			Expect(srvErrors.IsRemoteOperationError(err)).To(BeTrue())

			job, err = client.StopTraffic(ctx, session.ID)
			Expect(err).NotTo(HaveOccurred())
			awaitJob(ctx, client, job)

			Expect(client.DeleteSession(ctx, session.ID)).To(Succeed())
			Expect(sim.Sessions()).To(BeEmpty())
		})

		It("should read the session configuration and update one segment", func() {
			sim.SetSessionConfig(session.ID, sessionConfig)

			cfg, err := client.GetSessionConfig(ctx, session.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.NetworkProfiles).To(HaveLen(1))
			segments := cfg.NetworkProfiles[0].IPNetworkSegments
			Expect(segments).To(HaveLen(2))
			Expect(segments[0].AgentAssignments).To(BeNil())
			Expect(segments[1].AgentAssignments.ByTag).To(Equal([]string{"srv"}))

			segment := segments[0]
			segment.AgentAssignments = &models.AgentAssignments{
				ByID:  []models.AgentAssignmentDetails{models.NewAgentAssignmentDetails("a1")},
				ByTag: []string{},
			}
			Expect(client.UpdateNetworkSegment(ctx, session.ID, "1", segment)).To(Succeed())

			updates := sim.Updates()
			Expect(updates).To(HaveLen(1))
			Expect(updates[0].SessionID).To(Equal(session.ID))
			Expect(updates[0].ProfileID).To(Equal("1"))
			Expect(updates[0].SegmentID).To(Equal("1"))
			Expect(updates[0].Body).To(HaveKeyWithValue("agentAssignments", HaveKeyWithValue("ByID",
				ConsistOf(HaveKeyWithValue("agentId", "a1")))))
		})
	})

	Context("with the services layer", func() {
		// Given a booting controller with agents
		// When the controller facade connects through the REST client
		// Then it waits, attaches the license server and loads the agents
		It("should bring up a controller end to end", func() {
			sim.AddAgent("agent-1", "10.0.2.10")
			sim.Unavailable(2)

			c, err := services.NewController(ctx, client, services.ControllerOptions{
				Address:           "127.0.0.1",
				LicenseServer:     "10.0.1.20",
				LicenseUser:       "admin",
				LicensePassword:   "secret",
				PollInterval:      10 * time.Millisecond,
				RetryInterval:     10 * time.Millisecond,
				RetryMaxElapsed:   2 * time.Second,
				ReadyTimeout:      2 * time.Second,
				LicenseSettleWait: time.Millisecond,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(c.Agents.Agents()).To(HaveKey("10.0.2.10"))
			Expect(sim.LicenseServers()).To(ConsistOf(HaveField("ConnectionStatus", "ESTABLISHED")))

			Expect(c.LicenseServers.Detach(ctx)).To(Succeed())
			Expect(sim.LicenseServers()).To(BeEmpty())
		})
	})
})
