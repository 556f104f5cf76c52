package services_test

import (
	"context"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cyperf-demos/pan-demo-setup/internal/models"
	"github.com/cyperf-demos/pan-demo-setup/internal/services"
	srvErrors "github.com/cyperf-demos/pan-demo-setup/pkg/errors"
	"github.com/cyperf-demos/pan-demo-setup/pkg/poller"
	"github.com/cyperf-demos/pan-demo-setup/test/fakeclient"
)

var _ = Describe("ConfigurationManager", func() {
	var (
		ctx     context.Context
		fake    *fakeclient.Controller
		manager *services.ConfigurationManager
	)

	BeforeEach(func() {
		ctx = context.Background()
		fake = fakeclient.New()
		fake.JobPolls = 2
		manager = services.NewConfigurationManager(
			fake,
			services.NewRetryGate(5*time.Millisecond, time.Second),
			poller.New(5*time.Millisecond),
		)
	})

	Context("Import", func() {
		BeforeEach(func() {
			fake.ImportResults["a.zip"] = []models.ConfigurationRecord{
				{ID: "c1", DisplayName: "A1", ConfigURL: "appsec-1"},
				{ID: "c2", DisplayName: "A2", ConfigURL: "appsec-2"},
			}
			fake.ImportResults["b.zip"] = []models.ConfigurationRecord{
				{ID: "c3", DisplayName: "B1", ConfigURL: "appsec-3"},
			}
		})

		// Given two bundles
		// When we import them
		// Then every job is submitted before any is polled
		// And the records come back in submission order
		It("should submit all imports before waiting and keep submission order", func() {
			configs, err := manager.Import(ctx, []string{"a.zip", "b.zip"})

			Expect(err).NotTo(HaveOccurred())
			Expect(configs).To(HaveLen(3))
			Expect(configs[0].ID).To(Equal("c1"))
			Expect(configs[1].ID).To(Equal("c2"))
			Expect(configs[2].ID).To(Equal("c3"))

			calls := fake.Calls()
			lastSubmit, firstPoll := -1, len(calls)
			for i, c := range calls {
				if strings.HasPrefix(c, "StartConfigImport") {
					lastSubmit = i
				}
				if strings.HasPrefix(c, "GetOperation") && i < firstPoll {
					firstPoll = i
				}
			}
			Expect(lastSubmit).To(BeNumerically("<", firstPoll))
		})

		// Given a bundle the controller fails to import
		// When we import it with a good one
		// Then the whole import fails with the server message
		It("should fail when one import job fails", func() {
			fake.ImportErrors["broken.zip"] = "invalid archive"

			_, err := manager.Import(ctx, []string{"a.zip", "broken.zip"})

			Expect(srvErrors.IsRemoteOperationError(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("invalid archive"))
		})

		// Given a controller still starting
		// When we import
		// Then the submission is retried
		It("should retry submission while the controller is not ready", func() {
			fake.Unavailable("StartConfigImport", 2)

			configs, err := manager.Import(ctx, []string{"b.zip"})

			Expect(err).NotTo(HaveOccurred())
			Expect(configs).To(HaveLen(1))
			Expect(fake.CountCalls("StartConfigImport:b.zip")).To(Equal(3))
		})

		// Given a controller that briefly stops answering while a job runs
		// When we import
		// Then the job poll is retried and the import completes
		It("should retry job polls while the controller is not ready", func() {
			fake.Unavailable("GetOperation", 1)

			configs, err := manager.Import(ctx, []string{"b.zip"})

			Expect(err).NotTo(HaveOccurred())
			Expect(configs).To(HaveLen(1))
		})

		It("should return the first configuration of a single import", func() {
			config, err := manager.ImportOne(ctx, "a.zip")

			Expect(err).NotTo(HaveOccurred())
			Expect(config).NotTo(BeNil())
			Expect(config.ID).To(Equal("c1"))
		})

		It("should return nil when a single import yields nothing", func() {
			config, err := manager.ImportOne(ctx, "empty.zip")

			Expect(err).NotTo(HaveOccurred())
			Expect(config).To(BeNil())
		})
	})

	Context("FindByName", func() {
		BeforeEach(func() {
			fake.Configurations = []models.ConfigurationRecord{
				{ID: "c1", DisplayName: "Palo Alto Firewall Demo", ConfigURL: "appsec-1"},
			}
		})

		It("should return the matching configuration", func() {
			config, err := manager.FindByName(ctx, "Palo Alto Firewall Demo")

			Expect(err).NotTo(HaveOccurred())
			Expect(config.ConfigURL).To(Equal("appsec-1"))
		})

		It("should return nil when nothing matches", func() {
			config, err := manager.FindByName(ctx, "missing")

			Expect(err).NotTo(HaveOccurred())
			Expect(config).To(BeNil())
		})
	})

	Context("Delete", func() {
		BeforeEach(func() {
			fake.Configurations = []models.ConfigurationRecord{
				{ID: "c1", ConfigURL: "appsec-1"},
				{ID: "builtin", ConfigURL: "appsec-builtin", Readonly: true},
				{ID: "c2", ConfigURL: "appsec-2"},
			}
		})

		// Given user and readonly configurations
		// When we delete all
		// Then readonly configurations survive
		It("should skip readonly configurations", func() {
			Expect(manager.DeleteAll(ctx)).To(Succeed())

			Expect(fake.ListedConfigurations()).To(ConsistOf(HaveField("ID", "builtin")))
			Expect(fake.CountCalls("DeleteConfiguration:builtin")).To(BeZero())
		})

		It("should treat a missing configuration as deleted", func() {
			Expect(manager.Delete(ctx, "gone", "c1")).To(Succeed())

			Expect(fake.ListedConfigurations()).To(HaveLen(2))
		})

		It("should return other delete errors", func() {
			fake.Fail("DeleteConfiguration", srvErrors.NewRemoteCallError("delete configuration", 403, "forbidden"))

			err := manager.Delete(ctx, "c1")

			Expect(srvErrors.IsRemoteOperationError(err)).To(BeTrue())
		})

		// Given a configuration the controller refuses to delete
		// When we delete all
		// Then the remaining configurations are still deleted and the failure is returned
		It("should keep deleting after a failure", func() {
			fake.Fail("DeleteConfiguration", srvErrors.NewRemoteCallError("delete configuration", 403, "forbidden"))

			err := manager.DeleteAll(ctx)

			Expect(srvErrors.IsRemoteOperationError(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("c1"))
			Expect(fake.CountCalls("DeleteConfiguration:c2")).To(Equal(1))
			Expect(fake.ListedConfigurations()).To(ConsistOf(HaveField("ID", "c1"), HaveField("ID", "builtin")))
		})
	})
})
