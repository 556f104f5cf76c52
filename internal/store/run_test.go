package store_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cyperf-demos/pan-demo-setup/internal/models"
	"github.com/cyperf-demos/pan-demo-setup/internal/store"
	"github.com/cyperf-demos/pan-demo-setup/internal/store/migrations"
	srvErrors "github.com/cyperf-demos/pan-demo-setup/pkg/errors"
)

var _ = Describe("RunStore", func() {
	var (
		ctx context.Context
		s   *store.Store
		db  *sql.DB
		t0  time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())

		err = migrations.Run(ctx, db)
		Expect(err).NotTo(HaveOccurred())

		s = store.NewStore(db)
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Context("Create and Get", func() {
		// Given an empty journal
		// When we look up a run
		// Then it should return ResourceNotFoundError
		It("should return ResourceNotFoundError for an unknown run", func() {
			_, err := s.Runs().Get(ctx, "missing")

			Expect(err).To(HaveOccurred())
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})

		// Given a run created without status
		// When we read it back
		// Then it should be running and unfinished
		It("should default a new run to running", func() {
			// Arrange
			err := s.Runs().Create(ctx, models.Run{ID: "run-1", Kind: models.RunKindDeploy, StartedAt: t0})
			Expect(err).NotTo(HaveOccurred())

			// Act
			run, err := s.Runs().Get(ctx, "run-1")

			// Assert
			Expect(err).NotTo(HaveOccurred())
			Expect(run.Kind).To(Equal(models.RunKindDeploy))
			Expect(run.Status).To(Equal(models.RunStatusRunning))
			Expect(run.StartedAt.Equal(t0)).To(BeTrue())
			Expect(run.FinishedAt).To(BeNil())
			Expect(run.Controller).To(BeEmpty())
		})

		It("should reject a duplicate run id", func() {
			Expect(s.Runs().Create(ctx, models.Run{ID: "run-1", Kind: models.RunKindDeploy})).To(Succeed())
			Expect(s.Runs().Create(ctx, models.Run{ID: "run-1", Kind: models.RunKindDestroy})).NotTo(Succeed())
		})
	})

	Context("SetController and Finish", func() {
		BeforeEach(func() {
			Expect(s.Runs().Create(ctx, models.Run{ID: "run-1", Kind: models.RunKindDeploy, StartedAt: t0})).To(Succeed())
		})

		It("should record the controller address", func() {
			Expect(s.Runs().SetController(ctx, "run-1", "10.0.0.5")).To(Succeed())

			run, err := s.Runs().Get(ctx, "run-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(run.Controller).To(Equal("10.0.0.5"))
		})

		// Given a running run
		// When it finishes with an error
		// Then the status, error text and finish time should be stored
		It("should store the failure", func() {
			// Act
			err := s.Runs().Finish(ctx, "run-1", models.RunStatusFailed, errors.New("license server unreachable"))
			Expect(err).NotTo(HaveOccurred())

			// Assert
			run, err := s.Runs().Get(ctx, "run-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(run.Status).To(Equal(models.RunStatusFailed))
			Expect(run.Error).To(Equal("license server unreachable"))
			Expect(run.FinishedAt).NotTo(BeNil())
		})

		It("should store success without error text", func() {
			Expect(s.Runs().Finish(ctx, "run-1", models.RunStatusSucceeded, nil)).To(Succeed())

			run, err := s.Runs().Get(ctx, "run-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(run.Status).To(Equal(models.RunStatusSucceeded))
			Expect(run.Error).To(BeEmpty())
		})

		It("should return ResourceNotFoundError when finishing an unknown run", func() {
			err := s.Runs().Finish(ctx, "other", models.RunStatusSucceeded, nil)
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})
	})

	Context("List", func() {
		BeforeEach(func() {
			runs := []models.Run{
				{ID: "a", Kind: models.RunKindDeploy, Status: models.RunStatusSucceeded, Controller: "10.0.0.5", StartedAt: t0},
				{ID: "b", Kind: models.RunKindDestroy, Status: models.RunStatusFailed, Controller: "10.0.0.5", StartedAt: t0.Add(time.Hour)},
				{ID: "c", Kind: models.RunKindDeploy, Status: models.RunStatusFailed, Controller: "10.0.0.9", StartedAt: t0.Add(2 * time.Hour)},
			}
			for _, r := range runs {
				Expect(s.Runs().Create(ctx, r)).To(Succeed())
			}
		})

		It("should list runs newest first", func() {
			runs, err := s.Runs().List(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(runIDs(runs)).To(Equal([]string{"c", "b", "a"}))
		})

		DescribeTable("should filter runs",
			func(opts []store.ListOption, expected []string) {
				runs, err := s.Runs().List(ctx, opts...)

				Expect(err).NotTo(HaveOccurred())
				Expect(runIDs(runs)).To(Equal(expected))
			},
			Entry("by kind", []store.ListOption{store.ByKind(models.RunKindDeploy)}, []string{"c", "a"}),
			Entry("by status", []store.ListOption{store.ByStatus(models.RunStatusFailed)}, []string{"c", "b"}),
			Entry("by controller", []store.ListOption{store.ByController("10.0.0.5")}, []string{"b", "a"}),
			Entry("by kind and status", []store.ListOption{store.ByKind(models.RunKindDeploy), store.ByStatus(models.RunStatusFailed)}, []string{"c"}),
			Entry("with limit", []store.ListOption{store.WithLimit(2)}, []string{"c", "b"}),
			Entry("with zero limit", []store.ListOption{store.WithLimit(0)}, []string{"c", "b", "a"}),
		)
	})

	Context("Resources", func() {
		// Given resources recorded for two runs
		// When we list the resources of one run
		// Then only its resources are returned in creation order
		It("should return the resources of a run in creation order", func() {
			// Arrange
			Expect(s.Runs().Create(ctx, models.Run{ID: "run-1", Kind: models.RunKindDeploy})).To(Succeed())
			Expect(s.Runs().Create(ctx, models.Run{ID: "run-2", Kind: models.RunKindDeploy})).To(Succeed())

			for i, kind := range []models.RunResourceKind{
				models.RunResourceLicenseServer,
				models.RunResourceConfiguration,
				models.RunResourceSession,
			} {
				err := s.Runs().AddResource(ctx, models.RunResource{
					RunID:      "run-1",
					Kind:       kind,
					ResourceID: fmt.Sprintf("%d", i),
					CreatedAt:  t0.Add(time.Duration(i) * time.Second),
				})
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(s.Runs().AddResource(ctx, models.RunResource{RunID: "run-2", Kind: models.RunResourceSession, ResourceID: "x"})).To(Succeed())

			// Act
			resources, err := s.Runs().Resources(ctx, "run-1")

			// Assert
			Expect(err).NotTo(HaveOccurred())
			Expect(resources).To(HaveLen(3))
			Expect(resources[0].Kind).To(Equal(models.RunResourceLicenseServer))
			Expect(resources[1].Kind).To(Equal(models.RunResourceConfiguration))
			Expect(resources[2].Kind).To(Equal(models.RunResourceSession))
		})

		It("should return nothing for a run without resources", func() {
			resources, err := s.Runs().Resources(ctx, "none")

			Expect(err).NotTo(HaveOccurred())
			Expect(resources).To(BeEmpty())
		})
	})

	Context("Open", func() {
		It("should create the journal file and keep runs across reopen", func() {
			path := filepath.Join(GinkgoT().TempDir(), "journal.duckdb")

			first, err := store.Open(ctx, path)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Runs().Create(ctx, models.Run{ID: "kept", Kind: models.RunKindDestroy})).To(Succeed())
			Expect(first.Close()).To(Succeed())

			second, err := store.Open(ctx, path)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(second.Close)

			run, err := second.Runs().Get(ctx, "kept")
			Expect(err).NotTo(HaveOccurred())
			Expect(run.Kind).To(Equal(models.RunKindDestroy))
		})
	})
})

func runIDs(runs []models.Run) []string {
	ids := make([]string, 0, len(runs))
	for _, r := range runs {
		ids = append(ids, r.ID)
	}
	return ids
}
