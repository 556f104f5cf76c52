package poller_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cyperf-demos/pan-demo-setup/internal/models"
	srvErrors "github.com/cyperf-demos/pan-demo-setup/pkg/errors"
	"github.com/cyperf-demos/pan-demo-setup/pkg/poller"
)

// scriptedJob reports IN_PROGRESS for the first n polls and then the final status.
type scriptedJob struct {
	id      string
	n       int32
	final   models.AsyncJob
	calls   atomic.Int32
	mu      sync.Mutex
	resolve time.Time
}

func (j *scriptedJob) ID() string { return j.id }

func (j *scriptedJob) Status(ctx context.Context) (models.AsyncJob, error) {
	c := j.calls.Add(1)
	if c <= j.n {
		return models.AsyncJob{ID: j.id, Status: models.JobStatusInProgress}, nil
	}
	j.mu.Lock()
	if j.resolve.IsZero() {
		j.resolve = time.Now()
	}
	j.mu.Unlock()
	return j.final, nil
}

func (j *scriptedJob) resolvedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.resolve
}

func completeJob(id string, result string) models.AsyncJob {
	return models.AsyncJob{ID: id, Status: models.JobStatusComplete, Result: json.RawMessage(result)}
}

var _ = Describe("Poller", func() {
	var (
		ctx context.Context
		p   *poller.Poller
	)

	BeforeEach(func() {
		ctx = context.Background()
		p = poller.New(10 * time.Millisecond)
	})

	Context("Await", func() {
		// Given a job that stays in progress for three polls
		// When we await it
		// Then polling stops on the first terminal status
		It("should stop polling exactly when the job leaves IN_PROGRESS", func() {
			job := &scriptedJob{id: "import-1", n: 3, final: completeJob("import-1", `[]`)}

			res, err := p.Await(ctx, job)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(models.JobStatusComplete))
			Expect(job.calls.Load()).To(BeEquivalentTo(4))
		})

		// Given a job that ends in an error state
		// When we await it
		// Then a RemoteOperationError carrying the server message is returned
		It("should surface a failed job as RemoteOperationError", func() {
			job := &scriptedJob{id: "stop-1", n: 1, final: models.AsyncJob{
				ID: "stop-1", Status: models.JobStatusError, Message: "agents disconnected",
			}}

			_, err := p.Await(ctx, job)

			Expect(srvErrors.IsRemoteOperationError(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("agents disconnected"))
		})

		It("should propagate status call errors unmodified", func() {
			boom := errors.New("boom")
			h := poller.HandleFunc("x", func(ctx context.Context) (models.AsyncJob, error) {
				return models.AsyncJob{}, boom
			})

			_, err := p.Await(ctx, h)
			Expect(err).To(Equal(boom))
		})

		It("should stop when the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			h := poller.HandleFunc("forever", func(ctx context.Context) (models.AsyncJob, error) {
				return models.AsyncJob{Status: models.JobStatusInProgress}, nil
			})

			time.AfterFunc(50*time.Millisecond, cancel)
			_, err := p.Await(cctx, h)
			Expect(err).To(MatchError(context.Canceled))
		})
	})

	Context("AwaitAll", func() {
		// Given a fast job submitted after a slow one
		// When the batch is awaited
		// Then the fast job resolves without waiting for the slow one and results keep submission order
		It("should resolve each handle independently", func() {
			slow := &scriptedJob{id: "slow", n: 30, final: completeJob("slow", `"slow"`)}
			fast := &scriptedJob{id: "fast", n: 1, final: completeJob("fast", `"fast"`)}

			jobs, err := p.AwaitAll(ctx, []poller.Handle{slow, fast})

			Expect(err).NotTo(HaveOccurred())
			Expect(jobs).To(HaveLen(2))
			Expect(jobs[0].ID).To(Equal("slow"))
			Expect(jobs[1].ID).To(Equal("fast"))
			Expect(fast.resolvedAt()).To(BeTemporally("<", slow.resolvedAt()))
			Expect(fast.calls.Load()).To(BeEquivalentTo(2))
		})

		It("should abort the batch on the first failure", func() {
			slow := &scriptedJob{id: "slow", n: 1000, final: completeJob("slow", `[]`)}
			bad := &scriptedJob{id: "bad", n: 1, final: models.AsyncJob{ID: "bad", Status: models.JobStatusError, Message: "corrupt bundle"}}

			_, err := p.AwaitAll(ctx, []poller.Handle{slow, bad})

			Expect(srvErrors.IsRemoteOperationError(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("corrupt bundle"))
			calls := slow.calls.Load()
			Consistently(func() int32 { return slow.calls.Load() }, 100*time.Millisecond).Should(BeNumerically("<=", calls+1))
		})

		It("should return nothing for an empty batch", func() {
			jobs, err := p.AwaitAll(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(jobs).To(BeEmpty())
		})
	})
})
