package services_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cyperf-demos/pan-demo-setup/internal/services"
	srvErrors "github.com/cyperf-demos/pan-demo-setup/pkg/errors"
)

var _ = Describe("RetryGate", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	// Given a call failing twice with service unavailable
	// When it runs through the gate
	// Then it is retried until it succeeds
	It("should retry while the controller is not ready", func() {
		gate := services.NewRetryGate(5*time.Millisecond, 0)
		calls := 0

		val, err := services.Retry(ctx, gate, func(ctx context.Context) (string, error) {
			calls++
			if calls < 3 {
				return "", srvErrors.NewServiceUnavailableError(503, "starting")
			}
			return "ok", nil
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(val).To(Equal("ok"))
		Expect(calls).To(Equal(3))
	})

	// Given a call failing with any other error
	// When it runs through the gate
	// Then the error is returned unchanged after one attempt
	It("should not retry other errors", func() {
		gate := services.NewRetryGate(5*time.Millisecond, 0)
		boom := srvErrors.NewRemoteCallError("create session", 400, "bad request")
		calls := 0

		err := gate.Do(ctx, func(ctx context.Context) error {
			calls++
			return boom
		})

		Expect(calls).To(Equal(1))
		Expect(err).To(BeIdenticalTo(error(boom)))
	})

	// Given a typed call failing with a not-found error
	// When it runs through Retry
	// Then the caller gets the original error value back, not a backoff wrapper
	It("should return non-retryable errors from typed calls unchanged", func() {
		gate := services.NewRetryGate(5*time.Millisecond, time.Second)
		notFound := srvErrors.NewResourceNotFoundError("session", "s1")

		_, err := services.Retry(ctx, gate, func(ctx context.Context) (int, error) {
			return 0, notFound
		})

		Expect(err).To(BeIdenticalTo(error(notFound)))
		Expect(errors.Unwrap(err)).To(BeNil())
	})

	// Given a controller that never becomes ready
	// When the gate has an elapsed bound
	// Then it gives up with ControllerUnreachableError wrapping the last error
	It("should give up after the elapsed bound", func() {
		gate := services.NewRetryGate(5*time.Millisecond, 50*time.Millisecond)

		err := gate.Do(ctx, func(ctx context.Context) error {
			return srvErrors.NewServiceUnavailableError(503, "starting")
		})

		Expect(srvErrors.IsControllerUnreachableError(err)).To(BeTrue())
		Expect(srvErrors.IsServiceUnavailableError(err)).To(BeTrue())
	})

	// Given an unbounded gate and a controller that never becomes ready
	// When the context is cancelled
	// Then the gate stops with the context error
	It("should stop when the context is cancelled", func() {
		gate := services.NewRetryGate(5*time.Millisecond, 0)
		ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		err := gate.Do(ctx, func(ctx context.Context) error {
			return srvErrors.NewServiceUnavailableError(503, "starting")
		})

		Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
		Expect(srvErrors.IsControllerUnreachableError(err)).To(BeFalse())
	})
})
