package seo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rohitdas13595/sitesage/internal/model"
	"github.com/rohitdas13595/sitesage/internal/platform/errs"
)

// urlAnalyzer is the per-URL pipeline the coordinator fans out over.
type urlAnalyzer interface {
	Analyze(ctx context.Context, targetURL string) (*model.Outcome, error)
}

// Coordinator fans the single-URL pipeline out over a bounded batch. The
// concurrency cap is admission control on outbound connections and
// external-API calls, not a tuning knob. Single-URL analysis is the
// batch-of-one special case and shares the same per-URL code path.
type Coordinator struct {
	analyzer       urlAnalyzer
	maxBatchSize   int
	maxConcurrency int
	logger         *slog.Logger
}

// NewCoordinator returns a Coordinator running at most maxConcurrency
// pipelines at once and rejecting batches larger than maxBatchSize.
func NewCoordinator(analyzer urlAnalyzer, maxBatchSize, maxConcurrency int, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		analyzer:       analyzer,
		maxBatchSize:   maxBatchSize,
		maxConcurrency: maxConcurrency,
		logger:         logger,
	}
}

// Analyze runs one URL through the shared per-URL path. A failure is
// reported in the outcome, never as an error.
func (c *Coordinator) Analyze(ctx context.Context, targetURL string) model.Outcome {
	return c.runOne(ctx, targetURL)
}

// AnalyzeBatch analyzes every URL and returns one outcome per input, in
// input order regardless of completion order. The input set is validated
// before any network work; a failure in one URL's pipeline never affects
// its siblings.
func (c *Coordinator) AnalyzeBatch(ctx context.Context, urls []string) (model.BatchResult, error) {
	if len(urls) == 0 {
		return nil, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: "The batch must contain at least one URL.",
		}
	}
	if len(urls) > c.maxBatchSize {
		return nil, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: fmt.Sprintf("The batch may contain at most %d URLs.", c.maxBatchSize),
		}
	}

	// Fixed worker pool keyed by index: each worker writes into its job's
	// pre-sized slot, so output order matches input order with no sorting.
	outcomes := make(model.BatchResult, len(urls))
	jobs := make(chan int, len(urls))

	numWorkers := min(len(urls), c.maxConcurrency)

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Go(func() {
			for i := range jobs {
				outcomes[i] = c.runOne(ctx, urls[i])
			}
		})
	}

	for i := range urls {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	return outcomes, nil
}

// runOne is the per-URL isolation boundary: typed errors become failure
// outcomes and panics are converted rather than propagated, so one URL can
// never abort the batch.
func (c *Coordinator) runOne(ctx context.Context, targetURL string) (outcome model.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("analysis panicked", "url", targetURL, "panic", r)
			outcome = model.Outcome{
				URL: targetURL,
				Failure: &model.Failure{
					Kind:    model.FailureInternal,
					Message: "An unexpected error occurred while analyzing this URL.",
				},
			}
		}
	}()

	result, err := c.analyzer.Analyze(ctx, targetURL)
	if err != nil {
		return model.Outcome{URL: targetURL, Failure: failureFromError(err)}
	}
	return *result
}

func failureFromError(err error) *model.Failure {
	var appErr *errs.AppError
	if !errors.As(err, &appErr) {
		return &model.Failure{
			Kind:    model.FailureInternal,
			Message: "An unexpected error occurred while analyzing this URL.",
		}
	}

	failure := &model.Failure{Message: appErr.Message}
	switch appErr.Kind {
	case errs.InvalidInput:
		failure.Kind = model.FailureInvalidURL
	case errs.Timeout:
		failure.Kind = model.FailureTimeout
	case errs.Unreachable:
		failure.Kind = model.FailureConnection
	case errs.UpstreamError:
		failure.Kind = model.FailureHTTPError
		failure.Status = appErr.UpstreamStatus
	case errs.TooLarge:
		failure.Kind = model.FailureTooLarge
	default:
		failure.Kind = model.FailureInternal
	}
	return failure
}
