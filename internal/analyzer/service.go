package analyzer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rohitdas13595/sitesage/internal/model"
	"github.com/rohitdas13595/sitesage/internal/platform/errs"
	"github.com/rohitdas13595/sitesage/internal/platform/requestid"
)

// Service orchestrates an SEOProvider, logs results, and hands completed
// reports to the persistence collaborator.
type Service struct {
	provider SEOProvider
	store    ReportStore // nil disables persistence
	logger   *slog.Logger
}

// NewService creates a Service backed by the given provider. A nil store
// is valid; reports are then only returned, never persisted.
func NewService(provider SEOProvider, store ReportStore, logger *slog.Logger) *Service {
	return &Service{provider: provider, store: store, logger: logger}
}

// Analyze runs a single URL through the pipeline. A per-URL failure is
// surfaced directly as a typed error, not wrapped in a batch.
func (s *Service) Analyze(ctx context.Context, targetURL string) (*model.Outcome, error) {
	logger := s.logger.With("url", targetURL, "request_id", requestid.FromContext(ctx))

	outcome := s.provider.Analyze(ctx, targetURL)
	if !outcome.Succeeded() {
		err := appErrorFromFailure(ctx, outcome.Failure)
		logger.Error("analysis failed", "kind", outcome.Failure.Kind, "error", err)
		return nil, err
	}

	s.persist(ctx, logger, outcome)

	logger.Info("analysis complete",
		"seo_score", outcome.Scores.SEOScore,
		"missing_alt_tags", outcome.Signals.MissingAltCount(),
		"broken_links", outcome.Signals.BrokenLinks,
		"load_time", outcome.Signals.LoadTime,
	)
	return &outcome, nil
}

// AnalyzeBatch runs the pipeline over every URL. Only batch-level
// validation fails the call; per-URL failures ride inside the result.
func (s *Service) AnalyzeBatch(ctx context.Context, urls []string) (model.BatchResult, error) {
	logger := s.logger.With("request_id", requestid.FromContext(ctx))

	result, err := s.provider.AnalyzeBatch(ctx, urls)
	if err != nil {
		logger.Error("batch rejected", "urls", len(urls), "error", err)
		return nil, err
	}

	var failed int
	for _, outcome := range result {
		if outcome.Succeeded() {
			s.persist(ctx, logger, outcome)
		} else {
			failed++
		}
	}

	logger.Info("batch complete", "urls", len(urls), "failed", failed)
	return result, nil
}

func (s *Service) persist(ctx context.Context, logger *slog.Logger, outcome model.Outcome) {
	if s.store == nil {
		return
	}

	report := &model.Report{
		URL:        outcome.URL,
		SEOScore:   outcome.Scores.SEOScore,
		Metrics:    *outcome.Signals,
		Scores:     *outcome.Scores,
		AIInsights: *outcome.Insights,
		CreatedAt:  time.Now().UTC(),
	}

	// A storage fault loses history, not the analysis in hand.
	if err := s.store.Save(ctx, report); err != nil {
		logger.Warn("failed to persist report", "url", outcome.URL, "error", err)
	}
}

func appErrorFromFailure(ctx context.Context, failure *model.Failure) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &errs.AppError{
			Kind:    errs.Timeout,
			Message: "Analysis timed out. The target URL may be slow to respond.",
		}
	}

	appErr := &errs.AppError{Message: failure.Message}
	switch failure.Kind {
	case model.FailureInvalidURL:
		appErr.Kind = errs.InvalidInput
	case model.FailureTimeout:
		appErr.Kind = errs.Timeout
	case model.FailureConnection:
		appErr.Kind = errs.Unreachable
	case model.FailureHTTPError:
		appErr.Kind = errs.UpstreamError
		appErr.UpstreamStatus = failure.Status
	case model.FailureTooLarge:
		appErr.Kind = errs.TooLarge
	default:
		appErr.Kind = errs.Internal
	}
	return appErr
}
