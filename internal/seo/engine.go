package seo

import (
	"context"
	"net/url"

	"github.com/rohitdas13595/sitesage/internal/model"
	"github.com/rohitdas13595/sitesage/internal/platform/errs"
)

// linkProber defines how the engine counts broken external links.
type linkProber interface {
	Probe(ctx context.Context, links []string) int
}

// Engine runs the single-URL pipeline: fetch, extract, probe, score,
// summarize. It holds no state between invocations beyond configuration.
type Engine struct {
	fetcher  Fetcher
	prober   linkProber // nil disables external link probing
	scorer   *Scorer
	insights *InsightGenerator
}

// NewEngine returns an Engine over the given collaborators. A nil prober
// limits broken-link detection to same-document fragments.
func NewEngine(fetcher Fetcher, prober linkProber, scorer *Scorer, insights *InsightGenerator) *Engine {
	return &Engine{
		fetcher:  fetcher,
		prober:   prober,
		scorer:   scorer,
		insights: insights,
	}
}

// Analyze runs the full pipeline for one URL. The URL is validated before
// any network work; failures are typed *errs.AppError values.
func (e *Engine) Analyze(ctx context.Context, targetURL string) (*model.Outcome, error) {
	parsed, err := validateURL(targetURL)
	if err != nil {
		return nil, err
	}

	fetched, err := e.fetcher.Fetch(ctx, targetURL)
	if err != nil {
		return nil, err
	}

	signals, externalLinks := Extract(fetched.HTML, parsed)
	signals.LoadTime = fetched.LoadTime

	if e.prober != nil {
		signals.BrokenLinks += e.prober.Probe(ctx, externalLinks)
	}

	scores, findings := e.scorer.Score(signals)
	insights := e.insights.Generate(ctx, targetURL, signals, scores, findings)

	return &model.Outcome{
		URL:      targetURL,
		Signals:  &signals,
		Scores:   &scores,
		Insights: &insights,
	}, nil
}

func validateURL(targetURL string) (*url.URL, error) {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: "Invalid URL format. Please ensure you entered a valid URL (e.g., https://example.com).",
			Cause:   err,
		}
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: "Invalid URL format. Please ensure you entered a valid URL (e.g., https://example.com).",
		}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: "Only http and https URLs are supported.",
		}
	}
	return parsed, nil
}
