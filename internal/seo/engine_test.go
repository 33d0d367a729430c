package seo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rohitdas13595/sitesage/internal/platform/errs"
)

type mockFetcher struct {
	result *FetchResult
	err    error
	calls  int
}

func (m *mockFetcher) Fetch(_ context.Context, _ string) (*FetchResult, error) {
	m.calls++
	return m.result, m.err
}

type mockProber struct {
	broken   int
	gotLinks []string
	calls    int
}

func (m *mockProber) Probe(_ context.Context, links []string) int {
	m.calls++
	m.gotLinks = links
	return m.broken
}

func testEngine(fetcher Fetcher, prober linkProber) *Engine {
	insights := NewInsightGenerator(nil, time.Second, testLogger())
	return NewEngine(fetcher, prober, NewScorer(DefaultThresholds()), insights)
}

func TestEngine_Analyze(t *testing.T) {
	html := `<html lang="en"><head><title>Welcome</title>
	<meta name="description" content="A welcoming page."></head><body>
	<h1>Hello</h1>
	<img src="/a.png" alt="A">
	<a href="https://other.com/x">external</a>
	</body></html>`

	fetcher := &mockFetcher{result: &FetchResult{HTML: []byte(html), StatusCode: 200, LoadTime: 0.42}}
	prober := &mockProber{broken: 1}

	outcome, err := testEngine(fetcher, prober).Analyze(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if !outcome.Succeeded() {
		t.Fatalf("outcome failed: %+v", outcome.Failure)
	}
	if outcome.URL != "https://example.com" {
		t.Errorf("URL = %q, want the input URL", outcome.URL)
	}
	if outcome.Signals.LoadTime != 0.42 {
		t.Errorf("LoadTime = %v, want the fetcher's measurement", outcome.Signals.LoadTime)
	}
	if outcome.Signals.BrokenLinks != 1 {
		t.Errorf("BrokenLinks = %d, want the prober's count", outcome.Signals.BrokenLinks)
	}
	if prober.calls != 1 {
		t.Errorf("prober calls = %d, want 1", prober.calls)
	}
	if len(prober.gotLinks) != 1 || prober.gotLinks[0] != "https://other.com/x" {
		t.Errorf("prober links = %v, want the external link", prober.gotLinks)
	}
	// One broken external link costs 3 points.
	if outcome.Scores == nil || outcome.Scores.SEOScore != 97 {
		t.Errorf("Scores = %+v, want SEOScore 97", outcome.Scores)
	}
	if outcome.Insights == nil || outcome.Insights.Summary == "" {
		t.Error("insights must always be populated")
	}
}

func TestEngine_Analyze_InvalidURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"no scheme", "example.com"},
		{"missing host", "https://"},
		{"unsupported scheme", "ftp://example.com"},
		{"garbage", "ht tp://bad url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &mockFetcher{}
			_, err := testEngine(fetcher, nil).Analyze(context.Background(), tt.url)

			var appErr *errs.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("error = %v, want *errs.AppError", err)
			}
			if appErr.Kind != errs.InvalidInput {
				t.Errorf("Kind = %v, want InvalidInput", appErr.Kind)
			}
			// Validation happens before any network work.
			if fetcher.calls != 0 {
				t.Errorf("fetcher calls = %d, want 0", fetcher.calls)
			}
		})
	}
}

func TestEngine_Analyze_FetchErrorPassthrough(t *testing.T) {
	fetchErr := &errs.AppError{Kind: errs.Timeout, Message: "The target took too long to respond."}
	fetcher := &mockFetcher{err: fetchErr}
	prober := &mockProber{}

	_, err := testEngine(fetcher, prober).Analyze(context.Background(), "https://example.com")

	var appErr *errs.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error = %v, want *errs.AppError", err)
	}
	if appErr.Kind != errs.Timeout {
		t.Errorf("Kind = %v, want Timeout", appErr.Kind)
	}
	if prober.calls != 0 {
		t.Errorf("prober calls = %d, want 0 after a failed fetch", prober.calls)
	}
}

func TestEngine_Analyze_NilProber(t *testing.T) {
	html := `<html lang="en"><head><title>T</title></head><body>
	<h1>H</h1><a href="#missing">x</a><a href="https://other.com/y">ext</a>
	</body></html>`
	fetcher := &mockFetcher{result: &FetchResult{HTML: []byte(html), StatusCode: 200, LoadTime: 0.1}}

	outcome, err := testEngine(fetcher, nil).Analyze(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	// Without a prober, only broken fragments count.
	if outcome.Signals.BrokenLinks != 1 {
		t.Errorf("BrokenLinks = %d, want 1", outcome.Signals.BrokenLinks)
	}
}
