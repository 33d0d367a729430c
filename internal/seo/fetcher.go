package seo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/rohitdas13595/sitesage/internal/platform/errs"
)

// FetchResult carries the raw markup and timing for one fetched page.
type FetchResult struct {
	HTML       []byte
	StatusCode int
	LoadTime   float64 // seconds from request start to full body receipt, 2dp
}

// Fetcher defines how the engine retrieves raw HTML.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// HTTPFetcher implements Fetcher using a real HTTP client. It performs a
// single GET with no retries; the caller decides what to do with failures.
type HTTPFetcher struct {
	client  *http.Client
	maxBody int64
}

const (
	maxRedirects = 5
	userAgent    = "SiteSage/1.0 SEO Analyzer"
)

var (
	errTooManyRedirects = errors.New("too many redirects")
	errBlockedRedirect  = errors.New("redirect to non-http(s) scheme blocked")
)

// NewHTTPFetcher returns a Fetcher backed by an http.Client with the given
// timeout, a dedicated transport that blocks connections to private/reserved
// IP ranges, redirect validation that prevents SSRF via redirect chains, and
// a response size cap to bound memory.
func NewHTTPFetcher(timeout time.Duration, maxBody int64) *HTTPFetcher {
	return newHTTPFetcher(timeout, maxBody, &http.Transport{
		DialContext:         safeDialer().DialContext,
		MaxConnsPerHost:     10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	})
}

func newHTTPFetcher(timeout time.Duration, maxBody int64, transport http.RoundTripper) *HTTPFetcher {
	return &HTTPFetcher{
		maxBody: maxBody,
		client: &http.Client{
			Timeout:       timeout,
			Transport:     transport,
			CheckRedirect: safeRedirectPolicy,
		},
	}
}

// safeRedirectPolicy validates redirect targets and limits the redirect chain length.
func safeRedirectPolicy(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("%w: stopped after %d", errTooManyRedirects, maxRedirects)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return fmt.Errorf("%w: %s", errBlockedRedirect, req.URL.Scheme)
	}
	return nil
}

// Fetch retrieves the page at the given URL, measuring wall-clock time from
// request start to full body receipt.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: "Invalid URL format. Please ensure you entered a valid URL (e.g., https://example.com).",
			Cause:   err,
		}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	start := time.Now()

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyFetchError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, &errs.AppError{
			Kind:           errs.UpstreamError,
			UpstreamStatus: resp.StatusCode,
			Message:        "The provided URL returned an error status.",
		}
	}

	// Read one byte past the cap so oversized responses are detectable
	// without buffering them whole.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, classifyFetchError(ctx, err)
	}
	if int64(len(body)) > f.maxBody {
		return nil, &errs.AppError{
			Kind:    errs.TooLarge,
			Message: fmt.Sprintf("The page exceeds the maximum analyzable size of %d bytes.", f.maxBody),
		}
	}

	return &FetchResult{
		HTML:       body,
		StatusCode: resp.StatusCode,
		LoadTime:   roundSeconds(time.Since(start)),
	}, nil
}

func classifyFetchError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &errs.AppError{
			Kind:    errs.Timeout,
			Message: "The target took too long to respond.",
			Cause:   err,
		}
	}

	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return &errs.AppError{
			Kind:    errs.Timeout,
			Message: "The target took too long to respond.",
			Cause:   err,
		}
	}

	return &errs.AppError{
		Kind:    errs.Unreachable,
		Message: "The provided URL could not be reached. Check the address.",
		Cause:   err,
	}
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
