package seo

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// LinkProber checks a bounded sample of external links with HEAD requests
// so dead outbound links can be counted as broken. It runs under its own
// budget so probing can never dominate total analysis time.
type LinkProber struct {
	client      *http.Client
	concurrency int
	sample      int
	budget      time.Duration
}

// NewLinkProber returns a LinkProber whose per-probe timeout, sample cap,
// and overall budget come from configuration. Probes do not follow
// redirects and connections to private/reserved IP ranges are blocked.
func NewLinkProber(concurrency, sample int, probeTimeout, budget time.Duration) *LinkProber {
	return newLinkProber(concurrency, sample, probeTimeout, budget, &http.Transport{
		DialContext:         safeDialer().DialContext,
		MaxConnsPerHost:     concurrency,
		MaxIdleConnsPerHost: concurrency,
		IdleConnTimeout:     90 * time.Second,
	})
}

func newLinkProber(concurrency, sample int, probeTimeout, budget time.Duration, transport http.RoundTripper) *LinkProber {
	return &LinkProber{
		concurrency: concurrency,
		sample:      sample,
		budget:      budget,
		client: &http.Client{
			Timeout:   probeTimeout,
			Transport: transport,
			CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// probeLink returns true if the link is broken. Servers that reject HEAD
// outright (403/405) get a GET fallback before being counted.
func (p *LinkProber) probeLink(ctx context.Context, link string) bool {
	status, err := p.request(ctx, http.MethodHead, link)
	if err != nil {
		return ctx.Err() == nil // broken only if the context wasn't cancelled
	}

	if status == http.StatusForbidden || status == http.StatusMethodNotAllowed {
		status, err = p.request(ctx, http.MethodGet, link)
		if err != nil {
			return ctx.Err() == nil
		}
	}

	return status >= 400
}

func (p *LinkProber) request(ctx context.Context, method, link string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, link, nil)
	if err != nil {
		return 0, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode, nil
}

// Probe validates a list of link URLs concurrently using a pool of worker
// goroutines and returns the count of broken links. Duplicate URLs are
// probed once, at most the configured sample is checked, and the whole
// phase runs under its own sub-deadline.
func (p *LinkProber) Probe(ctx context.Context, links []string) int {
	unique := dedupe(links)
	if len(unique) > p.sample {
		unique = unique[:p.sample]
	}
	if len(unique) == 0 {
		return 0
	}

	ctx, cancel := context.WithTimeout(ctx, p.budget)
	defer cancel()

	jobs := make(chan string, len(unique))
	results := make(chan bool, len(unique))

	numWorkers := min(len(unique), p.concurrency)

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Go(func() {
			for link := range jobs {
				results <- p.probeLink(ctx, link)
			}
		})
	}

	for _, link := range unique {
		jobs <- link
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var broken int
	for bad := range results {
		if bad {
			broken++
		}
	}

	return broken
}

// dedupe preserves first-seen order.
func dedupe(links []string) []string {
	seen := make(map[string]bool, len(links))
	unique := make([]string, 0, len(links))
	for _, link := range links {
		if seen[link] {
			continue
		}
		seen[link] = true
		unique = append(unique, link)
	}
	return unique
}
