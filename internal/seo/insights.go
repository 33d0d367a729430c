package seo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rohitdas13595/sitesage/internal/model"
)

const (
	maxSuggestions      = 10
	maxSuggestionRunes  = 300
	maxPromptFindings   = 12
	maxPromptFieldRunes = 200
)

// Summarizer is the external reasoning capability: it turns a structured
// prompt into a summary and suggestions, or fails with a service error.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (*model.Insights, error)
}

// InsightGenerator builds a prompt from signals and scores, invokes the
// summarization capability under a timeout, and validates its output. When
// the capability fails or none is configured it falls back to a
// deterministic rule-based summary, so an analysis never fails solely
// because the external service is unavailable.
type InsightGenerator struct {
	summarizer Summarizer // nil means always use the fallback
	timeout    time.Duration
	logger     *slog.Logger
}

// NewInsightGenerator creates an InsightGenerator. A nil summarizer is
// valid and selects the rule-based fallback unconditionally.
func NewInsightGenerator(summarizer Summarizer, timeout time.Duration, logger *slog.Logger) *InsightGenerator {
	return &InsightGenerator{summarizer: summarizer, timeout: timeout, logger: logger}
}

// Generate produces insights for one analyzed page. It never fails.
func (g *InsightGenerator) Generate(ctx context.Context, targetURL string, sig model.PageSignals, scores model.ScoreBreakdown, findings []Finding) model.Insights {
	if g.summarizer != nil {
		cctx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		insights, err := g.summarizer.Summarize(cctx, buildPrompt(targetURL, sig, scores, findings))
		if err == nil {
			if cleaned, ok := sanitize(insights); ok {
				return cleaned
			}
			err = fmt.Errorf("summarizer returned an empty summary")
		}
		g.logger.Warn("summarization failed, using rule-based insights", "url", targetURL, "error", err)
	}

	return fallbackInsights(targetURL, scores.SEOScore, findings)
}

// buildPrompt renders a bounded-size prompt: long fields are truncated and
// at most maxPromptFindings issues are listed.
func buildPrompt(targetURL string, sig model.PageSignals, scores model.ScoreBreakdown, findings []Finding) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyze the following SEO audit results for %s:\n\n", targetURL)
	fmt.Fprintf(&b, "SEO Score: %.1f/100\n\n", scores.SEOScore)

	b.WriteString("Key Metrics:\n")
	fmt.Fprintf(&b, "- Title: %s\n", truncate(orNA(sig.Title), maxPromptFieldRunes))
	fmt.Fprintf(&b, "- Meta Description: %s\n", truncate(orNA(sig.MetaDescription), maxPromptFieldRunes))
	fmt.Fprintf(&b, "- H1 Tags: %d\n", len(sig.H1Tags))
	fmt.Fprintf(&b, "- H2 Tags: %d\n", len(sig.H2Tags))
	fmt.Fprintf(&b, "- Images: %d (%d missing alt text)\n", len(sig.Images), sig.MissingAltCount())
	fmt.Fprintf(&b, "- Word Count: %d\n", sig.WordCount)
	fmt.Fprintf(&b, "- Broken Links: %d\n", sig.BrokenLinks)
	fmt.Fprintf(&b, "- Load Time: %.2fs\n\n", sig.LoadTime)

	b.WriteString("Issues Identified:\n")
	if len(findings) == 0 {
		b.WriteString("No major issues found\n")
	}
	for i, f := range findings {
		if i == maxPromptFindings {
			break
		}
		fmt.Fprintf(&b, "- %s\n", f.Message)
	}

	b.WriteString("\nPlease provide:\n")
	b.WriteString("1. A 2-3 paragraph summary of the site's SEO quality\n")
	b.WriteString("2. 3-5 specific, actionable improvement suggestions\n\n")
	b.WriteString(`Format your response as JSON with keys "summary" and "suggestions" (array of strings).`)

	return b.String()
}

// sanitize validates capability output: a non-empty summary is required,
// suggestions are trimmed, emptied entries dropped, the list capped, and
// each entry bounded in length.
func sanitize(insights *model.Insights) (model.Insights, bool) {
	if insights == nil {
		return model.Insights{}, false
	}

	summary := strings.TrimSpace(insights.Summary)
	if summary == "" {
		return model.Insights{}, false
	}

	suggestions := make([]string, 0, min(len(insights.Suggestions), maxSuggestions))
	for _, s := range insights.Suggestions {
		if len(suggestions) == maxSuggestions {
			break
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		suggestions = append(suggestions, truncate(s, maxSuggestionRunes))
	}

	return model.Insights{Summary: summary, Suggestions: suggestions}, true
}

// fallbackInsights builds a deterministic summary from the locally computed
// penalties, with one suggestion per finding.
func fallbackInsights(targetURL string, seoScore float64, findings []Finding) model.Insights {
	var b strings.Builder

	switch {
	case seoScore >= 80:
		fmt.Fprintf(&b, "The website %s demonstrates strong SEO fundamentals with a score of %.1f/100. ", targetURL, seoScore)
		b.WriteString("Most critical SEO elements are properly implemented.")
	case seoScore >= 60:
		fmt.Fprintf(&b, "The website %s has a moderate SEO score of %.1f/100. ", targetURL, seoScore)
		b.WriteString("There are several areas that need attention to improve search engine visibility.")
	default:
		fmt.Fprintf(&b, "The website %s has significant SEO issues with a score of %.1f/100. ", targetURL, seoScore)
		b.WriteString("Immediate action is required to improve search engine rankings.")
	}

	if len(findings) > 0 {
		issues := make([]string, 0, 3)
		for i, f := range findings {
			if i == 3 {
				break
			}
			issues = append(issues, f.Message)
		}
		fmt.Fprintf(&b, " Key issues include: %s.", strings.Join(issues, ", "))
	}

	suggestions := make([]string, 0, min(len(findings), maxSuggestions))
	for _, f := range findings {
		if len(suggestions) == maxSuggestions {
			break
		}
		suggestions = append(suggestions, f.Suggestion)
	}

	return model.Insights{Summary: b.String(), Suggestions: suggestions}
}

func orNA(s *string) string {
	if s == nil {
		return "N/A"
	}
	return *s
}

func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}
