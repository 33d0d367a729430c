package model

import (
	"encoding/json"
	"time"
)

// Image describes a single <img> element found on the page.
type Image struct {
	Src    string `json:"src"`
	Alt    string `json:"alt"`
	HasAlt bool   `json:"has_alt"`
}

// Accessibility holds the accessibility facts extracted from the markup.
type Accessibility struct {
	HasLang            bool   `json:"has_lang"`
	Lang               string `json:"lang,omitempty"`
	MissingLabelsCount int    `json:"missing_labels_count"`
}

// PageSignals is everything the extractor pulls out of a page's markup,
// plus the fetch measurements the scorer needs (load time, byte size).
type PageSignals struct {
	Title           *string       `json:"title"`
	MetaDescription *string       `json:"meta_description"`
	H1Tags          []string      `json:"h1_tags"`
	H2Tags          []string      `json:"h2_tags"`
	Images          []Image       `json:"images"`
	BrokenLinks     int           `json:"broken_links"`
	WordCount       int           `json:"word_count"`
	Accessibility   Accessibility `json:"accessibility"`
	LoadTime        float64       `json:"load_time"` // seconds, two decimal places
	HTMLBytes       int           `json:"html_bytes"`
}

// MissingAltCount returns the number of images without a usable alt
// attribute. Derived from the image set so it cannot drift from it.
func (s PageSignals) MissingAltCount() int {
	var n int
	for _, img := range s.Images {
		if !img.HasAlt {
			n++
		}
	}
	return n
}

// MarshalJSON includes the derived missing_alt_tags count alongside the
// underlying image sequence.
func (s PageSignals) MarshalJSON() ([]byte, error) {
	type alias PageSignals
	return json.Marshal(struct {
		alias
		MissingAltTags int `json:"missing_alt_tags"`
	}{alias(s), s.MissingAltCount()})
}

// ScoreBreakdown holds the computed sub-scores. SEOScore is always present;
// the others are nil when the active scoring profile could not compute them.
type ScoreBreakdown struct {
	SEOScore           float64  `json:"seo_score"`
	PerformanceScore   *float64 `json:"performance_score,omitempty"`
	AccessibilityScore *float64 `json:"accessibility_score,omitempty"`
	BestPracticesScore *float64 `json:"best_practices_score,omitempty"`
}

// Insights is the natural-language portion of a report.
type Insights struct {
	Summary     string   `json:"summary"`
	Suggestions []string `json:"suggestions"`
}

// FailureKind classifies why a URL's analysis failed.
type FailureKind string

const (
	FailureInvalidURL FailureKind = "invalid_url"
	FailureTimeout    FailureKind = "timeout"
	FailureConnection FailureKind = "connection_error"
	FailureHTTPError  FailureKind = "http_error"
	FailureTooLarge   FailureKind = "too_large"
	FailureInternal   FailureKind = "internal"
)

// Failure is the typed per-URL failure record.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Status  int         `json:"status,omitempty"` // HTTP status for http_error failures
	Message string      `json:"message"`
}

// Outcome is the per-URL result of the pipeline: either a full success
// record (signals, scores, insights) or a typed failure, never both.
type Outcome struct {
	URL      string          `json:"url"`
	Signals  *PageSignals    `json:"metrics,omitempty"`
	Scores   *ScoreBreakdown `json:"scores,omitempty"`
	Insights *Insights       `json:"ai_insights,omitempty"`
	Failure  *Failure        `json:"failure,omitempty"`
}

// Succeeded reports whether the outcome carries a success record.
func (o Outcome) Succeeded() bool {
	return o.Failure == nil
}

// BatchResult holds one outcome per input URL, in input order.
type BatchResult []Outcome

// Report is the completed record handed to the persistence collaborator.
// The pipeline only produces it; it never reads persisted state back.
type Report struct {
	URL        string         `json:"url"`
	SEOScore   float64        `json:"seo_score"`
	Metrics    PageSignals    `json:"metrics"`
	Scores     ScoreBreakdown `json:"scores"`
	AIInsights Insights       `json:"ai_insights"`
	CreatedAt  time.Time      `json:"created_at"`
}

// ErrorResponse is the JSON shape returned on failure.
type ErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}
