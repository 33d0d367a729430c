package seo

import (
	"fmt"
	"math"

	"github.com/rohitdas13595/sitesage/internal/model"
)

// Fixed penalty weights for the SEO sub-score. The thresholds they apply
// against are configurable; the weights themselves are the documented
// reference policy, so results stay reproducible across deployments.
const (
	penaltyTitle          = 15
	penaltyMetaDesc       = 10
	penaltyNoH1           = 10
	penaltyExtraH1        = 5
	penaltyMissingAlt     = 2
	penaltyMissingAltCap  = 20
	penaltyBrokenLink     = 3
	penaltyBrokenLinkCap  = 15
	penaltyLabel          = 10
	penaltyLabelCap       = 40
	penaltyNoLang         = 20
	bpPenaltyBrokenLink   = 5
	bpPenaltyBrokenCap    = 30
	bpPenaltyNoMetaDesc   = 10
	thinContentWordCount  = 300
)

// Thresholds are the tunable boundaries the scorer applies. Loadable from a
// YAML scoring profile; zero values are filled from the defaults.
type Thresholds struct {
	TitleMaxLength    int     `yaml:"title_max_length"`
	MetaDescMaxLength int     `yaml:"meta_description_max_length"`
	FastLoadSeconds   float64 `yaml:"fast_load_seconds"`
	SlowLoadSeconds   float64 `yaml:"slow_load_seconds"`
	SmallPageBytes    int     `yaml:"small_page_bytes"`
	LargePageBytes    int     `yaml:"large_page_bytes"`
}

// DefaultThresholds returns the reference scoring thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TitleMaxLength:    60,
		MetaDescMaxLength: 160,
		FastLoadSeconds:   1,
		SlowLoadSeconds:   10,
		SmallPageBytes:    500_000,
		LargePageBytes:    5_000_000,
	}
}

// Finding is one detected issue, paired with the actionable suggestion the
// rule-based insight fallback emits for it.
type Finding struct {
	Message    string
	Suggestion string
}

// Scorer converts page signals into sub-scores. Deterministic, pure, no I/O.
type Scorer struct {
	t Thresholds
}

// NewScorer returns a Scorer using the given thresholds.
func NewScorer(t Thresholds) *Scorer {
	return &Scorer{t: t}
}

// Score computes the sub-scores for the given signals along with the list
// of findings that produced the penalties. Every present sub-score is a
// finite value in [0,100]; seo_score is always present. The performance
// score is absent (nil) when timing or byte-size data is unavailable, and
// absence propagates as nil, never as 0.
func (s *Scorer) Score(sig model.PageSignals) (model.ScoreBreakdown, []Finding) {
	var findings []Finding

	seo := 100.0

	if sig.Title == nil {
		seo -= penaltyTitle
		findings = append(findings, Finding{
			Message:    "Missing page title",
			Suggestion: "Add a descriptive <title> tag between 30 and 60 characters.",
		})
	} else if len(*sig.Title) > s.t.TitleMaxLength {
		seo -= penaltyTitle
		findings = append(findings, Finding{
			Message:    fmt.Sprintf("Title is too long (> %d characters)", s.t.TitleMaxLength),
			Suggestion: fmt.Sprintf("Shorten the page title to at most %d characters.", s.t.TitleMaxLength),
		})
	}

	if sig.MetaDescription == nil {
		seo -= penaltyMetaDesc
		findings = append(findings, Finding{
			Message:    "Missing meta description",
			Suggestion: "Add a meta description of 120-160 characters summarizing the page.",
		})
	} else if len(*sig.MetaDescription) > s.t.MetaDescMaxLength {
		seo -= penaltyMetaDesc
		findings = append(findings, Finding{
			Message:    fmt.Sprintf("Meta description is too long (> %d characters)", s.t.MetaDescMaxLength),
			Suggestion: fmt.Sprintf("Trim the meta description to at most %d characters.", s.t.MetaDescMaxLength),
		})
	}

	switch h1s := len(sig.H1Tags); {
	case h1s == 0:
		seo -= penaltyNoH1
		findings = append(findings, Finding{
			Message:    "No H1 tag found",
			Suggestion: "Add exactly one H1 tag describing the page's main topic.",
		})
	case h1s > 1:
		seo -= float64(penaltyExtraH1 * (h1s - 1))
		findings = append(findings, Finding{
			Message:    fmt.Sprintf("Multiple H1 tags found (%d)", h1s),
			Suggestion: "Keep a single H1 tag and demote the others to H2.",
		})
	}

	if missing := sig.MissingAltCount(); missing > 0 {
		seo -= math.Min(penaltyMissingAltCap, float64(missing*penaltyMissingAlt))
		findings = append(findings, Finding{
			Message:    fmt.Sprintf("%d images missing alt tags", missing),
			Suggestion: fmt.Sprintf("Add descriptive alt text to the %d images missing it.", missing),
		})
	}

	if sig.BrokenLinks > 0 {
		seo -= math.Min(penaltyBrokenLinkCap, float64(sig.BrokenLinks*penaltyBrokenLink))
		findings = append(findings, Finding{
			Message:    fmt.Sprintf("Found %d broken links", sig.BrokenLinks),
			Suggestion: fmt.Sprintf("Fix or remove the %d broken links.", sig.BrokenLinks),
		})
	}

	// Non-scoring findings still feed the insight fallback.
	if sig.WordCount > 0 && sig.WordCount < thinContentWordCount {
		findings = append(findings, Finding{
			Message:    fmt.Sprintf("Low word count (%d words)", sig.WordCount),
			Suggestion: fmt.Sprintf("Expand the content beyond %d words to improve topical depth.", thinContentWordCount),
		})
	}

	acc := 100.0
	if labels := sig.Accessibility.MissingLabelsCount; labels > 0 {
		acc -= math.Min(penaltyLabelCap, float64(labels*penaltyLabel))
		findings = append(findings, Finding{
			Message:    fmt.Sprintf("Found %d interactive elements without descriptive labels", labels),
			Suggestion: "Give every link, button, and form control an accessible name (text, label, or aria-label).",
		})
	}
	if !sig.Accessibility.HasLang {
		acc -= penaltyNoLang
		findings = append(findings, Finding{
			Message:    "Missing 'lang' attribute on <html> tag",
			Suggestion: "Declare the document language, e.g. <html lang=\"en\">.",
		})
	}

	bp := 100.0
	bp -= math.Min(bpPenaltyBrokenCap, float64(sig.BrokenLinks*bpPenaltyBrokenLink))
	if sig.MetaDescription == nil {
		// Also a best-practice signal, duplicated from the SEO score on purpose.
		bp -= bpPenaltyNoMetaDesc
	}

	breakdown := model.ScoreBreakdown{
		SEOScore:           clamp(seo),
		AccessibilityScore: ptr(clamp(acc)),
		BestPracticesScore: ptr(clamp(bp)),
	}

	if perf, ok := s.performanceScore(sig); ok {
		breakdown.PerformanceScore = ptr(perf)
		if sig.LoadTime > s.t.SlowLoadSeconds/2 {
			findings = append(findings, Finding{
				Message:    fmt.Sprintf("Slow page load time (%.2fs)", sig.LoadTime),
				Suggestion: "Reduce page weight and server response time to speed up loading.",
			})
		}
	}

	return breakdown, findings
}

// performanceScore derives a [0,100] score from load time and page byte
// size: full marks at or below the fast/small thresholds, linearly decaying
// to zero at the slow/large ones, taking the minimum of the two factors.
// Reports ok=false when either measurement is unavailable.
func (s *Scorer) performanceScore(sig model.PageSignals) (float64, bool) {
	if sig.LoadTime <= 0 || sig.HTMLBytes <= 0 {
		return 0, false
	}

	loadFactor := decay(sig.LoadTime, s.t.FastLoadSeconds, s.t.SlowLoadSeconds)
	sizeFactor := decay(float64(sig.HTMLBytes), float64(s.t.SmallPageBytes), float64(s.t.LargePageBytes))

	return clamp(math.Round(math.Min(loadFactor, sizeFactor) * 100)), true
}

// decay maps v to [0,1]: 1 at or below lo, 0 at or above hi, linear between.
func decay(v, lo, hi float64) float64 {
	switch {
	case v <= lo:
		return 1
	case v >= hi:
		return 0
	default:
		return (hi - v) / (hi - lo)
	}
}

func clamp(score float64) float64 {
	return math.Max(0, math.Min(100, score))
}

func ptr(v float64) *float64 {
	return &v
}
