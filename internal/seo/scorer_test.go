package seo

import (
	"reflect"
	"strings"
	"testing"

	"github.com/rohitdas13595/sitesage/internal/model"
)

func healthySignals() model.PageSignals {
	return model.PageSignals{
		Title:           strPtr("A well-sized page title"),
		MetaDescription: strPtr("A reasonable meta description for the page."),
		H1Tags:          []string{"Main heading"},
		H2Tags:          []string{"Section"},
		Images:          []model.Image{{Src: "https://example.com/a.png", Alt: "A", HasAlt: true}},
		WordCount:       800,
		Accessibility:   model.Accessibility{HasLang: true, Lang: "en"},
		LoadTime:        0.5,
		HTMLBytes:       40_000,
	}
}

func imagesWithoutAlt(n int) []model.Image {
	images := make([]model.Image, n)
	for i := range images {
		images[i] = model.Image{Src: "https://example.com/img.png"}
	}
	return images
}

func TestScore_HealthyPage(t *testing.T) {
	scorer := NewScorer(DefaultThresholds())

	scores, findings := scorer.Score(healthySignals())

	if scores.SEOScore != 100 {
		t.Errorf("SEOScore = %v, want 100", scores.SEOScore)
	}
	if scores.PerformanceScore == nil || *scores.PerformanceScore != 100 {
		t.Errorf("PerformanceScore = %v, want 100", scores.PerformanceScore)
	}
	if scores.AccessibilityScore == nil || *scores.AccessibilityScore != 100 {
		t.Errorf("AccessibilityScore = %v, want 100", scores.AccessibilityScore)
	}
	if scores.BestPracticesScore == nil || *scores.BestPracticesScore != 100 {
		t.Errorf("BestPracticesScore = %v, want 100", scores.BestPracticesScore)
	}
	if len(findings) != 0 {
		t.Errorf("findings = %v, want none", findings)
	}
}

// A page with no title, no meta description, exactly one H1, and three
// images without alt text loses 15+10+6 points: seo_score 69.
func TestScore_ReferenceScenario(t *testing.T) {
	signals := healthySignals()
	signals.Title = nil
	signals.MetaDescription = nil
	signals.Images = imagesWithoutAlt(3)

	scores, findings := NewScorer(DefaultThresholds()).Score(signals)

	if scores.SEOScore != 69 {
		t.Errorf("SEOScore = %v, want 69", scores.SEOScore)
	}
	if signals.MissingAltCount() != 3 {
		t.Errorf("MissingAltCount = %d, want 3", signals.MissingAltCount())
	}
	if scores.BestPracticesScore == nil || *scores.BestPracticesScore != 90 {
		t.Errorf("BestPracticesScore = %v, want 90", scores.BestPracticesScore)
	}
	if len(findings) != 3 {
		t.Errorf("findings = %d, want 3", len(findings))
	}
}

func TestScore_SEOPenalties(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*model.PageSignals)
		expected float64
	}{
		{
			name:     "missing title",
			mutate:   func(s *model.PageSignals) { s.Title = nil },
			expected: 85,
		},
		{
			name:     "title too long",
			mutate:   func(s *model.PageSignals) { s.Title = strPtr(strings.Repeat("x", 61)) },
			expected: 85,
		},
		{
			name:     "missing meta description",
			mutate:   func(s *model.PageSignals) { s.MetaDescription = nil },
			expected: 90,
		},
		{
			name:     "meta description too long",
			mutate:   func(s *model.PageSignals) { s.MetaDescription = strPtr(strings.Repeat("x", 161)) },
			expected: 90,
		},
		{
			name:     "no h1",
			mutate:   func(s *model.PageSignals) { s.H1Tags = nil },
			expected: 90,
		},
		{
			name:     "three h1 tags",
			mutate:   func(s *model.PageSignals) { s.H1Tags = []string{"a", "b", "c"} },
			expected: 90,
		},
		{
			name:     "two images missing alt",
			mutate:   func(s *model.PageSignals) { s.Images = imagesWithoutAlt(2) },
			expected: 96,
		},
		{
			name:     "missing alt penalty capped at 20",
			mutate:   func(s *model.PageSignals) { s.Images = imagesWithoutAlt(50) },
			expected: 80,
		},
		{
			name:     "two broken links",
			mutate:   func(s *model.PageSignals) { s.BrokenLinks = 2 },
			expected: 94,
		},
		{
			name:     "broken link penalty capped at 15",
			mutate:   func(s *model.PageSignals) { s.BrokenLinks = 40 },
			expected: 85,
		},
	}

	scorer := NewScorer(DefaultThresholds())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := healthySignals()
			tt.mutate(&signals)

			scores, _ := scorer.Score(signals)
			if scores.SEOScore != tt.expected {
				t.Errorf("SEOScore = %v, want %v", scores.SEOScore, tt.expected)
			}
		})
	}
}

func TestScore_FloorAtZero(t *testing.T) {
	signals := model.PageSignals{
		Images:      imagesWithoutAlt(50),
		BrokenLinks: 40,
		Accessibility: model.Accessibility{
			MissingLabelsCount: 20,
		},
	}

	scores, _ := NewScorer(DefaultThresholds()).Score(signals)

	// 100 - 15 - 10 - 10 - 20 - 15 = 30; scores never go negative even when
	// a hypothetical heavier policy would push them below zero.
	if scores.SEOScore != 30 {
		t.Errorf("SEOScore = %v, want 30", scores.SEOScore)
	}
	if *scores.AccessibilityScore != 40 {
		t.Errorf("AccessibilityScore = %v, want 40", *scores.AccessibilityScore)
	}
	if *scores.BestPracticesScore != 60 {
		t.Errorf("BestPracticesScore = %v, want 60", *scores.BestPracticesScore)
	}

	for _, score := range collectScores(scores) {
		if score < 0 || score > 100 {
			t.Errorf("score %v outside [0,100]", score)
		}
	}
}

func TestScore_AccessibilityPenalties(t *testing.T) {
	tests := []struct {
		name     string
		acc      model.Accessibility
		expected float64
	}{
		{"clean", model.Accessibility{HasLang: true}, 100},
		{"no lang", model.Accessibility{}, 80},
		{"two missing labels", model.Accessibility{HasLang: true, MissingLabelsCount: 2}, 80},
		{"label penalty capped at 40", model.Accessibility{HasLang: true, MissingLabelsCount: 10}, 60},
		{"everything missing", model.Accessibility{MissingLabelsCount: 10}, 40},
	}

	scorer := NewScorer(DefaultThresholds())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := healthySignals()
			signals.Accessibility = tt.acc

			scores, _ := scorer.Score(signals)
			if scores.AccessibilityScore == nil {
				t.Fatal("AccessibilityScore is nil, want a value")
			}
			if *scores.AccessibilityScore != tt.expected {
				t.Errorf("AccessibilityScore = %v, want %v", *scores.AccessibilityScore, tt.expected)
			}
		})
	}
}

func TestScore_BestPracticesPenalties(t *testing.T) {
	signals := healthySignals()
	signals.BrokenLinks = 10 // 5 points each, capped at 30
	signals.MetaDescription = nil

	scores, _ := NewScorer(DefaultThresholds()).Score(signals)

	if scores.BestPracticesScore == nil {
		t.Fatal("BestPracticesScore is nil, want a value")
	}
	if *scores.BestPracticesScore != 60 {
		t.Errorf("BestPracticesScore = %v, want 60", *scores.BestPracticesScore)
	}
}

func TestScore_PerformanceAbsent(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.PageSignals)
	}{
		{"no load time", func(s *model.PageSignals) { s.LoadTime = 0 }},
		{"no byte size", func(s *model.PageSignals) { s.HTMLBytes = 0 }},
		{"neither", func(s *model.PageSignals) { s.LoadTime = 0; s.HTMLBytes = 0 }},
	}

	scorer := NewScorer(DefaultThresholds())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := healthySignals()
			tt.mutate(&signals)

			scores, _ := scorer.Score(signals)
			if scores.PerformanceScore != nil {
				t.Errorf("PerformanceScore = %v, want nil", *scores.PerformanceScore)
			}
			// Absence of timing data never hides the other sub-scores.
			if scores.AccessibilityScore == nil || scores.BestPracticesScore == nil {
				t.Error("accessibility and best-practices scores must still be present")
			}
		})
	}
}

func TestScore_PerformanceDecay(t *testing.T) {
	tests := []struct {
		name      string
		loadTime  float64
		htmlBytes int
		expected  float64
	}{
		{"fast and small", 0.8, 100_000, 100},
		{"load halfway between thresholds", 5.5, 100_000, 50},
		{"load at slow threshold", 10, 100_000, 0},
		{"size halfway between thresholds", 0.5, 2_750_000, 50},
		{"size at large threshold", 0.5, 5_000_000, 0},
		{"minimum of the two factors wins", 5.5, 2_750_000, 50},
		{"slow load dominates small size", 8.2, 100_000, 20},
	}

	scorer := NewScorer(DefaultThresholds())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := healthySignals()
			signals.LoadTime = tt.loadTime
			signals.HTMLBytes = tt.htmlBytes

			scores, _ := scorer.Score(signals)
			if scores.PerformanceScore == nil {
				t.Fatal("PerformanceScore is nil, want a value")
			}
			if *scores.PerformanceScore != tt.expected {
				t.Errorf("PerformanceScore = %v, want %v", *scores.PerformanceScore, tt.expected)
			}
		})
	}
}

func TestScore_ThinContentFinding(t *testing.T) {
	signals := healthySignals()
	signals.WordCount = 120

	scores, findings := NewScorer(DefaultThresholds()).Score(signals)

	// Word count informs the insights but never moves a score.
	if scores.SEOScore != 100 {
		t.Errorf("SEOScore = %v, want 100", scores.SEOScore)
	}

	var found bool
	for _, f := range findings {
		if strings.Contains(f.Message, "Low word count") {
			found = true
		}
	}
	if !found {
		t.Error("expected a low word count finding")
	}
}

func TestScore_Deterministic(t *testing.T) {
	signals := healthySignals()
	signals.Title = nil
	signals.Images = imagesWithoutAlt(4)
	signals.BrokenLinks = 2

	scorer := NewScorer(DefaultThresholds())

	firstScores, firstFindings := scorer.Score(signals)
	secondScores, secondFindings := scorer.Score(signals)

	if !reflect.DeepEqual(collectScores(firstScores), collectScores(secondScores)) {
		t.Error("Score is not deterministic for identical signals")
	}
	if !reflect.DeepEqual(firstFindings, secondFindings) {
		t.Error("findings are not deterministic for identical signals")
	}
}

func collectScores(b model.ScoreBreakdown) []float64 {
	scores := []float64{b.SEOScore}
	for _, p := range []*float64{b.PerformanceScore, b.AccessibilityScore, b.BestPracticesScore} {
		if p != nil {
			scores = append(scores, *p)
		}
	}
	return scores
}
