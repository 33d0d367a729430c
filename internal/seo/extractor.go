package seo

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rohitdas13595/sitesage/internal/model"
)

// Extract parses raw markup into structured page signals. It is a pure
// function of its input and never fails: malformed HTML is parsed
// best-effort and missing elements are reported as absent, not as errors.
//
// The second return value is the list of absolute external http(s) link
// URLs found on the page, for the optional link prober. Fragment-only
// anchors are resolved against the document itself here (a broken fragment
// needs no network call).
func Extract(htmlBody []byte, base *url.URL) (model.PageSignals, []string) {
	signals := model.PageSignals{
		H1Tags:    []string{},
		H2Tags:    []string{},
		Images:    []model.Image{},
		HTMLBytes: len(htmlBody),
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBody))
	if err != nil {
		// Unreadable input; report what we know (the byte size) and move on.
		return signals, nil
	}

	signals.Title = extractTitle(doc)
	signals.MetaDescription = extractMetaDescription(doc)

	doc.Find("h1").Each(func(_ int, s *goquery.Selection) {
		// Empty headings are retained: an empty <h1> is a content-quality
		// signal, not a parsing artifact.
		signals.H1Tags = append(signals.H1Tags, strings.TrimSpace(s.Text()))
	})
	doc.Find("h2").Each(func(_ int, s *goquery.Selection) {
		signals.H2Tags = append(signals.H2Tags, strings.TrimSpace(s.Text()))
	})

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		alt := s.AttrOr("alt", "")
		signals.Images = append(signals.Images, model.Image{
			Src:    resolveRef(base, s.AttrOr("src", "")),
			Alt:    alt,
			HasAlt: strings.TrimSpace(alt) != "",
		})
	})

	signals.Accessibility = extractAccessibility(doc)

	externalLinks, brokenFragments := extractLinks(doc, base)
	signals.BrokenLinks = brokenFragments

	// Word count excludes script/style text. Removal mutates the document,
	// so this runs after every other extraction.
	doc.Find("script, style, noscript").Remove()
	signals.WordCount = len(strings.Fields(doc.Text()))

	return signals, externalLinks
}

// extractTitle returns the trimmed text of the first <title> element, or
// nil when the element is absent or empty after trimming.
func extractTitle(doc *goquery.Document) *string {
	title := doc.Find("title").First()
	if title.Length() == 0 {
		return nil
	}
	text := strings.TrimSpace(title.Text())
	if text == "" {
		return nil
	}
	return &text
}

// extractMetaDescription returns the content attribute of the first
// meta[name=description], matching the name case-insensitively.
func extractMetaDescription(doc *goquery.Document) *string {
	var desc *string
	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.EqualFold(s.AttrOr("name", ""), "description") {
			return true
		}
		content := strings.TrimSpace(s.AttrOr("content", ""))
		if content != "" {
			desc = &content
		}
		return false
	})
	return desc
}

func extractAccessibility(doc *goquery.Document) model.Accessibility {
	lang := strings.TrimSpace(doc.Find("html").First().AttrOr("lang", ""))

	return model.Accessibility{
		HasLang:            lang != "",
		Lang:               lang,
		MissingLabelsCount: countMissingLabels(doc),
	}
}

// countMissingLabels counts interactive elements lacking an accessible
// name: visible text, aria-label, aria-labelledby, a title attribute, or
// (for form controls) an associated <label>.
func countMissingLabels(doc *goquery.Document) int {
	labelledIDs := make(map[string]bool)
	doc.Find("label[for]").Each(func(_ int, s *goquery.Selection) {
		if id := strings.TrimSpace(s.AttrOr("for", "")); id != "" {
			labelledIDs[id] = true
		}
	})

	var missing int

	doc.Find("a, button").Each(func(_ int, s *goquery.Selection) {
		if hasAccessibleName(s) {
			return
		}
		// Image links with alt text carry the image's name.
		if goquery.NodeName(s) == "a" && s.Find("img[alt]").Length() > 0 {
			return
		}
		missing++
	})

	doc.Find("input, select, textarea").Each(func(_ int, s *goquery.Selection) {
		typ := strings.ToLower(s.AttrOr("type", ""))
		switch typ {
		case "hidden":
			return
		case "submit", "button", "reset":
			if strings.TrimSpace(s.AttrOr("value", "")) != "" {
				return
			}
		}

		if hasAccessibleName(s) {
			return
		}
		if id := strings.TrimSpace(s.AttrOr("id", "")); id != "" && labelledIDs[id] {
			return
		}
		if s.ParentsFiltered("label").Length() > 0 {
			return
		}
		missing++
	})

	return missing
}

func hasAccessibleName(s *goquery.Selection) bool {
	if strings.TrimSpace(s.Text()) != "" {
		return true
	}
	for _, attr := range []string{"aria-label", "aria-labelledby", "title"} {
		if strings.TrimSpace(s.AttrOr(attr, "")) != "" {
			return true
		}
	}
	return false
}

// extractLinks walks every anchor once, splitting it into an external probe
// candidate or a same-document fragment reference. Fragments that do not
// resolve to an element id (or legacy <a name>) count as broken.
func extractLinks(doc *goquery.Document, base *url.URL) (external []string, brokenFragments int) {
	ids := make(map[string]bool)
	doc.Find("[id]").Each(func(_ int, s *goquery.Selection) {
		ids[s.AttrOr("id", "")] = true
	})
	doc.Find("a[name]").Each(func(_ int, s *goquery.Selection) {
		ids[s.AttrOr("name", "")] = true
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}

		if strings.HasPrefix(href, "#") {
			fragment := strings.TrimPrefix(href, "#")
			// Bare "#" and "#top" scroll to the top per the HTML spec even
			// without a matching id.
			if fragment == "" || fragment == "top" {
				return
			}
			if !ids[fragment] {
				brokenFragments++
			}
			return
		}

		if base == nil {
			return
		}
		parsed, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(parsed)
		// Skip non-http(s) schemes (mailto:, javascript:, tel:, etc.)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		if strings.EqualFold(resolved.Host, base.Host) {
			return
		}
		external = append(external, resolved.String())
	})

	return external, brokenFragments
}

func resolveRef(base *url.URL, ref string) string {
	if base == nil || ref == "" {
		return ref
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(parsed).String()
}
