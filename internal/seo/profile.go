package seo

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadThresholds reads a YAML scoring profile from path and overlays it on
// the default thresholds; fields the profile omits keep their defaults.
// An empty path returns the defaults unchanged.
func LoadThresholds(path string) (Thresholds, error) {
	t := DefaultThresholds()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("scoring profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("scoring profile: %w", err)
	}

	if err := t.validate(); err != nil {
		return t, err
	}
	return t, nil
}

func (t Thresholds) validate() error {
	if t.TitleMaxLength <= 0 || t.MetaDescMaxLength <= 0 {
		return fmt.Errorf("scoring profile: length limits must be positive")
	}
	if t.FastLoadSeconds <= 0 || t.SlowLoadSeconds <= t.FastLoadSeconds {
		return fmt.Errorf("scoring profile: slow_load_seconds must exceed fast_load_seconds")
	}
	if t.SmallPageBytes <= 0 || t.LargePageBytes <= t.SmallPageBytes {
		return fmt.Errorf("scoring profile: large_page_bytes must exceed small_page_bytes")
	}
	return nil
}
