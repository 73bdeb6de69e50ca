package codegen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// FormatVersions is the range of format description versions this
// generator understands.
const FormatVersions = ">= 1.0.0, < 2.0.0"

// FormatRule adjusts the text emitted around one construct. Rule
// names are construct keywords: "@implementation", "@protocol",
// "@import", "function", "if", "for", "for-in", "while", "do-while",
// "switch", "try", "var" and "return".
type FormatRule struct {
	Before string `json:"before,omitempty"`
	After  string `json:"after,omitempty"`
}

// FormatConfig controls the layout of generated code. A zero value
// falls back to the default four-space layout, so a partially filled
// description behaves sensibly.
type FormatConfig struct {
	Version      string                `json:"version,omitempty"`
	IndentString string                `json:"indent-string,omitempty"`
	IndentWidth  int                   `json:"indent-width,omitempty"`
	Rules        map[string]FormatRule `json:"rules,omitempty"`
}

// DefaultFormat returns the standard layout: four spaces per level,
// no extra spacing rules.
func DefaultFormat() *FormatConfig {
	return &FormatConfig{
		Version:      "1.0.0",
		IndentString: " ",
		IndentWidth:  4,
	}
}

// IndentUnit returns the text of one indentation level.
func (c *FormatConfig) IndentUnit() string {
	s := c.IndentString
	if s == "" {
		s = " "
	}
	w := c.IndentWidth
	if w <= 0 {
		w = 4
	}
	return strings.Repeat(s, w)
}

// Before returns the text inserted before a construct.
func (c *FormatConfig) Before(name string) string {
	return c.Rules[name].Before
}

// After returns the text inserted after a construct.
func (c *FormatConfig) After(name string) string {
	return c.Rules[name].After
}

// ParseFormat decodes a JSON format description and validates its
// version against FormatVersions. A description without a version is
// accepted as current.
func ParseFormat(data []byte) (*FormatConfig, error) {
	var cfg FormatConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid format description: %w", err)
	}
	if cfg.Version != "" {
		v, err := semver.NewVersion(cfg.Version)
		if err != nil {
			return nil, fmt.Errorf("invalid format description version %q: %w", cfg.Version, err)
		}
		supported, err := semver.NewConstraint(FormatVersions)
		if err != nil {
			return nil, err
		}
		if !supported.Check(v) {
			return nil, fmt.Errorf("format description version %s is outside the supported range %s",
				cfg.Version, FormatVersions)
		}
	}
	return &cfg, nil
}
