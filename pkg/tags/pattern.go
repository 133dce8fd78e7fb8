// CLAUDE:SUMMARY Ordered regex rewrite rules applied when a cleaned tag is not a known alias (strip ".js", strip "lang"/"language").
package tags

import (
	"fmt"
	"regexp"
)

// Pattern is a fallback rewrite: when Regex matches the cleaned tag, the
// candidate is Regex.ReplaceAllString(tag, Replace).
type Pattern struct {
	Name    string
	Regex   *regexp.Regexp
	Replace string
}

// PatternSpec is the declarative form of a Pattern, as found in manifests.
type PatternSpec struct {
	Name    string `yaml:"name" json:"name"`
	Regex   string `yaml:"regex" json:"regex"`
	Replace string `yaml:"replace" json:"replace"`
}

// DefaultPatterns returns the built-in fallback rules in evaluation order.
func DefaultPatterns() []Pattern {
	return []Pattern{
		// vue.js -> vue, node.js -> node
		{Name: "js-suffix", Regex: regexp.MustCompile(`^(\w+)\.js$`), Replace: "$1"},
		// rustlang -> rust, golanguage -> go
		{Name: "lang-suffix", Regex: regexp.MustCompile(`^(\w+)(?:lang|language)$`), Replace: "$1"},
	}
}

// CompilePatterns builds Patterns from specs, preserving order.
func CompilePatterns(specs []PatternSpec) ([]Pattern, error) {
	out := make([]Pattern, 0, len(specs))
	for _, spec := range specs {
		if spec.Regex == "" {
			return nil, fmt.Errorf("pattern %q: empty regex", spec.Name)
		}
		re, err := regexp.Compile(spec.Regex)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", spec.Name, err)
		}
		out = append(out, Pattern{Name: spec.Name, Regex: re, Replace: spec.Replace})
	}
	return out, nil
}

// rewrite applies the first matching pattern to s. matched reports whether
// any pattern fired; later patterns are never consulted.
func rewrite(patterns []Pattern, s string) (candidate string, matched bool) {
	for _, p := range patterns {
		if !p.Regex.MatchString(s) {
			continue
		}
		return p.Regex.ReplaceAllString(s, p.Replace), true
	}
	return s, false
}
