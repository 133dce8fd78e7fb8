// CLAUDE:SUMMARY Import adapter for GitHub Linguist languages.yml: one group per programming/markup language.
package importer

import (
	"context"
	"fmt"
	"sort"

	"github.com/hazyhaar/tagnorm/pkg/dict"
	"github.com/hazyhaar/tagnorm/pkg/tags"
	"gopkg.in/yaml.v3"
)

func init() {
	Register(&linguistAdapter{})
}

type linguistAdapter struct{}

func (a *linguistAdapter) ID() string     { return "linguist-languages" }
func (a *linguistAdapter) DictID() string { return "languages" }
func (a *linguistAdapter) Description() string {
	return "GitHub Linguist language names and aliases"
}
func (a *linguistAdapter) DefaultURL() string {
	return "https://raw.githubusercontent.com/github-linguist/linguist/main/lib/linguist/languages.yml"
}
func (a *linguistAdapter) License() string { return "MIT" }

// linguistLanguage is the subset of a languages.yml entry we read.
type linguistLanguage struct {
	Type    string   `yaml:"type"`
	Aliases []string `yaml:"aliases"`
}

var linguistTypes = map[string]bool{"programming": true, "markup": true}

func (a *linguistAdapter) Import(ctx context.Context, sourceURL, outputDir string) (*Result, error) {
	body, err := fetch(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	var langs map[string]linguistLanguage
	if err := yaml.Unmarshal(body, &langs); err != nil {
		return nil, fmt.Errorf("parse languages.yml: %w", err)
	}

	names := make([]string, 0, len(langs))
	for name := range langs {
		names = append(names, name)
	}
	sort.Strings(names)

	set := newGroupSet()
	for _, name := range names {
		lang := langs[name]
		if !linguistTypes[lang.Type] {
			continue
		}
		set.add(linguistCanonical(name, lang.Aliases), append([]string{name}, lang.Aliases...)...)
	}

	return writeDict(outputDir, &dict.Manifest{
		ID:        a.DictID(),
		Version:   version(),
		Source:    "GitHub Linguist",
		SourceURL: sourceURL,
		License:   a.License(),
	}, set)
}

// linguistCanonical picks the cleaned language name when it survives
// cleaning, else the first alias that does ("C#" -> "csharp").
func linguistCanonical(name string, aliases []string) string {
	if cleanable(name) {
		return tags.Clean(name)
	}
	for _, a := range aliases {
		if cleanable(a) {
			return tags.Clean(a)
		}
	}
	return ""
}
