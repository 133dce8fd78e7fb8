package dict

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hazyhaar/tagnorm/pkg/tags"
)

// Registry holds the loaded dictionaries and the Normalizer built from them.
type Registry struct {
	mu       sync.RWMutex
	dicts    map[string]*Dictionary
	dictsDir string

	include []string
	exclude []string
	fold    tags.Folder
	logger  *slog.Logger

	norm atomic.Pointer[tags.Normalizer]
}

// Option configures a Registry.
type Option func(*Registry)

// WithInclude restricts loading to dictionary directories whose name
// matches one of the doublestar patterns.
func WithInclude(patterns ...string) Option {
	return func(r *Registry) { r.include = append(r.include, patterns...) }
}

// WithExclude skips dictionary directories whose name matches one of the
// doublestar patterns. Exclusion wins over inclusion.
func WithExclude(patterns ...string) Option {
	return func(r *Registry) { r.exclude = append(r.exclude, patterns...) }
}

// WithFold sets the input folder of every Normalizer the registry builds.
func WithFold(f tags.Folder) Option {
	return func(r *Registry) { r.fold = f }
}

// WithLogger sets the registry logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry creates a registry for dictsDir. Until Load succeeds it serves
// a Normalizer built from the seed alone.
func NewRegistry(dictsDir string, opts ...Option) *Registry {
	r := &Registry{
		dicts:    make(map[string]*Dictionary),
		dictsDir: dictsDir,
		fold:     tags.FoldIdentity,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.norm.Store(r.build(nil, nil))
	return r
}

// Dir returns the dictionary directory.
func (r *Registry) Dir() string {
	return r.dictsDir
}

// Load scans the dicts directory, loads every selected dictionary and swaps
// in a new Normalizer. On error the previous state is kept. A missing
// directory loads nothing.
func (r *Registry) Load() error {
	for _, p := range append(append([]string{}, r.include...), r.exclude...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid dictionary filter %q", p)
		}
	}

	entries, err := os.ReadDir(r.dictsDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read dicts dir %s: %w", r.dictsDir, err)
	}
	if err != nil {
		r.logger.Warn("dictionary directory missing, serving seed only", "dir", r.dictsDir)
	}

	newDicts := make(map[string]*Dictionary)
	dirOf := make(map[string]string)
	for _, entry := range entries {
		if !entry.IsDir() || !r.selected(entry.Name()) {
			continue
		}
		dir := filepath.Join(r.dictsDir, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, "manifest.yaml")); err != nil {
			continue
		}
		d, err := LoadDictionary(dir)
		if err != nil {
			return fmt.Errorf("load dictionary %s: %w", entry.Name(), err)
		}
		if prev, ok := dirOf[d.Manifest.ID]; ok {
			return fmt.Errorf("dictionary id %q declared by both %s and %s", d.Manifest.ID, prev, entry.Name())
		}
		dirOf[d.Manifest.ID] = entry.Name()
		newDicts[d.Manifest.ID] = d
	}

	ids := sortedIDs(newDicts)
	norm := r.build(newDicts, ids)

	r.mu.Lock()
	r.dicts = newDicts
	r.norm.Store(norm)
	r.mu.Unlock()

	r.logger.Info("dictionaries loaded", "dicts", len(newDicts), "canonicals", norm.Len(), "aliases", norm.AliasCount())
	return nil
}

// Reload reloads all dictionaries from disk (hot reload). Callers holding
// the previous Normalizer keep using it unchanged.
func (r *Registry) Reload() error {
	return r.Load()
}

// Normalizer returns the current Normalizer.
func (r *Registry) Normalizer() *tags.Normalizer {
	return r.norm.Load()
}

// build merges the seed with dictionary groups and patterns, in sorted
// dictionary-ID order so later IDs win alias conflicts.
func (r *Registry) build(dicts map[string]*Dictionary, ids []string) *tags.Normalizer {
	opts := []tags.Option{tags.WithFold(r.fold), tags.WithLogger(r.logger)}
	for _, id := range ids {
		d := dicts[id]
		opts = append(opts, tags.WithGroups(d.Groups...), tags.WithPatterns(d.Patterns()...))
	}
	return tags.New(opts...)
}

func (r *Registry) selected(name string) bool {
	if len(r.include) > 0 && !matchAny(r.include, name) {
		return false
	}
	return !matchAny(r.exclude, name)
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

// DictInfo is the public metadata for a loaded dictionary.
type DictInfo struct {
	ID        string `json:"id"`
	Version   string `json:"version"`
	Method    string `json:"method"`
	Source    string `json:"source"`
	SourceURL string `json:"source_url,omitempty"`
	License   string `json:"license"`
	Groups    int    `json:"groups"`
	Aliases   int    `json:"aliases"`
	Patterns  int    `json:"patterns,omitempty"`
}

// ListDicts returns metadata for all loaded dictionaries, sorted by ID.
func (r *Registry) ListDicts() []DictInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]DictInfo, 0, len(r.dicts))
	for _, id := range sortedIDs(r.dicts) {
		d := r.dicts[id]
		infos = append(infos, DictInfo{
			ID:        d.Manifest.ID,
			Version:   d.Manifest.Version,
			Method:    d.Manifest.Method,
			Source:    d.Manifest.Source,
			SourceURL: d.Manifest.SourceURL,
			License:   d.Manifest.License,
			Groups:    len(d.Groups),
			Aliases:   d.AliasCount(),
			Patterns:  len(d.Patterns()),
		})
	}
	return infos
}

// DictCount returns the number of loaded dictionaries.
func (r *Registry) DictCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.dicts)
}

// TotalAliases returns the number of aliases across all loaded dictionaries,
// seed excluded.
func (r *Registry) TotalAliases() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, d := range r.dicts {
		total += d.AliasCount()
	}
	return total
}

func sortedIDs(dicts map[string]*Dictionary) []string {
	ids := make([]string, 0, len(dicts))
	for id := range dicts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
