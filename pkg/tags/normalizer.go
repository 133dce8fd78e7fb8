// CLAUDE:SUMMARY TagNormalizer: canonical/alias tables, cached Normalize, alias and variation queries.
package tags

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Normalizer maps free-text tags to canonical identifiers. The dictionary,
// alias index and patterns are fixed at construction; only the cache grows.
// A Normalizer is safe for concurrent use.
type Normalizer struct {
	// canonical -> aliases, canonical always included.
	canonical map[string][]string
	order     []string

	// alias -> canonical, verbatim aliases only.
	aliases map[string]string
	// cleaned alias spelling -> canonical, for aliases containing characters
	// the input filter removes (react-jsx is typed, reactjsx is looked up).
	cleaned map[string]string

	patterns []Pattern
	fold     Folder
	logger   *slog.Logger

	mu    sync.RWMutex
	cache map[string]string // never evicted

	hits   atomic.Uint64
	misses atomic.Uint64
}

// Option configures a Normalizer at construction.
type Option func(*config)

type config struct {
	seed     bool
	groups   []Group
	patterns []Pattern
	fold     Folder
	logger   *slog.Logger
}

// WithGroups adds dictionary groups after the seed. A group whose canonical
// already exists extends its alias list; an alias claimed by two canonicals
// resolves to the one added last.
func WithGroups(groups ...Group) Option {
	return func(c *config) { c.groups = append(c.groups, groups...) }
}

// WithPatterns appends fallback patterns after the defaults.
func WithPatterns(patterns ...Pattern) Option {
	return func(c *config) { c.patterns = append(c.patterns, patterns...) }
}

// WithoutSeed starts from an empty dictionary instead of Seed().
func WithoutSeed() Option {
	return func(c *config) { c.seed = false }
}

// WithFold sets the input folder (default FoldIdentity).
func WithFold(f Folder) Option {
	return func(c *config) {
		if f != nil {
			c.fold = f
		}
	}
}

// WithLogger sets the logger used to report dictionary collisions.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// New builds a Normalizer.
func New(opts ...Option) *Normalizer {
	cfg := config{
		seed:     true,
		patterns: DefaultPatterns(),
		fold:     FoldIdentity,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var groups []Group
	if cfg.seed {
		groups = append(groups, seed...)
	}
	groups = append(groups, cfg.groups...)

	n := &Normalizer{
		canonical: make(map[string][]string, len(groups)),
		aliases:   make(map[string]string, len(groups)*3),
		cleaned:   make(map[string]string),
		patterns:  cfg.patterns,
		fold:      cfg.fold,
		logger:    cfg.logger,
		cache:     make(map[string]string),
	}
	n.build(groups)
	return n
}

func (n *Normalizer) build(groups []Group) {
	for _, g := range groups {
		canon := strings.ToLower(strings.TrimSpace(g.Canonical))
		if canon == "" {
			continue
		}
		existing, ok := n.canonical[canon]
		if !ok {
			n.order = append(n.order, canon)
			existing = []string{}
		}
		for _, a := range append([]string{canon}, g.Aliases...) {
			a = strings.ToLower(strings.TrimSpace(a))
			if a != "" && !containsString(existing, a) {
				existing = append(existing, a)
			}
		}
		n.canonical[canon] = existing
	}

	var collisions int
	for _, canon := range n.order {
		for _, a := range n.canonical[canon] {
			if prev, ok := n.aliases[a]; ok && prev != canon {
				collisions++
			}
			n.aliases[a] = canon
		}
	}
	// Canonicals are reflexive even when a later group claimed them as alias.
	for _, canon := range n.order {
		n.aliases[canon] = canon
	}

	ambiguous := make(map[string]bool)
	for _, canon := range n.order {
		for _, a := range n.canonical[canon] {
			c := cleanTag(a)
			if c == "" || c == a {
				continue
			}
			if _, ok := n.aliases[c]; ok {
				continue
			}
			if prev, ok := n.cleaned[c]; ok && prev != n.aliases[a] {
				ambiguous[c] = true
				continue
			}
			n.cleaned[c] = n.aliases[a]
		}
	}
	for c := range ambiguous {
		delete(n.cleaned, c)
	}

	if collisions > 0 || len(ambiguous) > 0 {
		n.logger.Warn("tag dictionary collisions", "aliases", collisions, "ambiguous_spellings", len(ambiguous))
	}
}

// Normalize converts raw tag text to its canonical form. Empty input yields
// "". Results are cached under the lowercased input.
func (n *Normalizer) Normalize(tag string) string {
	if tag == "" {
		return ""
	}

	key := strings.ToLower(tag)
	n.mu.RLock()
	cached, ok := n.cache[key]
	n.mu.RUnlock()
	if ok {
		n.hits.Add(1)
		return cached
	}
	n.misses.Add(1)

	result := n.resolve(tag)

	n.mu.Lock()
	n.cache[key] = result
	n.mu.Unlock()
	return result
}

func (n *Normalizer) resolve(tag string) string {
	folded := strings.ToLower(n.fold(tag))
	s := cleanTag(strings.TrimSpace(folded))

	if c, ok := n.lookup(s); ok {
		return c
	}

	if candidate, matched := rewrite(n.patterns, s); matched {
		if c, ok := n.lookup(candidate); ok {
			return c
		}
		s = candidate
	}

	s = collapseDots(cleanTag(s))
	s = strings.Trim(s, ".")
	if s == "" {
		return alnumOnly(folded)
	}
	return s
}

func (n *Normalizer) lookup(s string) (string, bool) {
	if c, ok := n.aliases[s]; ok {
		return c, true
	}
	c, ok := n.cleaned[s]
	return c, ok
}

// GetAliases returns a copy of the aliases of canonical, or nil if canonical
// is not in the dictionary.
func (n *Normalizer) GetAliases(canonical string) []string {
	if canonical == "" {
		return nil
	}
	aliases, ok := n.canonical[canonical]
	if !ok {
		return nil
	}
	return append([]string(nil), aliases...)
}

// GetVariations returns every alias whose index entry points at canonical,
// found by scanning the alias index. Sorted.
func (n *Normalizer) GetVariations(canonical string) []string {
	var out []string
	for alias, c := range n.aliases {
		if c == canonical {
			out = append(out, alias)
		}
	}
	sort.Strings(out)
	return out
}

// IsCanonical reports whether tag needed no alias substitution, only
// cosmetic cleanup.
func (n *Normalizer) IsCanonical(tag string) bool {
	return n.Normalize(tag) == alnumOnly(strings.ToLower(tag))
}

// Canonicals returns every canonical tag in dictionary order.
func (n *Normalizer) Canonicals() []string {
	return append([]string(nil), n.order...)
}

// Len returns the number of canonical tags.
func (n *Normalizer) Len() int {
	return len(n.order)
}

// AliasCount returns the number of entries in the alias index.
func (n *Normalizer) AliasCount() int {
	return len(n.aliases)
}

// CacheStats describes the normalization cache.
type CacheStats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

// Stats returns a snapshot of cache counters.
func (n *Normalizer) Stats() CacheStats {
	n.mu.RLock()
	entries := len(n.cache)
	n.mu.RUnlock()
	return CacheStats{Entries: entries, Hits: n.hits.Load(), Misses: n.misses.Load()}
}

// Clean applies the character rules of Normalize without any dictionary or
// pattern: lowercase, keep [a-z0-9.], collapse and trim dots. Importers use
// it to derive canonical forms.
func Clean(tag string) string {
	s := collapseDots(cleanTag(strings.ToLower(strings.TrimSpace(tag))))
	return strings.Trim(s, ".")
}

// cleanTag keeps [a-z0-9.] only. Input must already be lowercased.
func cleanTag(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, s)
}

// alnumOnly keeps [a-z0-9] only.
func alnumOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, s)
}

func collapseDots(s string) string {
	if !strings.Contains(s, "..") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	prevDot := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '.' {
			if prevDot {
				continue
			}
			prevDot = true
		} else {
			prevDot = false
		}
		b.WriteByte(c)
	}
	return b.String()
}

func containsString(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
