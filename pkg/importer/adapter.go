package importer

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Adapter downloads an upstream tag vocabulary and writes it as an alias
// dictionary (data.gob + manifest.yaml) that the registry can load.
type Adapter interface {
	// ID returns the unique identifier of this adapter (e.g. "linguist-languages").
	ID() string
	// DictID returns the target dictionary ID (e.g. "languages").
	DictID() string
	// Description returns a human-readable description.
	Description() string
	// DefaultURL returns the source URL used when seeding the source database.
	DefaultURL() string
	// License returns the license of the upstream data.
	License() string
	// Import fetches sourceURL and writes the dictionary into
	// outputDir/DictID().
	Import(ctx context.Context, sourceURL, outputDir string) (*Result, error)
}

// Result summarizes a completed import.
type Result struct {
	DictID  string `json:"dict_id"`
	Groups  int    `json:"groups"`
	Aliases int    `json:"aliases"`
	Skipped int    `json:"skipped"`
}

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// Register adds an adapter to the global registry.
func Register(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	adapters[a.ID()] = a
}

// Get returns a registered adapter by ID.
func Get(id string) (Adapter, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := adapters[id]
	if !ok {
		return nil, fmt.Errorf("unknown import source: %q", id)
	}
	return a, nil
}

// All returns all registered adapters sorted by ID.
func All() []Adapter {
	registryMu.RLock()
	defer registryMu.RUnlock()
	result := make([]Adapter, 0, len(adapters))
	for _, a := range adapters {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result
}
