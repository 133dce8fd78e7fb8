// CLAUDE:SUMMARY Gob serialization of canonical -> aliases maps for fast dictionary loading.
package dict

import (
	"encoding/gob"
	"fmt"
	"os"
	"sort"

	"github.com/hazyhaar/tagnorm/pkg/tags"
)

// loadGob decodes a canonical -> aliases map. Groups come back sorted by
// canonical so that alias precedence does not depend on map order.
func loadGob(path string) ([]tags.Group, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gob file: %w", err)
	}
	defer f.Close()

	var m map[string][]string
	if err := gob.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode gob: %w", err)
	}

	canonicals := make([]string, 0, len(m))
	for c := range m {
		canonicals = append(canonicals, c)
	}
	sort.Strings(canonicals)

	groups := make([]tags.Group, 0, len(m))
	for _, c := range canonicals {
		groups = append(groups, tags.Group{Canonical: c, Aliases: m[c]})
	}
	return groups, nil
}

// SaveGob serializes groups to a gob-encoded file at path. Groups sharing a
// canonical are merged.
func SaveGob(groups []tags.Group, path string) error {
	m := make(map[string][]string, len(groups))
	for _, g := range groups {
		m[g.Canonical] = append(m[g.Canonical], g.Aliases...)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gob file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(m); err != nil {
		return fmt.Errorf("encode gob: %w", err)
	}
	return nil
}
