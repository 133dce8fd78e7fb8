// CLAUDE:SUMMARY Shared import utilities: HTTP fetch with exponential backoff, tag group builder, dictionary writer.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hazyhaar/tagnorm/pkg/dict"
	"github.com/hazyhaar/tagnorm/pkg/tags"
	"gopkg.in/yaml.v3"
)

const (
	fetchTimeout    = 2 * time.Minute
	fetchMaxElapsed = time.Minute
	fetchMaxRetries = 4
)

// ErrBodyTooLarge is returned when a source serves more than maxFetchBytes.
var ErrBodyTooLarge = errors.New("response body too large")

var maxFetchBytes int64 = 64 << 20

// newFetchBackoff returns a fresh policy per fetch; BackOff values are
// stateful. Tests replace it to avoid real delays.
var newFetchBackoff = func() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxElapsedTime = fetchMaxElapsed
	return backoff.WithMaxRetries(bo, fetchMaxRetries)
}

var httpClient = &http.Client{Timeout: fetchTimeout}

// StatusError is an unexpected HTTP status from an upstream source.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.Status, e.URL)
}

// fetch GETs url and returns the body. 5xx, 429 and network errors are
// retried with exponential backoff; other 4xx fail immediately.
func fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("User-Agent", "tagnorm-importer")

		resp, err := httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			serr := &StatusError{URL: url, Status: resp.StatusCode}
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(serr)
			}
			return serr
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		if int64(len(data)) > maxFetchBytes {
			return backoff.Permanent(fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, maxFetchBytes))
		}
		body = data
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(newFetchBackoff(), ctx)); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	return body, nil
}

// groupSet accumulates canonical -> aliases, keeping first-seen order.
type groupSet struct {
	order  []string
	byName map[string]*tags.Group
	seen   map[string]string
	skip   int
}

func newGroupSet() *groupSet {
	return &groupSet{byName: make(map[string]*tags.Group), seen: make(map[string]string)}
}

// add files aliases under canonical. Aliases already owned by another
// canonical are dropped so that the first upstream claim wins.
func (s *groupSet) add(canonical string, aliases ...string) {
	if canonical == "" {
		s.skip++
		return
	}
	g, ok := s.byName[canonical]
	if !ok {
		g = &tags.Group{Canonical: canonical}
		s.byName[canonical] = g
		s.order = append(s.order, canonical)
	}
	for _, a := range aliases {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" || a == canonical {
			continue
		}
		if owner, ok := s.seen[a]; ok {
			if owner != canonical {
				s.skip++
			}
			continue
		}
		s.seen[a] = canonical
		g.Aliases = append(g.Aliases, a)
	}
}

func (s *groupSet) groups() []tags.Group {
	out := make([]tags.Group, 0, len(s.order))
	for _, c := range s.order {
		out = append(out, *s.byName[c])
	}
	return out
}

// writeDict saves groups as outputDir/m.ID/{data.gob,manifest.yaml}.
func writeDict(outputDir string, m *dict.Manifest, set *groupSet) (*Result, error) {
	dictDir := filepath.Join(outputDir, m.ID)
	if err := ensureDir(dictDir); err != nil {
		return nil, err
	}

	groups := set.groups()
	if err := dict.SaveGob(groups, filepath.Join(dictDir, "data.gob")); err != nil {
		return nil, fmt.Errorf("save gob: %w", err)
	}
	m.DataFile = "data.gob"
	m.Method = dict.MethodAliases
	if err := writeManifest(dictDir, m); err != nil {
		return nil, err
	}

	res := &Result{DictID: m.ID, Groups: len(groups), Skipped: set.skip}
	for _, g := range groups {
		res.Aliases += len(g.Aliases)
	}
	return res, nil
}

// writeManifest writes a Manifest as YAML to dir/manifest.yaml.
func writeManifest(dir string, m *dict.Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "manifest.yaml"), data, 0o644)
}

// ensureDir creates a directory if it doesn't exist.
func ensureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// cleanable reports whether s only loses separators when cleaned, so that
// its canonical form still reads like s ("Ruby on Rails", not "C++").
func cleanable(s string) bool {
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case r == '.', r == '-', r == '_', r == ' ':
		default:
			return false
		}
	}
	return tags.Clean(s) != ""
}

func version() string {
	return time.Now().UTC().Format("2006-01-02")
}
