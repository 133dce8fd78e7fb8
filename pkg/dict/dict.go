package dict

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hazyhaar/tagnorm/pkg/tags"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Dictionary is one loaded dictionary: either alias groups or rewrite
// patterns, never both.
type Dictionary struct {
	Manifest *Manifest    `json:"manifest"`
	Groups   []tags.Group `json:"-"`
	patterns []tags.Pattern
}

// LoadDictionary reads a manifest.yaml and loads groups from gob or CSV, or
// compiles the declared patterns.
func LoadDictionary(dir string) (*Dictionary, error) {
	manifest, err := LoadManifest(filepath.Join(dir, "manifest.yaml"))
	if err != nil {
		return nil, err
	}

	d := &Dictionary{Manifest: manifest}

	if manifest.Method == MethodPatterns {
		patterns, err := tags.CompilePatterns(manifest.Patterns)
		if err != nil {
			return nil, fmt.Errorf("dict %s: %w", manifest.ID, err)
		}
		d.patterns = patterns
		return d, nil
	}

	// Gob takes priority over CSV.
	gobPath := filepath.Join(dir, "data.gob")
	if _, err := os.Stat(gobPath); err == nil {
		if d.Groups, err = loadGob(gobPath); err != nil {
			return nil, fmt.Errorf("dict %s: %w", manifest.ID, err)
		}
		return d, nil
	}

	if err := d.loadCSV(filepath.Join(dir, manifest.DataFile)); err != nil {
		return nil, fmt.Errorf("dict %s: %w", manifest.ID, err)
	}
	return d, nil
}

// Patterns returns the compiled rewrite rules of a pattern dictionary.
func (d *Dictionary) Patterns() []tags.Pattern {
	return d.patterns
}

// AliasCount returns the number of aliases across all groups.
func (d *Dictionary) AliasCount() int {
	n := 0
	for _, g := range d.Groups {
		n += len(g.Aliases)
	}
	return n
}

func (d *Dictionary) loadCSV(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	format := d.Manifest.Format

	var reader io.Reader = f
	if enc := format.Encoding; enc != "" && !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		reader = transform.NewReader(f, e.NewDecoder())
	}

	r := csv.NewReader(reader)
	if delim := format.Delimiter; delim != "" {
		r.Comma = []rune(delim)[0]
	}
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	r.Comment = '#'

	canonIdx, aliasIdx := 0, -1
	if format.HasHeader {
		header, err := r.Read()
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}
		for i := range header {
			header[i] = strings.TrimSpace(header[i])
		}
		if canonIdx, err = columnIndex(header, format.CanonicalColumn, 0); err != nil {
			return err
		}
		if aliasIdx, err = columnIndex(header, format.AliasesColumn, 1); err != nil {
			return err
		}
	}

	groups := make(map[string]*tags.Group)
	var order []string
	owner := make(map[string]string)
	var collisions int

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}
		if canonIdx >= len(record) {
			continue
		}
		canon := strings.ToLower(strings.TrimSpace(record[canonIdx]))
		if canon == "" {
			continue
		}

		var cells []string
		switch {
		case aliasIdx >= 0 && aliasIdx < len(record):
			cells = record[aliasIdx : aliasIdx+1]
		case aliasIdx < 0:
			cells = record[canonIdx+1:]
		}

		g, ok := groups[canon]
		if !ok {
			g = &tags.Group{Canonical: canon}
			groups[canon] = g
			order = append(order, canon)
		}
		for _, cell := range cells {
			for _, a := range strings.Split(cell, format.AliasSeparator) {
				a = strings.ToLower(strings.TrimSpace(a))
				if a == "" {
					continue
				}
				if prev, ok := owner[a]; ok && prev != canon {
					collisions++
				}
				owner[a] = canon
				if !slices.Contains(g.Aliases, a) {
					g.Aliases = append(g.Aliases, a)
				}
			}
		}
	}

	if collisions > 0 {
		slog.Warn("alias claimed by several canonicals", "dict", d.Manifest.ID, "collisions", collisions)
	}

	d.Groups = make([]tags.Group, 0, len(order))
	for _, c := range order {
		d.Groups = append(d.Groups, *groups[c])
	}
	return nil
}

// columnIndex resolves a named column, or returns def when no name is set.
func columnIndex(header []string, name string, def int) (int, error) {
	if name == "" {
		if def >= len(header) {
			return -1, fmt.Errorf("header %v has no column %d", header, def)
		}
		return def, nil
	}
	for i, h := range header {
		if h == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("column %q not found in header %v", name, header)
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
