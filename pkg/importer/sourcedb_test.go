package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// fakeAdapter implements Adapter for seeding and Run tests.
type fakeAdapter struct {
	id, dictID, desc, url, license string

	gotURL string
	err    error
}

func (f *fakeAdapter) ID() string          { return f.id }
func (f *fakeAdapter) DictID() string      { return f.dictID }
func (f *fakeAdapter) Description() string { return f.desc }
func (f *fakeAdapter) DefaultURL() string  { return f.url }
func (f *fakeAdapter) License() string     { return f.license }
func (f *fakeAdapter) Import(_ context.Context, sourceURL, _ string) (*Result, error) {
	f.gotURL = sourceURL
	if f.err != nil {
		return nil, f.err
	}
	return &Result{DictID: f.dictID, Groups: 7}, nil
}

const (
	linguistURL = "https://raw.githubusercontent.com/github-linguist/linguist/main/lib/linguist/languages.yml"
	synonymsURL = "https://api.stackexchange.com/2.3/tags/synonyms?site=stackoverflow"
)

// seededSourceDB opens a fresh database with the linguist and synonyms
// sources registered.
func seededSourceDB(t *testing.T) *SourceDB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.db")
	sdb, err := OpenSourceDB(path)
	if err != nil {
		t.Fatalf("OpenSourceDB: %v", err)
	}
	t.Cleanup(func() { sdb.Close() })
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file missing: %v", err)
	}

	err = sdb.Seed(context.Background(), []Adapter{
		&fakeAdapter{id: "stackexchange-synonyms", dictID: "stackexchange", url: synonymsURL, license: "CC-BY-SA-4.0"},
		&fakeAdapter{id: "linguist-languages", dictID: "linguist", url: linguistURL, license: "MIT"},
	})
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return sdb
}

func sourceByID(t *testing.T, sdb *SourceDB, id string) Source {
	t.Helper()
	sources, err := sdb.ListSources(context.Background())
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	for _, s := range sources {
		if s.AdapterID == id {
			return s
		}
	}
	t.Fatalf("source %q not found", id)
	return Source{}
}

func TestSourceDB_ListSortedByAdapter(t *testing.T) {
	sdb := seededSourceDB(t)
	sources, err := sdb.ListSources(context.Background())
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	var ids []string
	for _, s := range sources {
		ids = append(ids, s.AdapterID)
	}
	if len(ids) != 2 || ids[0] != "linguist-languages" || ids[1] != "stackexchange-synonyms" {
		t.Errorf("adapter order = %v", ids)
	}
}

func TestSourceDB_URLs(t *testing.T) {
	ctx := context.Background()
	sdb := seededSourceDB(t)

	// A mirror set by the operator survives later seeding with new defaults.
	if err := sdb.SetURL(ctx, "linguist-languages", "https://mirror.internal/languages.yml"); err != nil {
		t.Fatalf("SetURL: %v", err)
	}
	if err := sdb.Seed(ctx, []Adapter{&fakeAdapter{id: "stackexchange-synonyms", url: "https://elsewhere.example/synonyms"}}); err != nil {
		t.Fatalf("re-Seed: %v", err)
	}

	tests := []struct {
		id      string
		want    string
		wantErr error
	}{
		{"linguist-languages", "https://mirror.internal/languages.yml", nil},
		{"stackexchange-synonyms", synonymsURL, nil},
		{"wikidata", "", ErrUnknownSource},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := sdb.GetURL(ctx, tt.id)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("GetURL err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("GetURL = %q, want %q", got, tt.want)
			}
		})
	}

	if err := sdb.SetURL(ctx, "wikidata", "https://query.wikidata.org"); !errors.Is(err, ErrUnknownSource) {
		t.Errorf("SetURL on unknown source err = %v, want ErrUnknownSource", err)
	}
}

func TestSourceDB_UpdateCheck(t *testing.T) {
	ctx := context.Background()
	sdb := seededSourceDB(t)

	steps := []struct {
		status  int
		errMsg  string
		wantErr bool
	}{
		{200, "", false},
		{0, "dial tcp: connection refused", true},
		{301, "", false},
	}
	for i, st := range steps {
		if err := sdb.UpdateCheck(ctx, "stackexchange-synonyms", st.status, st.errMsg); err != nil {
			t.Fatalf("step %d: UpdateCheck: %v", i, err)
		}
		src := sourceByID(t, sdb, "stackexchange-synonyms")
		if src.LastStatus == nil || *src.LastStatus != st.status {
			t.Errorf("step %d: last_status = %v, want %d", i, src.LastStatus, st.status)
		}
		if src.LastCheck == nil || *src.LastCheck == 0 {
			t.Errorf("step %d: last_check not set", i)
		}
		if gotErr := src.LastError != nil; gotErr != st.wantErr {
			t.Errorf("step %d: last_error = %v, want set=%v", i, src.LastError, st.wantErr)
		}
	}

	if other := sourceByID(t, sdb, "linguist-languages"); other.LastCheck != nil {
		t.Error("check result leaked into another source")
	}
}

func TestSourceDB_Run(t *testing.T) {
	tests := []struct {
		name       string
		importErr  error
		wantGroups int
		recorded   bool
	}{
		{"success", nil, 7, true},
		{"download fails", errors.New("fetch languages.yml: 503"), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			sdb := seededSourceDB(t)
			if err := sdb.SetURL(ctx, "linguist-languages", "https://mirror.internal/languages.yml"); err != nil {
				t.Fatalf("SetURL: %v", err)
			}

			a := &fakeAdapter{id: "linguist-languages", dictID: "linguist", url: linguistURL, err: tt.importErr}
			res, err := sdb.Run(ctx, a, t.TempDir())
			if !errors.Is(err, tt.importErr) {
				t.Fatalf("Run err = %v, want %v", err, tt.importErr)
			}
			if a.gotURL != "https://mirror.internal/languages.yml" {
				t.Errorf("Import got URL %q, want the stored override", a.gotURL)
			}
			if tt.importErr == nil && res.Groups != tt.wantGroups {
				t.Errorf("Groups = %d, want %d", res.Groups, tt.wantGroups)
			}

			src := sourceByID(t, sdb, "linguist-languages")
			if got := src.LastImport != nil; got != tt.recorded {
				t.Errorf("last_import set = %v, want %v", got, tt.recorded)
			}
			if tt.recorded && (src.ImportGroups == nil || *src.ImportGroups != tt.wantGroups) {
				t.Errorf("import_groups = %v, want %d", src.ImportGroups, tt.wantGroups)
			}
		})
	}
}
