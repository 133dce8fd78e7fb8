package importer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hazyhaar/tagnorm/pkg/dict"
)

// fastBackoff removes retry delays for the duration of a test.
func fastBackoff(t *testing.T) {
	t.Helper()
	prev := newFetchBackoff
	newFetchBackoff = func() backoff.BackOff {
		return backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Millisecond), 2)
	}
	t.Cleanup(func() { newFetchBackoff = prev })
}

func TestFetch(t *testing.T) {
	fastBackoff(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello world"))
	}))
	defer ts.Close()

	body, err := fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(body) != "hello world" {
		t.Errorf("body = %q, want hello world", body)
	}
}

func TestFetch_Retry(t *testing.T) {
	fastBackoff(t)
	var attempts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	if _, err := fetch(context.Background(), ts.URL); err != nil {
		t.Fatalf("fetch with retries: %v", err)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestFetch_AllFail(t *testing.T) {
	fastBackoff(t)
	var attempts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := fetch(context.Background(), ts.URL)
	var serr *StatusError
	if !errors.As(err, &serr) || serr.Status != http.StatusInternalServerError {
		t.Fatalf("err = %v, want StatusError 500", err)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3 (1 + 2 retries)", got)
	}
}

func TestFetch_ClientErrorIsPermanent(t *testing.T) {
	fastBackoff(t)
	var attempts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	if _, err := fetch(context.Background(), ts.URL); err == nil {
		t.Fatal("expected error for 404")
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

func TestFetch_BodyLimit(t *testing.T) {
	fastBackoff(t)
	prev := maxFetchBytes
	maxFetchBytes = 8
	t.Cleanup(func() { maxFetchBytes = prev })

	tests := []struct {
		body    string
		wantErr bool
	}{
		{"12345678", false},
		{"123456789", true},
	}
	for _, tt := range tests {
		var attempts atomic.Int32
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.Write([]byte(tt.body))
		}))
		body, err := fetch(context.Background(), ts.URL)
		ts.Close()

		if tt.wantErr {
			if !errors.Is(err, ErrBodyTooLarge) {
				t.Errorf("%d bytes: err = %v, want ErrBodyTooLarge", len(tt.body), err)
			}
			if got := attempts.Load(); got != 1 {
				t.Errorf("%d bytes: attempts = %d, want 1", len(tt.body), got)
			}
			continue
		}
		if err != nil || string(body) != tt.body {
			t.Errorf("%d bytes: body = %q, err = %v", len(tt.body), body, err)
		}
	}
}

func TestFetch_Cancelled(t *testing.T) {
	fastBackoff(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := fetch(ctx, "http://127.0.0.1:1"); err == nil {
		t.Fatal("expected error on cancelled context")
	}
}

func TestGroupSet(t *testing.T) {
	s := newGroupSet()
	s.add("react", "React", "reactjs", "react")
	s.add("preact", "reactjs", "preact.js")
	s.add("", "orphan")
	s.add("react", "react.js")

	groups := s.groups()
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	if got := strings.Join(groups[0].Aliases, ","); got != "reactjs,react.js" {
		t.Errorf("react aliases = %q", got)
	}
	if got := strings.Join(groups[1].Aliases, ","); got != "preact.js" {
		t.Errorf("preact aliases = %q (reactjs already claimed)", got)
	}
	if s.skip != 2 {
		t.Errorf("skip = %d, want 2", s.skip)
	}
}

func TestCleanable(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"Ruby on Rails", true},
		{"ASP.NET", true},
		{"objective-c", true},
		{"C++", false},
		{"C#", false},
		{"Élixir", false},
		{"---", false},
	}
	for _, tt := range tests {
		if got := cleanable(tt.input); got != tt.want {
			t.Errorf("cleanable(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestWriteDict(t *testing.T) {
	dir := t.TempDir()
	s := newGroupSet()
	s.add("zig", "ziglang")
	s.add("nim", "nimrod", "nim-lang")

	res, err := writeDict(dir, &dict.Manifest{ID: "test-dict", Version: "2026-10-19", Source: "test", License: "CC0"}, s)
	if err != nil {
		t.Fatalf("writeDict: %v", err)
	}
	if res.Groups != 2 || res.Aliases != 3 {
		t.Errorf("result = %+v", res)
	}

	d, err := dict.LoadDictionary(filepath.Join(dir, "test-dict"))
	if err != nil {
		t.Fatalf("LoadDictionary: %v", err)
	}
	if d.Manifest.DataFile != "data.gob" || d.Manifest.Method != dict.MethodAliases {
		t.Errorf("manifest = %+v", d.Manifest)
	}
	if d.AliasCount() != 3 {
		t.Errorf("AliasCount = %d, want 3", d.AliasCount())
	}
}
