package tags

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateTags(t *testing.T) {
	got, err := ValidateTags([]string{"Go", " rust ", "web-dev", "snake_case"})
	if err != nil {
		t.Fatalf("ValidateTags: %v", err)
	}
	want := []string{"go", "rust", "web-dev", "snake_case"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ValidateTags = %v, want %v", got, want)
	}
}

func TestValidateTags_Empty(t *testing.T) {
	got, err := ValidateTags(nil)
	if err != nil {
		t.Fatalf("ValidateTags(nil): %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ValidateTags(nil) = %v, want empty", got)
	}
}

func TestValidateTags_Limits(t *testing.T) {
	five := []string{"a", "b", "c", "d", "e"}
	if _, err := ValidateTags(five); err != nil {
		t.Errorf("5 tags rejected: %v", err)
	}
	if _, err := ValidateTags([]string{strings.Repeat("x", MaxTagLength)}); err != nil {
		t.Errorf("%d-char tag rejected: %v", MaxTagLength, err)
	}
}

func TestValidateTags_Errors(t *testing.T) {
	tests := []struct {
		name    string
		tags    []string
		wantErr error
		index   int
	}{
		{"too many", []string{"a", "b", "c", "d", "e", "f"}, ErrTooManyTags, -1},
		{"too long", []string{"ok", strings.Repeat("x", MaxTagLength+1)}, ErrTagTooLong, 1},
		{"charset", []string{"node.js"}, ErrTagCharset, 0},
		{"space inside", []string{"go", "web dev"}, ErrTagCharset, 1},
		{"blank", []string{"go", "  "}, ErrTagEmpty, 1},
		{"duplicate after lowercasing", []string{"Go", "go"}, ErrDuplicateTag, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateTags(tt.tags)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err %T is not *ValidationError", err)
			}
			if verr.Index != tt.index {
				t.Errorf("Index = %d, want %d", verr.Index, tt.index)
			}
		})
	}
}

func TestValidateTags_DuplicateNamesTag(t *testing.T) {
	_, err := ValidateTags([]string{"rust", "Go", "GO"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if verr.Tag != "go" {
		t.Errorf("Tag = %q, want go", verr.Tag)
	}
}

func TestPrepare(t *testing.T) {
	n := New()

	got, err := n.Prepare([]string{"JS", "javascript", "React.js", "Tailwind CSS", "!!!"})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	want := []string{"javascript", "react", "tailwindcss"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Prepare = %v, want %v", got, want)
	}
}

func TestPrepare_Errors(t *testing.T) {
	n := New()

	if _, err := n.Prepare([]string{"asp.net"}); !errors.Is(err, ErrTagCharset) {
		t.Errorf("Prepare(asp.net) err = %v, want ErrTagCharset", err)
	}
	six := []string{"go", "rust", "vue", "react", "docker", "redis"}
	if _, err := n.Prepare(six); !errors.Is(err, ErrTooManyTags) {
		t.Errorf("Prepare(6 tags) err = %v, want ErrTooManyTags", err)
	}
	// Aliases collapse before counting.
	if _, err := n.Prepare([]string{"go", "golang", "Go", "rust", "vue", "react", "docker"}); err != nil {
		t.Errorf("Prepare with collapsing aliases: %v", err)
	}
}
