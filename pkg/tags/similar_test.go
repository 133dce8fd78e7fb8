package tags

import "testing"

func TestFindSimilarTag(t *testing.T) {
	n := New()
	tests := []struct {
		name     string
		newTag   string
		existing []string
		want     string
		found    bool
	}{
		{"typo of short tag", "webd", []string{"web", "javascript"}, "web", true},
		{"unrelated compound", "reactnative", []string{"react"}, "", false},
		{"version variants", "vue3", []string{"vue2"}, "", false},
		{"exact match skipped", "javascript", []string{"javascript"}, "", false},
		{"alias of existing is exact", "JS", []string{"javascript"}, "", false},
		{"trailing typo", "reactt", []string{"react", "vue"}, "react", true},
		{"original casing returned", "webd", []string{"Web"}, "Web", true},
		{"first match wins", "reactt", []string{"vue", "React", "reac"}, "React", true},
		{"short tag stays distinct", "jsx", []string{"js"}, "", false},
		{"short inside long", "css", []string{"tailwindcss"}, "", false},
		{"empty new tag", "", []string{"web"}, "", false},
		{"no existing tags", "web", nil, "", false},
		{"new tag normalizes to nothing", "!!!", []string{"a"}, "", false},
		{"existing normalizes to nothing", "a", []string{"", "?!"}, "", false},
		{"blank existing skipped before match", "webd", []string{"", "web"}, "web", true},
		{"plural", "trees-graph", []string{"treesgraphs"}, "treesgraphs", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := n.FindSimilarTag(tt.newTag, tt.existing)
			if ok != tt.found || got != tt.want {
				t.Errorf("FindSimilarTag(%q, %v) = %q, %v, want %q, %v", tt.newTag, tt.existing, got, ok, tt.want, tt.found)
			}
		})
	}
}

func TestIsSimilar(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		// short tags: length diff <= 1 and containment
		{"web", "webd", true},
		{"webd", "web", true},
		{"ab", "abc", true},
		{"abc", "xabc", true},
		{"ab", "abcd", false},
		{"js", "json", false},
		{"abc", "abd", false},

		// longer tags: length diff <= 2 and containment
		{"react", "reactt", true},
		{"react", "reactjs", true},
		{"kotlin", "kotlinxx", true},
		{"kotlin", "kotlinxxx", false},
		{"react", "reactnat", false},
		{"react", "reactnative", false},
		{"abcd", "abxd", false},
		{"tree", "trees", true},

		// numeric suffixes over the same base are distinct
		{"vue2", "vue3", false},
		{"vue", "vue3", false},
		{"python", "python3", false},
		{"web2", "web", false},
		{"12", "123", false},
	}
	for _, tt := range tests {
		if got := IsSimilar(tt.a, tt.b); got != tt.want {
			t.Errorf("IsSimilar(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestStripNumericSuffix(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"vue3", "vue"},
		{"python310", "python"},
		{"python", "python"},
		{"html5x", "html5x"},
		{"123", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := stripNumericSuffix(tt.input); got != tt.want {
			t.Errorf("stripNumericSuffix(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
