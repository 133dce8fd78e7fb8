package tags

import (
	"regexp"
	"sort"
	"strings"
	"sync"
	"testing"
)

func TestNormalize(t *testing.T) {
	n := New()
	tests := []struct {
		input, want string
	}{
		{"", ""},
		{"js", "javascript"},
		{"JS", "javascript"},
		{"Js", "javascript"},
		{"React.JS", "react"},
		{"react-jsx", "react"},
		{"Vue.js", "vue"},
		{"React.js", "react"},
		{"Svelte.js", "svelte"},
		{"node.js", "nodejs"},
		{"Rustlang", "rust"},
		{"golanguage", "golang"},
		{"  Tailwind CSS  ", "tailwindcss"},
		{"React Native", "reactnative"},
		{"k8s", "kubernetes"},
		{"vue2", "vue2"},
		{"vue3", "vue3"},
		{"Python3.9", "python3.9"},
		{"svelte-kit", "sveltekit"},
		{"foo..bar", "foo.bar"},
		{".hidden.", "hidden"},
		{"foo.js", "foo"},
		{"kotlinlang", "kotlin"},
		{"a.b.js", "a.b.js"},
		{"C++", "c"},
		{"!!!", ""},
		{"...", ""},
		{"Élixir", "lixir"},
	}
	for _, tt := range tests {
		got := n.Normalize(tt.input)
		if got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	n := New()
	inputs := []string{
		"js", "React.JS", "react-jsx", "Vue.js", "node.js", "Rustlang", "Tailwind CSS",
		"vue2", "Python3.9", "svelte-kit", "foo..bar", ".hidden.", "foo.js", "C++", "Élixir",
		"kotlinlang", "web-development", "K8S",
	}
	inputs = append(inputs, n.Canonicals()...)
	for _, in := range inputs {
		once := n.Normalize(in)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("Normalize(Normalize(%q)) = %q, want %q", in, twice, once)
		}
	}
}

// A single pattern pass strips one suffix only, so doubled suffixes take
// two calls to settle.
func TestNormalize_SinglePatternPass(t *testing.T) {
	n := New()
	tests := []struct {
		input, once, twice string
	}{
		{"rustlanglang", "rustlang", "rust"},
		{"golanguagelang", "golanguage", "golang"},
	}
	for _, tt := range tests {
		once := n.Normalize(tt.input)
		if once != tt.once {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, once, tt.once)
		}
		if twice := n.Normalize(once); twice != tt.twice {
			t.Errorf("Normalize(%q) = %q, want %q", once, twice, tt.twice)
		}
	}
}

func TestNormalize_CanonicalsMapToThemselves(t *testing.T) {
	n := New()
	for _, c := range n.Canonicals() {
		if got := n.Normalize(c); got != c {
			t.Errorf("Normalize(%q) = %q, want itself", c, got)
		}
	}
}

func TestNormalize_AliasConvergence(t *testing.T) {
	n := New()
	for _, g := range Seed() {
		for _, alias := range g.Aliases {
			variants := []string{
				alias,
				strings.ToUpper(alias),
				strings.ToUpper(alias[:1]) + alias[1:],
			}
			for _, v := range variants {
				if got := n.Normalize(v); got != g.Canonical {
					t.Errorf("Normalize(%q) = %q, want %q", v, got, g.Canonical)
				}
			}
		}
	}
}

func TestNormalize_VersionsStayDistinct(t *testing.T) {
	n := New()
	v2, v3 := n.Normalize("vue2"), n.Normalize("vue3")
	if v2 == v3 {
		t.Errorf("vue2 and vue3 both normalized to %q", v2)
	}
	if v2 == "vue" || v3 == "vue" {
		t.Errorf("version collapsed to base: vue2=%q vue3=%q", v2, v3)
	}
}

func TestNormalize_Cache(t *testing.T) {
	n := New()

	first := n.Normalize("React.js")
	second := n.Normalize("REACT.JS")
	if first != second {
		t.Fatalf("cached result %q differs from %q", second, first)
	}

	st := n.Stats()
	if st.Entries != 1 {
		t.Errorf("cache entries = %d, want 1", st.Entries)
	}
	if st.Misses != 1 || st.Hits != 1 {
		t.Errorf("hits=%d misses=%d, want 1/1", st.Hits, st.Misses)
	}

	n.Normalize("")
	if got := n.Stats().Entries; got != 1 {
		t.Errorf("empty input was cached: entries = %d", got)
	}
}

func TestNormalize_Concurrent(t *testing.T) {
	n := New()
	inputs := []string{"js", "Vue.js", "k8s", "svelte-kit", "React Native", "vue3"}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				n.Normalize(inputs[j%len(inputs)])
			}
		}()
	}
	wg.Wait()

	if got := n.Stats().Entries; got != len(inputs) {
		t.Errorf("cache entries = %d, want %d", got, len(inputs))
	}
	if got := n.Normalize("k8s"); got != "kubernetes" {
		t.Errorf("Normalize(k8s) = %q after concurrent use", got)
	}
}

func TestGetAliases(t *testing.T) {
	n := New()

	got := n.GetAliases("react")
	want := []string{"react", "reactjs", "react.js", "react-jsx"}
	if !sameSet(got, want) {
		t.Errorf("GetAliases(react) = %v, want %v", got, want)
	}

	got[0] = "mutated"
	if n.GetAliases("react")[0] == "mutated" {
		t.Error("GetAliases returned the internal slice")
	}

	if got := n.GetAliases("nope"); len(got) != 0 {
		t.Errorf("GetAliases(nope) = %v, want empty", got)
	}
	if got := n.GetAliases(""); len(got) != 0 {
		t.Errorf("GetAliases(\"\") = %v, want empty", got)
	}
}

func TestGetAliases_IncludesCanonical(t *testing.T) {
	n := New()
	if !containsString(n.GetAliases("webdevelopment"), "webdevelopment") {
		t.Error("canonical missing from its own alias list")
	}
}

func TestGetVariations_MatchesGetAliases(t *testing.T) {
	n := New()
	for _, c := range n.Canonicals() {
		aliases := n.GetAliases(c)
		variations := n.GetVariations(c)
		if !sameSet(aliases, variations) {
			t.Errorf("%s: aliases %v != variations %v", c, aliases, variations)
		}
	}
	if got := n.GetVariations("nope"); len(got) != 0 {
		t.Errorf("GetVariations(nope) = %v, want empty", got)
	}
}

func TestIsCanonical(t *testing.T) {
	n := New()
	tests := []struct {
		tag  string
		want bool
	}{
		{"react", true},
		{"React.js", false},
		{"js", false},
		{"Tailwind CSS", true},
		{"unknowntag", true},
		{"k8s", false},
	}
	for _, tt := range tests {
		if got := n.IsCanonical(tt.tag); got != tt.want {
			t.Errorf("IsCanonical(%q) = %v, want %v", tt.tag, got, tt.want)
		}
	}
}

func TestWithGroups_ExtendsCanonical(t *testing.T) {
	n := New(WithGroups(Group{Canonical: "react", Aliases: []string{"preact-compat"}}))

	if got := n.Normalize("preact-compat"); got != "react" {
		t.Errorf("Normalize(preact-compat) = %q, want react", got)
	}
	if !containsString(n.GetAliases("react"), "react.js") {
		t.Error("seed aliases lost when extending react")
	}
}

func TestWithGroups_LastWriteWins(t *testing.T) {
	n := New(WithGroups(Group{Canonical: "ecma", Aliases: []string{"es6"}}))
	if got := n.Normalize("es6"); got != "ecma" {
		t.Errorf("Normalize(es6) = %q, want ecma", got)
	}
}

func TestWithGroups_CanonicalStaysReflexive(t *testing.T) {
	n := New(WithGroups(Group{Canonical: "jsframeworks", Aliases: []string{"react"}}))
	if got := n.Normalize("react"); got != "react" {
		t.Errorf("Normalize(react) = %q, want react", got)
	}
}

func TestWithoutSeed(t *testing.T) {
	n := New(WithoutSeed(), WithGroups(Group{Canonical: "zig", Aliases: []string{"ziglang"}}))

	if n.Len() != 1 {
		t.Fatalf("Len = %d, want 1", n.Len())
	}
	if got := n.Normalize("js"); got != "js" {
		t.Errorf("Normalize(js) = %q, want js without seed", got)
	}
	if got := n.Normalize("Ziglang"); got != "zig" {
		t.Errorf("Normalize(Ziglang) = %q, want zig", got)
	}
}

func TestPatterns_FirstMatchOnly(t *testing.T) {
	late := Pattern{Name: "jslang", Regex: regexp.MustCompile(`^(\w+)jslang$`), Replace: "$1"}
	n := New(WithoutSeed(), WithGroups(Group{Canonical: "zig"}), WithPatterns(late))

	// lang-suffix fires first and yields "zigjs"; the later rule is never tried.
	if got := n.Normalize("zigjslang"); got != "zigjs" {
		t.Errorf("Normalize(zigjslang) = %q, want zigjs", got)
	}
}

func TestPatterns_Custom(t *testing.T) {
	specs := []PatternSpec{{Name: "framework", Regex: `^(\w+)framework$`, Replace: "$1"}}
	patterns, err := CompilePatterns(specs)
	if err != nil {
		t.Fatalf("CompilePatterns: %v", err)
	}
	n := New(WithPatterns(patterns...))
	if got := n.Normalize("Django Framework"); got != "django" {
		t.Errorf("Normalize(Django Framework) = %q, want django", got)
	}
}

func TestAmbiguousCleanedSpellings(t *testing.T) {
	n := New(WithoutSeed(), WithGroups(
		Group{Canonical: "csharp", Aliases: []string{"c#"}},
		Group{Canonical: "cpp", Aliases: []string{"c++"}},
	))
	if got := n.Normalize("c#"); got != "c" {
		t.Errorf("Normalize(c#) = %q, want c (ambiguous spelling)", got)
	}
	if got := n.Normalize("csharp"); got != "csharp" {
		t.Errorf("Normalize(csharp) = %q, want csharp", got)
	}
}

func TestDefaultFunctions(t *testing.T) {
	if got := NormalizeTag("JS"); got != "javascript" {
		t.Errorf("NormalizeTag(JS) = %q, want javascript", got)
	}
	if got, ok := FindSimilarTag("webd", []string{"web", "javascript"}); !ok || got != "web" {
		t.Errorf("FindSimilarTag = %q, %v, want web, true", got, ok)
	}
	if got := GetAliasesForCanonical("kubernetes"); !sameSet(got, []string{"k8s", "kubernetes"}) {
		t.Errorf("GetAliasesForCanonical(kubernetes) = %v", got)
	}
	if Default() != Default() {
		t.Error("Default returned distinct instances")
	}
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]string(nil), a...)
	y := append([]string(nil), b...)
	sort.Strings(x)
	sort.Strings(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

func TestClean(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"Ruby on Rails", "rubyonrails"},
		{"ASP.NET", "asp.net"},
		{"..Node..js..", "node.js"},
		{"C++", "c"},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := Clean(tt.input); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
