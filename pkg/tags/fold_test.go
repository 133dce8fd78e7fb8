package tags

import "testing"

func TestFoldToASCII(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"Élixir", "elixir"},
		{"ＲＥＡＣＴ", "react"},
		{"Ñoño", "nono"},
		{"café", "cafe"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FoldToASCII(tt.input); got != tt.want {
			t.Errorf("FoldToASCII(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestGetFolder(t *testing.T) {
	tests := []struct {
		mode, input, want string
	}{
		{FoldASCII, "Élodie", "elodie"},
		{FoldNone, "Élodie", "Élodie"},
		{"", "Élodie", "Élodie"},
		{"unknown_mode", "Élodie", "Élodie"},
	}
	for _, tt := range tests {
		if got := GetFolder(tt.mode)(tt.input); got != tt.want {
			t.Errorf("GetFolder(%q)(%q) = %q, want %q", tt.mode, tt.input, got, tt.want)
		}
	}
}

func TestNormalize_WithASCIIFold(t *testing.T) {
	n := New(WithFold(FoldToASCII))
	tests := []struct {
		input, want string
	}{
		{"Élixir", "elixir"},
		{"ＲＥＡＣＴ", "react"},
		{"Ｋ８Ｓ", "kubernetes"},
		{"Vue.js", "vue"},
	}
	for _, tt := range tests {
		if got := n.Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCompilePatterns_Errors(t *testing.T) {
	if _, err := CompilePatterns([]PatternSpec{{Name: "bad", Regex: `[invalid`}}); err == nil {
		t.Error("expected error for invalid regex")
	}
	if _, err := CompilePatterns([]PatternSpec{{Name: "empty"}}); err == nil {
		t.Error("expected error for empty regex")
	}
	got, err := CompilePatterns(nil)
	if err != nil || len(got) != 0 {
		t.Errorf("CompilePatterns(nil) = %v, %v", got, err)
	}
}
