// CLAUDE:SUMMARY Optional Unicode folding applied before the ASCII filter (none, or NFKC + accent stripping).
package tags

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Folder rewrites raw input before lowercasing and character filtering.
type Folder func(string) string

const (
	FoldNone  = "none"
	FoldASCII = "ascii"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldIdentity leaves input untouched, so non-ASCII letters are dropped by
// the character filter (Élixir -> lixir).
func FoldIdentity(s string) string {
	return s
}

// FoldToASCII applies NFKC (full-width forms become ASCII) then strips
// combining marks: "Élixir" -> "elixir", "ＲＥＡＣＴ" -> "react".
func FoldToASCII(s string) string {
	s = strings.ToLower(norm.NFKC.String(s))
	result, _, err := transform.String(stripAccents, s)
	if err != nil {
		return s
	}
	return result
}

// GetFolder returns the folder for mode. Unknown modes fall back to none.
func GetFolder(mode string) Folder {
	switch mode {
	case FoldASCII:
		return FoldToASCII
	default:
		return FoldIdentity
	}
}
