package tags

import "sync"

// Default returns a process-wide Normalizer built from the seed on first use.
// Services should construct their own with New and pass it explicitly; this
// exists for callers that only need the built-in dictionary.
var Default = sync.OnceValue(func() *Normalizer { return New() })

// NormalizeTag normalizes tag with the default Normalizer.
func NormalizeTag(tag string) string {
	return Default().Normalize(tag)
}

// FindSimilarTag runs FindSimilarTag on the default Normalizer.
func FindSimilarTag(newTag string, existing []string) (string, bool) {
	return Default().FindSimilarTag(newTag, existing)
}

// GetAliasesForCanonical returns the aliases of canonical in the default
// Normalizer.
func GetAliasesForCanonical(canonical string) []string {
	return Default().GetAliases(canonical)
}
