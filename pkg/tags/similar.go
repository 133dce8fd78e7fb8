// CLAUDE:SUMMARY Near-duplicate detection between normalized tags (typos, plurals) with version-variant exclusion.
package tags

import "strings"

const (
	// shortTagLen marks tags that get the strict length rule.
	shortTagLen = 3
	// maxShortLenDiff is the allowed length difference when either tag is short.
	maxShortLenDiff = 1
	// maxLenDiff is the allowed length difference otherwise.
	maxLenDiff = 2
)

// FindSimilarTag returns the first entry of existing whose normalized form is
// a probable near-duplicate of newTag's. The entry is returned as given, not
// normalized. Exact normalized matches are skipped: they are duplicates, not
// look-alikes.
func (n *Normalizer) FindSimilarTag(newTag string, existing []string) (string, bool) {
	if newTag == "" || len(existing) == 0 {
		return "", false
	}

	normalizedNew := n.Normalize(newTag)
	if normalizedNew == "" {
		return "", false
	}

	for _, tag := range existing {
		normalizedExisting := n.Normalize(tag)
		if normalizedExisting == "" || normalizedExisting == normalizedNew {
			continue
		}
		if IsSimilar(normalizedNew, normalizedExisting) {
			return tag, true
		}
	}
	return "", false
}

// IsSimilar compares two normalized tags.
//
//   - Tags that differ only by a trailing version number (vue2, vue3, vue)
//     are distinct.
//   - If either is at most 3 characters, lengths may differ by 1 and one
//     must contain the other (web/webd, but not js/json).
//   - Otherwise lengths may differ by at most 2 and one must contain the
//     other (react/reactt). react/reactnative is too far apart.
func IsSimilar(a, b string) bool {
	baseA, baseB := stripNumericSuffix(a), stripNumericSuffix(b)
	if (baseA != a || baseB != b) && baseA == baseB {
		return false
	}

	diff := len(a) - len(b)
	if diff < 0 {
		diff = -diff
	}
	related := strings.Contains(a, b) || strings.Contains(b, a)

	if len(a) <= shortTagLen || len(b) <= shortTagLen {
		return diff <= maxShortLenDiff && related
	}
	return diff <= maxLenDiff && related
}

// stripNumericSuffix removes a trailing run of ASCII digits: vue3 -> vue.
func stripNumericSuffix(s string) string {
	return strings.TrimRight(s, "0123456789")
}
