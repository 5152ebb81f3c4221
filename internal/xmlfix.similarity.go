package internal

import "strings"

// LevenshteinDistance calculates the Levenshtein distance between two
// strings. This is the minimum number of single-character edits
// (insertions, deletions, or substitutions) required to change one string
// into the other.
func LevenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// We only need two rows of the distance matrix at a time.
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i

		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			// Minimum of deletion, insertion, and substitution
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}

		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// min3 returns the minimum of three integers.
func min3(a, b, c int) int {
	if a <= b && a <= c {
		return a
	}
	if b <= c {
		return b
	}
	return c
}

// FindBestMatch scans openTags for the entry most similar to name and
// returns its index, or -1 when no entry is within maxDistance edits.
// Comparison is case-insensitive. An exact case-insensitive match wins
// immediately; otherwise ties on distance go to the entry closest to the
// end of the slice, i.e. the innermost open tag.
func FindBestMatch(name string, openTags []string, maxDistance int) int {
	if len(openTags) == 0 {
		return -1
	}

	nameLower := strings.ToLower(name)
	bestIndex := -1
	bestDistance := maxDistance + 1

	// Walk innermost-first so equal distances resolve to the nearest
	// enclosing tag.
	for i := len(openTags) - 1; i >= 0; i-- {
		candidate := strings.ToLower(openTags[i])
		if candidate == nameLower {
			return i
		}

		dist := LevenshteinDistance(nameLower, candidate)
		if dist < bestDistance {
			bestDistance = dist
			bestIndex = i
		}
	}

	return bestIndex
}
