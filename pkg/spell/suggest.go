// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package spell

import (
	"sort"
	"strings"
)

// Suggest returns the candidate closest to word, or "" when none is
// close enough. Differences in case alone always qualify; otherwise
// at most one edit per three characters is allowed (minimum one).
func Suggest(word string, candidates []string) string {
	maxDist := len([]rune(word)) / 3
	if maxDist < 1 {
		maxDist = 1
	}

	sorted := append([]string{}, candidates...)
	sort.Strings(sorted)

	best := ""
	bestDist := maxDist + 1

	for _, candidate := range sorted {
		if candidate == word {
			continue
		}
		dist := Distance(strings.ToLower(word), strings.ToLower(candidate))
		if dist == 0 {
			return candidate
		}
		if dist < bestDist {
			best, bestDist = candidate, dist
		}
	}

	return best
}

// Distance is the Levenshtein edit distance between a and b.
func Distance(a, b string) int {
	ar, br := []rune(a), []rune(b)

	prev := make([]int, len(br)+1)
	curr := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ar); i++ {
		curr[0] = i
		for j := 1; j <= len(br); j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(br)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
