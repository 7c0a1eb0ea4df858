// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package texttemplate

import (
	"regexp"
	"strings"
)

var (
	trailWhitespaceRe = regexp.MustCompile(`\n\r?[\t ]*$`)
	leadWhitespaceRe  = regexp.MustCompile(`^[\t ]*\n`)
)

// Trim removes the indentation before and the line break after every
// statement directive that stands alone on its line. It returns a new
// slice; tokens is left unchanged. Running it twice is the same as
// running it once.
func Trim(tokens []Token) []Token {
	result := make([]Token, len(tokens))
	copy(result, tokens)

	for i, curr := range result {
		if !curr.Directive || curr.standalone || !(DirectiveMeta{curr.Text}).IsStatement() {
			continue
		}

		var prev, next string
		if i > 0 {
			if result[i-1].Directive {
				continue
			}
			prev = result[i-1].Text
		}
		if i+1 < len(result) {
			if result[i+1].Directive {
				continue
			}
			next = result[i+1].Text
		}

		prevBlankFirst := i == 1 && len(strings.TrimSpace(prev)) == 0
		nextBlankLast := i == len(result)-2 && len(strings.TrimSpace(next)) == 0

		prevOk := len(prev) == 0 || trailWhitespaceRe.MatchString(prev) || prevBlankFirst
		nextOk := len(next) == 0 || leadWhitespaceRe.MatchString(next) || nextBlankLast
		if !prevOk || !nextOk {
			continue
		}

		if len(prev) > 0 {
			if prevBlankFirst {
				result[i-1].Text = ""
			} else {
				loc := trailWhitespaceRe.FindStringIndex(prev)
				result[i-1].Text = prev[:loc[0]+1]
			}
		}
		if len(next) > 0 {
			if nextBlankLast {
				result[i+1].Text = ""
			} else {
				loc := leadWhitespaceRe.FindStringIndex(next)
				result[i+1].Text = next[loc[1]:]
			}
		}

		result[i].standalone = true
	}

	return result
}
