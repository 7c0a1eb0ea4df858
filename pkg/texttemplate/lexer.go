// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package texttemplate

import (
	"strings"

	"carvel.dev/tempita/pkg/filepos"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// Token is either a literal chunk of text or the stripped contents of a
// single {{ }} directive along with its position.
type Token struct {
	Text      string
	Directive bool
	Position  *filepos.Position

	// set once the trimmer has removed the whitespace around this directive
	standalone bool
}

type LexOpts struct {
	Name string
	// TrimWhitespace removes the blank space around directives
	// that sit on a line of their own
	TrimWhitespace bool
	// LineOffset is added to every reported line number
	LineOffset int
}

// Lex splits data into literal and directive tokens in a single
// forward scan. Zero-length literals are not emitted.
func Lex(data string, opts LexOpts) ([]Token, error) {
	var tokens []Token

	var lastChar rune
	var currLine int = 1
	var currCol int = 1

	inDirective := false
	lastOffset := 0
	lastPos := filepos.NewPosition(1+opts.LineOffset, 1)

	for i, currChar := range data {
		if lastChar == '{' && currChar == '{' {
			// position right after the delimiter
			pos := filepos.NewPosition(currLine+opts.LineOffset, currCol+1)
			if inDirective {
				return nil, newError(LexError, pos, opts.Name, "%s inside expression", openDelim)
			}
			if part := data[lastOffset : i-1]; len(part) > 0 {
				tokens = append(tokens, Token{Text: part})
			}
			inDirective = true
			lastOffset = i + 1
			lastPos = pos
			currChar = 0
		}

		if lastChar == '}' && currChar == '}' {
			pos := filepos.NewPosition(currLine+opts.LineOffset, currCol+1)
			if !inDirective {
				return nil, newError(LexError, pos, opts.Name, "%s outside expression", closeDelim)
			}
			tokens = append(tokens, Token{
				Text:      strings.TrimSpace(data[lastOffset : i-1]),
				Directive: true,
				Position:  lastPos,
			})
			inDirective = false
			lastOffset = i + 1
			lastPos = pos
			currChar = 0
		}

		switch currChar {
		case '\n':
			currLine++
			currCol = 1
		case '\r':
			// \r\n counts once, on the \n
			if !strings.HasPrefix(data[i+1:], "\n") {
				currLine++
				currCol = 1
			}
		default:
			currCol++
		}

		lastChar = currChar
	}

	if inDirective {
		return nil, newError(LexError, lastPos, opts.Name, "No %s to finish last expression", closeDelim)
	}

	if part := data[lastOffset:]; len(part) > 0 {
		tokens = append(tokens, Token{Text: part})
	}

	if opts.TrimWhitespace {
		tokens = Trim(tokens)
	}

	return tokens, nil
}
