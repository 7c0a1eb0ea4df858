// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package texttemplate

import (
	"strings"
)

// DirectiveMeta classifies the stripped text of a directive by its keyword.
type DirectiveMeta struct {
	Text string
}

var (
	statementPrefixes = []string{"if ", "elif ", "for ", "def ", "inherit ", "default ", "py:"}
	singleStatements  = []string{"endif", "endfor", "enddef", "continue", "break"}
)

// IsStatement reports whether the directive produces no output of its
// own, which makes it a candidate for whitespace trimming.
func (m DirectiveMeta) IsStatement() bool {
	for _, prefix := range statementPrefixes {
		if strings.HasPrefix(m.Text, prefix) {
			return true
		}
	}
	return m.IsElse() || m.isOneOf(singleStatements...)
}

func (m DirectiveMeta) IsPy() bool      { return strings.HasPrefix(m.Text, "py:") }
func (m DirectiveMeta) IsComment() bool { return strings.HasPrefix(m.Text, "#") }

func (m DirectiveMeta) IsIf() bool      { return strings.HasPrefix(m.Text, "if ") }
func (m DirectiveMeta) IsElif() bool    { return strings.HasPrefix(m.Text, "elif ") }
func (m DirectiveMeta) IsFor() bool     { return strings.HasPrefix(m.Text, "for ") }
func (m DirectiveMeta) IsDefault() bool { return m.hasKeyword("default") }
func (m DirectiveMeta) IsInherit() bool { return m.hasKeyword("inherit") }

// IsElse matches `else` and `else:` but not names such as `elsewhere`.
func (m DirectiveMeta) IsElse() bool {
	if !strings.HasPrefix(m.Text, "else") {
		return false
	}
	rest := m.Text[len("else"):]
	if len(rest) > 0 && isIdentChar(rune(rest[0])) {
		return false
	}
	return len(m.HeaderExpr("else")) == 0
}

func (m DirectiveMeta) IsLoopControl() bool { return m.isOneOf("continue", "break") }
func (m DirectiveMeta) IsEnd() bool         { return m.isOneOf("endif", "endfor", "enddef") }

// IsBareHeader matches a block opener with nothing after its keyword.
func (m DirectiveMeta) IsBareHeader() bool { return m.isOneOf("if", "elif", "for") }

// Keyword is the first word of the directive.
func (m DirectiveMeta) Keyword() string {
	if fields := strings.Fields(m.Text); len(fields) > 0 {
		return strings.TrimSuffix(fields[0], ":")
	}
	return ""
}

// HeaderExpr is the text after keyword with any trailing `:` removed.
func (m DirectiveMeta) HeaderExpr(keyword string) string {
	result := strings.TrimPrefix(m.Text, keyword)
	result = strings.TrimSpace(result)
	result = strings.TrimSuffix(result, ":")
	return strings.TrimSpace(result)
}

func (m DirectiveMeta) hasKeyword(keyword string) bool {
	if !strings.HasPrefix(m.Text, keyword) {
		return false
	}
	rest := m.Text[len(keyword):]
	return len(rest) > 0 && (rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\n' || rest[0] == '\r')
}

func (m DirectiveMeta) isOneOf(texts ...string) bool {
	for _, text := range texts {
		if m.Text == text {
			return true
		}
	}
	return false
}

func isIdentChar(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
