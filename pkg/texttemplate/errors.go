// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package texttemplate

import (
	"errors"
	"fmt"
	"strings"

	"carvel.dev/tempita/pkg/filepos"
)

// ErrorKind classifies failures by the stage that produced them.
type ErrorKind int

const (
	LexError ErrorKind = iota
	ParseError
	StructuralError
	RuntimeError
	InheritanceError
)

func (k ErrorKind) String() string {
	switch k {
	case LexError:
		return "lex error"
	case ParseError:
		return "parse error"
	case StructuralError:
		return "structural error"
	case RuntimeError:
		return "runtime error"
	case InheritanceError:
		return "inheritance error"
	default:
		return fmt.Sprintf("unknown error kind %d", int(k))
	}
}

// Error is returned by every stage of template processing. Pos is
// unknown when the failure cannot be attributed to a directive.
type Error struct {
	Kind ErrorKind
	Msg  string
	Pos  *filepos.Position
	Name string
	// Err is the underlying evaluator or resolver error, if any
	Err error
}

var _ error = &Error{}

func (e *Error) Error() string { return FormatError(e.Msg, e.Pos, e.Name) }

func (e *Error) Unwrap() error { return e.Err }

// FormatError renders "<msg> at line L column C in <name>", dropping
// the position and name parts when they are not available.
func FormatError(msg string, pos *filepos.Position, name string) string {
	var result strings.Builder
	result.WriteString(msg)
	if pos.IsKnown() {
		result.WriteString(" at ")
		result.WriteString(pos.AsString())
	}
	if len(name) > 0 {
		result.WriteString(" in ")
		result.WriteString(name)
	}
	return result.String()
}

// IsKind reports whether err (or anything it wraps) is an *Error of kind.
func IsKind(err error, kind ErrorKind) bool {
	var tplErr *Error
	if errors.As(err, &tplErr) {
		return tplErr.Kind == kind
	}
	return false
}

func newError(kind ErrorKind, pos *filepos.Position, name, msg string, args ...interface{}) *Error {
	if pos == nil {
		pos = filepos.NewUnknownPosition()
	}
	return &Error{Kind: kind, Msg: fmt.Sprintf(msg, args...), Pos: pos, Name: name}
}

// quoteRepr quotes s the way error messages have always shown
// directive text: single quotes unless s itself contains one.
func quoteRepr(s string) string {
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}
