// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package filepos

import (
	"fmt"
)

type Position struct {
	lineNum *int // 1 based
	colNum  int  // 1 based
	file    string
	known   bool
}

func NewPosition(lineNum, colNum int) *Position {
	if lineNum <= 0 || colNum <= 0 {
		panic("Lines and columns are 1 based")
	}
	return &Position{lineNum: &lineNum, colNum: colNum, known: true}
}

// NewPositionInFile returns the Position of line "lineNum", column "colNum" within the source "file"
func NewPositionInFile(lineNum, colNum int, file string) *Position {
	p := NewPosition(lineNum, colNum)
	p.file = file
	return p
}

// NewUnknownPosition is equivalent of zero value *Position
func NewUnknownPosition() *Position {
	return &Position{}
}

// NewUnknownPositionInFile produces a Position of a known source at an unknown line.
func NewUnknownPositionInFile(file string) *Position {
	return &Position{file: file}
}

func (p *Position) IsKnown() bool { return p != nil && p.known }

func (p *Position) LineNum() int {
	if !p.IsKnown() {
		panic("Position is unknown")
	}
	if p.lineNum == nil {
		panic("Position was not properly initialized")
	}
	return *p.lineNum
}

func (p *Position) ColNum() int {
	if !p.IsKnown() {
		panic("Position is unknown")
	}
	return p.colNum
}

func (p *Position) SetFile(file string) { p.file = file }

func (p *Position) GetFile() string {
	if p == nil {
		return ""
	}
	return p.file
}

// AsString renders the position the way template diagnostics expect it,
// e.g. "line 3 column 7". Unknown positions render as an empty string.
func (p *Position) AsString() string {
	if !p.IsKnown() {
		return ""
	}
	return fmt.Sprintf("line %d column %d", p.LineNum(), p.ColNum())
}

func (p *Position) AsCompactString() string {
	filePrefix := p.GetFile()
	if len(filePrefix) > 0 {
		filePrefix += ":"
	}
	if p.IsKnown() {
		return fmt.Sprintf("%s%d:%d", filePrefix, p.LineNum(), p.ColNum())
	}
	return fmt.Sprintf("%s?", filePrefix)
}

func (p *Position) DeepCopy() *Position {
	if p == nil {
		return nil
	}
	newPos := &Position{file: p.file, known: p.known, colNum: p.colNum}
	if p.lineNum != nil {
		lineVal := *p.lineNum
		newPos.lineNum = &lineVal
	}
	return newPos
}

func (p *Position) DeepCopyWithLineOffset(offset int) *Position {
	if !p.IsKnown() {
		panic("Position is unknown")
	}
	if offset < 0 {
		panic("Unexpected line offset")
	}
	newPos := p.DeepCopy()
	*newPos.lineNum += offset
	return newPos
}

// Equal reports whether both positions point at the same line and column of the same source.
func (p *Position) Equal(other *Position) bool {
	if !p.IsKnown() || !other.IsKnown() {
		return p.IsKnown() == other.IsKnown() && p.GetFile() == other.GetFile()
	}
	return p.GetFile() == other.GetFile() &&
		p.LineNum() == other.LineNum() && p.ColNum() == other.ColNum()
}
