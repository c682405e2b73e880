// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package sexp

import "fmt"

// Span represents a contiguous slice of the original string.  Instead of
// representing this as a string slice, however, it is useful to retain the
// physical indices.  This allows us to do certain things, such as determine
// the enclosing line, etc.
type Span struct {
	// The first character of this span in the original string.
	start int
	// One past the final character of this span in the original string.
	end int
}

// NewSpan constructs a new span whilst checking the internal invariants are
// maintained.
func NewSpan(start int, end int) Span {
	if start > end {
		panic("invalid span")
	}

	return Span{start, end}
}

// Start returns the starting index of this span in the original string.
func (p *Span) Start() int {
	return p.start
}

// End returns one past the last index of this span in the original string.
func (p *Span) End() int {
	return p.end
}

// Length returns the number of characters covered by this span in the
// original string.
func (p *Span) Length() int {
	return p.end - p.start
}

// Line provides information about a given line within the original string.
// This includes the line number (counting from 1), and the span of the line
// within the original string.
type Line struct {
	// Original text
	text []rune
	// Span within original text of this line.
	span Span
	// Line number of this line (counting from 1).
	number int
}

// String returns the text of this line.
func (p *Line) String() string {
	return string(p.text[p.span.start:p.span.end])
}

// Number gets the line number of this line, where the first line in a string
// has line number 1.
func (p *Line) Number() int {
	return p.number
}

// SourceMap maps terms from an AST to spans of their originating string. The
// parser fills one in as it reads, and SourceFile.Parse/ParseAll return it;
// the diagnostic renderer and normalization do not consult it.
type SourceMap[T comparable] struct {
	// Maps a given AST object to a span in the original string.
	mapping map[T]Span
	// Original string
	text []rune
}

// NewSourceMap constructs an initially empty source map for a given string.
func NewSourceMap[T comparable](text []rune) *SourceMap[T] {
	return &SourceMap[T]{make(map[T]Span), text}
}

// Put registers a new AST item with a given span.  Re-registering the same
// item with a different span simply overwrites the previous entry.
func (p *SourceMap[T]) Put(item T, span Span) {
	p.mapping[item] = span
}

// Get determines the span associated with a given AST item, returning false
// if the item was never registered (e.g. it was synthesized rather than
// parsed).
func (p *SourceMap[T]) Get(item T) (Span, bool) {
	s, ok := p.mapping[item]
	return s, ok
}

// FindFirstEnclosingLine determines the first line which encloses the start
// of a span. If the position is beyond the bounds of the source string then
// the last physical line is returned. The returned line is not guaranteed to
// enclose the entire span, as spans can cross multiple lines.
func (p *SourceMap[T]) FindFirstEnclosingLine(span Span) Line {
	var (
		index = span.start
		num   = 1
		start = 0
	)

	for i := 0; i < len(p.text); i++ {
		if i == index {
			end := findEndOfLine(index, p.text)
			return Line{p.text, Span{start, end}, num}
		} else if p.text[i] == '\n' {
			num++
			start = i + 1
		}
	}

	return Line{p.text, Span{start, len(p.text)}, num}
}

func findEndOfLine(index int, text []rune) int {
	for i := index; i < len(text); i++ {
		if text[i] == '\n' {
			return i
		}
	}

	return len(text)
}

// SyntaxError is a structured error which retains the span into the original
// string where an error occurred, along with a message.
type SyntaxError struct {
	srcfile *SourceFile
	span    Span
	msg     string
}

// SourceFile returns the underlying source file that this syntax error
// covers.
func (p *SyntaxError) SourceFile() *SourceFile {
	return p.srcfile
}

// Span returns the span of the original text on which this error is
// reported.
func (p *SyntaxError) Span() Span {
	return p.span
}

// Message returns the message to be reported.
func (p *SyntaxError) Message() string {
	return p.msg
}

// Error implements the error interface.
func (p *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", p.srcfile.Filename(), p.span.Start(), p.span.End(), p.msg)
}
