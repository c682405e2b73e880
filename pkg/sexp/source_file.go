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

// SourceFile represents a given source file (typically stored on disk, but
// may equally be an in-memory snippet such as a single constraint-clause
// expression handed to the engine by a test).
type SourceFile struct {
	filename string
	contents []rune
}

// NewSourceFile constructs a new source file from a given byte array.
func NewSourceFile(filename string, bytes []byte) *SourceFile {
	return &SourceFile{filename, []rune(string(bytes))}
}

// Filename returns the filename associated with this source file.
func (s *SourceFile) Filename() string {
	return s.filename
}

// Contents returns the contents of this source file.
func (s *SourceFile) Contents() []rune {
	return s.contents
}

// Parse parses this file's contents into a single S-expression, returning a
// source map for diagnostic purposes.
func (s *SourceFile) Parse() (SExp, *SourceMap[SExp], error) {
	p := NewParser(s)

	term, err := p.Parse()
	if err == nil && p.index != len(p.text) {
		return nil, nil, p.error("unexpected remainder")
	}

	return term, p.srcmap, err
}

// ParseAll converts this file's contents into zero or more top-level
// S-expressions (e.g. a sequence of constraint clauses forming an implicit
// conjunction, spec.md §4.4), or returns an error if malformed. A source map
// is returned alongside for diagnostic purposes.
func (s *SourceFile) ParseAll() ([]SExp, *SourceMap[SExp], error) {
	p := NewParser(s)
	terms := make([]SExp, 0)

	for {
		term, err := p.Parse()
		if err != nil {
			return terms, p.srcmap, err
		} else if term == nil {
			return terms, p.srcmap, nil
		}

		terms = append(terms, term)
	}
}

// SyntaxError constructs a syntax error over a given span of this file with a
// given message.
func (s *SourceFile) SyntaxError(span Span, msg string) *SyntaxError {
	return &SyntaxError{s, span, msg}
}
