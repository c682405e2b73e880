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

// Parser represents a parser in the process of parsing the contents of a
// source file into one or more S-expressions, building a source map as it
// goes.
type Parser struct {
	srcfile *SourceFile
	// Text being parsed
	text []rune
	// Determine current position within text
	index int
	// Accumulated span information for every node produced
	srcmap *SourceMap[SExp]
}

// NewParser constructs a new instance of Parser over a given source file.
func NewParser(srcfile *SourceFile) *Parser {
	return &Parser{
		srcfile: srcfile,
		text:    srcfile.Contents(),
		index:   0,
		srcmap:  NewSourceMap[SExp](srcfile.Contents()),
	}
}

// SourceMap returns the source map accumulated by this parser so far.
func (p *Parser) SourceMap() *SourceMap[SExp] {
	return p.srcmap
}

// Parse a single S-Expression starting at the current position, or return
// (nil, nil) at end-of-file.
func (p *Parser) Parse() (SExp, error) {
	start := p.skipWhitespaceAndComments()
	token := p.next()

	if token == nil {
		return nil, nil
	} else if len(token) == 1 && token[0] == ')' {
		p.index-- // backup
		return nil, p.error("unexpected end-of-list")
	} else if len(token) == 1 && token[0] == '(' {
		var elements []SExp

		for c := p.lookahead(0); c == nil || *c != ')'; c = p.lookahead(0) {
			element, err := p.Parse()
			if err != nil {
				return nil, err
			} else if element == nil {
				p.index-- // backup
				return nil, p.error("unexpected end-of-file")
			}

			elements = append(elements, element)
		}
		// Consume right-paren
		p.next()

		list := &List{elements}
		p.srcmap.Put(list, NewSpan(start, p.index))

		return list, nil
	}

	sym := &Symbol{string(token)}
	p.srcmap.Put(sym, NewSpan(start, p.index))

	return sym, nil
}

// next extracts the next token from the input, skipping whitespace and
// comments.
func (p *Parser) next() []rune {
	index := p.index

	if index == len(p.text) {
		return nil
	}

	switch p.text[index] {
	case '(', ')':
		p.index++
		return p.text[index:p.index]
	case ' ', '\t', '\n', '\r':
		p.index++
		return p.next()
	case ';':
		p.skipComment()
		return p.next()
	}

	return p.parseSymbol()
}

func (p *Parser) skipWhitespaceAndComments() int {
	for p.index < len(p.text) {
		switch p.text[p.index] {
		case ' ', '\t', '\n', '\r':
			p.index++
		case ';':
			p.skipComment()
		default:
			return p.index
		}
	}

	return p.index
}

func (p *Parser) skipComment() {
	for p.index < len(p.text) && p.text[p.index] != '\n' {
		p.index++
	}
}

// lookahead peeks at the next significant (non-whitespace, non-comment)
// punctuation character.
func (p *Parser) lookahead(i int) *rune {
	pos := i + p.index

	if len(p.text) > pos {
		switch p.text[pos] {
		case '(', ')', ';':
			return &p.text[pos]
		case ' ', '\n', '\t', '\r':
			return p.lookahead(i + 1)
		default:
			return nil
		}
	}

	return nil
}

func (p *Parser) parseSymbol() []rune {
	if p.text[p.index] == '"' {
		return p.parseQuotedSymbol()
	}

	i := len(p.text)

	for j := p.index; j < i; j++ {
		c := p.text[j]
		if c == '(' || c == ')' || c == ' ' || c == '\n' || c == '\t' || c == '\r' {
			i = j
			break
		}
	}

	token := p.text[p.index:i]
	p.index = i

	return token
}

// parseQuotedSymbol scans a double-quoted token, e.g. `"T::f()"`, allowing
// whitespace and list-delimiter characters inside the quotes. This lets
// atomic leaf forms like `(expr "N < 4")` and `(rel < "a" "b")` carry
// arbitrary expression source text as a single symbol.
func (p *Parser) parseQuotedSymbol() []rune {
	start := p.index
	j := p.index + 1

	for j < len(p.text) {
		if p.text[j] == '\\' && j+1 < len(p.text) {
			j += 2
			continue
		}

		if p.text[j] == '"' {
			j++
			break
		}

		j++
	}

	token := p.text[start:j]
	p.index = j

	return token
}

// error constructs a parser error at the current position in the input
// stream.
func (p *Parser) error(msg string) *SyntaxError {
	span := NewSpan(p.index, p.index+1)
	return p.srcfile.SyntaxError(span, msg)
}
