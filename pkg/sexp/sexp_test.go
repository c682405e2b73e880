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
package sexp_test

import (
	"testing"

	"github.com/PetrKudr/clang-concepts-monorepo/internal/xassert"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/sexp"
)

func TestParseSingleAtom(t *testing.T) {
	sf := sexp.NewSourceFile("<test>", []byte("foo"))

	term, _, err := sf.Parse()
	xassert.Equal(t, nil, err)

	sym, ok := term.(*sexp.Symbol)
	xassert.True(t, ok, "expected a symbol")
	xassert.Equal(t, "foo", sym.Value)
}

func TestParseQuotedSymbolKeepsItsQuotesAsOneToken(t *testing.T) {
	sf := sexp.NewSourceFile("<test>", []byte(`(expr "N < 4")`))

	term, _, err := sf.Parse()
	xassert.Equal(t, nil, err)

	l, ok := term.(*sexp.List)
	xassert.True(t, ok, "expected a list")
	xassert.Equal(t, 2, l.Len())
	xassert.Equal(t, "expr", l.Head())

	sym, ok := l.Get(1).(*sexp.Symbol)
	xassert.True(t, ok, "expected the quoted payload to lex as one symbol")
	xassert.Equal(t, `"N < 4"`, sym.Value)
}

func TestParseAllReturnsEachTopLevelForm(t *testing.T) {
	sf := sexp.NewSourceFile("<test>", []byte("(&& a b) (|| c d)"))

	terms, _, err := sf.ParseAll()
	xassert.Equal(t, nil, err)
	xassert.Equal(t, 2, len(terms))

	first, ok := terms[0].(*sexp.List)
	xassert.True(t, ok)
	xassert.Equal(t, "&&", first.Head())

	second, ok := terms[1].(*sexp.List)
	xassert.True(t, ok)
	xassert.Equal(t, "||", second.Head())
}

func TestParseRejectsUnbalancedParens(t *testing.T) {
	sf := sexp.NewSourceFile("<test>", []byte("(&& a b"))

	_, _, err := sf.Parse()
	xassert.True(t, err != nil, "expected a syntax error")
}

func TestListMatchSymbols(t *testing.T) {
	sf := sexp.NewSourceFile("<test>", []byte("(concept Foo T)"))

	term, _, err := sf.Parse()
	xassert.Equal(t, nil, err)

	l := term.(*sexp.List)
	xassert.True(t, l.MatchSymbols(1, "concept"))
	xassert.False(t, l.MatchSymbols(1, "requires"))
}
