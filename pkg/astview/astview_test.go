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
package astview_test

import (
	"testing"

	"github.com/PetrKudr/clang-concepts-monorepo/internal/xassert"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/astview"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/sexp"
)

func parse(t *testing.T, src string) astview.Expr {
	t.Helper()

	sf := sexp.NewSourceFile("<test>", []byte(src))

	e, _, err := sf.Parse()
	xassert.Equal(t, nil, err)

	return e
}

func TestClassifyRecognizesEachKind(t *testing.T) {
	cases := []struct {
		src  string
		kind astview.Kind
	}{
		{"(&& a b)", astview.KindAnd},
		{"(|| a b)", astview.KindOr},
		{"(paren a)", astview.KindParen},
		{"(concept Foo T)", astview.KindConceptRef},
		{"(requires (simple a))", astview.KindRequires},
		{"(expr \"N < 4\")", astview.KindAtomic},
		{"justasymbol", astview.KindAtomic},
	}

	for _, c := range cases {
		xassert.Equal(t, c.kind, astview.Classify(parse(t, c.src)), c.src)
	}
}

func TestAndDecomposesOperands(t *testing.T) {
	lhs, rhs, ok := astview.And(parse(t, "(&& a b)"))
	xassert.True(t, ok)
	xassert.Equal(t, "a", lhs.String())
	xassert.Equal(t, "b", rhs.String())
}

func TestUnparenStripsNestedParens(t *testing.T) {
	inner := astview.Unparen(parse(t, "(paren (paren a))"))
	xassert.Equal(t, "a", inner.String())
}

func TestConceptRefDecomposesNameAndArgs(t *testing.T) {
	name, args, ok := astview.ConceptRef(parse(t, "(concept Foo T U)"))
	xassert.True(t, ok)
	xassert.Equal(t, "Foo", name)
	xassert.Equal(t, 2, len(args))
	xassert.Equal(t, "T", args[0].String())
}

func TestExprAtomUnquotesSource(t *testing.T) {
	source, ok := astview.ExprAtom(parse(t, `(expr "N < 4")`))
	xassert.True(t, ok)
	xassert.Equal(t, "N < 4", source)
}

func TestSFINAEAtomUnquotesMessage(t *testing.T) {
	msg, ok := astview.SFINAEAtom(parse(t, `(sfinae "no member named f")`))
	xassert.True(t, ok)
	xassert.Equal(t, "no member named f", msg)
}

func TestRelationalDecomposesOperatorAndOperands(t *testing.T) {
	op, lhs, rhs, ok := astview.Relational(parse(t, "(rel < N 4)"))
	xassert.True(t, ok)
	xassert.Equal(t, "<", op)
	xassert.Equal(t, "N", lhs.String())
	xassert.Equal(t, "4", rhs.String())
}

func TestPackArgUnwrapsInnerExpression(t *testing.T) {
	inner, ok := astview.PackArg(parse(t, "(pack T)"))
	xassert.True(t, ok)
	xassert.Equal(t, "T", inner.String())
}

func TestProfileIsSourceLocationFree(t *testing.T) {
	a := astview.Profile(parse(t, "(rel < N 4)"))
	b := astview.Profile(parse(t, "(rel < N 4)"))
	xassert.Equal(t, a, b)
}
