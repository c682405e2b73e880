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
package external_test

import (
	"testing"

	"github.com/PetrKudr/clang-concepts-monorepo/internal/xassert"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/astview"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/external"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/mltal"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/sexp"
)

func parse(t *testing.T, src string) *sexp.List {
	t.Helper()

	sf := sexp.NewSourceFile("<test>", []byte(src))

	e, _, err := sf.Parse()
	xassert.Equal(t, nil, err)

	l, ok := e.(*sexp.List)
	xassert.True(t, ok)

	return l
}

func TestSubstReplacesBoundIdentifierInsideExprSource(t *testing.T) {
	eng := external.NewDefaultEngine()
	args := mltal.Empty().WithOuterLevel(mltal.NewLevel(mltal.Explicit, mltal.Binding{Name: "N", Value: "3"}))

	res, err := eng.Subst(parse(t, `(expr "N < 4")`), args)
	xassert.Equal(t, nil, err)
	xassert.Equal(t, external.SubstUsable, res.Outcome)
	xassert.Equal(t, `(expr "3 < 4")`, res.Expr.String())
}

func TestSubstOfSFINAEAtomAlwaysFails(t *testing.T) {
	eng := external.NewDefaultEngine()

	res, err := eng.Subst(parse(t, `(sfinae "no member named f")`), mltal.Empty())
	xassert.Equal(t, nil, err)
	xassert.Equal(t, external.SubstSFINAE, res.Outcome)
	xassert.Equal(t, "no member named f", res.Message)
}

func TestIsInstantiationDependentForUnboundIdentifier(t *testing.T) {
	eng := external.NewDefaultEngine()

	dependent := eng.IsInstantiationDependent(&sexp.Symbol{Value: "T"}, mltal.Empty())
	xassert.True(t, dependent)

	bound := mltal.Empty().WithOuterLevel(mltal.NewLevel(mltal.Explicit, mltal.Binding{Name: "T", Value: "int"}))
	notDependent := eng.IsInstantiationDependent(&sexp.Symbol{Value: "T"}, bound)
	xassert.False(t, notDependent)
}

func TestEvaluateAsBooleanConditionOfRelational(t *testing.T) {
	eng := external.NewDefaultEngine()

	result, ok := eng.EvaluateAsBooleanCondition(parse(t, "(rel < 3 4)"))
	xassert.True(t, ok)
	xassert.True(t, result)

	result, ok = eng.EvaluateAsBooleanCondition(parse(t, "(rel < 4 3)"))
	xassert.True(t, ok)
	xassert.False(t, result)
}

func TestEvaluateAsRValueOfExprSource(t *testing.T) {
	eng := external.NewDefaultEngine()

	value, diags, ok := eng.EvaluateAsRValue(parse(t, `(expr "1 < 2")`))
	xassert.True(t, ok)
	xassert.Equal(t, []string(nil), diags)
	xassert.Equal(t, int64(1), value)
}

func TestCanThrowRecognizesThrowingWrapper(t *testing.T) {
	eng := external.NewDefaultEngine()

	xassert.Equal(t, external.Can, eng.CanThrow(parse(t, `(throwing (expr "f()"))`)))
	xassert.Equal(t, external.Cannot, eng.CanThrow(parse(t, `(expr "f()")`)))
}

func TestCheckTemplateArgumentListMatchesArity(t *testing.T) {
	eng := external.NewDefaultEngine()

	level, dependent, ok := eng.CheckTemplateArgumentList(
		[]string{"T"}, []astview.Expr{&sexp.Symbol{Value: "int"}})
	xassert.True(t, ok)
	xassert.False(t, dependent)
	xassert.Equal(t, "int", level.Bindings[0].Value)
}

func TestCheckTemplateArgumentListTreatsUnexpandedPackAsDependent(t *testing.T) {
	eng := external.NewDefaultEngine()

	_, dependent, ok := eng.CheckTemplateArgumentList([]string{"T", "U"}, []astview.Expr{parse(t, "(pack T)")})
	xassert.True(t, ok)
	xassert.True(t, dependent)
}

func TestStackReleasesFramesOnRelease(t *testing.T) {
	stack := external.NewStack(2)

	f1, err := stack.Push(external.ConstraintsCheck, "Foo")
	xassert.Equal(t, nil, err)
	xassert.Equal(t, 1, stack.Depth())

	_, err = stack.Push(external.ConstraintSubstitution, "N < 4")
	xassert.Equal(t, nil, err)
	xassert.Equal(t, 2, stack.Depth())

	_, err = stack.Push(external.ConstraintSubstitution, "overflow")
	xassert.True(t, err != nil, "expected depth limit exceeded")

	f1.Release()
	xassert.Equal(t, 0, stack.Depth())
}
