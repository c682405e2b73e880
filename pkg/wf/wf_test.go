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
package wf_test

import (
	"testing"

	"github.com/PetrKudr/clang-concepts-monorepo/internal/xassert"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/sexp"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/wf"
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

func TestBareIntegerLiteralIsIllFormed(t *testing.T) {
	sf := sexp.NewSourceFile("<test>", []byte("4"))
	e, _, err := sf.Parse()
	xassert.Equal(t, nil, err)

	ok, culprit, err := wf.CheckConstraintExpression(e)
	xassert.Equal(t, nil, err)
	xassert.False(t, ok)
	xassert.Equal(t, "4", culprit.String())
}

func TestExprAtomIsWellFormed(t *testing.T) {
	l := parse(t, `(expr "N < 4")`)

	ok, _, err := wf.CheckConstraintExpression(l)
	xassert.Equal(t, nil, err)
	xassert.True(t, ok)
}

func TestConjunctionChecksBothOperandsShortCircuitingOnFirstFailure(t *testing.T) {
	l := parse(t, "(&& 4 (expr \"true\"))")

	ok, culprit, err := wf.CheckConstraintExpression(l)
	xassert.Equal(t, nil, err)
	xassert.False(t, ok)
	xassert.Equal(t, "4", culprit.String())
}

func TestRequiresExpressionIsAlwaysWellFormed(t *testing.T) {
	l := parse(t, "(requires (simple (expr \"f()\")))")

	ok, _, err := wf.CheckConstraintExpression(l)
	xassert.Equal(t, nil, err)
	xassert.True(t, ok)
}

func TestConceptRefIsAlwaysWellFormed(t *testing.T) {
	l := parse(t, "(concept Foo T)")

	ok, _, err := wf.CheckConstraintExpression(l)
	xassert.Equal(t, nil, err)
	xassert.True(t, ok)
}
