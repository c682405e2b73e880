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
package normalize_test

import (
	"testing"

	"github.com/PetrKudr/clang-concepts-monorepo/internal/xassert"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/astview"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/decl"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/external"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/mltal"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/normalize"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/sexp"
)

func parse(t *testing.T, src string) astview.Expr {
	t.Helper()

	sf := sexp.NewSourceFile("<test>", []byte(src))

	e, _, err := sf.Parse()
	xassert.Equal(t, nil, err)

	return e
}

func newCtx(registry *decl.Registry) normalize.Context {
	eng := external.NewDefaultEngine()
	return normalize.Context{Registry: registry, Subst: eng, Checker: eng}
}

func TestNormalizeConjunctionProducesCompoundTree(t *testing.T) {
	ctx := newCtx(decl.NewRegistry())
	owner := decl.NewID("f")

	n, ok := normalize.Normalize(ctx, parse(t, `(&& (expr "true") (expr "false"))`), owner, mltal.Empty())
	xassert.True(t, ok)
	xassert.False(t, n.IsAtomic)
	xassert.Equal(t, normalize.Conjunction, n.Kind)
	xassert.True(t, n.Left.IsAtomic)
	xassert.True(t, n.Right.IsAtomic)
}

func TestNormalizeExpandsConceptReferenceInliningItsBody(t *testing.T) {
	registry := decl.NewRegistry()
	registry.Define(decl.Concept{ID: decl.NewID("Truthy"), Params: []string{"T"}, Expr: astview.Expr(parse(t, `(expr "true")`))})

	ctx := newCtx(registry)
	owner := decl.NewID("f")

	n, ok := normalize.Normalize(ctx, parse(t, "(concept Truthy int)"), owner, mltal.Empty())
	xassert.True(t, ok)
	xassert.True(t, n.IsAtomic)
	xassert.Equal(t, decl.NewID("Truthy"), n.Atomic.Origin)
}

func TestNormalizeOfUnknownConceptIsIllFormed(t *testing.T) {
	ctx := newCtx(decl.NewRegistry())

	_, ok := normalize.Normalize(ctx, parse(t, "(concept Nope int)"), decl.NewID("f"), mltal.Empty())
	xassert.False(t, ok)
}

func TestAtomicConstraintOriginDistinguishesIdenticalBodies(t *testing.T) {
	registry := decl.NewRegistry()
	body := parse(t, `(expr "true")`)
	registry.Define(decl.Concept{ID: decl.NewID("A"), Params: nil, Expr: astview.Expr(body)})
	registry.Define(decl.Concept{ID: decl.NewID("B"), Params: nil, Expr: astview.Expr(body)})

	ctx := newCtx(registry)

	na, ok := normalize.Normalize(ctx, parse(t, "(concept A)"), decl.NewID("f"), mltal.Empty())
	xassert.True(t, ok)

	nb, ok := normalize.Normalize(ctx, parse(t, "(concept B)"), decl.NewID("f"), mltal.Empty())
	xassert.True(t, ok)

	xassert.True(t, na.Atomic.ProfileEqual(nb.Atomic))
	xassert.False(t, na.Atomic.StructurallyEqual(nb.Atomic))
}

func TestNormalizeSequenceFoldsLeftWithConjunction(t *testing.T) {
	ctx := newCtx(decl.NewRegistry())
	owner := decl.NewID("f")

	clauses := []astview.Expr{parse(t, `(expr "a")`), parse(t, `(expr "b")`), parse(t, `(expr "c")`)}

	n, ok := normalize.NormalizeSequence(ctx, clauses, owner, mltal.Empty())
	xassert.True(t, ok)
	xassert.False(t, n.IsAtomic)
	xassert.Equal(t, normalize.Conjunction, n.Kind)
	// Left-associative: ((a && b) && c).
	xassert.False(t, n.Left.IsAtomic)
	xassert.True(t, n.Right.IsAtomic)
}
