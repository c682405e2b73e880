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
package subsumption_test

import (
	"testing"

	"github.com/PetrKudr/clang-concepts-monorepo/internal/xassert"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/astview"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/decl"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/external"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/mltal"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/normalize"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/sexp"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/subsumption"
)

func parse(t *testing.T, src string) astview.Expr {
	t.Helper()

	sf := sexp.NewSourceFile("<test>", []byte(src))

	e, _, err := sf.Parse()
	xassert.Equal(t, nil, err)

	return e
}

func newNormalizeCtx(registry *decl.Registry) normalize.Context {
	eng := external.NewDefaultEngine()
	return normalize.Context{Registry: registry, Subst: eng, Checker: eng}
}

// TestConjunctionSubsumesOneOfItsConjuncts checks (a && b) subsumes a alone
// (spec.md §4.6: P is at least as constrained as Q when every DNF clause of
// P shares an e-equivalent atom with every CNF clause of Q), but not the
// converse.
func TestConjunctionSubsumesOneOfItsConjuncts(t *testing.T) {
	nctx := newNormalizeCtx(decl.NewRegistry())

	p, ok := normalize.Normalize(nctx, parse(t, `(&& (expr "a") (expr "b"))`), decl.NewID("f"), mltal.Empty())
	xassert.True(t, ok)

	q, ok := normalize.Normalize(nctx, parse(t, `(expr "a")`), decl.NewID("f"), mltal.Empty())
	xassert.True(t, ok)

	xassert.True(t, subsumption.Subsumes(p, q, subsumption.Structural))
	xassert.False(t, subsumption.Subsumes(q, p, subsumption.Structural))
}

func TestSubsumptionIsReflexive(t *testing.T) {
	nctx := newNormalizeCtx(decl.NewRegistry())

	p, ok := normalize.Normalize(nctx, parse(t, `(&& (expr "a") (expr "b"))`), decl.NewID("f"), mltal.Empty())
	xassert.True(t, ok)

	xassert.True(t, subsumption.Subsumes(p, p, subsumption.Structural))
}

// TestIsAtLeastAsConstrainedHandlesEmptyConstraintLists covers the
// empty-constraint-list edge cases (spec.md §4.7): every declaration is at
// least as constrained as an unconstrained one, and an unconstrained one is
// not at least as constrained as a constrained one.
func TestIsAtLeastAsConstrainedHandlesEmptyConstraintLists(t *testing.T) {
	ctx := subsumption.NewContext(newNormalizeCtx(decl.NewRegistry()))

	atLeast, invalid := subsumption.IsAtLeastAsConstrained(ctx, decl.NewID("f"), nil, decl.NewID("g"), nil)
	xassert.False(t, invalid)
	xassert.True(t, atLeast)

	ac1 := []astview.Expr{parse(t, `(expr "a")`)}

	atLeast, invalid = subsumption.IsAtLeastAsConstrained(ctx, decl.NewID("f"), ac1, decl.NewID("g"), nil)
	xassert.False(t, invalid)
	xassert.True(t, atLeast)

	atLeast, invalid = subsumption.IsAtLeastAsConstrained(ctx, decl.NewID("f"), nil, decl.NewID("g"), ac1)
	xassert.False(t, invalid)
	xassert.False(t, atLeast)
}

// TestIsAtLeastAsConstrainedCachesByOrderedDeclPair re-runs the same pair of
// declarations twice and checks the cache's entry count, not just its
// result, so the test would fail if caching stopped happening.
func TestIsAtLeastAsConstrainedCachesByOrderedDeclPair(t *testing.T) {
	ctx := subsumption.NewContext(newNormalizeCtx(decl.NewRegistry()))

	ac1 := []astview.Expr{parse(t, `(&& (expr "a") (expr "b"))`)}
	ac2 := []astview.Expr{parse(t, `(expr "a")`)}

	first, invalid := subsumption.IsAtLeastAsConstrained(ctx, decl.NewID("f"), ac1, decl.NewID("g"), ac2)
	xassert.False(t, invalid)
	xassert.True(t, first)
	xassert.Equal(t, 1, ctx.Cache.Len())

	second, invalid := subsumption.IsAtLeastAsConstrained(ctx, decl.NewID("f"), ac1, decl.NewID("g"), ac2)
	xassert.False(t, invalid)
	xassert.Equal(t, first, second)
	xassert.Equal(t, 1, ctx.Cache.Len())
}

// TestAmbiguityDetectorFiresOnTextuallyIdenticalButStructurallyDistinctAtoms
// covers spec.md §8's scenario 4: two concepts with identical bodies (same
// profile) but different Origins must be flagged, since the Structural and
// ProfileEqualityOnly predicates disagree about their mutual subsumption.
func TestAmbiguityDetectorFiresOnTextuallyIdenticalButStructurallyDistinctAtoms(t *testing.T) {
	registry := decl.NewRegistry()
	body := parse(t, `(expr "true")`)
	registry.Define(decl.Concept{ID: decl.NewID("A"), Params: nil, Expr: body})
	registry.Define(decl.Concept{ID: decl.NewID("B"), Params: nil, Expr: body})

	nctx := newNormalizeCtx(registry)

	p, ok := normalize.Normalize(nctx, parse(t, "(concept A)"), decl.NewID("f"), mltal.Empty())
	xassert.True(t, ok)

	q, ok := normalize.Normalize(nctx, parse(t, "(concept B)"), decl.NewID("g"), mltal.Empty())
	xassert.True(t, ok)

	notes := subsumption.MaybeEmitAmbiguousAtomicConstraints(p, q)
	xassert.Equal(t, 2, len(notes))
}

func TestNoAmbiguityWhenBothPredicatesAgree(t *testing.T) {
	nctx := newNormalizeCtx(decl.NewRegistry())

	p, ok := normalize.Normalize(nctx, parse(t, `(expr "a")`), decl.NewID("f"), mltal.Empty())
	xassert.True(t, ok)

	q, ok := normalize.Normalize(nctx, parse(t, `(expr "a")`), decl.NewID("f"), mltal.Empty())
	xassert.True(t, ok)

	notes := subsumption.MaybeEmitAmbiguousAtomicConstraints(p, q)
	xassert.Equal(t, 0, len(notes))
}
