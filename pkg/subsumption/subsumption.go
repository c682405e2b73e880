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

// Package subsumption implements the subsumption engine (spec.md §4.6), the
// at-least-as-constrained predicate used for overload/specialization
// ranking (spec.md §4.7), and the ambiguity detector (spec.md §4.9) that
// flags atomic constraints which are textually identical but structurally
// distinct.
package subsumption

import (
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/astview"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/cache"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/decl"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/mltal"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/normalform"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/normalize"
)

// LeafPredicate decides whether atom a subsumes atom b (spec.md §4.8).
type LeafPredicate func(a, b normalize.AtomicConstraint) bool

// Structural is the leaf-equivalence predicate of spec.md §4.8a: a
// subsumes b iff their expressions are profile-equal and their parameter
// mappings (and origin declarations, see normalize.AtomicConstraint.
// StructurallyEqual) match pointwise.
func Structural(a, b normalize.AtomicConstraint) bool {
	return a.StructurallyEqual(b)
}

// ProfileEqualityOnly is the leaf-equivalence predicate of spec.md §4.8b,
// used only by the ambiguity detector: same as Structural but the
// parameter mapping (and origin) is ignored.
func ProfileEqualityOnly(a, b normalize.AtomicConstraint) bool {
	return a.ProfileEqual(b)
}

// Subsumes decides whether P subsumes Q under leaf-equivalence predicate e
// (spec.md §4.6): build PDNF = to_dnf(P), QCNF = to_cnf(Q); P subsumes Q iff
// every disjunctive clause of PDNF shares an e-equivalent atom with every
// conjunctive clause of QCNF.
func Subsumes(p, q *normalize.NormalizedConstraint, e LeafPredicate) bool {
	pdnf := normalform.ToDNF(p)
	qcnf := normalform.ToCNF(q)

	for _, pi := range pdnf {
		for _, qj := range qcnf {
			if !clausesShareEquivalentAtom(pi, qj, e) {
				return false
			}
		}
	}

	return true
}

func clausesShareEquivalentAtom(pi, qj normalform.Clause, e LeafPredicate) bool {
	for _, a := range pi {
		for _, b := range qj {
			if e(*a, *b) {
				return true
			}
		}
	}

	return false
}

// Context bundles the collaborators IsAtLeastAsConstrained needs to
// normalize each side before comparing.
type Context struct {
	Normalize normalize.Context
	Cache     *cache.Cache[cache.OrderedPair[string], bool]
}

// NewContext constructs a subsumption Context with a fresh cache.
func NewContext(nc normalize.Context) Context {
	return Context{Normalize: nc, Cache: cache.New[cache.OrderedPair[string], bool]()}
}

// IsAtLeastAsConstrained implements spec.md §4.7: the public predicate used
// by overload ranking. invalid is true iff the procedure itself failed
// (e.g. normalization of either side was ill-formed), which is distinct
// from a false "at least as constrained" answer (spec.md §7.3).
func IsAtLeastAsConstrained(
	ctx Context, d1 decl.ID, ac1 []astview.Expr, d2 decl.ID, ac2 []astview.Expr,
) (atLeastAsConstrained bool, invalid bool) {
	if len(ac1) == 0 {
		return len(ac2) == 0, false
	}

	if len(ac2) == 0 {
		return true, false
	}

	key := cache.NewOrderedPair(d1.String(), d2.String())
	if cached, ok := ctx.Cache.Get(key); ok {
		return cached, false
	}

	p, ok := normalize.NormalizeSequence(ctx.Normalize, ac1, d1, mltal.Empty())
	if !ok {
		return false, true
	}

	q, ok := normalize.NormalizeSequence(ctx.Normalize, ac2, d2, mltal.Empty())
	if !ok {
		return false, true
	}

	result := Subsumes(p, q, Structural)
	ctx.Cache.Put(key, result)

	return result, false
}

// AmbiguityNote points at one atomic constraint implicated by a detected
// ambiguity, for the Diagnostic Renderer to cite (spec.md §4.9: "reports
// atomic constraints whose textual identity but structural divergence
// changes the outcome").
type AmbiguityNote struct {
	Atom *normalize.AtomicConstraint
}

// MaybeEmitAmbiguousAtomicConstraints runs subsumption in both directions
// under both leaf predicates (spec.md §4.9). When the mutual-subsumption
// outcome differs between predicates, it returns two notes pointing at the
// last atomic pair whose profile-equality-only match would not hold under
// the structural predicate; an empty result means no ambiguity was
// detected.
func MaybeEmitAmbiguousAtomicConstraints(p, q *normalize.NormalizedConstraint) []AmbiguityNote {
	mutualStructural := Subsumes(p, q, Structural) && Subsumes(q, p, Structural)
	mutualProfile := Subsumes(p, q, ProfileEqualityOnly) && Subsumes(q, p, ProfileEqualityOnly)

	if mutualStructural == mutualProfile {
		return nil
	}

	pairs := divergingPairs(p, q)
	pairs = append(pairs, divergingPairs(q, p)...)

	if len(pairs) == 0 {
		return nil
	}

	last := pairs[len(pairs)-1]

	return []AmbiguityNote{{Atom: last[0]}, {Atom: last[1]}}
}

// divergingPairs finds every atom pair (a from x's DNF, b from y's CNF)
// that is profile-equal but not structurally equal, in scan order, so the
// caller can take the last one (spec.md §9: "capture the diverging atoms
// via a closure-held reference cell").
func divergingPairs(x, y *normalize.NormalizedConstraint) [][2]*normalize.AtomicConstraint {
	var found [][2]*normalize.AtomicConstraint

	xdnf := normalform.ToDNF(x)
	ycnf := normalform.ToCNF(y)

	for _, xi := range xdnf {
		for _, yj := range ycnf {
			for _, a := range xi {
				for _, b := range yj {
					if ProfileEqualityOnly(*a, *b) && !Structural(*a, *b) {
						found = append(found, [2]*normalize.AtomicConstraint{a, b})
					}
				}
			}
		}
	}

	return found
}
