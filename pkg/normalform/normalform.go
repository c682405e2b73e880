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

// Package normalform converts a normalize.NormalizedConstraint into
// conjunctive or disjunctive normal form (spec.md §4.5): a two-level
// sequence-of-sequences of pointers to AtomicConstraint, interpreted as CNF
// (outer = conjunction, inner = disjunction) or DNF (outer = disjunction,
// inner = conjunction) depending on which builder produced it.
//
// Unlike a general-purpose propositional simplifier, ToCNF/ToDNF perform no
// unit propagation or clause simplification: every leaf pointer from
// normalization is preserved exactly once per clause it appears in, because
// subsumption and the ambiguity detector (both in package subsumption)
// need to compare leaves by pointer/origin identity, not by a
// simplified logical shape.
package normalform

import "github.com/PetrKudr/clang-concepts-monorepo/pkg/normalize"

// Clause is a single inner sequence of atomic-constraint leaves.
type Clause []*normalize.AtomicConstraint

// NormalForm is the outer sequence of clauses.
type NormalForm []Clause

// ToCNF converts n into conjunctive normal form: a conjunction of
// disjunctive clauses.
func ToCNF(n *normalize.NormalizedConstraint) NormalForm {
	return build(n, normalize.Conjunction)
}

// ToDNF converts n into disjunctive normal form: a disjunction of
// conjunctive clauses.
func ToDNF(n *normalize.NormalizedConstraint) NormalForm {
	return build(n, normalize.Disjunction)
}

// build is the mutually-symmetric core of ToCNF/ToDNF (spec.md §4.5):
// matchKind is the outer connective of the normal form being built
// (Conjunction for CNF, Disjunction for DNF). A Compound node whose own
// kind matches the outer connective concatenates its children's clause
// lists; otherwise it distributes (Cartesian product).
func build(n *normalize.NormalizedConstraint, matchKind normalize.CompoundKind) NormalForm {
	if n.IsAtomic {
		return NormalForm{Clause{&n.Atomic}}
	}

	left := build(n.Left, matchKind)
	right := build(n.Right, matchKind)

	if n.Kind == matchKind {
		out := make(NormalForm, 0, len(left)+len(right))
		out = append(out, left...)
		out = append(out, right...)

		return out
	}

	out := make(NormalForm, 0, len(left)*len(right))

	for _, lc := range left {
		for _, rc := range right {
			merged := make(Clause, 0, len(lc)+len(rc))
			merged = append(merged, lc...)
			merged = append(merged, rc...)
			out = append(out, merged)
		}
	}

	return out
}
