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
package normalform_test

import (
	"testing"

	"github.com/PetrKudr/clang-concepts-monorepo/internal/xassert"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/normalform"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/normalize"
)

func atom(s string) *normalize.NormalizedConstraint {
	return &normalize.NormalizedConstraint{IsAtomic: true, Atomic: normalize.AtomicConstraint{}}
}

func and(l, r *normalize.NormalizedConstraint) *normalize.NormalizedConstraint {
	return &normalize.NormalizedConstraint{Kind: normalize.Conjunction, Left: l, Right: r}
}

func or(l, r *normalize.NormalizedConstraint) *normalize.NormalizedConstraint {
	return &normalize.NormalizedConstraint{Kind: normalize.Disjunction, Left: l, Right: r}
}

// TestToCNFDistributesOverDisjunctionOfConjunctions checks (a || (b && c))
// in CNF form, which must distribute into two clauses: (a||b), (a||c).
func TestToCNFDistributesOverDisjunctionOfConjunctions(t *testing.T) {
	n := or(atom("a"), and(atom("b"), atom("c")))

	cnf := normalform.ToCNF(n)
	xassert.Equal(t, 2, len(cnf))
	xassert.Equal(t, 2, len(cnf[0]))
	xassert.Equal(t, 2, len(cnf[1]))
}

// TestToDNFConcatenatesOverDisjunctionOfConjunctions checks the dual: the
// same tree in DNF form concatenates rather than distributes, since its
// outer connective (||) already matches DNF's outer shape.
func TestToDNFConcatenatesOverDisjunctionOfConjunctions(t *testing.T) {
	n := or(atom("a"), and(atom("b"), atom("c")))

	dnf := normalform.ToDNF(n)
	xassert.Equal(t, 2, len(dnf))
	xassert.Equal(t, 1, len(dnf[0]))
	xassert.Equal(t, 2, len(dnf[1]))
}

func TestToCNFOfPureConjunctionConcatenates(t *testing.T) {
	n := and(atom("a"), atom("b"))

	cnf := normalform.ToCNF(n)
	xassert.Equal(t, 2, len(cnf))
	xassert.Equal(t, 1, len(cnf[0]))
	xassert.Equal(t, 1, len(cnf[1]))
}

func TestToDNFOfPureConjunctionDistributes(t *testing.T) {
	n := and(atom("a"), atom("b"))

	dnf := normalform.ToDNF(n)
	xassert.Equal(t, 1, len(dnf))
	xassert.Equal(t, 2, len(dnf[0]))
}

func TestSingleAtomIsItsOwnSingleClauseNormalForm(t *testing.T) {
	n := atom("a")

	cnf := normalform.ToCNF(n)
	dnf := normalform.ToDNF(n)
	xassert.Equal(t, 1, len(cnf))
	xassert.Equal(t, 1, len(cnf[0]))
	xassert.Equal(t, 1, len(dnf))
	xassert.Equal(t, 1, len(dnf[0]))
}

func TestLeafPointerIdentityIsPreserved(t *testing.T) {
	a := atom("a")
	n := and(a, a)

	cnf := normalform.ToCNF(n)
	xassert.Equal(t, 2, len(cnf))
	xassert.True(t, cnf[0][0] == &a.Atomic)
	xassert.True(t, cnf[1][0] == &a.Atomic)
}
