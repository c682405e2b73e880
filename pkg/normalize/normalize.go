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

// Package normalize lowers a constraint expression into a NormalizedConstraint
// tree whose leaves are atomic constraints carrying a parameter mapping
// (spec.md §4.4). Expansion of concept references inlines the referenced
// concept's body after remapping its arguments.
package normalize

import (
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/astview"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/decl"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/external"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/mltal"
)

// CompoundKind distinguishes a Compound NormalizedConstraint's connective.
type CompoundKind int

const (
	// Conjunction is logical "and".
	Conjunction CompoundKind = iota
	// Disjunction is logical "or".
	Disjunction
)

// AtomicConstraint is the pair (expression, parameter-mapping) spec.md §3
// defines: the mapping is the innermost template-argument list captured at
// the moment this atom was created during normalization. Origin records
// which declaration's associated-constraints clause (or which concept's
// body) the atom was textually drawn from -- two atoms with identical
// source text but different Origins are the structurally-distinct-but-
// textually-identical case spec.md §4.9's ambiguity detector exists for.
type AtomicConstraint struct {
	Expr    astview.Expr
	Mapping mltal.Level
	Origin  decl.ID
}

// ProfileEqual reports whether two atoms' expressions are profile-equal
// (spec.md §3: "canonicalization ... ignoring source locations").
func (a AtomicConstraint) ProfileEqual(o AtomicConstraint) bool {
	return astview.Profile(a.Expr) == astview.Profile(o.Expr)
}

// StructurallyEqual implements the "Structural" leaf-equivalence predicate
// (spec.md §4.8a): profile-equal expressions, pointwise-equal mappings, and
// the same origin declaration. Folding Origin into this predicate is this
// engine's concrete resolution of the standard's left-unspecified
// "structurally distinct but textually identical" case (spec.md §4.9,
// scenario 4): two concepts with identical bodies produce atoms whose
// mappings render identically but whose Origin differs, so this predicate
// correctly treats them as distinct while ProfileEqual alone (§4.8b) does
// not.
func (a AtomicConstraint) StructurallyEqual(o AtomicConstraint) bool {
	return a.ProfileEqual(o) && a.Mapping.PointwiseEqual(o.Mapping) && a.Origin == o.Origin
}

// NormalizedConstraint is the tagged variant spec.md §3 describes: either
// Atomic (owns one AtomicConstraint) or Compound (owns a kind and two
// children). The invariant is that a NormalizedConstraint contains no
// logical connectives, concept-references or parens in its leaves -- all
// have been resolved into atoms or structure.
type NormalizedConstraint struct {
	IsAtomic bool

	// Valid iff IsAtomic.
	Atomic AtomicConstraint

	// Valid iff !IsAtomic.
	Kind        CompoundKind
	Left, Right *NormalizedConstraint
}

func atomicLeaf(expr astview.Expr, mapping mltal.Level, origin decl.ID) *NormalizedConstraint {
	return &NormalizedConstraint{IsAtomic: true, Atomic: AtomicConstraint{Expr: expr, Mapping: mapping, Origin: origin}}
}

func compound(kind CompoundKind, l, r *NormalizedConstraint) *NormalizedConstraint {
	return &NormalizedConstraint{Kind: kind, Left: l, Right: r}
}

// Context bundles the collaborators Normalize needs.
type Context struct {
	Registry *decl.Registry
	Subst    external.Substitutor
	Checker  external.TemplateArgChecker
}

// Normalize lowers expr into a NormalizedConstraint under the given
// parameter mapping, attributing freshly produced atomic leaves to owner.
// A false second return value signals "ill-formed; no diagnostic required"
// (spec.md §4.4: "`Option<NormalizedConstraint>` -- `None` signals
// ill-formed").
func Normalize(ctx Context, expr astview.Expr, owner decl.ID, mapping mltal.MLTAL) (*NormalizedConstraint, bool) {
	switch astview.Classify(expr) {
	case astview.KindParen:
		return Normalize(ctx, astview.Unparen(expr), owner, mapping)

	case astview.KindAnd:
		lhs, rhs, _ := astview.And(expr)
		return normalizeCompound(ctx, Conjunction, lhs, rhs, owner, mapping)

	case astview.KindOr:
		lhs, rhs, _ := astview.Or(expr)
		return normalizeCompound(ctx, Disjunction, lhs, rhs, owner, mapping)

	case astview.KindConceptRef:
		return normalizeConceptRef(ctx, expr, owner, mapping)

	default:
		// Anything else -- including a requires-expression, which spec.md
		// §4.4 gives no further decomposition rule for -- is atomic.
		return atomicLeaf(expr, mapping.Innermost(), owner), true
	}
}

func normalizeCompound(
	ctx Context, kind CompoundKind, lhs, rhs astview.Expr, owner decl.ID, mapping mltal.MLTAL,
) (*NormalizedConstraint, bool) {
	l, ok := Normalize(ctx, lhs, owner, mapping)
	if !ok {
		return nil, false
	}

	r, ok := Normalize(ctx, rhs, owner, mapping)
	if !ok {
		return nil, false
	}

	return compound(kind, l, r), true
}

func normalizeConceptRef(
	ctx Context, expr astview.Expr, owner decl.ID, mapping mltal.MLTAL,
) (*NormalizedConstraint, bool) {
	name, rawArgs, _ := astview.ConceptRef(expr)

	substArgs := make([]astview.Expr, len(rawArgs))

	for i, a := range rawArgs {
		res, err := ctx.Subst.Subst(a, mapping)
		if err != nil || res.Outcome != external.SubstUsable {
			return nil, false
		}

		substArgs[i] = res.Expr
	}

	concept, found := ctx.Registry.Lookup(name)
	if !found {
		return nil, false
	}

	level, instantiationDependent, ok := ctx.Checker.CheckTemplateArgumentList(concept.Params, substArgs)
	if !ok {
		return nil, false
	}

	if instantiationDependent {
		leafExpr := rebuildConceptRef(name, substArgs)
		return atomicLeaf(leafExpr, level, owner), true
	}

	conceptExpr, ok := concept.Expr.(astview.Expr)
	if !ok {
		return nil, false
	}

	return Normalize(ctx, conceptExpr, concept.ID, mapping.WithOuterLevel(level))
}

// NormalizeSequence normalizes an ordered list of top-level constraint
// clauses (the implicit conjunction of a declaration's associated
// constraints, spec.md §4.4's final paragraph), folding left with
// conjunction.
func NormalizeSequence(
	ctx Context, clauses []astview.Expr, owner decl.ID, mapping mltal.MLTAL,
) (*NormalizedConstraint, bool) {
	if len(clauses) == 0 {
		return nil, false
	}

	acc, ok := Normalize(ctx, clauses[0], owner, mapping)
	if !ok {
		return nil, false
	}

	for _, clause := range clauses[1:] {
		next, ok := Normalize(ctx, clause, owner, mapping)
		if !ok {
			return nil, false
		}

		acc = compound(Conjunction, acc, next)
	}

	return acc, true
}

// GetNormalizedAssociatedConstraints normalizes declaration d's associated
// constraints (spec.md §6), looked up from ctx.Registry.
func GetNormalizedAssociatedConstraints(ctx Context, d decl.ID) (*NormalizedConstraint, bool) {
	raw, ok := ctx.Registry.LookupConstraints(d)
	if !ok {
		return nil, false
	}

	clauses := make([]astview.Expr, 0, len(raw))

	for _, c := range raw {
		if e, ok := c.(astview.Expr); ok {
			clauses = append(clauses, e)
		}
	}

	return NormalizeSequence(ctx, clauses, d, mltal.Empty())
}
