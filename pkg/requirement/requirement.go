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

// Package requirement implements the four requirement kinds used inside a
// requires-expression (spec.md §4.10): simple, compound, type and nested.
// Each requirement evaluates once and caches its own Status.
package requirement

import (
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/astview"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/external"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/mltal"
)

// Status is a requirement's satisfaction-status enum (spec.md §3).
type Status int

const (
	// StatusDependent means the requirement could not yet be evaluated.
	StatusDependent Status = iota
	// StatusSatisfied means the requirement holds.
	StatusSatisfied
	// StatusSubstitutionFailureExpr means substituting into the
	// requirement's expression failed.
	StatusSubstitutionFailureExpr
	// StatusSubstitutionFailureType means substituting into the
	// requirement's type failed.
	StatusSubstitutionFailureType
	// StatusNoexceptNotMet means a `noexcept` requirement was requested but
	// the expression can throw.
	StatusNoexceptNotMet
	// StatusConversionAmbiguous means the return-type requirement's
	// copy-initialization was ambiguous.
	StatusConversionAmbiguous
	// StatusNoConversion means the return-type requirement's
	// copy-initialization had no viable conversion.
	StatusNoConversion
	// StatusConstraintsNotSatisfied means a type-constraint return-type
	// requirement's concept-specialization, or a Nested requirement's
	// constraint expression, was not satisfied.
	StatusConstraintsNotSatisfied
)

func (s Status) String() string {
	switch s {
	case StatusSatisfied:
		return "satisfied"
	case StatusSubstitutionFailureExpr:
		return "substitution failure in requirement expression"
	case StatusSubstitutionFailureType:
		return "substitution failure in requirement type"
	case StatusNoexceptNotMet:
		return "noexcept not met"
	case StatusConversionAmbiguous:
		return "conversion is ambiguous"
	case StatusNoConversion:
		return "no viable conversion"
	case StatusConstraintsNotSatisfied:
		return "constraints not satisfied"
	default:
		return "dependent"
	}
}

// Satisfied reports whether status does not make the requirement fail:
// true for StatusSatisfied and for StatusDependent.
func (s Status) Satisfied() bool {
	return s == StatusSatisfied || s == StatusDependent
}

// ReturnTypeKind tags a Compound requirement's return-type requirement
// variant (spec.md §4.10).
type ReturnTypeKind int

const (
	// ReturnTypeEmpty means no return-type requirement was written.
	ReturnTypeEmpty ReturnTypeKind = iota
	// ReturnTypeExpected means a concrete expected type was written.
	ReturnTypeExpected
	// ReturnTypeConstraint means a type-constraint (concept applied to the
	// expression's decltype) was written.
	ReturnTypeConstraint
)

// ReturnTypeRequirement is the tagged variant spec.md §3/§9 describe.
type ReturnTypeRequirement struct {
	Kind ReturnTypeKind

	// Valid when Kind == ReturnTypeExpected.
	ExpectedType string

	// Valid when Kind == ReturnTypeConstraint.
	ConceptName string
	ConceptArgs []astview.Expr
}

// Kind tags the Requirement sum type.
type Kind int

const (
	// KindSimple is `{ expr ; }`.
	KindSimple Kind = iota
	// KindCompound is `{ expr } [noexcept] [-> type-requirement]`.
	KindCompound
	// KindType is `typename T;`.
	KindType
	// KindNested is `requires inner-constraint;`.
	KindNested
)

// Requirement is the tagged variant over the four requirement kinds
// (spec.md §3). Exactly one payload is meaningful, selected by Kind.
type Requirement struct {
	Kind Kind

	// Dependent, ContainsUnexpandedPack and Status are common to every
	// kind (spec.md §3: "each requirement carries flags: dependent,
	// contains-unexpanded-pack, satisfied, and a satisfaction-status enum").
	Dependent               bool
	ContainsUnexpandedPack  bool
	Status                  Status

	// Simple / Compound payload.
	Expr astview.Expr

	// Compound-only payload.
	Noexcept   bool
	ReturnType ReturnTypeRequirement

	// Type-only payload.
	Type string

	// NestedSatisfaction holds the cached Satisfaction of a Nested
	// requirement's own constraint expression, or of a Compound
	// requirement's return-type-constraint concept specialization, stored
	// by value on the owning Satisfaction's Details (spec.md §4.10's last
	// bullet) so the Diagnostic Renderer can recurse into it.
	NestedSatisfaction *Satisfaction

	// SubstitutionMessage carries the diagnostic text for a
	// substitution-failure status.
	SubstitutionMessage string
}

// NestedEvaluator is implemented by package satisfy, and is used to evaluate
// a Nested requirement's own constraint expression. Kept as an interface
// here (rather than importing package satisfy) to avoid an import cycle:
// satisfy evaluates requires-expressions, which contain nested requirements,
// which must themselves call back into satisfy.
type NestedEvaluator interface {
	EvaluateNested(expr astview.Expr, args mltal.MLTAL) Satisfaction
}

// Context bundles the collaborators a requirement needs to evaluate itself.
type Context struct {
	Subst    external.Substitutor
	Throw    external.ExceptionQuery
	Init     external.Initializer
	Eval     external.ConstantEvaluator
	Nested   NestedEvaluator
	Concepts ConceptChecker
}

// ConceptChecker evaluates a concept-specialization for a type-constraint
// return-type requirement. Implemented by package satisfy.
type ConceptChecker interface {
	EvaluateConceptRef(name string, args []astview.Expr, outer mltal.MLTAL) Satisfaction
}

// EvaluateSimple evaluates a Simple requirement: dependent if substitution
// cannot resolve the expression, otherwise satisfied by mere
// substitutability (spec.md §4.10: "mere parseability suffices").
func EvaluateSimple(ctx Context, expr astview.Expr, args mltal.MLTAL) Requirement {
	r := Requirement{Kind: KindSimple, Expr: expr}

	if ctx.Subst.IsInstantiationDependent(expr, args) {
		r.Dependent = true
		r.Status = StatusDependent

		return r
	}

	res, err := ctx.Subst.Subst(expr, args)
	if err != nil || res.Outcome != external.SubstUsable {
		r.Status = StatusSubstitutionFailureExpr

		if res.Message != "" {
			r.SubstitutionMessage = res.Message
		}

		return r
	}

	r.Status = StatusSatisfied

	return r
}

// EvaluateCompound evaluates a Compound requirement: the expression, an
// optional noexcept check, then the return-type requirement (spec.md
// §4.10).
func EvaluateCompound(
	ctx Context, expr astview.Expr, noexcept bool, rt ReturnTypeRequirement, args mltal.MLTAL,
) Requirement {
	r := Requirement{Kind: KindCompound, Expr: expr, Noexcept: noexcept, ReturnType: rt}

	if ctx.Subst.IsInstantiationDependent(expr, args) {
		r.Dependent = true
		r.Status = StatusDependent

		return r
	}

	res, err := ctx.Subst.Subst(expr, args)
	if err != nil || res.Outcome != external.SubstUsable {
		r.Status = StatusSubstitutionFailureExpr
		r.SubstitutionMessage = res.Message

		return r
	}

	substituted := res.Expr

	if noexcept && ctx.Throw.CanThrow(substituted) == external.Can {
		r.Status = StatusNoexceptNotMet
		return r
	}

	r.Status, r.NestedSatisfaction = evaluateReturnType(ctx, rt, substituted, args)

	return r
}

func evaluateReturnType(ctx Context, rt ReturnTypeRequirement, expr astview.Expr, args mltal.MLTAL) (Status, *Satisfaction) {
	switch rt.Kind {
	case ReturnTypeEmpty:
		return StatusSatisfied, nil
	case ReturnTypeExpected:
		switch ctx.Init.TryInitialize(rt.ExpectedType, expr) {
		case external.InitOK:
			return StatusSatisfied, nil
		case external.InitAmbiguous:
			return StatusConversionAmbiguous, nil
		default:
			return StatusNoConversion, nil
		}
	case ReturnTypeConstraint:
		// Form decltype(expr), substitute it as the type-constraint's first
		// template argument, and evaluate the resulting concept
		// specialization (spec.md §4.10).
		declType := &declTypeExpr{inner: expr}
		conceptArgs := append([]astview.Expr{declType}, rt.ConceptArgs...)

		sat := ctx.Concepts.EvaluateConceptRef(rt.ConceptName, conceptArgs, args)
		if sat.IsSatisfied {
			return StatusSatisfied, nil
		}

		return StatusConstraintsNotSatisfied, &sat
	default:
		return StatusSatisfied, nil
	}
}

// declTypeExpr wraps an already-evaluated expression as a synthetic
// decltype(...) argument, for ConceptChecker.EvaluateConceptRef's benefit.
// It implements astview.Expr only to the extent of String(); it is never
// fed back through Classify.
type declTypeExpr struct{ inner astview.Expr }

func (d *declTypeExpr) IsList() bool   { return false }
func (d *declTypeExpr) IsSymbol() bool { return true }
func (d *declTypeExpr) String() string { return "decltype(" + d.inner.String() + ")" }

// EvaluateType evaluates a Type requirement: dependent, or satisfied by
// mere existence (spec.md §4.10: "substitution failure is recorded by the
// producer, not here").
func EvaluateType(typeName string, dependent bool) Requirement {
	if dependent {
		return Requirement{Kind: KindType, Type: typeName, Dependent: true, Status: StatusDependent}
	}

	return Requirement{Kind: KindType, Type: typeName, Status: StatusSatisfied}
}

// EvaluateNested evaluates a Nested requirement by immediately running the
// satisfaction evaluator (package satisfy, injected via ctx.Nested) on its
// constraint expression and recording the result (spec.md §4.10).
func EvaluateNested(ctx Context, expr astview.Expr, args mltal.MLTAL) Requirement {
	sat := ctx.Nested.EvaluateNested(expr, args)

	r := Requirement{
		Kind:               KindNested,
		Expr:               expr,
		NestedSatisfaction: &sat,
	}

	if sat.IsSatisfied {
		r.Status = StatusSatisfied
	} else {
		r.Status = StatusConstraintsNotSatisfied
	}

	return r
}

// EvaluateAll evaluates a sequence of requirement bodies (already split out
// by package astview.Requirements) in order, short-circuiting at the first
// unsatisfied, non-dependent requirement -- a requires-expression is a
// single bool prvalue equal to the conjunction of its requirements.
func EvaluateAll(ctx Context, bodies []astview.Expr, args mltal.MLTAL) (bool, []Requirement) {
	results := make([]Requirement, 0, len(bodies))

	for _, body := range bodies {
		r := Decode(ctx, body, args)
		results = append(results, r)

		if !r.Status.Satisfied() {
			return false, results
		}
	}

	return true, results
}
