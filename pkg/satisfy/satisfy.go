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

// Package satisfy implements the Satisfaction Evaluator (spec.md §4.2) and
// its cached top-level entry points (spec.md §4.3, §4.7's prerequisite).
// It computes a Satisfaction record for a constraint expression given a
// multilevel template-argument context, handling short-circuiting,
// substitution failure, instantiation-dependence and constant evaluation.
package satisfy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/PetrKudr/clang-concepts-monorepo/pkg/astview"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/cache"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/decl"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/external"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/mltal"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/requirement"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/wf"
)

// Hard-failure sentinels (spec.md §7.3). Soft (SFINAE) failure and
// "unsatisfied" are deliberately never represented this way.
var (
	ErrNonConstantConstraintExpression = errors.New("satisfy: substituted constraint expression is not a constant expression")
	ErrIllFormedSubstitutedExpr        = errors.New("satisfy: substituted constraint expression is ill-formed")
	ErrUnknownConcept                  = errors.New("satisfy: reference to unknown concept")
	ErrConstraintsNotSatisfied         = errors.New("satisfy: constraints not satisfied")
)

// Context bundles every collaborator the evaluator needs: the declaration
// registry (standing in for the symbol table), the external collaborators
// of spec.md §6, the satisfaction cache, and an optional logger.
type Context struct {
	Registry *decl.Registry
	Subst    external.Substitutor
	Eval     external.ConstantEvaluator
	Throw    external.ExceptionQuery
	Init     external.Initializer
	Checker  external.TemplateArgChecker
	Stack    external.InstantiationStack
	Cache    *cache.Cache[string, Satisfaction]
	Log      *logrus.Logger
}

func (ctx Context) log() *logrus.Logger {
	if ctx.Log != nil {
		return ctx.Log
	}

	return logrus.StandardLogger()
}

// NewContext constructs a satisfy Context with a fresh cache and a bounded
// instantiation stack.
func NewContext(registry *decl.Registry, engine *external.DefaultEngine) Context {
	return Context{
		Registry: registry,
		Subst:    engine,
		Eval:     engine,
		Throw:    engine,
		Init:     engine,
		Checker:  engine,
		Stack:    external.NewStack(512),
		Cache:    cache.New[string, Satisfaction](),
	}
}

// CheckConstraintSatisfaction is the cached top-level entry point (spec.md
// §4.2+§4.3): clauses form an implicit conjunction. On a cache hit the
// cached record is returned by value without re-invoking substitution.
func (ctx Context) CheckConstraintSatisfaction(
	owner decl.ID, clauses []astview.Expr, args mltal.MLTAL,
) (Satisfaction, error) {
	// spec.md §4.3 keys the satisfaction cache on the owner plus the
	// profiled innermost template-argument list, not the whole MLTAL stack.
	key := owner.String() + "#" + args.Innermost().Fingerprint()

	if cached, ok := ctx.Cache.Get(key); ok {
		ctx.log().WithField("owner", owner.String()).Debug("satisfaction cache hit")
		return cached.Clone(), nil
	}

	frame, err := ctx.Stack.Push(external.ConstraintsCheck, owner.String())
	if err != nil {
		return Satisfaction{}, fmt.Errorf("satisfy: pushing constraints-check frame for %s: %w", owner, err)
	}
	defer frame.Release()

	sat, err := ctx.evaluateSequence(clauses, args)
	if err != nil {
		return Satisfaction{}, err
	}

	ctx.Cache.Put(key, sat)
	ctx.log().WithField("owner", owner.String()).Debug("satisfaction cache miss; evaluated and stored")

	return sat.Clone(), nil
}

// CheckConstraintSatisfactionExpr is the identity-evaluator overload
// (spec.md §6): it runs the same recursive decomposition but never
// substitutes, for already-substituted expression forms.
func (ctx Context) CheckConstraintSatisfactionExpr(expr astview.Expr) (Satisfaction, error) {
	ok, details, err := ctx.evaluateIdentity(expr)
	if err != nil {
		return Satisfaction{}, err
	}

	return Satisfaction{IsSatisfied: ok, Details: details}, nil
}

// EnsureTemplateArgumentListConstraints is a convenience wrapper (spec.md
// §6): it evaluates td's associated constraints against args and, on
// failure, returns an error wrapping the top-level "constraints not
// satisfied" diagnostic along with a rendered argument-binding string.
func (ctx Context) EnsureTemplateArgumentListConstraints(td decl.ID, args mltal.MLTAL) error {
	raw, ok := ctx.Registry.LookupConstraints(td)
	if !ok {
		return nil
	}

	clauses := make([]astview.Expr, 0, len(raw))

	for _, c := range raw {
		if e, ok := c.(astview.Expr); ok {
			clauses = append(clauses, e)
		}
	}

	sat, err := ctx.CheckConstraintSatisfaction(td, clauses, args)
	if err != nil {
		return err
	}

	if !sat.IsSatisfied {
		return fmt.Errorf("%w for %s%s", ErrConstraintsNotSatisfied, td, renderBinding(args))
	}

	return nil
}

func renderBinding(args mltal.MLTAL) string {
	sorted := args.Innermost().SortedBindings()
	if len(sorted) == 0 {
		return ""
	}

	parts := make([]string, len(sorted))
	for i, b := range sorted {
		parts[i] = b.Name + "=" + b.Value
	}

	return " [with " + strings.Join(parts, ", ") + "]"
}

// evaluateSequence evaluates an ordered list of top-level clauses as an
// implicit left-associative conjunction (spec.md §4.4's fold, mirrored here
// for satisfaction): once a clause is unsatisfied, later clauses are not
// evaluated.
func (ctx Context) evaluateSequence(clauses []astview.Expr, args mltal.MLTAL) (Satisfaction, error) {
	sat := Satisfaction{IsSatisfied: true}

	for _, clause := range clauses {
		if !sat.IsSatisfied {
			break
		}

		ok, details, err := ctx.evaluate(clause, args, &sat.Dependent, &sat.ContainsUnexpandedPack)
		if err != nil {
			return Satisfaction{}, err
		}

		sat.IsSatisfied = ok
		sat.Details = append(sat.Details, details...)
	}

	return sat, nil
}

// evaluate is the recursive-descent core of spec.md §4.2's algorithm.
func (ctx Context) evaluate(expr astview.Expr, args mltal.MLTAL, dep, pack *bool) (bool, []Detail, error) {
	switch astview.Classify(expr) {
	case astview.KindParen:
		return ctx.evaluate(astview.Unparen(expr), args, dep, pack)

	case astview.KindAnd:
		lhs, rhs, _ := astview.And(expr)
		return ctx.evaluateAnd(lhs, rhs, args, dep, pack)

	case astview.KindOr:
		lhs, rhs, _ := astview.Or(expr)
		return ctx.evaluateOr(lhs, rhs, args, dep, pack)

	case astview.KindConceptRef:
		return ctx.evaluateConceptRefNode(expr, args, dep, pack)

	case astview.KindRequires:
		return ctx.evaluateRequires(expr, args, dep, pack)

	default:
		return ctx.evaluateAtomic(expr, args, dep, pack)
	}
}

func (ctx Context) evaluateAnd(lhs, rhs astview.Expr, args mltal.MLTAL, dep, pack *bool) (bool, []Detail, error) {
	okL, detL, err := ctx.evaluate(lhs, args, dep, pack)
	if err != nil {
		return false, nil, err
	}

	if !okL {
		return false, detL, nil
	}

	okR, detR, err := ctx.evaluate(rhs, args, dep, pack)
	if err != nil {
		return false, nil, err
	}

	return okR, append(detL, detR...), nil
}

func (ctx Context) evaluateOr(lhs, rhs astview.Expr, args mltal.MLTAL, dep, pack *bool) (bool, []Detail, error) {
	okL, detL, err := ctx.evaluate(lhs, args, dep, pack)
	if err != nil {
		return false, nil, err
	}

	if okL {
		return true, detL, nil
	}

	okR, detR, err := ctx.evaluate(rhs, args, dep, pack)
	if err != nil {
		return false, nil, err
	}

	return okR, append(detL, detR...), nil
}

// evaluateConceptRefNode evaluates a concept-specialization node directly
// (substitute its arguments, bind the canonical level, recursively check
// the referenced concept's own constraints through the same cache), caching
// the nested Satisfaction on the Detail so the Diagnostic Renderer can
// recurse into it (spec.md §4.11).
func (ctx Context) evaluateConceptRefNode(expr astview.Expr, args mltal.MLTAL, dep, pack *bool) (bool, []Detail, error) {
	name, rawArgs, _ := astview.ConceptRef(expr)

	ok, nested, instantiationDependent, err := ctx.evaluateConceptRef(name, rawArgs, args)
	if err != nil {
		return false, nil, err
	}

	if instantiationDependent {
		*dep = true
		*pack = true

		return true, nil, nil
	}

	if ok {
		return true, nil, nil
	}

	detail := Detail{ClauseExpr: expr, Record: DetailRecord{NestedSatisfaction: &nested}}

	return false, []Detail{detail}, nil
}

func (ctx Context) evaluateConceptRef(
	name string, rawArgs []astview.Expr, args mltal.MLTAL,
) (ok bool, nested Satisfaction, instantiationDependent bool, err error) {
	substArgs := make([]astview.Expr, len(rawArgs))

	for i, a := range rawArgs {
		res, serr := ctx.Subst.Subst(a, args)
		if serr != nil {
			return false, Satisfaction{}, false, serr
		}

		if res.Outcome != external.SubstUsable {
			return false, Satisfaction{}, false, fmt.Errorf(
				"%w: substituting argument %d of %q: %s", ErrIllFormedSubstitutedExpr, i, name, res.Message)
		}

		substArgs[i] = res.Expr
	}

	concept, found := ctx.Registry.Lookup(name)
	if !found {
		return false, Satisfaction{}, false, fmt.Errorf("%w: %q", ErrUnknownConcept, name)
	}

	level, dependent, convOK := ctx.Checker.CheckTemplateArgumentList(concept.Params, substArgs)
	if !convOK {
		return false, Satisfaction{}, false, fmt.Errorf(
			"%w: argument list for concept %q does not match its parameter list", ErrIllFormedSubstitutedExpr, name)
	}

	if dependent {
		return true, Satisfaction{Dependent: true}, true, nil
	}

	conceptExpr, ok2 := concept.Expr.(astview.Expr)
	if !ok2 {
		return false, Satisfaction{}, false, fmt.Errorf("satisfy: concept %q has no body", name)
	}

	nested, err = ctx.CheckConstraintSatisfaction(concept.ID, []astview.Expr{conceptExpr}, args.WithOuterLevel(level))
	if err != nil {
		return false, Satisfaction{}, false, err
	}

	return nested.IsSatisfied, nested, false, nil
}

// evaluateRequires evaluates a requires-expression by delegating to package
// requirement's per-requirement evaluators (spec.md §4.10); the whole
// requires-expression is, from the point of view of &&/||, a single bool
// atomic expression equal to the conjunction of its requirements.
func (ctx Context) evaluateRequires(expr astview.Expr, args mltal.MLTAL, dep, pack *bool) (bool, []Detail, error) {
	bodies, _ := astview.Requirements(expr)

	reqCtx := requirement.Context{
		Subst:    ctx.Subst,
		Throw:    ctx.Throw,
		Init:     ctx.Init,
		Eval:     ctx.Eval,
		Nested:   ctx,
		Concepts: ctx,
	}

	ok, results := requirement.EvaluateAll(reqCtx, bodies, args)
	if ok {
		return true, nil, nil
	}

	for _, r := range results {
		if r.Dependent {
			*dep = true
		}

		if r.ContainsUnexpandedPack {
			*pack = true
		}
	}

	detail := Detail{ClauseExpr: expr, Record: DetailRecord{Requirements: results}}

	return false, []Detail{detail}, nil
}

// EvaluateNested implements requirement.NestedEvaluator, returning the
// Nested requirement's own cached Satisfaction by value (spec.md §4.10's
// last bullet) rather than collapsing it to a detail count.
func (ctx Context) EvaluateNested(expr astview.Expr, args mltal.MLTAL) Satisfaction {
	dep, pack := new(bool), new(bool)

	ok, details, err := ctx.evaluate(expr, args, dep, pack)
	if err != nil {
		return Satisfaction{}
	}

	return Satisfaction{IsSatisfied: ok, Details: details, Dependent: *dep, ContainsUnexpandedPack: *pack}
}

// EvaluateConceptRef implements requirement.ConceptChecker, used by a
// type-constraint return-type requirement (spec.md §4.10). It returns the
// concept specialization's own cached Satisfaction by value so a failed
// return-type-constraint can be diagnosed by recursing into it.
func (ctx Context) EvaluateConceptRef(name string, args []astview.Expr, outer mltal.MLTAL) Satisfaction {
	ok, nested, instantiationDependent, err := ctx.evaluateConceptRef(name, args, outer)
	if err != nil {
		return Satisfaction{}
	}

	if instantiationDependent {
		return Satisfaction{IsSatisfied: true, Dependent: true}
	}

	nested.IsSatisfied = ok

	return nested
}

// evaluateAtomic performs spec.md §4.2 steps (a)-(g) for a true atomic
// expression: substitution under an (implicit) SFINAE trap, the
// instantiation-dependent sentinel, a well-formedness recheck, constant
// evaluation, and interpretation as bool.
func (ctx Context) evaluateAtomic(expr astview.Expr, args mltal.MLTAL, dep, pack *bool) (bool, []Detail, error) {
	frame, err := ctx.Stack.Push(external.ConstraintSubstitution, expr.String())
	if err != nil {
		return false, nil, fmt.Errorf("satisfy: pushing substitution frame: %w", err)
	}
	defer frame.Release()

	res, err := ctx.Subst.Subst(expr, args)
	if err != nil {
		return false, nil, fmt.Errorf("satisfy: substitution: %w", err)
	}

	switch res.Outcome {
	case external.SubstInvalid:
		return false, nil, fmt.Errorf("%w: %s", ErrIllFormedSubstitutedExpr, res.Message)

	case external.SubstSFINAE:
		detail := Detail{ClauseExpr: expr, Record: DetailRecord{IsSubstitutionDiagnostic: true, Message: res.Message}}
		return false, []Detail{detail}, nil
	}

	substituted := res.Expr

	if ctx.Subst.IsInstantiationDependent(substituted, args) {
		*dep = true
		return true, nil, nil
	}

	if ok, culprit, err := wf.CheckConstraintExpression(substituted); err != nil {
		return false, nil, fmt.Errorf("satisfy: well-formedness recheck: %w", err)
	} else if !ok {
		return false, nil, fmt.Errorf("%w: %q is not type bool", ErrIllFormedSubstitutedExpr, culprit.String())
	}

	value, partialDiags, ok := ctx.Eval.EvaluateAsRValue(substituted)
	if !ok {
		return false, nil, fmt.Errorf("%w: %s (%v)", ErrNonConstantConstraintExpression, substituted.String(), partialDiags)
	}

	if value == 0 {
		detail := Detail{ClauseExpr: expr, Record: DetailRecord{SubstitutedExpr: substituted}}
		return false, []Detail{detail}, nil
	}

	return true, nil, nil
}

// evaluateIdentity mirrors evaluate but skips substitution entirely, for
// already-substituted expression forms (spec.md §6's no-substitution
// overload).
func (ctx Context) evaluateIdentity(expr astview.Expr) (bool, []Detail, error) {
	switch astview.Classify(expr) {
	case astview.KindParen:
		return ctx.evaluateIdentity(astview.Unparen(expr))

	case astview.KindAnd:
		lhs, rhs, _ := astview.And(expr)

		okL, detL, err := ctx.evaluateIdentity(lhs)
		if err != nil || !okL {
			return false, detL, err
		}

		okR, detR, err := ctx.evaluateIdentity(rhs)
		if err != nil {
			return false, nil, err
		}

		return okR, append(detL, detR...), nil

	case astview.KindOr:
		lhs, rhs, _ := astview.Or(expr)

		okL, detL, err := ctx.evaluateIdentity(lhs)
		if err != nil {
			return false, nil, err
		}

		if okL {
			return true, detL, nil
		}

		okR, detR, err := ctx.evaluateIdentity(rhs)
		if err != nil {
			return false, nil, err
		}

		return okR, append(detL, detR...), nil

	default:
		if ok, culprit, err := wf.CheckConstraintExpression(expr); err != nil {
			return false, nil, err
		} else if !ok {
			return false, nil, fmt.Errorf("%w: %q is not type bool", ErrIllFormedSubstitutedExpr, culprit.String())
		}

		value, partialDiags, ok := ctx.Eval.EvaluateAsRValue(expr)
		if !ok {
			return false, nil, fmt.Errorf("%w: %s (%v)", ErrNonConstantConstraintExpression, expr.String(), partialDiags)
		}

		if value == 0 {
			return false, []Detail{{ClauseExpr: expr, Record: DetailRecord{SubstitutedExpr: expr}}}, nil
		}

		return true, nil, nil
	}
}
