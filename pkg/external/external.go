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

// Package external declares the collaborator interfaces spec.md §6 places out
// of scope for this engine: template-argument substitution, the constant
// evaluator, exception queries, initialization sequences, diagnostics and
// the instantiation stack. A real compiler frontend would supply its own
// implementations; this package also ships DefaultEngine, a self-contained
// reference implementation over the S-expression surface syntax (package
// sexp/astview) used by the CLI and the test suite.
package external

import (
	"fmt"

	"github.com/PetrKudr/clang-concepts-monorepo/pkg/astview"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/mltal"
)

// SubstOutcome classifies the result of substituting template arguments into
// an expression (spec.md §6: "ExprResult carries one of invalid (hard
// error), empty (SFINAE), or usable (expression)").
type SubstOutcome int

const (
	// SubstUsable means substitution succeeded and produced a usable
	// expression.
	SubstUsable SubstOutcome = iota
	// SubstSFINAE means substitution failed in a way the standard defines as
	// "unsatisfied" rather than a hard error.
	SubstSFINAE
	// SubstInvalid means substitution hit a hard (non-SFINAE) error.
	SubstInvalid
)

// ExprResult is the result of Substitutor.Subst.
type ExprResult struct {
	Outcome SubstOutcome
	Expr    astview.Expr // valid when Outcome == SubstUsable
	Message string       // valid when Outcome == SubstSFINAE or SubstInvalid
}

// Substitutor substitutes template arguments into an expression. Must be
// callable inside an SFINAE trap: a SubstSFINAE outcome is not itself a Go
// error, since per spec.md §7 it is defined to mean "unsatisfied", not a
// failure of the overall operation.
type Substitutor interface {
	Subst(expr astview.Expr, args Binder) (ExprResult, error)
	// IsInstantiationDependent reports whether expr still contains a
	// template parameter unresolved by args (spec.md §4.2.d): this happens
	// when a nested requirement is checked against only a prefix of the
	// enclosing argument levels.
	IsInstantiationDependent(expr astview.Expr, args Binder) bool
}

// Binder is the minimal view of an MLTAL that package external needs:
// looking up a bound parameter's textual value. Kept as an interface here
// (rather than importing package mltal directly) so this package stays a
// pure collaborator-interface boundary; package satisfy supplies
// mltal.MLTAL values, which already satisfy it.
type Binder interface {
	Lookup(name string) (value string, level int, ok bool)
}

// Throwability is the result of an exception query (spec.md §6:
// "canThrow(expr) → {Can, Cannot, Dependent}").
type Throwability int

const (
	// Cannot means the expression is known not to throw.
	Cannot Throwability = iota
	// Can means the expression may throw.
	Can
	// Dependent means throwability cannot yet be determined.
	Dependent
)

// ExceptionQuery answers whether an expression can throw.
type ExceptionQuery interface {
	CanThrow(expr astview.Expr) Throwability
}

// InitOutcome is the result of attempting copy-initialization (spec.md §6:
// "given an entity type and an expression, yield {ambiguous, failed, ok}").
type InitOutcome int

const (
	// InitOK means initialization succeeded.
	InitOK InitOutcome = iota
	// InitAmbiguous means more than one conversion sequence applies.
	InitAmbiguous
	// InitFailed means no conversion sequence applies.
	InitFailed
)

// Initializer models copy-initialization of an expected type from an
// expression, used by the Compound requirement's return-type requirement
// (spec.md §4.10).
type Initializer interface {
	TryInitialize(expectedType string, expr astview.Expr) InitOutcome
}

// ConstantEvaluator evaluates an already-substituted expression as a
// constant. EvaluateAsRValue returns any partial diagnostics gathered while
// attempting evaluation, for inclusion in a hard-failure message.
type ConstantEvaluator interface {
	EvaluateAsRValue(expr astview.Expr) (value int64, partialDiags []string, ok bool)
	EvaluateAsBooleanCondition(expr astview.Expr) (result bool, ok bool)
	EvaluateAsInt(expr astview.Expr) (result int64, ok bool)
}

// TemplateArgChecker checks a (already outer-substituted) argument list
// against a concept's formal parameter list, producing the canonical
// argument vector used as the next MLTAL level (spec.md §6:
// "CheckTemplateArgumentList(concept, loc, args) → (converted_args,
// instantiation_dependent, ok)").
type TemplateArgChecker interface {
	CheckTemplateArgumentList(params []string, args []astview.Expr) (converted mltal.Level, instantiationDependent bool, ok bool)
}

// FrameKind is the kind of an instantiation-stack frame (spec.md §6).
type FrameKind int

const (
	// ConstraintsCheck frames a top-level CheckConstraintSatisfaction call.
	ConstraintsCheck FrameKind = iota
	// ConstraintSubstitution frames substitution into an atomic constraint.
	ConstraintSubstitution
	// ConstraintNormalization frames a Normalize call.
	ConstraintNormalization
	// NestedRequirementConstraintsCheck frames evaluation of a nested
	// requirement's constraint expression.
	NestedRequirementConstraintsCheck
)

func (k FrameKind) String() string {
	switch k {
	case ConstraintSubstitution:
		return "constraint substitution"
	case ConstraintNormalization:
		return "constraint normalization"
	case NestedRequirementConstraintsCheck:
		return "nested requirement constraints check"
	default:
		return "constraints check"
	}
}

// Frame is a scoped instantiation-stack entry. Release must be called on
// every exit path (success, SFINAE, or hard error) -- spec.md §5: "scoped
// acquisition guaranteed release on all exit paths".
type Frame interface {
	Release()
}

// InstantiationStack models the compiler's instantiation-context stack.
// Pushing a frame can itself fail (e.g. depth limit exceeded), which must
// propagate as a hard failure (spec.md §5).
type InstantiationStack interface {
	Push(kind FrameKind, what string) (Frame, error)
	Depth() int
}

// ErrFrameDepthExceeded is returned by InstantiationStack.Push when the
// host's instantiation-depth limit (spec.md §5's sole bound on recursion)
// is reached.
var ErrFrameDepthExceeded = fmt.Errorf("external: instantiation depth limit exceeded")
