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

// Package diagnose implements the Diagnostic Renderer (spec.md §4.11):
// walks an unsatisfied Satisfaction's details in order and emits notes that
// drill down to the precise atomic clause responsible, recursing through
// logical connectives, concept specializations and requires-expressions.
package diagnose

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/PetrKudr/clang-concepts-monorepo/pkg/astview"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/requirement"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/satisfy"
)

var (
	ill   = color.New(color.FgRed)
	false_ = color.New(color.FgYellow)
)

// terminalWidth returns w's width if it is a terminal, or 80 otherwise,
// mirroring a real compiler driver's line-wrapping decision for long
// "substituted constraint expression is ill-formed" notes.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 80
	}

	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 80
	}

	return width
}

// DiagnoseUnsatisfiedConstraint walks sat.Details in order, emitting one or
// more notes per detail. first selects whether the very first emitted
// top-level note is introduced as the primary diagnostic ("note: ...") or a
// continuation; it flips to false after the first record.
func DiagnoseUnsatisfiedConstraint(w io.Writer, sat satisfy.Satisfaction, first bool) {
	width := terminalWidth(w)

	for _, d := range sat.Details {
		diagnoseDetail(w, d, first, width)
		first = false
	}
}

func diagnoseDetail(w io.Writer, d satisfy.Detail, first bool, width int) {
	rec := d.Record

	if rec.IsSubstitutionDiagnostic {
		emitNote(w, first, width, "substituted constraint expression is ill-formed: %s", rec.Message)
		return
	}

	if rec.NestedSatisfaction != nil {
		diagnoseConceptRef(w, d.ClauseExpr, first, width)
		DiagnoseUnsatisfiedConstraint(w, *rec.NestedSatisfaction, false)

		return
	}

	if rec.Requirements != nil {
		diagnoseRequirements(w, rec.Requirements, first, width)
		return
	}

	diagnoseExpr(w, rec.SubstitutedExpr, first, width)
}

// diagnoseExpr drills into a well-formed-but-false substituted expression
// (spec.md §4.11): unwrap parens, recurse through || (fold-expression-only
// at this stage, normal || having already been decomposed by the
// Satisfaction Evaluator) and && (both operands, see diagnoseAnd), special-
// case a relational atom, otherwise emit the generic note.
func diagnoseExpr(w io.Writer, e astview.Expr, first bool, width int) {
	if e == nil {
		emitNote(w, first, width, "atomic constraint evaluated to false")
		return
	}

	switch astview.Classify(e) {
	case astview.KindParen:
		diagnoseExpr(w, astview.Unparen(e), first, width)
		return

	case astview.KindOr:
		lhs, rhs, _ := astview.Or(e)
		diagnoseExpr(w, lhs, first, width)
		diagnoseExpr(w, rhs, false, width)

		return

	case astview.KindAnd:
		lhs, rhs, _ := astview.And(e)
		diagnoseAnd(w, lhs, rhs, first, width)

		return
	}

	if op, lhs, rhs, ok := astview.Relational(e); ok {
		emitNote(w, first, width, "because %s %s %s evaluated to false", lhs.String(), op, rhs.String())
		return
	}

	emitNote(w, first, width, "atomic constraint %q evaluated to false", e.String())
}

// diagnoseAnd is reached for a well-formed-but-false && node. The renderer
// has no evaluator of its own and evaluates neither operand: it diagnoses
// both, LHS first and then RHS, so an operand that on its own evaluates to
// true is diagnosed as well. In practice package satisfy records && failures
// as the precise clause that short-circuited, so this path is rare.
func diagnoseAnd(w io.Writer, lhs, rhs astview.Expr, first bool, width int) {
	diagnoseExpr(w, lhs, first, width)
	diagnoseExpr(w, rhs, false, width)
}

// diagnoseConceptRef emits the concept-specialization note form: a
// specialized citation when exactly one argument was written, otherwise the
// general form citing the whole specialization.
func diagnoseConceptRef(w io.Writer, e astview.Expr, first bool, width int) {
	name, args, ok := astview.ConceptRef(e)
	if !ok {
		emitNote(w, first, width, "constraints not satisfied for %q", e.String())
		return
	}

	if len(args) == 1 {
		emitNote(w, first, width, "because %s does not satisfy %s", args[0].String(), name)
		return
	}

	emitNote(w, first, width, "because %s is not satisfied", e.String())
}

// diagnoseRequirements finds the first non-dependent, unsatisfied
// requirement and diagnoses it (spec.md §4.11).
func diagnoseRequirements(w io.Writer, reqs []requirement.Requirement, first bool, width int) {
	for _, r := range reqs {
		if r.Status.Satisfied() {
			continue
		}

		diagnoseRequirement(w, r, first, width)

		return
	}
}

// diagnoseRequirement renders a note specific to the requirement's failure
// status (spec.md §4.11: "each requirement kind knows how to diagnose
// itself per status").
func diagnoseRequirement(w io.Writer, r requirement.Requirement, first bool, width int) {
	switch r.Status {
	case requirement.StatusSubstitutionFailureExpr:
		if r.SubstitutionMessage != "" {
			emitNote(w, first, width, "substitution failure in requirement expression %q: %s", r.Expr.String(), r.SubstitutionMessage)
		} else {
			emitNote(w, first, width, "substitution failure in requirement expression %q", r.Expr.String())
		}

	case requirement.StatusSubstitutionFailureType:
		emitNote(w, first, width, "substitution failure in requirement type %q", r.Type)

	case requirement.StatusNoexceptNotMet:
		emitNote(w, first, width, "expression %q is not noexcept", r.Expr.String())

	case requirement.StatusConversionAmbiguous:
		emitNote(w, first, width, "conversion from %q to the required return type is ambiguous", r.Expr.String())

	case requirement.StatusNoConversion:
		emitNote(w, first, width, "%q does not satisfy the required return type", r.Expr.String())

	case requirement.StatusConstraintsNotSatisfied:
		diagnoseConstraintsNotSatisfied(w, r, first, width)

	default:
		emitNote(w, first, width, "requirement not satisfied")
	}
}

// diagnoseConstraintsNotSatisfied handles StatusConstraintsNotSatisfied for
// both requirement kinds that carry a nested concept-specialization
// Satisfaction (spec.md §4.11, §8.6): a Nested requirement recurses
// directly into its own constraint's Satisfaction with no note of its own,
// mirroring NestedRequirement::Diagnose; a Compound requirement's
// return-type-constraint emits its own note first, then recurses, mirroring
// ExprRequirement::Diagnose's SS_ConstraintsNotSatisfied case.
func diagnoseConstraintsNotSatisfied(w io.Writer, r requirement.Requirement, first bool, width int) {
	if r.Kind == requirement.KindNested {
		if r.NestedSatisfaction != nil {
			DiagnoseUnsatisfiedConstraint(w, *r.NestedSatisfaction, first)
		}

		return
	}

	emitNote(w, first, width, "return-type constraint on %q is not satisfied", r.Expr.String())

	if r.NestedSatisfaction != nil {
		DiagnoseUnsatisfiedConstraint(w, *r.NestedSatisfaction, false)
	}
}

// emitNote writes one formatted "note: " line. A message longer than width
// (when width > 10) is truncated with an ellipsis, whatever w is; the line is
// colorized (red for the primary note, yellow otherwise) only when w is a
// terminal.
func emitNote(w io.Writer, primary bool, width int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if len(msg) > width && width > 10 {
		msg = msg[:width-1] + "…"
	}

	prefix := "note: "
	if primary {
		prefix = "error: constraints not satisfied\nnote: "
	}

	painted := false_
	if primary {
		painted = ill
	}

	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintln(w, painted.Sprint(prefix+msg))
		return
	}

	fmt.Fprintln(w, prefix+msg)
}
