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
package diagnose_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PetrKudr/clang-concepts-monorepo/internal/xassert"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/astview"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/diagnose"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/requirement"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/satisfy"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/sexp"
)

func parse(t *testing.T, src string) astview.Expr {
	t.Helper()

	sf := sexp.NewSourceFile("<test>", []byte(src))

	e, _, err := sf.Parse()
	xassert.Equal(t, nil, err)

	return e
}

func TestSubstitutionDiagnosticNoteCarriesMessageAndIsPrimary(t *testing.T) {
	sat := satisfy.Satisfaction{
		Details: []satisfy.Detail{{Record: satisfy.DetailRecord{IsSubstitutionDiagnostic: true, Message: "no member named value"}}},
	}

	var buf bytes.Buffer
	diagnose.DiagnoseUnsatisfiedConstraint(&buf, sat, true)

	out := buf.String()
	xassert.True(t, strings.Contains(out, "error: constraints not satisfied"))
	xassert.True(t, strings.Contains(out, "substituted constraint expression is ill-formed: no member named value"))
}

func TestRelationalAtomNoteCitesOperandsAndOperator(t *testing.T) {
	sat := satisfy.Satisfaction{
		Details: []satisfy.Detail{{Record: satisfy.DetailRecord{SubstitutedExpr: parse(t, `(rel < N 4)`)}}},
	}

	var buf bytes.Buffer
	diagnose.DiagnoseUnsatisfiedConstraint(&buf, sat, true)

	xassert.True(t, strings.Contains(buf.String(), "because N < 4 evaluated to false"))
}

func TestGenericAtomNoteQuotesTheWholeExpression(t *testing.T) {
	sat := satisfy.Satisfaction{
		Details: []satisfy.Detail{{Record: satisfy.DetailRecord{SubstitutedExpr: parse(t, `(expr "0")`)}}},
	}

	var buf bytes.Buffer
	diagnose.DiagnoseUnsatisfiedConstraint(&buf, sat, true)

	xassert.True(t, strings.Contains(buf.String(), `atomic constraint "(expr \"0\")" evaluated to false`))
}

// TestNestedConceptRefSatisfactionRecursesIntoItsOwnDetails covers spec.md
// §4.11's requirement that the renderer drill into a failed concept
// specialization's own cached Satisfaction.
func TestNestedConceptRefSatisfactionRecursesIntoItsOwnDetails(t *testing.T) {
	nested := satisfy.Satisfaction{
		Details: []satisfy.Detail{{Record: satisfy.DetailRecord{SubstitutedExpr: parse(t, `(expr "0")`)}}},
	}

	sat := satisfy.Satisfaction{
		Details: []satisfy.Detail{{
			ClauseExpr: parse(t, "(concept Eq4 N)"),
			Record:     satisfy.DetailRecord{NestedSatisfaction: &nested},
		}},
	}

	var buf bytes.Buffer
	diagnose.DiagnoseUnsatisfiedConstraint(&buf, sat, true)

	out := buf.String()
	xassert.True(t, strings.Contains(out, "because N does not satisfy Eq4"))
	xassert.True(t, strings.Contains(out, `atomic constraint "(expr \"0\")" evaluated to false`))
}

func TestRequirementDiagnosisSelectsFirstUnsatisfiedNonDependent(t *testing.T) {
	reqs := []requirement.Requirement{
		{Status: requirement.StatusDependent},
		{Status: requirement.StatusNoexceptNotMet, Expr: parse(t, `(expr "f()")`)},
		{Status: requirement.StatusSubstitutionFailureExpr, Expr: parse(t, `(expr "g()")`)},
	}

	sat := satisfy.Satisfaction{
		Details: []satisfy.Detail{{Record: satisfy.DetailRecord{Requirements: reqs}}},
	}

	var buf bytes.Buffer
	diagnose.DiagnoseUnsatisfiedConstraint(&buf, sat, true)

	out := buf.String()
	xassert.True(t, strings.Contains(out, `expression "(expr \"f()\")" is not noexcept`))
	xassert.False(t, strings.Contains(out, "g()"))
}

// TestNestedRequirementRecursesWithoutItsOwnNote covers spec.md §4.11/§8.6:
// a Nested requirement's StatusConstraintsNotSatisfied case recurses
// straight into its own cached Satisfaction (mirroring
// NestedRequirement::Diagnose, which emits no note of its own).
func TestNestedRequirementRecursesWithoutItsOwnNote(t *testing.T) {
	nested := satisfy.Satisfaction{
		Details: []satisfy.Detail{{Record: satisfy.DetailRecord{SubstitutedExpr: parse(t, `(expr "0")`)}}},
	}

	sat := satisfy.Satisfaction{
		Details: []satisfy.Detail{{
			Record: satisfy.DetailRecord{Requirements: []requirement.Requirement{{
				Kind:               requirement.KindNested,
				Status:             requirement.StatusConstraintsNotSatisfied,
				NestedSatisfaction: &nested,
			}}},
		}},
	}

	var buf bytes.Buffer
	diagnose.DiagnoseUnsatisfiedConstraint(&buf, sat, true)

	out := buf.String()
	xassert.False(t, strings.Contains(out, "return-type constraint"))
	xassert.True(t, strings.Contains(out, `atomic constraint "(expr \"0\")" evaluated to false`))
}

// TestReturnTypeConstraintRequirementRecursesAfterItsOwnNote covers spec.md
// §4.11's return-type-constraint case: it emits its own note, then recurses
// into the concept specialization's cached Satisfaction (mirroring
// ExprRequirement::Diagnose's SS_ConstraintsNotSatisfied case).
func TestReturnTypeConstraintRequirementRecursesAfterItsOwnNote(t *testing.T) {
	nested := satisfy.Satisfaction{
		Details: []satisfy.Detail{{Record: satisfy.DetailRecord{SubstitutedExpr: parse(t, `(expr "0")`)}}},
	}

	sat := satisfy.Satisfaction{
		Details: []satisfy.Detail{{
			Record: satisfy.DetailRecord{Requirements: []requirement.Requirement{{
				Kind:               requirement.KindCompound,
				Status:             requirement.StatusConstraintsNotSatisfied,
				Expr:               parse(t, `(expr "f()")`),
				NestedSatisfaction: &nested,
			}}},
		}},
	}

	var buf bytes.Buffer
	diagnose.DiagnoseUnsatisfiedConstraint(&buf, sat, true)

	out := buf.String()
	xassert.True(t, strings.Contains(out, `return-type constraint on "(expr \"f()\")" is not satisfied`))
	xassert.True(t, strings.Contains(out, `atomic constraint "(expr \"0\")" evaluated to false`))
}

// TestOnlyTheFirstTopLevelNoteIsPrimary checks that DiagnoseUnsatisfiedConstraint
// flips `first` to false after the first detail, so only one "error:" banner
// is ever printed even across multiple unsatisfied clauses.
func TestOnlyTheFirstTopLevelNoteIsPrimary(t *testing.T) {
	sat := satisfy.Satisfaction{
		Details: []satisfy.Detail{
			{Record: satisfy.DetailRecord{SubstitutedExpr: parse(t, `(expr "0")`)}},
			{Record: satisfy.DetailRecord{SubstitutedExpr: parse(t, `(expr "1")`)}},
		},
	}

	var buf bytes.Buffer
	diagnose.DiagnoseUnsatisfiedConstraint(&buf, sat, true)

	xassert.Equal(t, 1, strings.Count(buf.String(), "error: constraints not satisfied"))
}
