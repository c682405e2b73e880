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
package requirement

import "github.com/PetrKudr/clang-concepts-monorepo/pkg/astview"

// DetailRecord is the payload of one Detail entry (spec.md §3): either a
// substitution diagnostic, a well-formed-but-false atomic expression, a
// nested concept-specialization's own cached Satisfaction, or the results
// of a requires-expression's requirement evaluation -- whichever the
// producing node kind needed.
type DetailRecord struct {
	// IsSubstitutionDiagnostic selects Message as the payload.
	IsSubstitutionDiagnostic bool
	Message                  string

	// SubstitutedExpr holds the well-formed-but-false substituted atomic
	// expression, valid when neither of the below is set.
	SubstitutedExpr astview.Expr

	// NestedSatisfaction is set for a failed concept-specialization,
	// letting the Diagnostic Renderer recurse into the concept's own
	// satisfaction record (spec.md §4.11).
	NestedSatisfaction *Satisfaction

	// Requirements is set for a failed requires-expression.
	Requirements []Requirement
}

// Detail pairs a top-level clause (or the sub-expression responsible
// within it) with its failure record.
type Detail struct {
	ClauseExpr astview.Expr
	Record     DetailRecord
}

// Satisfaction is the output of the Satisfaction Evaluator (spec.md §3): a
// boolean plus an ordered list of failure details. The invariant is that
// Details is empty iff IsSatisfied is true for the first clause that
// short-circuited; otherwise details accumulate in evaluation order.
//
// Satisfaction lives here rather than in package satisfy, which computes
// it, because a Nested requirement and a Compound requirement's
// return-type-constraint both store their own cached Satisfaction by value
// (spec.md §4.10's last bullet) on Requirement itself, and package
// requirement cannot import the package that evaluates requires-
// expressions without an import cycle. Package satisfy aliases this type
// as satisfy.Satisfaction.
type Satisfaction struct {
	IsSatisfied            bool
	Details                []Detail
	Dependent              bool
	ContainsUnexpandedPack bool
}

// Clone copies a Satisfaction, giving the copy its own Details slice. spec.md §9
// flags the reference implementation's copy constructor as buggy ("iterates
// Details while mutating it"); this engine's explicit resolution is to
// always copy the source's Details into a freshly allocated slice, never
// aliasing or mutating it in place. The Detail values are copied as they
// are, so records they point to (a requirement's NestedSatisfaction, its
// Requirements slice) are shared with the source.
func (s Satisfaction) Clone() Satisfaction {
	out := Satisfaction{
		IsSatisfied:            s.IsSatisfied,
		Dependent:              s.Dependent,
		ContainsUnexpandedPack: s.ContainsUnexpandedPack,
	}

	if len(s.Details) == 0 {
		return out
	}

	out.Details = make([]Detail, len(s.Details))
	copy(out.Details, s.Details)

	return out
}
