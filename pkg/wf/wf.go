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

// Package wf implements the well-formedness checker (spec.md §4.1):
// verifies that every atomic sub-expression of a constraint, after
// &&/||-decomposition, is either type-dependent or exactly type bool.
package wf

import (
	"regexp"

	"github.com/PetrKudr/clang-concepts-monorepo/pkg/astview"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/sexp"
)

var integerLiteral = regexp.MustCompile(`^[0-9]+$`)

// CheckConstraintExpression checks that expr is well-formed: every atomic
// leaf reachable by decomposing && and || is either type-dependent or has
// type exactly bool. On failure it returns the offending sub-expression as
// culprit. CheckConstraintExpression does not evaluate constantness --
// that is deferred to package satisfy (spec.md §4.1's rationale:
// "[temp.constr.atomic] requires atomic constraints to be constant
// expressions of type bool; the checker does not evaluate constantness").
func CheckConstraintExpression(expr astview.Expr) (ok bool, culprit astview.Expr, err error) {
	switch astview.Classify(expr) {
	case astview.KindParen:
		inner := astview.Unparen(expr)
		return CheckConstraintExpression(inner)
	case astview.KindAnd:
		lhs, rhs, _ := astview.And(expr)
		return checkBoth(lhs, rhs)
	case astview.KindOr:
		lhs, rhs, _ := astview.Or(expr)
		return checkBoth(lhs, rhs)
	case astview.KindConceptRef, astview.KindRequires:
		// Concept-specialization and requires-expression are always of type
		// bool by construction; nothing further to check here.
		return true, nil, nil
	default:
		return checkAtomic(expr)
	}
}

func checkBoth(lhs, rhs astview.Expr) (bool, astview.Expr, error) {
	if ok, culprit, err := CheckConstraintExpression(lhs); !ok || err != nil {
		return ok, culprit, err
	}

	return CheckConstraintExpression(rhs)
}

// checkAtomic decides whether a leaf expression is dependent or has type
// bool. Real type information is an external collaborator (spec.md §6);
// this engine's toy surface syntax fixes the convention that bare integer
// literals have type int (and are therefore ill-formed as a whole
// constraint, mirroring [temp.constr.atomic]'s rejection of non-bool,
// non-dependent atomics), while every other atomic form -- identifiers
// (assumed dependent), `(expr ...)`, `(rel ...)`, `(sfinae ...)` and
// `(throwing ...)` -- is bool-valued by convention.
func checkAtomic(expr astview.Expr) (bool, astview.Expr, error) {
	if sym, ok := expr.(*sexp.Symbol); ok && integerLiteral.MatchString(sym.Value) {
		return false, expr, nil
	}

	return true, nil, nil
}
