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

import (
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/astview"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/mltal"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/sexp"
)

// Decode classifies one requirement body (an element of a `(requires ...)`
// node, per package astview.Requirements) against the four surface forms
// this engine's toy grammar defines -- `(simple EXPR)`, `(compound EXPR
// [noexcept] [-> TYPE-OR-CONCEPT])`, `(type NAME)`, `(nested EXPR)` -- and
// evaluates it.
func Decode(ctx Context, body astview.Expr, args mltal.MLTAL) Requirement {
	l, isList := body.(*sexp.List)
	if !isList || l.Len() < 2 {
		return Requirement{Kind: KindSimple, Expr: body, Status: StatusSatisfied}
	}

	switch l.Head() {
	case "simple":
		return EvaluateSimple(ctx, l.Get(1), args)
	case "compound":
		return decodeCompound(ctx, l, args)
	case "type":
		return decodeType(ctx, l, args)
	case "nested":
		return EvaluateNested(ctx, l.Get(1), args)
	default:
		return EvaluateSimple(ctx, body, args)
	}
}

func decodeCompound(ctx Context, l *sexp.List, args mltal.MLTAL) Requirement {
	expr := l.Get(1)
	noexcept := false
	rt := ReturnTypeRequirement{Kind: ReturnTypeEmpty}

	i := 2
	if i < l.Len() {
		if sym, ok := l.Get(i).(*sexp.Symbol); ok && sym.Value == "noexcept" {
			noexcept = true
			i++
		}
	}

	if i < l.Len() {
		if sym, ok := l.Get(i).(*sexp.Symbol); ok && sym.Value == "->" {
			i++
			rt = decodeReturnType(l.Get(i))
		}
	}

	return EvaluateCompound(ctx, expr, noexcept, rt, args)
}

func decodeReturnType(e astview.Expr) ReturnTypeRequirement {
	if name, conceptArgs, ok := astview.ConceptRef(e); ok {
		return ReturnTypeRequirement{Kind: ReturnTypeConstraint, ConceptName: name, ConceptArgs: conceptArgs}
	}

	if sym, ok := e.(*sexp.Symbol); ok {
		return ReturnTypeRequirement{Kind: ReturnTypeExpected, ExpectedType: sym.Value}
	}

	return ReturnTypeRequirement{Kind: ReturnTypeEmpty}
}

func decodeType(ctx Context, l *sexp.List, args mltal.MLTAL) Requirement {
	sym, ok := l.Get(1).(*sexp.Symbol)
	if !ok {
		return Requirement{Kind: KindType, Status: StatusSubstitutionFailureType}
	}

	dependent := ctx.Subst.IsInstantiationDependent(sym, args)

	return EvaluateType(sym.Value, dependent)
}
