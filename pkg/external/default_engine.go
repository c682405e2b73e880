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
package external

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/expr-lang/expr"

	"github.com/PetrKudr/clang-concepts-monorepo/pkg/astview"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/mltal"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/sexp"
)

// DefaultEngine is the reference implementation of Substitutor,
// ConstantEvaluator and ExceptionQuery over the S-expression surface syntax:
// free-form atomic expressions are compiled and evaluated with
// github.com/expr-lang/expr, and integer constants are carried through
// github.com/consensys/gnark-crypto's bls12-377 scalar-field element type as
// this engine's arbitrary-precision integer representation.
type DefaultEngine struct{}

// NewDefaultEngine constructs the reference external-collaborator
// implementation.
func NewDefaultEngine() *DefaultEngine {
	return &DefaultEngine{}
}

var identifierPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// Subst implements Substitutor over the toy surface syntax described in
// package astview: `(sfinae "msg")` always fails SFINAE; `(throwing e)`
// substitutes recursively into e; `(expr "source")` textually substitutes
// bound identifiers; `(rel op lhs rhs)` substitutes both sides; a bare
// Symbol is replaced by its bound value if bound, otherwise left dependent.
func (e *DefaultEngine) Subst(expr_ astview.Expr, args Binder) (ExprResult, error) {
	if msg, ok := astview.SFINAEAtom(expr_); ok {
		return ExprResult{Outcome: SubstSFINAE, Message: msg}, nil
	}

	if inner, ok := astview.Throwing(expr_); ok {
		sub, err := e.Subst(inner, args)
		if err != nil || sub.Outcome != SubstUsable {
			return sub, err
		}

		wrapped := &sexp.List{Elements: []sexp.SExp{&sexp.Symbol{Value: "throwing"}, sub.Expr}}

		return ExprResult{Outcome: SubstUsable, Expr: wrapped}, nil
	}

	if source, ok := astview.ExprAtom(expr_); ok {
		substituted := substituteIdentifiers(source, args)
		wrapped := &sexp.List{Elements: []sexp.SExp{
			&sexp.Symbol{Value: "expr"},
			&sexp.Symbol{Value: strconv.Quote(substituted)},
		}}

		return ExprResult{Outcome: SubstUsable, Expr: wrapped}, nil
	}

	if op, lhs, rhs, ok := astview.Relational(expr_); ok {
		lhsRes, err := e.Subst(lhs, args)
		if err != nil || lhsRes.Outcome != SubstUsable {
			return lhsRes, err
		}

		rhsRes, err := e.Subst(rhs, args)
		if err != nil || rhsRes.Outcome != SubstUsable {
			return rhsRes, err
		}

		wrapped := &sexp.List{Elements: []sexp.SExp{
			&sexp.Symbol{Value: "rel"}, &sexp.Symbol{Value: op}, lhsRes.Expr, rhsRes.Expr,
		}}

		return ExprResult{Outcome: SubstUsable, Expr: wrapped}, nil
	}

	if sym, isSym := expr_.(*sexp.Symbol); isSym {
		if value, _, bound := args.Lookup(sym.Value); bound {
			if parsed, err := parseValueToken(value); err == nil {
				return ExprResult{Outcome: SubstUsable, Expr: parsed}, nil
			}

			return ExprResult{Outcome: SubstUsable, Expr: &sexp.Symbol{Value: value}}, nil
		}

		return ExprResult{Outcome: SubstUsable, Expr: expr_}, nil
	}

	return ExprResult{Outcome: SubstUsable, Expr: expr_}, nil
}

// IsInstantiationDependent reports whether expr still mentions a free
// (unbound) identifier after the given bindings are applied. It mirrors
// Subst's own dispatch over the wrapper atomic forms -- rather than
// recursing generically into every list element -- so that a `(expr
// "...")` atom's quoted source text is scanned for free identifiers the
// same way substituteIdentifiers finds bound ones, instead of being
// compared whole against a bound parameter name (which it can never equal).
func (e *DefaultEngine) IsInstantiationDependent(expr_ astview.Expr, args Binder) bool {
	if _, ok := astview.SFINAEAtom(expr_); ok {
		return false
	}

	if inner, ok := astview.Throwing(expr_); ok {
		return e.IsInstantiationDependent(inner, args)
	}

	if source, ok := astview.ExprAtom(expr_); ok {
		return containsFreeIdentifier(source, args)
	}

	if _, lhs, rhs, ok := astview.Relational(expr_); ok {
		return e.IsInstantiationDependent(lhs, args) || e.IsInstantiationDependent(rhs, args)
	}

	switch v := expr_.(type) {
	case *sexp.Symbol:
		if isLiteralToken(v.Value) {
			return false
		}

		_, _, bound := args.Lookup(v.Value)

		return !bound
	case *sexp.List:
		for _, el := range v.Elements[1:] {
			if e.IsInstantiationDependent(el, args) {
				return true
			}
		}

		return false
	default:
		return false
	}
}

// containsFreeIdentifier reports whether source mentions an identifier that
// is neither a bound parameter nor a literal token, i.e. one that would
// still need a later, fuller instantiation to resolve.
func containsFreeIdentifier(source string, args Binder) bool {
	free := false

	identifierPattern.ReplaceAllStringFunc(source, func(tok string) string {
		if _, _, bound := args.Lookup(tok); bound {
			return tok
		}

		if isLiteralToken(tok) {
			return tok
		}

		free = true

		return tok
	})

	return free
}

// EvaluateAsBooleanCondition evaluates a fully-substituted expression as a
// bool, per spec.md §4.2.g ("interpret the integer result as a boolean").
func (e *DefaultEngine) EvaluateAsBooleanCondition(expr_ astview.Expr) (bool, bool) {
	if op, lhs, rhs, ok := astview.Relational(expr_); ok {
		lv, lok := e.EvaluateAsInt(lhs)
		rv, rok := e.EvaluateAsInt(rhs)

		if !lok || !rok {
			return false, false
		}

		return compare(op, lv, rv), true
	}

	if sym, isSym := expr_.(*sexp.Symbol); isSym {
		switch sym.Value {
		case "true":
			return true, true
		case "false":
			return false, true
		}

		if n, ok := evalInt(sym.Value); ok {
			return n != 0, true
		}

		return false, false
	}

	if source, ok := astview.ExprAtom(expr_); ok {
		out, err := expr.Eval(source, nil)
		if err != nil {
			return false, false
		}

		b, isBool := out.(bool)
		if isBool {
			return b, true
		}

		if n, isInt := toInt64(out); isInt {
			return n != 0, true
		}

		return false, false
	}

	return false, false
}

// EvaluateAsInt evaluates a fully-substituted atomic expression as an
// integer, backed by gnark-crypto's bls12-377 fr.Element for parsing and
// normalizing the constant's textual representation.
func (e *DefaultEngine) EvaluateAsInt(expr_ astview.Expr) (int64, bool) {
	if sym, isSym := expr_.(*sexp.Symbol); isSym {
		return evalInt(sym.Value)
	}

	if source, ok := astview.ExprAtom(expr_); ok {
		out, err := expr.Eval(source, nil)
		if err != nil {
			return 0, false
		}

		return toInt64(out)
	}

	return 0, false
}

// EvaluateAsRValue is the general entry point: try boolean interpretation
// first (the common case for atomic constraints, which must be of type
// bool per [temp.constr.atomic]), falling back to a plain integer.
func (e *DefaultEngine) EvaluateAsRValue(expr_ astview.Expr) (int64, []string, bool) {
	if b, ok := e.EvaluateAsBooleanCondition(expr_); ok {
		if b {
			return 1, nil, true
		}

		return 0, nil, true
	}

	if n, ok := e.EvaluateAsInt(expr_); ok {
		return n, nil, true
	}

	return 0, []string{fmt.Sprintf("expression %q is not a core constant expression", expr_.String())}, false
}

// CanThrow implements ExceptionQuery using the `(throwing e)` wrapper
// (package astview.Throwing) as the engine's stand-in for a callee's
// exception specification.
func (e *DefaultEngine) CanThrow(expr_ astview.Expr) Throwability {
	if _, ok := astview.Throwing(expr_); ok {
		return Can
	}

	return Cannot
}

// TryInitialize implements Initializer with a trivial textual match: the
// expression initializes the expected type iff the substituted expression's
// own rendering equals the expected type name, or iff the expected type is
// "auto" (always convertible). A real compiler's overload resolution is out
// of scope (spec.md §6).
func (e *DefaultEngine) TryInitialize(expectedType string, expr_ astview.Expr) InitOutcome {
	if expectedType == "auto" || expectedType == "" {
		return InitOK
	}

	if expr_.String() == expectedType {
		return InitOK
	}

	return InitFailed
}

// CheckTemplateArgumentList implements TemplateArgChecker. A genuine arity
// mismatch is ill-formed (ok=false); an arity "mismatch" caused by one
// argument being an unexpanded pack (package astview.PackArg) is instead
// instantiation-dependent, per spec.md §4.4 rule 2's special case, and
// binds whatever arguments are available positionally.
func (e *DefaultEngine) CheckTemplateArgumentList(
	params []string, args []astview.Expr,
) (mltal.Level, bool, bool) {
	hasPack := false

	for _, a := range args {
		if _, ok := astview.PackArg(a); ok {
			hasPack = true
		}
	}

	if len(args) != len(params) && !hasPack {
		return mltal.Level{}, false, false
	}

	n := len(params)
	if len(args) < n {
		n = len(args)
	}

	bindings := make([]mltal.Binding, 0, n)

	for i := 0; i < n; i++ {
		arg := args[i]
		if inner, ok := astview.PackArg(arg); ok {
			arg = inner
		}

		bindings = append(bindings, mltal.Binding{Name: params[i], Value: arg.String()})
	}

	return mltal.NewLevel(mltal.Explicit, bindings...), hasPack, true
}

// evalInt parses a symbol token as an integer constant via fr.Element,
// giving the toy constant-expression language a real bignum backing instead
// of a hand-rolled one.
func evalInt(token string) (int64, bool) {
	var elt fr.Element

	if _, err := elt.SetString(token); err != nil {
		return 0, false
	}

	bi := elt.BigInt(new(big.Int))

	return bi.Int64(), bi.IsInt64()
}

func isLiteralToken(token string) bool {
	if token == "true" || token == "false" {
		return true
	}

	_, ok := evalInt(token)

	return ok
}

func compare(op string, lhs, rhs int64) bool {
	switch op {
	case "<":
		return lhs < rhs
	case "<=":
		return lhs <= rhs
	case ">":
		return lhs > rhs
	case ">=":
		return lhs >= rhs
	case "==":
		return lhs == rhs
	case "!=":
		return lhs != rhs
	default:
		return false
	}
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case bool:
		if n {
			return 1, true
		}

		return 0, true
	default:
		return 0, false
	}
}

// parseValueToken attempts to parse a bound argument's textual value as a
// standalone S-expression (so substituting a parameter bound to, say, `4`
// or `true` yields a symbol the constant evaluator understands directly).
func parseValueToken(value string) (sexp.SExp, error) {
	srcfile := sexp.NewSourceFile("<subst>", []byte(value))

	s, _, err := srcfile.Parse()
	if err != nil {
		return nil, err
	}

	if s == nil {
		return nil, fmt.Errorf("external: empty substituted value")
	}

	return s, nil
}

// substituteIdentifiers textually replaces every bound identifier in source
// with its value's rendering, leaving unbound identifiers (and keywords /
// literals, since they are never found in args) untouched.
func substituteIdentifiers(source string, args Binder) string {
	return identifierPattern.ReplaceAllStringFunc(source, func(tok string) string {
		if value, _, ok := args.Lookup(tok); ok {
			return value
		}

		return tok
	})
}
