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

// Package astview classifies parsed constraint expressions (package sexp)
// into the node kinds spec.md §3 defines a Constraint AST View over:
// conjunction, disjunction, parenthesized grouping, concept-specialization
// reference, requires-expression, and atomic constraint. Everything that is
// not one of the first five forms is, by definition, atomic (spec.md §3:
// "an atomic constraint is an expression together with its parameter
// mapping; anything not decomposed by && or || is atomic").
package astview

import (
	"strconv"

	"github.com/PetrKudr/clang-concepts-monorepo/pkg/sexp"
)

// Expr is a constraint expression. The surface syntax is S-expressions
// (package sexp); the real compiler's expression representation is an
// external collaborator (spec.md §6) this package never needs to see.
type Expr = sexp.SExp

// Kind classifies a constraint expression node.
type Kind int

const (
	// KindAtomic is the default classification for anything not recognized
	// as one of the other kinds below.
	KindAtomic Kind = iota
	// KindAnd is a conjunction "(&& lhs rhs)".
	KindAnd
	// KindOr is a disjunction "(|| lhs rhs)".
	KindOr
	// KindParen is a parenthesized grouping "(paren inner)", carried only so
	// diagnostics can reproduce the source's own grouping; it has no
	// semantic effect on normalization.
	KindParen
	// KindConceptRef is a concept-specialization reference
	// "(concept Name Arg...)".
	KindConceptRef
	// KindRequires is a requires-expression "(requires Req...)".
	KindRequires
)

func (k Kind) String() string {
	switch k {
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	case KindParen:
		return "paren"
	case KindConceptRef:
		return "concept-ref"
	case KindRequires:
		return "requires"
	default:
		return "atomic"
	}
}

// Classify determines the Kind of a constraint expression node.
func Classify(e Expr) Kind {
	l, ok := e.(*sexp.List)
	if !ok {
		return KindAtomic
	}

	switch l.Head() {
	case "&&":
		if l.Len() == 3 {
			return KindAnd
		}
	case "||":
		if l.Len() == 3 {
			return KindOr
		}
	case "paren":
		if l.Len() == 2 {
			return KindParen
		}
	case "concept":
		if l.Len() >= 2 {
			return KindConceptRef
		}
	case "requires":
		return KindRequires
	}

	return KindAtomic
}

// And decomposes a KindAnd node into its two operands.
func And(e Expr) (lhs, rhs Expr, ok bool) {
	l, isList := e.(*sexp.List)
	if !isList || l.Head() != "&&" || l.Len() != 3 {
		return nil, nil, false
	}

	return l.Get(1), l.Get(2), true
}

// Or decomposes a KindOr node into its two operands.
func Or(e Expr) (lhs, rhs Expr, ok bool) {
	l, isList := e.(*sexp.List)
	if !isList || l.Head() != "||" || l.Len() != 3 {
		return nil, nil, false
	}

	return l.Get(1), l.Get(2), true
}

// Unparen strips a KindParen wrapper, recursively, returning the innermost
// non-paren expression. Parens are purely a rendering aid (spec.md §3's
// grammar lists them only so diagnostics can echo the source's grouping);
// every other stage of the engine operates on the unwrapped expression.
func Unparen(e Expr) Expr {
	for {
		l, isList := e.(*sexp.List)
		if !isList || l.Head() != "paren" || l.Len() != 2 {
			return e
		}

		e = l.Get(1)
	}
}

// ConceptRef decomposes a KindConceptRef node into the referenced concept's
// name and its (unevaluated) argument expressions.
func ConceptRef(e Expr) (name string, args []Expr, ok bool) {
	l, isList := e.(*sexp.List)
	if !isList || l.Head() != "concept" || l.Len() < 2 {
		return "", nil, false
	}

	sym, isSym := l.Get(1).(*sexp.Symbol)
	if !isSym {
		return "", nil, false
	}

	return sym.Value, l.Elements[2:], true
}

// Requirements decomposes a KindRequires node into its requirement bodies,
// each still in raw Expr form for package requirement to classify further.
func Requirements(e Expr) (reqs []Expr, ok bool) {
	l, isList := e.(*sexp.List)
	if !isList || l.Head() != "requires" {
		return nil, false
	}

	return l.Elements[1:], true
}

// ExprAtom recognizes an atomic leaf of the form `(expr "source")`: a
// free-form expression snippet handed to the Substitutor/ConstantEvaluator
// external collaborators (spec.md §6) rather than interpreted by this
// package.
func ExprAtom(e Expr) (source string, ok bool) {
	l, isList := e.(*sexp.List)
	if !isList || l.Head() != "expr" || l.Len() != 2 {
		return "", false
	}

	sym, isSym := l.Get(1).(*sexp.Symbol)
	if !isSym {
		return "", false
	}

	return unquote(sym.Value), true
}

// Relational recognizes a structured relational atom `(rel OP LHS RHS)`,
// used by the diagnostic renderer (spec.md §4.11) to print an elaborated
// note such as "because N < 4 evaluated to false".
func Relational(e Expr) (op string, lhs, rhs Expr, ok bool) {
	l, isList := e.(*sexp.List)
	if !isList || l.Head() != "rel" || l.Len() != 4 {
		return "", nil, nil, false
	}

	opSym, isSym := l.Get(1).(*sexp.Symbol)
	if !isSym {
		return "", nil, nil, false
	}

	return opSym.Value, l.Get(2), l.Get(3), true
}

// SFINAEAtom recognizes the atomic leaf form `(sfinae "message")`: a
// deliberate, explicit stand-in for a real substitution failure (e.g. a
// missing member lookup) that the real Subst collaborator would discover
// via type information this engine does not have (spec.md §6 places the
// substitution engine itself out of scope). Any atomic expression wrapped
// this way always substitutes to a SFINAE failure carrying the given
// message, giving tests a deterministic way to trigger
// `[temp.constr.atomic]p1` without modeling name lookup.
func SFINAEAtom(e Expr) (message string, ok bool) {
	l, isList := e.(*sexp.List)
	if !isList || l.Head() != "sfinae" || l.Len() != 2 {
		return "", false
	}

	sym, isSym := l.Get(1).(*sexp.Symbol)
	if !isSym {
		return "", false
	}

	return unquote(sym.Value), true
}

// Throwing recognizes the atomic leaf wrapper `(throwing EXPR)`, marking
// EXPR as capable of throwing for the exception-query collaborator
// (spec.md §6's canThrow), again standing in for information a real
// compiler would derive from the callee's exception specification.
func Throwing(e Expr) (inner Expr, ok bool) {
	l, isList := e.(*sexp.List)
	if !isList || l.Head() != "throwing" || l.Len() != 2 {
		return nil, false
	}

	return l.Get(1), true
}

// PackArg recognizes the argument wrapper `(pack EXPR)`, this engine's toy
// stand-in for a template-argument-list element that is an unexpanded
// parameter pack -- a pack cannot be matched to a concept's fixed-arity
// parameter list until it is expanded, which is exactly the
// instantiation-dependent case spec.md §4.4 rule 2 calls out.
func PackArg(e Expr) (inner Expr, ok bool) {
	l, isList := e.(*sexp.List)
	if !isList || l.Head() != "pack" || l.Len() != 2 {
		return nil, false
	}

	return l.Get(1), true
}

// Profile returns a canonical textual rendering of an expression, stripped
// of any source location (package sexp's String already carries none),
// suitable for the profile-equality comparison spec.md §3/§4.8 require of
// two atomic constraints' expressions.
func Profile(e Expr) string {
	return e.String()
}

// unquote strips a single layer of double quotes from a symbol's text, for
// the `(expr "...")` atom form whose payload is lexed as one symbol
// token including its quotes.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		unq, err := strconv.Unquote(s)
		if err == nil {
			return unq
		}

		return s[1 : len(s)-1]
	}

	return s
}
