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

// Package program loads a source file of concept and constrained-declaration
// definitions (the engine's own toy top-level grammar, layered over package
// sexp's S-expressions) into a decl.Registry, the way the teacher's
// pkg/cmd.readSchemaFile loads a ".lisp" constraints file into an hir.Schema.
//
// Two top-level forms are recognized:
//
//	(define-concept Name (Param...) Body)
//	(define-constraints DeclName (Param...) Clause...)
//
// Everything else -- && || paren concept requires and the atomic leaf forms
// -- is the expression grammar package astview classifies.
package program

import (
	"fmt"

	"github.com/PetrKudr/clang-concepts-monorepo/pkg/astview"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/decl"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/sexp"
)

// Load parses source and registers every definition it contains into a fresh
// decl.Registry, returning it alongside the given registry's mapping from
// declaration name to its parameter list (needed by callers that go on to
// build an MLTAL level for a particular instantiation). Dispatch between the
// two top-level forms is done with a package sexp.Translator, the same
// rule-per-head-symbol mechanism package astview's Classify/decompose
// functions use by hand for expression nodes.
func Load(filename string, source []byte) (*decl.Registry, map[string][]string, error) {
	srcfile := sexp.NewSourceFile(filename, source)

	terms, _, err := srcfile.ParseAll()
	if err != nil {
		return nil, nil, fmt.Errorf("program: parsing %s: %w", filename, err)
	}

	registry := decl.NewRegistry()
	params := make(map[string][]string)
	translator := newTopLevelTranslator(registry, params)

	if _, err := translator.TranslateAll(terms); err != nil {
		return nil, nil, err
	}

	return registry, params, nil
}

// newTopLevelTranslator builds the rule set for the two top-level forms,
// each rule mutating registry/params in place; the Translator's own return
// value (struct{}) is unused, only its error-short-circuiting matters here.
func newTopLevelTranslator(registry *decl.Registry, params map[string][]string) *sexp.Translator[struct{}] {
	t := sexp.NewTranslator[struct{}]()

	t.SetFallbackSymbolRule(func(sym *sexp.Symbol) (struct{}, error) {
		return struct{}{}, fmt.Errorf("program: expected a top-level definition, got %q", sym.Value)
	})

	t.AddListRule("define-concept", func(head string, elements []sexp.SExp) (struct{}, error) {
		return struct{}{}, loadConcept(registry, params, elements)
	})

	t.AddListRule("define-constraints", func(head string, elements []sexp.SExp) (struct{}, error) {
		return struct{}{}, loadConstraints(registry, params, elements)
	})

	t.SetFallbackListRule(func(head string, elements []sexp.SExp) (struct{}, error) {
		return struct{}{}, fmt.Errorf("program: unrecognized top-level form %q", head)
	})

	return t
}

// loadConcept handles `(define-concept Name (Param...) Body)`.
func loadConcept(registry *decl.Registry, params map[string][]string, elements []sexp.SExp) error {
	if len(elements) != 4 {
		return fmt.Errorf("program: malformed define-concept form")
	}

	name, ok := elements[1].(*sexp.Symbol)
	if !ok {
		return fmt.Errorf("program: define-concept name must be a symbol, got %q", elements[1].String())
	}

	paramList, err := parseParamList(elements[2])
	if err != nil {
		return err
	}

	var body astview.Expr = elements[3]

	registry.Define(decl.Concept{ID: decl.NewID(name.Value), Params: paramList, Expr: body})
	params[name.Value] = paramList

	return nil
}

// loadConstraints handles `(define-constraints DeclName (Param...) Clause...)`.
func loadConstraints(registry *decl.Registry, params map[string][]string, elements []sexp.SExp) error {
	if len(elements) < 3 {
		return fmt.Errorf("program: malformed define-constraints form")
	}

	name, ok := elements[1].(*sexp.Symbol)
	if !ok {
		return fmt.Errorf("program: define-constraints name must be a symbol, got %q", elements[1].String())
	}

	paramList, err := parseParamList(elements[2])
	if err != nil {
		return err
	}

	clauses := make([]any, 0, len(elements)-3)
	for _, c := range elements[3:] {
		clauses = append(clauses, c)
	}

	id := decl.NewID(name.Value)
	registry.DefineConstraints(id, clauses)
	params[name.Value] = paramList

	return nil
}

func parseParamList(e sexp.SExp) ([]string, error) {
	l, ok := e.(*sexp.List)
	if !ok {
		return nil, fmt.Errorf("program: expected a parameter list, got %q", e.String())
	}

	out := make([]string, 0, l.Len())

	for _, el := range l.Elements {
		sym, ok := el.(*sexp.Symbol)
		if !ok {
			return nil, fmt.Errorf("program: parameter list entries must be symbols, got %q", el.String())
		}

		out = append(out, sym.Value)
	}

	return out, nil
}
