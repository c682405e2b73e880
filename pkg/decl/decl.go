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

// Package decl stands in for the surrounding compiler's symbol table (out of
// scope per spec.md §1). It gives constrained declarations and concepts a
// canonical, comparable identity, which spec.md §3 and §9 require as the
// basis of cache keys ("canonical declaration pointer") -- everything this
// engine caches is keyed on a decl.ID, never on a source location.
package decl

import "fmt"

// ID canonically identifies a declaration (a constrained function/class
// template, or a concept) for the lifetime of a compilation. Two IDs compare
// equal iff they name the same declaration.
type ID struct {
	name string
}

// NewID constructs an ID naming the given declaration. Declarations are
// otherwise opaque to this engine (spec.md §1 places their representation
// out of scope); only identity and a human-readable name matter here.
func NewID(name string) ID {
	return ID{name}
}

// String returns the declaration's name, for diagnostics.
func (d ID) String() string {
	return d.name
}

// Registry resolves concept names to their associated constraint-expression
// clauses, and constrained declarations (by ID) to their own associated
// constraints list. It plays the role of the compiler's symbol table that
// the Normalizer (spec.md §4.4) and the top-level satisfaction/subsumption
// entry points (spec.md §4.3, §4.7) consult.
type Registry struct {
	concepts     map[string]Concept
	declarations map[string][]any // []astview.Expr, kept as `any` to avoid an import cycle
}

// Concept is the subset of a concept declaration's information the engine
// needs: its canonical identity, its template parameter names (used to bind
// the concept's own parameter mapping during normalization), and its
// associated constraint expression clauses.
type Concept struct {
	ID         ID
	Params     []string
	Expr       any // astview.Expr; kept as `any` here to avoid an import cycle
}

// NewRegistry constructs an empty concept registry.
func NewRegistry() *Registry {
	return &Registry{concepts: make(map[string]Concept), declarations: make(map[string][]any)}
}

// Define registers a concept declaration. Redefining a concept under the
// same name replaces the previous definition.
func (r *Registry) Define(c Concept) {
	r.concepts[c.ID.String()] = c
}

// Lookup resolves a concept by name.
func (r *Registry) Lookup(name string) (Concept, bool) {
	c, ok := r.concepts[name]
	return c, ok
}

// DefineConstraints associates a constrained (non-concept) declaration with
// its ordered list of associated-constraints clauses (spec.md's GLOSSARY:
// "the ordered list of requires-clauses and constrained-parameter clauses
// attached to a declaration").
func (r *Registry) DefineConstraints(id ID, clauses []any) {
	r.declarations[id.name] = clauses
}

// LookupConstraints resolves a declaration's associated-constraints clause
// list.
func (r *Registry) LookupConstraints(id ID) ([]any, bool) {
	clauses, ok := r.declarations[id.name]
	return clauses, ok
}

// MustLookup is a convenience wrapper over Lookup for call sites (tests,
// CLI) that have already validated the name exists.
func (r *Registry) MustLookup(name string) Concept {
	c, ok := r.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("decl: no such concept %q", name))
	}

	return c
}
