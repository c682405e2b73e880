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

// Package mltal implements the multilevel template-argument list (spec.md
// §3's MLTAL): an ordered stack of argument levels, innermost last, that
// flows through substitution, normalization and satisfaction checking.
package mltal

import (
	"sort"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// Binding is a single template-argument binding within a Level: a name
// (the template parameter it binds) paired with the textual rendering of the
// bound value. The rendering -- rather than a language-specific value type
// -- is what the engine compares for "pointwise" argument-list equality
// (spec.md §3's AtomicConstraint equality, §9's cache keys), since the
// real argument representation is an external collaborator (spec.md §6).
type Binding struct {
	Name  string
	Value string
}

// LevelKind records how a Level was introduced, mirroring the "retained or
// explicit" distinction spec.md §3 calls out for MLTAL's "add outer level"
// operation: a Retained level is inherited unchanged from an enclosing
// template scope, while an Explicit level was freshly produced by
// substitution for this particular instantiation.
type LevelKind uint8

const (
	// Explicit indicates a level produced by substitution for this
	// instantiation.
	Explicit LevelKind = iota
	// Retained indicates a level inherited unchanged from an enclosing scope.
	Retained
)

// Level is one scope's worth of template-argument bindings.
type Level struct {
	Kind     LevelKind
	Bindings []Binding
	// bound tracks, per binding index, whether the argument is a concrete
	// (non-dependent) value as opposed to a placeholder awaiting a later,
	// fuller instantiation. Read by IsConcrete; package external's default
	// IsInstantiationDependent does not consult it and decides dependence
	// from Lookup alone.
	bound *bitset.BitSet
}

// NewLevel constructs a level from the given bindings, all initially
// considered concrete (bound). Call MarkDependent to flag placeholders.
func NewLevel(kind LevelKind, bindings ...Binding) Level {
	bs := bitset.New(uint(len(bindings)))

	for i := range bindings {
		bs.Set(uint(i))
	}

	return Level{Kind: kind, Bindings: bindings, bound: bs}
}

// MarkDependent flags the binding at the given index as not yet concrete.
func (l *Level) MarkDependent(i int) {
	if l.bound != nil {
		l.bound.Clear(uint(i))
	}
}

// IsConcrete reports whether every binding in this level is concrete.
func (l Level) IsConcrete() bool {
	if l.bound == nil {
		return true
	}

	return l.bound.All()
}

// Lookup finds a binding by parameter name within this level alone.
func (l Level) Lookup(name string) (Binding, bool) {
	for _, b := range l.Bindings {
		if b.Name == name {
			return b, true
		}
	}

	return Binding{}, false
}

// MLTAL is an ordered stack of argument levels, innermost last.
type MLTAL struct {
	levels []Level
}

// New constructs an MLTAL from the given levels, outermost first.
func New(levels ...Level) MLTAL {
	return MLTAL{levels: levels}
}

// Empty returns an MLTAL with no levels (the outermost scope).
func Empty() MLTAL {
	return MLTAL{}
}

// LevelCount returns the number of levels currently on the stack.
func (m MLTAL) LevelCount() int {
	return len(m.levels)
}

// Innermost returns the innermost (most recently added) level. Calling this
// on an empty MLTAL returns the zero Level.
func (m MLTAL) Innermost() Level {
	if len(m.levels) == 0 {
		return Level{}
	}

	return m.levels[len(m.levels)-1]
}

// Levels returns every level, outermost first. The returned slice must not
// be mutated.
func (m MLTAL) Levels() []Level {
	return m.levels
}

// WithOuterLevel returns a new MLTAL with the given level appended as the
// new innermost level (i.e. it becomes the most specific scope). The name
// mirrors spec.md §3's "add outer level (retained or explicit)" operation:
// from the perspective of the *new* innermost level, every existing level
// is now one step further out.
func (m MLTAL) WithOuterLevel(level Level) MLTAL {
	next := make([]Level, 0, len(m.levels)+1)
	next = append(next, m.levels...)
	next = append(next, level)

	return MLTAL{levels: next}
}

// Lookup searches from innermost to outermost for a binding of the given
// parameter name, returning its value's textual rendering and the level
// index (0 = outermost) it was found at. This is also, deliberately, the
// exact shape of package external's Binder interface: an MLTAL is usable
// anywhere a Binder is expected without an adapter.
func (m MLTAL) Lookup(name string) (value string, level int, ok bool) {
	for i := len(m.levels) - 1; i >= 0; i-- {
		if b, found := m.levels[i].Lookup(name); found {
			return b.Value, i, true
		}
	}

	return "", -1, false
}

// LookupBinding is like Lookup but returns the full Binding (name and
// value) rather than just the value, for callers that need the parameter
// name back (e.g. a diagnostic renderer).
func (m MLTAL) LookupBinding(name string) (Binding, int, bool) {
	for i := len(m.levels) - 1; i >= 0; i-- {
		if b, ok := m.levels[i].Lookup(name); ok {
			return b, i, true
		}
	}

	return Binding{}, -1, false
}

// Fingerprint produces a stable, order-sensitive textual summary of this
// level's bindings, suitable for use as part of a cache key
// (spec.md §9: "cache keys use a structural fingerprint ... over canonical
// template arguments"; spec.md §3: "identity of arguments at a level is used
// as part of cache keys").
func (l Level) Fingerprint() string {
	parts := make([]string, len(l.Bindings))
	for i, b := range l.Bindings {
		parts[i] = b.Name + "=" + b.Value
	}
	// Bindings are positional (not sorted) since argument order is
	// significant for template argument lists; only the summary separator
	// needs to be unambiguous.
	return strings.Join(parts, ",")
}

// Fingerprint produces a stable textual summary of every level on the
// stack. The satisfaction cache key (spec.md §4.3) does not use this --
// it fingerprints only Innermost(), the profiled innermost template-
// argument list -- so this is for callers (diagnostics, tests) that want a
// summary of the full MLTAL.
func (m MLTAL) Fingerprint() string {
	parts := make([]string, len(m.levels))
	for i, lvl := range m.levels {
		parts[i] = lvl.Fingerprint()
	}

	return strings.Join(parts, "|")
}

// PointwiseEqual reports whether two levels bind the same parameter names to
// the same textual values, in the same order -- the "match pointwise" test
// spec.md §3 requires of two AtomicConstraint parameter mappings.
func (l Level) PointwiseEqual(o Level) bool {
	if len(l.Bindings) != len(o.Bindings) {
		return false
	}

	for i := range l.Bindings {
		if l.Bindings[i] != o.Bindings[i] {
			return false
		}
	}

	return true
}

// SortedBindings returns a name-sorted copy of a level's bindings, for
// callers that want a deterministic, human-readable rendering (e.g. the CLI
// and the diagnostic renderer's "[with ...]" note); argument order itself
// stays positional everywhere else in this package, since it is significant
// for the actual MLTAL semantics.
func (l Level) SortedBindings() []Binding {
	out := append([]Binding(nil), l.Bindings...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}
