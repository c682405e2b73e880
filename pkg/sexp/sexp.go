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

// Package sexp implements a minimal S-expression reader used as the concrete
// surface syntax for constraint expressions (see package astview).  The real
// compiler's own expression AST is an external collaborator (spec.md §6);
// this package exists only so the engine can be parsed, tested and driven
// from the command line without a full C++ parser.
package sexp

// SExp is an S-Expression: either a List of zero or more S-Expressions, or a
// terminating Symbol.
type SExp interface {
	// IsList checks whether this S-Expression is a list.
	IsList() bool
	// IsSymbol checks whether this S-Expression is a symbol.
	IsSymbol() bool
	// String generates a string representation.
	String() string
}

// ===================================================================
// List
// ===================================================================

// List represents a list of zero or more S-Expressions.
type List struct {
	Elements []SExp
}

// NOTE: This is used for compile time type checking if the given type
// satisfies the given interface.
var _ SExp = (*List)(nil)

// IsList sets that is a list.
func (l *List) IsList() bool { return true }

// IsSymbol that a List is not a Symbol.
func (l *List) IsSymbol() bool { return false }

// Len gets the number of elements in this list.
func (l *List) Len() int { return len(l.Elements) }

// Get the ith element of this list.
func (l *List) Get(i int) SExp { return l.Elements[i] }

// Head returns the leading symbol of this list (e.g. "&&", "concept"), or the
// empty string if the list is empty or does not begin with a symbol.
func (l *List) Head() string {
	if len(l.Elements) == 0 {
		return ""
	}

	if sym, ok := l.Elements[0].(*Symbol); ok {
		return sym.Value
	}

	return ""
}

// Tail returns every element of this list after the first.
func (l *List) Tail() []SExp {
	if len(l.Elements) == 0 {
		return nil
	}

	return l.Elements[1:]
}

func (l *List) String() string {
	var s = "("

	for i := 0; i < len(l.Elements); i++ {
		if i != 0 {
			s += " "
		}

		s += l.Elements[i].String()
	}

	s += ")"

	return s
}

// MatchSymbols matches a list which has at least n elements, whose first
// len(symbols) elements are symbols equal to the given strings.
func (l *List) MatchSymbols(n int, symbols ...string) bool {
	if len(l.Elements) < n || len(symbols) > n {
		return false
	}

	for i := 0; i < len(symbols); i++ {
		switch ith := l.Elements[i].(type) {
		case *Symbol:
			if ith.Value != symbols[i] {
				return false
			}
		default:
			return false
		}
	}

	return true
}

// ===================================================================
// Symbol
// ===================================================================

// Symbol represents a terminating symbol.
type Symbol struct {
	Value string
}

// NOTE: This is used for compile time type checking if the given type
// satisfies the given interface.
var _ SExp = (*Symbol)(nil)

// IsList sets that A Symbol is not a List.
func (s *Symbol) IsList() bool { return false }

// IsSymbol sets tha is a Symbol.
func (s *Symbol) IsSymbol() bool { return true }

func (s *Symbol) String() string { return s.Value }
