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
package cli

import (
	"os"

	"github.com/PetrKudr/clang-concepts-monorepo/pkg/astview"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/decl"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/mltal"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/program"
)

// loadProgram reads and parses filename, exiting the process on any error
// (mirroring the teacher's pkg/cmd.readSchemaFile, which never returns an
// error to its caller either).
func loadProgram(filename string) (*decl.Registry, map[string][]string) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		fatalf("reading %s: %v", filename, err)
	}

	registry, params, err := program.Load(filename, bytes)
	if err != nil {
		fatalf("%v", err)
	}

	return registry, params
}

// bindArguments builds a single explicit MLTAL level binding declName's
// formal parameters, positionally, to the given textual argument list.
func bindArguments(declName string, params map[string][]string, rawArgs []string) mltal.MLTAL {
	formals, ok := params[declName]
	if !ok {
		fatalf("no such declaration %q", declName)
	}

	if len(rawArgs) != len(formals) {
		fatalf("%s expects %d argument(s), got %d", declName, len(formals), len(rawArgs))
	}

	bindings := make([]mltal.Binding, len(formals))
	for i, name := range formals {
		bindings[i] = mltal.Binding{Name: name, Value: rawArgs[i]}
	}

	return mltal.Empty().WithOuterLevel(mltal.NewLevel(mltal.Explicit, bindings...))
}

// associatedConstraints resolves declName's ordered associated-constraints
// clause list from the registry (spec.md's GLOSSARY entry for the term).
func associatedConstraints(registry *decl.Registry, declName string) []astview.Expr {
	raw, ok := registry.LookupConstraints(decl.NewID(declName))
	if !ok {
		if c, ok := registry.Lookup(declName); ok {
			if e, ok := c.Expr.(astview.Expr); ok {
				return []astview.Expr{e}
			}
		}

		fatalf("no associated constraints registered for %q", declName)
	}

	clauses := make([]astview.Expr, 0, len(raw))

	for _, c := range raw {
		if e, ok := c.(astview.Expr); ok {
			clauses = append(clauses, e)
		}
	}

	return clauses
}
