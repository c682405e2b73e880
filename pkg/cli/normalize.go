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
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PetrKudr/clang-concepts-monorepo/pkg/decl"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/external"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/mltal"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/normalform"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/normalize"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize file decl",
	Short: "Print a declaration's normalized-constraint tree.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		registry, _ := loadProgram(args[0])

		nc, ok := normalizedConstraintFor(registry, args[1])
		if !ok {
			fatalf("%s: ill-formed constraints, could not normalize", args[1])
		}

		fmt.Println(renderNormalized(nc))
	},
}

var cnfCmd = &cobra.Command{
	Use:   "cnf file decl",
	Short: "Print a declaration's constraints in conjunctive normal form.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		registry, _ := loadProgram(args[0])

		nc, ok := normalizedConstraintFor(registry, args[1])
		if !ok {
			fatalf("%s: ill-formed constraints, could not normalize", args[1])
		}

		fmt.Println(renderNormalForm(normalform.ToCNF(nc)))
	},
}

var dnfCmd = &cobra.Command{
	Use:   "dnf file decl",
	Short: "Print a declaration's constraints in disjunctive normal form.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		registry, _ := loadProgram(args[0])

		nc, ok := normalizedConstraintFor(registry, args[1])
		if !ok {
			fatalf("%s: ill-formed constraints, could not normalize", args[1])
		}

		fmt.Println(renderNormalForm(normalform.ToDNF(nc)))
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd, cnfCmd, dnfCmd)
}

func normalizedConstraintFor(registry *decl.Registry, declName string) (*normalize.NormalizedConstraint, bool) {
	engine := external.NewDefaultEngine()
	nctx := normalize.Context{Registry: registry, Subst: engine, Checker: engine}
	clauses := associatedConstraints(registry, declName)

	return normalize.NormalizeSequence(nctx, clauses, decl.NewID(declName), mltal.Empty())
}

func renderNormalized(n *normalize.NormalizedConstraint) string {
	if n.IsAtomic {
		return n.Atomic.Expr.String()
	}

	op := "&&"
	if n.Kind == normalize.Disjunction {
		op = "||"
	}

	return "(" + renderNormalized(n.Left) + " " + op + " " + renderNormalized(n.Right) + ")"
}

func renderNormalForm(nf normalform.NormalForm) string {
	clauses := make([]string, len(nf))

	for i, c := range nf {
		atoms := make([]string, len(c))
		for j, a := range c {
			atoms[j] = a.Expr.String()
		}

		clauses[i] = "[" + strings.Join(atoms, ", ") + "]"
	}

	return strings.Join(clauses, "\n")
}
