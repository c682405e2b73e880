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

	"github.com/spf13/cobra"

	"github.com/PetrKudr/clang-concepts-monorepo/pkg/decl"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/external"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/normalize"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/subsumption"
)

var subsumesCmd = &cobra.Command{
	Use:   "subsumes file declP declQ",
	Short: "Decide whether declP's constraints are at least as constrained as declQ's.",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		registry, _ := loadProgram(args[0])

		engine := external.NewDefaultEngine()
		nctx := normalize.Context{Registry: registry, Subst: engine, Checker: engine}
		sctx := subsumption.NewContext(nctx)

		ac1 := associatedConstraints(registry, args[1])
		ac2 := associatedConstraints(registry, args[2])

		atLeast, invalid := subsumption.IsAtLeastAsConstrained(
			sctx, decl.NewID(args[1]), ac1, decl.NewID(args[2]), ac2)

		if invalid {
			fatalf("could not compare %s and %s: normalization failed", args[1], args[2])
		}

		fmt.Println(atLeast)

		p, okP := normalizedConstraintFor(registry, args[1])
		q, okQ := normalizedConstraintFor(registry, args[2])

		if okP && okQ {
			if notes := subsumption.MaybeEmitAmbiguousAtomicConstraints(p, q); len(notes) > 0 {
				fmt.Println("ambiguous: atomic constraints are textually identical but structurally distinct")

				for _, n := range notes {
					fmt.Printf("  - %s\n", n.Atom.Expr.String())
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(subsumesCmd)
}
