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
	"os"

	"github.com/spf13/cobra"

	"github.com/PetrKudr/clang-concepts-monorepo/pkg/decl"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/diagnose"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/external"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/satisfy"
)

var checkCmd = &cobra.Command{
	Use:   "check file decl [arg...]",
	Short: "Check whether a declaration's associated constraints are satisfied for the given arguments.",
	Long: `Check a declaration's (concept or constrained-declaration) associated
constraints against a concrete, positionally-bound argument list, printing
"satisfied" or "not satisfied" and, on failure, a diagnostic trail.`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		filename := args[0]
		declName := args[1]
		rawArgs := args[2:]

		registry, params := loadProgram(filename)
		argLevel := bindArguments(declName, params, rawArgs)
		clauses := associatedConstraints(registry, declName)

		ctx := satisfy.NewContext(registry, external.NewDefaultEngine())

		sat, err := ctx.CheckConstraintSatisfaction(decl.NewID(declName), clauses, argLevel)
		if err != nil {
			fatalf("%v", err)
		}

		if sat.IsSatisfied {
			fmt.Println("satisfied")
			return
		}

		fmt.Println("not satisfied")
		diagnose.DiagnoseUnsatisfiedConstraint(os.Stdout, sat, true)
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
