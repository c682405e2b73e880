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

// Package cli implements the "concepts" command-line driver over this
// engine: loading a program file (package program), checking satisfaction,
// normalizing, converting to CNF/DNF, and comparing two declarations'
// constraints for subsumption.
package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is filled when building with make, but not when installing via
// "go install".
var Version string

var log = logrus.StandardLogger()

var rootCmd = &cobra.Command{
	Use:   "concepts",
	Short: "A semantic engine for C++20-style concepts and constraints.",
	Long:  "Checks constraint satisfaction, normalizes to CNF/DNF, and decides subsumption over a toy S-expression surface syntax.",
	Run: func(cmd *cobra.Command, args []string) {
		if ok, _ := cmd.Flags().GetBool("version"); ok {
			fmt.Print("concepts ")

			if Version != "" {
				fmt.Print(Version)
			} else {
				fmt.Print("(unknown version)")
			}

			fmt.Println()
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(); it only needs to happen once.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "report the version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")

	cobra.OnInitialize(func() {
		if verbose, _ := rootCmd.PersistentFlags().GetBool("verbose"); verbose {
			log.SetLevel(logrus.DebugLevel)
		}
	})
}

// fatalf logs err and exits with a non-zero status, mirroring the teacher's
// pkg/cmd convention of never returning an error from a cobra Run func.
func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}
