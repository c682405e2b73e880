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
package normalize

import (
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/astview"
	"github.com/PetrKudr/clang-concepts-monorepo/pkg/sexp"
)

// rebuildConceptRef reconstructs a `(concept Name Arg...)` node from a
// concept name and its already-substituted arguments, used for the
// instantiation-dependent atomic-leaf case of spec.md §4.4 rule 2.
func rebuildConceptRef(name string, args []astview.Expr) astview.Expr {
	elements := make([]sexp.SExp, 0, len(args)+2)
	elements = append(elements, &sexp.Symbol{Value: "concept"}, &sexp.Symbol{Value: name})
	elements = append(elements, args...)

	return &sexp.List{Elements: elements}
}
