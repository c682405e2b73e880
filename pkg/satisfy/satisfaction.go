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
package satisfy

import "github.com/PetrKudr/clang-concepts-monorepo/pkg/requirement"

// DetailRecord, Detail and Satisfaction are defined in package requirement
// (see its satisfaction.go) rather than here: a Nested requirement and a
// Compound requirement's return-type-constraint both store their own
// cached Satisfaction by value (spec.md §4.10's last bullet), and package
// requirement cannot import back into package satisfy. Aliasing keeps the
// satisfy.Satisfaction / satisfy.Detail / satisfy.DetailRecord names this
// package's callers (the CLI, the diagnostic renderer) already use.
type (
	DetailRecord = requirement.DetailRecord
	Detail       = requirement.Detail
	Satisfaction = requirement.Satisfaction
)
