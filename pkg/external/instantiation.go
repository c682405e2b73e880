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
package external

// Stack is the reference InstantiationStack implementation: a simple
// bounded depth counter. Pushing past the configured limit fails
// (ErrFrameDepthExceeded), modeling the compiler's template-instantiation-
// depth limit, which spec.md §5 calls "the sole bound" on recursion at this
// layer.
type Stack struct {
	maxDepth int
	frames   []frameEntry
}

type frameEntry struct {
	kind FrameKind
	what string
}

// NewStack constructs an instantiation stack bounded at maxDepth frames.
func NewStack(maxDepth int) *Stack {
	return &Stack{maxDepth: maxDepth}
}

// Push acquires a new frame, failing if doing so would exceed maxDepth.
func (s *Stack) Push(kind FrameKind, what string) (Frame, error) {
	if len(s.frames) >= s.maxDepth {
		return nil, ErrFrameDepthExceeded
	}

	s.frames = append(s.frames, frameEntry{kind: kind, what: what})

	return &stackFrame{stack: s, depth: len(s.frames)}, nil
}

// Depth returns the number of frames currently pushed.
func (s *Stack) Depth() int {
	return len(s.frames)
}

// stackFrame releases its entry (and every entry pushed after it, in case a
// caller forgets to release in strict LIFO order during error unwinding) on
// Release.
type stackFrame struct {
	stack *Stack
	depth int
}

// Release pops this frame and any still-open frames pushed after it
// (spec.md §5: "scoped acquisition guaranteed release on all exit paths").
func (f *stackFrame) Release() {
	if f.stack.Depth() >= f.depth {
		f.stack.frames = f.stack.frames[:f.depth-1]
	}
}
