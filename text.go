// Copyright 2026 The Scah Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package scah

// isASCIISpace classifies markup whitespace byte-by-byte, not via
// unicode.IsSpace.
func isASCIISpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// textAccumulator collects the between-tag byte runs of a document into an
// owned tape, trimming each run's leading and trailing ASCII whitespace
// while leaving interior whitespace untouched. Element text_content ranges
// name a [start,end) span in the tape, not in the source buffer.
type textAccumulator struct {
	tape     []byte
	runStart int
}

// openRun marks pos as the start of the next between-tag run.
func (a *textAccumulator) openRun(pos int) {
	a.runStart = pos
}

// closeRun appends buf[runStart:end), trimmed of leading/trailing ASCII
// whitespace, to the tape and returns the tape length after appending —
// the offset the next run, or a node's text_content span, begins at.
func (a *textAccumulator) closeRun(buf []byte, end int) int {
	start := a.runStart
	for start < end && isASCIISpace(buf[start]) {
		start++
	}
	for end > start && isASCIISpace(buf[end-1]) {
		end--
	}
	a.tape = append(a.tape, buf[start:end]...)
	return len(a.tape)
}

func (a *textAccumulator) pos() int {
	return len(a.tape)
}
