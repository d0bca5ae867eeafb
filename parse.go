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

// Package scah implements a streaming CSS-selector query engine over
// HTML/XHTML-shaped byte input: given a document and a forest of compiled
// selector queries, it produces, in a single forward pass, a store of
// matched elements with optional captured inner HTML and concatenated
// text content.
package scah

import (
	"fmt"

	"scah.dev/scah/internal/scanner"
)

// Parse scans buf once and drives every query's compiled forest against
// its tag-event stream, returning the resulting Store. queries must be
// non-empty. Malformed markup never produces an error: it produces a
// possibly-empty Store, since the engine recovers from parse errors by
// dropping the tag event in flight rather than failing the whole parse.
func Parse(buf []byte, queries ...*Query) (*Store, error) {
	if len(queries) == 0 {
		return nil, fmt.Errorf("parse: %w", ErrEmptyQueryList)
	}

	positions := scanner.Scan(nil, buf)
	factory := newElementFactory(buf, positions)
	run := newRunner(buf, queries)

	depth := 0
	boundary := 0

	for {
		ev, ok := factory.Next()
		if !ok {
			break
		}

		run.text.openRun(boundary)
		textPos := run.text.closeRun(buf, ev.Span[0])
		boundary = ev.Span[1]

		if ev.Closing {
			if depth > 0 {
				depth--
			}
			run.Close(depth, ev.Name, ev.Span[0], textPos)
			continue
		}

		run.Open(depth, ev, textPos, ev.Span[1])
		if !ev.selfClosing() {
			depth++
		}
	}

	run.flush(len(buf), run.text.pos())

	return buildStore(run.tree, buf, run.text.tape), nil
}
