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

import "fmt"

// Save controls which ranges a selection's matches retain from the
// document.
type Save struct {
	InnerHTML   bool
	TextContent bool
}

// SelectionKind distinguishes a selection that keeps every match (KindAll)
// from one that locks after its first (KindFirst).
type SelectionKind int

const (
	KindAll SelectionKind = iota
	KindFirst
)

// selection is one node of the compiled query forest: a selector's
// compiled state range, plus its place in the forest.
type selection struct {
	Source      string
	States      [2]int // [start, end) range into Query.states
	Parent      int     // -1 for a forest root
	NextSibling int     // -1 if none
	Save        Save
	Kind        SelectionKind
}

// Query is a compiled, immutable forest of selections. It is safe to reuse
// across many calls to Parse, including concurrently, since Parse never
// mutates it.
type Query struct {
	states     []state
	selections []selection
}

// QueryBuilder constructs a Query incrementally. The zero value is a valid
// builder with no selections yet; First/All on it behave like the package
// functions of the same name, which lets QueryBuilder double as the
// factory argument to Then.
type QueryBuilder struct {
	states     []state
	selections []selection
	err        error
}

// First starts a new query forest whose root selection keeps only the
// first match of selector.
func First(selector string, save Save) *QueryBuilder {
	return newRootBuilder(selector, save, KindFirst)
}

// All starts a new query forest whose root selection keeps every match of
// selector.
func All(selector string, save Save) *QueryBuilder {
	return newRootBuilder(selector, save, KindAll)
}

func newRootBuilder(selector string, save Save, kind SelectionKind) *QueryBuilder {
	states, err := compileSelector(selector)
	if err != nil {
		return &QueryBuilder{err: err}
	}
	return &QueryBuilder{
		states: states,
		selections: []selection{{
			Source:      selector,
			States:      [2]int{0, len(states)},
			Parent:      -1,
			NextSibling: -1,
			Save:        save,
			Kind:        kind,
		}},
	}
}

// First appends a child selection, under the selection most recently added
// to b, that keeps only its first match.
func (b *QueryBuilder) First(selector string, save Save) *QueryBuilder {
	return b.chain(selector, save, KindFirst)
}

// All appends a child selection, under the selection most recently added
// to b, that keeps every match.
func (b *QueryBuilder) All(selector string, save Save) *QueryBuilder {
	return b.chain(selector, save, KindAll)
}

func (b *QueryBuilder) chain(selector string, save Save, kind SelectionKind) *QueryBuilder {
	if b.err != nil {
		return b
	}
	if len(b.selections) == 0 {
		return newRootBuilder(selector, save, kind)
	}

	states, err := compileSelector(selector)
	if err != nil {
		b.err = err
		return b
	}
	parentIndex := len(b.selections) - 1
	start := len(b.states)
	b.states = append(b.states, states...)
	b.selections = append(b.selections, selection{
		Source:      selector,
		States:      [2]int{start, start + len(states)},
		Parent:      parentIndex,
		NextSibling: -1,
		Save:        save,
		Kind:        kind,
	})
	return b
}

// Then appends a set of sibling children under the selection most recently
// added to b. fn receives a fresh builder to use purely as a First/All
// factory; the builders it returns are spliced in as b's new children,
// threaded together via NextSibling.
func (b *QueryBuilder) Then(fn func(*QueryBuilder) []*QueryBuilder) *QueryBuilder {
	if b.err != nil {
		return b
	}
	if len(b.selections) == 0 {
		b.err = fmt.Errorf("then: no selection to attach children to: %w", ErrInvalidSelector)
		return b
	}

	parent := len(b.selections) - 1
	for _, child := range fn(&QueryBuilder{}) {
		if child.err != nil {
			b.err = child.err
			return b
		}
		b.append(parent, child)
	}
	return b
}

// append splices other's selections and states into b as children of
// parentIndex, relocating state/selection indices and reparenting any of
// other's roots (Parent == -1) to parentIndex, threaded at the tail of
// parentIndex's existing sibling chain.
func (b *QueryBuilder) append(parentIndex int, other *QueryBuilder) {
	stateLen := len(b.states)
	selectionLen := len(b.selections)

	lastSibling := -1
	haveLastSibling := false
	if parentIndex+1 != len(b.selections) {
		siblingIndex := parentIndex + 1
		for b.selections[siblingIndex].NextSibling != -1 {
			siblingIndex = b.selections[siblingIndex].NextSibling
		}
		lastSibling = siblingIndex
		haveLastSibling = true
	}

	// Relocate a copy so that other itself is left unchanged.
	others := append([]selection(nil), other.selections...)
	for i := range others {
		sel := &others[i]
		sel.States[0] += stateLen
		sel.States[1] += stateLen

		if sel.Parent != -1 {
			sel.Parent += selectionLen
			continue
		}

		sel.Parent = parentIndex
		currentIndex := selectionLen + i
		if haveLastSibling {
			if lastSibling < selectionLen {
				b.selections[lastSibling].NextSibling = currentIndex
			} else {
				others[lastSibling-selectionLen].NextSibling = currentIndex
			}
		}
		lastSibling = currentIndex
		haveLastSibling = true
	}

	b.states = append(b.states, other.states...)
	b.selections = append(b.selections, others...)
}

// Build finalizes the builder into an immutable Query.
func (b *QueryBuilder) Build() (*Query, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.selections) == 0 {
		return nil, fmt.Errorf("build: empty query: %w", ErrInvalidSelector)
	}
	return &Query{states: b.states, selections: b.selections}, nil
}

// queryCursor is a position in a compiled Query's forest, used by the
// runner to walk selections and states without mutating the Query itself.
type queryCursor struct {
	selection int
	state     int
}

func (c queryCursor) currentState(q *Query) state {
	return q.states[c.state]
}

func (c queryCursor) currentSelection(q *Query) selection {
	return q.selections[c.selection]
}

func (c queryCursor) isSavePoint(q *Query) bool {
	sel := q.selections[c.selection]
	return sel.States[1]-1 == c.state
}

func (c queryCursor) nextState(q *Query) (queryCursor, bool) {
	sel := q.selections[c.selection]
	if sel.States[1]-1 == c.state {
		return queryCursor{}, false
	}
	return queryCursor{selection: c.selection, state: c.state + 1}, true
}

func (c queryCursor) firstChild(q *Query) (queryCursor, bool) {
	if c.selection == len(q.selections)-1 {
		return queryCursor{}, false
	}
	next := c.selection + 1
	if q.selections[next].Parent == c.selection {
		return queryCursor{selection: next, state: q.selections[next].States[0]}, true
	}
	return queryCursor{}, false
}

func (c queryCursor) nextSibling(q *Query) (queryCursor, bool) {
	sibling := q.selections[c.selection].NextSibling
	if sibling == -1 {
		return queryCursor{}, false
	}
	return queryCursor{selection: sibling, state: q.selections[sibling].States[0]}, true
}

func (c queryCursor) isRoot() bool {
	return c.selection == 0 && c.state == 0
}

func (c queryCursor) back(q *Query) queryCursor {
	sel := q.selections[c.selection]
	if c.state > sel.States[0] {
		return queryCursor{selection: c.selection, state: c.state - 1}
	}
	if sel.Parent != -1 {
		return queryCursor{selection: sel.Parent, state: q.selections[sel.Parent].States[1] - 1}
	}
	return c
}
