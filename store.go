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

type contentRangeKind int

const (
	contentEmpty contentRangeKind = iota
	contentStartPoint
	contentComplete
)

// contentRange tracks one of inner_html/text_content's lifecycle:
// Empty (never requested), StartPoint (opened, awaiting a close), or
// Complete (both ends known). It only ever moves forward through that
// sequence.
type contentRange struct {
	kind  contentRangeKind
	start int
	end   int
}

// newContentRange returns Empty if start is negative (save not requested
// for this span), else StartPoint(start).
func newContentRange(start int) contentRange {
	if start < 0 {
		return contentRange{kind: contentEmpty}
	}
	return contentRange{kind: contentStartPoint, start: start}
}

func (c contentRange) startPoint() (int, bool) {
	if c.kind == contentStartPoint {
		return c.start, true
	}
	return 0, false
}

func (c contentRange) complete() (start, end int, ok bool) {
	if c.kind == contentComplete {
		return c.start, c.end, true
	}
	return 0, 0, false
}

type childIndexKind int

const (
	childIndexOne childIndexKind = iota
	childIndexMany
)

// childSlot is the match-tree's mutable bookkeeping for one selector
// source's children under a node, before it is frozen into a public
// ChildIndex.
type childSlot struct {
	kind childIndexKind
	one  int
	many []int
}

// treeNode is one entry in the match-tree arena.
type treeNode struct {
	Element     TagEvent
	InnerHTML   contentRange
	TextContent contentRange

	childOrder []string
	children   map[string]*childSlot
}

// matchTree is the private arena the runner builds matches into. Node 0 is
// always the synthetic root shared by every query in a single Parse call.
type matchTree struct {
	nodes []treeNode
}

func newMatchTree() *matchTree {
	return &matchTree{
		nodes: []treeNode{{
			Element:  TagEvent{Name: []byte("root")},
			children: map[string]*childSlot{},
		}},
	}
}

// push appends a new node for tag as a match of sel under parent, and
// returns the new node's index. innerHTMLStart/textStart are tape/reader
// offsets, or -1 if sel.Save didn't request that span.
//
// A selection's matches are recorded under its Source key on the parent:
// the first match creates a One slot (KindFirst) or a Many slot with one
// entry (KindAll); subsequent KindAll matches append to the Many slot. A
// second match attempting to land in an existing One slot is a contract
// violation — First selections lock after their first save, so the runner
// must never call push for one twice.
func (t *matchTree) push(sel selection, parent int, tag TagEvent, innerHTMLStart, textStart int) int {
	index := len(t.nodes)
	t.nodes = append(t.nodes, treeNode{
		Element:     tag,
		InnerHTML:   newContentRange(innerHTMLStart),
		TextContent: newContentRange(textStart),
		children:    map[string]*childSlot{},
	})

	parentNode := &t.nodes[parent]
	slot, ok := parentNode.children[sel.Source]
	switch {
	case !ok:
		s := &childSlot{}
		if sel.Kind == KindFirst {
			s.kind, s.one = childIndexOne, index
		} else {
			s.kind, s.many = childIndexMany, []int{index}
		}
		parentNode.children[sel.Source] = s
		parentNode.childOrder = append(parentNode.childOrder, sel.Source)
	case slot.kind == childIndexMany && sel.Kind == KindAll:
		slot.many = append(slot.many, index)
	default:
		panicContractViolation(fmt.Sprintf("selection %q matched a locked First slot", sel.Source))
	}
	return index
}

// setContent transitions node pos's spans from StartPoint to Complete.
// A span left Empty (never started) is left untouched.
func (t *matchTree) setContent(pos, innerHTMLEnd, textEnd int) {
	node := &t.nodes[pos]
	if start, ok := node.InnerHTML.startPoint(); ok {
		node.InnerHTML = contentRange{kind: contentComplete, start: start, end: innerHTMLEnd}
	}
	if start, ok := node.TextContent.startPoint(); ok {
		node.TextContent = contentRange{kind: contentComplete, start: start, end: textEnd}
	}
}

// ChildIndex is a read-only view of one selector source's matches under an
// Element: a single index for a KindFirst selection, or an ordered list of
// indices for a KindAll selection.
type ChildIndex struct {
	kind childIndexKind
	one  int
	many []int
}

// Value returns the single matched element index, or ErrNotASingleElement
// if this index holds a list.
func (c ChildIndex) Value() (int, error) {
	if c.kind != childIndexOne {
		return 0, fmt.Errorf("child index value: %w", ErrNotASingleElement)
	}
	return c.one, nil
}

// Iter returns the matched element indices in match order, or ErrNotAList
// if this index holds a single element.
func (c ChildIndex) Iter() ([]int, error) {
	if c.kind != childIndexMany {
		return nil, fmt.Errorf("child index iter: %w", ErrNotAList)
	}
	return c.many, nil
}

// Element is the public, read-only projection of one matched tag.
type Element struct {
	Name, Class, ID []byte
	Attributes      []Attribute
	InnerHTML       []byte
	TextContent     []byte

	childOrder []string
	children   map[string]ChildIndex
}

// Get looks up a child by the selector source string that matched it.
func (e *Element) Get(source string) (ChildIndex, error) {
	c, ok := e.children[source]
	if !ok {
		return ChildIndex{}, fmt.Errorf("get %q: %w", source, ErrKeyNotFound)
	}
	return c, nil
}

// ChildSources returns the selector source strings keying e's children, in
// the order those selections were first matched under e.
func (e *Element) ChildSources() []string {
	return e.childOrder
}

// Store is the finished, read-only result of a Parse call.
type Store struct {
	elements []Element
}

// Elements returns every matched element in the order they were pushed.
// Index 0 is always the synthetic root shared by every query.
func (s *Store) Elements() []Element {
	return s.elements
}

// Element returns the element at index i.
func (s *Store) Element(i int) (*Element, error) {
	if i < 0 || i >= len(s.elements) {
		return nil, fmt.Errorf("element %d: %w", i, ErrIndexOutOfBounds)
	}
	return &s.elements[i], nil
}

// Attributes returns e's attributes.
func (s *Store) Attributes(e *Element) []Attribute {
	return e.Attributes
}

// TextContent returns e's accumulated text content, if its selection
// requested it.
func (s *Store) TextContent(e *Element) ([]byte, bool) {
	if e.TextContent == nil {
		return nil, false
	}
	return e.TextContent, true
}

// Root returns the synthetic root element shared by every query in this
// Store; every query's top-level matches hang off it, keyed by their own
// selector source.
func (s *Store) Root(queryIndex int) (*Element, error) {
	if queryIndex < 0 {
		return nil, fmt.Errorf("root %d: %w", queryIndex, ErrIndexOutOfBounds)
	}
	return &s.elements[0], nil
}

// buildStore converts a finished match tree into its public projection,
// resolving inner_html spans against buf and text_content spans against
// the accumulator's tape.
func buildStore(tree *matchTree, buf []byte, tape []byte) *Store {
	elements := make([]Element, len(tree.nodes))
	for i, node := range tree.nodes {
		el := Element{
			Name:       node.Element.Name,
			Class:      node.Element.Class,
			ID:         node.Element.ID,
			Attributes: node.Element.Attributes,
			childOrder: node.childOrder,
			children:   make(map[string]ChildIndex, len(node.children)),
		}
		if start, end, ok := node.InnerHTML.complete(); ok {
			el.InnerHTML = buf[start:end]
		}
		if start, end, ok := node.TextContent.complete(); ok {
			el.TextContent = tape[start:end]
		}
		for source, slot := range node.children {
			ci := ChildIndex{kind: slot.kind, one: slot.one}
			if slot.kind == childIndexMany {
				ci.many = slot.many
			}
			el.children[source] = ci
		}
		elements[i] = el
	}
	return &Store{elements: elements}
}
