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

import (
	"bytes"
	"fmt"

	"golang.org/x/text/cases"
)

// Combinator is the relationship a compiled state's element must satisfy
// against the open-tag stack before it can match.
type Combinator int

const (
	Descendant Combinator = iota
	Child
	NextSibling
	SubsequentSibling
)

// AttributeSelectorKind is the comparison an attribute selector applies
// between its query value and an observed attribute value.
type AttributeSelectorKind int

const (
	Presence AttributeSelectorKind = iota
	Exact
	WhitespaceSeparated
	HyphenSeparated
	Prefix
	Suffix
	Substring
)

// find reports whether source satisfies kind's comparison against query.
func (k AttributeSelectorKind) find(query, source []byte) bool {
	switch k {
	case Presence:
		return true
	case Exact:
		return bytes.Equal(query, source)
	case WhitespaceSeparated:
		for _, word := range bytes.Fields(source) {
			if bytes.Equal(word, query) {
				return true
			}
		}
		return false
	case HyphenSeparated:
		for _, word := range bytes.Fields(source) {
			if bytes.Equal(word, query) {
				return true
			}
			if len(word) > len(query) && bytes.Equal(word[:len(query)], query) && word[len(query)] == '-' {
				return true
			}
		}
		return false
	case Prefix:
		return len(query) <= len(source) && bytes.Equal(source[:len(query)], query)
	case Suffix:
		return len(query) <= len(source) && bytes.Equal(source[len(source)-len(query):], query)
	case Substring:
		return bytes.Contains(source, query)
	default:
		return false
	}
}

// AttributeSelector is a single `[...]` clause in a compiled selector atom.
type AttributeSelector struct {
	Name     []byte
	Value    []byte
	HasValue bool
	Kind     AttributeSelectorKind
}

// queryElement is one simple-selector atom: the name/id/class/attribute
// constraints that a tag event must satisfy.
type queryElement struct {
	Name, ID, Class []byte
	Attributes      []AttributeSelector
}

// matches reports whether ev satisfies every constraint el carries. A nil
// Name/ID/Class field means that constraint is unconstrained (bare `*`
// selectors, or atoms that never specified one).
func (el queryElement) matches(ev TagEvent) bool {
	if el.Name != nil && !bytes.Equal(el.Name, ev.Name) {
		return false
	}
	if el.ID != nil && !bytes.Equal(el.ID, ev.ID) {
		return false
	}
	if el.Class != nil {
		found := false
		for _, token := range bytes.Fields(ev.Class) {
			if bytes.Equal(token, el.Class) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, sel := range el.Attributes {
		attr, ok := attributeByKey(ev.Attributes, sel.Name)
		if !ok {
			return false
		}
		if sel.Kind == Presence {
			continue
		}
		if !attr.HasValue || !sel.Kind.find(sel.Value, attr.Value) {
			return false
		}
	}
	return true
}

// state is one compiled step of a selector: the combinator test that must
// succeed before Element is tested against a tag event.
type state struct {
	Transition Combinator
	Element    queryElement
}

// CaseFold normalizes a selector string (and, if callers want
// case-insensitive matching, the document bytes they feed to Parse) using
// Unicode simple case folding. The core matcher is always byte-exact;
// callers that want case-insensitive behavior must apply CaseFold
// identically on both sides.
func CaseFold(selector string) string {
	return cases.Fold().String(selector)
}

type selectorReader struct {
	src []byte
	pos int
}

func (r *selectorReader) peek() (byte, bool) {
	if r.pos >= len(r.src) {
		return 0, false
	}
	return r.src[r.pos], true
}

func (r *selectorReader) next() (byte, bool) {
	c, ok := r.peek()
	if ok {
		r.pos++
	}
	return c, ok
}

func (r *selectorReader) atEnd() bool {
	return r.pos >= len(r.src)
}

func (r *selectorReader) skipSpaces() {
	for {
		c, ok := r.peek()
		if !ok || c != ' ' {
			return
		}
		r.next()
	}
}

func (r *selectorReader) readToken(stop func(byte) bool) []byte {
	start := r.pos
	for {
		c, ok := r.peek()
		if !ok || stop(c) {
			break
		}
		r.next()
	}
	return r.src[start:r.pos]
}

func isCombinatorByte(c byte) bool {
	switch c {
	case '>', ' ', '+', '~', '|':
		return true
	}
	return false
}

func isAtomBoundary(c byte) bool {
	switch c {
	case ' ', '#', '.', '[', '>', '+', '~', '|':
		return true
	}
	return false
}

// compileSelector parses a simple-selector chain into its sequence of
// compiled states, per the grammar:
//
//	selector   := combinator? atom (combinator atom)*
//	combinator := '>' | ' ' | '+' | '~'        // leading combinator optional; absent = Descendant
//	atom       := (name | '*')? ('#' ident)? ('.' ident)? ('[' attr_sel ']')*
//	attr_sel   := ident (op value)?
//	op         := '=' | '~=' | '|=' | '^=' | '$=' | '*='
//	value      := ident | '"' … '"' | '\'' … '\''
func compileSelector(src string) ([]state, error) {
	if src == "" || src == "*" || src == "root" {
		return nil, fmt.Errorf("compile selector %q: %w", src, ErrInvalidSelector)
	}

	r := &selectorReader{src: []byte(src)}

	leading, err := readCombinator(r)
	if err != nil {
		return nil, fmt.Errorf("compile selector %q: %w", src, err)
	}
	if leading == nil {
		d := Descendant
		leading = &d
	}
	combinator := *leading

	var states []state
	for {
		el, err := readElement(r)
		if err != nil {
			return nil, fmt.Errorf("compile selector %q: %w", src, err)
		}
		states = append(states, state{Transition: combinator, Element: el})

		if r.atEnd() {
			break
		}
		next, err := readCombinator(r)
		if err != nil {
			return nil, fmt.Errorf("compile selector %q: %w", src, err)
		}
		if next == nil {
			return nil, fmt.Errorf("compile selector %q: expected combinator: %w", src, ErrInvalidSelector)
		}
		combinator = *next
	}

	return states, nil
}

// readCombinator consumes a run of combinator bytes, collapsing repeated
// whitespace into a single Descendant and letting any non-Descendant
// combinator in the run dominate an adjacent Descendant. It returns nil if
// no combinator byte is present at the cursor.
func readCombinator(r *selectorReader) (*Combinator, error) {
	var result *Combinator
	for {
		c, ok := r.peek()
		if !ok || !isCombinatorByte(c) {
			break
		}
		r.next()

		var cur Combinator
		switch c {
		case '>':
			cur = Child
		case ' ':
			cur = Descendant
		case '+':
			cur = NextSibling
		case '~':
			cur = SubsequentSibling
		case '|':
			return nil, fmt.Errorf("namespace combinator is unsupported: %w", ErrInvalidSelector)
		}

		if result == nil {
			v := cur
			result = &v
		} else if *result == Descendant && cur != Descendant {
			v := cur
			result = &v
		}
	}
	return result, nil
}

func readElement(r *selectorReader) (queryElement, error) {
	var el queryElement

	name := r.readToken(isAtomBoundary)
	if len(name) != 0 && !(len(name) == 1 && name[0] == '*') {
		el.Name = name
	}

	for {
		c, ok := r.peek()
		if !ok {
			break
		}
		switch c {
		case '#':
			r.next()
			el.ID = r.readToken(isAtomBoundary)
		case '.':
			r.next()
			el.Class = r.readToken(isAtomBoundary)
		case '[':
			r.next()
			sel, err := readAttributeSelector(r)
			if err != nil {
				return queryElement{}, err
			}
			el.Attributes = append(el.Attributes, sel)
		default:
			return el, nil
		}
	}
	return el, nil
}

func isAttributeTokenBoundary(c byte) bool {
	switch c {
	case ' ', '"', '\'', '=', ']', '~', '|', '^', '$', '*':
		return true
	}
	return false
}

func readAttributeSelector(r *selectorReader) (AttributeSelector, error) {
	r.skipSpaces()
	name := r.readToken(isAttributeTokenBoundary)
	if len(name) == 0 {
		return AttributeSelector{}, fmt.Errorf("empty attribute name: %w", ErrInvalidSelector)
	}

	r.skipSpaces()
	kind := Presence
	var value []byte
	hasValue := false

	if c, ok := r.peek(); ok && c != ']' {
		switch c {
		case '=':
			r.next()
			kind = Exact
		case '~':
			r.next()
			if err := expectByte(r, '='); err != nil {
				return AttributeSelector{}, err
			}
			kind = WhitespaceSeparated
		case '|':
			r.next()
			if err := expectByte(r, '='); err != nil {
				return AttributeSelector{}, err
			}
			kind = HyphenSeparated
		case '^':
			r.next()
			if err := expectByte(r, '='); err != nil {
				return AttributeSelector{}, err
			}
			kind = Prefix
		case '$':
			r.next()
			if err := expectByte(r, '='); err != nil {
				return AttributeSelector{}, err
			}
			kind = Suffix
		case '*':
			r.next()
			if err := expectByte(r, '='); err != nil {
				return AttributeSelector{}, err
			}
			kind = Substring
		default:
			return AttributeSelector{}, fmt.Errorf("unexpected byte %q in attribute selector: %w", c, ErrInvalidSelector)
		}

		r.skipSpaces()
		var err error
		value, err = readAttributeValue(r)
		if err != nil {
			return AttributeSelector{}, err
		}
		hasValue = true
	}

	r.skipSpaces()
	if c, ok := r.next(); !ok || c != ']' {
		return AttributeSelector{}, fmt.Errorf("unterminated attribute selector: %w", ErrInvalidSelector)
	}

	return AttributeSelector{Name: name, Value: value, HasValue: hasValue, Kind: kind}, nil
}

func readAttributeValue(r *selectorReader) ([]byte, error) {
	if c, ok := r.peek(); ok && (c == '"' || c == '\'') {
		quote := c
		r.next()
		start := r.pos
		for {
			cc, ok := r.next()
			if !ok {
				return nil, fmt.Errorf("unterminated quoted attribute value: %w", ErrInvalidSelector)
			}
			if cc == quote {
				return r.src[start : r.pos-1], nil
			}
		}
	}
	return r.readToken(func(c byte) bool { return c == ' ' || c == ']' }), nil
}

func expectByte(r *selectorReader, want byte) error {
	c, ok := r.next()
	if !ok || c != want {
		return fmt.Errorf("expected %q in attribute operator: %w", want, ErrInvalidSelector)
	}
	return nil
}
