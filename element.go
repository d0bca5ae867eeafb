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

	"golang.org/x/net/html/atom"
)

// TagEvent is either an opening or closing tag, captured from the buffer
// that the engine is parsing. All slice fields borrow from that buffer.
type TagEvent struct {
	Closing    bool
	Name       []byte
	NameAtom   atom.Atom
	ID         []byte
	Class      []byte
	Attributes []Attribute

	// Span is [start, end) into the source buffer: start is the offset of
	// the tag's leading '<', end is one past its closing '>'.
	Span [2]int
}

// voidElementNames is the fixed set of HTML elements that never have a
// matching close tag.
var voidElementNames = map[atom.Atom]bool{
	atom.Area:   true,
	atom.Base:   true,
	atom.Br:     true,
	atom.Col:    true,
	atom.Embed:  true,
	atom.Hr:     true,
	atom.Img:    true,
	atom.Input:  true,
	atom.Link:   true,
	atom.Meta:   true,
	atom.Param:  true,
	atom.Source: true,
	atom.Track:  true,
	atom.Wbr:    true,
}

// selfClosing reports whether ev should be treated as an immediately-closed
// element: a void HTML element, or an XHTML-style tag whose last attribute
// key is a trailing backslash (`<foo bar \>`).
func (ev TagEvent) selfClosing() bool {
	if voidElementNames[ev.NameAtom] {
		return true
	}
	if n := len(ev.Attributes); n > 0 {
		last := ev.Attributes[n-1]
		if !last.HasValue && len(last.Key) == 1 && last.Key[0] == '\\' {
			return true
		}
	}
	return false
}

// tagFSMState is the per-tag parse state: None, Element, Closing (a
// transient flag state), Quote(Double|Single), and Assign.
type tagFSMState int

const (
	fsmNone tagFSMState = iota
	fsmElement
	fsmClosing
	fsmQuoteDouble
	fsmQuoteSingle
	fsmAssign
)

func (s tagFSMState) step(c byte) tagFSMState {
	switch s {
	case fsmNone:
		if c == '<' {
			return fsmElement
		}
		return fsmNone
	case fsmElement:
		switch c {
		case '>':
			return fsmNone
		case ' ':
			return fsmElement
		case '"':
			return fsmQuoteDouble
		case '\'':
			return fsmQuoteSingle
		case '=':
			return fsmAssign
		case '/':
			return fsmClosing
		}
		return fsmNone
	case fsmQuoteDouble:
		if c == '"' {
			return fsmElement
		}
		return fsmQuoteDouble
	case fsmQuoteSingle:
		if c == '\'' {
			return fsmElement
		}
		return fsmQuoteSingle
	case fsmAssign:
		switch c {
		case ' ':
			return fsmAssign
		case '"':
			return fsmQuoteDouble
		case '\'':
			return fsmQuoteSingle
		}
		return fsmNone
	default:
		return fsmNone
	}
}

func inQuote(s tagFSMState) bool {
	return s == fsmQuoteDouble || s == fsmQuoteSingle
}

// elementFactory walks a buffer alongside the scanner's structural position
// stream and yields one tag event per call to Next, in document order.
type elementFactory struct {
	data      []byte
	positions []uint32
	idx       int
}

func newElementFactory(data []byte, positions []uint32) *elementFactory {
	return &elementFactory{data: data, positions: positions}
}

// Next returns the next tag event and true, or a zero TagEvent and false
// once the position stream is exhausted. Comment and directive tags
// (`<!...>`) are consumed and skipped internally; Next never returns one.
func (f *elementFactory) Next() (TagEvent, bool) {
	for {
		ev, ok, isDirective := f.nextRaw()
		if !ok {
			return TagEvent{}, false
		}
		if isDirective {
			continue
		}
		ev.NameAtom = atom.Lookup(ev.Name)
		return ev, true
	}
}

func (f *elementFactory) nextRaw() (ev TagEvent, ok bool, isDirective bool) {
	if f.idx >= len(f.positions) {
		return TagEvent{}, false, false
	}

	var label []byte
	state := fsmNone
	startPos := 0
	if f.idx > 0 {
		startPos = int(f.positions[f.idx-1]) + 1
	}
	tagStart := int(f.positions[f.idx])

	addKeyNoValue := func(key []byte) {
		if len(ev.Name) == 0 {
			ev.Name = key
		} else {
			ev.Attributes = append(ev.Attributes, Attribute{Key: key})
		}
	}

	for ; f.idx < len(f.positions); f.idx++ {
		pos := int(f.positions[f.idx])
		c := f.data[pos]
		last := state
		state = last.step(c)
		if last == fsmNone && state == fsmElement {
			tagStart = pos
		}

		if last == fsmNone && state == fsmElement && pos+1 < len(f.data) && f.data[pos+1] == '!' {
			// Comment or directive: bypass the quote-sensitive FSM entirely
			// and scan forward for the closing angle bracket, since `--`
			// comments can contain stray quote characters that would
			// otherwise desynchronize the tag state machine.
			f.idx++
			f.skipToTagClose()
			return TagEvent{}, true, true
		}

		switch {
		case last == fsmElement && state == fsmNone:
			if len(label) != 0 {
				addKeyNoValue(label)
			} else if pos > startPos {
				label = f.data[startPos:pos]
				addKeyNoValue(label)
			}
			ev.Span = [2]int{tagStart, pos + 1}
			f.idx++
			return ev, true, false

		case last == fsmElement && (state == fsmElement || state == fsmAssign):
			if len(label) != 0 {
				addKeyNoValue(label)
			}
			label = f.data[startPos:pos]

		case state == fsmClosing:
			ev.Closing = true
			state = fsmElement

		case last == fsmElement && inQuote(state):
			if len(label) != 0 {
				addKeyNoValue(label)
				label = nil
			}

		case inQuote(last) && state == fsmAssign:
			label = f.data[startPos:pos]

		case inQuote(last) && state == fsmElement:
			word := f.data[startPos:pos]
			if len(label) == 0 {
				label = word
			} else {
				switch {
				case bytes.Equal(label, idKey):
					ev.ID = word
				case bytes.Equal(label, classKey):
					ev.Class = word
				default:
					ev.Attributes = append(ev.Attributes, Attribute{Key: label, Value: word, HasValue: true})
				}
				label = nil
			}
		}

		// Structural bytes inside a quoted value are literal: the value's
		// token keeps starting just after its opening quote.
		if !(inQuote(last) && inQuote(state)) {
			startPos = pos + 1
		}
	}

	// Ran out of structural positions mid-tag: malformed input recovers by
	// dropping the event in flight.
	return TagEvent{}, false, false
}

// skipToTagClose advances past the next structural `>`, discarding
// everything up to and including it. Used to drop comments and directives.
func (f *elementFactory) skipToTagClose() {
	for f.idx < len(f.positions) {
		pos := int(f.positions[f.idx])
		f.idx++
		if f.data[pos] == '>' {
			return
		}
	}
}

var (
	idKey    = []byte("id")
	classKey = []byte("class")
)
