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

// Package renderdebug renders a scah.Store subtree back into a normalized,
// whitespace-collapsed HTML-ish string for golden-output test assertions.
// It is test-only support, not part of the public API.
package renderdebug

import (
	"bytes"
	"fmt"
	"regexp"

	"go4.org/bytereplacer"
	"golang.org/x/net/html/atom"

	"scah.dev/scah"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

var htmlEscaper = bytereplacer.New(
	"&", "&amp;",
	`'`, "&apos;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
)

var voidTags = map[atom.Atom]bool{
	atom.Area: true, atom.Base: true, atom.Br: true, atom.Col: true,
	atom.Embed: true, atom.Hr: true, atom.Img: true, atom.Input: true,
	atom.Link: true, atom.Meta: true, atom.Param: true, atom.Source: true,
	atom.Track: true, atom.Wbr: true,
}

// Render walks el's matched children (keyed by the selector source strings
// recorded in store) and renders el itself plus every descendant it can
// reach, collapsing whitespace in any captured text content the way
// normhtml collapses CommonMark's rendered HTML for comparison.
func Render(store *scah.Store, el *scah.Element) string {
	var buf bytes.Buffer
	renderElement(&buf, store, el)
	return buf.String()
}

func renderElement(buf *bytes.Buffer, store *scah.Store, el *scah.Element) {
	name := string(el.Name)
	if name == "" {
		name = "root"
	}

	buf.WriteByte('<')
	buf.WriteString(name)
	if el.ID != nil {
		fmt.Fprintf(buf, ` id="%s"`, htmlEscaper.Replace(bytes.Clone(el.ID)))
	}
	if el.Class != nil {
		fmt.Fprintf(buf, ` class="%s"`, htmlEscaper.Replace(bytes.Clone(el.Class)))
	}
	for _, attr := range store.Attributes(el) {
		buf.WriteByte(' ')
		buf.Write(attr.Key)
		if attr.HasValue {
			fmt.Fprintf(buf, `="%s"`, htmlEscaper.Replace(attr.Unescaped()))
		}
	}
	buf.WriteByte('>')

	if text, ok := store.TextContent(el); ok {
		buf.Write(whitespaceRE.ReplaceAll(bytes.Clone(text), []byte(" ")))
	}

	for _, source := range el.ChildSources() {
		idx, err := el.Get(source)
		if err != nil {
			continue
		}
		if one, err := idx.Value(); err == nil {
			renderChildElement(buf, store, one)
			continue
		}
		if many, err := idx.Iter(); err == nil {
			for _, i := range many {
				renderChildElement(buf, store, i)
			}
		}
	}

	if !voidTags[atom.Lookup(el.Name)] {
		buf.WriteString("</")
		buf.WriteString(name)
		buf.WriteByte('>')
	}
}

func renderChildElement(buf *bytes.Buffer, store *scah.Store, index int) {
	child, err := store.Element(index)
	if err != nil {
		return
	}
	renderElement(buf, store, child)
}
