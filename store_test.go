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
	"errors"
	"testing"
)

func TestMatchTreePushFirstCreatesOneSlot(t *testing.T) {
	tree := newMatchTree()
	sel := selection{Source: "h1", Kind: KindFirst}
	idx := tree.push(sel, 0, TagEvent{Name: []byte("h1")}, -1, -1)

	slot := tree.nodes[0].children["h1"]
	if slot.kind != childIndexOne || slot.one != idx {
		t.Fatalf("child slot = %+v, want One(%d)", slot, idx)
	}
}

func TestMatchTreePushAllAppendsToManySlot(t *testing.T) {
	tree := newMatchTree()
	sel := selection{Source: "li", Kind: KindAll}
	first := tree.push(sel, 0, TagEvent{Name: []byte("li")}, -1, -1)
	second := tree.push(sel, 0, TagEvent{Name: []byte("li")}, -1, -1)

	slot := tree.nodes[0].children["li"]
	if slot.kind != childIndexMany {
		t.Fatalf("slot kind = %v, want childIndexMany", slot.kind)
	}
	want := []int{first, second}
	if len(slot.many) != 2 || slot.many[0] != want[0] || slot.many[1] != want[1] {
		t.Errorf("slot.many = %v, want %v", slot.many, want)
	}
}

func TestMatchTreePushSecondFirstPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on second push into a locked First slot")
		}
		if _, ok := r.(internalContractViolation); !ok {
			t.Errorf("recovered %#v, want internalContractViolation", r)
		}
	}()
	tree := newMatchTree()
	sel := selection{Source: "h1", Kind: KindFirst}
	tree.push(sel, 0, TagEvent{Name: []byte("h1")}, -1, -1)
	tree.push(sel, 0, TagEvent{Name: []byte("h1")}, -1, -1)
}

func TestMatchTreeSetContentOnlyAdvancesStartedSpans(t *testing.T) {
	tree := newMatchTree()
	sel := selection{Source: "p", Kind: KindFirst}
	idx := tree.push(sel, 0, TagEvent{Name: []byte("p")}, 10, -1)
	tree.setContent(idx, 20, 999)

	node := tree.nodes[idx]
	start, end, ok := node.InnerHTML.complete()
	if !ok || start != 10 || end != 20 {
		t.Errorf("InnerHTML = (%d,%d,%v), want (10,20,true)", start, end, ok)
	}
	if _, _, ok := node.TextContent.complete(); ok {
		t.Errorf("TextContent became Complete, want it to stay Empty since it was never started")
	}
}

func TestChildIndexValueAndIterKindMismatch(t *testing.T) {
	one := ChildIndex{kind: childIndexOne, one: 3}
	if _, err := one.Iter(); !errors.Is(err, ErrNotAList) {
		t.Errorf("one.Iter() error = %v, want ErrNotAList", err)
	}
	if v, err := one.Value(); err != nil || v != 3 {
		t.Errorf("one.Value() = (%d, %v), want (3, nil)", v, err)
	}

	many := ChildIndex{kind: childIndexMany, many: []int{1, 2}}
	if _, err := many.Value(); !errors.Is(err, ErrNotASingleElement) {
		t.Errorf("many.Value() error = %v, want ErrNotASingleElement", err)
	}
}

func TestStoreElementBoundsChecked(t *testing.T) {
	store := buildStore(newMatchTree(), nil, nil)
	if _, err := store.Element(-1); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("Element(-1) error = %v, want ErrIndexOutOfBounds", err)
	}
	if _, err := store.Element(len(store.Elements())); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("Element(len) error = %v, want ErrIndexOutOfBounds", err)
	}
	if _, err := store.Element(0); err != nil {
		t.Errorf("Element(0) (the synthetic root) error = %v, want nil", err)
	}
}

func TestElementGetUnknownSourceErrors(t *testing.T) {
	store := buildStore(newMatchTree(), nil, nil)
	root, _ := store.Element(0)
	if _, err := root.Get("nope"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get(%q) error = %v, want ErrKeyNotFound", "nope", err)
	}
}

func TestBuildStoreResolvesSpansAgainstBufAndTape(t *testing.T) {
	tree := newMatchTree()
	sel := selection{Source: "div", Kind: KindFirst}
	idx := tree.push(sel, 0, TagEvent{Name: []byte("div")}, 5, 2)
	tree.setContent(idx, 14, 9)

	buf := []byte("01234<div>5678</div>9")
	tape := []byte("hi there!")

	store := buildStore(tree, buf, tape)
	el, err := store.Element(idx)
	if err != nil {
		t.Fatalf("Element(%d): %v", idx, err)
	}
	if got, want := string(el.InnerHTML), string(buf[5:14]); got != want {
		t.Errorf("InnerHTML = %q, want %q", got, want)
	}
	text, ok := store.TextContent(el)
	if !ok || string(text) != string(tape[2:9]) {
		t.Errorf("TextContent = (%q, %v), want (%q, true)", text, ok, tape[2:9])
	}

	root, err := store.Root(0)
	if err != nil {
		t.Fatalf("Root(0): %v", err)
	}
	child, err := root.Get("div")
	if err != nil {
		t.Fatalf("root.Get(div): %v", err)
	}
	if v, err := child.Value(); err != nil || v != idx {
		t.Errorf("root.Get(div).Value() = (%d, %v), want (%d, nil)", v, err, idx)
	}
}
