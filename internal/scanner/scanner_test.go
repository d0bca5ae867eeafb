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

package scanner

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// htmlLikeFixture is ported verbatim (same bytes) from the upstream Rust
// scanner's test corpus, including the embedded escaped quotes and the
// backslash-escaped bytes near its end.
const htmlLikeFixture = `<    div   >HEllo World <a href="link" class="\"my class\""> HERe  \</ a href="Fake link<span> Hello </span>"\>\<\a\></a><   /  div >`

func TestScanStructuralPositions(t *testing.T) {
	want := []uint32{
		0, 1, 2, 3, 4, 8, 9, 10, 11, 17, 23, 24, 26, 31, 32, 37, 38, 44, 45, 50, 58, 59, 60,
		65, 66, 69, 70, 72, 77, 78, 83, 88, 93, 94, 100, 101, 102, 107, 108, 117, 118, 120,
		121, 122, 123, 124, 125, 126, 127, 131, 132,
	}

	got := Scan(nil, []byte(htmlLikeFixture))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Scan(htmlLikeFixture) mismatch (-want +got):\n%s", diff)
	}
}

func TestScanEmptyInput(t *testing.T) {
	got := Scan(nil, nil)
	if len(got) != 0 {
		t.Errorf("Scan(nil) = %v, want empty", got)
	}
}

func TestScanShortTail(t *testing.T) {
	// "ello </s" fills exactly one word, with its structural bytes in the
	// word's upper lanes; this matches the upstream SWAR short-tail
	// regression test.
	got := Scan(nil, []byte("ello </s"))
	want := []uint32{4, 5, 6}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Scan(short tail) mismatch (-want +got):\n%s", diff)
	}
}

func TestEscapedSingleBackslashRuns(t *testing.T) {
	word := loadWord([]byte(`\ \ \ \n`), 0)
	escaped, _ := escapedSWAR(word, 0)
	escaped &= highBitMask

	want := loadWord([]byte{0, 0x80, 0, 0x80, 0, 0x80, 0, 0x80}, 0)
	if escaped != want {
		t.Errorf("escapedSWAR(%08b, 0) = %064b, want %064b", word, escaped, want)
	}
}

func TestEscapedChainedBackslashRuns(t *testing.T) {
	word := loadWord([]byte("\\\\\\n  \\n"), 0)
	escaped, _ := escapedSWAR(word, 0)
	escaped &= highBitMask

	want := loadWord([]byte{0, 0x80, 0, 0x80, 0, 0, 0, 0x80}, 0)
	if escaped != want {
		t.Errorf("escapedSWAR(chained) = %064b, want %064b", escaped, want)
	}
}

func TestScanIgnoresEscapedAttributeQuote(t *testing.T) {
	// `<a href="a\"b">c</a>`: the escaped quote inside the attribute value
	// must not be reported as a structural byte, so the attribute's closing
	// quote is the one right before `>`.
	input := []byte(`<a href="a\"b">c</a>`)
	got := Scan(nil, input)
	for _, pos := range got {
		if input[pos] == '"' {
			// Only two real structural quotes: the opening quote of the
			// value and its closing quote. The escaped quote at index 11
			// must be absent.
			if pos == 11 {
				t.Errorf("escaped quote at position %d was reported as structural", pos)
			}
		}
	}
}

func TestWideKernelMatchesSWAR(t *testing.T) {
	padded := make([]byte, len(htmlLikeFixture)+wordBytes)
	copy(padded, htmlLikeFixture)

	swarOut, _ := scanSWAR(nil, padded, 0, len(htmlLikeFixture), 0)
	wideOut, _ := scanWide(nil, padded, 0, len(htmlLikeFixture), 0)

	if diff := cmp.Diff(swarOut, wideOut); diff != "" {
		t.Errorf("scanWide and scanSWAR disagree (-swar +wide):\n%s", diff)
	}
}
