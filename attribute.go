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

	"go4.org/bytereplacer"
)

// Attribute is a single key/value pair captured from a tag. Key and Value
// are borrowed slices of the buffer that was parsed; Value is nil and
// HasValue is false for a bare attribute such as `disabled`.
type Attribute struct {
	Key      []byte
	Value    []byte
	HasValue bool
}

var attributeUnescaper = bytereplacer.New(
	`\"`, `"`,
	`\'`, `'`,
)

// Unescaped returns the attribute's value with backslash-escaped quote
// characters collapsed to bare quotes. It allocates only when the value
// actually contains a backslash; callers who never need the collapsed form
// can read Value directly without paying for this.
func (a Attribute) Unescaped() []byte {
	if !a.HasValue || !bytes.ContainsRune(a.Value, '\\') {
		return a.Value
	}
	return attributeUnescaper.Replace(bytes.Clone(a.Value))
}

// attributeByKey looks up the last attribute with the given key, matching the
// element factory's "later attribute wins" assignment order.
func attributeByKey(attrs []Attribute, key []byte) (Attribute, bool) {
	for i := len(attrs) - 1; i >= 0; i-- {
		if bytes.Equal(attrs[i].Key, key) {
			return attrs[i], true
		}
	}
	return Attribute{}, false
}
