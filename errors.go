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

import "errors"

// Sentinel errors returned by the public API. Callers should use
// errors.Is to test for a particular condition, since the errors returned
// from exported functions are always wrapped with call-site context.
var (
	// ErrInvalidSelector is returned when a selector string fails to
	// compile: malformed grammar, an unsupported Namespace (`|`)
	// combinator, or a reserved selector source (`""`, `"*"`, `"root"`).
	ErrInvalidSelector = errors.New("invalid selector")

	// ErrEmptyQueryList is returned by Parse when called with no queries.
	ErrEmptyQueryList = errors.New("empty query list")

	// ErrKeyNotFound is returned by Element.Get when no child matches the
	// requested selector source.
	ErrKeyNotFound = errors.New("key not found")

	// ErrNotASingleElement is returned by ChildIndex.Value when the index
	// was recorded for a KindAll selection.
	ErrNotASingleElement = errors.New("child index does not hold a single element")

	// ErrNotAList is returned by ChildIndex.Iter when the index was
	// recorded for a KindFirst selection.
	ErrNotAList = errors.New("child index does not hold a list")

	// ErrIndexOutOfBounds is returned by Store.Element when the index is
	// outside the arena's bounds.
	ErrIndexOutOfBounds = errors.New("index out of bounds")
)

// internalContractViolation marks a programmer error: an invariant the
// engine itself is responsible for upholding has been broken. It is never
// wrapped in an error value and never returned; it is always raised with
// panic, matching the class of "this is not supposed to happen" failures
// a caller cannot meaningfully recover from.
type internalContractViolation struct {
	reason string
}

func (e internalContractViolation) Error() string {
	return "internal contract violation: " + e.reason
}

func panicContractViolation(reason string) {
	panic(internalContractViolation{reason: reason})
}
