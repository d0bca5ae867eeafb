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

import "sync"

var (
	dispatchOnce sync.Once
	useWide      bool
)

func dispatch() bool {
	dispatchOnce.Do(func() {
		useWide = hasWideKernel()
	})
	return useWide
}

// Scan appends the sorted byte offsets of every structural byte in buf
// (one of `< > SPACE " ' = / !`) that is not part of a backslash escape
// run to dst, and returns the resulting slice. Scan is total: it never
// fails, including on the empty buffer.
func Scan(dst []uint32, buf []byte) []uint32 {
	padded := make([]byte, len(buf)+wordBytes)
	copy(padded, buf)

	if dispatch() {
		dst, _ = scanWide(dst, padded, 0, len(buf), 0)
		return dst
	}
	dst, _ = scanSWAR(dst, padded, 0, len(buf), 0)
	return dst
}
