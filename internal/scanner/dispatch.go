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

//go:build amd64

package scanner

import "golang.org/x/sys/cpu"

// wideWordBytes is the width, in bytes, of four 64-bit SWAR words. Go has
// no portable way to emit AVX-512 byte-compare intrinsics without
// per-revision assembly, so scanWide, the kernel hasWideKernel() dispatches
// to, uses no 512-bit vector instructions: it advances one 64-bit word per
// iteration with the same SWAR arithmetic as scanSWAR, and its loop does
// not use wideWordBytes. It produces the exact same position stream as the
// portable kernel (by construction, and checked by
// TestWideKernelMatchesSWAR).
const wideWordBytes = wordBytes * 4

func hasWideKernel() bool {
	return cpu.X86.HasAVX512BW
}

func scanWide(dst []uint32, buf []byte, base int, limit int, carryIn uint64) ([]uint32, uint64) {
	i := 0
	for i < limit {
		word := loadWord(buf, i)
		structural := structuralMaskSWAR(word)
		escaped, carryOut := escapedSWAR(word, carryIn)
		carryIn = carryOut

		matches := (structural &^ escaped) & highBitMask
		for matches != 0 {
			lane := laneOffset(matches)
			dst = append(dst, uint32(base+i+lane))
			matches &= matches - 1
		}
		i += wordBytes
	}
	return dst, carryIn
}
