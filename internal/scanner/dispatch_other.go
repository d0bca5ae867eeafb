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

//go:build !amd64

package scanner

// hasWideKernel always reports false on architectures without an AVX-512
// dispatch path; the portable SWAR kernel is used unconditionally.
func hasWideKernel() bool {
	return false
}

// scanWide is the portable SWAR kernel on these architectures.
func scanWide(dst []uint32, buf []byte, base int, limit int, carryIn uint64) ([]uint32, uint64) {
	return scanSWAR(dst, buf, base, limit, carryIn)
}
