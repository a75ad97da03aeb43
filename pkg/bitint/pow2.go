// SPDX-License-Identifier: MIT

// Package bitint provides power-of-two helpers used when sizing FFT
// windows and sample ring buffers. All functions are allocation-free
// and constant time.
package bitint

import "math/bits"

// IsPowerOfTwo reports whether n is a positive power of two.
// A power of two has exactly one bit set, so n&(n-1) clears it.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// NextPowerOfTwo returns the smallest power of two >= size.
// Powers of two map to themselves; non-positive input maps to 1.
// The size-1 adjustment keeps exact powers from doubling.
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len64(uint64(size-1))
}
