// SPDX-License-Identifier: MIT
package bitint

import "testing"

func TestIsPowerOfTwo(t *testing.T) {
	tests := []struct {
		input int
		want  bool
	}{
		{1, true},
		{2, true},
		{1024, true},
		{2048, true},
		{4096, true},
		{3, false},
		{2047, false},
		{0, false},
		{-2048, false},
	}

	for _, tt := range tests {
		if got := IsPowerOfTwo(tt.input); got != tt.want {
			t.Errorf("IsPowerOfTwo(%d) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct {
		input int
		want  int
	}{
		{0, 1},
		{-5, 1},
		{1, 1},
		{2, 2},
		{3, 4},
		{2048, 2048},
		{2049, 4096},
	}

	for _, tt := range tests {
		if got := NextPowerOfTwo(tt.input); got != tt.want {
			t.Errorf("NextPowerOfTwo(%d) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestHelpersZeroAlloc(t *testing.T) {
	allocs := testing.AllocsPerRun(100, func() {
		_ = IsPowerOfTwo(2048)
		_ = NextPowerOfTwo(2049)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations, got %.1f", allocs)
	}
}
