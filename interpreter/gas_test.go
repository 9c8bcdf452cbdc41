// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package interpreter

import (
	"testing"

	"github.com/evmcore/evmcore/evmcore"
)

func TestGasForCallCapsAt63of64ths(t *testing.T) {
	available := evmcore.Gas(6400)
	cap := available - available/64
	if got := gasForCall(available, available); got != cap {
		t.Errorf("gasForCall requesting everything = %d, want %d", got, cap)
	}
}

func TestGasForCallHonorsSmallerRequest(t *testing.T) {
	available := evmcore.Gas(6400)
	if got := gasForCall(available, 100); got != 100 {
		t.Errorf("gasForCall(6400, 100) = %d, want 100", got)
	}
}

func TestGasForCallTreatsNegativeRequestAsUnbounded(t *testing.T) {
	available := evmcore.Gas(6400)
	cap := available - available/64
	if got := gasForCall(available, -1); got != cap {
		t.Errorf("gasForCall with negative request = %d, want %d", got, cap)
	}
}

func TestWordGasRoundsUpToWholeWords(t *testing.T) {
	tests := []struct {
		size uint64
		want evmcore.Gas
	}{
		{0, 0},
		{1, GasCopyWord},
		{32, GasCopyWord},
		{33, 2 * GasCopyWord},
	}
	for _, test := range tests {
		if got := wordGas(GasCopyWord, test.size); got != test.want {
			t.Errorf("wordGas(%d) = %d, want %d", test.size, got, test.want)
		}
	}
}

func TestExpGasScalesWithExponentByteLength(t *testing.T) {
	if got := expGas(0); got != GasSlowStep {
		t.Errorf("expGas(0) = %d, want %d", got, GasSlowStep)
	}
	if got := expGas(2); got != GasSlowStep+2*GasExpByte {
		t.Errorf("expGas(2) = %d, want %d", got, GasSlowStep+2*GasExpByte)
	}
}

func TestMemoryExpansionTooLarge(t *testing.T) {
	if memoryExpansionTooLarge(maxMemoryExpansionSize) {
		t.Errorf("exactly the cap should not be too large")
	}
	if !memoryExpansionTooLarge(maxMemoryExpansionSize + 1) {
		t.Errorf("one past the cap should be too large")
	}
}
