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

	"github.com/holiman/uint256"
)

func TestExpansionGasCostZeroForZeroSize(t *testing.T) {
	m := NewMemory()
	cost, err := m.ExpansionGasCost(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cost != 0 {
		t.Errorf("ExpansionGasCost(0) = %d, want 0", cost)
	}
}

func TestExpansionGasCostChargesOnlyTheDelta(t *testing.T) {
	m := NewMemory()
	first, err := m.ExpansionGasCost(32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != 3 {
		t.Errorf("ExpansionGasCost(32) on empty memory = %d, want 3", first)
	}
	m.Grow(32)

	second, err := m.ExpansionGasCost(32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second != 0 {
		t.Errorf("ExpansionGasCost(32) after already grown to 32 = %d, want 0", second)
	}

	third, err := m.ExpansionGasCost(64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if third != 3 {
		t.Errorf("ExpansionGasCost(64) after 32 already charged = %d, want 3", third)
	}
}

func TestExpansionGasCostRejectsOversize(t *testing.T) {
	m := NewMemory()
	if _, err := m.ExpansionGasCost(maxMemoryExpansionSize + 1); err == nil {
		t.Errorf("ExpansionGasCost beyond the cap should fail")
	}
}

func TestSetAndGetSlice(t *testing.T) {
	m := NewMemory()
	data := []byte{1, 2, 3, 4}
	m.Set(0, uint64(len(data)), data)
	got := m.GetSlice(0, uint64(len(data)))
	if string(got) != string(data) {
		t.Errorf("GetSlice = %x, want %x", got, data)
	}
}

func TestSetByte(t *testing.T) {
	m := NewMemory()
	m.SetByte(5, 0xff)
	got := m.GetSlice(0, 6)
	if got[5] != 0xff {
		t.Errorf("byte at offset 5 = %x, want ff", got[5])
	}
	for i := 0; i < 5; i++ {
		if got[i] != 0 {
			t.Errorf("byte at offset %d = %x, want 0 (zero-filled on growth)", i, got[i])
		}
	}
}

func TestSetWordAndGetWordRoundTrip(t *testing.T) {
	m := NewMemory()
	v := uint256.NewInt(0xdeadbeef)
	m.SetWord(0, v)
	got := m.GetWord(0)
	if got.Cmp(v) != 0 {
		t.Errorf("GetWord = %s, want %s", got.String(), v.String())
	}
}

func TestGetCopyIsIndependentOfMemory(t *testing.T) {
	m := NewMemory()
	m.Set(0, 4, []byte{1, 2, 3, 4})
	copied := m.GetCopy(0, 4)
	m.SetByte(0, 0xff)
	if copied[0] != 1 {
		t.Errorf("GetCopy should not alias the underlying store, got %x", copied[0])
	}
}

func TestLenRoundsUpToWholeWords(t *testing.T) {
	m := NewMemory()
	m.Grow(1)
	if m.Len() != 32 {
		t.Errorf("Len() after growing to cover 1 byte = %d, want 32", m.Len())
	}
}

func TestGrowIsIdempotentForSmallerSizes(t *testing.T) {
	m := NewMemory()
	m.Grow(64)
	m.Grow(32)
	if m.Len() != 64 {
		t.Errorf("Grow to a smaller size should not shrink memory, Len() = %d, want 64", m.Len())
	}
}
