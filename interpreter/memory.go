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
	"github.com/evmcore/evmcore/evmcore"
	"github.com/holiman/uint256"
)

// maxMemoryExpansionSize bounds the byte size memory can ever grow to; any
// requested size beyond it is treated as an unconditional out-of-gas, guarding
// against the quadratic expansion-cost formula overflowing.
const maxMemoryExpansionSize = 0x1FFFFFFFE0

const (
	memoryGasPerWord   = 3
	memoryQuadCoefDiv  = 512
)

// Memory is the linear, quadratically-priced byte array backing
// MLOAD/MSTORE/MSTORE8/CALLDATACOPY/CODECOPY/RETURN/CALL input and output.
type Memory struct {
	store             []byte
	currentMemoryCost evmcore.Gas
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Len() uint64 { return uint64(len(m.store)) }

// expansionCost computes the absolute memory cost for a memory of the
// given byte size, per the quadratic formula c(w) = 3w + w^2/512.
func expansionCost(size uint64) evmcore.Gas {
	words := (size + 31) / 32
	return evmcore.Gas(words*memoryGasPerWord + (words*words)/memoryQuadCoefDiv)
}

// ExpansionGasCost reports the incremental gas cost of growing memory to
// cover [0, size) without performing the growth. Returns
// evmcore.ErrGasUintOverflow if size exceeds what can ever be charged for.
func (m *Memory) ExpansionGasCost(size uint64) (evmcore.Gas, error) {
	if size == 0 {
		return 0, nil
	}
	if size > maxMemoryExpansionSize {
		return 0, evmcore.ErrGasUintOverflow
	}
	newSize := toValidMemorySize(size)
	if newSize <= uint64(len(m.store)) {
		return 0, nil
	}
	cost := expansionCost(newSize) - m.currentMemoryCost
	return cost, nil
}

// expand grows memory to cover [0, size) and records the new absolute
// expansion cost as the baseline for later ExpansionGasCost calls. It
// charges no gas itself.
func (m *Memory) expand(size uint64) {
	newSize := toValidMemorySize(size)
	if newSize <= uint64(len(m.store)) {
		return
	}
	grown := make([]byte, newSize)
	copy(grown, m.store)
	m.store = grown
	m.currentMemoryCost = expansionCost(newSize)
}

func toValidMemorySize(size uint64) uint64 {
	return ((size + 31) / 32) * 32
}

// Set writes data into memory at offset, growing memory first if needed.
func (m *Memory) Set(offset, size uint64, data []byte) {
	if size == 0 {
		return
	}
	m.expand(offset + size)
	copy(m.store[offset:offset+size], data)
}

// SetByte writes a single byte at offset.
func (m *Memory) SetByte(offset uint64, value byte) {
	m.expand(offset + 1)
	m.store[offset] = value
}

// SetWord writes a 256-bit value at offset, big-endian.
func (m *Memory) SetWord(offset uint64, value *uint256.Int) {
	m.expand(offset + 32)
	b := value.Bytes32()
	copy(m.store[offset:offset+32], b[:])
}

// GetSlice returns a view (not a copy) of [offset, offset+size) of memory.
// Memory must already be large enough; callers expand via ExpansionGasCost
// and Grow before reading.
func (m *Memory) GetSlice(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	return m.store[offset : offset+size]
}

// GetCopy returns an independent copy of [offset, offset+size) of memory.
func (m *Memory) GetCopy(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	out := make([]byte, size)
	copy(out, m.store[offset:offset+size])
	return out
}

// GetWord reads a 256-bit big-endian value at offset.
func (m *Memory) GetWord(offset uint64) uint256.Int {
	var result uint256.Int
	result.SetBytes(m.store[offset : offset+32])
	return result
}

// Grow expands memory to cover [0, size) without charging gas; callers must
// have already charged via ExpansionGasCost.
func (m *Memory) Grow(size uint64) {
	if size == 0 {
		return
	}
	m.expand(size)
}
