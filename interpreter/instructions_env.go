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
	"github.com/holiman/uint256"

	"github.com/evmcore/evmcore/evmcore"
	"github.com/evmcore/evmcore/word"
)

func pushAddress(f *frame, addr word.Address) error {
	var padded word.Word
	copy(padded[12:], addr[:])
	return f.stack.push(padded.ToUint256())
}

func opAddress(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasQuickStep); err != nil {
		return statusFailed, true, err
	}
	if err := pushAddress(f, f.params.Recipient); err != nil {
		return statusFailed, true, err
	}
	return advance(f, op)
}

func opCaller(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasQuickStep); err != nil {
		return statusFailed, true, err
	}
	if err := pushAddress(f, f.params.Caller); err != nil {
		return statusFailed, true, err
	}
	return advance(f, op)
}

func opOrigin(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasQuickStep); err != nil {
		return statusFailed, true, err
	}
	if err := pushAddress(f, f.params.Origin); err != nil {
		return statusFailed, true, err
	}
	return advance(f, op)
}

func opCallvalue(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasQuickStep); err != nil {
		return statusFailed, true, err
	}
	if err := f.stack.push(f.params.Value.ToUint256()); err != nil {
		return statusFailed, true, err
	}
	return advance(f, op)
}

func opGasprice(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasQuickStep); err != nil {
		return statusFailed, true, err
	}
	if err := f.stack.push(f.params.GasPrice.ToUint256()); err != nil {
		return statusFailed, true, err
	}
	return advance(f, op)
}

func opBalance(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasBalance); err != nil {
		return statusFailed, true, err
	}
	addr, err := f.stack.peek()
	if err != nil {
		return statusFailed, true, err
	}
	a := addressFromUint256(addr)
	balance := f.params.Context.GetBalance(a)
	addr.SetBytes32(balance[:])
	return advance(f, op)
}

func addressFromUint256(v *uint256.Int) word.Address {
	b := v.Bytes20()
	return word.Address(b)
}

func opCalldataload(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasFastestStep); err != nil {
		return statusFailed, true, err
	}
	off, err := f.stack.peek()
	if err != nil {
		return statusFailed, true, err
	}
	offset, overflow := off.Uint64WithOverflow()
	input := []byte(f.params.Input)
	var buf [32]byte
	if !overflow && offset < uint64(len(input)) {
		end := offset + 32
		if end > uint64(len(input)) {
			end = uint64(len(input))
		}
		copy(buf[:end-offset], input[offset:end])
	}
	off.SetBytes32(buf[:])
	return advance(f, op)
}

func opCalldatasize(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasQuickStep); err != nil {
		return statusFailed, true, err
	}
	if err := f.stack.push(new(uint256.Int).SetUint64(uint64(len(f.params.Input)))); err != nil {
		return statusFailed, true, err
	}
	return advance(f, op)
}

func opCalldatacopy(f *frame, op OpCode) (status, bool, error) {
	return copyToMemory(f, op, []byte(f.params.Input))
}

func opCodesize(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasQuickStep); err != nil {
		return statusFailed, true, err
	}
	if err := f.stack.push(new(uint256.Int).SetUint64(uint64(len(f.code.Code)))); err != nil {
		return statusFailed, true, err
	}
	return advance(f, op)
}

func opCodecopy(f *frame, op OpCode) (status, bool, error) {
	return copyToMemory(f, op, f.code.Code)
}

func opExtcodesize(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasExtcodeSize); err != nil {
		return statusFailed, true, err
	}
	addr, err := f.stack.peek()
	if err != nil {
		return statusFailed, true, err
	}
	size := f.params.Context.GetCodeSize(addressFromUint256(addr))
	addr.SetUint64(uint64(size))
	return advance(f, op)
}

func opExtcodecopy(f *frame, op OpCode) (status, bool, error) {
	addrV, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	code := f.params.Context.GetCode(addressFromUint256(&addrV))
	return copyToMemory(f, op, code)
}

// copyToMemory implements the shared shape of CALLDATACOPY/CODECOPY/
// EXTCODECOPY: pop(destOffset, srcOffset, size), charge the base step cost
// plus 3 gas per word copied plus memory expansion, then copy src (padded
// with zero past its end) into memory.
func copyToMemory(f *frame, op OpCode, src []byte) (status, bool, error) {
	if err := f.useGas(GasFastestStep); err != nil {
		return statusFailed, true, err
	}
	destOffsetV, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	srcOffsetV, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	sizeV, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}

	size, overflow := sizeV.Uint64WithOverflow()
	if overflow || memoryExpansionTooLarge(size) {
		return statusFailed, true, evmcore.ErrGasUintOverflow
	}
	if err := f.useGas(wordGas(GasCopyWord, size)); err != nil {
		return statusFailed, true, err
	}

	destOffset, overflow := destOffsetV.Uint64WithOverflow()
	if overflow {
		return statusFailed, true, evmcore.ErrGasUintOverflow
	}
	cost, err := f.memory.ExpansionGasCost(destOffset + size)
	if err != nil {
		return statusFailed, true, err
	}
	if err := f.useGas(cost); err != nil {
		return statusFailed, true, err
	}
	f.memory.Grow(destOffset + size)

	if size == 0 {
		return advance(f, op)
	}
	srcOffset, overflow := srcOffsetV.Uint64WithOverflow()
	data := make([]byte, size)
	if !overflow && srcOffset < uint64(len(src)) {
		end := srcOffset + size
		if end > uint64(len(src)) {
			end = uint64(len(src))
		}
		copy(data, src[srcOffset:end])
	}
	f.memory.Set(destOffset, size, data)
	return advance(f, op)
}

func opBlockhash(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasExtStep); err != nil {
		return statusFailed, true, err
	}
	v, err := f.stack.peek()
	if err != nil {
		return statusFailed, true, err
	}
	number, overflow := v.Uint64WithOverflow()
	if overflow {
		v.Clear()
		return advance(f, op)
	}
	h := f.params.Context.GetBlockHash(int64(number))
	v.SetBytes32(h[:])
	return advance(f, op)
}

func opCoinbase(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasQuickStep); err != nil {
		return statusFailed, true, err
	}
	if err := pushAddress(f, f.params.Block.Coinbase); err != nil {
		return statusFailed, true, err
	}
	return advance(f, op)
}

func opTimestamp(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasQuickStep); err != nil {
		return statusFailed, true, err
	}
	if err := f.stack.push(new(uint256.Int).SetUint64(uint64(f.params.Block.Timestamp))); err != nil {
		return statusFailed, true, err
	}
	return advance(f, op)
}

func opNumber(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasQuickStep); err != nil {
		return statusFailed, true, err
	}
	if err := f.stack.push(new(uint256.Int).SetUint64(uint64(f.params.Block.Number))); err != nil {
		return statusFailed, true, err
	}
	return advance(f, op)
}

func opDifficulty(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasQuickStep); err != nil {
		return statusFailed, true, err
	}
	if err := f.stack.push(f.params.Block.Difficulty.ToUint256()); err != nil {
		return statusFailed, true, err
	}
	return advance(f, op)
}

func opGaslimit(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasQuickStep); err != nil {
		return statusFailed, true, err
	}
	if err := f.stack.push(new(uint256.Int).SetUint64(uint64(f.params.Block.GasLimit))); err != nil {
		return statusFailed, true, err
	}
	return advance(f, op)
}
