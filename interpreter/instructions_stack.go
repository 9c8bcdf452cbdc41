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
)

func opPop(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasQuickStep); err != nil {
		return statusFailed, true, err
	}
	if _, err := f.stack.pop(); err != nil {
		return statusFailed, true, err
	}
	return advance(f, op)
}

func makePush(width int) opHandler {
	return func(f *frame, op OpCode) (status, bool, error) {
		if err := f.useGas(GasFastestStep); err != nil {
			return statusFailed, true, err
		}
		code := f.code.Code
		var buf [32]byte
		start := f.pc + 1
		n := width
		end := start + uint64(n)
		if end > uint64(len(code)) {
			end = uint64(len(code))
		}
		if end > start {
			copy(buf[32-n:32-n+int(end-start)], code[start:end])
		}
		v := new(uint256.Int).SetBytes32(buf[:])
		if err := f.stack.push(v); err != nil {
			return statusFailed, true, err
		}
		return advance(f, op)
	}
}

func makeDup(n int) opHandler {
	return func(f *frame, op OpCode) (status, bool, error) {
		if err := f.useGas(GasFastestStep); err != nil {
			return statusFailed, true, err
		}
		if err := f.stack.dup(n); err != nil {
			return statusFailed, true, err
		}
		return advance(f, op)
	}
}

func makeSwap(n int) opHandler {
	return func(f *frame, op OpCode) (status, bool, error) {
		if err := f.useGas(GasFastestStep); err != nil {
			return statusFailed, true, err
		}
		if err := f.stack.swap(n); err != nil {
			return statusFailed, true, err
		}
		return advance(f, op)
	}
}

func opMload(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasFastestStep); err != nil {
		return statusFailed, true, err
	}
	offV, err := f.stack.peek()
	if err != nil {
		return statusFailed, true, err
	}
	offset, overflow := offV.Uint64WithOverflow()
	if overflow || memoryExpansionTooLarge(offset+32) {
		return statusFailed, true, evmcore.ErrGasUintOverflow
	}
	cost, err := f.memory.ExpansionGasCost(offset + 32)
	if err != nil {
		return statusFailed, true, err
	}
	if err := f.useGas(cost); err != nil {
		return statusFailed, true, err
	}
	f.memory.Grow(offset + 32)
	w := f.memory.GetWord(offset)
	offV.Set(&w)
	return advance(f, op)
}

func opMstore(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasFastestStep); err != nil {
		return statusFailed, true, err
	}
	offV, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	val, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	offset, overflow := offV.Uint64WithOverflow()
	if overflow || memoryExpansionTooLarge(offset+32) {
		return statusFailed, true, evmcore.ErrGasUintOverflow
	}
	cost, err := f.memory.ExpansionGasCost(offset + 32)
	if err != nil {
		return statusFailed, true, err
	}
	if err := f.useGas(cost); err != nil {
		return statusFailed, true, err
	}
	f.memory.SetWord(offset, &val)
	return advance(f, op)
}

func opMstore8(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasFastestStep); err != nil {
		return statusFailed, true, err
	}
	offV, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	val, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	offset, overflow := offV.Uint64WithOverflow()
	if overflow || memoryExpansionTooLarge(offset+1) {
		return statusFailed, true, evmcore.ErrGasUintOverflow
	}
	cost, err := f.memory.ExpansionGasCost(offset + 1)
	if err != nil {
		return statusFailed, true, err
	}
	if err := f.useGas(cost); err != nil {
		return statusFailed, true, err
	}
	f.memory.SetByte(offset, byte(val.Uint64()))
	return advance(f, op)
}

func opSload(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasSload); err != nil {
		return statusFailed, true, err
	}
	slot, err := f.stack.peek()
	if err != nil {
		return statusFailed, true, err
	}
	key := toKey(slot)
	value := f.params.Context.GetStorage(f.params.Recipient, key)
	slot.SetBytes32(value[:])
	return advance(f, op)
}

func opSstore(f *frame, op OpCode) (status, bool, error) {
	keyV, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	valV, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	key := toKey(&keyV)
	newValue := fromUint256(&valV)

	current := f.params.Context.GetStorage(f.params.Recipient, key)

	switch {
	case current.IsZero() && !newValue.IsZero():
		if err := f.useGas(GasSstoreSet); err != nil {
			return statusFailed, true, err
		}
	case !current.IsZero() && newValue.IsZero():
		if err := f.useGas(GasSstoreReset); err != nil {
			return statusFailed, true, err
		}
		f.refund += GasSstoreRefund
	default:
		if err := f.useGas(GasSstoreReset); err != nil {
			return statusFailed, true, err
		}
	}
	f.params.Context.SetStorage(f.params.Recipient, key, newValue)
	return advance(f, op)
}

func opJump(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasMidStep); err != nil {
		return statusFailed, true, err
	}
	dest, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	target, overflow := dest.Uint64WithOverflow()
	if overflow || !f.code.validJumpDest(target) {
		return statusFailed, true, evmcore.ErrInvalidJump
	}
	f.pc = target
	return statusRunning, false, nil
}

func opJumpi(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasSlowStep); err != nil {
		return statusFailed, true, err
	}
	dest, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	cond, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	if cond.IsZero() {
		return advance(f, op)
	}
	target, overflow := dest.Uint64WithOverflow()
	if overflow || !f.code.validJumpDest(target) {
		return statusFailed, true, evmcore.ErrInvalidJump
	}
	f.pc = target
	return statusRunning, false, nil
}

func opPc(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasQuickStep); err != nil {
		return statusFailed, true, err
	}
	if err := f.stack.push(new(uint256.Int).SetUint64(f.pc)); err != nil {
		return statusFailed, true, err
	}
	return advance(f, op)
}

func opMsize(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasQuickStep); err != nil {
		return statusFailed, true, err
	}
	if err := f.stack.push(new(uint256.Int).SetUint64(f.memory.Len())); err != nil {
		return statusFailed, true, err
	}
	return advance(f, op)
}

func opGas(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasQuickStep); err != nil {
		return statusFailed, true, err
	}
	if err := f.stack.push(new(uint256.Int).SetUint64(uint64(f.gas))); err != nil {
		return statusFailed, true, err
	}
	return advance(f, op)
}

func opJumpdest(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasJumpdest); err != nil {
		return statusFailed, true, err
	}
	return advance(f, op)
}
