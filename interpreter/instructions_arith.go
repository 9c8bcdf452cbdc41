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
)

// advance moves to the next instruction by op's width (1 for all ops here
// except PUSH1..PUSH32) and reports the running status.
func advance(f *frame, op OpCode) (status, bool, error) {
	f.pc += uint64(op.Width())
	return statusRunning, false, nil
}

func opAdd(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasFastestStep); err != nil {
		return statusFailed, true, err
	}
	a, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	b, err := f.stack.peek()
	if err != nil {
		return statusFailed, true, err
	}
	b.Add(&a, b)
	return advance(f, op)
}

func opMul(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasFastStep); err != nil {
		return statusFailed, true, err
	}
	a, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	b, err := f.stack.peek()
	if err != nil {
		return statusFailed, true, err
	}
	b.Mul(&a, b)
	return advance(f, op)
}

func opSub(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasFastestStep); err != nil {
		return statusFailed, true, err
	}
	a, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	b, err := f.stack.peek()
	if err != nil {
		return statusFailed, true, err
	}
	b.Sub(&a, b)
	return advance(f, op)
}

func opDiv(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasFastStep); err != nil {
		return statusFailed, true, err
	}
	a, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	b, err := f.stack.peek()
	if err != nil {
		return statusFailed, true, err
	}
	b.Div(&a, b)
	return advance(f, op)
}

func opSdiv(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasFastStep); err != nil {
		return statusFailed, true, err
	}
	a, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	b, err := f.stack.peek()
	if err != nil {
		return statusFailed, true, err
	}
	b.SDiv(&a, b)
	return advance(f, op)
}

func opMod(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasFastStep); err != nil {
		return statusFailed, true, err
	}
	a, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	b, err := f.stack.peek()
	if err != nil {
		return statusFailed, true, err
	}
	b.Mod(&a, b)
	return advance(f, op)
}

func opSmod(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasFastStep); err != nil {
		return statusFailed, true, err
	}
	a, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	b, err := f.stack.peek()
	if err != nil {
		return statusFailed, true, err
	}
	b.SMod(&a, b)
	return advance(f, op)
}

func opAddmod(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasMidStep); err != nil {
		return statusFailed, true, err
	}
	a, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	b, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	n, err := f.stack.peek()
	if err != nil {
		return statusFailed, true, err
	}
	n.AddMod(&a, &b, n)
	return advance(f, op)
}

func opMulmod(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasMidStep); err != nil {
		return statusFailed, true, err
	}
	a, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	b, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	n, err := f.stack.peek()
	if err != nil {
		return statusFailed, true, err
	}
	n.MulMod(&a, &b, n)
	return advance(f, op)
}

func opExp(f *frame, op OpCode) (status, bool, error) {
	base, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	exponent, err := f.stack.peek()
	if err != nil {
		return statusFailed, true, err
	}
	if err := f.useGas(expGas(exponent.ByteLen())); err != nil {
		return statusFailed, true, err
	}
	exponent.Exp(&base, exponent)
	return advance(f, op)
}

func opSignextend(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasFastStep); err != nil {
		return statusFailed, true, err
	}
	byteNum, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	v, err := f.stack.peek()
	if err != nil {
		return statusFailed, true, err
	}
	v.ExtendSign(v, &byteNum)
	return advance(f, op)
}

func opLt(f *frame, op OpCode) (status, bool, error) { return cmpOp(f, op, func(a, b *uint256.Int) bool { return a.Lt(b) }) }
func opGt(f *frame, op OpCode) (status, bool, error) { return cmpOp(f, op, func(a, b *uint256.Int) bool { return a.Gt(b) }) }
func opSlt(f *frame, op OpCode) (status, bool, error) {
	return cmpOp(f, op, func(a, b *uint256.Int) bool { return a.Slt(b) })
}
func opSgt(f *frame, op OpCode) (status, bool, error) {
	return cmpOp(f, op, func(a, b *uint256.Int) bool { return a.Sgt(b) })
}
func opEq(f *frame, op OpCode) (status, bool, error) {
	return cmpOp(f, op, func(a, b *uint256.Int) bool { return a.Eq(b) })
}

func cmpOp(f *frame, op OpCode, cmp func(a, b *uint256.Int) bool) (status, bool, error) {
	if err := f.useGas(GasFastestStep); err != nil {
		return statusFailed, true, err
	}
	a, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	b, err := f.stack.peek()
	if err != nil {
		return statusFailed, true, err
	}
	result := cmp(&a, b)
	if result {
		b.SetOne()
	} else {
		b.Clear()
	}
	return advance(f, op)
}

func opIszero(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasFastestStep); err != nil {
		return statusFailed, true, err
	}
	v, err := f.stack.peek()
	if err != nil {
		return statusFailed, true, err
	}
	isZero := v.IsZero()
	if isZero {
		v.SetOne()
	} else {
		v.Clear()
	}
	return advance(f, op)
}

func opAnd(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasFastestStep); err != nil {
		return statusFailed, true, err
	}
	a, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	b, err := f.stack.peek()
	if err != nil {
		return statusFailed, true, err
	}
	b.And(&a, b)
	return advance(f, op)
}

func opOr(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasFastestStep); err != nil {
		return statusFailed, true, err
	}
	a, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	b, err := f.stack.peek()
	if err != nil {
		return statusFailed, true, err
	}
	b.Or(&a, b)
	return advance(f, op)
}

func opXor(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasFastestStep); err != nil {
		return statusFailed, true, err
	}
	a, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	b, err := f.stack.peek()
	if err != nil {
		return statusFailed, true, err
	}
	b.Xor(&a, b)
	return advance(f, op)
}

func opNot(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasFastestStep); err != nil {
		return statusFailed, true, err
	}
	v, err := f.stack.peek()
	if err != nil {
		return statusFailed, true, err
	}
	v.Not(v)
	return advance(f, op)
}

func opByte(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasFastestStep); err != nil {
		return statusFailed, true, err
	}
	i, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	v, err := f.stack.peek()
	if err != nil {
		return statusFailed, true, err
	}
	v.Byte(&i)
	return advance(f, op)
}
