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
	"github.com/evmcore/evmcore/crypto"
)

func opSha3(f *frame, op OpCode) (status, bool, error) {
	if err := f.useGas(GasFastestStep); err != nil {
		return statusFailed, true, err
	}
	offV, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	sizeV, err := f.stack.peek()
	if err != nil {
		return statusFailed, true, err
	}
	size, overflow := sizeV.Uint64WithOverflow()
	offset, overflow2 := offV.Uint64WithOverflow()
	if overflow || overflow2 || memoryExpansionTooLarge(offset+size) {
		return statusFailed, true, evmcore.ErrGasUintOverflow
	}
	cost, err := f.memory.ExpansionGasCost(offset + size)
	if err != nil {
		return statusFailed, true, err
	}
	if err := f.useGas(cost); err != nil {
		return statusFailed, true, err
	}
	if err := f.useGas(wordGas(evmcore.Gas(6), size)); err != nil {
		return statusFailed, true, err
	}
	f.memory.Grow(offset + size)
	data := f.memory.GetSlice(offset, size)
	hash := crypto.Keccak256(data)
	sizeV.SetBytes32(hash[:])
	return advance(f, op)
}

func makeLog(topicCount int) opHandler {
	return func(f *frame, op OpCode) (status, bool, error) {
		offV, err := f.stack.pop()
		if err != nil {
			return statusFailed, true, err
		}
		sizeV, err := f.stack.pop()
		if err != nil {
			return statusFailed, true, err
		}
		topics := make([]word.Hash, topicCount)
		for i := 0; i < topicCount; i++ {
			t, err := f.stack.pop()
			if err != nil {
				return statusFailed, true, err
			}
			topics[i] = word.Hash(t.Bytes32())
		}

		size, overflow := sizeV.Uint64WithOverflow()
		offset, overflow2 := offV.Uint64WithOverflow()
		if overflow || overflow2 || memoryExpansionTooLarge(offset+size) {
			return statusFailed, true, evmcore.ErrGasUintOverflow
		}
		cost, err := f.memory.ExpansionGasCost(offset + size)
		if err != nil {
			return statusFailed, true, err
		}
		if err := f.useGas(cost); err != nil {
			return statusFailed, true, err
		}
		logCost := GasLogBase + evmcore.Gas(topicCount)*GasLogTopic + evmcore.Gas(size)*GasLogByte
		if err := f.useGas(logCost); err != nil {
			return statusFailed, true, err
		}
		f.memory.Grow(offset + size)
		data := f.memory.GetCopy(offset, size)
		f.params.Context.EmitLog(evmcore.Log{
			Address: f.params.Recipient,
			Topics:  topics,
			Data:    data,
		})
		return advance(f, op)
	}
}

func opReturn(f *frame, op OpCode) (status, bool, error) {
	offV, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	sizeV, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	size, overflow := sizeV.Uint64WithOverflow()
	offset, overflow2 := offV.Uint64WithOverflow()
	if overflow || overflow2 || memoryExpansionTooLarge(offset+size) {
		return statusFailed, true, evmcore.ErrGasUintOverflow
	}
	cost, err := f.memory.ExpansionGasCost(offset + size)
	if err != nil {
		return statusFailed, true, err
	}
	if err := f.useGas(cost); err != nil {
		return statusFailed, true, err
	}
	f.memory.Grow(offset + size)
	f.returnData = f.memory.GetCopy(offset, size)
	return statusReturned, true, nil
}

func opSelfdestruct(f *frame, op OpCode) (status, bool, error) {
	beneficiaryV, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	beneficiary := addressFromUint256(&beneficiaryV)
	if f.params.Context.SelfDestruct(f.params.Recipient, beneficiary) {
		f.refund += GasSelfdestructRefund
	}
	return statusSelfDestructed, true, nil
}

// opCreate implements CREATE by delegating to the enclosing RunContext,
// which owns nonce bookkeeping, address derivation, value transfer and
// code installation (see dispatch.Dispatcher.Call).
func opCreate(f *frame, op OpCode) (status, bool, error) {
	valueV, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	offV, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	sizeV, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	size, overflow := sizeV.Uint64WithOverflow()
	offset, overflow2 := offV.Uint64WithOverflow()
	if overflow || overflow2 || memoryExpansionTooLarge(offset+size) {
		return statusFailed, true, evmcore.ErrGasUintOverflow
	}
	cost, err := f.memory.ExpansionGasCost(offset + size)
	if err != nil {
		return statusFailed, true, err
	}
	if err := f.useGas(cost); err != nil {
		return statusFailed, true, err
	}
	if err := f.useGas(GasCreate); err != nil {
		return statusFailed, true, err
	}
	f.memory.Grow(offset + size)
	initCode := f.memory.GetCopy(offset, size)

	callGas := gasForCall(f.gas, evmcore.Gas(f.gas))
	if err := f.useGas(callGas); err != nil {
		return statusFailed, true, err
	}

	result, err := f.params.Context.Call(evmcore.Create, evmcore.CallParameters{
		Caller: f.params.Recipient,
		Value:  fromUint256(&valueV),
		Input:  initCode,
		Gas:    callGas,
	})
	f.gas += result.GasLeft
	f.refund += result.GasRefund

	if err != nil || !result.Success {
		if err := f.stack.push(new(uint256.Int)); err != nil {
			return statusFailed, true, err
		}
		return advance(f, op)
	}
	var padded word.Word
	copy(padded[12:], result.CreatedAddress[:])
	if err := f.stack.push(padded.ToUint256()); err != nil {
		return statusFailed, true, err
	}
	return advance(f, op)
}

// callLikeOp implements CALL/CALLCODE/DELEGATECALL: pop their (slightly
// different) argument shapes, charge fixed and dynamic gas, delegate the
// recursive execution to the RunContext, then splice the returned output
// into memory and push the boolean success flag.
func callLikeOp(f *frame, op OpCode, kind evmcore.CallKind, hasValue bool) (status, bool, error) {
	gasV, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	toV, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	var value uint256.Int
	if hasValue {
		v, err := f.stack.pop()
		if err != nil {
			return statusFailed, true, err
		}
		value = v
	}
	inOffV, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	inSizeV, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	outOffV, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}
	outSizeV, err := f.stack.pop()
	if err != nil {
		return statusFailed, true, err
	}

	if err := f.useGas(GasCall); err != nil {
		return statusFailed, true, err
	}

	to := addressFromUint256(&toV)
	if hasValue && !value.IsZero() {
		if err := f.useGas(GasCallValue); err != nil {
			return statusFailed, true, err
		}
	}
	if kind == evmcore.Call && !f.params.Context.AccountExists(to) {
		if err := f.useGas(GasCallNewAccount); err != nil {
			return statusFailed, true, err
		}
	}

	inSize, ov1 := inSizeV.Uint64WithOverflow()
	inOffset, ov2 := inOffV.Uint64WithOverflow()
	outSize, ov3 := outSizeV.Uint64WithOverflow()
	outOffset, ov4 := outOffV.Uint64WithOverflow()
	if ov1 || ov2 || ov3 || ov4 || memoryExpansionTooLarge(inOffset+inSize) || memoryExpansionTooLarge(outOffset+outSize) {
		return statusFailed, true, evmcore.ErrGasUintOverflow
	}
	inCost, err := f.memory.ExpansionGasCost(inOffset + inSize)
	if err != nil {
		return statusFailed, true, err
	}
	if err := f.useGas(inCost); err != nil {
		return statusFailed, true, err
	}
	f.memory.Grow(inOffset + inSize)
	outCost, err := f.memory.ExpansionGasCost(outOffset + outSize)
	if err != nil {
		return statusFailed, true, err
	}
	if err := f.useGas(outCost); err != nil {
		return statusFailed, true, err
	}
	f.memory.Grow(outOffset + outSize)

	input := f.memory.GetCopy(inOffset, inSize)

	requestedGas, overflow := gasV.Uint64WithOverflow()
	var requested evmcore.Gas
	if overflow {
		requested = -1
	} else {
		requested = evmcore.Gas(requestedGas)
	}
	callGas := gasForCall(f.gas, requested)
	if err := f.useGas(callGas); err != nil {
		return statusFailed, true, err
	}
	if hasValue && !value.IsZero() {
		callGas += GasCallStipend
	}

	codeAddress := to
	recipient := to
	if kind == evmcore.CallCode || kind == evmcore.DelegateCall {
		recipient = f.params.Recipient
	}
	caller := f.params.Recipient
	if kind == evmcore.DelegateCall {
		caller = f.params.Caller
		value = *f.params.Value.ToUint256()
	}

	result, callErr := f.params.Context.Call(kind, evmcore.CallParameters{
		Caller:      caller,
		Recipient:   recipient,
		CodeAddress: codeAddress,
		Value:       fromUint256(&value),
		Input:       input,
		Gas:         callGas,
	})
	f.gas += result.GasLeft
	f.refund += result.GasRefund

	if len(result.Output) > 0 {
		n := outSize
		if uint64(len(result.Output)) < n {
			n = uint64(len(result.Output))
		}
		f.memory.Set(outOffset, n, result.Output[:n])
	}

	success := callErr == nil && result.Success
	if success {
		if err := f.stack.push(new(uint256.Int).SetOne()); err != nil {
			return statusFailed, true, err
		}
	} else {
		if err := f.stack.push(new(uint256.Int)); err != nil {
			return statusFailed, true, err
		}
	}
	return advance(f, op)
}

func opCall(f *frame, op OpCode) (status, bool, error) {
	return callLikeOp(f, op, evmcore.Call, true)
}

func opCallcode(f *frame, op OpCode) (status, bool, error) {
	return callLikeOp(f, op, evmcore.CallCode, true)
}

func opDelegatecall(f *frame, op OpCode) (status, bool, error) {
	return callLikeOp(f, op, evmcore.DelegateCall, false)
}
