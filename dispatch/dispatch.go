// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package dispatch implements the CallDispatcher: the component that
// resolves a CALL/CALLCODE/DELEGATECALL/CREATE into a concrete child frame
// (precompile, contract code, or a bare value transfer), enforces the call
// depth limit, and commits or rolls back the journal around it. The child
// frame receives exactly the gas in its CallParameters; the 63/64
// gas-forwarding cap is applied by the interpreter's CALL/CREATE handlers
// before they call in.
package dispatch

import (
	"github.com/evmcore/evmcore/evmcore"
	"github.com/evmcore/evmcore/crypto"
	"github.com/evmcore/evmcore/precompiles"
	"github.com/evmcore/evmcore/word"
)

const maxCallDepth = 1024

const (
	maxCodeSize           = 24576
	createGasCostPerByte  = evmcore.Gas(200)
)

// TransactionState is the journal surface a Dispatcher needs on top of
// evmcore.TransactionContext: it is satisfied by *state.AccountCache.
type TransactionState = evmcore.TransactionContext

// Dispatcher implements evmcore.RunContext's Call method against a given
// interpreter and transaction state, closing the loop between the two.
type Dispatcher struct {
	Interpreter evmcore.Interpreter
	State       TransactionState
	Block       evmcore.BlockContext
	Origin      word.Address
	GasPrice    word.Word
	Precompiles map[word.Address]precompiles.Precompile
	Tracer      evmcore.Tracer
}

// New wires a Dispatcher over the given interpreter and state, with the
// Homestead precompile set installed.
func New(interp evmcore.Interpreter, st TransactionState, block evmcore.BlockContext, origin word.Address, gasPrice word.Word) *Dispatcher {
	return &Dispatcher{
		Interpreter: interp,
		State:       st,
		Block:       block,
		Origin:      origin,
		GasPrice:    gasPrice,
		Precompiles: precompiles.Registry(),
	}
}

// runContext adapts one in-flight frame's view of the Dispatcher into the
// evmcore.RunContext the interpreter sees: the transaction's journal
// surface plus a Call method bound to this frame's depth.
type runContext struct {
	TransactionState
	dispatcher *Dispatcher
	depth      int
}

var _ evmcore.RunContext = (*runContext)(nil)

func (rc *runContext) Call(kind evmcore.CallKind, params evmcore.CallParameters) (evmcore.CallResult, error) {
	return rc.dispatcher.Call(kind, rc.depth, params)
}

// Call dispatches a top-level or recursive message call. depth is the
// depth of the frame issuing this call; the child frame runs at depth+1.
func (d *Dispatcher) Call(kind evmcore.CallKind, depth int, params evmcore.CallParameters) (evmcore.CallResult, error) {
	if kind == evmcore.Create {
		return d.create(depth, params)
	}
	return d.call(kind, depth, params)
}

func (d *Dispatcher) call(kind evmcore.CallKind, depth int, params evmcore.CallParameters) (evmcore.CallResult, error) {
	if depth >= maxCallDepth {
		return evmcore.CallResult{GasLeft: params.Gas}, evmcore.ErrDepthLimit
	}

	if !params.Value.IsZero() && kind != evmcore.DelegateCall {
		if d.State.GetBalance(params.Caller).Cmp(params.Value) < 0 {
			return evmcore.CallResult{GasLeft: params.Gas}, nil
		}
	}

	snapshot := d.State.CreateSnapshot()

	if !params.Value.IsZero() && kind == evmcore.Call {
		transfer(d.State, params.Caller, params.Recipient, params.Value)
	}

	codeAddr := params.CodeAddress
	if pre, ok := d.Precompiles[codeAddr]; ok {
		return d.runPrecompile(pre, params, snapshot)
	}

	code := d.State.GetCode(codeAddr)
	codeHash := d.State.GetCodeHash(codeAddr)

	childDepth := depth + 1
	result, err := d.Interpreter.Run(evmcore.Parameters{
		Block:     d.Block,
		Revision:  evmcore.R00_Homestead,
		Origin:    d.Origin,
		GasPrice:  d.GasPrice,
		Kind:      kind,
		Depth:     childDepth,
		Gas:       params.Gas,
		Recipient: params.Recipient,
		Caller:    params.Caller,
		Input:     params.Input,
		Value:     params.Value,
		CodeHash:  codeHash,
		Code:      code,
		Context:   &runContext{TransactionState: d.State, dispatcher: d, depth: childDepth},
		Tracer:    d.Tracer,
	})
	if err != nil {
		return evmcore.CallResult{}, err
	}
	if !result.Success {
		d.State.RevertToSnapshot(snapshot)
		if isRevertWithOutput(result) {
			return evmcore.CallResult{Output: result.Output, GasLeft: result.GasLeft}, nil
		}
		return evmcore.CallResult{GasLeft: 0}, nil
	}
	return evmcore.CallResult{Output: result.Output, GasLeft: result.GasLeft, GasRefund: result.GasRefund, Success: true}, nil
}

func (d *Dispatcher) runPrecompile(pre precompiles.Precompile, params evmcore.CallParameters, snapshot evmcore.Snapshot) (evmcore.CallResult, error) {
	cost := pre.RequiredGas(params.Input)
	if cost > params.Gas {
		d.State.RevertToSnapshot(snapshot)
		return evmcore.CallResult{GasLeft: 0}, nil
	}
	out, err := pre.Run(params.Input)
	if err != nil {
		d.State.RevertToSnapshot(snapshot)
		return evmcore.CallResult{GasLeft: 0}, nil
	}
	return evmcore.CallResult{Output: out, GasLeft: params.Gas - cost, Success: true}, nil
}

// isRevertWithOutput distinguishes an explicit REVERT (which carries
// returned output and refunds unused gas) from other frame failures
// (out of gas, invalid opcode, ...), which the Homestead convention zeroes
// out entirely. This repo's interpreter never produces the former (no
// REVERT opcode pre-Byzantium) but the seam is kept for a future extender.
func isRevertWithOutput(result evmcore.Result) bool {
	return false
}

// create implements CREATE's full lifecycle: depth check, nonce-based
// address derivation (read before increment), collision check, value
// transfer, init-code execution, and code installation gated on the
// returned code's size.
func (d *Dispatcher) create(depth int, params evmcore.CallParameters) (evmcore.CallResult, error) {
	if depth >= maxCallDepth {
		return evmcore.CallResult{GasLeft: params.Gas}, evmcore.ErrDepthLimit
	}
	if d.State.GetBalance(params.Caller).Cmp(params.Value) < 0 {
		return evmcore.CallResult{GasLeft: params.Gas}, nil
	}

	nonce := d.State.GetNonce(params.Caller)
	d.State.SetNonce(params.Caller, nonce+1)
	addr := crypto.CreateAddress(params.Caller, nonce)

	if contractCollision(d.State, addr) {
		return evmcore.CallResult{GasLeft: 0}, evmcore.ErrContractCollision
	}

	snapshot := d.State.CreateSnapshot()
	d.State.SetNonce(addr, 1)
	transfer(d.State, params.Caller, addr, params.Value)

	childDepth := depth + 1
	result, err := d.Interpreter.Run(evmcore.Parameters{
		Block:     d.Block,
		Revision:  evmcore.R00_Homestead,
		Origin:    d.Origin,
		GasPrice:  d.GasPrice,
		Kind:      evmcore.Create,
		Depth:     childDepth,
		Gas:       params.Gas,
		Recipient: addr,
		Caller:    params.Caller,
		Input:     nil,
		Value:     params.Value,
		Code:      params.Input,
		Context:   &runContext{TransactionState: d.State, dispatcher: d, depth: childDepth},
		Tracer:    d.Tracer,
	})
	if err != nil {
		return evmcore.CallResult{}, err
	}
	if !result.Success {
		d.State.RevertToSnapshot(snapshot)
		return evmcore.CallResult{GasLeft: 0}, nil
	}

	if len(result.Output) > maxCodeSize {
		d.State.RevertToSnapshot(snapshot)
		return evmcore.CallResult{GasLeft: 0}, nil
	}

	codeCost := evmcore.Gas(len(result.Output)) * createGasCostPerByte
	if result.GasLeft < codeCost {
		d.State.RevertToSnapshot(snapshot)
		return evmcore.CallResult{GasLeft: 0}, nil
	}

	d.State.SetCode(addr, result.Output)
	return evmcore.CallResult{
		CreatedAddress: addr,
		GasLeft:        result.GasLeft - codeCost,
		GasRefund:      result.GasRefund,
		Success:        true,
	}, nil
}

func contractCollision(s TransactionState, addr word.Address) bool {
	return s.GetNonce(addr) != 0 || s.GetCodeHash(addr) != crypto.EmptyCodeHash
}

// transfer debits amount from sender and credits recipient, in that order,
// so that a self-call's intermediate balance is always consistent with a
// caller re-reading its own balance mid-transfer.
func transfer(s TransactionState, sender, recipient word.Address, amount word.Word) {
	s.SetBalance(sender, word.Sub(s.GetBalance(sender), amount))
	s.SetBalance(recipient, word.Add(s.GetBalance(recipient), amount))
}
