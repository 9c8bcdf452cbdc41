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
)

// status classifies how a frame's run loop ended.
type status byte

const (
	statusRunning status = iota
	statusStopped
	statusReturned
	statusSelfDestructed
	statusFailed
)

// frame is the mutable execution state of one running call: its program
// counter, stack, memory and accumulated gas refund. A new frame is
// created for every Interpreter.Run invocation.
type frame struct {
	params evmcore.Parameters
	code   *Contract

	pc     uint64
	gas    evmcore.Gas
	refund evmcore.Gas

	stack  *Stack
	memory *Memory

	returnData []byte
	err        error
}

// Interpreter executes Homestead-revision EVM byte-code directly against a
// RunContext, without any JIT or bytecode transformation step.
type Interpreter struct{}

// New returns a ready-to-use Interpreter.
func New() *Interpreter { return &Interpreter{} }

// Run executes one call frame to completion: it either falls off the end
// of the code, hits STOP/RETURN/SELFDESTRUCT, or fails with a frame error
// (out of gas, invalid opcode, stack violation, invalid jump). A frame
// error is reported as a Result with Success false and a nil error; a
// non-nil error is returned only for an unsupported revision.
func (in *Interpreter) Run(params evmcore.Parameters) (evmcore.Result, error) {
	if params.Revision != evmcore.R00_Homestead {
		return evmcore.Result{}, &evmcore.ErrUnsupportedRevision{Revision: params.Revision}
	}

	if len(params.Code) == 0 {
		return evmcore.Result{Success: true, GasLeft: params.Gas}, nil
	}

	f := &frame{
		params: params,
		code:   NewContract(params.Recipient, params.CodeHash, params.Code),
		gas:    params.Gas,
		stack:  NewStack(),
		memory: NewMemory(),
	}
	defer ReturnStack(f.stack)

	st := f.run()
	return resultFromStatus(st, f)
}

func resultFromStatus(st status, f *frame) (evmcore.Result, error) {
	switch st {
	case statusStopped, statusSelfDestructed:
		return evmcore.Result{Success: true, GasLeft: f.gas, GasRefund: f.refund}, nil
	case statusReturned:
		return evmcore.Result{Success: true, Output: f.returnData, GasLeft: f.gas, GasRefund: f.refund}, nil
	case statusFailed:
		return evmcore.Result{Success: false}, nil
	default:
		return evmcore.Result{}, f.err
	}
}

func (f *frame) useGas(amount evmcore.Gas) error {
	if amount < 0 || f.gas < amount {
		return evmcore.ErrOutOfGas
	}
	f.gas -= amount
	return nil
}

// run steps through the frame's code until a terminal status is reached.
func (f *frame) run() status {
	code := f.code.Code
	for {
		if f.pc >= uint64(len(code)) {
			return statusStopped
		}
		op := OpCode(code[f.pc])
		pc := f.pc
		gasBefore := f.gas

		st, done, err := f.step(op)
		if tracer := f.params.Tracer; tracer != nil {
			tracer.OnStep(pc, byte(op), gasBefore, gasBefore-f.gas, f.params.Depth, err)
		}
		if err != nil {
			f.err = err
			return statusFailed
		}
		if done {
			return st
		}
	}
}

// step executes a single instruction, returning the terminal status if the
// instruction ends the frame (done == true), or advances pc and continues
// otherwise. A non-nil error always implies statusFailed.
func (f *frame) step(op OpCode) (status, bool, error) {
	handler, ok := dispatchTable[op]
	if !ok {
		return statusFailed, true, evmcore.ErrInvalidOpcode
	}
	return handler(f, op)
}
