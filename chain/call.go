// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package chain

import (
	"github.com/evmcore/evmcore/evmcore"
	"github.com/evmcore/evmcore/dispatch"
	"github.com/evmcore/evmcore/interpreter"
)

// RunCode executes a bare piece of byte-code directly against the given
// call frame parameters, bypassing any recursive-call bookkeeping. It is
// the entry point for testing an opcode sequence or a standalone contract
// body without going through a dispatcher.
func RunCode(params evmcore.Parameters) (evmcore.Result, error) {
	return interpreter.New().Run(params)
}

// RunCall issues a single message call or contract creation through d,
// exactly as a CALL/CREATE opcode inside a running frame would, but as the
// outermost frame of a fresh interpreter invocation rather than a nested
// one.
func RunCall(d *dispatch.Dispatcher, kind evmcore.CallKind, params evmcore.CallParameters) (evmcore.CallResult, error) {
	return d.Call(kind, 0, params)
}
