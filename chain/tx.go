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
	"fmt"

	"github.com/evmcore/evmcore/evmcore"
	"github.com/evmcore/evmcore/dispatch"
	"github.com/evmcore/evmcore/word"
)

// Runner applies transactions against a Dispatcher's state, owning the
// parts of transaction execution that sit outside any single call frame:
// buying gas, the intrinsic-gas floor, nonce bookkeeping and the
// post-execution refund/coinbase settlement.
type Runner struct {
	Dispatcher *dispatch.Dispatcher
}

// RunTx applies a signed transaction. checkNonce rejects the transaction
// (returning an error rather than a Receipt) when tx.Nonce does not match
// the sender's current on-chain nonce; callers replaying already-validated
// history may pass false.
func (r Runner) RunTx(tx Transaction, checkNonce bool) (Receipt, error) {
	d := r.Dispatcher
	state := d.State

	if checkNonce {
		if got, want := state.GetNonce(tx.Sender), tx.Nonce; got != want {
			return Receipt{}, fmt.Errorf("nonce mismatch: tx has %d, state has %d", want, got)
		}
	}

	cost := tx.GasPrice.Scale(uint64(tx.GasLimit))
	if state.GetBalance(tx.Sender).Cmp(cost) < 0 {
		return Receipt{}, fmt.Errorf("insufficient balance: have %s, want %s", state.GetBalance(tx.Sender), cost)
	}
	state.SetBalance(tx.Sender, word.Sub(state.GetBalance(tx.Sender), cost))

	intrinsic := IntrinsicGas(tx.Input)
	if tx.GasLimit < intrinsic {
		return Receipt{}, fmt.Errorf("intrinsic gas too low: have %d, want %d", tx.GasLimit, intrinsic)
	}

	isCreate := tx.Recipient == nil
	if !isCreate {
		// Contract creation bumps the sender's nonce itself, inside
		// Dispatcher.create, using the pre-increment value for address
		// derivation. A plain call has no such step, so the nonce is
		// bumped here instead.
		state.SetNonce(tx.Sender, tx.Nonce+1)
	}

	// ORIGIN and GASPRICE must read back this transaction's own sender and
	// price through every nested call, so the dispatcher's per-transaction
	// fields are set here rather than once when the Dispatcher was built;
	// the same Dispatcher is reused across every transaction in a block.
	d.Origin = tx.Sender
	d.GasPrice = tx.GasPrice

	logsBefore := len(state.GetLogs())
	gas := tx.GasLimit - intrinsic

	var (
		result evmcore.CallResult
		err    error
	)
	if isCreate {
		result, err = d.Call(evmcore.Create, 0, evmcore.CallParameters{
			Caller: tx.Sender,
			Value:  tx.Value,
			Input:  tx.Input,
			Gas:    gas,
		})
	} else {
		result, err = d.Call(evmcore.Call, 0, evmcore.CallParameters{
			Caller:      tx.Sender,
			Recipient:   *tx.Recipient,
			CodeAddress: *tx.Recipient,
			Value:       tx.Value,
			Input:       tx.Input,
			Gas:         gas,
		})
	}
	if err != nil {
		return Receipt{}, err
	}

	// gasUsed, before the refund is folded back in, across the whole
	// transaction including the intrinsic charge paid up front.
	gasUsedBeforeRefund := tx.GasLimit - result.GasLeft

	refund := result.GasRefund
	if capped := gasUsedBeforeRefund / 2; refund > capped {
		refund = capped
	}
	finalGasLeft := result.GasLeft + refund
	gasUsed := tx.GasLimit - finalGasLeft

	state.SetBalance(tx.Sender, word.Add(state.GetBalance(tx.Sender), tx.GasPrice.Scale(uint64(finalGasLeft))))
	coinbaseFee := tx.GasPrice.Scale(uint64(gasUsed))
	state.SetBalance(d.Block.Coinbase, word.Add(state.GetBalance(d.Block.Coinbase), coinbaseFee))

	receipt := Receipt{
		Success: result.Success,
		Output:  result.Output,
		GasUsed: gasUsed,
		Logs:    append([]evmcore.Log(nil), state.GetLogs()[logsBefore:]...),
	}
	if isCreate && result.Success {
		addr := result.CreatedAddress
		receipt.ContractAddress = &addr
	}
	return receipt, nil
}
