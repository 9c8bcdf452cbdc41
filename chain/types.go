// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package chain implements the entry points that sit above a single call
// frame: applying a signed transaction against account state (RunTx) and
// applying a whole block's worth of transactions plus its miner reward
// (RunBlock), together with the before/after hooks a host can attach at
// the block and transaction boundaries.
package chain

import (
	"github.com/evmcore/evmcore/evmcore"
	"github.com/evmcore/evmcore/word"
)

// TxGas is the flat per-transaction charge levied before any code runs.
// TxDataZeroGas and TxDataNonZeroGas price each byte of a transaction's
// input data, at a lower rate for zero bytes than non-zero ones.
const (
	TxGas            = evmcore.Gas(21000)
	TxDataZeroGas    = evmcore.Gas(4)
	TxDataNonZeroGas = evmcore.Gas(68)
)

// Transaction summarizes a signed message ready for execution. Signature
// recovery is assumed done already; Sender carries the recovered address.
type Transaction struct {
	Sender    word.Address
	Recipient *word.Address // nil for contract creation
	Nonce     uint64
	Input     evmcore.Data
	Value     word.Word
	GasLimit  evmcore.Gas
	GasPrice  word.Word
}

// Receipt summarizes one transaction's execution outcome.
type Receipt struct {
	Success         bool
	Output          evmcore.Data
	ContractAddress *word.Address
	GasUsed         evmcore.Gas
	Logs            []evmcore.Log
	CumulativeGas   evmcore.Gas
}

// Block carries the header fields RunBlock needs beyond what any single
// transaction's BlockContext exposes: the miner/uncle reward inputs.
type Block struct {
	Context      evmcore.BlockContext
	Transactions []Transaction
	OmmerHeights []int64 // block numbers of included uncles, for the reward formula
}

// BlockResult summarizes RunBlock's output.
type BlockResult struct {
	Receipts  []Receipt
	GasUsed   evmcore.Gas
	Bloom     [256]byte
	StateRoot word.Hash
}

// Hooks are the optional event callbacks a host can attach around block and
// transaction execution. A step-level callback is wired separately through
// evmcore.Tracer, since it fires from inside the interpreter's instruction
// loop rather than around a transaction or block.
type Hooks struct {
	BeforeBlock func(*Block)
	AfterBlock  func(*Block, *BlockResult)
	BeforeTx    func(*Transaction)
	AfterTx     func(*Transaction, *Receipt)
}

func (h Hooks) beforeBlock(b *Block)               { call(h.BeforeBlock, b) }
func (h Hooks) afterBlock(b *Block, r *BlockResult) { call2(h.AfterBlock, b, r) }
func (h Hooks) beforeTx(t *Transaction)             { call(h.BeforeTx, t) }
func (h Hooks) afterTx(t *Transaction, r *Receipt)  { call2(h.AfterTx, t, r) }

func call[T any](f func(T), v T) {
	if f != nil {
		f(v)
	}
}

func call2[A, B any](f func(A, B), a A, b B) {
	if f != nil {
		f(a, b)
	}
}

// IntrinsicGas computes the up-front gas a transaction must pay before any
// code runs: the flat per-transaction cost plus a per-byte charge for its
// input data.
func IntrinsicGas(input []byte) evmcore.Gas {
	gas := TxGas
	for _, b := range input {
		if b == 0 {
			gas += TxDataZeroGas
		} else {
			gas += TxDataNonZeroGas
		}
	}
	return gas
}
