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
	"github.com/holiman/uint256"

	"github.com/evmcore/evmcore/bloom"
	"github.com/evmcore/evmcore/dispatch"
	"github.com/evmcore/evmcore/state"
	"github.com/evmcore/evmcore/word"
)

// blockReward is the Frontier/Homestead-era miner reward in wei, paid for
// sealing a block before any uncle share is added.
var blockReward = word.New(5_000_000_000_000_000_000)

// RunBlock applies every transaction in b in order against d's state, pays
// the block reward (with its per-uncle share) to the block's coinbase,
// aggregates a
// bloom filter over every log and every transaction sender, and commits
// the resulting state to its backing store. hooks, if non-nil, fire around
// the block and around each transaction.
func RunBlock(d *dispatch.Dispatcher, store *state.AccountCache, b Block, hooks Hooks) (BlockResult, error) {
	hooks.beforeBlock(&b)

	result := BlockResult{
		Receipts: make([]Receipt, 0, len(b.Transactions)),
	}
	runner := Runner{Dispatcher: d}
	var blockFilter bloom.Filter

	for i := range b.Transactions {
		tx := b.Transactions[i]
		hooks.beforeTx(&tx)

		receipt, err := runner.RunTx(tx, true)
		if err != nil {
			return BlockResult{}, err
		}
		receipt.CumulativeGas = result.GasUsed + receipt.GasUsed
		result.GasUsed = receipt.CumulativeGas

		blockFilter.Add(tx.Sender[:])
		for _, log := range receipt.Logs {
			blockFilter.Add(log.Address[:])
			for _, topic := range log.Topics {
				blockFilter.Add(topic[:])
			}
		}

		result.Receipts = append(result.Receipts, receipt)
		hooks.afterTx(&tx, &receipt)
	}
	result.Bloom = blockFilter

	payBlockReward(store, b)

	store.Commit()
	result.StateRoot = store.Root()

	hooks.afterBlock(&b, &result)
	return result, nil
}

// payBlockReward credits the block's coinbase with the base miner reward
// plus one thirty-second of that reward for every included uncle. The
// uncles' own miners are not credited: OmmerHeights carries only the block
// numbers of the included uncles, not their coinbases, and the heights do
// not enter the computation.
func payBlockReward(store *state.AccountCache, b Block) {
	coinbase := b.Context.Coinbase
	reward := new(uint256.Int).Set(blockReward.ToUint256())

	if n := len(b.OmmerHeights); n > 0 {
		share := new(uint256.Int).Div(reward, uint256.NewInt(32))
		total := new(uint256.Int).Mul(share, uint256.NewInt(uint64(n)))
		reward.Add(reward, total)
	}

	credit(store, coinbase, word.FromUint256(reward))
}

func credit(store *state.AccountCache, addr word.Address, amount word.Word) {
	store.SetBalance(addr, word.Add(store.GetBalance(addr), amount))
}
