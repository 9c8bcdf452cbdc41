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
	"testing"

	"github.com/evmcore/evmcore/evmcore"
	"github.com/evmcore/evmcore/bloom"
	"github.com/evmcore/evmcore/dispatch"
	"github.com/evmcore/evmcore/interpreter"
	"github.com/evmcore/evmcore/state"
	"github.com/evmcore/evmcore/word"
)

func TestRunBlockPaysMinerRewardAndRunsTransactions(t *testing.T) {
	coinbase := addrN(99)
	st := state.New(nil, nil)
	d := dispatch.New(interpreter.New(), st, evmcore.BlockContext{Coinbase: coinbase}, word.Address{}, word.Word{})

	sender := addrN(1)
	recipient := addrN(0x10)
	st.SetBalance(sender, word.New(1_000_000))

	b := Block{
		Context: evmcore.BlockContext{Coinbase: coinbase},
		Transactions: []Transaction{
			{Sender: sender, Recipient: &recipient, Nonce: 0, Value: word.New(100), GasLimit: TxGas, GasPrice: word.New(1)},
		},
	}

	result, err := RunBlock(d, st, b, Hooks{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Receipts) != 1 || !result.Receipts[0].Success {
		t.Fatalf("expected one successful receipt, got %+v", result.Receipts)
	}
	if got := st.GetBalance(coinbase); got.Cmp(blockReward) < 0 {
		t.Errorf("coinbase should receive at least the flat block reward, got %s", got)
	}
	if got := st.GetBalance(recipient); got.String() != "100" {
		t.Errorf("recipient balance = %s, want 100", got)
	}
}

func TestRunBlockAddsUncleShareToReward(t *testing.T) {
	coinbase := addrN(99)
	st := state.New(nil, nil)
	d := dispatch.New(interpreter.New(), st, evmcore.BlockContext{Coinbase: coinbase}, word.Address{}, word.Word{})

	withoutUncles := Block{Context: evmcore.BlockContext{Coinbase: coinbase}}
	if _, err := RunBlock(d, st, withoutUncles, Hooks{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	baseReward := st.GetBalance(coinbase)

	st2 := state.New(nil, nil)
	d2 := dispatch.New(interpreter.New(), st2, evmcore.BlockContext{Coinbase: coinbase}, word.Address{}, word.Word{})
	withUncles := Block{Context: evmcore.BlockContext{Coinbase: coinbase}, OmmerHeights: []int64{10, 11}}
	if _, err := RunBlock(d2, st2, withUncles, Hooks{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rewardWithUncles := st2.GetBalance(coinbase)

	if rewardWithUncles.Cmp(baseReward) <= 0 {
		t.Errorf("reward with 2 uncles (%s) should exceed the flat reward (%s)", rewardWithUncles, baseReward)
	}
}

func TestRunBlockFiresHooks(t *testing.T) {
	coinbase := addrN(99)
	st := state.New(nil, nil)
	d := dispatch.New(interpreter.New(), st, evmcore.BlockContext{Coinbase: coinbase}, word.Address{}, word.Word{})

	sender := addrN(1)
	recipient := addrN(2)
	st.SetBalance(sender, word.New(1_000_000))

	var beforeBlockCalled, afterBlockCalled, beforeTxCalled, afterTxCalled bool
	hooks := Hooks{
		BeforeBlock: func(*Block) { beforeBlockCalled = true },
		AfterBlock:  func(*Block, *BlockResult) { afterBlockCalled = true },
		BeforeTx:    func(*Transaction) { beforeTxCalled = true },
		AfterTx:     func(*Transaction, *Receipt) { afterTxCalled = true },
	}

	b := Block{
		Context: evmcore.BlockContext{Coinbase: coinbase},
		Transactions: []Transaction{
			{Sender: sender, Recipient: &recipient, Nonce: 0, GasLimit: TxGas, GasPrice: word.New(1)},
		},
	}
	if _, err := RunBlock(d, st, b, hooks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !beforeBlockCalled || !afterBlockCalled || !beforeTxCalled || !afterTxCalled {
		t.Errorf("expected all four hooks to fire, got before=%v/%v after=%v/%v",
			beforeBlockCalled, beforeTxCalled, afterBlockCalled, afterTxCalled)
	}
}

func TestRunBlockBloomContainsSenderAndLogAddress(t *testing.T) {
	coinbase := addrN(99)
	st := state.New(nil, nil)
	d := dispatch.New(interpreter.New(), st, evmcore.BlockContext{Coinbase: coinbase}, word.Address{}, word.Word{})

	sender := addrN(1)
	recipient := addrN(0x10)
	st.SetBalance(sender, word.New(1_000_000))
	st.SetCode(recipient, []byte{
		byte(interpreter.PUSH1), 0,
		byte(interpreter.PUSH1), 0,
		byte(interpreter.LOG0),
		byte(interpreter.STOP),
	})

	b := Block{
		Context: evmcore.BlockContext{Coinbase: coinbase},
		Transactions: []Transaction{
			{Sender: sender, Recipient: &recipient, Nonce: 0, GasLimit: 100000, GasPrice: word.New(1)},
		},
	}
	result, err := RunBlock(d, st, b, Hooks{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bf := bloom.Filter(result.Bloom)
	if !bf.Test(sender[:]) {
		t.Errorf("bloom filter should contain the transaction sender")
	}
	if !bf.Test(recipient[:]) {
		t.Errorf("bloom filter should contain the logging contract's address")
	}
}
