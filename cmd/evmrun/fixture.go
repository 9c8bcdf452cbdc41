// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/evmcore/evmcore/evmcore"
	"github.com/evmcore/evmcore/chain"
	"github.com/evmcore/evmcore/crypto"
	"github.com/evmcore/evmcore/state"
	"github.com/evmcore/evmcore/trie"
	"github.com/evmcore/evmcore/word"
)

// emptyStorageRoot is the root hash of an empty Merkle-Patricia trie, the
// storage root every account without any storage slots carries.
var emptyStorageRoot = crypto.Keccak256([]byte{0x80})

// hexBytes decodes a variable-length 0x-prefixed hex string, used for code
// and call input fields whose length isn't fixed like an address or word.
type hexBytes []byte

func (h *hexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*h = nil
		return nil
	}
	s = strings.TrimPrefix(s, "0x")
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid hex: %w", err)
	}
	*h = decoded
	return nil
}

type accountFixture struct {
	Balance word.Word              `json:"balance"`
	Nonce   uint64                 `json:"nonce"`
	Code    hexBytes               `json:"code"`
	Storage map[word.Key]word.Word `json:"storage"`
}

type blockFixture struct {
	Coinbase   word.Address `json:"coinbase"`
	Number     int64        `json:"number"`
	Timestamp  int64        `json:"timestamp"`
	Difficulty word.Word    `json:"difficulty"`
	GasLimit   evmcore.Gas  `json:"gasLimit"`
}

type txFixture struct {
	Sender    word.Address  `json:"sender"`
	Recipient *word.Address `json:"recipient"`
	Nonce     uint64        `json:"nonce"`
	Input     hexBytes      `json:"input"`
	Value     word.Word     `json:"value"`
	GasLimit  evmcore.Gas   `json:"gasLimit"`
	GasPrice  word.Word     `json:"gasPrice"`
}

func (f txFixture) toTransaction() chain.Transaction {
	return chain.Transaction{
		Sender:    f.Sender,
		Recipient: f.Recipient,
		Nonce:     f.Nonce,
		Input:     evmcore.Data(f.Input),
		Value:     f.Value,
		GasLimit:  f.GasLimit,
		GasPrice:  f.GasPrice,
	}
}

type fixture struct {
	Genesis      map[word.Address]accountFixture `json:"genesis"`
	Block        blockFixture                    `json:"block"`
	Transactions []txFixture                     `json:"transactions"`
}

// loadGenesis populates a fresh trie.Store from the fixture's genesis
// section, returning the store so the caller can wrap it in an
// AccountCache.
func (f fixture) loadGenesis() *trie.Store {
	store := trie.New()
	for addr, acc := range f.Genesis {
		codeHash := crypto.EmptyCodeHash
		if len(acc.Code) > 0 {
			codeHash = crypto.Keccak256(acc.Code)
			store.PutCode(codeHash, acc.Code)
		}
		store.PutAccount(addr, trie.Account{
			Nonce:    acc.Nonce,
			Balance:  acc.Balance,
			Root:     emptyStorageRoot,
			CodeHash: codeHash,
		})
		for key, value := range acc.Storage {
			store.PutStorage(addr, key, value)
		}
	}
	return store
}

func (f fixture) blockContext() evmcore.BlockContext {
	return evmcore.BlockContext{
		Coinbase:   f.Block.Coinbase,
		Number:     f.Block.Number,
		Timestamp:  f.Block.Timestamp,
		Difficulty: f.Block.Difficulty,
		GasLimit:   f.Block.GasLimit,
		GetBlockHash: func(int64) word.Hash {
			return word.Hash{}
		},
	}
}

func (f fixture) newAccountCache() *state.AccountCache {
	store := f.loadGenesis()
	return state.New(store, func(int64) word.Hash {
		return word.Hash{}
	})
}
