// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package state

import (
	"github.com/evmcore/evmcore/trie"
	"github.com/evmcore/evmcore/word"
)

// Trie is the backing store AccountCache lazily loads uncommitted accounts,
// storage and code from, and flushes committed state into. Satisfied by
// *trie.Store.
type Trie interface {
	GetAccount(word.Address) (trie.Account, bool)
	PutAccount(word.Address, trie.Account)
	DeleteAccount(word.Address)

	GetStorage(word.Address, word.Key) (word.Word, bool)
	PutStorage(word.Address, word.Key, word.Word)

	GetCode(word.Hash) ([]byte, bool)
	PutCode(word.Hash, []byte)

	Root() word.Hash
}

func trieAccount(a account) trie.Account {
	return trie.Account{Nonce: a.Nonce, Balance: a.Balance, Root: a.Root, CodeHash: a.CodeHash}
}
