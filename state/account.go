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
	"github.com/evmcore/evmcore/crypto"
	"github.com/evmcore/evmcore/word"
)

// emptyRoot is the root hash of an empty Merkle-Patricia trie: the storage
// root every freshly created account starts with, per go-ethereum's
// state.newObject, rather than the zero hash.
var emptyRoot = crypto.Keccak256([]byte{0x80})

// account is the persisted representation of one address: its nonce,
// balance, code hash and storage root, mirroring the four-field account
// record of the account trie.
type account struct {
	Nonce    uint64
	Balance  word.Word
	Root     word.Hash
	CodeHash word.Hash
}

func newAccount() account {
	return account{Root: emptyRoot, CodeHash: crypto.EmptyCodeHash}
}

// isEmpty implements the "empty account" predicate used by CALL's
// new-account surcharge and by end-of-transaction pruning: zero nonce,
// zero balance, and the code hash of the empty string.
func (a account) isEmpty() bool {
	return a.Nonce == 0 && a.Balance.IsZero() && a.CodeHash == crypto.EmptyCodeHash
}
