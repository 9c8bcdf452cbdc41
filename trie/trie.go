// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package trie provides the persistence layer the state package flushes
// committed accounts, storage and code into, and from which a journal
// rollback point's state can be reloaded lazily.
package trie

import (
	"sort"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/evmcore/evmcore/crypto"
	"github.com/evmcore/evmcore/word"
)

// Account is the persisted four-field account record: nonce, balance,
// storage root and code hash, the same shape go-ethereum's account trie
// leaves encode.
type Account struct {
	Nonce    uint64
	Balance  word.Word
	Root     word.Hash
	CodeHash word.Hash
}

// rlpAccount is the wire shape used when folding an Account into Root's
// digest: balances are encoded as minimal big-endian integers, as RLP
// requires, rather than as fixed 32-byte words.
type rlpAccount struct {
	Nonce    uint64
	Balance  []byte
	Root     word.Hash
	CodeHash word.Hash
}

// Store is a content-addressed account/storage/code store with a
// deterministic root hash computed over its entries, in lieu of holding a
// live go-ethereum Merkle-Patricia trie object (whose triedb/StateTrie
// surface is tied tightly to a specific go-ethereum minor version — see
// DESIGN.md). Accounts and code are still encoded and hashed with
// go-ethereum's own rlp and this repo's Keccak256, but a Store's root is a
// digest of its flat account list, not a Merkle-Patricia trie root, and
// differs from the root an upstream account trie would have.
type Store struct {
	accounts map[word.Address]Account
	storage  map[word.Address]map[word.Key]word.Word
	code     map[word.Hash][]byte
}

func New() *Store {
	return &Store{
		accounts: make(map[word.Address]Account),
		storage:  make(map[word.Address]map[word.Key]word.Word),
		code:     make(map[word.Hash][]byte),
	}
}

func (s *Store) GetAccount(addr word.Address) (Account, bool) {
	a, ok := s.accounts[addr]
	return a, ok
}

func (s *Store) PutAccount(addr word.Address, a Account) {
	s.accounts[addr] = a
}

func (s *Store) DeleteAccount(addr word.Address) {
	delete(s.accounts, addr)
	delete(s.storage, addr)
}

func (s *Store) GetStorage(addr word.Address, key word.Key) (word.Word, bool) {
	slots, ok := s.storage[addr]
	if !ok {
		return word.Word{}, false
	}
	v, ok := slots[key]
	return v, ok
}

func (s *Store) PutStorage(addr word.Address, key word.Key, v word.Word) {
	slots, ok := s.storage[addr]
	if !ok {
		slots = make(map[word.Key]word.Word)
		s.storage[addr] = slots
	}
	slots[key] = v
}

func (s *Store) GetCode(hash word.Hash) ([]byte, bool) {
	c, ok := s.code[hash]
	return c, ok
}

func (s *Store) PutCode(hash word.Hash, code []byte) {
	s.code[hash] = code
}

// Root computes a deterministic digest of every account record currently
// held, in ascending address order, by RLP-encoding each and folding the
// encodings through Keccak256. It plays the role of a state root for
// testing and for the block header without requiring a full trie
// structure.
func (s *Store) Root() word.Hash {
	addrs := make([]word.Address, 0, len(s.accounts))
	for a := range s.accounts {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return string(addrs[i][:]) < string(addrs[j][:])
	})

	var buf []byte
	for _, addr := range addrs {
		a := s.accounts[addr]
		encoded, err := rlp.EncodeToBytes(&rlpAccount{
			Nonce:    a.Nonce,
			Balance:  trimLeadingZeros(a.Balance[:]),
			Root:     a.Root,
			CodeHash: a.CodeHash,
		})
		if err != nil {
			panic(err)
		}
		buf = append(buf, addr[:]...)
		buf = append(buf, encoded...)
	}
	return crypto.Keccak256(buf)
}

func trimLeadingZeros(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	return b[i:]
}
