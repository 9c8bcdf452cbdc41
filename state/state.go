// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package state implements the journaled, checkpointable account and
// storage store that backs a transaction's execution: AccountCache tracks
// in-memory account and storage mutations with an undo log, and flushes
// committed state into a backing Trie.
package state

import (
	"github.com/evmcore/evmcore/evmcore"
	"github.com/evmcore/evmcore/crypto"
	"github.com/evmcore/evmcore/word"
)

// ripemdAddress is precompile 0x03. go-ethereum's journal marks it dirty on
// every touch, independent of whether a balance actually changed: an empty
// account at this address was nonetheless written to the state trie once,
// historically, and must always be treated as touched so later pruning
// logic reproduces that write.
var ripemdAddress = word.Address{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x03}

// BlockHashSource supplies BLOCKHASH's historical block hashes; whoever
// constructs the AccountCache passes it to New.
type BlockHashSource func(number int64) word.Hash

// AccountCache is the in-memory, journaled account/storage store backing
// one transaction's WorldState and TransactionContext surface.
type AccountCache struct {
	backing Trie

	accounts   map[word.Address]*account
	storage    map[word.Address]map[word.Key]word.Word
	code       map[word.Address][]byte
	destructed map[word.Address]bool
	touched    map[word.Address]bool

	journal *journal
	refund  int64
	logs    []evmcore.Log

	getBlockHash BlockHashSource
}

// New creates an AccountCache backed by trie, with blockHash wired for the
// BLOCKHASH opcode.
func New(backing Trie, blockHash BlockHashSource) *AccountCache {
	return &AccountCache{
		backing:      backing,
		accounts:     make(map[word.Address]*account),
		storage:      make(map[word.Address]map[word.Key]word.Word),
		code:         make(map[word.Address][]byte),
		destructed:   make(map[word.Address]bool),
		touched:      make(map[word.Address]bool),
		journal:      newJournal(),
		getBlockHash: blockHash,
	}
}

func (s *AccountCache) getOrCreate(addr word.Address) *account {
	if a, ok := s.accounts[addr]; ok {
		return a
	}
	a := s.loadFromBacking(addr)
	s.accounts[addr] = &a
	return &a
}

func (s *AccountCache) loadFromBacking(addr word.Address) account {
	if s.backing == nil {
		return newAccount()
	}
	if a, ok := s.backing.GetAccount(addr); ok {
		return account{Nonce: a.Nonce, Balance: a.Balance, Root: a.Root, CodeHash: a.CodeHash}
	}
	return newAccount()
}

// Commit flushes every account, storage slot and code body touched during
// this cache's lifetime into the backing trie. Destructed accounts are
// removed rather than written; so are accounts that are still empty at
// commit time, whether they were emptied by this transaction or only ever
// touched by a read (e.g. BALANCE, EXTCODESIZE, or a CALL's balance check)
// that never made them non-empty. Only an account that became non-empty
// during this cache's lifetime is actually written.
func (s *AccountCache) Commit() {
	if s.backing == nil {
		return
	}
	for addr, a := range s.accounts {
		if s.destructed[addr] || a.isEmpty() {
			s.backing.DeleteAccount(addr)
			continue
		}
		s.backing.PutAccount(addr, trieAccount(*a))
		if code, ok := s.code[addr]; ok {
			s.backing.PutCode(a.CodeHash, code)
		}
		for key, v := range s.storage[addr] {
			s.backing.PutStorage(addr, key, v)
		}
	}
}

// Root returns the backing trie's state root, reflecting only what has
// already been flushed by Commit. It is the zero hash when this cache has
// no backing trie.
func (s *AccountCache) Root() word.Hash {
	if s.backing == nil {
		return word.Hash{}
	}
	return s.backing.Root()
}

func (s *AccountCache) touch(addr word.Address) {
	if s.touched[addr] {
		return
	}
	s.touched[addr] = true
	s.journal.append(touchChange{account: addr})
	if addr == ripemdAddress {
		s.journal.dirties[addr]++
	}
}

// AccountExists reports whether addr is not "empty" in the protocol sense,
// or has been touched during this cache's lifetime even if still empty.
func (s *AccountCache) AccountExists(addr word.Address) bool {
	return !s.getOrCreate(addr).isEmpty() || s.touched[addr]
}

func (s *AccountCache) GetBalance(addr word.Address) word.Word {
	return s.getOrCreate(addr).Balance
}

func (s *AccountCache) SetBalance(addr word.Address, v word.Word) {
	s.touch(addr)
	a := s.getOrCreate(addr)
	s.journal.append(balanceChange{account: addr, prev: a.Balance})
	a.Balance = v
}

func (s *AccountCache) GetNonce(addr word.Address) uint64 {
	return s.getOrCreate(addr).Nonce
}

func (s *AccountCache) SetNonce(addr word.Address, n uint64) {
	a := s.getOrCreate(addr)
	s.journal.append(nonceChange{account: addr, prev: a.Nonce})
	a.Nonce = n
}

func (s *AccountCache) GetCode(addr word.Address) []byte {
	a := s.getOrCreate(addr)
	if a.CodeHash == crypto.EmptyCodeHash {
		return nil
	}
	if c, ok := s.code[addr]; ok {
		return c
	}
	if s.backing != nil {
		if c, ok := s.backing.GetCode(a.CodeHash); ok {
			s.code[addr] = c
			return c
		}
	}
	return nil
}

func (s *AccountCache) GetCodeHash(addr word.Address) word.Hash {
	return s.getOrCreate(addr).CodeHash
}

func (s *AccountCache) GetCodeSize(addr word.Address) int {
	return len(s.GetCode(addr))
}

func (s *AccountCache) SetCode(addr word.Address, code []byte) {
	a := s.getOrCreate(addr)
	s.journal.append(codeChange{account: addr, prevCode: s.code[addr], prevHash: a.CodeHash})
	a.CodeHash = crypto.Keccak256(code)
	s.code[addr] = code
}

func (s *AccountCache) GetStorage(addr word.Address, key word.Key) word.Word {
	if slots, ok := s.storage[addr]; ok {
		if v, ok := slots[key]; ok {
			return v
		}
	}
	return s.GetCommittedStorage(addr, key)
}

func (s *AccountCache) GetCommittedStorage(addr word.Address, key word.Key) word.Word {
	if s.backing == nil {
		return word.Word{}
	}
	v, _ := s.backing.GetStorage(addr, key)
	return v
}

func (s *AccountCache) SetStorage(addr word.Address, key word.Key, v word.Word) {
	s.touch(addr)
	prev := s.GetStorage(addr, key)
	s.journal.append(storageChange{account: addr, key: key, prevalue: prev})
	s.setStorageRaw(addr, key, v)
}

func (s *AccountCache) setStorageRaw(addr word.Address, key word.Key, v word.Word) {
	slots, ok := s.storage[addr]
	if !ok {
		slots = make(map[word.Key]word.Word)
		s.storage[addr] = slots
	}
	slots[key] = v
}

// SelfDestruct marks addr for removal at commit time, crediting its entire
// balance to beneficiary immediately (go-ethereum's ordering, not a
// deferred end-of-block credit).
func (s *AccountCache) SelfDestruct(addr, beneficiary word.Address) bool {
	a := s.getOrCreate(addr)
	if a.Balance.IsZero() && s.destructed[addr] {
		return false
	}
	wasDestructed := s.destructed[addr]
	s.journal.append(selfDestructChange{account: addr, prev: wasDestructed, prevBalance: a.Balance})

	if addr != beneficiary {
		s.SetBalance(beneficiary, word.Add(s.GetBalance(beneficiary), a.Balance))
	}
	a.Balance = word.Word{}
	s.destructed[addr] = true
	return !wasDestructed
}

func (s *AccountCache) HasSelfDestructed(addr word.Address) bool {
	return s.destructed[addr]
}

func (s *AccountCache) CreateSnapshot() evmcore.Snapshot {
	return evmcore.Snapshot(s.journal.length())
}

func (s *AccountCache) RevertToSnapshot(snap evmcore.Snapshot) {
	s.journal.revertTo(s, int(snap))
}

func (s *AccountCache) EmitLog(l evmcore.Log) {
	s.logs = append(s.logs, l)
	s.journal.append(addLogChange{})
}

func (s *AccountCache) GetLogs() []evmcore.Log {
	return s.logs
}

func (s *AccountCache) GetBlockHash(number int64) word.Hash {
	if s.getBlockHash == nil {
		return word.Hash{}
	}
	return s.getBlockHash(number)
}

func (s *AccountCache) AddRefund(g evmcore.Gas) {
	s.journal.append(refundChange{prev: s.refund})
	s.refund += int64(g)
}

func (s *AccountCache) SubRefund(g evmcore.Gas) {
	s.journal.append(refundChange{prev: s.refund})
	if int64(g) > s.refund {
		s.refund = 0
		return
	}
	s.refund -= int64(g)
}

func (s *AccountCache) GetRefund() evmcore.Gas {
	return evmcore.Gas(s.refund)
}

// CreateAccount records the minimal bookkeeping CREATE needs: a fresh
// touch and a journal entry so a colliding or failed creation can be
// cleanly rolled back. The account record itself is materialized lazily by
// getOrCreate.
func (s *AccountCache) CreateAccount(addr word.Address) {
	s.journal.append(createAccountChange{account: addr})
	s.touch(addr)
}
