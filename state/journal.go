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

import "github.com/evmcore/evmcore/word"

// journalEntry is one undoable state mutation. revert undoes the mutation
// against the given cache; dirtied names the address (if any) whose dirty
// refcount this entry contributed to.
type journalEntry interface {
	revert(*AccountCache)
	dirtied() *word.Address
}

// journal is an append-only log of journalEntry values together with a
// dirty-address refcount, so that RevertToSnapshot can both undo entries in
// reverse order and clear addresses that have no outstanding dirty entries
// left.
type journal struct {
	entries []journalEntry
	dirties map[word.Address]int
}

func newJournal() *journal {
	return &journal{dirties: make(map[word.Address]int)}
}

func (j *journal) append(entry journalEntry) {
	j.entries = append(j.entries, entry)
	if addr := entry.dirtied(); addr != nil {
		j.dirties[*addr]++
	}
}

func (j *journal) length() int { return len(j.entries) }

// revertTo undoes entries back down to snapshot, in reverse order.
func (j *journal) revertTo(cache *AccountCache, snapshot int) {
	for i := len(j.entries) - 1; i >= snapshot; i-- {
		j.entries[i].revert(cache)
		if addr := j.entries[i].dirtied(); addr != nil {
			if j.dirties[*addr]--; j.dirties[*addr] == 0 {
				delete(j.dirties, *addr)
			}
		}
	}
	j.entries = j.entries[:snapshot]
}

type (
	createAccountChange struct{ account word.Address }

	balanceChange struct {
		account word.Address
		prev    word.Word
	}

	nonceChange struct {
		account word.Address
		prev    uint64
	}

	storageChange struct {
		account  word.Address
		key      word.Key
		prevalue word.Word
	}

	codeChange struct {
		account  word.Address
		prevCode []byte
		prevHash word.Hash
	}

	refundChange struct {
		prev int64
	}

	addLogChange struct{}

	selfDestructChange struct {
		account     word.Address
		prev        bool
		prevBalance word.Word
	}

	touchChange struct {
		account word.Address
	}
)

func (c createAccountChange) revert(s *AccountCache)  { delete(s.accounts, c.account) }
func (c createAccountChange) dirtied() *word.Address  { return &c.account }

func (c balanceChange) revert(s *AccountCache) {
	s.getOrCreate(c.account).Balance = c.prev
}
func (c balanceChange) dirtied() *word.Address { return &c.account }

func (c nonceChange) revert(s *AccountCache) {
	s.getOrCreate(c.account).Nonce = c.prev
}
func (c nonceChange) dirtied() *word.Address { return &c.account }

func (c storageChange) revert(s *AccountCache) {
	s.setStorageRaw(c.account, c.key, c.prevalue)
}
func (c storageChange) dirtied() *word.Address { return &c.account }

func (c codeChange) revert(s *AccountCache) {
	a := s.getOrCreate(c.account)
	a.CodeHash = c.prevHash
	s.code[c.account] = c.prevCode
}
func (c codeChange) dirtied() *word.Address { return &c.account }

func (c refundChange) revert(s *AccountCache) { s.refund = c.prev }
func (c refundChange) dirtied() *word.Address { return nil }

func (c addLogChange) revert(s *AccountCache) { s.logs = s.logs[:len(s.logs)-1] }
func (c addLogChange) dirtied() *word.Address { return nil }

func (c selfDestructChange) revert(s *AccountCache) {
	s.destructed[c.account] = c.prev
	s.getOrCreate(c.account).Balance = c.prevBalance
}
func (c selfDestructChange) dirtied() *word.Address { return &c.account }

// touchChange records that an address was touched (e.g. by a zero-value
// CALL) without otherwise mutating it, so that RevertToSnapshot can still
// drop it from the set of touched accounts. For the RIPEMD precompile
// address, AccountCache.touch also adds a journal dirty count that no
// revert removes, so that address stays dirty after the undo, a consensus
// artifact carried forward from go-ethereum's journal.
func (c touchChange) revert(s *AccountCache) { delete(s.touched, c.account) }
func (c touchChange) dirtied() *word.Address { return &c.account }
