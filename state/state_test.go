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
	"testing"

	"github.com/evmcore/evmcore/evmcore"
	"github.com/evmcore/evmcore/crypto"
	"github.com/evmcore/evmcore/trie"
	"github.com/evmcore/evmcore/word"
)

func addrN(n byte) word.Address {
	var a word.Address
	a[19] = n
	return a
}

func TestGetBalanceDefaultsToZero(t *testing.T) {
	s := New(nil, nil)
	if got := s.GetBalance(addrN(1)); !got.IsZero() {
		t.Errorf("fresh account balance = %s, want 0", got)
	}
}

func TestSetBalanceRevertsOnSnapshot(t *testing.T) {
	s := New(nil, nil)
	a := addrN(1)
	snap := s.CreateSnapshot()
	s.SetBalance(a, word.New(100))
	if got := s.GetBalance(a); got.String() != "100" {
		t.Fatalf("GetBalance after SetBalance = %s, want 100", got)
	}
	s.RevertToSnapshot(snap)
	if got := s.GetBalance(a); !got.IsZero() {
		t.Errorf("GetBalance after revert = %s, want 0", got)
	}
}

func TestNonceRevertsOnSnapshot(t *testing.T) {
	s := New(nil, nil)
	a := addrN(1)
	snap := s.CreateSnapshot()
	s.SetNonce(a, 7)
	s.RevertToSnapshot(snap)
	if got := s.GetNonce(a); got != 0 {
		t.Errorf("GetNonce after revert = %d, want 0", got)
	}
}

func TestStorageRevertsOnSnapshot(t *testing.T) {
	s := New(nil, nil)
	a := addrN(1)
	var key word.Key
	key[31] = 1

	s.SetStorage(a, key, word.New(5))
	snap := s.CreateSnapshot()
	s.SetStorage(a, key, word.New(9))
	if got := s.GetStorage(a, key); got.String() != "9" {
		t.Fatalf("GetStorage before revert = %s, want 9", got)
	}
	s.RevertToSnapshot(snap)
	if got := s.GetStorage(a, key); got.String() != "5" {
		t.Errorf("GetStorage after revert = %s, want 5", got)
	}
}

func TestNestedSnapshotsRevertInOrder(t *testing.T) {
	s := New(nil, nil)
	a := addrN(1)

	s.SetBalance(a, word.New(1))
	outer := s.CreateSnapshot()
	s.SetBalance(a, word.New(2))
	inner := s.CreateSnapshot()
	s.SetBalance(a, word.New(3))

	s.RevertToSnapshot(inner)
	if got := s.GetBalance(a); got.String() != "2" {
		t.Fatalf("GetBalance after inner revert = %s, want 2", got)
	}
	s.RevertToSnapshot(outer)
	if got := s.GetBalance(a); got.String() != "1" {
		t.Errorf("GetBalance after outer revert = %s, want 1", got)
	}
}

func TestSetCodeUpdatesHashAndRevertsCleanly(t *testing.T) {
	s := New(nil, nil)
	a := addrN(1)
	snap := s.CreateSnapshot()

	code := []byte{0x60, 0x00, 0x60, 0x00}
	s.SetCode(a, code)
	if got := s.GetCode(a); string(got) != string(code) {
		t.Fatalf("GetCode = %x, want %x", got, code)
	}
	if s.GetCodeSize(a) != len(code) {
		t.Errorf("GetCodeSize = %d, want %d", s.GetCodeSize(a), len(code))
	}

	s.RevertToSnapshot(snap)
	if got := s.GetCode(a); got != nil {
		t.Errorf("GetCode after revert = %x, want nil", got)
	}
}

func TestSelfDestructCreditsBeneficiaryImmediately(t *testing.T) {
	s := New(nil, nil)
	victim := addrN(1)
	beneficiary := addrN(2)

	s.SetBalance(victim, word.New(50))
	if !s.SelfDestruct(victim, beneficiary) {
		t.Fatalf("SelfDestruct should report true the first time")
	}
	if got := s.GetBalance(victim); !got.IsZero() {
		t.Errorf("victim balance after self-destruct = %s, want 0", got)
	}
	if got := s.GetBalance(beneficiary); got.String() != "50" {
		t.Errorf("beneficiary balance after self-destruct = %s, want 50", got)
	}
	if !s.HasSelfDestructed(victim) {
		t.Errorf("HasSelfDestructed should be true after SelfDestruct")
	}
}

func TestSelfDestructRevertsBalanceAndFlag(t *testing.T) {
	s := New(nil, nil)
	victim := addrN(1)
	beneficiary := addrN(2)

	s.SetBalance(victim, word.New(50))
	snap := s.CreateSnapshot()
	s.SelfDestruct(victim, beneficiary)
	s.RevertToSnapshot(snap)

	if s.HasSelfDestructed(victim) {
		t.Errorf("HasSelfDestructed after revert should be false")
	}
	if got := s.GetBalance(victim); got.String() != "50" {
		t.Errorf("victim balance after revert = %s, want 50", got)
	}
}

func TestSelfDestructSelfAsBeneficiaryKeepsBalanceAtZero(t *testing.T) {
	s := New(nil, nil)
	a := addrN(1)
	s.SetBalance(a, word.New(50))
	s.SelfDestruct(a, a)
	if got := s.GetBalance(a); !got.IsZero() {
		t.Errorf("self-destructing to self should still zero the balance, got %s", got)
	}
}

func TestEmitLogAndGetLogs(t *testing.T) {
	s := New(nil, nil)
	if len(s.GetLogs()) != 0 {
		t.Fatalf("fresh cache should have no logs")
	}
	s.EmitLog(evmcore.Log{Address: addrN(1)})
	s.EmitLog(evmcore.Log{Address: addrN(2)})
	if got := s.GetLogs(); len(got) != 2 {
		t.Fatalf("GetLogs = %d entries, want 2", len(got))
	}
}

func TestEmitLogRevertsOnSnapshot(t *testing.T) {
	s := New(nil, nil)
	s.EmitLog(evmcore.Log{Address: addrN(1)})
	snap := s.CreateSnapshot()
	s.EmitLog(evmcore.Log{Address: addrN(2)})
	s.RevertToSnapshot(snap)
	if got := s.GetLogs(); len(got) != 1 {
		t.Errorf("GetLogs after revert = %d entries, want 1", len(got))
	}
}

func TestAddRefundAndSubRefund(t *testing.T) {
	s := New(nil, nil)
	s.AddRefund(100)
	s.SubRefund(40)
	if got := s.GetRefund(); got != 60 {
		t.Errorf("GetRefund = %d, want 60", got)
	}
}

func TestSubRefundClampsAtZero(t *testing.T) {
	s := New(nil, nil)
	s.AddRefund(10)
	s.SubRefund(100)
	if got := s.GetRefund(); got != 0 {
		t.Errorf("GetRefund after over-subtracting = %d, want 0", got)
	}
}

func TestRefundRevertsOnSnapshot(t *testing.T) {
	s := New(nil, nil)
	s.AddRefund(10)
	snap := s.CreateSnapshot()
	s.AddRefund(20)
	s.RevertToSnapshot(snap)
	if got := s.GetRefund(); got != 10 {
		t.Errorf("GetRefund after revert = %d, want 10", got)
	}
}

func TestAccountExistsForTouchedAccount(t *testing.T) {
	s := New(nil, nil)
	a := addrN(1)
	if s.AccountExists(a) {
		t.Fatalf("untouched account should not exist")
	}
	s.CreateAccount(a)
	if !s.AccountExists(a) {
		t.Errorf("created account should exist")
	}
}

func TestRipemdAddressStaysDirtyAcrossRevert(t *testing.T) {
	s := New(nil, nil)
	snap := s.CreateSnapshot()
	s.touch(ripemdAddress)
	s.RevertToSnapshot(snap)
	if s.journal.dirties[ripemdAddress] == 0 {
		t.Errorf("ripemd precompile address should remain dirty after revert")
	}
}

func TestGetBlockHashWithNilSourceReturnsZero(t *testing.T) {
	s := New(nil, nil)
	if got := s.GetBlockHash(5); got != (word.Hash{}) {
		t.Errorf("GetBlockHash with nil source = %v, want zero hash", got)
	}
}

func TestGetBlockHashDelegatesToSource(t *testing.T) {
	want := word.Hash{0xaa}
	s := New(nil, func(number int64) word.Hash {
		if number != 42 {
			t.Fatalf("unexpected block number %d", number)
		}
		return want
	})
	if got := s.GetBlockHash(42); got != want {
		t.Errorf("GetBlockHash = %v, want %v", got, want)
	}
}

func TestRootWithNilBackingIsZero(t *testing.T) {
	s := New(nil, nil)
	if got := s.Root(); got != (word.Hash{}) {
		t.Errorf("Root with nil backing = %v, want zero hash", got)
	}
}

func TestRootReflectsCommittedState(t *testing.T) {
	store := trie.New()
	s := New(store, nil)
	a := addrN(1)

	before := s.Root()
	s.SetBalance(a, word.New(100))
	s.Commit()
	after := s.Root()

	if before == after {
		t.Errorf("Root should change once an account is committed")
	}
	if after != store.Root() {
		t.Errorf("AccountCache.Root() = %v, want backing store's Root() %v", after, store.Root())
	}
}

func TestCommitPrunesEmptyNewbornAccount(t *testing.T) {
	store := trie.New()
	s := New(store, nil)
	a := addrN(1)

	// A pure read, like BALANCE or a CALL's balance check, inserts an
	// empty account into the cache without ever making it non-empty.
	_ = s.GetBalance(a)
	s.Commit()

	if _, ok := store.GetAccount(a); ok {
		t.Errorf("empty newborn account should be discarded on flush, found it in the backing trie")
	}
}

func TestCommitWritesAccountThatBecameNonEmpty(t *testing.T) {
	store := trie.New()
	s := New(store, nil)
	a := addrN(1)

	s.SetBalance(a, word.New(1))
	s.Commit()

	if _, ok := store.GetAccount(a); !ok {
		t.Errorf("account that became non-empty should be written to the backing trie")
	}
}

func TestCommitPrunesAccountEmptiedWithinTheSameTransaction(t *testing.T) {
	store := trie.New()
	a := addrN(1)
	store.PutAccount(a, trie.Account{Nonce: 0, Balance: word.New(5), CodeHash: crypto.EmptyCodeHash})

	s := New(store, nil)
	s.SetBalance(a, word.Word{})
	s.Commit()

	if _, ok := store.GetAccount(a); ok {
		t.Errorf("account emptied within the transaction should be pruned on flush")
	}
}
