// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package bloom

import "testing"

func TestAddAndTest(t *testing.T) {
	var f Filter
	addr := []byte("an address")
	if f.Test(addr) {
		t.Fatalf("empty filter should not contain anything")
	}
	f.Add(addr)
	if !f.Test(addr) {
		t.Errorf("filter should contain what was added to it")
	}
}

func TestTestDoesNotFalseNegative(t *testing.T) {
	var f Filter
	items := [][]byte{[]byte("alpha"), []byte("beta"), []byte("gamma")}
	for _, item := range items {
		f.Add(item)
	}
	for _, item := range items {
		if !f.Test(item) {
			t.Errorf("filter should contain %q after it was added", item)
		}
	}
}

func TestOrMergesBothFilters(t *testing.T) {
	var a, b Filter
	a.Add([]byte("alpha"))
	b.Add([]byte("beta"))

	a.Or(b)
	if !a.Test([]byte("alpha")) {
		t.Errorf("merged filter lost the original member")
	}
	if !a.Test([]byte("beta")) {
		t.Errorf("merged filter did not gain the other filter's member")
	}
}

func TestOrDoesNotOverrun(t *testing.T) {
	var a, b Filter
	for i := range b {
		b[i] = 0xff
	}
	a.Or(b)
	for i, v := range a {
		if v != 0xff {
			t.Fatalf("byte %d not merged: got %x", i, v)
		}
	}
}

func TestBytesAndBig(t *testing.T) {
	var f Filter
	f.Add([]byte("alpha"))
	if len(f.Bytes()) != byteLength {
		t.Errorf("Bytes() returned %d bytes, want %d", len(f.Bytes()), byteLength)
	}
	if f.Big().Sign() == 0 {
		t.Errorf("Big() of a non-empty filter should be non-zero")
	}
}
