// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package bloom implements the 2048-bit receipt/log bloom filter used to
// let clients skip blocks that cannot contain a log they are searching for.
package bloom

import (
	"math/big"

	"github.com/evmcore/evmcore/crypto"
)

const (
	byteLength = 256
	bitLength  = byteLength * 8
)

// Filter is a 2048-bit bloom filter over log addresses and topics.
type Filter [byteLength]byte

// Add inserts d's hash into the filter.
func (f *Filter) Add(d []byte) {
	i1, v1, i2, v2, i3, v3 := filterValues(d)
	f[i1] |= v1
	f[i2] |= v2
	f[i3] |= v3
}

// Test reports whether d may be a member of the filter. False positives are
// possible; false negatives are not.
func (f Filter) Test(d []byte) bool {
	i1, v1, i2, v2, i3, v3 := filterValues(d)
	return f[i1]&v1 == v1 && f[i2]&v2 == v2 && f[i3]&v3 == v3
}

// Or merges other into f in place.
//
// The loop bound here is deliberately `i < byteLength`, not `i <= byteLength`:
// an off-by-one version of this routine existed in early go-ethereum history
// and would read one byte past the array. This implementation does not
// reproduce that bug.
func (f *Filter) Or(other Filter) {
	for i := 0; i < byteLength; i++ {
		f[i] |= other[i]
	}
}

// Bytes returns the filter's big-endian byte representation.
func (f Filter) Bytes() []byte {
	return f[:]
}

// Big returns the filter's value as a big.Int, for RLP/JSON encoding paths
// that expect it in that form.
func (f Filter) Big() *big.Int {
	return new(big.Int).SetBytes(f[:])
}

// filterValues computes the three (byte-index, bit-mask) pairs that a
// keccak256 hash of d maps to in a 2048-bit, 3-of-2048 bloom filter: each
// pair is derived from two bytes of the hash, taken from its first 6 bytes.
func filterValues(d []byte) (i1 uint, v1 byte, i2 uint, v2 byte, i3 uint, v3 byte) {
	h := crypto.Keccak256(d)
	v1 = 1 << (h[1] & 0x7)
	v2 = 1 << (h[3] & 0x7)
	v3 = 1 << (h[5] & 0x7)
	i1 = bitLength/8 - 1 - uint(be16(h[0], h[1])&0x7ff)/8
	i2 = bitLength/8 - 1 - uint(be16(h[2], h[3])&0x7ff)/8
	i3 = bitLength/8 - 1 - uint(be16(h[4], h[5])&0x7ff)/8
	return
}

func be16(hi, lo byte) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}
