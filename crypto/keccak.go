// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package crypto wraps the hash primitives shared by the interpreter (SHA3
// opcode), the state layer (address and storage-key derivation) and the
// precompiles (SHA256, RIPEMD160).
package crypto

import (
	"sync"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // required for precompile 0x03
	"golang.org/x/crypto/sha3"

	"github.com/evmcore/evmcore/word"
)

var keccakPool = sync.Pool{New: func() any { return sha3.NewLegacyKeccak256() }}

var emptyKeccak256 = computeKeccak256([]byte{})

// Keccak256 hashes data with the Keccak-256 permutation used throughout the
// protocol for SHA3, address derivation and trie keys.
func Keccak256(data []byte) word.Hash {
	if len(data) == 0 {
		return emptyKeccak256
	}
	return computeKeccak256(data)
}

func computeKeccak256(data []byte) word.Hash {
	hasher := keccakPool.Get().(keccakHasher)
	hasher.Reset()
	hasher.Write(data)
	var result word.Hash
	hasher.Read(result[:])
	keccakPool.Put(hasher)
	return result
}

type keccakHasher interface {
	Reset()
	Write(in []byte) (int, error)
	Read(out []byte) (int, error)
}

// EmptyCodeHash is Keccak256(nil), the codeHash every externally owned
// account and freshly created account carries.
var EmptyCodeHash = emptyKeccak256

// Ripemd160 hashes data with RIPEMD-160, used by precompile 0x03.
func Ripemd160(data []byte) []byte {
	h := ripemd160.New()
	h.Write(data)
	return h.Sum(nil)
}
