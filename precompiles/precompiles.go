// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package precompiles implements the four native contracts reachable by
// Homestead-era CALL/CALLCODE/DELEGATECALL at addresses 0x01-0x04.
package precompiles

import (
	"crypto/sha256"

	"github.com/evmcore/evmcore/evmcore"
	"github.com/evmcore/evmcore/crypto"
	"github.com/evmcore/evmcore/word"
)

// Precompile is a native contract: RequiredGas reports the gas a call with
// the given input costs, and Run either returns the output or fails.
type Precompile interface {
	RequiredGas(input []byte) evmcore.Gas
	Run(input []byte) ([]byte, error)
}

// addresses 0x01 through 0x04, per the Yellow Paper.
var (
	EcrecoverAddress = word.Address{19: 0x01}
	Sha256Address    = word.Address{19: 0x02}
	Ripemd160Address = word.Address{19: 0x03}
	IdentityAddress  = word.Address{19: 0x04}
)

// Registry returns the set of precompiles active at the Homestead revision.
func Registry() map[word.Address]Precompile {
	return map[word.Address]Precompile{
		EcrecoverAddress: ecrecover{},
		Sha256Address:    sha256Hash{},
		Ripemd160Address: ripemd160Hash{},
		IdentityAddress:  identity{},
	}
}

func wordGasCeil(perWord evmcore.Gas, size int) evmcore.Gas {
	words := (size + 31) / 32
	return perWord * evmcore.Gas(words)
}

type sha256Hash struct{}

func (sha256Hash) RequiredGas(input []byte) evmcore.Gas {
	return 60 + wordGasCeil(12, len(input))
}

func (sha256Hash) Run(input []byte) ([]byte, error) {
	h := sha256.Sum256(input)
	return h[:], nil
}

type ripemd160Hash struct{}

func (ripemd160Hash) RequiredGas(input []byte) evmcore.Gas {
	return 600 + wordGasCeil(120, len(input))
}

func (ripemd160Hash) Run(input []byte) ([]byte, error) {
	digest := crypto.Ripemd160(input)
	out := make([]byte, 32)
	copy(out[32-len(digest):], digest)
	return out, nil
}

type identity struct{}

func (identity) RequiredGas(input []byte) evmcore.Gas {
	return 15 + wordGasCeil(3, len(input))
}

func (identity) Run(input []byte) ([]byte, error) {
	out := make([]byte, len(input))
	copy(out, input)
	return out, nil
}
