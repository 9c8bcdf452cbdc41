// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package precompiles

import (
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/evmcore/evmcore/evmcore"
	"github.com/evmcore/evmcore/crypto"
)

const ecrecoverGas = evmcore.Gas(3000)

// ecrecover implements precompile 0x01: recover the signer address from a
// (hash, v, r, s) signature, input-padded to 128 bytes.
type ecrecover struct{}

func (ecrecover) RequiredGas([]byte) evmcore.Gas { return ecrecoverGas }

func (ecrecover) Run(input []byte) ([]byte, error) {
	var padded [128]byte
	copy(padded[:], input)

	hash := padded[:32]
	v := padded[63]
	r := padded[64:96]
	s := padded[96:128]

	if v != 27 && v != 28 {
		return nil, nil
	}
	if !isValidSignatureScalars(r, s) {
		return nil, nil
	}

	// btcec.RecoverCompact expects a recovery id in [0,3] as the first byte;
	// the wire format here carries v in {27,28}.
	sig := make([]byte, 65)
	sig[0] = v - 27
	copy(sig[1:33], r)
	copy(sig[33:65], s)

	pub, _, err := ecdsa.RecoverCompact(sig, hash)
	if err != nil || pub == nil {
		return nil, nil
	}

	addr := crypto.Keccak256(pub.SerializeUncompressed()[1:])
	out := make([]byte, 32)
	copy(out[12:], addr[12:])
	return out, nil
}

// isValidSignatureScalars rejects r or s outside (0, secp256k1 order),
// matching go-ethereum's crypto.ValidateSignatureValues for the
// homestead-era (non-EIP-2) curve check.
func isValidSignatureScalars(r, s []byte) bool {
	if allZero(r) || allZero(s) {
		return false
	}
	return lessThanCurveOrder(r) && lessThanCurveOrder(s)
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// secp256k1Order is the order N of the secp256k1 group, big-endian.
var secp256k1Order = [32]byte{
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xfe,
	0xba, 0xae, 0xdc, 0xe6, 0xaf, 0x48, 0xa0, 0x3b,
	0xbf, 0xd2, 0x5e, 0x8c, 0xd0, 0x36, 0x41, 0x41,
}

func lessThanCurveOrder(v []byte) bool {
	for i := 0; i < 32; i++ {
		if v[i] != secp256k1Order[i] {
			return v[i] < secp256k1Order[i]
		}
	}
	return false
}
