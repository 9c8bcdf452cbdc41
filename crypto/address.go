// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package crypto

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/evmcore/evmcore/word"
)

// CreateAddress derives the address of a contract created by CREATE, per
// keccak256(rlp([sender, nonce]))[12:]. nonce is the sender's nonce value
// *before* the increment CREATE performs, matching the Yellow Paper and
// go-ethereum's crypto.CreateAddress.
func CreateAddress(sender word.Address, nonce uint64) word.Address {
	data, err := rlp.EncodeToBytes([]any{sender[:], nonce})
	if err != nil {
		// rlp.EncodeToBytes only fails on unsupported types; the literal
		// above is always encodable.
		panic(err)
	}
	hash := Keccak256(data)
	var addr word.Address
	copy(addr[:], hash[12:])
	return addr
}
