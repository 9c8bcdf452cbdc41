// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package interpreter

import (
	"github.com/holiman/uint256"

	"github.com/evmcore/evmcore/word"
)

// opHandler executes one instruction against the frame, returning the
// frame's terminal status (valid only when done is true) and any error
// that terminates the frame.
type opHandler func(f *frame, op OpCode) (status, bool, error)

func fromUint256(v *uint256.Int) word.Word {
	return word.Word(v.Bytes32())
}

func toKey(v *uint256.Int) word.Key {
	return word.Key(v.Bytes32())
}
