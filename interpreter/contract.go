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
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/evmcore/evmcore/word"
)

// analysisCacheSize bounds the number of distinct code bodies whose
// jump-destination analysis is memoized. Analysis is deterministic given
// the code, so caching by code hash is always safe.
const analysisCacheSize = 4096

var jumpDestCache, _ = lru.New[word.Hash, destinations](analysisCacheSize)

// Contract bundles a piece of deployed code with its cached
// jump-destination analysis, keyed by the code's hash in a bounded LRU so
// repeated calls into the same deployed bytecode skip re-analysis.
type Contract struct {
	Address  word.Address
	CodeHash word.Hash
	Code     []byte

	dests destinations
}

// NewContract prepares code for execution, reusing a cached
// jump-destination analysis when this code hash has been seen before.
// Code without a hash (the zero hash, as for init code) is analyzed on
// every call and never cached.
func NewContract(address word.Address, codeHash word.Hash, code []byte) *Contract {
	c := &Contract{Address: address, CodeHash: codeHash, Code: code}
	if codeHash == (word.Hash{}) {
		c.dests = analyzeJumpDests(code)
		return c
	}
	if dests, ok := jumpDestCache.Get(codeHash); ok {
		c.dests = dests
		return c
	}
	c.dests = analyzeJumpDests(code)
	jumpDestCache.Add(codeHash, c.dests)
	return c
}

func (c *Contract) validJumpDest(pc uint64) bool {
	if pc >= uint64(len(c.Code)) {
		return false
	}
	return c.dests.isValid(pc)
}
