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

// destinations records which byte offsets within a piece of code are valid
// JUMP/JUMPI targets: JUMPDEST instructions that are not themselves a PUSH
// immediate-data byte. Computed once per distinct piece of code and cached
// by code hash (see NewContract in contract.go).
type destinations map[uint64]struct{}

// analyzeJumpDests scans code once, skipping over PUSH immediate operands,
// and records every offset holding a JUMPDEST opcode.
func analyzeJumpDests(code []byte) destinations {
	dests := make(destinations)
	for pc := uint64(0); pc < uint64(len(code)); {
		op := OpCode(code[pc])
		if op == JUMPDEST {
			dests[pc] = struct{}{}
		}
		pc += uint64(op.Width())
	}
	return dests
}

func (d destinations) isValid(pc uint64) bool {
	_, ok := d[pc]
	return ok
}
