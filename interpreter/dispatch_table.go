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

// dispatchTable maps every instruction valid at the Homestead revision to
// its handler. Opcodes absent from this table (including the explicit
// INVALID marker 0xFE) fail with evmcore.ErrInvalidOpcode.
var dispatchTable = buildDispatchTable()

func buildDispatchTable() map[OpCode]opHandler {
	t := map[OpCode]opHandler{
		STOP: func(f *frame, op OpCode) (status, bool, error) { return statusStopped, true, nil },

		ADD: opAdd, MUL: opMul, SUB: opSub, DIV: opDiv, SDIV: opSdiv,
		MOD: opMod, SMOD: opSmod, ADDMOD: opAddmod, MULMOD: opMulmod,
		EXP: opExp, SIGNEXTEND: opSignextend,

		LT: opLt, GT: opGt, SLT: opSlt, SGT: opSgt, EQ: opEq, ISZERO: opIszero,
		AND: opAnd, OR: opOr, XOR: opXor, NOT: opNot, BYTE: opByte,

		SHA3: opSha3,

		ADDRESS: opAddress, BALANCE: opBalance, ORIGIN: opOrigin, CALLER: opCaller,
		CALLVALUE: opCallvalue, CALLDATALOAD: opCalldataload, CALLDATASIZE: opCalldatasize,
		CALLDATACOPY: opCalldatacopy, CODESIZE: opCodesize, CODECOPY: opCodecopy,
		GASPRICE: opGasprice, EXTCODESIZE: opExtcodesize, EXTCODECOPY: opExtcodecopy,

		BLOCKHASH: opBlockhash, COINBASE: opCoinbase, TIMESTAMP: opTimestamp,
		NUMBER: opNumber, DIFFICULTY: opDifficulty, GASLIMIT: opGaslimit,

		POP: opPop, MLOAD: opMload, MSTORE: opMstore, MSTORE8: opMstore8,
		SLOAD: opSload, SSTORE: opSstore, JUMP: opJump, JUMPI: opJumpi,
		PC: opPc, MSIZE: opMsize, GAS: opGas, JUMPDEST: opJumpdest,

		LOG0: makeLog(0), LOG1: makeLog(1), LOG2: makeLog(2), LOG3: makeLog(3), LOG4: makeLog(4),

		CREATE: opCreate, CALL: opCall, CALLCODE: opCallcode,
		RETURN: opReturn, DELEGATECALL: opDelegatecall, SELFDESTRUCT: opSelfdestruct,
	}
	for i := 0; i < 32; i++ {
		t[PUSH1+OpCode(i)] = makePush(i + 1)
	}
	for i := 0; i < 16; i++ {
		t[DUP1+OpCode(i)] = makeDup(i + 1)
	}
	for i := 0; i < 16; i++ {
		t[SWAP1+OpCode(i)] = makeSwap(i + 1)
	}
	return t
}
