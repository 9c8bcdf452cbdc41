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

import "github.com/evmcore/evmcore/evmcore"

// Fixed per-opcode gas costs, Homestead tier (Yellow Paper appendix G,
// before the Tangerine Whistle / Spurious Dragon repricings).
const (
	GasQuickStep   = evmcore.Gas(2)
	GasFastestStep = evmcore.Gas(3)
	GasFastStep    = evmcore.Gas(5)
	GasMidStep     = evmcore.Gas(8)
	GasSlowStep    = evmcore.Gas(10)
	GasExtStep     = evmcore.Gas(20)

	GasSha3Word      = evmcore.Gas(6)
	GasCopyWord      = evmcore.Gas(3)
	GasExpByte       = evmcore.Gas(10)
	GasLogBase       = evmcore.Gas(375)
	GasLogTopic      = evmcore.Gas(375)
	GasLogByte       = evmcore.Gas(8)
	GasBalance       = evmcore.Gas(20)
	GasExtcodeSize   = evmcore.Gas(20)
	GasExtcodeCopy   = evmcore.Gas(20)
	GasSload         = evmcore.Gas(50)
	GasSstoreSet     = evmcore.Gas(20000)
	GasSstoreReset   = evmcore.Gas(5000)
	GasSstoreRefund  = evmcore.Gas(15000)
	GasJumpdest      = evmcore.Gas(1)
	GasCreate        = evmcore.Gas(32000)
	GasCall          = evmcore.Gas(40) // Homestead: EIP-2 repriced CALL to 40
	GasCallValue     = evmcore.Gas(9000)
	GasCallStipend   = evmcore.Gas(2300)
	GasCallNewAccount = evmcore.Gas(25000)
	GasSelfdestructRefund = evmcore.Gas(24000)

	createGasCostPerByte = evmcore.Gas(200)
	maxCodeSize          = 24576
)

// gasForCall implements the 63/64ths forwarding rule: at most
// availableGas - availableGas/64 may be passed on to a CALL/CALLCODE/
// DELEGATECALL/CREATE target, after the fixed and dynamic cost of the
// operation itself has been deducted from the caller's remaining gas.
func gasForCall(availableGas, requested evmcore.Gas) evmcore.Gas {
	cap := availableGas - availableGas/64
	if requested < 0 || requested > cap {
		return cap
	}
	return requested
}

// wordGas scales a per-word gas cost by the number of 32-byte words needed
// to cover size bytes.
func wordGas(perWord evmcore.Gas, size uint64) evmcore.Gas {
	words := (size + 31) / 32
	return perWord * evmcore.Gas(words)
}

// expGas prices the EXP opcode: a flat step cost plus GasExpByte for every
// byte needed to represent the exponent.
func expGas(exponentByteLen int) evmcore.Gas {
	return GasSlowStep + evmcore.Gas(exponentByteLen)*GasExpByte
}

// memoryExpansionTooLarge reports whether a requested memory size would
// overflow the gas accounting; callers treat this as an immediate
// out-of-gas rather than attempting the expansion.
func memoryExpansionTooLarge(size uint64) bool {
	return size > maxMemoryExpansionSize
}
