// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package word defines the fixed-width data types shared by every layer of
// the interpreter: 20-byte addresses, 32-byte words and hashes, and the
// 256-bit arithmetic used by the stack machine.
package word

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// Address represents the 160-bit (20 byte) identifier of an account.
type Address [20]byte

// Hash represents a 256-bit (32 byte) cryptographic digest.
type Hash [32]byte

// Key represents a 256-bit storage slot key.
type Key [32]byte

// Word represents an arbitrary 256-bit EVM value: a stack entry, a storage
// value, or an amount of currency.
type Word [32]byte

func (a Address) String() string {
	return fmt.Sprintf("0x%x", a[:])
}

func (a Address) MarshalText() ([]byte, error) {
	return bytesToText(a[:])
}

func (a *Address) UnmarshalText(data []byte) error {
	return textToBytes(a[:], data)
}

func (h Hash) String() string {
	return fmt.Sprintf("0x%x", h[:])
}

func (h Hash) MarshalText() ([]byte, error) {
	return bytesToText(h[:])
}

func (h *Hash) UnmarshalText(data []byte) error {
	return textToBytes(h[:], data)
}

func (k Key) String() string {
	return fmt.Sprintf("0x%x", k[:])
}

func (k Key) MarshalText() ([]byte, error) {
	return bytesToText(k[:])
}

func (k *Key) UnmarshalText(data []byte) error {
	return textToBytes(k[:], data)
}

func (w Word) String() string {
	return w.ToUint256().String()
}

func (w Word) ToBig() *big.Int {
	return new(big.Int).SetBytes(w[:])
}

func (w Word) ToUint256() *uint256.Int {
	return new(uint256.Int).SetBytes(w[:])
}

// FromUint256 converts a *uint256.Int into a Word. A nil input yields zero.
func FromUint256(v *uint256.Int) (result Word) {
	if v == nil {
		return result
	}
	return Word(v.Bytes32())
}

func (w Word) Cmp(o Word) int {
	return new(uint256.Int).SetBytes(w[:]).Cmp(new(uint256.Int).SetBytes(o[:]))
}

func (w Word) IsZero() bool {
	return w == Word{}
}

// New creates a Word from up to 4 uint64 arguments, most significant first.
// No argument results in a value of zero.
func New(args ...uint64) (result Word) {
	if len(args) > 4 {
		panic("too many arguments")
	}
	offset := 4 - len(args)
	for i := 0; i < len(args); i++ {
		v := new(uint256.Int).SetUint64(args[i])
		b := v.Bytes32()
		start := (offset + i) * 8
		copy(result[start:start+8], b[24:32])
	}
	return result
}

// Add returns a+b mod 2^256.
func Add(a, b Word) Word {
	return FromUint256(new(uint256.Int).Add(a.ToUint256(), b.ToUint256()))
}

// Sub returns a-b mod 2^256.
func Sub(a, b Word) Word {
	return FromUint256(new(uint256.Int).Sub(a.ToUint256(), b.ToUint256()))
}

// Scale multiplies a Word (interpreted as an unsigned integer) by a scalar.
func (w Word) Scale(s uint64) Word {
	return FromUint256(new(uint256.Int).Mul(w.ToUint256(), new(uint256.Int).SetUint64(s)))
}

func (w Word) MarshalText() ([]byte, error) {
	return bytesToText(w[:])
}

func (w *Word) UnmarshalText(data []byte) error {
	return textToBytes(w[:], data)
}

func bytesToText(data []byte) ([]byte, error) {
	return []byte(fmt.Sprintf("0x%x", data)), nil
}

func textToBytes(dst []byte, data []byte) error {
	s := string(data)
	if !strings.HasPrefix(s, "0x") {
		return fmt.Errorf("invalid format, does not start with 0x: %v", s)
	}
	decoded, err := hex.DecodeString(s[2:])
	if err != nil {
		return err
	}
	if want, got := len(dst), len(decoded); want != got {
		return fmt.Errorf("invalid format, wanted %d bytes, got %d", want, got)
	}
	copy(dst, decoded)
	return nil
}

// SizeInWords rounds a byte length up to the next multiple of 32, in words.
func SizeInWords(size uint64) uint64 {
	return (size + 31) / 32
}
