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
	"sync"

	"github.com/evmcore/evmcore/evmcore"
	"github.com/holiman/uint256"
)

const maxStackSize = 1024

// Stack is the 256-bit word stack every frame executes against. It is
// backed by a fixed array so push/pop never allocate.
type Stack struct {
	data       [maxStackSize]uint256.Int
	stackPointer int
}

var stackPool = sync.Pool{
	New: func() any { return new(Stack) },
}

// NewStack returns an empty stack, reusing a pooled allocation when one is
// available.
func NewStack() *Stack {
	s := stackPool.Get().(*Stack)
	s.stackPointer = 0
	return s
}

// ReturnStack releases a stack back to the pool. The caller must not use s
// afterwards.
func ReturnStack(s *Stack) {
	stackPool.Put(s)
}

func (s *Stack) Len() int { return s.stackPointer }

func (s *Stack) push(v *uint256.Int) error {
	if s.stackPointer >= maxStackSize {
		return evmcore.ErrStackOverflow
	}
	s.data[s.stackPointer] = *v
	s.stackPointer++
	return nil
}

func (s *Stack) pop() (uint256.Int, error) {
	if s.stackPointer == 0 {
		return uint256.Int{}, evmcore.ErrStackUnderflow
	}
	s.stackPointer--
	return s.data[s.stackPointer], nil
}

// peek returns the top of the stack without removing it.
func (s *Stack) peek() (*uint256.Int, error) {
	if s.stackPointer == 0 {
		return nil, evmcore.ErrStackUnderflow
	}
	return &s.data[s.stackPointer-1], nil
}

// peekN returns the n-th entry from the top, 0-indexed.
func (s *Stack) peekN(n int) (*uint256.Int, error) {
	if s.stackPointer <= n {
		return nil, evmcore.ErrStackUnderflow
	}
	return &s.data[s.stackPointer-1-n], nil
}

// dup duplicates the n-th entry from the top (1-indexed, as in DUPn) onto
// the top of the stack.
func (s *Stack) dup(n int) error {
	if s.stackPointer < n {
		return evmcore.ErrStackUnderflow
	}
	if s.stackPointer >= maxStackSize {
		return evmcore.ErrStackOverflow
	}
	s.data[s.stackPointer] = s.data[s.stackPointer-n]
	s.stackPointer++
	return nil
}

// swap exchanges the top of the stack with the n-th entry from the top
// (1-indexed, as in SWAPn).
func (s *Stack) swap(n int) error {
	if s.stackPointer <= n {
		return evmcore.ErrStackUnderflow
	}
	top := s.stackPointer - 1
	s.data[top], s.data[top-n] = s.data[top-n], s.data[top]
	return nil
}
