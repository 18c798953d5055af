// Package stack provides the ordered container behind every "current item"
// in the window manager. The top of the stack (TOS) is the focused element;
// offsets are always counted from TOS.
package stack

import (
	"errors"
	"fmt"
)

// ErrIndex is matched by every IndexError.
var ErrIndex = errors.New("stack index out of range")

// IndexError reports an offset that does not exist in the stack.
type IndexError struct {
	Op     string
	Offset int
	Len    int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("stack %s: offset %d out of range (len %d)", e.Op, e.Offset, e.Len)
}

func (e *IndexError) Is(target error) bool {
	return target == ErrIndex
}

// Stack is an ordered sequence with TOS at the end of the backing slice.
type Stack[T any] struct {
	items []T
}

// New builds a stack by pushing items in order, so the last item is TOS.
func New[T any](items ...T) *Stack[T] {
	s := &Stack[T]{}
	for _, item := range items {
		s.Push(item)
	}
	return s
}

// Len reports the number of elements.
func (s *Stack[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Items returns a copy of the contents, TOS first.
func (s *Stack[T]) Items() []T {
	out := make([]T, 0, s.Len())
	for i := s.Len() - 1; i >= 0; i-- {
		out = append(out, s.items[i])
	}
	return out
}

// Peek returns the element at offset n without removing it.
func (s *Stack[T]) Peek(n int) (T, error) {
	i, err := s.index("peek", n)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.items[i], nil
}

// Push places item at TOS.
func (s *Stack[T]) Push(item T) {
	s.items = append(s.items, item)
}

// Pop removes and returns TOS.
func (s *Stack[T]) Pop() (T, error) {
	i, err := s.index("pop", 0)
	if err != nil {
		var zero T
		return zero, err
	}
	item := s.items[i]
	var zero T
	s.items[i] = zero
	s.items = s.items[:i]
	return item, nil
}

// Swap exchanges TOS with the element at offset n.
func (s *Stack[T]) Swap(n int) error {
	i, err := s.index("swap", n)
	if err != nil {
		return err
	}
	top := len(s.items) - 1
	s.items[top], s.items[i] = s.items[i], s.items[top]
	return nil
}

// RollLeft moves TOS to the bottom; every other element shifts one place
// toward TOS.
func (s *Stack[T]) RollLeft() {
	if s.Len() < 2 {
		return
	}
	top := len(s.items) - 1
	tos := s.items[top]
	copy(s.items[1:], s.items[:top])
	s.items[0] = tos
}

// RollRight moves the bottom element to TOS.
func (s *Stack[T]) RollRight() {
	if s.Len() < 2 {
		return
	}
	top := len(s.items) - 1
	bottom := s.items[0]
	copy(s.items[:top], s.items[1:])
	s.items[top] = bottom
}

// Index returns the offset of the first element (from TOS) matching fn, or
// -1 when nothing matches.
func (s *Stack[T]) Index(fn func(T) bool) int {
	for n := 0; n < s.Len(); n++ {
		if fn(s.items[len(s.items)-1-n]) {
			return n
		}
	}
	return -1
}

// Remove deletes the element at offset n, keeping the relative order of the
// remaining elements.
func (s *Stack[T]) Remove(n int) (T, error) {
	i, err := s.index("remove", n)
	if err != nil {
		var zero T
		return zero, err
	}
	item := s.items[i]
	copy(s.items[i:], s.items[i+1:])
	var zero T
	s.items[len(s.items)-1] = zero
	s.items = s.items[:len(s.items)-1]
	return item, nil
}

func (s *Stack[T]) index(op string, n int) (int, error) {
	if n < 0 || n >= s.Len() {
		return 0, &IndexError{Op: op, Offset: n, Len: s.Len()}
	}
	return len(s.items) - 1 - n, nil
}
