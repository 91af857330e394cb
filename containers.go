package xank

import (
	"github.com/ahrtr/gocontainer/stack"
	"github.com/edwingeng/deque"
)

// atomStack is a LIFO of atoms: the parser's working stack and the
// evaluator's operand stack.
type atomStack struct {
	s stack.Interface
}

func newAtomStack() atomStack {
	return atomStack{s: stack.New()}
}

func (s atomStack) push(a *atom) {
	s.s.Push(a)
}

// pop removes and returns the top atom, or nil if the stack is empty.
func (s atomStack) pop() *atom {
	if s.s.IsEmpty() {
		return nil
	}
	return s.s.Pop().(*atom)
}

// top returns the top atom without removing it, or nil if the stack is empty.
func (s atomStack) top() *atom {
	if s.s.IsEmpty() {
		return nil
	}
	return s.s.Peek().(*atom)
}

func (s atomStack) len() int {
	return s.s.Size()
}

// release empties the stack, releasing every atom it held.
func (s atomStack) release(ev *Evaluator) {
	for a := s.pop(); a != nil; a = s.pop() {
		ev.release(a)
	}
}

// atomQueue is a FIFO of atoms: the parser's output queue and the RPN
// sequence.
type atomQueue struct {
	q deque.Deque
}

func newAtomQueue() atomQueue {
	return atomQueue{q: deque.NewDeque()}
}

func (q atomQueue) push(a *atom) {
	q.q.PushBack(a)
}

// shift removes and returns the first atom, or nil if the queue is empty.
func (q atomQueue) shift() *atom {
	if q.q.Empty() {
		return nil
	}
	return q.q.PopFront().(*atom)
}

func (q atomQueue) len() int {
	return q.q.Len()
}

// each calls f on each atom in order.
func (q atomQueue) each(f func(*atom)) {
	q.q.Range(func(i int, v interface{}) bool {
		f(v.(*atom))
		return true
	})
}

// release empties the queue, releasing every atom it held.
func (q atomQueue) release(ev *Evaluator) {
	for a := q.shift(); a != nil; a = q.shift() {
		ev.release(a)
	}
}
