// Package isolate identifies logical isolates sharing one host heap.
//
// A Token is compared by reference identity. Its hash code only decides
// where the token's entries start probing in an identity table; two distinct
// tokens may share a hash code.
package isolate

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Token identifies a logical isolate.
type Token struct {
	id   uuid.UUID
	name string
	hash uint32
}

// NewToken creates a token with an explicit hash code.
func NewToken(name string, hash uint32) *Token {
	return &Token{
		id:   uuid.New(),
		name: name,
		hash: hash,
	}
}

// HashCode returns the bucket placement hint.
func (t *Token) HashCode() uint32 {
	return t.hash
}

func (t *Token) Name() string {
	return t.name
}

func (t *Token) ID() uuid.UUID {
	return t.id
}

func (t *Token) String() string {
	return fmt.Sprintf("%s#%d(%s)", t.name, t.hash, t.id.String()[:8])
}

// Source provides the token of the isolate currently executing.
type Source interface {
	Current() *Token
}

// Allocator hands out tokens with sequential hash codes.
type Allocator struct {
	next atomic.Uint32
}

func (a *Allocator) Next(name string) *Token {
	return NewToken(name, a.next.Add(1)-1)
}

// Scope tracks the current isolate of a cooperative scheduler.
type Scope struct {
	mu      sync.RWMutex
	current *Token
}

// NewScope creates a scope whose current isolate is root.
func NewScope(root *Token) *Scope {
	return &Scope{current: root}
}

func (s *Scope) Current() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Enter makes t current and returns a function restoring the previous token.
func (s *Scope) Enter(t *Token) (restore func()) {
	s.mu.Lock()
	prev := s.current
	s.current = t
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		s.current = prev
		s.mu.Unlock()
	}
}

// Run executes fn with t as the current isolate.
func (s *Scope) Run(t *Token, fn func()) {
	restore := s.Enter(t)
	defer restore()
	fn()
}
