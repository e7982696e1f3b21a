// Package vars provides the variable store a script reads its arguments from
// and writes its pid and result bindings to.
//
// # Semantics
//
// Every slot holds a string. Integers are stored in their decimal text form,
// so a result written by one group is read back verbatim as an argument by a
// later one. Slots live for the whole run and any group may overwrite any
// slot: execution order alone decides which value a read observes.
//
// # Concurrency Model
//
// The runner mutates the store only between waits, never from two
// coordinators at once. The map is still guarded by an RWMutex because the
// health endpoint and tests read it from other goroutines.
package vars

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
)

// ErrUnknownVariable is returned when reading a slot that was never declared.
var ErrUnknownVariable = errors.New("unknown variable")

// Value is the tagged value held by a slot. Text and Int are the only kinds.
type Value interface {
	// String returns the text form arguments are resolved to.
	String() string
	isValue()
}

// Text is a plain string value.
type Text string

func (t Text) String() string { return string(t) }
func (Text) isValue() {}

// Int is an integer value; it reads back as its decimal form.
type Int int64

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }
func (Int) isValue() {}

// Store is a thread-safe map of named slots.
type Store struct {
	mu    sync.RWMutex
	slots map[string]Value
}

// New creates an empty store.
func New() *Store {
	return &Store{slots: make(map[string]Value)}
}

// Declare creates a slot holding initial unless the slot already exists.
func (s *Store) Declare(name, initial string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.slots[name]; !ok {
		s.slots[name] = Text(initial)
	}
}

// Set overwrites a slot, creating it if needed.
func (s *Store) Set(name string, v Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[name] = v
}

// SetInt overwrites a slot with the decimal form of n.
func (s *Store) SetInt(name string, n int) {
	s.Set(name, Int(n))
}

// Lookup returns the raw value of a slot.
func (s *Store) Lookup(name string) (Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.slots[name]
	return v, ok
}

// Get returns the current text of a slot.
func (s *Store) Get(name string) (string, error) {
	v, ok := s.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: $%s", ErrUnknownVariable, name)
	}
	return v.String(), nil
}

// Snapshot copies the current text of every slot.
func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.slots))
	for name, v := range s.slots {
		out[name] = v.String()
	}
	return out
}
