// Package users models the two people at the machine: the buyer in
// front and the operator with the key. Roles do not share behavior
// through a base type; anything that wants to talk to a person takes
// the MessageSink capability.
package users

import (
	"sync"
)

// MessageSink receives human-facing messages for one role.
type MessageSink interface {
	Message(s string)
}

// FuncSink adapts a plain function to MessageSink.
type FuncSink func(string)

func (f FuncSink) Message(s string) { f(s) }

// NopSink swallows messages, handy in tests.
type NopSink struct{}

func (NopSink) Message(string) {}

type AccessLevel uint8

const (
	Staff AccessLevel = iota
	Admin
)

func (a AccessLevel) String() string {
	switch a {
	case Staff:
		return "staff"
	case Admin:
		return "admin"
	}
	return "?"
}

type ID uint32

// Registry issues user identifiers. It replaces a global counter:
// whoever owns the registry owns the id space.
type Registry struct {
	mu   sync.Mutex
	next ID
}

func (r *Registry) nextID() ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	return r.next
}

func (r *Registry) NewBuyer(name string, sink MessageSink) *Buyer {
	if sink == nil {
		sink = NopSink{}
	}
	return &Buyer{ID: r.nextID(), Name: name, sink: sink}
}

func (r *Registry) NewOperator(name string, level AccessLevel, sink MessageSink) *Operator {
	if sink == nil {
		sink = NopSink{}
	}
	return &Operator{
		ID:       r.nextID(),
		Name:     name,
		Level:    level,
		sink:     sink,
		stocking: make(map[string]int),
	}
}
