// Package sexp is a small streaming S-expression reader for symbol
// library files. Library files are modest in size but deeply nested,
// so nodes keep their children in slices for cheap indexed access.
package sexp

import (
	"io"
	"strconv"
)

// Node is an S-expression node: either an atom or a list.
type Node interface {
	// IsAtom reports whether this node is an atom (not a list).
	IsAtom() bool

	// String returns the text representation of the node.
	String() string
}

// Atom is an atomic symbol, number, or quoted string.
type Atom string

func (a Atom) IsAtom() bool   { return true }
func (a Atom) String() string { return string(a) }

// List is a parenthesized sequence of nodes.
type List struct {
	items []Node
}

func (l *List) IsAtom() bool { return false }

func (l *List) String() string {
	out := "("
	for i, item := range l.items {
		if i > 0 {
			out += " "
		}
		out += item.String()
	}
	return out + ")"
}

// Items returns the node's children. The first child of a well-formed
// KiCad list is its keyword atom.
func (l *List) Items() []Node {
	return l.items
}

// Len returns the number of children.
func (l *List) Len() int {
	return len(l.items)
}

// Get returns the child at index, or nil when out of range.
func (l *List) Get(index int) Node {
	if index < 0 || index >= len(l.items) {
		return nil
	}
	return l.items[index]
}

// Key returns the keyword atom naming this list, or "".
func (l *List) Key() string {
	if len(l.items) == 0 {
		return ""
	}
	if a, ok := l.items[0].(Atom); ok {
		return string(a)
	}
	return ""
}

// Find returns the first child list with the given keyword.
func (l *List) Find(key string) (*List, bool) {
	for _, item := range l.items {
		if sub, ok := item.(*List); ok && sub.Key() == key {
			return sub, true
		}
	}
	return nil, false
}

// FindAll returns every child list with the given keyword.
func (l *List) FindAll(key string) []*List {
	var out []*List
	for _, item := range l.items {
		if sub, ok := item.(*List); ok && sub.Key() == key {
			out = append(out, sub)
		}
	}
	return out
}

// Str returns the atom at index as a string, or "" when absent.
func (l *List) Str(index int) string {
	if a, ok := l.Get(index).(Atom); ok {
		return string(a)
	}
	return ""
}

// Float returns the atom at index parsed as a float64. Missing or
// malformed values yield the fallback.
func (l *List) Float(index int, fallback float64) float64 {
	a, ok := l.Get(index).(Atom)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseFloat(string(a), 64)
	if err != nil {
		return fallback
	}
	return v
}

// HasFlag reports whether the list carries the given bare atom, as in
// (pin ... hide).
func (l *List) HasFlag(flag string) bool {
	for _, item := range l.items {
		if a, ok := item.(Atom); ok && string(a) == flag {
			return true
		}
	}
	return false
}

// Parse reads all top-level S-expressions from r.
func Parse(r io.Reader) ([]Node, error) {
	return newParser(r).parseAll()
}
