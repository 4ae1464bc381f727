// Package keymap implements the hierarchical, hash-bucketed command
// keymap: a name, a parent link for inheritance, and 64 hash buckets of
// collision chains mapping a 32-bit key code to either a command function
// or a child (prefix) keymap.
package keymap

import (
	"sync/atomic"

	"github.com/wllclngn/muedit/internal/input/key"
)

// Code is the 32-bit key code carrying codepoint and modifier bits. The
// legacy encoding reserves bit 0x10000000 for Control and 0x20000000 for
// Meta; Control-X and Escape are modeled as prefix maps rather than bits.
type Code uint32

const (
	CodeControl Code = 0x10000000
	CodeMeta    Code = 0x20000000

	codeMask = 0x0FFFFFFF
)

// CodeFromEvent packs a key.Event into the legacy 32-bit representation.
func CodeFromEvent(e key.Event) Code {
	var c Code
	if e.IsRune() {
		c = Code(e.Rune) & codeMask
	} else {
		c = Code(e.Key) & codeMask
	}
	if e.Modifiers.HasCtrl() {
		c |= CodeControl
	}
	if e.Modifiers.HasMeta() || e.Modifiers.HasAlt() {
		c |= CodeMeta
	}
	return c
}

// CommandFunc is the bound command entry point: fn(prefix_flag,
// repeat_count) -> error.
type CommandFunc func(prefixFlag bool, repeatCount int) error

const numBuckets = 64

// binding is a tagged union: exactly one of Command or Child is set.
type binding struct {
	code     Code
	isPrefix bool
	command  CommandFunc
	child    *Keymap
}

// Keymap is one hash-bucketed level of the keymap hierarchy.
type Keymap struct {
	Name    string
	parent  *Keymap
	buckets [numBuckets][]binding

	collisions atomic.Uint64
}

// New returns an empty keymap with the given name and optional parent
// (nil for a root keymap).
func New(name string, parent *Keymap) *Keymap {
	return &Keymap{Name: name, parent: parent}
}

// hash mixes a 32-bit code using a MurmurHash3-style finalizer and masks
// to 6 bits (64 buckets).
func hash(code Code) int {
	k := uint32(code)
	k ^= k >> 16
	k *= 0x85ebca6b
	k ^= k >> 13
	k *= 0xc2b2ae35
	k ^= k >> 16
	return int(k & 0x3F)
}

// Bind inserts or updates the binding for code with a command function.
// If the bucket is already non-empty at first insertion, the collisions
// counter increments.
func (k *Keymap) Bind(code Code, fn CommandFunc) {
	k.bind(binding{code: code, isPrefix: false, command: fn})
}

// BindChild installs code as a prefix key routing into child.
func (k *Keymap) BindChild(code Code, child *Keymap) {
	k.bind(binding{code: code, isPrefix: true, child: child})
}

func (k *Keymap) bind(b binding) {
	idx := hash(b.code)
	chain := k.buckets[idx]
	for i := range chain {
		if chain[i].code == b.code {
			chain[i] = b
			return
		}
	}
	if len(chain) > 0 {
		k.collisions.Add(1)
	}
	k.buckets[idx] = append(chain, b)
}

// Unbind removes code from this map's own bucket (not the parent chain).
// Returns true if a binding was removed.
func (k *Keymap) Unbind(code Code) bool {
	idx := hash(code)
	chain := k.buckets[idx]
	for i := range chain {
		if chain[i].code == code {
			k.buckets[idx] = append(chain[:i], chain[i+1:]...)
			return true
		}
	}
	return false
}

// Entry is the result of a lookup: either a command or a child prefix
// keymap.
type Entry struct {
	IsPrefix bool
	Command  CommandFunc
	Child    *Keymap
}

// Lookup walks the bucket chain for an exact code match, falling back to
// the parent chain on miss (inheritance).
func (k *Keymap) Lookup(code Code) (Entry, bool) {
	for m := k; m != nil; m = m.parent {
		chain := m.buckets[hash(code)]
		for _, b := range chain {
			if b.code == code {
				return Entry{IsPrefix: b.isPrefix, Command: b.command, Child: b.child}, true
			}
		}
	}
	return Entry{}, false
}

// LookupLocal behaves like Lookup but never follows the parent chain,
// matching the invariant that unbind on this map alone makes lookup miss
// "from this map" even though inheritance may still resolve it.
func (k *Keymap) LookupLocal(code Code) (Entry, bool) {
	chain := k.buckets[hash(code)]
	for _, b := range chain {
		if b.code == code {
			return Entry{IsPrefix: b.isPrefix, Command: b.command, Child: b.child}, true
		}
	}
	return Entry{}, false
}

// Collisions returns the number of bucket collisions recorded since
// creation.
func (k *Keymap) Collisions() uint64 {
	return k.collisions.Load()
}

// Parent returns the inheritance parent, or nil for a root keymap.
func (k *Keymap) Parent() *Keymap {
	return k.parent
}
