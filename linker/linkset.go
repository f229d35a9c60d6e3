package linker

import (
	"github.com/wippyai/wasm-host/wasm"
)

// Binding is the resolution of one distinct import.
type Binding struct {
	Source   Source
	Import   wasm.Import
	Declared wasm.FuncType // the guest's declared signature, for function imports
	// SignatureMismatch is set when a host callable's signature differs from
	// the declared one. The engine rejects such bindings at instantiation.
	SignatureMismatch bool
}

// Resolved reports whether the binding is backed by a host function.
func (b Binding) Resolved() bool {
	_, ok := b.Source.(HostFunc)
	return ok
}

// Path returns "namespace#symbol".
func (b Binding) Path() string {
	return b.Import.Module + "#" + b.Import.Name
}

type importKey struct {
	namespace string
	symbol    string
}

// LinkSet maps every import declaration of a module to its binding.
// Repeated declarations of the same namespace and symbol share one binding.
type LinkSet struct {
	index    map[importKey]int
	bindings []Binding
	imports  int
}

func newLinkSet(n int) *LinkSet {
	return &LinkSet{
		index:    make(map[importKey]int, n),
		bindings: make([]Binding, 0, n),
	}
}

func (l *LinkSet) add(b Binding) {
	l.imports++
	key := importKey{b.Import.Module, b.Import.Name}
	if _, ok := l.index[key]; ok {
		return
	}
	l.index[key] = len(l.bindings)
	l.bindings = append(l.bindings, b)
}

// Lookup returns the binding for an import.
func (l *LinkSet) Lookup(namespace, symbol string) (Binding, bool) {
	i, ok := l.index[importKey{namespace, symbol}]
	if !ok {
		return Binding{}, false
	}
	return l.bindings[i], true
}

// Bindings returns the distinct bindings in first-declaration order.
func (l *LinkSet) Bindings() []Binding {
	return append([]Binding(nil), l.bindings...)
}

// Len returns the number of distinct bindings.
func (l *LinkSet) Len() int {
	return len(l.bindings)
}

// Covers reports whether every import declaration of m has a binding.
func (l *LinkSet) Covers(m *wasm.Module) bool {
	for _, imp := range m.Imports {
		if _, ok := l.Lookup(imp.Module, imp.Name); !ok {
			return false
		}
	}
	return true
}

// Unresolved returns the bindings left to trap stubs, grouped by namespace
// in first-declaration order.
func (l *LinkSet) Unresolved() map[string][]Binding {
	out := make(map[string][]Binding)
	for _, b := range l.bindings {
		if _, ok := b.Source.(TrapFunc); ok {
			out[b.Import.Module] = append(out[b.Import.Module], b)
		}
	}
	return out
}

// Mismatches returns bindings whose host signature differs from the
// declared one.
func (l *LinkSet) Mismatches() []Binding {
	var out []Binding
	for _, b := range l.bindings {
		if b.SignatureMismatch {
			out = append(out, b)
		}
	}
	return out
}
