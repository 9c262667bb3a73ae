// Package strpool implements the per-module string pool (§4.2): an
// append-only ordered set of byte strings, with stable, densely assigned
// indices and amortized O(1) interning via a hash map keyed by content.
package strpool

import "fmt"

// MaxStrings bounds pool cardinality (§3 VLBC_MAX_STRINGS). A real VLBC v1
// pool count is a uint32 on disk, but the assembler/linker only ever hand
// out u32 pool indices that also have to fit as kidx operands, so this cap
// keeps the practical ceiling well inside that range while still catching
// runaway inputs early.
const MaxStrings = 1 << 20

// Pool is an ordered, deduplicated set of byte strings.
type Pool struct {
	strings []string
	index   map[string]int
}

// New returns an empty pool.
func New() *Pool {
	return &Pool{index: make(map[string]int)}
}

// Intern returns the existing index for s if already present, otherwise
// appends s and returns its new index. NUL bytes and the empty string are
// valid keys.
func (p *Pool) Intern(s string) (int, error) {
	if idx, ok := p.index[s]; ok {
		return idx, nil
	}
	if len(p.strings) >= MaxStrings {
		return 0, fmt.Errorf("strpool: cannot intern %q: pool exceeds MaxStrings (%d)", s, MaxStrings)
	}
	idx := len(p.strings)
	p.strings = append(p.strings, s)
	p.index[s] = idx
	return idx, nil
}

// Get returns the string at index, or an error if index is out of range.
func (p *Pool) Get(index int) (string, error) {
	if index < 0 || index >= len(p.strings) {
		return "", fmt.Errorf("strpool: index %d out of range [0,%d)", index, len(p.strings))
	}
	return p.strings[index], nil
}

// Len returns the number of interned strings.
func (p *Pool) Len() int { return len(p.strings) }

// Strings returns the pool contents in insertion order. The returned slice
// must not be mutated by the caller.
func (p *Pool) Strings() []string { return p.strings }

// FromSlice builds a pool from an already-ordered slice of strings, as when
// loading a VLBC module's pool section. It does not re-validate uniqueness;
// a loaded pool is trusted to have been written by this package or
// validated structurally by vlbcfile.Validate.
func FromSlice(strings []string) *Pool {
	p := &Pool{strings: append([]string(nil), strings...), index: make(map[string]int, len(strings))}
	for i, s := range p.strings {
		if _, ok := p.index[s]; !ok {
			p.index[s] = i
		}
	}
	return p
}
