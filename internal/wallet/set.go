// Package wallet holds the set of operator-controlled ledger addresses.
package wallet

import (
	"fmt"

	"tron-receipt-validator/internal/tron"
)

// Set is an immutable set of normalized TRON addresses used only for
// membership testing. It is safe for concurrent readers.
type Set struct {
	addrs map[string]struct{}
}

// NewSet normalizes the given addresses and builds a Set. Any address that
// cannot be normalized fails construction.
func NewSet(addresses []string) (*Set, error) {
	addrs := make(map[string]struct{}, len(addresses))
	for _, a := range addresses {
		norm, err := tron.NormalizeAddress(a)
		if err != nil {
			return nil, fmt.Errorf("wallet address %q: %w", a, err)
		}
		addrs[norm] = struct{}{}
	}
	return &Set{addrs: addrs}, nil
}

// Contains reports whether the normalized address belongs to the set.
func (s *Set) Contains(normalized string) bool {
	_, ok := s.addrs[normalized]
	return ok
}

// Len returns the number of addresses in the set.
func (s *Set) Len() int {
	return len(s.addrs)
}

// Addresses returns a copy of the normalized addresses.
func (s *Set) Addresses() []string {
	out := make([]string, 0, len(s.addrs))
	for a := range s.addrs {
		out = append(out, a)
	}
	return out
}
