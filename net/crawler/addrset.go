package crawler

import (
	"net/netip"

	"github.com/google/btree"
)

type addrItem netip.AddrPort

func (a addrItem) Less(than btree.Item) bool {
	// Equivalent to netip.AddrPort.Compare (Go 1.22+).
	x, y := netip.AddrPort(a), netip.AddrPort(than.(addrItem))
	if c := x.Addr().Compare(y.Addr()); c != 0 {
		return c < 0
	}
	return x.Port() < y.Port()
}

// addrSet is an ordered set of peer endpoints.
type addrSet struct {
	tree *btree.BTree
}

func newAddrSet() *addrSet {
	return &addrSet{tree: btree.New(32)}
}

// Insert adds addr and reports whether it was not yet present.
func (s *addrSet) Insert(addr netip.AddrPort) bool {
	return s.tree.ReplaceOrInsert(addrItem(addr)) == nil
}

func (s *addrSet) Has(addr netip.AddrPort) bool {
	return s.tree.Has(addrItem(addr))
}

func (s *addrSet) Len() int {
	return s.tree.Len()
}

// First returns up to n members in ascending order.
func (s *addrSet) First(n int) []netip.AddrPort {
	if n > s.tree.Len() {
		n = s.tree.Len()
	}
	if n <= 0 {
		return []netip.AddrPort{}
	}
	out := make([]netip.AddrPort, 0, n)
	s.tree.Ascend(func(i btree.Item) bool {
		out = append(out, netip.AddrPort(i.(addrItem)))
		return len(out) < n
	})
	return out
}
