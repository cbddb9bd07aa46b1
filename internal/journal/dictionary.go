package journal

// Unset is the sentinel index meaning "never referenced on this
// stream" for a scope's current pointer.
const Unset int64 = -1

// Table holds the three independent, append-only metadata dictionaries
// (host, source, sourcetype). Entries are assigned monotonically
// increasing indices starting at 0; nothing is ever deleted, replaced,
// or reordered, matching spec.md §3's Dictionary Table contract.
type Table struct {
	entries [numScopes][][]byte
}

// NewTable returns an empty dictionary table.
func NewTable() *Table {
	return &Table{}
}

// Append adds s to scope's dictionary and returns its new index, equal
// to the dictionary's previous length.
func (t *Table) Append(scope Scope, s []byte) int {
	idx := len(t.entries[scope])
	// Own a copy: the caller's backing array may come from a reused
	// read buffer.
	owned := make([]byte, len(s))
	copy(owned, s)
	t.entries[scope] = append(t.entries[scope], owned)
	return idx
}

// Get resolves idx in scope's dictionary. ok is false for an
// out-of-range index (including the Unset sentinel).
func (t *Table) Get(scope Scope, idx int64) (val []byte, ok bool) {
	if idx < 0 || idx >= int64(len(t.entries[scope])) {
		return nil, false
	}
	return t.entries[scope][idx], true
}

// Len reports how many entries scope's dictionary currently holds.
func (t *Table) Len(scope Scope) int {
	return len(t.entries[scope])
}
