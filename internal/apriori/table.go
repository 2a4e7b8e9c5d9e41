package apriori

import (
	"fmt"
	"slices"
)

// Entry is one itemset and its support count.
type Entry struct {
	Items Itemset
	Count int
}

// FrequencyTable maps itemsets of one fixed size to their support counts.
type FrequencyTable struct {
	size    int
	entries map[Key]*Entry
}

// NewFrequencyTable creates an empty table for itemsets of the given size.
func NewFrequencyTable(size int) *FrequencyTable {
	return &FrequencyTable{
		size:    size,
		entries: make(map[Key]*Entry),
	}
}

// Size returns the cardinality shared by every itemset in the table.
func (t *FrequencyTable) Size() int {
	return t.size
}

// Len returns the number of itemsets in the table.
func (t *FrequencyTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Get returns the count stored for s and whether s is present.
func (t *FrequencyTable) Get(s Itemset) (int, bool) {
	if t == nil {
		return 0, false
	}
	e, ok := t.entries[s.Key()]
	if !ok {
		return 0, false
	}
	return e.Count, true
}

// Set stores count for s, replacing any previous value. It panics if s does
// not have the table's size, since mixing sizes breaks every level
// invariant the miner relies on.
func (t *FrequencyTable) Set(s Itemset, count int) {
	if len(s) != t.size {
		panic(fmt.Sprintf("apriori: itemset %q of size %d stored in size-%d table", s.String(), len(s), t.size))
	}
	key := s.Key()
	if e, ok := t.entries[key]; ok {
		e.Count = count
		return
	}
	t.entries[key] = &Entry{Items: s.Clone(), Count: count}
}

// Entries returns a copy of the table's contents ordered by CompareItemsets.
func (t *FrequencyTable) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, *e)
	}
	slices.SortFunc(out, func(a, b Entry) int {
		return CompareItemsets(a.Items, b.Items)
	})
	return out
}

// Clone returns a deep copy of the table.
func (t *FrequencyTable) Clone() *FrequencyTable {
	c := NewFrequencyTable(t.size)
	for k, e := range t.entries {
		c.entries[k] = &Entry{Items: e.Items, Count: e.Count}
	}
	return c
}

// resetCounts zeroes every count while keeping the keys.
func (t *FrequencyTable) resetCounts() {
	for _, e := range t.entries {
		e.Count = 0
	}
}
