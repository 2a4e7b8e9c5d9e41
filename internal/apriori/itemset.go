package apriori

import (
	"slices"
	"strconv"
	"strings"
)

// Item is an opaque item label. Items are ordered by byte-wise string
// comparison.
type Item string

// Key is the canonical identity of an Itemset. Two itemsets are equal iff
// their keys are equal. Keys are length-prefixed so that item labels may
// contain any character without colliding.
type Key string

// Itemset is a set of distinct items held in ascending order.
type Itemset []Item

// NewItemset returns the canonical form of items: sorted, without empty
// labels and without duplicates. The input slice is not modified.
func NewItemset(items ...Item) Itemset {
	s := make(Itemset, 0, len(items))
	for _, it := range items {
		if it != "" {
			s = append(s, it)
		}
	}
	slices.Sort(s)
	return slices.Compact(s)
}

// Key returns the canonical key of the itemset.
func (s Itemset) Key() Key {
	var sb strings.Builder
	for _, it := range s {
		sb.WriteString(strconv.Itoa(len(it)))
		sb.WriteByte(':')
		sb.WriteString(string(it))
	}
	return Key(sb.String())
}

// String joins the items with single spaces.
func (s Itemset) String() string {
	parts := make([]string, len(s))
	for i, it := range s {
		parts[i] = string(it)
	}
	return strings.Join(parts, " ")
}

// Strings returns the items as plain strings.
func (s Itemset) Strings() []string {
	out := make([]string, len(s))
	for i, it := range s {
		out[i] = string(it)
	}
	return out
}

// Contains reports whether it is a member of s.
func (s Itemset) Contains(it Item) bool {
	_, found := slices.BinarySearch(s, it)
	return found
}

// Equal reports whether s and o hold the same items.
func (s Itemset) Equal(o Itemset) bool {
	return slices.Equal(s, o)
}

// Clone returns a copy that does not share storage with s.
func (s Itemset) Clone() Itemset {
	return slices.Clone(s)
}

// CompareItemsets orders itemsets lexicographically by their item
// sequences; a proper prefix sorts first.
func CompareItemsets(a, b Itemset) int {
	return slices.Compare(a, b)
}

// hasPrefix reports whether a and b agree on their first n items.
func hasPrefix(a, b Itemset, n int) bool {
	if len(a) < n || len(b) < n {
		return false
	}
	return slices.Equal(a[:n], b[:n])
}

// forEachCombination calls fn with the index sets of every k-combination of
// n elements, in lexicographic order. The slice passed to fn is reused
// between calls.
func forEachCombination(n, k int, fn func(idx []int)) {
	if k <= 0 || k > n {
		return
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		fn(idx)

		// Advance the rightmost index that still has room.
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// subsequenceKey builds the key of the items of t selected by idx without
// materializing the intermediate Itemset.
func subsequenceKey(sb *strings.Builder, t Itemset, idx []int) Key {
	sb.Reset()
	for _, i := range idx {
		sb.WriteString(strconv.Itoa(len(t[i])))
		sb.WriteByte(':')
		sb.WriteString(string(t[i]))
	}
	return Key(sb.String())
}
