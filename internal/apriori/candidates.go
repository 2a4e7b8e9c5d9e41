package apriori

// MakeCandidates generates the (k+1)-itemset candidates from the frequent
// k-itemsets in frequent, using the k-1 x k-1 prefix join: two frequent
// itemsets A < B that share their first k-1 items yield the candidate
// A + last(B). Every candidate starts with a count of zero.
//
// Every frequent (k+1)-itemset has all of its k-subsets frequent, in
// particular the two formed by dropping either of its last two items, so no
// frequent itemset is missed. The transactions are not consulted.
func MakeCandidates(frequent *FrequencyTable) *FrequencyTable {
	k := frequent.Size()
	out := NewFrequencyTable(k + 1)
	if k < 1 {
		return out
	}

	entries := frequent.Entries()
	prefix := k - 1

	for i := 0; i < len(entries); i++ {
		a := entries[i].Items

		// Itemsets sharing a's prefix are contiguous in sorted order.
		for j := i + 1; j < len(entries); j++ {
			b := entries[j].Items
			if !hasPrefix(a, b, prefix) {
				break
			}
			if a[prefix] == b[prefix] {
				continue
			}

			candidate := make(Itemset, 0, k+1)
			candidate = append(candidate, a...)
			candidate = append(candidate, b[prefix])
			out.Set(candidate, 0)
		}
	}

	return out
}
