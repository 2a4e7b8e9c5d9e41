package apriori

// Prune returns a new table holding exactly the entries of t whose count is
// at least threshold. t is not modified.
func Prune(t *FrequencyTable, threshold int) *FrequencyTable {
	out := NewFrequencyTable(t.Size())
	for k, e := range t.entries {
		if e.Count >= threshold {
			out.entries[k] = &Entry{Items: e.Items, Count: e.Count}
		}
	}
	return out
}
