package apriori

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
)

// cancelCheckInterval is how many transactions a counting pass processes
// between context checks.
const cancelCheckInterval = 1024

// CountSingles counts, for every item, the number of transactions that
// contain it.
func CountSingles(store *TransactionStore) *FrequencyTable {
	out := NewFrequencyTable(1)
	for _, t := range store.txns {
		for _, it := range t {
			key := Itemset{it}.Key()
			if e, ok := out.entries[key]; ok {
				e.Count++
				continue
			}
			out.entries[key] = &Entry{Items: Itemset{it}, Count: 1}
		}
	}
	return out
}

// CountCandidates replaces the counts in candidates with the number of
// transactions containing each candidate. Each transaction's subsequences of
// the candidate size are enumerated and looked up by key; subsequences that
// are not candidates are ignored.
//
// With workers > 1 the transactions are split into contiguous ranges that
// are counted concurrently and merged by key. The transactions are never
// modified.
func CountCandidates(ctx context.Context, candidates *FrequencyTable, store *TransactionStore, workers int) error {
	candidates.resetCounts()
	k := candidates.Size()
	if candidates.Len() == 0 || k < 1 || k > store.MaxWidth() {
		return nil
	}

	ranges := store.chunks(workers)
	if len(ranges) <= 1 {
		counts, err := countRange(ctx, candidates, store, 0, store.Len())
		if err != nil {
			return err
		}
		mergeCounts(candidates, counts)
		return nil
	}

	partials := make([]map[Key]int, len(ranges))
	g, gCtx := errgroup.WithContext(ctx)
	for i, r := range ranges {
		i, r := i, r
		g.Go(func() error {
			counts, err := countRange(gCtx, candidates, store, r[0], r[1])
			if err != nil {
				return err
			}
			partials[i] = counts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, counts := range partials {
		mergeCounts(candidates, counts)
	}
	return nil
}

// countRange counts candidate occurrences in transactions [from, to). It
// only reads candidates, so concurrent calls are safe.
func countRange(ctx context.Context, candidates *FrequencyTable, store *TransactionStore, from, to int) (map[Key]int, error) {
	k := candidates.Size()
	counts := make(map[Key]int)
	var sb strings.Builder

	for i := from; i < to; i++ {
		if (i-from)%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		t := store.txns[i]
		if len(t) < k {
			continue
		}
		forEachCombination(len(t), k, func(idx []int) {
			key := subsequenceKey(&sb, t, idx)
			if _, ok := candidates.entries[key]; ok {
				counts[key]++
			}
		})
	}

	return counts, nil
}

func mergeCounts(t *FrequencyTable, counts map[Key]int) {
	for key, n := range counts {
		t.entries[key].Count += n
	}
}
