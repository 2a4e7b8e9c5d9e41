// Package apriori mines frequent itemsets from a transaction store and
// derives association rules ranked by confidence.
//
// Mining is level-wise. Level 1 counts single items directly; every later
// level k+1 is produced by:
//
//   - MakeCandidates: prefix-join of the frequent k-itemsets (two itemsets
//     sharing their first k-1 items yield one (k+1)-candidate)
//   - CountCandidates: one pass over the transactions, enumerating each
//     transaction's (k+1)-subsequences and looking them up by key
//   - Prune: drop candidates below the minimum support
//
// Because support never grows when an itemset is extended, pruning a level
// before expanding it never loses a frequent superset.
//
// Example usage:
//
//	txns := apriori.NewTransactionStore([][]apriori.Item{
//		{"a", "b"}, {"a", "b", "c"}, {"a", "c"}, {"b", "c"},
//	})
//
//	m := &apriori.Miner{MinSupport: 2, MaxLevel: 3}
//	res, err := m.Mine(ctx, txns)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ruleSets, err := res.Rules(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, rs := range ruleSets {
//		for _, r := range rs.Rules {
//			fmt.Println(r)
//		}
//	}
package apriori
