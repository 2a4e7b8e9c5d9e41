package store

import (
	"slices"
	"time"

	"github.com/blackwell-systems/rulemine/internal/apriori"
)

// Run is one stored mining run.
type Run struct {
	ID               string
	CreatedAt        time.Time
	SourcePath       string
	TransactionCount int
	MinSupport       int
	MaxLevel         int
	Duration         time.Duration
}

// ItemsetRecord is a frequent itemset of a stored run.
type ItemsetRecord struct {
	Level int
	Items []string
	Count int
}

// RuleRecord is a ranked rule of a stored run. Position is the rule's rank
// within its level, starting at 0.
type RuleRecord struct {
	Level      int
	Position   int
	Antecedent []string
	Consequent []string
	AllFreq    int
	LeftFreq   int
	Confidence float64
}

// LevelSummary counts what a run found at one level.
type LevelSummary struct {
	Level    int
	Itemsets int
	Rules    int
}

// sortItemsets orders records by level, then by item sequence.
func sortItemsets(records []*ItemsetRecord) {
	slices.SortStableFunc(records, func(a, b *ItemsetRecord) int {
		if a.Level != b.Level {
			return a.Level - b.Level
		}
		return slices.Compare(a.Items, b.Items)
	})
}

// ItemsetRecords flattens the frequent itemsets of res, level by level.
func ItemsetRecords(res *apriori.Result) []*ItemsetRecord {
	var records []*ItemsetRecord
	for i, table := range res.Levels {
		for _, e := range table.Entries() {
			records = append(records, &ItemsetRecord{
				Level: i + 1,
				Items: e.Items.Strings(),
				Count: e.Count,
			})
		}
	}
	return records
}

// RuleRecords flattens ranked rule sets, keeping each rule's rank as its
// Position.
func RuleRecords(sets []apriori.RuleSet) []*RuleRecord {
	var records []*RuleRecord
	for _, set := range sets {
		for pos, r := range set.Rules {
			records = append(records, &RuleRecord{
				Level:      set.Level,
				Position:   pos,
				Antecedent: r.Antecedent.Strings(),
				Consequent: r.Consequent.Strings(),
				AllFreq:    r.AllFreq,
				LeftFreq:   r.LeftFreq,
				Confidence: r.Confidence(),
			})
		}
	}
	return records
}

// Rule converts the record back into an apriori.Rule.
func (r *RuleRecord) Rule() apriori.Rule {
	return apriori.Rule{
		Antecedent: toItemset(r.Antecedent),
		Consequent: toItemset(r.Consequent),
		AllFreq:    r.AllFreq,
		LeftFreq:   r.LeftFreq,
	}
}

func toItemset(items []string) apriori.Itemset {
	s := make(apriori.Itemset, len(items))
	for i, it := range items {
		s[i] = apriori.Item(it)
	}
	return s
}
