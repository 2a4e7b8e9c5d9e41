package apriori

import (
	"fmt"
	"strconv"
)

// Rule is an association rule Antecedent -> Consequent derived from one
// frequent itemset. The two sides are disjoint and their union is the
// originating itemset.
type Rule struct {
	Antecedent Itemset
	Consequent Itemset
	AllFreq    int // support of Antecedent ∪ Consequent
	LeftFreq   int // support of Antecedent
}

// Confidence is AllFreq / LeftFreq, always in (0, 1] for rules produced by
// MakeRules.
func (r Rule) Confidence() float64 {
	return float64(r.AllFreq) / float64(r.LeftFreq)
}

// Itemset returns the originating itemset.
func (r Rule) Itemset() Itemset {
	all := make([]Item, 0, len(r.Antecedent)+len(r.Consequent))
	all = append(all, r.Antecedent...)
	all = append(all, r.Consequent...)
	return NewItemset(all...)
}

func (r Rule) String() string {
	return fmt.Sprintf("{%s} -> {%s} - frequency: %d, confidence = %s",
		r.Antecedent, r.Consequent, r.AllFreq, FormatConfidence(r.Confidence()))
}

// FormatConfidence renders a confidence with the shortest representation
// that round-trips.
func FormatConfidence(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64)
}

// MakeRules derives every rule of the itemsets in level. earlier[i] must
// hold the frequent (i+1)-itemsets of the same run for every size below
// level's; each nonempty proper subset of a frequent itemset is used as an
// antecedent, with the remaining items as the consequent.
//
// Itemsets are visited in sorted order and antecedents in combination order,
// so the returned slice is deterministic. No transactions are read.
func MakeRules(level *FrequencyTable, earlier []*FrequencyTable) ([]Rule, error) {
	n := level.Size()
	if n < 2 || level.Len() == 0 {
		return nil, nil
	}
	if len(earlier) < n-1 {
		return nil, fmt.Errorf("%w: size-%d itemsets need %d lower tables, got %d",
			ErrLevelMismatch, n, n-1, len(earlier))
	}
	for i := 0; i < n-1; i++ {
		if earlier[i] == nil || earlier[i].Size() != i+1 {
			return nil, fmt.Errorf("%w: table %d does not hold size-%d itemsets", ErrLevelMismatch, i, i+1)
		}
	}

	var rules []Rule
	inLeft := make([]bool, n)

	for _, e := range level.Entries() {
		items := e.Items
		for size := 1; size < n; size++ {
			var lookupErr error
			forEachCombination(n, size, func(idx []int) {
				if lookupErr != nil {
					return
				}

				for i := range inLeft {
					inLeft[i] = false
				}
				left := make(Itemset, 0, size)
				for _, i := range idx {
					inLeft[i] = true
					left = append(left, items[i])
				}
				right := make(Itemset, 0, n-size)
				for i, it := range items {
					if !inLeft[i] {
						right = append(right, it)
					}
				}

				leftFreq, ok := earlier[size-1].Get(left)
				if !ok || leftFreq <= 0 {
					lookupErr = fmt.Errorf("%w: {%s} of {%s}", ErrMissingAntecedent, left, items)
					return
				}

				rules = append(rules, Rule{
					Antecedent: left,
					Consequent: right,
					AllFreq:    e.Count,
					LeftFreq:   leftFreq,
				})
			})
			if lookupErr != nil {
				return nil, lookupErr
			}
		}
	}

	return rules, nil
}
