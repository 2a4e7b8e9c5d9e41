package apriori

import (
	"slices"
	"strings"
)

// CompareRules orders rules for reporting. It returns a negative number when
// a ranks before b:
//
//   - higher confidence first (compared exactly on the integer counts)
//   - on equal confidence, the rule whose space-joined antecedent is the
//     greater string first
//
// Rules are equal under this order only when both keys are equal.
func CompareRules(a, b Rule) int {
	lhs := int64(a.AllFreq) * int64(b.LeftFreq)
	rhs := int64(b.AllFreq) * int64(a.LeftFreq)
	switch {
	case lhs > rhs:
		return -1
	case lhs < rhs:
		return 1
	}
	return strings.Compare(b.Antecedent.String(), a.Antecedent.String())
}

// SortRules sorts rules in place by CompareRules. Equal rules keep their
// relative order.
func SortRules(rules []Rule) {
	slices.SortStableFunc(rules, CompareRules)
}
