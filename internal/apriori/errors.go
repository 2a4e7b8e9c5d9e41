package apriori

import "errors"

var (
	// ErrInvalidThreshold is returned when the minimum support is below 1.
	ErrInvalidThreshold = errors.New("minimum support must be at least 1")

	// ErrInvalidLevel is returned when the maximum itemset level is below 1.
	ErrInvalidLevel = errors.New("maximum level must be at least 1")

	// ErrLevelMismatch is returned when frequency tables passed to MakeRules
	// do not line up with the itemset sizes they are indexed by.
	ErrLevelMismatch = errors.New("frequency tables do not match itemset sizes")

	// ErrMissingAntecedent means a subset of a frequent itemset was not found
	// in the lower level table. It can only happen when the tables were not
	// produced by the same mining run and is fatal to rule derivation.
	ErrMissingAntecedent = errors.New("antecedent missing from lower level table")
)
