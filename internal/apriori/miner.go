package apriori

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxLevel is the largest itemset size mined when Miner.MaxLevel is
// left at zero.
const DefaultMaxLevel = 3

// LevelStats summarizes one completed mining level.
type LevelStats struct {
	Level      int
	Candidates int
	Frequent   int
}

// Miner runs the level-wise search. The zero value is not usable: MinSupport
// must be set.
type Miner struct {
	// MinSupport is the minimum number of transactions an itemset must occur
	// in to be frequent. It applies to every level.
	MinSupport int

	// MaxLevel is the largest itemset size to mine. Zero means
	// DefaultMaxLevel.
	MaxLevel int

	// Workers is the number of goroutines used to count candidates. Values
	// below 2 count serially.
	Workers int

	// Logger receives one debug record per level. Nil means slog.Default().
	Logger *slog.Logger

	// OnLevel, when set, is called after each level is pruned.
	OnLevel func(LevelStats)
}

// Result holds the frequent itemsets of a mining run.
type Result struct {
	MinSupport   int
	Transactions int

	// Levels[k-1] holds the frequent k-itemsets. There is always one table
	// per mined level, even when it is empty.
	Levels []*FrequencyTable
}

// RuleSet is the ranked rule list derived from one level.
type RuleSet struct {
	Level int
	Rules []Rule
}

func (m *Miner) maxLevel() int {
	if m.MaxLevel == 0 {
		return DefaultMaxLevel
	}
	return m.MaxLevel
}

func (m *Miner) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

// Mine counts and prunes singles, then repeats candidate generation,
// counting and pruning until MaxLevel is reached. Once a level comes out
// empty every later level is empty too, so the remaining tables are filled
// in without scanning the transactions again.
func (m *Miner) Mine(ctx context.Context, store *TransactionStore) (*Result, error) {
	if m.MinSupport < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidThreshold, m.MinSupport)
	}
	maxLevel := m.maxLevel()
	if maxLevel < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLevel, maxLevel)
	}

	log := m.logger()
	res := &Result{
		MinSupport:   m.MinSupport,
		Transactions: store.Len(),
		Levels:       make([]*FrequencyTable, 0, maxLevel),
	}

	for level := 1; level <= maxLevel; level++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var candidates *FrequencyTable
		if level == 1 {
			candidates = CountSingles(store)
		} else {
			candidates = MakeCandidates(res.Levels[level-2])
			if err := CountCandidates(ctx, candidates, store, m.Workers); err != nil {
				return nil, fmt.Errorf("failed to count level %d candidates: %w", level, err)
			}
		}

		frequent := Prune(candidates, m.MinSupport)
		res.Levels = append(res.Levels, frequent)

		stats := LevelStats{Level: level, Candidates: candidates.Len(), Frequent: frequent.Len()}
		log.Debug("mined level",
			"level", level,
			"candidates", stats.Candidates,
			"frequent", stats.Frequent)
		if m.OnLevel != nil {
			m.OnLevel(stats)
		}
	}

	return res, nil
}

// Level returns the frequent k-itemsets, or nil when k was not mined.
func (r *Result) Level(k int) *FrequencyTable {
	if k < 1 || k > len(r.Levels) {
		return nil
	}
	return r.Levels[k-1]
}

// Rules derives and ranks the rules of every level from 2 upward. Levels
// only read the finished frequency tables, so they are derived concurrently.
func (r *Result) Rules(ctx context.Context) ([]RuleSet, error) {
	if len(r.Levels) < 2 {
		return nil, nil
	}

	sets := make([]RuleSet, len(r.Levels)-1)
	g, gCtx := errgroup.WithContext(ctx)
	for level := 2; level <= len(r.Levels); level++ {
		level := level
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			rules, err := MakeRules(r.Levels[level-1], r.Levels[:level-1])
			if err != nil {
				return fmt.Errorf("failed to derive level %d rules: %w", level, err)
			}
			SortRules(rules)
			sets[level-2] = RuleSet{Level: level, Rules: rules}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return sets, nil
}
