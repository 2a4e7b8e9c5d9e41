// Package scanner reads transaction logs into an apriori.TransactionStore.
//
// A log holds one transaction per line; items are separated by whitespace.
// Blank lines are kept as empty transactions so that support ratios stay
// relative to the full log.
package scanner

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/blackwell-systems/rulemine/internal/apriori"
	"github.com/blackwell-systems/rulemine/internal/config"
)

// maxLineBytes bounds a single transaction line.
const maxLineBytes = 16 * 1024 * 1024

// Stats describes what a scan read.
type Stats struct {
	Lines         int // transactions read, including empty ones
	Items         int // item occurrences after deduplication
	DistinctItems int
	Empty         int // transactions with no items
	Skipped       int // comment lines
}

// Scanner turns transaction logs into transaction stores.
type Scanner struct {
	aliases      *config.AliasConfig
	skipComments bool
	logger       *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithAliases rewrites item labels through cfg before deduplication.
func WithAliases(cfg *config.AliasConfig) Option {
	return func(s *Scanner) { s.aliases = cfg }
}

// WithComments skips lines whose first non-blank character is '#'.
func WithComments() Option {
	return func(s *Scanner) { s.skipComments = true }
}

// WithLogger sets the logger used for scan summaries.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) { s.logger = l }
}

// New creates a new Scanner instance.
func New(opts ...Option) *Scanner {
	s := &Scanner{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReadFile scans the transaction log at path.
func (s *Scanner) ReadFile(path string) (*apriori.TransactionStore, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to open transaction log: %w", err)
	}
	defer f.Close()

	store, stats, err := s.Read(f)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read %s: %w", path, err)
	}

	s.logger.Info("scanned transaction log",
		"path", path,
		"transactions", stats.Lines,
		"distinct_items", stats.DistinctItems,
		"empty", stats.Empty)

	return store, stats, nil
}

// Read scans one transaction per line from r. The whole input is read
// before the store is built; on error nothing is returned.
func (s *Scanner) Read(r io.Reader) (*apriori.TransactionStore, Stats, error) {
	var (
		stats    Stats
		txns     [][]apriori.Item
		distinct = make(map[apriori.Item]struct{})
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if s.skipComments && strings.HasPrefix(line, "#") {
			stats.Skipped++
			continue
		}

		fields := strings.Fields(line)
		items := make([]apriori.Item, 0, len(fields))
		for _, f := range fields {
			items = append(items, apriori.Item(s.aliases.Resolve(f)))
		}
		canonical := apriori.NewItemset(items...)

		stats.Lines++
		stats.Items += len(canonical)
		if len(canonical) == 0 {
			stats.Empty++
		}
		for _, it := range canonical {
			distinct[it] = struct{}{}
		}
		txns = append(txns, canonical)
	}
	if err := sc.Err(); err != nil {
		return nil, stats, err
	}

	stats.DistinctItems = len(distinct)
	return apriori.NewTransactionStore(txns), stats, nil
}
