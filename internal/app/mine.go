package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/rulemine/internal/apriori"
	"github.com/blackwell-systems/rulemine/internal/config"
	"github.com/blackwell-systems/rulemine/internal/output"
	"github.com/blackwell-systems/rulemine/internal/scanner"
	"github.com/blackwell-systems/rulemine/internal/store"
)

var (
	mineFormat   string
	mineNoSave   bool
	mineQuiet    bool
	mineComments bool
)

var mineCmd = &cobra.Command{
	Use:   "mine [input] [report]",
	Short: "Mine frequent itemsets and association rules from a transaction log",
	Long: `Read a transaction log, find every frequent itemset up to --max-level items
and write the ranked association rules to the report file.

Each input line is one transaction: items separated by whitespace. Item
order and repeats within a line do not matter. Labels can be merged through
an aliases file in the config directory (alias=item per line).

When input or report is omitted and stdin is a terminal, you are prompted
for the missing path.

The report lists, for each level from pairs upward, its rules best first:

  {bread} -> {butter} - frequency: 42, confidence = 0.84

followed by every frequent itemset with its support count. Use --format
json or yaml for machine-readable output.

Unless --no-save is given the run is stored for 'rulemine runs', 'show'
and 'explain'.`,
	Example: `  # Mine with the default support of 100 transactions
  rulemine mine browsing.txt rules.txt

  # Mine four levels deep using all cores
  rulemine mine browsing.txt rules.txt --max-level 4 --workers 8

  # Export JSON without storing the run
  rulemine mine browsing.txt rules.json --format json --no-save`,
	Args: cobra.MaximumNArgs(2),
	RunE: runMine,
}

func init() {
	mineCmd.Flags().Int("min-support", config.DefaultMinSupport, "minimum number of transactions an itemset must appear in")
	mineCmd.Flags().Int("max-level", config.DefaultMaxLevel, "largest itemset size to mine")
	mineCmd.Flags().Int("workers", config.DefaultWorkers, "goroutines used to count candidates")
	mineCmd.Flags().StringVar(&mineFormat, "format", output.FormatText, "report format (text, json, yaml)")
	mineCmd.Flags().BoolVar(&mineNoSave, "no-save", false, "do not store the run in the database")
	mineCmd.Flags().BoolVarP(&mineQuiet, "quiet", "q", false, "suppress progress and summary output")
	mineCmd.Flags().BoolVar(&mineComments, "comments", false, "skip input lines starting with '#'")

	RootCmd.AddCommand(mineCmd)
}

func runMine(cmd *cobra.Command, args []string) error {
	s, err := currentSettings()
	if err != nil {
		return err
	}

	if err := output.CheckFormat(mineFormat); err != nil {
		return err
	}

	input, report, err := resolvePaths(args, stdinIsTTY())
	if err != nil {
		return err
	}

	job := &mineJob{
		input:    input,
		report:   report,
		format:   mineFormat,
		save:     !mineNoSave,
		quiet:    mineQuiet,
		comments: mineComments,
		mining:   s.Mining,
	}

	outcome, err := job.run(cmd.Context())
	if err != nil {
		return friendlyError(err)
	}

	if !mineQuiet {
		fmt.Println()
		fmt.Print(output.RenderLevelSummary(outcome.summaries()))
		if outcome.runID != "" {
			fmt.Printf("\nSaved run %s\n", output.ShortID(outcome.runID))
		}
	}
	fmt.Printf("\nRule discovery completed in %.2f seconds. Check the selected logging file for details.\n",
		outcome.elapsed.Seconds())
	return nil
}

// mineJob is one read-mine-report pass, shared by mine and watch.
type mineJob struct {
	input    string
	report   string
	format   string
	save     bool
	quiet    bool
	comments bool
	mining   config.MiningSettings
}

type mineOutcome struct {
	runID   string
	result  *apriori.Result
	sets    []apriori.RuleSet
	stats   scanner.Stats
	elapsed time.Duration
}

func (j *mineJob) run(ctx context.Context) (*mineOutcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	txns, stats, err := j.read()
	if err != nil {
		return nil, err
	}

	var bar *output.ProgressBar
	if !j.quiet {
		bar = output.NewProgress(j.mining.MaxLevel, "Mining")
	}
	miner := &apriori.Miner{
		MinSupport: j.mining.MinSupport,
		MaxLevel:   j.mining.MaxLevel,
		Workers:    j.mining.Workers,
		Logger:     slog.Default(),
		OnLevel: func(ls apriori.LevelStats) {
			if bar != nil {
				bar.Step(ls.Level, fmt.Sprintf("%d frequent %s", ls.Frequent, output.LevelName(ls.Level)))
			}
		},
	}

	res, err := miner.Mine(ctx, txns)
	if err != nil {
		return nil, fmt.Errorf("failed to mine %s: %w", j.input, err)
	}
	sets, err := res.Rules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to derive rules: %w", err)
	}
	if bar != nil {
		bar.Finish()
	}
	elapsed := time.Since(start)

	outcome := &mineOutcome{result: res, sets: sets, stats: stats, elapsed: elapsed}

	if j.save {
		id, err := j.persist(res, sets, elapsed)
		if err != nil {
			return nil, err
		}
		outcome.runID = id
	}

	rep := output.NewReport(j.input, res, sets)
	rep.RunID = outcome.runID
	if err := writeReportFile(j.report, rep, j.format); err != nil {
		return nil, err
	}

	return outcome, nil
}

func (j *mineJob) read() (*apriori.TransactionStore, scanner.Stats, error) {
	opts := []scanner.Option{scanner.WithLogger(slog.Default())}
	if dir, err := config.Dir(); err == nil {
		aliases, err := config.LoadAliases(dir)
		if err != nil {
			return nil, scanner.Stats{}, fmt.Errorf("failed to load aliases: %w", err)
		}
		opts = append(opts, scanner.WithAliases(aliases))
	}
	if j.comments {
		opts = append(opts, scanner.WithComments())
	}

	var spinner *output.Spinner
	if !j.quiet {
		spinner = output.NewSpinner("Reading transactions")
		spinner.Start()
	}

	txns, stats, err := scanner.New(opts...).ReadFile(j.input)

	if spinner != nil {
		if err != nil {
			spinner.Stop()
		} else {
			spinner.StopWithMessage(fmt.Sprintf("Read %d transactions (%d distinct items)", stats.Lines, stats.DistinctItems))
		}
	}
	return txns, stats, err
}

func (j *mineJob) persist(res *apriori.Result, sets []apriori.RuleSet, elapsed time.Duration) (string, error) {
	st, err := openStore(true)
	if err != nil {
		return "", err
	}
	defer st.Close()

	source := j.input
	if abs, err := filepath.Abs(j.input); err == nil {
		source = abs
	}

	id, err := st.SaveRun(&store.Run{
		SourcePath:       source,
		TransactionCount: res.Transactions,
		MinSupport:       res.MinSupport,
		MaxLevel:         len(res.Levels),
		Duration:         elapsed,
	}, res, sets)
	if err != nil {
		return "", fmt.Errorf("failed to save run: %w", err)
	}
	return id, nil
}

// summaries counts frequent itemsets and rules per level.
func (o *mineOutcome) summaries() []store.LevelSummary {
	out := make([]store.LevelSummary, len(o.result.Levels))
	for i, table := range o.result.Levels {
		out[i] = store.LevelSummary{Level: i + 1, Itemsets: table.Len()}
	}
	for _, set := range o.sets {
		out[set.Level-1].Rules = len(set.Rules)
	}
	return out
}

// writeReportFile replaces the report at path.
func writeReportFile(path string, rep *output.Report, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := output.Write(f, rep, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close report: %w", err)
	}
	return nil
}
