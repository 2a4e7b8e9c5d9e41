package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/rulemine/internal/config"
	"github.com/blackwell-systems/rulemine/internal/output"
	"github.com/blackwell-systems/rulemine/internal/watcher"
)

var (
	watchDebounce time.Duration
	watchFormat   string
	watchNoSave   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <input> <report>",
	Short: "Re-mine a transaction log whenever it changes",
	Long: `Mine the input once, then keep watching it and mine again after every
change, rewriting the report each time. Bursts of writes are coalesced: a
new pass starts once the file has been quiet for --debounce.

Mining settings come from the config file, environment and flags exactly as
for 'rulemine mine'. Stop with Ctrl-C.`,
	Example: `  # Keep rules.txt current while browsing.txt grows
  rulemine watch browsing.txt rules.txt

  # Mine at most once every two seconds of quiet
  rulemine watch browsing.txt rules.txt --debounce 2s`,
	Args: cobra.ExactArgs(2),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Int("min-support", config.DefaultMinSupport, "minimum number of transactions an itemset must appear in")
	watchCmd.Flags().Int("max-level", config.DefaultMaxLevel, "largest itemset size to mine")
	watchCmd.Flags().Int("workers", config.DefaultWorkers, "goroutines used to count candidates")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "quiet period before re-mining")
	watchCmd.Flags().StringVar(&watchFormat, "format", output.FormatText, "report format (text, json, yaml)")
	watchCmd.Flags().BoolVar(&watchNoSave, "no-save", false, "do not store runs in the database")

	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := currentSettings()
	if err != nil {
		return err
	}
	if err := output.CheckFormat(watchFormat); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	job := &mineJob{
		input:  args[0],
		report: args[1],
		format: watchFormat,
		save:   !watchNoSave,
		quiet:  true,
		mining: s.Mining,
	}

	remine := func(ctx context.Context) error {
		outcome, err := job.run(ctx)
		if err != nil {
			return err
		}
		slog.Info("mined",
			"transactions", outcome.result.Transactions,
			"rules", countRules(outcome),
			"run", output.ShortID(outcome.runID),
			"duration", outcome.elapsed.Round(time.Millisecond))
		return nil
	}

	if err := remine(ctx); err != nil {
		return friendlyError(err)
	}

	w, err := watcher.New(job.input, watchDebounce, remine)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}

	fmt.Printf("Watching %s (Ctrl-C to stop)\n", w.Path())
	w.Wait()
	return w.Stop()
}

func countRules(o *mineOutcome) int {
	n := 0
	for _, set := range o.sets {
		n += len(set.Rules)
	}
	return n
}
