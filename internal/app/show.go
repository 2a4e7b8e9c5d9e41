package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/rulemine/internal/output"
	"github.com/blackwell-systems/rulemine/internal/store"
)

var (
	showLevel         int
	showMinConfidence float64
	showLimit         int
	showItemsets      bool
	showFormat        string
)

var showCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show the rules of a stored run",
	Long: `Print the ranked rules of a stored run, the latest one by default.

Rules are listed level by level, best first within each level. Use
--min-confidence and --limit to cut the list down, --itemsets to list the
frequent itemsets instead, or --format to re-export the whole run as a
report.`,
	Example: `  # Rules of the latest run
  rulemine show

  # Only confident pair rules of a given run
  rulemine show 3f2a9c1e --level 2 --min-confidence 0.8

  # Frequent triples
  rulemine show --itemsets --level 3

  # Re-export a run as YAML
  rulemine show 3f2a9c1e --format yaml > run.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().IntVar(&showLevel, "level", 0, "only this itemset size (0 for all)")
	showCmd.Flags().Float64Var(&showMinConfidence, "min-confidence", 0, "hide rules below this confidence")
	showCmd.Flags().IntVar(&showLimit, "limit", 0, "show at most this many rules (0 for all)")
	showCmd.Flags().BoolVar(&showItemsets, "itemsets", false, "list frequent itemsets instead of rules")
	showCmd.Flags().StringVar(&showFormat, "format", "", "write the run as a report (text, json, yaml)")

	RootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	if showLevel < 0 {
		return fmt.Errorf("invalid level: %d (must be positive)", showLevel)
	}
	if showMinConfidence < 0 || showMinConfidence > 1 {
		return fmt.Errorf("invalid min-confidence: %v (must be between 0 and 1)", showMinConfidence)
	}
	if err := output.CheckFormat(showFormat); err != nil {
		return err
	}

	st, err := openStore(false)
	if err != nil {
		return err
	}
	defer st.Close()

	var id string
	if len(args) > 0 {
		id = args[0]
	}
	run, err := resolveRun(st, id)
	if err != nil {
		return friendlyError(err)
	}

	if showFormat != "" {
		itemsets, err := st.GetItemsets(run.ID, 0)
		if err != nil {
			return err
		}
		rules, err := st.GetRules(run.ID, 0)
		if err != nil {
			return err
		}
		return output.Write(os.Stdout, output.ReportFromRecords(run, itemsets, rules), showFormat)
	}

	fmt.Printf("Run %s: %d transactions, min support %d, mined %s in %s\n\n",
		output.ShortID(run.ID), run.TransactionCount, run.MinSupport,
		run.CreatedAt.Local().Format("2006-01-02 15:04"), output.FormatDuration(run.Duration))

	if showItemsets {
		itemsets, err := st.GetItemsets(run.ID, showLevel)
		if err != nil {
			return err
		}
		fmt.Print(output.RenderItemsetTable(itemsets, run.TransactionCount))
		return nil
	}

	rules, err := st.GetRules(run.ID, showLevel)
	if err != nil {
		return err
	}
	rules = filterRules(rules, showMinConfidence, showLimit)
	fmt.Print(output.RenderRuleTable(rules))
	return nil
}

// filterRules drops rules below minConfidence and keeps at most limit of
// the rest, in their stored order.
func filterRules(rules []*store.RuleRecord, minConfidence float64, limit int) []*store.RuleRecord {
	kept := make([]*store.RuleRecord, 0, len(rules))
	for _, r := range rules {
		if r.Confidence < minConfidence {
			continue
		}
		kept = append(kept, r)
		if limit > 0 && len(kept) == limit {
			break
		}
	}
	return kept
}
