package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/rulemine/internal/apriori"
	"github.com/blackwell-systems/rulemine/internal/config"
	"github.com/blackwell-systems/rulemine/internal/output"
	"github.com/blackwell-systems/rulemine/internal/store"
)

var explainRun string

var explainCmd = &cobra.Command{
	Use:   "explain <item>...",
	Short: "Show what tends to appear with the given items",
	Long: `List the stored rules whose antecedent is exactly the given items, most
confident first. Item order does not matter and aliases are applied.

Uses the latest run unless --run is given.`,
	Example: `  # What do people buy with bread?
  rulemine explain bread

  # ...with bread and butter together, in a specific run
  rulemine explain butter bread --run 3f2a9c1e`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("missing item: usage: rulemine explain <item>...")
		}
		return nil
	},
	RunE: runExplain,
}

func init() {
	explainCmd.Flags().StringVar(&explainRun, "run", "", "run id or prefix (default: latest run)")

	RootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	items := canonicalItems(args)
	if len(items) == 0 {
		return fmt.Errorf("missing item: usage: rulemine explain <item>...")
	}

	st, err := openStore(false)
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := resolveRun(st, explainRun)
	if err != nil {
		return friendlyError(err)
	}

	label := "{" + strings.Join(items, " ") + "}"

	support, found, err := itemsetSupport(st, run.ID, items)
	if err != nil {
		return err
	}
	if !found {
		fmt.Printf("%s is not frequent in run %s (min support %d).\n",
			label, output.ShortID(run.ID), run.MinSupport)
		return nil
	}

	rules, err := st.GetRulesByAntecedent(run.ID, items)
	if err != nil {
		return err
	}

	fmt.Printf("%s appears in %d of %d transactions.\n\n", label, support, run.TransactionCount)
	if len(rules) == 0 {
		fmt.Printf("No rules start from %s", label)
		if len(items) >= run.MaxLevel {
			fmt.Printf(" (run %s mined itemsets of up to %d items)", output.ShortID(run.ID), run.MaxLevel)
		}
		fmt.Println(".")
		return nil
	}
	fmt.Print(output.RenderRuleTable(rules))
	return nil
}

// canonicalItems applies aliases and returns the items in itemset order.
func canonicalItems(args []string) []string {
	var aliases *config.AliasConfig
	if dir, err := config.Dir(); err == nil {
		aliases, _ = config.LoadAliases(dir)
	}

	items := make([]apriori.Item, len(args))
	for i, a := range args {
		items[i] = apriori.Item(aliases.Resolve(a))
	}
	return apriori.NewItemset(items...).Strings()
}

// itemsetSupport looks up the support count of items in a run.
func itemsetSupport(st *store.Store, runID string, items []string) (int, bool, error) {
	records, err := st.GetItemsets(runID, len(items))
	if err != nil {
		return 0, false, err
	}
	want := strings.Join(items, " ")
	for _, rec := range records {
		if strings.Join(rec.Items, " ") == want {
			return rec.Count, true, nil
		}
	}
	return 0, false, nil
}
