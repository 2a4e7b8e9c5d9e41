package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/rulemine/internal/output"
)

var runsDelete string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored mining runs",
	Long: `List every stored mining run, newest first, with its transaction count,
support threshold, mined levels and how long it took.

Run ids can be shortened to any unique prefix in 'show' and '--delete'.`,
	Example: `  # List runs
  rulemine runs

  # Delete a run and everything mined in it
  rulemine runs --delete 3f2a9c1e`,
	Args: cobra.NoArgs,
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().StringVar(&runsDelete, "delete", "", "delete the run with this id (or unique prefix)")

	RootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore(false)
	if err != nil {
		return err
	}
	defer st.Close()

	if runsDelete != "" {
		run, err := st.GetRun(runsDelete)
		if err != nil {
			return friendlyError(err)
		}
		if err := st.DeleteRun(run.ID); err != nil {
			return friendlyError(err)
		}
		fmt.Printf("Deleted run %s\n", output.ShortID(run.ID))
		return nil
	}

	runs, err := st.ListRuns()
	if err != nil {
		return friendlyError(err)
	}

	fmt.Print(output.RenderRunTable(runs))
	if len(runs) > 0 {
		fmt.Printf("\n%d runs stored\n", len(runs))
	}
	return nil
}
