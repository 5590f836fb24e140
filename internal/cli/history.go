package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"testforge/internal/history"
)

var historyLimit uint64

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent targets that failed validation",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Uint64VarP(&historyLimit, "limit", "n", 20, "maximum attempts to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := history.Open(historyPath())
	if err != nil {
		return err
	}
	defer store.Close()

	attempts, err := store.FailedAttempts(historyLimit)
	if err != nil {
		return err
	}
	if len(attempts) == 0 {
		fmt.Println("No failed attempts recorded.")
		return nil
	}

	for _, a := range attempts {
		fmt.Printf("%s  %s\n", a.CreatedAt.Format("2006-01-02 15:04:05"), a.Target)
		for _, f := range a.Findings {
			fmt.Printf("    [%s] %s\n", f.Severity, f.Message)
		}
	}
	return nil
}
