package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Run one reminder scan and wait for the mail to go out",
	RunE:  runRemind,
}

func init() {
	rootCmd.AddCommand(remindCmd)
}

func runRemind(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	rt, err := loadRuntime(ctx, true)
	if err != nil {
		return err
	}
	defer rt.close()

	reminders, dispatcher, err := rt.reminders(ctx)
	if err != nil {
		return err
	}

	res, err := runScan(ctx, reminders)
	dispatcher.Close()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "matched=%d queued=%d skipped=%d\n", res.Matched, res.Queued, res.Skipped)
	return nil
}
