package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	actionsPlaceID string
	actionsItemID  string
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "Manage the action-item done checklist",
}

var actionsDoneCmd = &cobra.Command{
	Use:   "done",
	Short: "Mark an action item as done",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Store.MarkActionItemDone(ctx, actionsPlaceID, actionsItemID); err != nil {
			return eris.Wrap(err, "mark action item done")
		}
		fmt.Printf("Marked %s done.\n", actionsItemID)
		return nil
	},
}

var actionsUndoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Clear the done mark on an action item",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Store.UndoActionItemDone(ctx, actionsPlaceID, actionsItemID); err != nil {
			return eris.Wrap(err, "undo action item")
		}
		fmt.Printf("Cleared done mark on %s.\n", actionsItemID)
		return nil
	},
}

func init() {
	actionsCmd.PersistentFlags().StringVar(&actionsPlaceID, "place-id", "", "Google place id (required)")
	actionsCmd.PersistentFlags().StringVar(&actionsItemID, "id", "", "action item id (required)")
	_ = actionsCmd.MarkPersistentFlagRequired("place-id")
	_ = actionsCmd.MarkPersistentFlagRequired("id")
	actionsCmd.AddCommand(actionsDoneCmd, actionsUndoCmd)
	rootCmd.AddCommand(actionsCmd)
}
