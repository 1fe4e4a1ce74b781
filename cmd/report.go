package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/tribly-hq/dashboard-cli/internal/model"
)

var (
	reportPlaceID string
	reportJSON    bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the GBP health report for a business",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		rep, err := env.Builder.Build(ctx, reportPlaceID)
		if err != nil {
			return eris.Wrap(err, "build report")
		}

		done, err := env.Store.DoneActionItems(ctx, reportPlaceID)
		if err != nil {
			return eris.Wrap(err, "read done action items")
		}

		if reportJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}

		printReport(rep, done)
		return nil
	},
}

func printReport(rep *model.HealthReport, doneIDs []string) {
	done := make(map[string]bool, len(doneIDs))
	for _, id := range doneIDs {
		done[id] = true
	}

	fmt.Printf("GBP health report for %s (generated %s)\n\n", rep.PlaceID, rep.GeneratedAt.Format("2006-01-02 15:04"))

	for _, card := range rep.Cards {
		fmt.Printf("[%s] %s — %s\n", strings.ToUpper(string(card.Severity)), card.Title, card.Status)
		fmt.Printf("    %s\n", card.Description)
		if card.Status != model.StatusGood {
			for _, step := range card.Remediation {
				fmt.Printf("    - %s\n", step)
			}
		}
	}

	if rep.Top3Message != "" {
		fmt.Printf("\nLocal standing: %s\n", rep.Top3Message)
	}

	if len(rep.ActionItems) > 0 {
		fmt.Println("\nAction items:")
		for _, item := range rep.ActionItems {
			mark := " "
			if done[item.ID] {
				mark = "x"
			}
			fmt.Printf("  [%s] (%s) %s\n", mark, item.Priority, item.Title)
		}
	}
}

func init() {
	reportCmd.Flags().StringVar(&reportPlaceID, "place-id", "", "Google place id (required)")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print the report as JSON")
	_ = reportCmd.MarkFlagRequired("place-id")
	rootCmd.AddCommand(reportCmd)
}
