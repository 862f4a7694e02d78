package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emilythestrangee/sysdesign-arena/backend/internal/stats"
)

// operatorID stands in for the authenticated caller when the CLI runs a bulk
// recalculation.
const operatorID = "cli-operator"

func runRecalculate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	_, logger, db, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	engine := stats.NewEngine(db.GetDB(), logger)

	if recalculateUser != "" {
		row, err := engine.RecalculateOne(ctx, recalculateUser)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: score=%d solutions=%d comments=%d upvotes_given=%d upvotes_received=%d\n",
			row.UserID, row.Score, row.SolutionsCount, row.CommentsCount, row.UpvotesGiven, row.UpvotesReceived)
		return nil
	}

	n, err := engine.RecalculateAll(ctx, operatorID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "updated %d users\n", n)
	return nil
}
