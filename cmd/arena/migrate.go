package main

import (
	"github.com/spf13/cobra"

	"github.com/emilythestrangee/sysdesign-arena/backend/internal/database"
)

func runMigrate(cmd *cobra.Command, args []string) error {
	_, logger, db, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db.GetDB()); err != nil {
		return err
	}
	logger.Info("schema up to date")
	return nil
}
