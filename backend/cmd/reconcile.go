package cmd

import (
	"fmt"

	"lms/backend/services"

	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recompute course progress of every user with submissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, db, err := setup(cmd)
		if err != nil {
			return err
		}

		tracker := services.NewTracker(db, cfg.PassThreshold, cfg.EntranceModuleID, logger)
		n, err := services.NewReconciler(db, tracker, logger).ReconcileAll(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "reconciled %d users\n", n)
		return nil
	},
}
