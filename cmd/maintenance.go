package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	recomputeUser string
	exportUser    string
	exportOut     string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "Schema up to date (%s)\n", a.Config.Database.Driver)
		return nil
	},
}

var recomputeCmd = &cobra.Command{
	Use:   "recompute-metrics",
	Short: "Recompute stored progress metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.Close()

		if recomputeUser != "" {
			m, err := a.Metrics.Recompute(cmd.Context(), recomputeUser)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\twins=%d\tconsistency=%.1f\tstreak=%d\trecovery=%d\n",
				m.UserID, m.WinsStacked, m.ConsistencyRate, m.BaselineStreak, m.RecoveryStrength)
			return nil
		}
		n, err := a.Metrics.RecomputeAll(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Recomputed metrics for %d users\n", n)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export-checkins",
	Short: "Write a user's check-ins to an xlsx file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportUser == "" {
			return fmt.Errorf("--user is required")
		}
		out := exportOut
		if out == "" {
			out = fmt.Sprintf("checkins-%s.xlsx", exportUser)
		}
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.Close()

		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := a.Services.Export.WriteCheckIns(cmd.Context(), exportUser, f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
		return nil
	},
}

func init() {
	recomputeCmd.Flags().StringVar(&recomputeUser, "user", "", "Only recompute this user")
	exportCmd.Flags().StringVar(&exportUser, "user", "", "User whose check-ins to export")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (default checkins-<user>.xlsx)")
}
