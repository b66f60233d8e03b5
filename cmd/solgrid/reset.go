package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/talgya/solgrid/internal/config"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the stored session for the configured mode",
	Long: `Replaces the stored session with a fresh one: initial wallets, new landing
positions and no owned cells. The event log is kept.

With --prune, snapshots stored under keys no known mode uses any more
(older versions of a preset, removed custom modes) are deleted too.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, db, err := openSession()
		if err != nil {
			return err
		}
		defer db.Close()

		st, err := sess.Reset(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", st.Mode, st.LastEvent)
		for p, team := range st.Teams {
			fmt.Printf("  %-8s landed at %s\n", p, team.LandingCell)
		}

		if !viper.GetBool("prune") {
			return nil
		}
		modes, err := config.Load(viper.GetString("modes_file"))
		if err != nil {
			return err
		}
		keep := make(map[string]bool, len(modes))
		for _, m := range modes {
			keep[m.Key] = true
		}
		pruned, err := db.PruneSnapshots(keep)
		if err != nil {
			return err
		}
		for _, key := range pruned {
			fmt.Printf("  pruned snapshot %s\n", key)
		}
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("prune", false, "also delete snapshots of unknown mode keys")
	_ = viper.BindPFlag("prune", resetCmd.Flags().Lookup("prune"))
	rootCmd.AddCommand(resetCmd)
}
