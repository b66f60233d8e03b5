package main

import (
	"fmt"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/solgrid/internal/economy"
	"github.com/talgya/solgrid/internal/engine"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the stored session for the configured mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, db, err := openSession()
		if err != nil {
			return err
		}
		defer db.Close()

		eng := sess.Engine()
		st := sess.Snapshot()

		fmt.Printf("%s (%s)\n", eng.Mode.Title, st.Mode)
		fmt.Printf("  turn %d, %s\n", st.Turn, engine.SolTime(st.ElapsedHours))
		fmt.Printf("  terraforming %.1f%%\n", st.TerraformProgress)
		if eng.Mode.Monument != nil {
			holder := string(st.MonumentController)
			if holder == "" {
				holder = "nobody"
			}
			fmt.Printf("  monument held by %s\n", holder)
		}
		fmt.Printf("  last event: %s\n\n", st.LastEvent)

		ids := make([]economy.PlayerID, 0, len(st.Wallets))
		for p := range st.Wallets {
			ids = append(ids, p)
		}
		slices.Sort(ids)
		owned := map[economy.PlayerID]int{}
		for _, c := range st.Cells {
			owned[c.Owner]++
		}
		for _, p := range ids {
			fmt.Printf("  %-8s %8s %s  %d cells", p, humanize.Comma(st.Wallets[p]), eng.Mode.Currency, owned[p])
			if team, ok := st.Teams[p]; ok && eng.Mode.Energy.Enabled {
				fmt.Printf("  energy %d/%d  base %d", team.Energy.Current, team.Energy.Capacity, team.BaseLevel)
			}
			fmt.Println()
		}

		snaps, err := db.Snapshots()
		if err != nil {
			return err
		}
		if len(snaps) > 0 {
			fmt.Println("\nStored snapshots:")
		}
		for _, s := range snaps {
			fmt.Printf("  %-24s %8s  %s  %s\n", s.Key, humanize.Bytes(uint64(s.RawSize)), s.Digest[:12], s.SavedAt)
		}

		n, err := db.CountEvents(st.Mode)
		if err != nil {
			return err
		}
		fmt.Printf("\n%s events recorded for %s.\n", humanize.Comma(int64(n)), st.Mode)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
