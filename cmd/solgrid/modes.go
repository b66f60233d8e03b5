package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/talgya/solgrid/internal/config"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List the available game mode presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		modes, err := config.Load(viper.GetString("modes_file"))
		if err != nil {
			return err
		}
		for _, name := range modes.Names() {
			m := modes[name]
			fmt.Printf("%-12s %-22s %d players, %s rotation", name, m.Key, len(m.Players), m.Rotation)
			if m.Energy.Enabled {
				fmt.Print(", energy")
			}
			if m.Monument != nil {
				fmt.Print(", monument")
			}
			fmt.Printf("\n             %s\n", m.Title)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modesCmd)
}
