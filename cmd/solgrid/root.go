package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/talgya/solgrid/internal/world"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "solgrid",
	Short: "Hex-grid territory exchange on lunar and martian terrain",
	Long: `solgrid runs a turn-based resource economy over a hexagonal trade zone.
Players explore cells, claim and trade them, build bases, mine and terraform.

Settings come from flags, SOLGRID_* environment variables, or a config file.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(viper.GetString("log_level"))
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ./solgrid.yaml)")
	pf.String("db", "data/solgrid.db", "SQLite database path")
	pf.String("mode", "lite", "game mode preset")
	pf.String("modes_file", "", "YAML file with extra or overriding mode presets")
	pf.Int64("seed", 0, "deterministic seed for draws (0 = live entropy)")
	pf.String("index", "h3", "cell index: h3 or axial")
	pf.Int("h3_resolution", world.DefaultH3Resolution, "H3 resolution for the h3 index")
	pf.Float64("axial_size", 0.05, "hex size in degrees for the axial index")
	pf.String("log_level", "info", "debug, info, warn or error")

	for _, name := range []string{"db", "mode", "modes_file", "seed", "index", "h3_resolution", "axial_size", "log_level"} {
		_ = viper.BindPFlag(name, pf.Lookup(name))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("solgrid")
	}
	viper.SetEnvPrefix("SOLGRID")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setupLogging installs a text handler on a terminal and JSON otherwise.
func setupLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
