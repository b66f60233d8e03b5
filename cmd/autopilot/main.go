// Command autopilot plays one seat of a solgrid session through its API.
// It observes the session, picks an action with a fixed heuristic, and
// submits it through the public action endpoint.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/talgya/solgrid/internal/autopilot"
	"github.com/talgya/solgrid/internal/economy"
)

var rootCmd = &cobra.Command{
	Use:   "autopilot",
	Short: "Play one seat of a solgrid session",
	Long: `Observes a running solgrid server, decides one action per cycle and
submits it for the configured player. Settings come from flags or
AUTOPILOT_* environment variables.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()

		apiURL := strings.TrimRight(viper.GetString("api_url"), "/")
		player := economy.PlayerID(viper.GetString("player"))
		interval := viper.GetDuration("interval")
		if player == "" {
			return fmt.Errorf("player is required")
		}
		if interval <= 0 {
			return fmt.Errorf("interval must be positive")
		}

		slog.Info("autopilot starting",
			"api_url", apiURL,
			"player", player,
			"interval", interval,
		)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		waitCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		if err := autopilot.WaitForAPI(waitCtx, apiURL); err != nil {
			return fmt.Errorf("solgrid API did not become ready: %w", err)
		}

		pilot := autopilot.New(apiURL, player, viper.GetString("memory_file"))
		pilot.Run(ctx, interval)

		fmt.Println("Autopilot stopped.")
		return nil
	},
}

func init() {
	f := rootCmd.Flags()
	f.String("api_url", "http://localhost:8080", "solgrid API base URL")
	f.String("player", "bob", "player id to act as")
	f.Duration("interval", 5*time.Second, "time between cycles")
	f.String("memory_file", "", "JSON file for cycle memory (empty = in process only)")
	_ = viper.BindPFlags(f)

	viper.SetEnvPrefix("AUTOPILOT")
	viper.AutomaticEnv()
}

func setupLogging() {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var handler slog.Handler
	if isatty.IsTerminal(os.Stdout.Fd()) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
