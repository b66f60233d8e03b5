package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/talgya/solgrid/internal/api"
	"github.com/talgya/solgrid/internal/engine"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the exchange over HTTP",
	Long: `Restores the session for the configured mode and serves the HTTP API,
the SSE event stream and the WebSocket play channel until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// ── Session ───────────────────────────────────────────────────
		sess, db, err := openSession()
		if err != nil {
			return err
		}
		defer db.Close()

		st := sess.Snapshot()
		eng := sess.Engine()
		slog.Info("session restored",
			"mode", st.Mode,
			"turn", st.Turn,
			"sol_time", engine.SolTime(st.ElapsedHours),
			"owned_cells", len(st.Cells),
			"terraform_progress", fmt.Sprintf("%.1f%%", st.TerraformProgress),
		)

		// ── HTTP API ──────────────────────────────────────────────────
		adminKey := viper.GetString("admin_key")
		if adminKey == "" {
			slog.Warn("SOLGRID_ADMIN_KEY not set, reset endpoint disabled")
		}
		port := viper.GetInt("port")
		server := api.NewServer(sess, port, adminKey)
		server.History = db
		server.Cells = db
		httpSrv := server.Start()

		// ── Run ───────────────────────────────────────────────────────
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Printf("\n%s is open: %d cells, %d players.\n", eng.Mode.Title, eng.Zone.Len(), len(eng.Mode.Players))
		fmt.Printf("API: http://localhost:%d/api/v1/status\n", port)
		fmt.Println("Serving... (Ctrl+C to stop)")

		<-ctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP shutdown failed", "error", err)
		}

		fmt.Fprintln(os.Stdout, "Exchange stopped. Session state saved.")
		return nil
	},
}

func init() {
	serveCmd.Flags().Int("port", 8080, "HTTP listen port")
	serveCmd.Flags().String("admin_key", "", "bearer token required by POST /api/v1/reset")
	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("admin_key", serveCmd.Flags().Lookup("admin_key"))
	rootCmd.AddCommand(serveCmd)
}
