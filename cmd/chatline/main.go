// chatline is a terminal client for the chat backend: login/register,
// browse and open conversations, send messages, upload documents.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ChamsBouzaiene/chatline/internal/api"
	"github.com/ChamsBouzaiene/chatline/internal/chat"
	"github.com/ChamsBouzaiene/chatline/internal/config"
	"github.com/ChamsBouzaiene/chatline/internal/session"
	"github.com/ChamsBouzaiene/chatline/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:   "chatline",
	Short: "Terminal client for the chat backend",
	RunE:  run,
}

var (
	flagServerURL string
	flagTimeout   time.Duration
	flagStateDir  string
	flagVerbose   bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagServerURL, "server-url", config.DefaultServerURL, "chat backend base URL")
	flags.DurationVar(&flagTimeout, "timeout", config.DefaultTimeoutSeconds*time.Second, "request timeout")
	flags.StringVar(&flagStateDir, "state-dir", "", "directory for the persisted session (default: user config dir)")
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "log every request")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("chatline failed")
	}
}

func run(cmd *cobra.Command, args []string) error {
	// Load .env if present before resolving config from the environment.
	_ = godotenv.Load()

	level := zerolog.InfoLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	mgr, err := config.NewManager()
	if err != nil {
		return err
	}
	cfg, err := mgr.Load()
	if err != nil {
		return err
	}

	// Flags win over file and environment, but only when set.
	if cmd.Flags().Changed("server-url") {
		cfg.ServerURL = flagServerURL
	}
	if cmd.Flags().Changed("timeout") {
		cfg.TimeoutSeconds = int(flagTimeout / time.Second)
	}
	if cmd.Flags().Changed("state-dir") {
		cfg.StateDir = flagStateDir
	}

	logger.Debug().Str("server_url", cfg.ServerURL).Str("state_dir", cfg.StateDir).Msg("starting")

	client := api.NewClient(cfg.ServerURL, cfg.Timeout(), logger)
	store := session.NewStore(cfg.StateDir)
	view := ui.NewTerminal(os.Stdout)
	ctrl := chat.NewController(client, store, view, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A failed restore (stale state, unreachable server) is not fatal;
	// the user can still log in.
	if err := ctrl.Restore(ctx); err != nil {
		logger.Warn().Err(err).Msg("could not restore previous session")
	}

	return runREPL(ctx, ctrl, os.Stdin, os.Stdout)
}
