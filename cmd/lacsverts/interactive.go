package main

import (
	"context"

	"lacsverts/cmd/lacsverts/app"
	"lacsverts/cmd/lacsverts/ui"
	"lacsverts/internal/config"
	"lacsverts/internal/logging"
	"lacsverts/internal/session"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var startPath string

func init() {
	rootCmd.Flags().StringVar(&startPath, "page", "/", "Page to open first (/, /lakes, /reports, /map, /awareness)")
}

// runInteractive launches the terminal UI.
func runInteractive(cmd *cobra.Command, args []string) error {
	env, err := bootstrap()
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	opts := app.Options{
		Styles:    ui.NewStyles(ui.DetectTheme(env.cfg.UI.DarkMode)),
		Backend:   env.client,
		Auth:      env.authFlow(false),
		Store:     env.store,
		Logout:    env.gateway.Logout,
		StartPath: startPath,
	}

	// Another terminal may log in or out while the UI runs.
	if env.cfg.Session.Backend != config.SessionBackendMemory {
		events, err := session.Watch(ctx, env.cfg.Session.Path)
		if err != nil {
			logging.Get(logging.CategorySession).Warn("session watch unavailable", zap.Error(err))
		} else {
			opts.SessionEvents = events
		}
	}

	return app.Run(ctx, opts)
}
