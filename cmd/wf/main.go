package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/widgetfactory/internal/config"
	"github.com/alfredjeanlab/widgetfactory/internal/events"
	"github.com/alfredjeanlab/widgetfactory/internal/store"
	"github.com/alfredjeanlab/widgetfactory/internal/store/postgres"
	"github.com/alfredjeanlab/widgetfactory/internal/store/sqlite"
	"github.com/alfredjeanlab/widgetfactory/internal/ui"
)

var (
	dbURL      string
	configPath string
	jsonOutput bool
	verbose    bool

	cfg         config.Config
	logger      *slog.Logger
	widgetStore store.Store
	publisher   events.Publisher
)

// errSilent makes wf exit 1 after the command already reported the failure.
var errSilent = errors.New("exit status 1")

// skipStore marks commands that never touch the database.
const skipStore = "skip-store"

var rootCmd = &cobra.Command{
	Use:           "wf <command>",
	Short:         "Widget Factory: typed UI widget registry",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ui.Init()

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if dbURL != "" {
			cfg.Database.URL = dbURL
		}

		level := cfg.Log.SlogLevel()
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

		if cmd.Annotations[skipStore] != "" {
			return nil
		}

		widgetStore, err = openStore(cfg.Database)
		if err != nil {
			return err
		}
		logger.Debug("store opened", "postgres", cfg.Database.IsPostgres())

		publisher = newPublisher(cfg.NATS.URL)
		return nil
	},
}

func openStore(db config.DatabaseConfig) (store.Store, error) {
	if db.IsPostgres() {
		return postgres.New(db.URL)
	}
	return sqlite.New(db.SQLitePath())
}

// newPublisher connects to NATS when configured. Event delivery never fails
// a command.
func newPublisher(url string) events.Publisher {
	next := events.Discard
	if url != "" {
		p, err := events.NewNATSPublisher(url)
		if err != nil {
			logger.Warn("events disabled", "err", err)
		} else {
			next = p
		}
	}
	return events.NewLoggingPublisher(next, logger)
}

// closeApp releases the store and publisher opened by PersistentPreRunE.
func closeApp() {
	if publisher != nil {
		publisher.Close()
		publisher = nil
	}
	if widgetStore != nil {
		widgetStore.Close()
		widgetStore = nil
	}
}

// publish emits an event; failures are logged by the LoggingPublisher.
func publish(ctx context.Context, topic string, event any) {
	if publisher != nil {
		_ = publisher.Publish(ctx, topic, event)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "database path or postgres:// URL (default ~/.blackroad/widget-factory.db)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/widgetfactory/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddGroup(
		&cobra.Group{ID: "widgets", Title: "Widgets:"},
		&cobra.Group{ID: "layouts", Title: "Layouts:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false
	rootCmd.SetHelpFunc(helpFunc)

	// Widgets
	rootCmd.AddCommand(createWidgetCmd)
	rootCmd.AddCommand(getWidgetCmd)
	rootCmd.AddCommand(listWidgetsCmd)
	rootCmd.AddCommand(deleteWidgetCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(reactPropsCmd)
	rootCmd.AddCommand(schemaCmd)

	// Layouts
	rootCmd.AddCommand(createLayoutCmd)
	rootCmd.AddCommand(addToLayoutCmd)
	rootCmd.AddCommand(removeFromLayoutCmd)
	rootCmd.AddCommand(showLayoutCmd)
	rootCmd.AddCommand(listLayoutsCmd)
	rootCmd.AddCommand(exportLayoutCmd)
	rootCmd.AddCommand(deleteLayoutCmd)
	rootCmd.AddCommand(applyCmd)

	// System
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	closeApp()
	stop()
	if err != nil {
		if !errors.Is(err, errSilent) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
