package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/config"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/db"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/logs"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/server"
)

var (
	configFile string

	rootCmd = &cobra.Command{
		Use:           "arecanut",
		Short:         "Arecanut farm irrigation backend",
		Long:          "Telemetry ingestion, valve automation and farm management API for arecanut farms.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				return os.Setenv("CONFIG_FILE", configFile)
			}
			return nil
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the irrigation scheduler",
		RunE:  serve,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update tables and views",
		RunE:  migrate,
	}

	sweepCmd = &cobra.Command{
		Use:   "sweep",
		Short: "Run one automatic irrigation pass over all auto-mode farms",
		RunE:  sweep,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (overrides CONFIG_FILE)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(sweepCmd)
}

// Execute: точка входа main. Без подкоманды запускается serve.
func Execute() error {
	rootCmd.RunE = serve
	return rootCmd.Execute()
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	app := &server.App{}
	if err := app.Initialize(cfg); err != nil {
		return err
	}
	return app.Run()
}

func migrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}
	logs.Init(logs.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, File: cfg.Logging.File})

	d, err := db.Open(db.Options{DSN: cfg.Database.DSN})
	if err != nil {
		return err
	}
	if sqlDB, err := d.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := db.Migrate(d); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logs.Logger.Info("schema and views are up to date")
	return nil
}

func sweep(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	app := &server.App{}
	if err := app.Initialize(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	n, err := app.SweepOnce(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "appended %d valve events\n", n)
	return nil
}
