package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/foodlens/catalog/config"
	"github.com/foodlens/catalog/internal/app"
	"github.com/foodlens/catalog/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// env is the state shared by all subcommands, set up in PersistentPreRunE
type env struct {
	cfg     *config.Config
	logger  *zap.Logger
	catalog *app.Catalog
}

func newRootCmd() *cobra.Command {
	var (
		logLevel string
		e        = &env{}
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Explore the Open Food Facts product catalog",
		Long: `catalog searches Open Food Facts by name or barcode, pages through results,
and filters or sorts them locally by category, name or nutrition grade.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadEnvFile(); err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			log, err := logger.New(logger.Config{Encoding: "console", Level: logLevel, DisableCaller: true, DisableStacktrace: true})
			if err != nil {
				return err
			}

			catalog, err := app.NewCatalog(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}

			e.cfg, e.logger, e.catalog = cfg, log, catalog
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
			if e.catalog != nil {
				return e.catalog.Close()
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(searchCmd(e))
	cmd.AddCommand(productCmd(e))
	cmd.AddCommand(categoriesCmd(e))

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}
