package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taxirent/bookingservice/internal/app"
	"github.com/taxirent/bookingservice/internal/config"
	"github.com/taxirent/bookingservice/internal/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// cli carries state shared by every subcommand.
type cli struct {
	configPath string
	cfg        *config.Config
}

func newRootCommand() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "booking-calendar",
		Short:         "Taxi rental booking calendar",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			if err := log.Init(cfg.Log.Level); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "config.yaml", "Path to the configuration file")

	root.AddCommand(
		newCarsCommand(c),
		newMonthCommand(c),
		newBookCommand(c),
		newMigrateCommand(c),
	)
	return root
}

// withApp builds the application, runs fn and shuts everything down.
func (c *cli) withApp(ctx context.Context, fn func(a *app.App) error) error {
	a, err := app.New(ctx, c.cfg)
	if err != nil {
		return err
	}
	defer a.Shutdown(ctx)
	return fn(a)
}
