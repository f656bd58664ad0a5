package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/taxirent/bookingservice/internal/app"
	"github.com/taxirent/bookingservice/internal/availability"
	"github.com/taxirent/bookingservice/internal/booking"
	"github.com/taxirent/bookingservice/internal/calendar"
	"github.com/taxirent/bookingservice/internal/db"
	"github.com/taxirent/bookingservice/internal/domain"
)

func newCarsCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "cars",
		Short: "List the cars in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app.App) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tCAR\tTYPE\tDISTRICT\tMORNING\tEVENING\tDEPOSIT")
				for _, car := range a.Cars().List() {
					fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%s\t%s\t%s\n",
						car.ID, car.Brand, car.Model, car.TaxiType, car.District,
						domain.FormatCents(car.MorningPriceCents),
						domain.FormatCents(car.EveningPriceCents),
						domain.FormatCents(car.DepositCents))
				}
				return w.Flush()
			})
		},
	}
}

func newMonthCommand(c *cli) *cobra.Command {
	var carID, month string

	cmd := &cobra.Command{
		Use:   "month",
		Short: "Show a car's availability for one month",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app.App) error {
				session, err := a.Service.Open(cmd.Context(), carID)
				if err != nil {
					return err
				}
				if month != "" {
					ym, err := calendar.ParseYearMonth(month)
					if err != nil {
						return err
					}
					session.ShowMonth(ym)
				}
				renderMonth(cmd.OutOrStdout(), session, c.cfg.Booking.CalendarConfig().WeekStart)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&carID, "car", "", "Car ID")
	cmd.Flags().StringVar(&month, "month", "", "Month to show (YYYY-MM), defaults to the current month")
	_ = cmd.MarkFlagRequired("car")
	return cmd
}

func newBookCommand(c *cli) *cobra.Command {
	var (
		carID      string
		resumeID   string
		token      string
		submit     bool
		checkpoint bool
	)

	cmd := &cobra.Command{
		Use:   "book [step...]",
		Short: "Replay booking page interactions and print the price summary",
		Long: `Replays interactions against a booking session. Steps:
  mode=morning|evening|special   switch the active shift
  click=YYYY-MM-DD               toggle one date
  drag=YYYY-MM-DD..YYYY-MM-DD    drag across dates; backwards clears
  down=DATE enter=DATE up        raw pointer events
  month=next|prev|YYYY-MM        navigate months
  toggle-month                   select or clear the whole month`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if carID == "" && resumeID == "" {
				return fmt.Errorf("--car or --resume is required")
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			return c.withApp(ctx, func(a *app.App) error {
				a.StartMetrics(ctx)

				steps, err := parseSteps(args)
				if err != nil {
					return err
				}

				session, err := openOrResume(cmd, a, carID, resumeID)
				if err != nil {
					return err
				}
				if err := runSteps(out, session, steps); err != nil {
					return err
				}

				renderMonth(out, session, c.cfg.Booking.CalendarConfig().WeekStart)
				fmt.Fprintln(out)
				printSummary(out, session.Summary())

				if checkpoint {
					if err := a.Service.Checkpoint(ctx, session); err != nil {
						return err
					}
					fmt.Fprintf(out, "\nSession saved: %s\n", session.ID())
				}

				if submit {
					conf, err := a.Service.Submit(ctx, session, token)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "\nBooking %s submitted for %s, total %s\n",
						conf.ID, conf.CustomerID, domain.FormatCents(conf.Totals.GrandTotalCents))
					if n := len(a.Published()); n > 0 {
						fmt.Fprintf(out, "%d event(s) recorded locally\n", n)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&carID, "car", "", "Car ID to open a new session for")
	cmd.Flags().StringVar(&resumeID, "resume", "", "Session ID to resume from a checkpoint")
	cmd.Flags().StringVar(&token, "token", "", "Customer bearer token used on submit")
	cmd.Flags().BoolVar(&submit, "submit", false, "Submit the booking after replaying the steps")
	cmd.Flags().BoolVar(&checkpoint, "checkpoint", false, "Save the session so it can be resumed")
	return cmd
}

func openOrResume(cmd *cobra.Command, a *app.App, carID, resumeID string) (*booking.Session, error) {
	if resumeID != "" {
		return a.Service.Resume(cmd.Context(), resumeID)
	}
	return a.Service.Open(cmd.Context(), carID)
}

func newMigrateCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the reservations table used by the postgres availability source",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(c.cfg.Postgres.DSN) == "" {
				return fmt.Errorf("postgres.dsn is not configured")
			}

			dbConfig := db.DefaultConfig()
			dbConfig.DSN = c.cfg.Postgres.DSN
			dbConfig.MaxConns = c.cfg.Postgres.MaxConns
			pool, err := db.NewPool(cmd.Context(), dbConfig)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := availability.EnsureSchema(cmd.Context(), pool); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "reservations table ready")
			return nil
		},
	}
}
