package cli

import (
	"context"
	"fmt"
	"time"

	availabilityservice "hotelbook/internal/availability/service"
	"hotelbook/internal/bookings/events"
	"hotelbook/internal/bootstrap"
	mongoMigration "hotelbook/internal/migrations/mongo"
	"hotelbook/pkg/config"
	"hotelbook/pkg/model"

	"github.com/spf13/cobra"
)

const (
	cliServiceName  = "hotelctl"
	adminTimeout    = 120 * time.Second
	dateLayout      = time.DateOnly
	defaultInitDays = 365
)

// withDatabase connects to Mongo for the duration of fn.
func withDatabase(fn func(ctx context.Context, cfg *config.Config) error) error {
	cfg := config.Load(cliServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	ctx, cancel := context.WithTimeout(context.Background(), adminTimeout)
	defer cancel()
	return fn(ctx, cfg)
}

func withServices(fn func(ctx context.Context, cfg *config.Config, s *bootstrap.Services) error) error {
	return withDatabase(func(ctx context.Context, cfg *config.Config) error {
		services := bootstrap.New(cfg, events.NewNopPublisher(cfg.Log))
		defer services.Close()
		return fn(ctx, cfg, services)
	})
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create collections, schema validators and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(ctx context.Context, cfg *config.Config) error {
				if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo.Database(cfg.MongoDatabaseName), cfg.Log); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migration completed")
				return nil
			})
		},
	}
}

func taxesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taxes",
		Short: "Manage taxes and fees",
	}

	seed := &cobra.Command{
		Use:   "seed",
		Short: "Install the default taxes and fees",
		Long: "Install the default taxes and fees. Every active tax and fee applies to\n" +
			"every booking, so the defaults are installed once for the deployment.\n" +
			"Running seed again updates the same rows.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(func(ctx context.Context, cfg *config.Config, s *bootstrap.Services) error {
				if err := s.Taxes.SeedDefaults(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Seeded default taxes and fees")
				return nil
			})
		},
	}

	cmd.AddCommand(seed)
	return cmd
}

func pricingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pricing",
		Short: "Manage pricing rules",
	}

	var (
		rule     model.PricingRule
		start    string
		end      string
		inactive bool
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a pricing rule",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if rule.StartDate, err = optionalDate(start); err != nil {
				return err
			}
			if rule.EndDate, err = optionalDate(end); err != nil {
				return err
			}
			rule.IsActive = !inactive

			return withServices(func(ctx context.Context, cfg *config.Config, s *bootstrap.Services) error {
				if err := s.Pricing.CreateRule(ctx, &rule); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created pricing rule %s\n", rule.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&rule.HotelID, "hotel", "", "Hotel ID")
	add.Flags().StringVar(&rule.RoomTypeID, "room-type", "", "Room type ID (empty applies to every room type)")
	add.Flags().StringVar(&rule.Name, "name", "", "Rule name")
	add.Flags().StringVar(&rule.RuleType, "type", model.RuleTypeSeason, "SURGE, DISCOUNT, DATE_RANGE, WEEKEND, SEASON or SEASONAL")
	add.Flags().Float64Var(&rule.PercentageChange, "percent", 0, "Percentage change applied to the nightly rate")
	add.Flags().IntVar(&rule.Priority, "priority", 0, "Higher priority rules apply first")
	add.Flags().StringVar(&start, "start", "", "First night the rule applies (YYYY-MM-DD)")
	add.Flags().StringVar(&end, "end", "", "Last night the rule applies (YYYY-MM-DD)")
	add.Flags().BoolVar(&inactive, "inactive", false, "Create the rule disabled")
	_ = add.MarkFlagRequired("hotel")
	_ = add.MarkFlagRequired("name")

	cmd.AddCommand(add)
	return cmd
}

func availabilityCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Inspect and initialize room availability",
	}

	var in availabilityservice.InitInput
	var from, to string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create per-date availability counters for a room type",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if in.From, err = parseDate(from, time.Now().UTC()); err != nil {
				return err
			}
			if in.To, err = parseDate(to, in.From.AddDate(0, 0, defaultInitDays)); err != nil {
				return err
			}

			return withServices(func(ctx context.Context, cfg *config.Config, s *bootstrap.Services) error {
				n, err := s.Availability.InitializeRange(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized %d dates for room type %s\n", n, in.RoomTypeID)
				return nil
			})
		},
	}
	initCmd.Flags().StringVar(&in.HotelID, "hotel", "", "Hotel ID")
	initCmd.Flags().StringVar(&in.RoomTypeID, "room-type", "", "Room type ID")
	initCmd.Flags().IntVar(&in.TotalRooms, "rooms", 0, "Rooms sold per night")
	initCmd.Flags().StringVar(&from, "from", "", "First date (default today)")
	initCmd.Flags().StringVar(&to, "to", "", "Date after the last one (default one year after --from)")
	_ = initCmd.MarkFlagRequired("hotel")
	_ = initCmd.MarkFlagRequired("room-type")
	_ = initCmd.MarkFlagRequired("rooms")

	cmd.AddCommand(initCmd)
	cmd.AddCommand(availabilityCheckCmd(opts))
	return cmd
}

func locksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locks",
		Short: "Manage room locks",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "sweep",
		Short: "Expire room locks whose TTL has passed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(func(ctx context.Context, cfg *config.Config, s *bootstrap.Services) error {
				n, err := s.Locks.Sweep(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Expired %d room locks\n", n)
				return nil
			})
		},
	})
	return cmd
}

func idempotencyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "idempotency",
		Short: "Manage stored idempotent responses",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete idempotency records past their TTL",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(func(ctx context.Context, cfg *config.Config, s *bootstrap.Services) error {
				n, err := s.IdempotencyGate.Purge(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Purged %d idempotency records\n", n)
				return nil
			})
		},
	})
	return cmd
}

func parseDate(input string, fallback time.Time) (time.Time, error) {
	if input == "" {
		return time.Date(fallback.Year(), fallback.Month(), fallback.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	parsed, err := time.Parse(dateLayout, input)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", input)
	}
	return parsed, nil
}

func optionalDate(input string) (*time.Time, error) {
	if input == "" {
		return nil, nil
	}
	parsed, err := parseDate(input, time.Time{})
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
