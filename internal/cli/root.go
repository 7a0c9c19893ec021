// Package cli implements hotelctl, the operator command line for the
// booking service.
package cli

import (
	"os"

	"hotelbook/pkg/config"

	"github.com/spf13/cobra"
)

type options struct {
	outputJSON bool
	baseURL    string
	userID     string
}

func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "hotelctl",
		Short:        "Operate the hotel booking service",
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVar(&opts.outputJSON, "json", false, "Output JSON")
	root.PersistentFlags().StringVar(&opts.baseURL, "url", envOr(config.EnvBookingServiceBaseURL, config.DefaultBookingServiceBaseURL), "Booking service base URL")
	root.PersistentFlags().StringVar(&opts.userID, "user", os.Getenv("HOTELCTL_USER"), "User ID sent as X-User-ID")

	root.AddCommand(migrateCmd())
	root.AddCommand(taxesCmd())
	root.AddCommand(pricingCmd())
	root.AddCommand(availabilityCmd(opts))
	root.AddCommand(locksCmd())
	root.AddCommand(idempotencyCmd())
	root.AddCommand(bookingsCmd(opts))
	return root
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
