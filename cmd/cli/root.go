// Package cli implements the authcore-admin command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL   string
	bearerToken string
)

var rootCmd = &cobra.Command{
	Use:   "authcore-admin",
	Short: "Administer a running authcore service.",
	Long: `authcore-admin drives the administrative API of an authcore instance:
force-logging-out users, revoking refresh-token families and withdrawing
device trust. All commands need an access token carrying the admin role.`,
}

// Execute runs the CLI, exiting non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "base URL of the authcore service")
	rootCmd.PersistentFlags().StringVar(&bearerToken, "token", os.Getenv("AUTHCORE_ADMIN_TOKEN"), "admin access token (defaults to AUTHCORE_ADMIN_TOKEN)")
}
