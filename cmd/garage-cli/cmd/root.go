package cmd

import (
	"fmt"
	"os"

	"garage-invoice-backend/lib/scrapers/garage"
	"garage-invoice-backend/lib/telemetry"

	"github.com/spf13/cobra"
)

var verbose bool
var siteUrl string

var client *garage.Client

var rootCmd = &cobra.Command{
	Use:   "garage-cli",
	Short: "garage-cli resolves marketplace listings and renders invoices from the terminal.",
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&siteUrl, "site", "", "override the marketplace base url")
}

func Execute() {
	cobra.OnInitialize(func() {
		telemetry.InitSlog(verbose)
		client = garage.NewClient(garage.Options{SiteBaseUrl: siteUrl})
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// identifierFromArg accepts either a bare listing identifier or a full
// listing URL pasted straight from the browser.
func identifierFromArg(arg string) (string, error) {
	id, err := garage.ExtractIdentifier(arg)
	if err == nil {
		return id, nil
	}
	if arg == "" {
		return "", fmt.Errorf("expected a listing identifier or URL")
	}
	return arg, nil
}
