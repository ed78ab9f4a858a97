package cmd

import (
	"fmt"
	"os"

	"garage-invoice-backend/lib/invoicepdf"
	"garage-invoice-backend/services/invoice"

	"github.com/spf13/cobra"
)

var outputPath string

func init() {
	invoiceCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (defaults to invoice-<id>.pdf)")
	rootCmd.AddCommand(invoiceCmd)
}

var invoiceCmd = &cobra.Command{
	Use:   "invoice <identifier|url>",
	Short: "Resolves a listing and writes its invoice PDF to disk.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := identifierFromArg(args[0])
		if err != nil {
			return err
		}

		listing := invoice.Sanitize(client.Resolve(cmd.Context(), id))

		pdf, err := invoicepdf.NewRenderer().Render(listing)
		if err != nil {
			return fmt.Errorf("render invoice: %w", err)
		}

		path := outputPath
		if path == "" {
			path = fmt.Sprintf("invoice-%s.pdf", listing.Id)
		}
		err = os.WriteFile(path, pdf, 0644)
		if err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}

		fmt.Println("wrote", path)
		return nil
	},
}
