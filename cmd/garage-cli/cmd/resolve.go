package cmd

import (
	"os"
	"strconv"

	"garage-invoice-backend/lib/invoicepdf"
	"garage-invoice-backend/services/invoice"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <identifier|url>",
	Short: "Resolves a listing and prints what the invoice would be built from.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := identifierFromArg(args[0])
		if err != nil {
			return err
		}

		listing := invoice.Sanitize(client.Resolve(cmd.Context(), id))

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendRows([]table.Row{
			{"Id", listing.Id},
			{"Title", listing.Title},
			{"Price", "$" + humanize.CommafWithDigits(listing.Price, 2)},
			{"Year", strconv.Itoa(listing.Year)},
			{"Make", listing.Make},
			{"Model", listing.Model},
			{"Mileage", humanize.Comma(int64(listing.Mileage))},
			{"Specs", listing.Specs},
			{"Image", listing.ImageUrl},
			{"Invoice #", invoicepdf.InvoiceNumber(listing.Id)},
		})
		t.SetStyle(table.StyleRounded)
		t.Render()

		return nil
	},
}
