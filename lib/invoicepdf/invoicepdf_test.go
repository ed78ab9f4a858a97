package invoicepdf

import (
	"strings"
	"testing"
	"time"

	"garage-invoice-backend/lib/scrapers/garage"

	"github.com/stretchr/testify/require"
)

func TestInvoiceNumber(t *testing.T) {
	require.Equal(t, "INV-0A1B2C3D", InvoiceNumber("0a1b2c3d-4e5f-6071-8293-a4b5c6d7e8f9"))
	require.Equal(t, "INV-ABC", InvoiceNumber("abc"))
}

func TestFormatPrice(t *testing.T) {
	require.Equal(t, "$425,000", formatPrice(425000))
	require.Equal(t, "$0", formatPrice(0))
	require.Equal(t, "$1,250", formatPrice(1249.60))
}

func TestFormatItemSpecs(t *testing.T) {
	specs := formatItemSpecs(garage.Listing{
		Year:    2018,
		Make:    "Pierce",
		Model:   "Enforcer",
		Mileage: 15000,
	})
	require.Equal(t, "2018 • Pierce • Enforcer • 15,000 miles", specs)
}

func TestRender(t *testing.T) {
	r := NewRenderer()
	r.Now = func() time.Time {
		return time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	}

	pdf, err := r.Render(garage.MockListing("0a1b2c3d-4e5f-6071-8293-a4b5c6d7e8f9"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(pdf), "%PDF-"))
	require.Greater(t, len(pdf), 1000)
}

func TestRenderMinimalListing(t *testing.T) {
	r := NewRenderer()
	pdf, err := r.Render(garage.Listing{
		Id:    "x",
		Title: "Ladder truck",
		Price: 1,
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(pdf), "%PDF-"))
}
