package garage

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"garage-invoice-backend/lib/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const (
	testUuid = "0a1b2c3d-4e5f-6071-8293-a4b5c6d7e8f9"
	testSlug = "2018-pierce-enforcer-pumper-" + testUuid
)

func newTestClient(t testing.TB, siteUrl string, apiEndpoints ...string) *Client {
	cleanup := telemetry.SetupForTesting(t, "test:lib/scrapers/garage")
	t.Cleanup(cleanup)

	return NewClient(Options{
		SiteBaseUrl:     siteUrl,
		ApiEndpoints:    apiEndpoints,
		StrategyTimeout: 2 * time.Second,
	})
}

func nextDataPage(payload string) string {
	return fmt.Sprintf(
		`<!DOCTYPE html><html><head><title>Garage</title></head><body>
		<div id="__next">rendered markup goes here</div>
		<script id="__NEXT_DATA__" type="application/json">%s</script>
		</body></html>`,
		payload,
	)
}

const previewJson = `{
	"id": "` + testUuid + `",
	"title": "2018 Pierce Enforcer Pumper",
	"description": "Well-maintained pumper.",
	"price": 425000,
	"itemPhotos": [{"url": "https://cdn.example.com/truck.jpg"}],
	"attributes": [
		{"categoryAttributeId": "7d794d55-f1dd-4b5d-90ab-b277e202ceed", "value": "15000"},
		{"categoryAttributeId": "11111111-aaaa-bbbb-cccc-000000000001", "value": "Pierce"},
		{"categoryAttributeId": "11111111-aaaa-bbbb-cccc-000000000002", "value": "pierce"},
		{"categoryAttributeId": "11111111-aaaa-bbbb-cccc-000000000003", "value": "Enforcer"},
		{"categoryAttributeId": "11111111-aaaa-bbbb-cccc-000000000004", "value": "0"},
		{"categoryAttributeId": "11111111-aaaa-bbbb-cccc-000000000005", "value": "true"}
	]
}`

func TestIsSlug(t *testing.T) {
	require.False(t, isSlug(testUuid))
	require.True(t, isSlug(testSlug))
	require.False(t, isSlug("plainid"))
	require.True(t, isSlug("fire-truck"))
}

func TestExtractIdentifier(t *testing.T) {
	id, err := ExtractIdentifier("https://withgarage.com/listing/" + testSlug + "?ref=share")
	require.NoError(t, err)
	require.Equal(t, testSlug, id)

	_, err = ExtractIdentifier("https://withgarage.com/about")
	require.Error(t, err)
}

func TestParseNextData(t *testing.T) {
	nd, err := parseNextData([]byte(nextDataPage(`{"buildId":"dev-build-1"}`)))
	require.NoError(t, err)
	require.Equal(t, "dev-build-1", nd.BuildId)

	_, err = parseNextData([]byte("<html><body>no state here</body></html>"))
	require.Error(t, err)

	_, err = parseNextData([]byte(nextDataPage("not json")))
	require.Error(t, err)
}

func TestResolveViaApiProbe(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/listings/"+testUuid, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Garage-Invoice-Generator", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "`+testUuid+`",
			"title": "2009 Spartan Gladiator Pumper",
			"price": 189000,
			"attributes": [
				{"categoryAttributeId": "7d794d55-f1dd-4b5d-90ab-b277e202ceed", "value": "42000"}
			]
		}`)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	// the first endpoint 404s, the probe moves on to the second
	client := newTestClient(t, ts.URL, ts.URL+"/v2/listings", ts.URL+"/api/listings")

	got := client.Resolve(context.Background(), testUuid)
	expected := Listing{
		Id:      testUuid,
		Title:   "2009 Spartan Gladiator Pumper",
		Price:   189000,
		Year:    2009,
		Mileage: 42000,
		Specs:   "42,000 miles",
	}
	diff := cmp.Diff(expected, got)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestResolveProbeRejectsPricelessBody(t *testing.T) {
	mux := http.NewServeMux()
	// a guessed endpoint that answers 200 with an error page shaped like
	// JSON, a title but no price field, must not win the chain
	mux.HandleFunc("/broken/listings/"+testUuid, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"title": "Listing not found"}`)
	})
	mux.HandleFunc("/api/listings/"+testUuid, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "`+testUuid+`", "title": "2018 Pierce Enforcer Pumper", "price": 425000}`)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := newTestClient(t, ts.URL, ts.URL+"/broken/listings", ts.URL+"/api/listings")

	got := client.Resolve(context.Background(), testUuid)
	require.Equal(t, "2018 Pierce Enforcer Pumper", got.Title)
	require.Equal(t, float64(425000), got.Price)
}

func TestResolveViaDataApi(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, nextDataPage(`{"buildId":"dev-build-1"}`))
	})
	mux.HandleFunc(
		"/_next/data/dev-build-1/listing/"+testSlug+".json",
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"pageProps":{"listingPreview":`+previewJson+`}}`)
		},
	)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := newTestClient(t, ts.URL, ts.URL+"/api/listings")

	got := client.Resolve(context.Background(), testSlug)
	require.Equal(t, testUuid, got.Id)
	require.Equal(t, "2018 Pierce Enforcer Pumper", got.Title)
	require.Equal(t, float64(425000), got.Price)
	require.Equal(t, 2018, got.Year)
	require.Equal(t, 15000, got.Mileage)
	require.Equal(t, "https://cdn.example.com/truck.jpg", got.ImageUrl)
	require.Equal(t, "15,000 miles • Pierce • Enforcer", got.Specs)
	// best-effort heuristic picks the first alphabetic attribute value
	require.Equal(t, "Pierce", got.Model)
}

func TestResolveViaEmbeddedPage(t *testing.T) {
	mux := http.NewServeMux()
	// home page carries no build id, so the data api strategy dies and the
	// chain falls through to scraping the listing page itself
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>maintenance page</body></html>")
	})
	mux.HandleFunc("/listing/"+testSlug, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, nextDataPage(`{"buildId":"dev-build-1","props":{"pageProps":{"listingPreview":`+previewJson+`}}}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := newTestClient(t, ts.URL, ts.URL+"/api/listings")

	got := client.Resolve(context.Background(), testSlug)
	require.Equal(t, testUuid, got.Id)
	require.Equal(t, "2018 Pierce Enforcer Pumper", got.Title)
	require.Equal(t, 15000, got.Mileage)
}

func TestResolveViaRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, nextDataPage(`{"buildId":"dev-build-1"}`))
	})
	mux.HandleFunc("/listing/"+testUuid, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/listing/"+testSlug, http.StatusTemporaryRedirect)
	})
	mux.HandleFunc(
		"/_next/data/dev-build-1/listing/"+testSlug+".json",
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"pageProps":{"listingPreview":`+previewJson+`}}`)
		},
	)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := newTestClient(t, ts.URL, ts.URL+"/api/listings")

	got := client.Resolve(context.Background(), testUuid)
	require.Equal(t, testUuid, got.Id)
	require.Equal(t, "2018 Pierce Enforcer Pumper", got.Title)
	require.Equal(t, float64(425000), got.Price)
}

func TestResolveFallsBackToMock(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()

	client := newTestClient(t, ts.URL, ts.URL+"/api/listings")

	got := client.Resolve(context.Background(), testUuid)
	require.Equal(t, testUuid, got.Id)
	require.NotEmpty(t, got.Title)
	require.GreaterOrEqual(t, got.Price, float64(0))
}
