// Package garage resolves marketplace listings from the Garage site.
//
// The upstream has no documented API. Its JSON endpoints are guessed, its
// page structure and build ids change per deployment, so resolution runs an
// ordered chain of independent strategies and falls back to placeholder data
// when every one of them fails. Resolve never returns an error.
package garage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"garage-invoice-backend/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("garage-invoice-backend/lib/scrapers/garage")

const (
	defaultSiteBaseUrl     = "https://withgarage.com"
	defaultStrategyTimeout = 10 * time.Second
	userAgent              = "Garage-Invoice-Generator"
)

// DefaultApiEndpoints returns the candidate REST bases probed first.
// None of them is documented, the list is ordered by observed likelihood.
func DefaultApiEndpoints() []string {
	return []string{
		"https://api.withgarage.com/listings",
		"https://withgarage.com/api/listings",
		"https://api.withgarage.com/v1/listings",
		"https://withgarage.com/api/v1/listings",
	}
}

var restyInstrumentOutput restyutil.InstrumentOutput

// SetRestyInstrumentOutput enables on-disk request/response dumps for clients
// created after the call.
func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}

type Options struct {
	// SiteBaseUrl hosts listing pages, the home page and the /_next data
	// routes. Defaults to the production site, tests point it at httptest.
	SiteBaseUrl string
	// ApiEndpoints are the candidate JSON bases for the direct probe, the
	// listing identifier is appended as a path segment.
	ApiEndpoints []string
	// StrategyTimeout bounds each individual strategy attempt.
	StrategyTimeout time.Duration
	// CloudflareBypass installs the browser-imitating transport. Leave off
	// when talking to local test servers.
	CloudflareBypass bool
}

type Client struct {
	opts Options
	http *resty.Client
	// noredir never follows redirects so the Location header stays readable
	noredir *resty.Client
}

func NewClient(opts Options) *Client {
	if opts.SiteBaseUrl == "" {
		opts.SiteBaseUrl = defaultSiteBaseUrl
	}
	opts.SiteBaseUrl = strings.TrimSuffix(opts.SiteBaseUrl, "/")
	if len(opts.ApiEndpoints) == 0 {
		opts.ApiEndpoints = DefaultApiEndpoints()
	}
	if opts.StrategyTimeout <= 0 {
		opts.StrategyTimeout = defaultStrategyTimeout
	}

	newHttp := func() *resty.Client {
		client := resty.New()
		client.SetHeader("User-Agent", userAgent)
		// always revalidate, a stale build id or listing is worse than a
		// slower fetch
		client.SetHeader("Cache-Control", "no-cache")
		client.SetTimeout(opts.StrategyTimeout)
		if opts.CloudflareBypass {
			client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
		}
		restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)
		return client
	}

	noredir := newHttp()
	noredir.SetRedirectPolicy(resty.NoRedirectPolicy())

	return &Client{
		opts:    opts,
		http:    newHttp(),
		noredir: noredir,
	}
}

var (
	errNotSlug     = errors.New("identifier is not a slug")
	errAlreadySlug = errors.New("identifier is already a slug")
)

var uuidShaped = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// isSlug reports whether the identifier looks like a canonical listing slug,
// descriptive words joined to a UUID suffix. A bare UUID contains hyphens too
// so it has to be ruled out explicitly.
func isSlug(identifier string) bool {
	return strings.Contains(identifier, "-") && !uuidShaped.MatchString(identifier)
}

type strategy struct {
	name string
	run  func(ctx context.Context, identifier string) (*rawListing, error)
}

// strategies returns the ordered fallback chain. The build-token data api
// runs before page scraping since it returns clean JSON instead of markup.
func (c *Client) strategies() []strategy {
	return []strategy{
		{name: "api-probe", run: c.probeApiEndpoints},
		{name: "data-api", run: c.fetchFromDataApi},
		{name: "embedded-page", run: c.scrapeListingPage},
		{name: "redirect-slug", run: c.resolveViaRedirect},
	}
}

// Resolve turns an opaque listing identifier (UUID or slug) into a Listing.
// It never fails: when every strategy is exhausted it returns the static
// placeholder record tagged with the requested identifier. Strategy failures
// are logged, never surfaced.
func (c *Client) Resolve(ctx context.Context, identifier string) Listing {
	ctx, span := tracer.Start(ctx, "Resolve", trace.WithAttributes(
		attribute.String("identifier", identifier),
	))
	defer span.End()

	for _, strat := range c.strategies() {
		sctx, cancel := context.WithTimeout(ctx, c.opts.StrategyTimeout)
		raw, err := strat.run(sctx, identifier)
		cancel()
		if err != nil {
			span.AddEvent("strategy failed", trace.WithAttributes(
				attribute.String("strategy", strat.name),
				attribute.String("err", err.Error()),
			))
			slog.WarnContext(
				ctx, "listing strategy failed",
				"strategy", strat.name,
				"identifier", identifier,
				"err", err,
			)
			continue
		}

		span.SetAttributes(attribute.String("resolved_by", strat.name))
		slog.DebugContext(
			ctx, "listing resolved",
			"strategy", strat.name,
			"identifier", identifier,
		)
		return c.toListing(identifier, raw)
	}

	// degraded outcome, not an error: operators watch this line to see the
	// mock-data rate
	span.SetStatus(codes.Error, "all strategies exhausted")
	slog.WarnContext(ctx, "could not fetch listing upstream, using mock data", "identifier", identifier)
	return MockListing(identifier)
}

// checkRaw enforces the minimum a strategy result must carry before it is
// allowed to win the chain.
func checkRaw(raw *rawListing) error {
	if raw == nil {
		return fmt.Errorf("no listing payload")
	}
	if raw.Title == "" {
		return fmt.Errorf("listing payload has no title")
	}
	if raw.Price == nil {
		return fmt.Errorf("listing payload has no price")
	}
	if *raw.Price < 0 {
		return fmt.Errorf("listing payload has negative price")
	}
	return nil
}

// probeApiEndpoints tries the fixed candidate endpoint list in order and
// accepts the first parseable JSON body carrying a title and price.
func (c *Client) probeApiEndpoints(ctx context.Context, identifier string) (*rawListing, error) {
	var errlist []error
	for _, endpoint := range c.opts.ApiEndpoints {
		res, err := c.http.R().
			SetContext(ctx).
			SetHeader("Accept", "application/json").
			Get(endpoint + "/" + identifier)
		if err != nil {
			errlist = append(errlist, fmt.Errorf("%s: %w", endpoint, err))
			continue
		}
		if !res.IsSuccess() {
			errlist = append(errlist, fmt.Errorf("%s: status %d", endpoint, res.StatusCode()))
			continue
		}

		var raw rawListing
		err = json.Unmarshal(res.Body(), &raw)
		if err != nil {
			errlist = append(errlist, fmt.Errorf("%s: %w", endpoint, err))
			continue
		}
		err = checkRaw(&raw)
		if err != nil {
			errlist = append(errlist, fmt.Errorf("%s: %w", endpoint, err))
			continue
		}
		return &raw, nil
	}
	return nil, errors.Join(errlist...)
}

// fetchBuildId scrapes the current deployment build token off the home page.
// The token changes per deployment, so it is fetched fresh every time.
func (c *Client) fetchBuildId(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "fetchBuildId")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		Get(c.opts.SiteBaseUrl)
	if err != nil {
		return "", err
	}
	if !res.IsSuccess() {
		return "", fmt.Errorf("home page returned status %d", res.StatusCode())
	}

	nd, err := parseNextData(res.Body())
	if err != nil {
		return "", err
	}
	if nd.BuildId == "" {
		return "", fmt.Errorf("home page state carries no build id")
	}

	span.SetAttributes(attribute.String("build_id", nd.BuildId))
	return nd.BuildId, nil
}

// fetchFromDataApi resolves a slug through the build-token data route,
// bypassing HTML entirely.
func (c *Client) fetchFromDataApi(ctx context.Context, identifier string) (*rawListing, error) {
	if !isSlug(identifier) {
		return nil, errNotSlug
	}
	return c.fetchSlugFromDataApi(ctx, identifier)
}

func (c *Client) fetchSlugFromDataApi(ctx context.Context, slug string) (*rawListing, error) {
	buildId, err := c.fetchBuildId(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover build id: %w", err)
	}

	link := fmt.Sprintf("%s/_next/data/%s/listing/%s.json", c.opts.SiteBaseUrl, buildId, slug)
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(link)
	if err != nil {
		return nil, err
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("data api returned status %d", res.StatusCode())
	}

	var body dataApiResponse
	err = json.Unmarshal(res.Body(), &body)
	if err != nil {
		return nil, fmt.Errorf("parse data api body: %w", err)
	}

	raw := body.PageProps.ListingPreview
	err = checkRaw(raw)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// scrapeListingPage fetches the canonical listing page and pulls the
// listingPreview object out of the embedded page state.
func (c *Client) scrapeListingPage(ctx context.Context, identifier string) (*rawListing, error) {
	if !isSlug(identifier) {
		return nil, errNotSlug
	}

	res, err := c.http.R().
		SetContext(ctx).
		Get(c.opts.SiteBaseUrl + "/listing/" + identifier)
	if err != nil {
		return nil, err
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("listing page returned status %d", res.StatusCode())
	}

	nd, err := parseNextData(res.Body())
	if err != nil {
		return nil, err
	}

	raw := nd.Props.PageProps.ListingPreview
	err = checkRaw(raw)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// matches the canonical path segment of a listing page, group 1 is the slug
var listingPath = regexp.MustCompile(`(?i)/listing/([\w-]+)`)

// ExtractIdentifier pulls the listing identifier (UUID or slug) out of a
// pasted listing URL.
func ExtractIdentifier(link string) (string, error) {
	match := listingPath.FindStringSubmatch(link)
	if match == nil {
		return "", fmt.Errorf("invalid listing URL format, expected .../listing/{uuid}")
	}
	return match[1], nil
}

// resolveViaRedirect handles bare identifiers: request the listing page with
// redirects disabled, read the canonical slug off the Location target, then
// re-enter the data api with it.
func (c *Client) resolveViaRedirect(ctx context.Context, identifier string) (*rawListing, error) {
	if isSlug(identifier) {
		return nil, errAlreadySlug
	}

	res, err := c.noredir.R().
		SetContext(ctx).
		Get(c.opts.SiteBaseUrl + "/listing/" + identifier)
	// resty reports the blocked redirect as an error, the response still
	// carries the status and headers
	if err != nil && res == nil {
		return nil, err
	}
	if res.StatusCode() < 300 || res.StatusCode() >= 400 {
		return nil, fmt.Errorf("expected redirect, got status %d", res.StatusCode())
	}

	location := res.Header().Get("Location")
	match := listingPath.FindStringSubmatch(location)
	if match == nil {
		return nil, fmt.Errorf("redirect target %q carries no listing slug", location)
	}
	slug := match[1]
	if !isSlug(slug) || slug == identifier {
		return nil, fmt.Errorf("redirect target %q did not resolve a new slug", location)
	}

	return c.fetchSlugFromDataApi(ctx, slug)
}

// toListing normalizes a raw upstream record. Fields come from exactly one
// winning strategy, derivations only ever fill gaps within that record.
// checkRaw has already run, so Price is non-nil here.
func (c *Client) toListing(identifier string, raw *rawListing) Listing {
	l := Listing{
		Id:          raw.Id,
		Title:       raw.Title,
		Description: raw.Description,
		Price:       *raw.Price,
		Year:        raw.Year,
		Make:        raw.Make,
		Model:       raw.Model,
		Mileage:     raw.Mileage,
		ImageUrl:    raw.ImageUrl,
		Specs:       formatSpecs(raw.Attributes),
	}
	if l.Id == "" {
		l.Id = identifier
	}
	if l.Year == 0 {
		l.Year = yearFromTitle(raw.Title)
	}
	if l.Mileage == 0 {
		l.Mileage = mileageFromAttributes(raw.Attributes)
	}
	if l.Model == "" {
		l.Model = modelFromAttributes(raw.Attributes)
	}
	if l.ImageUrl == "" && len(raw.Photos) > 0 {
		l.ImageUrl = raw.Photos[0].Url
	}
	return l
}
