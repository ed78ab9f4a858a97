// Package invoice exposes the HTTP surface of the invoice generator: listing
// lookup and PDF generation, both gated by the rate limiter.
package invoice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"garage-invoice-backend/lib/ratelimit"
	"garage-invoice-backend/lib/scrapers/garage"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("garage-invoice-backend/services/invoice")

// Stable client-facing error messages. Internal failure detail stays in logs.
const (
	msgMissingId   = "Listing ID is required"
	msgInvalidData = "Invalid listing data received"
	msgMissingWhat = "Missing required fields: title, price, or id"
	msgRateLimited = "Too many requests, please try again later"
	msgPdfFailed   = "Failed to generate PDF"
)

// Resolver is the listing-resolution boundary. Implementations never fail,
// they degrade to placeholder data instead.
type Resolver interface {
	Resolve(ctx context.Context, identifier string) garage.Listing
}

// Renderer is the document-rendering boundary. Failures are opaque.
type Renderer interface {
	Render(l garage.Listing) ([]byte, error)
}

type Options struct {
	Resolver Resolver
	Renderer Renderer
	// Limiter defaults to a store with default limits.
	Limiter *ratelimit.Store
}

type Service struct {
	resolver Resolver
	renderer Renderer
	limiter  *ratelimit.Store
}

func NewService(opts Options) *Service {
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.NewStore(ratelimit.Options{})
	}
	return &Service{
		resolver: opts.Resolver,
		renderer: opts.Renderer,
		limiter:  opts.Limiter,
	}
}

// Register mounts the service's routes on mux.
func (s *Service) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /listing", s.handleGetListing)
	mux.HandleFunc("POST /generate-pdf", s.handleGeneratePdf)
}

// rateHeaders attaches the rate limit metadata and the no-store policy every
// response carries, success or failure.
func rateHeaders(w http.ResponseWriter, res ratelimit.Result) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-RateLimit-Limit", fmt.Sprint(res.Limit))
	w.Header().Set("X-RateLimit-Remaining", fmt.Sprint(res.Remaining))
	w.Header().Set("X-RateLimit-Reset", res.ResetAt.Format(time.RFC3339))
}

func writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Warn("failed to encode response body", "err", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJson(w, status, errorBody{Error: message})
}

// gate runs the rate limiter for the request and short-circuits with a 429
// when the client is over budget. It must run exactly once per request since
// every check charges the counter.
func (s *Service) gate(w http.ResponseWriter, r *http.Request) bool {
	res := s.limiter.Check(ratelimit.ClientIdentifier(r.Header))
	rateHeaders(w, res)
	if res.Allowed {
		return true
	}

	retryAfter := int(time.Until(res.ResetAt).Seconds()) + 1
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", fmt.Sprint(retryAfter))
	writeError(w, http.StatusTooManyRequests, msgRateLimited)
	return false
}

func (s *Service) handleGetListing(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "GetListing")
	defer span.End()

	if !s.gate(w, r) {
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, msgMissingId)
		return
	}

	listing := Sanitize(s.resolver.Resolve(ctx, id))
	if !ValidShape(listing) {
		// the resolver contract makes this unreachable short of a bug,
		// do not leak whatever half-record it produced
		slog.ErrorContext(ctx, "resolver produced an invalid listing", "identifier", id)
		writeError(w, http.StatusInternalServerError, msgInvalidData)
		return
	}

	writeJson(w, http.StatusOK, listing)
}

func (s *Service) handleGeneratePdf(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "GeneratePdf")
	defer span.End()

	if !s.gate(w, r) {
		return
	}

	var listing garage.Listing
	err := json.NewDecoder(r.Body).Decode(&listing)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidData)
		return
	}
	if !ValidShape(listing) {
		writeError(w, http.StatusBadRequest, msgMissingWhat)
		return
	}
	listing = Sanitize(listing)

	pdf, err := s.renderer.Render(listing)
	if err != nil {
		slog.ErrorContext(ctx, "pdf render failed", "listing_id", listing.Id, "err", err)
		writeError(w, http.StatusInternalServerError, msgPdfFailed)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "invoice-"+listing.Id+".pdf"),
	)
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(pdf)
	if err != nil {
		slog.WarnContext(ctx, "failed to write pdf response", "err", err)
	}
}
