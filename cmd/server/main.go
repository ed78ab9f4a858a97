package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"garage-invoice-backend/lib/configutil"
	"garage-invoice-backend/lib/invoicepdf"
	"garage-invoice-backend/lib/ratelimit"
	"garage-invoice-backend/lib/restyutil"
	"garage-invoice-backend/lib/scrapers/garage"
	"garage-invoice-backend/lib/serviceutil"
	"garage-invoice-backend/lib/telemetry"
	"garage-invoice-backend/services/invoice"
)

type RateLimitConfig struct {
	MaxRequests          int `json:"max_requests"`
	WindowSeconds        int `json:"window_seconds"`
	SweepIntervalSeconds int `json:"sweep_interval_seconds"`
}

type ScraperConfig struct {
	SiteBaseUrl      string   `json:"site_base_url"`
	ApiEndpoints     []string `json:"api_endpoints"`
	CloudflareBypass bool     `json:"cloudflare_bypass"`
	// DumpTraffic writes every upstream exchange under resty_traffic/,
	// only for debugging scrape breakage locally
	DumpTraffic bool `json:"dump_traffic"`
}

type Config struct {
	Port      int             `json:"port"`
	Verbose   bool            `json:"verbose"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	Scraper   ScraperConfig   `json:"scraper"`
}

func main() {
	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("read config", err)
	}
	if config.Port == 0 {
		config.Port = 3000
	}

	telemetry.InitSlog(config.Verbose)

	ctx := serviceutil.SignalContext()

	tel, err := telemetry.SetupFromEnv(ctx, "garage-invoice-backend")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("setup telemetry", err)
	}
	if err == nil {
		defer tel.Shutdown(context.Background())
		telemetry.InstrumentPerfStats(ctx)
	}

	if config.Scraper.DumpTraffic {
		garage.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput("resty_traffic"))
	}

	limiter := ratelimit.NewStore(ratelimit.Options{
		MaxRequests:   config.RateLimit.MaxRequests,
		Window:        time.Duration(config.RateLimit.WindowSeconds) * time.Second,
		SweepInterval: time.Duration(config.RateLimit.SweepIntervalSeconds) * time.Second,
	})
	limiter.StartSweeper(ctx)

	resolver := garage.NewClient(garage.Options{
		SiteBaseUrl:      config.Scraper.SiteBaseUrl,
		ApiEndpoints:     config.Scraper.ApiEndpoints,
		CloudflareBypass: config.Scraper.CloudflareBypass,
	})

	service := invoice.NewService(invoice.Options{
		Resolver: resolver,
		Renderer: invoicepdf.NewRenderer(),
		Limiter:  limiter,
	})

	mux := http.NewServeMux()
	service.Register(mux)

	serviceutil.StartHttpServer(config.Port, mux)
}
