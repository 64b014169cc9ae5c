package forecast

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"pwa-weather/internal/config"
	"pwa-weather/internal/kvstore"
	"pwa-weather/internal/modules/forecast/bridge"
	"pwa-weather/internal/modules/forecast/cards"
	"pwa-weather/internal/modules/forecast/cities"
	"pwa-weather/internal/modules/forecast/controller"
	"pwa-weather/internal/modules/forecast/fetcher"
	"pwa-weather/internal/respcache"
)

// Feature is the wired forecast module.
type Feature struct {
	Controller controller.ForecastController
	Bridge     *bridge.Bridge
	Renderer   *cards.Renderer
	Cities     *cities.List
	Fetcher    *fetcher.Fetcher
}

// NewFetcher builds a fetcher from configuration. With CACHE_RESPONSES on, live
// responses are recorded in the response cache and the cache is consulted
// before each live request.
func NewFetcher(cfg config.Config, db *sql.DB, renderer fetcher.Renderer, logger *slog.Logger) (*fetcher.Fetcher, error) {
	stamp, err := fetcher.StampFor(cfg.LiveStamp)
	if err != nil {
		return nil, err
	}

	opts := fetcher.Options{
		BaseURL: cfg.WeatherAPIBaseURL,
		APIKey:  cfg.WeatherAPIKey,
		Days:    cfg.ForecastDays,
		Timeout: cfg.ForecastTimeout,
		Client:  &http.Client{},
		Limiter: rate.NewLimiter(rate.Limit(cfg.ForecastRPS), cfg.ForecastBurst),
		Stamp:   stamp,
		Logger:  logger,
	}
	if cfg.CacheResponses {
		cache := respcache.NewSQLite(db)
		opts.Cache = cache
		opts.Client = &http.Client{Transport: &respcache.Transport{Cache: cache, Logger: logger}}
	}
	return fetcher.New(opts, renderer), nil
}

// RegisterFeature wires the forecast module and mounts its routes on mux.
func RegisterFeature(mux *http.ServeMux, cfg config.Config, db *sql.DB, ch bridge.Channel, logger *slog.Logger) (*Feature, error) {
	renderer := cards.New(logger)
	f, err := NewFetcher(cfg, db, renderer, logger)
	if err != nil {
		return nil, fmt.Errorf("forecast fetcher: %w", err)
	}
	list := cities.New(kvstore.NewSQLite(db), logger)
	b := bridge.New(ch, cfg.WorkerTopicIn, cfg.WorkerTopicOut, logger)

	ctrl := controller.NewForecastController(f, renderer, list, b, nil, logger)
	ctrl.RegisterRoutes(mux)

	return &Feature{
		Controller: ctrl,
		Bridge:     b,
		Renderer:   renderer,
		Cities:     list,
		Fetcher:    f,
	}, nil
}
