package controller

import (
	"context"
	"log/slog"
	"net/http"

	"pwa-weather/internal/modules/forecast/cards"
	"pwa-weather/internal/modules/forecast/dialog"
	"pwa-weather/internal/modules/forecast/fetcher"
	"pwa-weather/internal/modules/forecast/types"
	"pwa-weather/internal/modules/forecast/views"
)

type Fetcher interface {
	Fetch(ctx context.Context, identifier, label string) *fetcher.Pending
}

type Renderer interface {
	Render(rec types.Record) bool
	Snapshot() []cards.Card
	Keys() []types.CityEntry
	Loading() bool
}

type CityList interface {
	Load(ctx context.Context) []types.CityEntry
	Entries() []types.CityEntry
	Append(entry types.CityEntry)
	Save(ctx context.Context) error
	SaveAll(ctx context.Context, entries []types.CityEntry) error
}

type LoginBridge interface {
	Label() string
	SendLoginToggle() bool
}

type ForecastController interface {
	// Start loads the saved cities and fetches each of them. With no saved
	// cities it shows the placeholder forecast and saves it as the only city.
	Start(ctx context.Context) []*fetcher.Pending
	// Refresh fetches every city that has a card.
	Refresh(ctx context.Context) []*fetcher.Pending
	RegisterRoutes(mux *http.ServeMux)
}

type forecastControllerImpl struct {
	fetcher  Fetcher
	renderer Renderer
	cities   CityList
	dialog   *dialog.Dialog
	bridge   LoginBridge
	options  []views.CityOption
	logger   *slog.Logger
}

func NewForecastController(f Fetcher, r Renderer, cities CityList, b LoginBridge, options []views.CityOption, logger *slog.Logger) ForecastController {
	if logger == nil {
		logger = slog.Default()
	}
	if options == nil {
		options = DefaultCityOptions
	}
	return &forecastControllerImpl{
		fetcher:  f,
		renderer: r,
		cities:   cities,
		dialog:   dialog.New(dialogFetcher{f}, cities),
		bridge:   b,
		options:  options,
		logger:   logger,
	}
}

func (c *forecastControllerImpl) Start(ctx context.Context) []*fetcher.Pending {
	entries := c.cities.Load(ctx)
	if len(entries) == 0 {
		seed := fetcher.Fallback()
		c.renderer.Render(seed)
		first := []types.CityEntry{{Identifier: seed.Identifier, Label: seed.Label}}
		if err := c.cities.SaveAll(ctx, first); err != nil {
			c.logger.Error("saving initial city list failed", "error", err)
		}
		c.logger.Info("no saved cities, showing placeholder forecast", "city", seed.Identifier)
		return nil
	}

	c.logger.Info("loading saved cities", "count", len(entries))
	pending := make([]*fetcher.Pending, 0, len(entries))
	for _, e := range entries {
		pending = append(pending, c.fetcher.Fetch(ctx, e.Identifier, e.Label))
	}
	return pending
}

func (c *forecastControllerImpl) Refresh(ctx context.Context) []*fetcher.Pending {
	keys := c.renderer.Keys()
	pending := make([]*fetcher.Pending, 0, len(keys))
	for _, k := range keys {
		pending = append(pending, c.fetcher.Fetch(ctx, k.Identifier, k.Label))
	}
	return pending
}

func (c *forecastControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", c.handlePage)
	mux.HandleFunc("GET /partials/cards", c.handleCardsPartial)
	mux.HandleFunc("POST /refresh", c.handleRefresh)
	mux.HandleFunc("POST /dialog/open", c.handleDialogOpen)
	mux.HandleFunc("POST /dialog/cancel", c.handleDialogCancel)
	mux.HandleFunc("POST /cities", c.handleAddCity)
	mux.HandleFunc("POST /login", c.handleLogin)
	mux.HandleFunc("GET /api/cities", c.handleCities)
	mux.HandleFunc("GET /api/cards", c.handleCards)
}

// dialogFetcher drops the pending handle the dialog has no use for.
type dialogFetcher struct {
	f Fetcher
}

func (d dialogFetcher) Fetch(ctx context.Context, identifier, label string) {
	d.f.Fetch(ctx, identifier, label)
}
