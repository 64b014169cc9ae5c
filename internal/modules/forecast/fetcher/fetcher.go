// Package fetcher loads forecasts for a city from the response cache and from
// the weather API, handing every record it obtains to a Renderer.
package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"pwa-weather/internal/modules/forecast/types"
	"pwa-weather/internal/respcache"
)

// Renderer receives forecast records. It reports whether the record was shown.
type Renderer interface {
	Render(rec types.Record) bool
}

// Outcome describes how the live request ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeLive
	OutcomeFallback
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLive:
		return "live"
	case OutcomeFallback:
		return "fallback"
	default:
		return "none"
	}
}

// Result summarizes one Fetch once both of its paths have finished.
type Result struct {
	CacheHit bool
	Live     Outcome
	// Err is the reason the live path fell back, if it did.
	Err error
}

// Pending is the handle returned by Fetch.
type Pending struct {
	done chan struct{}
	res  Result
}

// Done is closed when both the cache and the live path have delivered or given up.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until Done is closed and returns the result.
func (p *Pending) Wait() Result {
	<-p.done
	return p.res
}

type Options struct {
	BaseURL string
	APIKey  string
	Days    int
	// Timeout bounds the live request. Zero waits forever.
	Timeout time.Duration
	Client  *http.Client
	// Cache is optional. Without it only the live path runs.
	Cache   respcache.Cache
	Limiter *rate.Limiter
	// Stamp produces the creation time of live records.
	Stamp  func() time.Time
	Logger *slog.Logger
}

type Fetcher struct {
	opts     Options
	renderer Renderer
	logger   *slog.Logger
}

func New(opts Options, renderer Renderer) *Fetcher {
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}
	if opts.Days <= 0 {
		opts.Days = 7
	}
	if opts.Stamp == nil {
		opts.Stamp = StampWeekday
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{opts: opts, renderer: renderer, logger: logger}
}

// URL is the forecast request URL for a city. It doubles as the cache key.
func (f *Fetcher) URL(identifier string) string {
	return fmt.Sprintf("%s/forecast.json?key=%s&q=%s&days=%d",
		f.opts.BaseURL, url.QueryEscape(f.opts.APIKey), url.QueryEscape(identifier), f.opts.Days)
}

// Fetch starts loading the forecast for a city and returns at once. A cached
// response, if any, and the live response are delivered independently and in
// no particular order.
func (f *Fetcher) Fetch(ctx context.Context, identifier, label string) *Pending {
	// Deliveries outlive the request that triggered them.
	ctx = context.WithoutCancel(ctx)
	p := &Pending{done: make(chan struct{})}
	target := f.URL(identifier)

	var wg sync.WaitGroup
	if f.opts.Cache != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.res.CacheHit = f.fromCache(ctx, target, identifier, label)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		p.res.Live, p.res.Err = f.fromNetwork(ctx, target, identifier, label)
	}()

	go func() {
		wg.Wait()
		close(p.done)
	}()

	return p
}

func (f *Fetcher) fromCache(ctx context.Context, target, identifier, label string) bool {
	entry, ok, err := f.opts.Cache.Match(ctx, target)
	if err != nil {
		f.logger.Warn("forecast cache lookup failed", "city", identifier, "error", err)
		return false
	}
	if !ok {
		return false
	}

	var payload types.Payload
	if err := json.Unmarshal(entry.Body, &payload); err != nil {
		f.logger.Warn("cached forecast is not decodable", "city", identifier, "error", err)
		return false
	}

	f.logger.Debug("forecast from cache", "city", identifier, "stored_at", entry.StoredAt)
	f.renderer.Render(types.NewRecord(payload, identifier, label, entry.StoredAt))
	return true
}

func (f *Fetcher) fromNetwork(ctx context.Context, target, identifier, label string) (Outcome, error) {
	payload, err := f.get(ctx, target)
	if err != nil {
		f.logger.Warn("live forecast unavailable, showing placeholder", "city", identifier, "error", err)
		f.renderer.Render(FallbackFor(identifier, label))
		return OutcomeFallback, err
	}

	f.renderer.Render(types.NewRecord(payload, identifier, label, f.opts.Stamp()))
	return OutcomeLive, nil
}

func (f *Fetcher) get(ctx context.Context, target string) (types.Payload, error) {
	if f.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.opts.Timeout)
		defer cancel()
	}

	if f.opts.Limiter != nil {
		if err := f.opts.Limiter.Wait(ctx); err != nil {
			return types.Payload{}, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return types.Payload{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := f.opts.Client.Do(req)
	if err != nil {
		return types.Payload{}, fmt.Errorf("request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return types.Payload{}, &StatusError{Code: resp.StatusCode}
	}

	var payload types.Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return types.Payload{}, fmt.Errorf("decode response: %w", err)
	}
	return payload, nil
}

// StatusError is returned for any non-200 answer from the weather API.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("weather api status %d", e.Code)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// StampWeekday stamps live records with the current UTC weekday number read as
// milliseconds since the epoch. Such stamps predate any cached or placeholder
// record, so live data only shows on cards that have nothing yet.
func StampWeekday() time.Time {
	return time.UnixMilli(int64(time.Now().UTC().Weekday())).UTC()
}

// StampNow stamps live records with the wall clock.
func StampNow() time.Time {
	return time.Now().UTC()
}

// StampFor maps a LIVE_STAMP mode to its stamp function.
func StampFor(mode string) (func() time.Time, error) {
	switch mode {
	case "weekday", "":
		return StampWeekday, nil
	case "now":
		return StampNow, nil
	default:
		return nil, fmt.Errorf("unknown live stamp mode %q", mode)
	}
}
