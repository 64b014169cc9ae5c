// Package cards holds the forecast cards shown on the page, one per city, and
// applies incoming forecast records to them.
package cards

import (
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"pwa-weather/internal/modules/forecast/icons"
	"pwa-weather/internal/modules/forecast/types"
)

// DaysShown is the number of daily slots on a card.
const DaysShown = 7

// daysOfWeek starts on Monday but is indexed with time.Weekday, which starts
// on Sunday. Labels are therefore shifted by one day; existing pages show them
// that way.
var daysOfWeek = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

type DaySlot struct {
	Weekday string
	Icon    icons.Icon
	High    int
	Low     int
	Filled  bool
}

type Card struct {
	Identifier string
	Label      string
	// Location is set when the card is created and never changes.
	Location string

	Stamped     bool
	LastUpdated time.Time

	Description   string
	Date          string
	Icon          icons.Icon
	Temperature   int
	Humidity      int
	WindSpeed     int
	WindDirection string
	Sunrise       string
	Sunset        string
	Days          [DaysShown]DaySlot
}

// LastUpdatedText is the card's stamp as shown on the page.
func (c Card) LastUpdatedText() string {
	if !c.Stamped {
		return ""
	}
	return c.LastUpdated.UTC().Format(time.RFC3339Nano)
}

type Renderer struct {
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	cards   map[string]*Card
	order   []string
	loading bool
}

func New(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		logger:  logger,
		now:     time.Now,
		cards:   make(map[string]*Card),
		loading: true,
	}
}

// SetClock replaces the clock used for weekday labels.
func (r *Renderer) SetClock(now func() time.Time) {
	r.mu.Lock()
	r.now = now
	r.mu.Unlock()
}

// Render applies rec to the card for rec.Identifier, creating the card on
// first use. Records that are not strictly newer than what the card shows are
// dropped. It reports whether the card changed.
func (r *Renderer) Render(rec types.Record) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	card, ok := r.cards[rec.Identifier]
	if !ok {
		card = &Card{
			Identifier: rec.Identifier,
			Label:      rec.Label,
			Location:   rec.Location.Name,
		}
		r.cards[rec.Identifier] = card
		r.order = append(r.order, rec.Identifier)
	}

	if card.Stamped && !rec.Created.After(card.LastUpdated) {
		r.logger.Debug("discarding stale forecast",
			"city", rec.Identifier,
			"created", rec.Created,
			"shown", card.LastUpdated,
		)
		return false
	}
	card.Stamped = true
	card.LastUpdated = rec.Created

	card.Description = rec.Current.Condition.Text
	card.Date = rec.Location.LocalTime
	card.Icon = icons.Classify(int(rec.Current.Condition.Code))
	card.Temperature = jsRound(rec.Current.TempF)
	card.Humidity = jsRound(rec.Current.Humidity)
	card.WindSpeed = jsRound(rec.Current.WindMph)
	card.WindDirection = strconv.FormatFloat(rec.Current.WindDegree, 'f', -1, 64)

	days := rec.Forecast.ForecastDay
	if len(days) > 0 {
		card.Sunrise = days[0].Astro.Sunrise
		card.Sunset = days[0].Astro.Sunset
	}

	today := int(r.now().Weekday())
	for i := 0; i < DaysShown && i < len(days); i++ {
		d := days[i].Day
		card.Days[i] = DaySlot{
			Weekday: daysOfWeek[(i+today)%7],
			Icon:    icons.Classify(int(d.Condition.Code)),
			High:    jsRound(d.MaxTempF),
			Low:     jsRound(d.MinTempF),
			Filled:  true,
		}
	}

	if r.loading {
		r.loading = false
		r.logger.Info("first forecast rendered", "city", rec.Identifier)
	}
	return true
}

// Loading reports whether no card has been rendered yet.
func (r *Renderer) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

// Card returns a copy of the card for identifier.
func (r *Renderer) Card(identifier string) (Card, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[identifier]
	if !ok {
		return Card{}, false
	}
	return *c, true
}

// Snapshot returns copies of all cards in the order they were created.
func (r *Renderer) Snapshot() []Card {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Card, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.cards[id])
	}
	return out
}

// Keys returns the identifier and label of every card in display order.
func (r *Renderer) Keys() []types.CityEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.CityEntry, 0, len(r.order))
	for _, id := range r.order {
		c := r.cards[id]
		out = append(out, types.CityEntry{Identifier: c.Identifier, Label: c.Label})
	}
	return out
}

// jsRound rounds half up, so -2.5 becomes -2.
func jsRound(x float64) int {
	return int(math.Floor(x + 0.5))
}
