package cards

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"pwa-weather/internal/modules/forecast/icons"
	"pwa-weather/internal/modules/forecast/types"
)

func newTestRenderer(now time.Time) *Renderer {
	r := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.SetClock(func() time.Time { return now })
	return r
}

func record(id string, created time.Time, tempF float64, text string) types.Record {
	return types.Record{
		Identifier: id,
		Label:      id + " label",
		Created:    created,
		Current: types.Current{
			Humidity:   87.5,
			WindMph:    2.5,
			WindDegree: 130,
			TempF:      tempF,
			Condition:  types.Condition{Code: 1003, Text: text},
		},
		Forecast: types.Forecast{ForecastDay: []types.ForecastDay{
			{Day: types.Day{MaxTempF: 64, MinTempF: 34.3, Condition: types.Condition{Code: 1003}},
				Astro: types.Astro{Sunrise: "05:52 AM", Sunset: "06:34 PM"}},
			{Day: types.Day{MaxTempF: 69.5, MinTempF: 31.3, Condition: types.Condition{Code: 2001}}},
			{Day: types.Day{MaxTempF: 62, MinTempF: 33.3, Condition: types.Condition{Code: 9999}}},
		}},
		Location: types.Location{Name: id + " town", LocalTime: "2019-03-30 4:01"},
	}
}

var (
	t1 = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	t2 = t1.Add(time.Hour)
)

func TestRender_CreatesCard(t *testing.T) {
	// 2024-05-01 is a Wednesday (weekday 3).
	r := newTestRenderer(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	if !r.Loading() {
		t.Fatal("Loading() = false before any render")
	}
	if !r.Render(record("sbg", t1, 35.6, "Partly cloudy")) {
		t.Fatal("Render() = false for a new card")
	}
	if r.Loading() {
		t.Error("Loading() = true after first render")
	}

	c, ok := r.Card("sbg")
	if !ok {
		t.Fatal("card not registered")
	}
	if c.Location != "sbg town" || c.Label != "sbg label" {
		t.Errorf("Location/Label = %q/%q", c.Location, c.Label)
	}
	if c.Temperature != 36 || c.Humidity != 88 || c.WindSpeed != 3 {
		t.Errorf("rounded values = %d/%d/%d, want 36/88/3", c.Temperature, c.Humidity, c.WindSpeed)
	}
	if c.WindDirection != "130" || c.Sunrise != "05:52 AM" || c.Sunset != "06:34 PM" {
		t.Errorf("wind/astro = %q %q %q", c.WindDirection, c.Sunrise, c.Sunset)
	}
	if c.Icon != icons.Classify(1003) || c.Description != "Partly cloudy" || c.Date != "2019-03-30 4:01" {
		t.Errorf("current = %+v", c)
	}
	if c.LastUpdatedText() != "2024-05-01T10:00:00Z" {
		t.Errorf("LastUpdatedText = %q", c.LastUpdatedText())
	}

	wantDays := []DaySlot{
		{Weekday: "Thu", Icon: icons.Classify(1003), High: 64, Low: 34, Filled: true},
		{Weekday: "Fri", Icon: icons.Classify(2001), High: 70, Low: 31, Filled: true},
		{Weekday: "Sat", Icon: icons.IconUndefined, High: 62, Low: 33, Filled: true},
	}
	for i, want := range wantDays {
		if c.Days[i] != want {
			t.Errorf("Days[%d] = %+v, want %+v", i, c.Days[i], want)
		}
	}
	for i := len(wantDays); i < DaysShown; i++ {
		if c.Days[i].Filled {
			t.Errorf("Days[%d] filled without data", i)
		}
	}
}

func TestRender_StalenessLaw(t *testing.T) {
	r := newTestRenderer(t1)

	if !r.Render(record("x", t2, 70, "newer")) {
		t.Fatal("Render(t2) = false")
	}
	if r.Render(record("x", t1, 10, "older")) {
		t.Error("Render(t1) after t2 = true, want discarded")
	}
	if r.Render(record("x", t2, 10, "tie")) {
		t.Error("Render with equal stamp = true, want discarded")
	}

	c, _ := r.Card("x")
	if c.Description != "newer" || c.Temperature != 70 || !c.LastUpdated.Equal(t2) {
		t.Errorf("card = %q %d %v, want t2 data", c.Description, c.Temperature, c.LastUpdated)
	}

	if !r.Render(record("x", t2.Add(time.Second), 50, "newest")) {
		t.Error("strictly newer record was discarded")
	}
}

func TestRender_EpochStampOnFreshCard(t *testing.T) {
	r := newTestRenderer(t1)
	if !r.Render(record("x", time.UnixMilli(3), 50, "live")) {
		t.Fatal("a card with no data must accept any record")
	}
	if !r.Render(record("x", t1, 50, "cached")) {
		t.Error("later stamp should replace the epoch stamp")
	}
}

func TestRender_LocationFixedAtCreation(t *testing.T) {
	r := newTestRenderer(t1)
	r.Render(record("x", t1, 50, "a"))
	rec := record("x", t2, 50, "b")
	rec.Location.Name = "renamed"
	r.Render(rec)

	if c, _ := r.Card("x"); c.Location != "x town" {
		t.Errorf("Location = %q, want it unchanged", c.Location)
	}
}

func TestRender_WeekdayWrapsAround(t *testing.T) {
	// 2024-05-04 is a Saturday (weekday 6).
	r := newTestRenderer(time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC))
	rec := record("x", t1, 50, "a")
	r.Render(rec)

	c, _ := r.Card("x")
	if c.Days[0].Weekday != "Sun" || c.Days[1].Weekday != "Mon" || c.Days[2].Weekday != "Tue" {
		t.Errorf("weekdays = %q %q %q", c.Days[0].Weekday, c.Days[1].Weekday, c.Days[2].Weekday)
	}
}

func TestSnapshotAndKeysKeepOrder(t *testing.T) {
	r := newTestRenderer(t1)
	for _, id := range []string{"c", "a", "b"} {
		r.Render(record(id, t1, 50, id))
	}
	r.Render(record("a", t2, 50, "again"))

	snap := r.Snapshot()
	keys := r.Keys()
	if len(snap) != 3 || len(keys) != 3 {
		t.Fatalf("len = %d/%d, want 3", len(snap), len(keys))
	}
	for i, id := range []string{"c", "a", "b"} {
		if snap[i].Identifier != id || keys[i].Identifier != id || keys[i].Label != id+" label" {
			t.Errorf("position %d = %q/%+v, want %q", i, snap[i].Identifier, keys[i], id)
		}
	}

	snap[0].Description = "mutated"
	if c, _ := r.Card("c"); c.Description == "mutated" {
		t.Error("Snapshot returned shared state")
	}
}

func TestRender_Concurrent(t *testing.T) {
	r := newTestRenderer(t1)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Render(record("x", t1.Add(time.Duration(i)*time.Second), float64(i), "n"))
		}(i)
	}
	wg.Wait()

	c, _ := r.Card("x")
	if !c.LastUpdated.Equal(t1.Add(49 * time.Second)) {
		t.Errorf("LastUpdated = %v, want newest stamp", c.LastUpdated)
	}
	if c.Temperature != 49 {
		t.Errorf("Temperature = %d, want data of the newest record", c.Temperature)
	}
}

func TestJSRound(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{35.6, 36}, {2.5, 3}, {2.4, 2}, {-2.5, -2}, {-2.6, -3}, {0, 0},
	}
	for _, tt := range tests {
		if got := jsRound(tt.in); got != tt.want {
			t.Errorf("jsRound(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
