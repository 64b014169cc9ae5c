package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CityEntry is one tracked city. The identifier is the weather API query and
// is persisted under "key" to stay compatible with lists saved by the browser app.
type CityEntry struct {
	Identifier string `json:"key"`
	Label      string `json:"label"`
}

// Code is a weather condition code. The API sends numbers; cached payloads from
// older providers carry them as strings, so both decode.
type Code int

func (c *Code) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*c = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, ok := ParseCode(s)
		if !ok {
			return fmt.Errorf("invalid condition code %q", s)
		}
		*c = Code(n)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("invalid condition code %s: %w", b, err)
	}
	*c = Code(int(f))
	return nil
}

// ParseCode reads the leading integer of s, ignoring anything after it.
func ParseCode(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		ch := s[end]
		if (ch == '-' || ch == '+') && end == 0 {
			end++
			continue
		}
		if ch < '0' || ch > '9' {
			break
		}
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

type Condition struct {
	Code Code   `json:"code"`
	Text string `json:"text,omitempty"`
}

type Current struct {
	Humidity   float64   `json:"humidity"`
	WindMph    float64   `json:"wind_mph"`
	WindDegree float64   `json:"wind_degree"`
	TempF      float64   `json:"temp_f"`
	Condition  Condition `json:"condition"`
}

type Day struct {
	MaxTempF  float64   `json:"maxtemp_f"`
	MinTempF  float64   `json:"mintemp_f"`
	Condition Condition `json:"condition"`
}

type Astro struct {
	Sunrise string `json:"sunrise"`
	Sunset  string `json:"sunset"`
}

type ForecastDay struct {
	Date      string `json:"date"`
	DateEpoch int64  `json:"date_epoch"`
	Day       Day    `json:"day"`
	Astro     Astro  `json:"astro"`
}

type Forecast struct {
	ForecastDay []ForecastDay `json:"forecastday"`
}

type Location struct {
	Name      string `json:"name"`
	LocalTime string `json:"localtime"`
}

// Payload is the subset of the forecast.json response body the cards use.
type Payload struct {
	Current  Current  `json:"current"`
	Forecast Forecast `json:"forecast"`
	Location Location `json:"location"`
}

// Record is a normalized forecast for one city at one point in time.
type Record struct {
	Identifier string    `json:"key"`
	Label      string    `json:"label"`
	Created    time.Time `json:"created"`
	Current    Current   `json:"current"`
	Forecast   Forecast  `json:"forecast"`
	Location   Location  `json:"location"`
}

// NewRecord stamps a decoded payload for a city.
func NewRecord(p Payload, identifier, label string, created time.Time) Record {
	return Record{
		Identifier: identifier,
		Label:      label,
		Created:    created,
		Current:    p.Current,
		Forecast:   p.Forecast,
		Location:   p.Location,
	}
}
