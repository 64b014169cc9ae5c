package fetcher

import (
	"time"

	"pwa-weather/internal/modules/forecast/types"
)

// FallbackCity is the identifier and label of the placeholder forecast.
const FallbackCity = "Salzburg"

var fallbackCreated = time.Date(2016, time.July, 22, 1, 0, 0, 0, time.UTC)

// Fallback returns the fixed placeholder forecast shown on first run and
// whenever live data cannot be obtained.
func Fallback() types.Record {
	day := func(date string, epoch int64, hi, lo float64, code int, sunrise, sunset string) types.ForecastDay {
		return types.ForecastDay{
			Date:      date,
			DateEpoch: epoch,
			Day: types.Day{
				MaxTempF:  hi,
				MinTempF:  lo,
				Condition: types.Condition{Code: types.Code(code)},
			},
			Astro: types.Astro{Sunrise: sunrise, Sunset: sunset},
		}
	}

	return types.Record{
		Identifier: FallbackCity,
		Label:      FallbackCity,
		Created:    fallbackCreated,
		Current: types.Current{
			Condition:  types.Condition{Code: 1003, Text: "Partly cloudy"},
			WindMph:    2.5,
			WindDegree: 130,
			Humidity:   87,
			TempF:      35.6,
		},
		Forecast: types.Forecast{ForecastDay: []types.ForecastDay{
			day("2019-03-30", 1553904000, 64, 34.3, 1003, "05:52 AM", "06:34 PM"),
			day("2019-03-31", 1553990400, 69, 31.3, 2001, "05:56 AM", "06:35 PM"),
			day("2019-04-01", 1554076800, 62, 33.3, 1006, "05:50 AM", "06:37 PM"),
			day("2019-04-02", 1554163200, 61, 32.3, 1003, "05:48 AM", "06:38 PM"),
			day("2019-04-03", 1554249600, 70, 39.3, 1003, "05:45 AM", "06:39 PM"),
			day("2019-04-04", 1554336000, 74, 38.3, 1003, "05:44 AM", "06:41 PM"),
			day("2019-04-05", 1554422400, 62, 32.3, 1276, "05:42 AM", "06:42 PM"),
		}},
		Location: types.Location{
			Name:      FallbackCity,
			LocalTime: "2019-03-30 4:01",
		},
	}
}

// FallbackFor returns the placeholder forecast bound to another city so the
// card that failed to load still gets filled.
func FallbackFor(identifier, label string) types.Record {
	r := Fallback()
	r.Identifier = identifier
	r.Label = label
	if label != "" {
		r.Location.Name = label
	} else if identifier != "" {
		r.Location.Name = identifier
	}
	return r
}
