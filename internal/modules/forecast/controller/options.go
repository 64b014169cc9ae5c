package controller

import "pwa-weather/internal/modules/forecast/views"

// DefaultCityOptions is the add-city selector content.
var DefaultCityOptions = []views.CityOption{
	{Key: "Salzburg", Label: "Salzburg"},
	{Key: "Vienna", Label: "Vienna"},
	{Key: "Graz", Label: "Graz"},
	{Key: "Innsbruck", Label: "Innsbruck"},
	{Key: "Linz", Label: "Linz"},
	{Key: "Munich", Label: "Munich"},
	{Key: "Zurich", Label: "Zurich"},
	{Key: "London", Label: "London"},
	{Key: "New York", Label: "New York, NY"},
	{Key: "San Francisco", Label: "San Francisco, CA"},
}

// labelFor returns the selector label for key, or key itself when the key is
// not one of the options.
func labelFor(options []views.CityOption, key string) string {
	for _, o := range options {
		if o.Key == key {
			return o.Label
		}
	}
	return key
}
