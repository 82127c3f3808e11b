package domain

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// WeatherCondition is the six-way weather bucket used as a model feature.
type WeatherCondition string

const (
	ConditionClear        WeatherCondition = "Clear or mostly clear"
	ConditionPartlyCloudy WeatherCondition = "Partly cloudy"
	ConditionRainy        WeatherCondition = "Rainy"
	ConditionDrizzle      WeatherCondition = "Drizzle"
	ConditionSnowy        WeatherCondition = "Snowy"
	ConditionUnknown      WeatherCondition = "Unknown"
)

// ConditionFromCode maps a WMO weather interpretation code to its bucket.
func ConditionFromCode(code int) WeatherCondition {
	switch code {
	case 0:
		return ConditionClear
	case 1, 2, 3:
		return ConditionPartlyCloudy
	case 61, 63, 65, 80, 81, 82:
		return ConditionRainy
	case 51, 53, 55:
		return ConditionDrizzle
	case 71, 73, 75, 77, 85, 86:
		return ConditionSnowy
	default:
		return ConditionUnknown
	}
}

// Bad reports whether the condition keeps spectators away (rain, drizzle, snow).
func (c WeatherCondition) Bad() bool {
	switch c {
	case ConditionRainy, ConditionDrizzle, ConditionSnowy:
		return true
	default:
		return false
	}
}

// WeatherObservation is the forecast at the stadium for the kickoff hour.
type WeatherObservation struct {
	Temperature float64          `json:"temperature"`
	Code        int              `json:"code"`
	Condition   WeatherCondition `json:"condition"`
}

// WeatherResolver fetches the forecast for a location, calendar date and hour.
type WeatherResolver interface {
	ResolveWeather(ctx context.Context, lat, lon float64, date time.Time, hour int) (WeatherObservation, error)
}

// WeatherStatus records how a weather lookup ended.
type WeatherStatus string

const (
	WeatherResolved     WeatherStatus = "resolved"
	WeatherUnrecognized WeatherStatus = "unrecognized"
	WeatherUnavailable  WeatherStatus = "unavailable"
	WeatherDisabled     WeatherStatus = "disabled"
)

// WeatherLookup is the outcome of a weather resolution attempt. Observation is
// nil unless the resolver answered.
type WeatherLookup struct {
	Observation *WeatherObservation
	Status      WeatherStatus
}

// Usable reports whether the observation may feed the with-weather model:
// it must exist and carry a recognized condition.
func (l WeatherLookup) Usable() bool {
	return l.Observation != nil && l.Observation.Condition != ConditionUnknown
}

// Annotation is the human-readable weather status shown next to a prediction.
func (l WeatherLookup) Annotation() string {
	switch {
	case l.Usable():
		return fmt.Sprintf("Weather data used: %.1f°C, %s", l.Observation.Temperature, l.Observation.Condition)
	case l.Status == WeatherUnrecognized:
		return "Weather condition not recognized; prediction made without weather data"
	case l.Status == WeatherDisabled:
		return "Weather lookup disabled; prediction made without weather data"
	default:
		return "Weather data unavailable; prediction made without weather data"
	}
}

// LookupWeather resolves the forecast at the home stadium. Failures never
// propagate: a nil resolver yields WeatherDisabled and any resolver error
// yields WeatherUnavailable (graceful degradation).
func LookupWeather(ctx context.Context, resolver WeatherResolver, stadium StadiumProfile, date time.Time, hour int, logger *slog.Logger) WeatherLookup {
	if resolver == nil {
		return WeatherLookup{Status: WeatherDisabled}
	}

	obs, err := resolver.ResolveWeather(ctx, stadium.Latitude, stadium.Longitude, CalendarDate(date), hour)
	if err != nil {
		logger.Warn("weather lookup failed",
			"team", stadium.Team,
			"lat", stadium.Latitude,
			"lon", stadium.Longitude,
			"date", date.Format(DateLayout),
			"hour", hour,
			"error", err,
		)
		return WeatherLookup{Status: WeatherUnavailable}
	}

	if obs.Condition == "" {
		obs.Condition = ConditionFromCode(obs.Code)
	}
	if obs.Condition == ConditionUnknown {
		logger.Info("weather code not recognized",
			"team", stadium.Team,
			"code", obs.Code,
		)
		return WeatherLookup{Observation: &obs, Status: WeatherUnrecognized}
	}
	return WeatherLookup{Observation: &obs, Status: WeatherResolved}
}
