package schema

import (
	"strconv"
	"strings"

	"github.com/couchcryptid/stadium-attendance-service/internal/domain"
)

// Categorical fields, one-hot encoded as "<Field>_<Value>".
const (
	FieldMatchday        = "Matchday"
	FieldHomeTeam        = "Home Team"
	FieldAwayTeam        = "Away Team"
	FieldWeather         = "Weather"
	FieldWeekday         = "Weekday"
	FieldHomeCategory    = "Home Team Category"
	FieldAwayCategory    = "Away Team Category"
	FieldGameDay         = "Game Day"
	FieldTimeSlot        = "Time Slot"
	FieldWeatherCategory = "Weather Category"
)

// Numeric features, copied as-is.
const (
	NumHour             = "Hour"
	NumMonth            = "Month"
	NumDay              = "Day"
	NumTemperature      = "Temperature"
	NumHomeRanking      = "Home Team Ranking"
	NumAwayRanking      = "Away Team Ranking"
	NumGoalsScored      = "Goals Scored Last 5"
	NumGoalsConceded    = "Goals Conceded Last 5"
	NumWins             = "Wins Last 5"
	NumDerby            = "Derby"
	NumCapacity         = "Max Capacity"
	NumFullRoof         = "Full Roof"
	NumGDPGrowth        = "GDP Growth"
	NumUnemploymentRate = "Unemployment Rate"
	NumInflationRate    = "Inflation Rate"
)

var categoricalFields = []string{
	FieldMatchday, FieldHomeTeam, FieldAwayTeam, FieldWeather, FieldWeekday,
	FieldHomeCategory, FieldAwayCategory, FieldGameDay, FieldTimeSlot, FieldWeatherCategory,
}

var numericFeatures = []string{
	NumHour, NumMonth, NumDay, NumTemperature, NumHomeRanking, NumAwayRanking,
	NumGoalsScored, NumGoalsConceded, NumWins, NumDerby, NumCapacity, NumFullRoof,
	NumGDPGrowth, NumUnemploymentRate, NumInflationRate,
}

func isCategoricalField(f string) bool { return contains(categoricalFields, f) }

func isNumericFeature(n string) bool { return contains(numericFeatures, n) }

// FieldOf returns the categorical field of a one-hot column name, or "" for
// a numeric column.
func FieldOf(column string) string {
	for _, f := range categoricalFields {
		if strings.HasPrefix(column, f+"_") {
			return f
		}
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Feature is one expanded column of a feature record.
type Feature struct {
	Name  string
	Field string // set for one-hot features
	Value float64
}

// Vector is a feature record encoded against a schema. Values has exactly one
// entry per schema column, in schema order.
type Vector struct {
	Schema *Schema
	Values []float64

	// Dropped lists one-hot columns the record produced for a field the schema
	// encodes, but whose value the schema has never seen. They are left out
	// of Values; the field's columns stay zero.
	Dropped []string
}

// Expand turns a record into its numeric features followed by one indicator
// per categorical field.
func Expand(rec domain.FeatureRecord) []Feature {
	features := []Feature{
		{Name: NumHour, Value: float64(rec.Hour)},
		{Name: NumMonth, Value: float64(rec.Month)},
		{Name: NumDay, Value: float64(rec.Day)},
		{Name: NumTemperature, Value: rec.Temperature},
		{Name: NumHomeRanking, Value: rankValue(rec.HomeRanking)},
		{Name: NumAwayRanking, Value: rankValue(rec.AwayRanking)},
		{Name: NumGoalsScored, Value: float64(rec.GoalsScoredLast5)},
		{Name: NumGoalsConceded, Value: float64(rec.GoalsConcededLast5)},
		{Name: NumWins, Value: float64(rec.WinsLast5)},
		{Name: NumDerby, Value: boolValue(rec.Derby)},
		{Name: NumCapacity, Value: float64(rec.Capacity)},
		{Name: NumFullRoof, Value: boolValue(rec.FullRoof)},
		{Name: NumGDPGrowth, Value: rec.GDPGrowth},
		{Name: NumUnemploymentRate, Value: rec.UnemploymentRate},
		{Name: NumInflationRate, Value: rec.InflationRate},
	}

	categories := []struct {
		field string
		value string
	}{
		{FieldMatchday, strconv.Itoa(rec.Matchday)},
		{FieldHomeTeam, rec.HomeTeam},
		{FieldAwayTeam, rec.AwayTeam},
		{FieldWeather, string(rec.Weather)},
		{FieldWeekday, rec.Weekday.String()},
		{FieldHomeCategory, string(rec.HomeCategory)},
		{FieldAwayCategory, string(rec.AwayCategory)},
		{FieldGameDay, string(rec.GameDay)},
		{FieldTimeSlot, string(rec.TimeSlot)},
		{FieldWeatherCategory, string(rec.WeatherCategory)},
	}
	for _, c := range categories {
		features = append(features, Feature{Name: c.field + "_" + c.value, Field: c.field, Value: 1})
	}
	return features
}

// Encode expands rec and lays the result out in s's column order. Every
// schema column the expansion does not produce is zero. Features the schema
// does not list are not encoded; unseen values of an encoded categorical
// field are reported in Vector.Dropped.
func Encode(rec domain.FeatureRecord, s *Schema) Vector {
	v := Vector{
		Schema: s,
		Values: make([]float64, s.Len()),
	}

	for _, f := range Expand(rec) {
		i, ok := s.Index(f.Name)
		if ok {
			v.Values[i] = f.Value
			continue
		}
		if f.Field != "" && s.HasField(f.Field) {
			v.Dropped = append(v.Dropped, f.Name)
		}
	}
	return v
}

// Named returns the value of the named column.
func (v Vector) Named(name string) (float64, bool) {
	i, ok := v.Schema.Index(name)
	if !ok {
		return 0, false
	}
	return v.Values[i], true
}

func rankValue(r *int) float64 {
	if r == nil {
		return 0
	}
	return float64(*r)
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
