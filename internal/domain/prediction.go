package domain

import "time"

// Prediction is the result of one attendance prediction. It is returned to
// the caller and optionally published as an event; it is never stored.
type Prediction struct {
	ID       string `json:"id"`
	League   string `json:"league"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
	Matchday int    `json:"matchday"`
	Date     string `json:"date"`
	Hour     int    `json:"hour"`

	ModelVariant  string  `json:"model_variant"`
	SchemaVersion string  `json:"schema_version"`
	RawOutput     float64 `json:"raw_output"`

	// Fraction is RawOutput bounded to [0, 1]. Attendance is scaled from the
	// raw output and capped at capacity only.
	Fraction   float64    `json:"fraction"`
	Attendance int        `json:"attendance"`
	Capacity   int        `json:"capacity"`
	Status     Status     `json:"status"`
	Thresholds Thresholds `json:"thresholds"`

	Weather     WeatherSummary `json:"weather"`
	PredictedAt time.Time      `json:"predicted_at"`
}

// Thresholds are the stadium percentiles a prediction was classified against.
type Thresholds struct {
	P30 float64 `json:"p30"`
	P70 float64 `json:"p70"`
}

// WeatherSummary reports the weather lookup behind a prediction.
type WeatherSummary struct {
	Status      WeatherStatus    `json:"status"`
	Temperature *float64         `json:"temperature,omitempty"`
	Condition   WeatherCondition `json:"condition,omitempty"`
	Annotation  string           `json:"annotation"`
}

// Summary converts a lookup into its reported form. Temperature and
// condition are set whenever the resolver answered, even if the condition
// was not recognized.
func (l WeatherLookup) Summary() WeatherSummary {
	s := WeatherSummary{Status: l.Status, Annotation: l.Annotation()}
	if l.Observation != nil {
		temp := l.Observation.Temperature
		s.Temperature = &temp
		s.Condition = l.Observation.Condition
	}
	return s
}
