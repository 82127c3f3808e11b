package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire format of match dates.
const DateLayout = "2006-01-02"

// MatchInput is the raw, user-supplied description of a match to predict.
// Form statistics refer to the home team's last five games.
type MatchInput struct {
	HomeTeam           string    `json:"home_team" validate:"required"`
	AwayTeam           string    `json:"away_team" validate:"required,nefield=HomeTeam"`
	Matchday           int       `json:"matchday" validate:"min=1,max=36"`
	Date               time.Time `json:"date" validate:"required"`
	Hour               int       `json:"hour" validate:"min=0,max=23"`
	HomeRanking        *int      `json:"home_ranking,omitempty" validate:"omitempty,min=1,max=20"`
	AwayRanking        *int      `json:"away_ranking,omitempty" validate:"omitempty,min=1,max=20"`
	GoalsScoredLast5   int       `json:"goals_scored_last5" validate:"min=0,max=50"`
	GoalsConcededLast5 int       `json:"goals_conceded_last5" validate:"min=0,max=50"`
	WinsLast5          int       `json:"wins_last5" validate:"min=0,max=5"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names so errors match what API callers sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field bounds, that both teams belong to the same league
// roster, that the matchday exists in that league's season, and that the
// match date is not in the past.
func (m MatchInput) Validate(ref *ReferenceData) error {
	verr := &ValidationError{}

	if err := validate.Struct(m); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate match input: %w", err)
		}
		for _, fe := range fieldErrs {
			verr.add(fe.Field(), describeFieldError(fe))
		}
	}

	if !m.Date.IsZero() && CalendarDate(m.Date).Before(Today()) {
		verr.add("date", "must not be in the past")
	}

	if ref != nil && m.HomeTeam != "" {
		home, ok := ref.LeagueOf(m.HomeTeam)
		switch {
		case !ok:
			verr.add("home_team", "not in any league roster")
		case m.AwayTeam != "" && m.AwayTeam != m.HomeTeam && !home.HasTeam(m.AwayTeam):
			verr.add("away_team", fmt.Sprintf("not in the %s roster", home.Name))
		}
		if ok && home.Matchdays > 0 && m.Matchday > home.Matchdays {
			verr.add("matchday", fmt.Sprintf("must be at most %d in the %s", home.Matchdays, home.Name))
		}
	}

	if verr.empty() {
		return nil
	}
	return verr
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "nefield":
		return "must differ from home_team"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// CalendarDate strips the clock and zone from t, keeping its calendar day.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse match date %q: %w", s, err)
	}
	return t, nil
}

// ParseRank converts a free-form ranking into a rank. Empty or non-numeric
// input yields nil, which categorizes as Unknown.
func ParseRank(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return nil
		}
		v = int(f)
	}
	return &v
}
