package domain

import (
	"fmt"
	"time"
)

// RankCategory buckets a league ranking.
type RankCategory string

const (
	TopRanked    RankCategory = "Top Ranked"
	MediumRanked RankCategory = "Medium Ranked"
	BottomRanked RankCategory = "Bottom Ranked"
	NotRanked    RankCategory = "Not Ranked"
	RankUnknown  RankCategory = "Unknown"
)

// GameDay distinguishes weekend fixtures from midweek ones.
type GameDay string

const (
	Weekend GameDay = "Weekend"
	Weekday GameDay = "Weekday"
)

// TimeSlot buckets the kickoff hour.
type TimeSlot string

const (
	Afternoon TimeSlot = "Afternoon"
	Evening   TimeSlot = "Evening"
	Night     TimeSlot = "Night"
)

// WeatherCategory is the coarse good/bad weather bucket.
type WeatherCategory string

const (
	WeatherGood WeatherCategory = "Good"
	WeatherBad  WeatherCategory = "Bad"
)

// FeatureRecord is the canonical, fully derived representation of one
// prediction request. It is built once by Assemble and only read afterwards.
type FeatureRecord struct {
	League   string
	HomeTeam string
	AwayTeam string
	Matchday int

	Date    time.Time
	Hour    int
	Weekday time.Weekday
	Month   int
	Day     int

	HomeRanking        *int
	AwayRanking        *int
	GoalsScoredLast5   int
	GoalsConcededLast5 int
	WinsLast5          int

	Temperature float64
	Weather     WeatherCondition

	Derby    bool
	Capacity int
	FullRoof bool

	HomeCategory    RankCategory
	AwayCategory    RankCategory
	GameDay         GameDay
	TimeSlot        TimeSlot
	WeatherCategory WeatherCategory

	// Macroeconomic indicators were features at training time but have no
	// serving-side source; they are always zero.
	GDPGrowth        float64
	UnemploymentRate float64
	InflationRate    float64
}

// Assemble merges the match input, the weather lookup and the reference data
// into a FeatureRecord. It performs no I/O.
func Assemble(input MatchInput, weather WeatherLookup, ref *ReferenceData) (FeatureRecord, error) {
	league, ok := ref.LeagueOf(input.HomeTeam)
	if !ok {
		return FeatureRecord{}, fmt.Errorf("assemble features for %q: %w", input.HomeTeam, ErrUnknownTeam)
	}
	stadium, ok := ref.Profile(input.HomeTeam)
	if !ok {
		return FeatureRecord{}, fmt.Errorf("assemble features for %q: %w", input.HomeTeam, ErrMissingStadiumProfile)
	}

	date := CalendarDate(input.Date)

	temperature, condition := 0.0, ConditionUnknown
	if weather.Usable() {
		temperature = weather.Observation.Temperature
		condition = weather.Observation.Condition
	}

	return FeatureRecord{
		League:   league.Slug,
		HomeTeam: input.HomeTeam,
		AwayTeam: input.AwayTeam,
		Matchday: input.Matchday,

		Date:    date,
		Hour:    input.Hour,
		Weekday: date.Weekday(),
		Month:   int(date.Month()),
		Day:     date.Day(),

		HomeRanking:        copyRank(input.HomeRanking),
		AwayRanking:        copyRank(input.AwayRanking),
		GoalsScoredLast5:   input.GoalsScoredLast5,
		GoalsConcededLast5: input.GoalsConcededLast5,
		WinsLast5:          input.WinsLast5,

		Temperature: temperature,
		Weather:     condition,

		Derby:    ref.IsDerby(input.HomeTeam, input.AwayTeam),
		Capacity: stadium.Capacity,
		FullRoof: stadium.FullRoof,

		HomeCategory:    CategorizeRank(input.HomeRanking),
		AwayCategory:    CategorizeRank(input.AwayRanking),
		GameDay:         GameDayOf(date),
		TimeSlot:        TimeSlotOf(input.Hour),
		WeatherCategory: WeatherCategoryOf(condition),
	}, nil
}

// CategorizeRank buckets a ranking. Nil or non-positive ranks are Unknown.
func CategorizeRank(rank *int) RankCategory {
	if rank == nil || *rank < 1 {
		return RankUnknown
	}
	switch r := *rank; {
	case r <= 4:
		return TopRanked
	case r <= 8:
		return MediumRanked
	case r <= 16:
		return BottomRanked
	default:
		return NotRanked
	}
}

// GameDayOf returns Weekend for Saturday and Sunday fixtures.
func GameDayOf(date time.Time) GameDay {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return Weekend
	default:
		return Weekday
	}
}

// TimeSlotOf buckets a kickoff hour: 12–16 Afternoon, 17–21 Evening, else Night.
func TimeSlotOf(hour int) TimeSlot {
	switch {
	case hour >= 12 && hour <= 16:
		return Afternoon
	case hour >= 17 && hour <= 21:
		return Evening
	default:
		return Night
	}
}

// WeatherCategoryOf maps a condition to Good or Bad. Unknown counts as Good.
func WeatherCategoryOf(c WeatherCondition) WeatherCategory {
	if c.Bad() {
		return WeatherBad
	}
	return WeatherGood
}

func copyRank(r *int) *int {
	if r == nil {
		return nil
	}
	v := *r
	return &v
}
