// Package domain models football match attendance prediction: the raw match
// input, static stadium reference data, weather observations, the canonical
// feature record fed to the encoder, and the attendance classification.
//
// # Match Input
//
// A prediction request names a home and an away team from the same league
// roster, a matchday, a calendar date and a kickoff hour. Form statistics
// (goals scored and conceded, wins) cover the home team's last five games.
// Rankings are optional: a missing or unparseable ranking is not an error,
// it maps to the "Unknown" rank category.
//
// Dates are naive calendar dates. They are normalized to midnight UTC by
// [CalendarDate] and never converted between time zones; weekday, month and
// day are read straight from the calendar date.
//
// # Weather
//
// Weather comes from the Open-Meteo hourly forecast as a temperature in °C and
// a WMO weather interpretation code, bucketed by [ConditionFromCode]:
//
//	0                         Clear or mostly clear
//	1, 2, 3                   Partly cloudy
//	51, 53, 55                Drizzle
//	61, 63, 65, 80, 81, 82    Rainy
//	71, 73, 75, 77, 85, 86    Snowy
//	anything else             Unknown
//
// A lookup that fails for any reason degrades to "no observation" (see
// [LookupWeather]). Only a resolved, recognized condition enables the
// with-weather model.
//
// # Derived Buckets
//
//	Rank category:    ≤4 Top Ranked | 5–8 Medium Ranked | 9–16 Bottom Ranked | >16 Not Ranked
//	Game day:         Saturday/Sunday Weekend | otherwise Weekday
//	Time slot:        12–16h Afternoon | 17–21h Evening | otherwise Night
//	Weather category: Rainy/Drizzle/Snowy Bad | otherwise Good (including Unknown)
//
// # Attendance Status
//
// The model predicts attendance as a fraction of stadium capacity. The scaled
// count is compared with the home stadium's 30th and 70th attendance
// percentiles: strictly below p30 is Low, strictly above p70 is High, and
// everything in between (thresholds included) is Normal.
package domain
