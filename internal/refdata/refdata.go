// Package refdata loads the static reference tables (league rosters, stadium
// profiles, derby pairs) from YAML. The default table is embedded in the
// binary; an on-disk file replaces it when configured.
package refdata

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/stadium-attendance-service/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed data/reference.yaml
var embedded []byte

type file struct {
	Version  int          `yaml:"version"`
	Leagues  []leagueRow  `yaml:"leagues"`
	Stadiums []stadiumRow `yaml:"stadiums"`
	Derbies  [][2]string  `yaml:"derbies"`
}

type leagueRow struct {
	Slug      string   `yaml:"slug"`
	Name      string   `yaml:"name"`
	Country   string   `yaml:"country"`
	Matchdays int      `yaml:"matchdays"`
	Teams     []string `yaml:"teams"`
}

type stadiumRow struct {
	Team      string  `yaml:"team"`
	Stadium   string  `yaml:"stadium"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Capacity  int     `yaml:"capacity"`
	P30       float64 `yaml:"p30"`
	P70       float64 `yaml:"p70"`
	FullRoof  bool    `yaml:"full_roof"`
}

// Load reads the reference tables from path, or the embedded defaults when
// path is empty. Roster teams without a stadium profile are logged, not rejected.
func Load(path string, logger *slog.Logger) (*domain.ReferenceData, error) {
	data := embedded
	source := "embedded"
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read reference data: %w", err)
		}
		data, source = b, path
	}

	ref, err := Parse(data)
	if err != nil {
		return nil, err
	}

	for _, team := range MissingProfiles(ref) {
		logger.Warn("roster team has no stadium profile", "team", team, "source", source)
	}
	logger.Info("reference data loaded", "source", source, "version", ref.Version(), "leagues", len(ref.Leagues()))
	return ref, nil
}

// Parse decodes and validates a reference data document.
func Parse(data []byte) (*domain.ReferenceData, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse reference data: %w", err)
	}

	leagues := make([]domain.League, 0, len(f.Leagues))
	for _, l := range f.Leagues {
		leagues = append(leagues, domain.League{
			Slug:      l.Slug,
			Name:      l.Name,
			Country:   l.Country,
			Matchdays: l.Matchdays,
			Teams:     l.Teams,
		})
	}

	stadiums := make([]domain.StadiumProfile, 0, len(f.Stadiums))
	for _, s := range f.Stadiums {
		stadiums = append(stadiums, domain.StadiumProfile(s))
	}

	derbies := make([]domain.DerbyPair, 0, len(f.Derbies))
	for _, d := range f.Derbies {
		derbies = append(derbies, domain.DerbyPair(d))
	}

	return domain.NewReferenceData(f.Version, leagues, stadiums, derbies)
}

// MissingProfiles lists roster teams that have no stadium profile.
func MissingProfiles(ref *domain.ReferenceData) []string {
	var missing []string
	for _, l := range ref.Leagues() {
		for _, team := range l.Teams {
			if _, ok := ref.Profile(team); !ok {
				missing = append(missing, team)
			}
		}
	}
	return missing
}
