package domain

import (
	"errors"
	"fmt"
	"slices"
)

// League is a competition and its selectable roster.
type League struct {
	Slug      string
	Name      string
	Country   string
	Matchdays int
	Teams     []string
}

// HasTeam reports whether team is on the league roster.
func (l League) HasTeam(team string) bool {
	return slices.Contains(l.Teams, team)
}

func (l League) clone() League {
	l.Teams = slices.Clone(l.Teams)
	return l
}

// StadiumProfile holds the static attendance profile of a team's home stadium.
type StadiumProfile struct {
	Team      string
	Stadium   string
	Latitude  float64
	Longitude float64
	Capacity  int
	P30       float64 // 30th percentile of historical home attendance
	P70       float64 // 70th percentile of historical home attendance
	FullRoof  bool
}

// DerbyPair is an unordered pair of rival teams.
type DerbyPair [2]string

// ReferenceData is the read-only lookup store of leagues, stadium profiles
// and derby pairs. It is safe for concurrent use once constructed.
type ReferenceData struct {
	version      int
	leagues      []League
	leagueByTeam map[string]int
	profiles     map[string]StadiumProfile
	derbies      map[DerbyPair]struct{}
}

// NewReferenceData validates and indexes the reference tables. A roster team
// without a stadium profile is allowed here; it fails at prediction time with
// ErrMissingStadiumProfile.
func NewReferenceData(version int, leagues []League, stadiums []StadiumProfile, derbies []DerbyPair) (*ReferenceData, error) {
	r := &ReferenceData{
		version:      version,
		leagues:      make([]League, 0, len(leagues)),
		leagueByTeam: make(map[string]int),
		profiles:     make(map[string]StadiumProfile, len(stadiums)),
		derbies:      make(map[DerbyPair]struct{}, len(derbies)),
	}

	var errs []error
	for _, l := range leagues {
		if l.Slug == "" {
			errs = append(errs, errors.New("league without slug"))
			continue
		}
		for _, team := range l.Teams {
			if prev, dup := r.leagueByTeam[team]; dup {
				errs = append(errs, fmt.Errorf("team %q listed in leagues %q and %q", team, r.leagues[prev].Slug, l.Slug))
				continue
			}
			r.leagueByTeam[team] = len(r.leagues)
		}
		r.leagues = append(r.leagues, l)
	}

	for _, p := range stadiums {
		if err := p.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := r.profiles[p.Team]; dup {
			errs = append(errs, fmt.Errorf("duplicate stadium profile for %q", p.Team))
			continue
		}
		r.profiles[p.Team] = p
	}

	for _, d := range derbies {
		if d[0] == "" || d[1] == "" || d[0] == d[1] {
			errs = append(errs, fmt.Errorf("invalid derby pair %q", d))
			continue
		}
		r.derbies[derbyKey(d[0], d[1])] = struct{}{}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("reference data: %w", err)
	}
	return r, nil
}

// Validate enforces 0 < capacity and p30 <= p70 <= capacity.
func (p StadiumProfile) Validate() error {
	switch {
	case p.Team == "":
		return errors.New("stadium profile without team")
	case p.Capacity <= 0:
		return fmt.Errorf("stadium profile %q: capacity must be positive", p.Team)
	case p.P30 > p.P70:
		return fmt.Errorf("stadium profile %q: p30 %.1f exceeds p70 %.1f", p.Team, p.P30, p.P70)
	case p.P70 > float64(p.Capacity):
		return fmt.Errorf("stadium profile %q: p70 %.1f exceeds capacity %d", p.Team, p.P70, p.Capacity)
	case p.Latitude < -90 || p.Latitude > 90 || p.Longitude < -180 || p.Longitude > 180:
		return fmt.Errorf("stadium profile %q: coordinates out of range", p.Team)
	}
	return nil
}

// Version is the reference table revision.
func (r *ReferenceData) Version() int { return r.version }

// Leagues returns a copy of the configured leagues, rosters included.
func (r *ReferenceData) Leagues() []League {
	out := make([]League, len(r.leagues))
	for i, l := range r.leagues {
		out[i] = l.clone()
	}
	return out
}

// LeagueOf returns the league whose roster contains team.
func (r *ReferenceData) LeagueOf(team string) (League, bool) {
	i, ok := r.leagueByTeam[team]
	if !ok {
		return League{}, false
	}
	return r.leagues[i].clone(), true
}

// Profile returns the stadium profile of team's home ground.
func (r *ReferenceData) Profile(team string) (StadiumProfile, bool) {
	p, ok := r.profiles[team]
	return p, ok
}

// IsDerby reports whether home and away form a configured derby, in either order.
func (r *ReferenceData) IsDerby(home, away string) bool {
	if home == away {
		return false
	}
	_, ok := r.derbies[derbyKey(home, away)]
	return ok
}

// ClassifyFor classifies attendance against team's stadium thresholds.
func (r *ReferenceData) ClassifyFor(team string, attendance int) (Status, error) {
	p, ok := r.Profile(team)
	if !ok {
		return "", fmt.Errorf("classify attendance for %q: %w", team, ErrMissingStadiumProfile)
	}
	return Classify(attendance, p), nil
}

func derbyKey(a, b string) DerbyPair {
	if b < a {
		a, b = b, a
	}
	return DerbyPair{a, b}
}
