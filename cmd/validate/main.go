// Command validate performs offline integrity checks on the data the service
// loads at startup: reference tables, feature schemas, and model artifacts.
// Every roster team is encoded against every schema of its league and run
// through the matching model, so a broken bundle fails here instead of at
// the first request.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -reference data/reference.yaml \
//	  -schemas data/schemas \
//	  -models data/models
//
// Empty paths check the data embedded in the binary.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/couchcryptid/stadium-attendance-service/internal/domain"
	"github.com/couchcryptid/stadium-attendance-service/internal/model"
	"github.com/couchcryptid/stadium-attendance-service/internal/refdata"
	"github.com/couchcryptid/stadium-attendance-service/internal/schema"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
	notes  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	refPath := flag.String("reference", "", "reference data YAML (empty for embedded)")
	schemaDir := flag.String("schemas", "", "feature schema directory (empty for embedded)")
	modelDir := flag.String("models", "", "model artifact directory (empty for embedded)")
	flag.Parse()

	os.Exit(run(os.Stdout, *refPath, *schemaDir, *modelDir))
}

func run(w io.Writer, refPath, schemaDir, modelDir string) int {
	fmt.Fprintln(w, "=== Attendance Data Validation ===")
	fmt.Fprintln(w)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ref, err := refdata.Load(refPath, logger)
	if err != nil {
		fmt.Fprintf(w, "FATAL: load reference data: %v\n", err)
		return 1
	}
	schemas, err := schema.Load(schemaDir)
	if err != nil {
		fmt.Fprintf(w, "FATAL: load schemas: %v\n", err)
		return 1
	}
	models, err := model.Load(modelDir, schemas)
	if err != nil {
		fmt.Fprintf(w, "FATAL: load models: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateReference(ref),
		validateSchemaCoverage(ref, schemas),
		validateModels(ref, schemas, models),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Reference v%d: %d leagues, %d schemas, %d models\n",
		ref.Version(), len(ref.Leagues()), 2*len(schemas.Leagues()), models.Len())

	for _, p := range phases {
		for _, n := range p.notes {
			fmt.Fprintf(w, "  Note: %s\n", n)
		}
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

// ── Phase 1: Reference data ──

func validateReference(ref *domain.ReferenceData) *phase {
	p := &phase{name: "Phase 1: Reference Data"}

	for _, l := range ref.Leagues() {
		if len(l.Teams) < 2 {
			p.errorf("league %s: roster has %d teams, need at least 2", l.Slug, len(l.Teams))
		}
		if l.Matchdays < 1 {
			p.errorf("league %s: matchdays must be positive", l.Slug)
		}
		for _, team := range l.Teams {
			profile, ok := ref.Profile(team)
			if !ok {
				p.notef("%s (%s) has no stadium profile; predictions for its home games fail", team, l.Slug)
				continue
			}
			if profile.Latitude < -90 || profile.Latitude > 90 || profile.Longitude < -180 || profile.Longitude > 180 {
				p.errorf("%s: coordinates %.4f,%.4f out of range", team, profile.Latitude, profile.Longitude)
			}
		}
	}
	return p
}

// ── Phase 2: Schema coverage ──

func validateSchemaCoverage(ref *domain.ReferenceData, schemas *schema.Set) *phase {
	p := &phase{name: "Phase 2: Schema Coverage"}

	for _, l := range ref.Leagues() {
		for _, v := range schema.Variants {
			if _, ok := schemas.Get(l.Slug, v); !ok {
				p.errorf("league %s: no %s schema", l.Slug, v)
			}
		}
	}
	return p
}

// ── Phase 3: Models ──

// validateModels encodes every team with a stadium profile against both
// variants of its league and checks the model output is a finite number.
func validateModels(ref *domain.ReferenceData, schemas *schema.Set, models *model.Set) *phase {
	p := &phase{name: "Phase 3: Model Artifacts"}

	lookups := map[schema.Variant]domain.WeatherLookup{
		schema.WithWeather: {
			Observation: &domain.WeatherObservation{Temperature: 15, Code: 0, Condition: domain.ConditionClear},
			Status:      domain.WeatherResolved,
		},
		schema.WithoutWeather: {Status: domain.WeatherUnavailable},
	}

	for _, l := range ref.Leagues() {
		for _, v := range schema.Variants {
			s, ok := schemas.Get(l.Slug, v)
			if !ok {
				continue
			}
			m, ok := models.Get(l.Slug, v)
			if !ok {
				p.errorf("league %s: no %s model", l.Slug, v)
				continue
			}
			for _, in := range sampleMatches(ref, l) {
				rec, err := domain.Assemble(in, lookups[v], ref)
				if err != nil {
					p.errorf("%s: assemble %s vs %s: %v", s, in.HomeTeam, in.AwayTeam, err)
					continue
				}
				out, err := m.Predict(schema.Encode(rec, s))
				switch {
				case err != nil:
					p.errorf("%s: predict %s vs %s: %v", m.Name, in.HomeTeam, in.AwayTeam, err)
				case math.IsNaN(out) || math.IsInf(out, 0):
					p.errorf("%s: %s vs %s produced %v", m.Name, in.HomeTeam, in.AwayTeam, out)
				}
			}
		}
	}
	return p
}

// sampleMatches pairs every roster team that has a stadium profile with the
// next team on the roster.
func sampleMatches(ref *domain.ReferenceData, l domain.League) []domain.MatchInput {
	date := time.Date(2025, time.October, 18, 0, 0, 0, 0, time.UTC)
	var out []domain.MatchInput
	for i, home := range l.Teams {
		if _, ok := ref.Profile(home); !ok || len(l.Teams) < 2 {
			continue
		}
		out = append(out, domain.MatchInput{
			HomeTeam: home,
			AwayTeam: l.Teams[(i+1)%len(l.Teams)],
			Matchday: 1,
			Date:     date,
			Hour:     15,
		})
	}
	return out
}
