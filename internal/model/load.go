package model

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/stadium-attendance-service/internal/schema"
)

//go:embed artifacts
var embedded embed.FS

const typeLinear = "linear"

type artifact struct {
	Name          schema.Variant `yaml:"name"`
	League        string         `yaml:"league"`
	SchemaVersion string         `yaml:"schema_version"`
	Type          string         `yaml:"type"`
	Intercept     float64        `yaml:"intercept"`
	Coefficients  []struct {
		Column string  `yaml:"column"`
		Weight float64 `yaml:"weight"`
	} `yaml:"coefficients"`
}

type key struct {
	league  string
	variant schema.Variant
}

// Set holds one model per league and variant. It is immutable after Load.
type Set struct {
	models map[key]*Model
}

// NewSet builds a Set from already bound models.
func NewSet(models ...*Model) *Set {
	s := &Set{models: make(map[key]*Model, len(models))}
	for _, m := range models {
		s.models[key{m.schema.League, m.schema.Variant}] = m
	}
	return s
}

// Load reads "<league>/<variant>.yaml" artifacts from dir, or the bundled
// artifacts when dir is empty, and validates each against its schema.
func Load(dir string, schemas *schema.Set) (*Set, error) {
	var fsys fs.FS
	if dir == "" {
		sub, err := fs.Sub(embedded, "artifacts")
		if err != nil {
			return nil, fmt.Errorf("open embedded models: %w", err)
		}
		fsys = sub
	} else {
		fsys = os.DirFS(dir)
	}
	return LoadFS(fsys, schemas)
}

// LoadFS reads model artifacts from fsys. Every schema must have a model and
// every model must have a schema.
func LoadFS(fsys fs.FS, schemas *schema.Set) (*Set, error) {
	set := &Set{models: make(map[key]*Model)}

	files, err := fs.Glob(fsys, "*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	var errs []error
	for _, file := range files {
		m, err := readArtifact(fsys, file, schemas)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		set.models[key{m.schema.League, m.schema.Variant}] = m
	}
	for _, league := range schemas.Leagues() {
		for _, v := range schema.Variants {
			if _, ok := set.models[key{league, v}]; !ok {
				errs = append(errs, fmt.Errorf("no %s model for league %q", v, league))
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("load models: %w", err)
	}
	return set, nil
}

func readArtifact(fsys fs.FS, file string, schemas *schema.Set) (*Model, error) {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", file, err)
	}

	var a artifact
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse model %s: %w", file, err)
	}

	league := path.Dir(file)
	variant := schema.Variant(strings.TrimSuffix(path.Base(file), ".yaml"))
	if a.Name != variant || a.League != league {
		return nil, fmt.Errorf("model %s declares %s/%s", file, a.League, a.Name)
	}
	if a.Type != typeLinear {
		return nil, fmt.Errorf("model %s: unsupported type %q", file, a.Type)
	}

	s, ok := schemas.Get(league, variant)
	if !ok {
		return nil, fmt.Errorf("%w: model %s has no schema", ErrSchemaMismatch, file)
	}
	if a.SchemaVersion != s.Version {
		return nil, fmt.Errorf("%w: model %s trained on %q, schema is %q", ErrSchemaMismatch, file, a.SchemaVersion, s.Version)
	}

	if !finite(a.Intercept) {
		return nil, fmt.Errorf("%w: model %s intercept is %v", ErrNonFinite, file, a.Intercept)
	}

	names := s.Names()
	if len(a.Coefficients) != len(names) {
		return nil, fmt.Errorf("%w: model %s has %d coefficients, schema %s has %d columns",
			ErrDimensionMismatch, file, len(a.Coefficients), s, len(names))
	}
	weights := make([]float64, len(names))
	for i, c := range a.Coefficients {
		if c.Column != names[i] {
			return nil, fmt.Errorf("%w: model %s column %d is %q, schema has %q", ErrSchemaMismatch, file, i, c.Column, names[i])
		}
		if !finite(c.Weight) {
			return nil, fmt.Errorf("%w: model %s weight for %q is %v", ErrNonFinite, file, c.Column, c.Weight)
		}
		weights[i] = c.Weight
	}

	return New(league+"/"+string(variant), s, &Linear{Intercept: a.Intercept, Weights: weights}), nil
}

// Get returns the model for league and variant.
func (s *Set) Get(league string, variant schema.Variant) (*Model, bool) {
	m, ok := s.models[key{league, variant}]
	return m, ok
}

// Len is the number of loaded models.
func (s *Set) Len() int { return len(s.models) }
