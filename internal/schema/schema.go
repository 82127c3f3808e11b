// Package schema holds the versioned feature schemas the attendance models
// were trained on and encodes feature records against them.
//
// A schema is an ordered list of typed columns. Predictors are positional, so
// the column order of a schema is part of its contract with the model
// artifact trained on it; both are validated against each other at start-up.
package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Variant names one of the two models trained per league.
type Variant string

const (
	WithWeather    Variant = "with_weather"
	WithoutWeather Variant = "without_weather"
)

// Variants lists every model variant in a stable order.
var Variants = []Variant{WithWeather, WithoutWeather}

// Kind is the type of a schema column.
type Kind string

const (
	KindNumeric Kind = "numeric"
	KindOneHot  Kind = "onehot"
)

// ErrInvalidSchema is returned when a schema definition violates an invariant.
var ErrInvalidSchema = errors.New("invalid schema")

// Column is one feature column. One-hot columns are named "<Field>_<Value>".
type Column struct {
	Name  string `yaml:"name"`
	Kind  Kind   `yaml:"kind"`
	Field string `yaml:"field,omitempty"`
}

// Schema is an immutable, ordered feature column list for one model.
type Schema struct {
	Variant Variant
	League  string
	Version string

	columns []Column
	index   map[string]int
	fields  map[string]struct{}
}

// New validates columns and builds a Schema. Column names must be unique,
// numeric columns must be features the encoder produces, and one-hot columns
// must belong to a known categorical field.
func New(variant Variant, league, version string, columns []Column) (*Schema, error) {
	s := &Schema{
		Variant: variant,
		League:  league,
		Version: version,
		columns: append([]Column(nil), columns...),
		index:   make(map[string]int, len(columns)),
		fields:  make(map[string]struct{}),
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %s/%s has no columns", ErrInvalidSchema, league, variant)
	}
	if version == "" {
		return nil, fmt.Errorf("%w: %s/%s has no version", ErrInvalidSchema, league, variant)
	}

	for i, c := range columns {
		if _, dup := s.index[c.Name]; dup {
			return nil, fmt.Errorf("%w: %s/%s: duplicate column %q", ErrInvalidSchema, league, variant, c.Name)
		}
		if err := c.validate(); err != nil {
			return nil, fmt.Errorf("%w: %s/%s: %w", ErrInvalidSchema, league, variant, err)
		}
		s.index[c.Name] = i
		if c.Kind == KindOneHot {
			s.fields[c.Field] = struct{}{}
		}
	}
	return s, nil
}

func (c Column) validate() error {
	switch c.Kind {
	case KindNumeric:
		if !isNumericFeature(c.Name) {
			return fmt.Errorf("numeric column %q is not produced by the encoder", c.Name)
		}
	case KindOneHot:
		if !isCategoricalField(c.Field) {
			return fmt.Errorf("one-hot column %q has unknown field %q", c.Name, c.Field)
		}
		if !strings.HasPrefix(c.Name, c.Field+"_") || len(c.Name) == len(c.Field)+1 {
			return fmt.Errorf("one-hot column %q is not named %q", c.Name, c.Field+"_<value>")
		}
	default:
		return fmt.Errorf("column %q has unknown kind %q", c.Name, c.Kind)
	}
	return nil
}

// Len is the number of columns, and the length of every encoded vector.
func (s *Schema) Len() int { return len(s.columns) }

// Columns returns a copy of the ordered columns.
func (s *Schema) Columns() []Column {
	return append([]Column(nil), s.columns...)
}

// Names returns the ordered column names.
func (s *Schema) Names() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the named column.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// HasField reports whether the schema one-hot encodes field.
func (s *Schema) HasField(field string) bool {
	_, ok := s.fields[field]
	return ok
}

func (s *Schema) String() string {
	return fmt.Sprintf("%s/%s@%s", s.League, s.Variant, s.Version)
}
