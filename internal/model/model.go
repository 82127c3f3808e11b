// Package model loads the trained attendance regressors and binds each one to
// the feature schema it was trained on.
package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/couchcryptid/stadium-attendance-service/internal/schema"
)

var (
	// ErrSchemaMismatch is returned when a model artifact or an encoded vector
	// does not match the schema the model was trained on.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrDimensionMismatch is returned when a feature vector has the wrong
	// length for the predictor.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrNonFinite is returned for NaN or infinite coefficients or outputs.
	ErrNonFinite = errors.New("non-finite value")
)

// Predictor maps an ordered feature vector to the predicted attendance as a
// fraction of stadium capacity. Implementations must be safe for concurrent
// use.
type Predictor interface {
	Predict(features []float64) (float64, error)
}

// Linear is an ordinary least squares regressor.
type Linear struct {
	Intercept float64
	Weights   []float64
}

func (l *Linear) Predict(features []float64) (float64, error) {
	if len(features) != len(l.Weights) {
		return 0, fmt.Errorf("%w: got %d features, model has %d weights", ErrDimensionMismatch, len(features), len(l.Weights))
	}
	y := l.Intercept
	for i, w := range l.Weights {
		y += w * features[i]
	}
	return y, nil
}

// Model is a predictor bound to its training schema.
type Model struct {
	Name      string
	schema    *schema.Schema
	predictor Predictor
}

// New binds p to s.
func New(name string, s *schema.Schema, p Predictor) *Model {
	return &Model{Name: name, schema: s, predictor: p}
}

// Schema returns the schema the model was trained on.
func (m *Model) Schema() *schema.Schema { return m.schema }

// Variant returns the model's variant.
func (m *Model) Variant() schema.Variant { return m.schema.Variant }

// Predict runs the predictor on v, which must be encoded against the
// model's own schema.
func (m *Model) Predict(v schema.Vector) (float64, error) {
	if v.Schema == nil || v.Schema.Version != m.schema.Version {
		return 0, fmt.Errorf("%w: model %s expects %s, vector encoded for %v", ErrSchemaMismatch, m.Name, m.schema, v.Schema)
	}
	if len(v.Values) != m.schema.Len() {
		return 0, fmt.Errorf("%w: model %s expects %d features, got %d", ErrDimensionMismatch, m.Name, m.schema.Len(), len(v.Values))
	}
	y, err := m.predictor.Predict(v.Values)
	if err != nil {
		return 0, err
	}
	if !finite(y) {
		return 0, fmt.Errorf("%w: model %s predicted %v", ErrNonFinite, m.Name, y)
	}
	return y, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
