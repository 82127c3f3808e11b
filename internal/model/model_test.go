package model

import (
	"fmt"
	"math"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/stadium-attendance-service/internal/schema"
)

const testSchema = `
name: %s
league: test-league
version: "test/%s/1"
columns:
  - {name: "Hour", kind: numeric}
  - {name: "Derby", kind: numeric}
  - {name: "Game Day_Weekend", kind: onehot, field: "Game Day"}
`

const testArtifact = `
name: %s
league: test-league
schema_version: "test/%s/1"
type: linear
intercept: 0.5
coefficients:
  - {column: "Hour", weight: 0.01}
  - {column: "Derby", weight: 0.1}
  - {column: "Game Day_Weekend", weight: 0.05}
`

func testSchemas(t *testing.T) *schema.Set {
	t.Helper()
	fsys := fstest.MapFS{}
	for _, v := range schema.Variants {
		fsys["test-league/"+string(v)+".yaml"] = &fstest.MapFile{Data: []byte(fmt.Sprintf(testSchema, v, v))}
	}
	set, err := schema.LoadFS(fsys)
	require.NoError(t, err)
	return set
}

func artifacts(overrides map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for _, v := range schema.Variants {
		fsys["test-league/"+string(v)+".yaml"] = &fstest.MapFile{Data: []byte(fmt.Sprintf(testArtifact, v, v))}
	}
	for name, data := range overrides {
		if data == "" {
			delete(fsys, name)
			continue
		}
		fsys[name] = &fstest.MapFile{Data: []byte(data)}
	}
	return fsys
}

func TestLinear_Predict(t *testing.T) {
	l := &Linear{Intercept: 0.2, Weights: []float64{0.5, -0.25}}

	y, err := l.Predict([]float64{1, 2})
	require.NoError(t, err)
	assert.InDelta(t, 0.2, y, 1e-12)

	_, err = l.Predict([]float64{1})
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestLoad_Embedded(t *testing.T) {
	schemas, err := schema.Load("")
	require.NoError(t, err)

	set, err := Load("", schemas)
	require.NoError(t, err)
	assert.Equal(t, 4, set.Len())

	for _, league := range schemas.Leagues() {
		for _, v := range schema.Variants {
			m, ok := set.Get(league, v)
			require.True(t, ok, "%s/%s", league, v)
			s, _ := schemas.Get(league, v)
			assert.Same(t, s, m.Schema())
			assert.Equal(t, v, m.Variant())
		}
	}
}

func TestLoadFS(t *testing.T) {
	schemas := testSchemas(t)

	set, err := LoadFS(artifacts(nil), schemas)
	require.NoError(t, err)

	m, ok := set.Get("test-league", schema.WithWeather)
	require.True(t, ok)
	assert.Equal(t, "test-league/with_weather", m.Name)

	s, _ := schemas.Get("test-league", schema.WithWeather)
	y, err := m.Predict(schema.Vector{Schema: s, Values: []float64{20, 1, 1}})
	require.NoError(t, err)
	assert.InDelta(t, 0.85, y, 1e-12)
}

func TestLoadFS_Rejects(t *testing.T) {
	withFile := "test-league/with_weather.yaml"

	tests := []struct {
		name     string
		files    map[string]string
		target   error
		contains string
	}{
		{
			name:     "missing model",
			files:    map[string]string{withFile: ""},
			contains: "no with_weather model",
		},
		{
			name: "wrong schema version",
			files: map[string]string{withFile: `
name: with_weather
league: test-league
schema_version: "test/with_weather/0"
type: linear
coefficients: []
`},
			target:   ErrSchemaMismatch,
			contains: "trained on",
		},
		{
			name: "reordered columns",
			files: map[string]string{withFile: `
name: with_weather
league: test-league
schema_version: "test/with_weather/1"
type: linear
coefficients:
  - {column: "Derby", weight: 0.1}
  - {column: "Hour", weight: 0.01}
  - {column: "Game Day_Weekend", weight: 0.05}
`},
			target:   ErrSchemaMismatch,
			contains: `column 0 is "Derby"`,
		},
		{
			name: "too few coefficients",
			files: map[string]string{withFile: `
name: with_weather
league: test-league
schema_version: "test/with_weather/1"
type: linear
coefficients:
  - {column: "Hour", weight: 0.01}
`},
			target:   ErrDimensionMismatch,
			contains: "has 1 coefficients",
		},
		{
			name: "unsupported type",
			files: map[string]string{withFile: `
name: with_weather
league: test-league
schema_version: "test/with_weather/1"
type: random_forest
`},
			contains: "unsupported type",
		},
		{
			name: "nan intercept",
			files: map[string]string{withFile: `
name: with_weather
league: test-league
schema_version: "test/with_weather/1"
type: linear
intercept: .nan
coefficients:
  - {column: "Hour", weight: 0.01}
  - {column: "Derby", weight: 0.1}
  - {column: "Game Day_Weekend", weight: 0.05}
`},
			target:   ErrNonFinite,
			contains: "intercept is NaN",
		},
		{
			name: "infinite weight",
			files: map[string]string{withFile: `
name: with_weather
league: test-league
schema_version: "test/with_weather/1"
type: linear
intercept: 0.5
coefficients:
  - {column: "Hour", weight: 0.01}
  - {column: "Derby", weight: .inf}
  - {column: "Game Day_Weekend", weight: 0.05}
`},
			target:   ErrNonFinite,
			contains: `weight for "Derby" is +Inf`,
		},
		{
			name:     "model without schema",
			files:    map[string]string{"other-league/with_weather.yaml": fmt.Sprintf(testArtifact, "with_weather", "with_weather")},
			contains: "declares",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFS(artifacts(tt.files), testSchemas(t))
			require.Error(t, err)
			if tt.target != nil {
				require.ErrorIs(t, err, tt.target)
			}
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestModel_PredictChecksSchema(t *testing.T) {
	schemas := testSchemas(t)
	with, _ := schemas.Get("test-league", schema.WithWeather)
	without, _ := schemas.Get("test-league", schema.WithoutWeather)

	m := New("test", with, &Linear{Weights: make([]float64, with.Len())})

	_, err := m.Predict(schema.Vector{Schema: without, Values: make([]float64, without.Len())})
	require.ErrorIs(t, err, ErrSchemaMismatch)

	_, err = m.Predict(schema.Vector{Schema: with, Values: []float64{1}})
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

type predictorFunc func([]float64) (float64, error)

func (f predictorFunc) Predict(values []float64) (float64, error) { return f(values) }

func TestModel_PredictRejectsNonFiniteOutput(t *testing.T) {
	with, _ := testSchemas(t).Get("test-league", schema.WithWeather)
	vec := schema.Vector{Schema: with, Values: make([]float64, with.Len())}

	for _, out := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		m := New("test", with, predictorFunc(func([]float64) (float64, error) { return out, nil }))
		_, err := m.Predict(vec)
		require.ErrorIs(t, err, ErrNonFinite, "output %v", out)
	}

	m := New("test", with, predictorFunc(func([]float64) (float64, error) { return 1e15, nil }))
	y, err := m.Predict(vec)
	require.NoError(t, err)
	assert.InDelta(t, 1e15, y, 1)
}
