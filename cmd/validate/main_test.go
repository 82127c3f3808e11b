package main

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_EmbeddedData(t *testing.T) {
	var out bytes.Buffer
	code := run(&out, "", "", "")

	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "All validations passed.")
}

func TestRun_LeagueWithoutSchemas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reference.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: 1
leagues:
  - slug: eredivisie
    name: Eredivisie
    country: Netherlands
    matchdays: 34
    teams: ["Ajax", "PSV"]
stadiums:
  - team: Ajax
    latitude: 52.3143
    longitude: 4.9419
    capacity: 55865
    p30: 50000
    p70: 54000
`), 0o600))

	var out bytes.Buffer
	code := run(&out, path, "", "")

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "league eredivisie: no with_weather schema")
	assert.Contains(t, out.String(), "PSV (eredivisie) has no stadium profile")
	assert.Contains(t, out.String(), "Validation FAILED.")
}

func TestRun_MissingReferenceFile(t *testing.T) {
	var out bytes.Buffer
	code := run(&out, filepath.Join(t.TempDir(), "missing.yaml"), "", "")

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "FATAL: load reference data")
}

// copyArtifacts copies the bundled model artifacts into a temp directory.
func copyArtifacts(t *testing.T) string {
	t.Helper()
	src := filepath.Join("..", "..", "internal", "model", "artifacts")
	dst := t.TempDir()
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			return os.MkdirAll(filepath.Join(dst, rel), 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(dst, rel), data, 0o600)
	})
	require.NoError(t, err)
	return dst
}

func TestRun_NonFiniteCoefficients(t *testing.T) {
	dir := copyArtifacts(t)
	path := filepath.Join(dir, "pro-league", "with_weather.yaml")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data = regexp.MustCompile(`(?m)^intercept: .*$`).ReplaceAll(data, []byte("intercept: .nan"))
	require.NoError(t, os.WriteFile(path, data, 0o600))

	var out bytes.Buffer
	code := run(&out, "", "", dir)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "FATAL: load models")
	assert.Contains(t, out.String(), "non-finite value")
}

func TestRun_CopiedArtifactsPass(t *testing.T) {
	var out bytes.Buffer
	code := run(&out, "", "", copyArtifacts(t))
	assert.Equal(t, 0, code, out.String())
}
