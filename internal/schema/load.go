package schema

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed definitions
var embedded embed.FS

type definition struct {
	Name    Variant  `yaml:"name"`
	League  string   `yaml:"league"`
	Version string   `yaml:"version"`
	Columns []Column `yaml:"columns"`
}

type key struct {
	league  string
	variant Variant
}

// Set is the immutable collection of loaded schemas, keyed by league and
// variant.
type Set struct {
	schemas map[key]*Schema
}

// Load reads every "<league>/<variant>.yaml" definition under dir. An empty
// dir loads the definitions bundled with the binary.
func Load(dir string) (*Set, error) {
	var fsys fs.FS
	if dir == "" {
		sub, err := fs.Sub(embedded, "definitions")
		if err != nil {
			return nil, fmt.Errorf("open embedded schemas: %w", err)
		}
		fsys = sub
	} else {
		fsys = os.DirFS(dir)
	}
	return LoadFS(fsys)
}

// LoadFS reads schema definitions from fsys. Every league directory must
// define both variants.
func LoadFS(fsys fs.FS) (*Set, error) {
	set := &Set{schemas: make(map[key]*Schema)}

	files, err := fs.Glob(fsys, "*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no schema definitions found", ErrInvalidSchema)
	}

	for _, file := range files {
		s, err := readDefinition(fsys, file)
		if err != nil {
			return nil, err
		}
		set.schemas[key{s.League, s.Variant}] = s
	}

	for _, league := range set.Leagues() {
		for _, v := range Variants {
			if _, ok := set.schemas[key{league, v}]; !ok {
				return nil, fmt.Errorf("%w: league %q has no %s schema", ErrInvalidSchema, league, v)
			}
		}
	}
	return set, nil
}

func readDefinition(fsys fs.FS, file string) (*Schema, error) {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", file, err)
	}

	var def definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", file, err)
	}

	league := path.Dir(file)
	variant := Variant(strings.TrimSuffix(path.Base(file), ".yaml"))
	if variant != WithWeather && variant != WithoutWeather {
		return nil, fmt.Errorf("%w: %s: unknown variant %q", ErrInvalidSchema, file, variant)
	}
	if def.Name != variant || def.League != league {
		return nil, fmt.Errorf("%w: %s declares %s/%s", ErrInvalidSchema, file, def.League, def.Name)
	}
	return New(variant, league, def.Version, def.Columns)
}

// Get returns the schema for league and variant.
func (s *Set) Get(league string, variant Variant) (*Schema, bool) {
	sc, ok := s.schemas[key{league, variant}]
	return sc, ok
}

// Leagues returns the leagues with schemas, sorted.
func (s *Set) Leagues() []string {
	seen := make(map[string]struct{})
	for k := range s.schemas {
		seen[k.league] = struct{}{}
	}
	leagues := make([]string, 0, len(seen))
	for l := range seen {
		leagues = append(leagues, l)
	}
	sort.Strings(leagues)
	return leagues
}
