package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrMissingStadiumProfile is returned when a team has no stadium profile
	// in the reference data. Prediction is not attempted.
	ErrMissingStadiumProfile = errors.New("missing stadium profile")

	// ErrUnknownTeam is returned when a team is not part of any league roster.
	ErrUnknownTeam = errors.New("team not in any league roster")
)

// ValidationError lists every invalid MatchInput field with a short reason.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid match input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, reason string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = reason
	}
}

func (e *ValidationError) empty() bool {
	return len(e.Fields) == 0
}
