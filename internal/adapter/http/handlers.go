package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/couchcryptid/stadium-attendance-service/internal/domain"
	"github.com/couchcryptid/stadium-attendance-service/internal/pipeline"
)

const maxBodyBytes = 64 << 10

// predictionRequest is the POST /api/v1/predictions body.
type predictionRequest struct {
	HomeTeam           string `json:"home_team"`
	AwayTeam           string `json:"away_team"`
	Matchday           int    `json:"matchday"`
	Date               string `json:"date"`
	Hour               int    `json:"hour"`
	HomeRanking        rank   `json:"home_ranking"`
	AwayRanking        rank   `json:"away_ranking"`
	GoalsScoredLast5   int    `json:"goals_scored_last5"`
	GoalsConcededLast5 int    `json:"goals_conceded_last5"`
	WinsLast5          int    `json:"wins_last5"`
}

// rank accepts a league position as a number, a string or null. Anything
// that is not a whole number is treated as unknown.
type rank struct {
	value *int
}

func (r *rank) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		r.value = nil
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		r.value = domain.ParseRank(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.value = domain.ParseRank(s)
		return nil
	}
	return errors.New("must be a number, a string or null")
}

func (req predictionRequest) toInput() (domain.MatchInput, error) {
	in := domain.MatchInput{
		HomeTeam:           req.HomeTeam,
		AwayTeam:           req.AwayTeam,
		Matchday:           req.Matchday,
		Hour:               req.Hour,
		HomeRanking:        req.HomeRanking.value,
		AwayRanking:        req.AwayRanking.value,
		GoalsScoredLast5:   req.GoalsScoredLast5,
		GoalsConcededLast5: req.GoalsConcededLast5,
		WinsLast5:          req.WinsLast5,
	}
	if req.Date == "" {
		return in, nil
	}
	date, err := domain.ParseDate(req.Date)
	if err != nil {
		return in, &domain.ValidationError{Fields: map[string]string{"date": "must be a date in " + domain.DateLayout + " format"}}
	}
	in.Date = date
	return in, nil
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req predictionRequest
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	in, err := req.toInput()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	pred, err := s.service.Predict(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid match input", Fields: verr.Fields})
	case errors.Is(err, domain.ErrMissingStadiumProfile), errors.Is(err, domain.ErrUnknownTeam), errors.Is(err, pipeline.ErrUnknownLeague):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		s.logger.Error("prediction failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "prediction failed"})
	}
}

type leagueResponse struct {
	Slug      string   `json:"slug"`
	Name      string   `json:"name"`
	Country   string   `json:"country"`
	Matchdays int      `json:"matchdays"`
	Teams     []string `json:"teams"`
}

type teamsResponse struct {
	Version int              `json:"version"`
	Leagues []leagueResponse `json:"leagues"`
}

func (s *Server) handleTeams(w http.ResponseWriter, _ *http.Request) {
	ref := s.service.Reference()
	resp := teamsResponse{Version: ref.Version()}
	for _, l := range ref.Leagues() {
		resp.Leagues = append(resp.Leagues, leagueResponse{
			Slug:      l.Slug,
			Name:      l.Name,
			Country:   l.Country,
			Matchdays: l.Matchdays,
			Teams:     l.Teams,
		})
	}
	w.Header().Set("Cache-Control", "max-age=300")
	writeJSON(w, http.StatusOK, resp)
}
