package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/stadium-attendance-service/internal/domain"
	"github.com/couchcryptid/stadium-attendance-service/internal/model"
	"github.com/couchcryptid/stadium-attendance-service/internal/observability"
	"github.com/couchcryptid/stadium-attendance-service/internal/schema"
)

// ErrUnknownLeague is returned when no model is loaded for a team's league.
var ErrUnknownLeague = errors.New("no model loaded for league")

// Publisher delivers finished predictions to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, p domain.Prediction) error
}

// Pipeline turns a match input into an attendance prediction: weather lookup,
// feature assembly, model selection, encoding, prediction, scaling and
// classification. It is safe for concurrent use.
type Pipeline struct {
	ref       *domain.ReferenceData
	models    *model.Set
	resolver  domain.WeatherResolver
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Pipeline. A nil resolver disables weather lookups and a nil
// publisher disables prediction events.
func New(ref *domain.ReferenceData, models *model.Set, resolver domain.WeatherResolver, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		ref:       ref,
		models:    models,
		resolver:  resolver,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once reference data and models are loaded.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.ref == nil {
		return errors.New("reference data not loaded")
	}
	if p.models == nil || p.models.Len() == 0 {
		return errors.New("no models loaded")
	}
	return nil
}

// Reference returns the reference data the pipeline predicts against.
func (p *Pipeline) Reference() *domain.ReferenceData { return p.ref }

// SelectVariant picks the with-weather model iff the lookup produced an
// observation with a recognized condition.
func SelectVariant(lookup domain.WeatherLookup) schema.Variant {
	if lookup.Usable() {
		return schema.WithWeather
	}
	return schema.WithoutWeather
}

// Predict validates in and returns its attendance prediction.
func (p *Pipeline) Predict(ctx context.Context, in domain.MatchInput) (domain.Prediction, error) {
	start := time.Now()
	pred, err := p.predict(ctx, in)
	p.metrics.PredictionDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		p.metrics.PredictionErrors.WithLabelValues(errorReason(err)).Inc()
		return domain.Prediction{}, err
	}
	p.metrics.Predictions.WithLabelValues(pred.ModelVariant, string(pred.Status)).Inc()

	p.logger.Info("prediction served",
		"id", pred.ID,
		"home_team", pred.HomeTeam,
		"away_team", pred.AwayTeam,
		"variant", pred.ModelVariant,
		"attendance", pred.Attendance,
		"status", pred.Status,
		"weather", pred.Weather.Status,
	)

	p.publish(ctx, pred)
	return pred, nil
}

func (p *Pipeline) predict(ctx context.Context, in domain.MatchInput) (domain.Prediction, error) {
	if err := in.Validate(p.ref); err != nil {
		return domain.Prediction{}, err
	}

	profile, ok := p.ref.Profile(in.HomeTeam)
	if !ok {
		return domain.Prediction{}, fmt.Errorf("predict for %q: %w", in.HomeTeam, domain.ErrMissingStadiumProfile)
	}

	lookup := domain.LookupWeather(ctx, p.resolver, profile, in.Date, in.Hour, p.logger)

	rec, err := domain.Assemble(in, lookup, p.ref)
	if err != nil {
		return domain.Prediction{}, err
	}

	variant := SelectVariant(lookup)
	m, ok := p.models.Get(rec.League, variant)
	if !ok {
		return domain.Prediction{}, fmt.Errorf("%w: %s (%s)", ErrUnknownLeague, rec.League, variant)
	}

	vec := schema.Encode(rec, m.Schema())
	p.reportDropped(vec)

	raw, err := m.Predict(vec)
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("predict with %s: %w", m.Name, err)
	}

	attendance := domain.ScaleAttendance(raw, profile.Capacity)
	if attendance < 0 {
		p.logger.Warn("negative model output; attendance not floored",
			"model", m.Name,
			"raw_output", raw,
			"attendance", attendance,
		)
	}

	status, err := p.ref.ClassifyFor(in.HomeTeam, attendance)
	if err != nil {
		return domain.Prediction{}, err
	}

	return domain.Prediction{
		ID:            uuid.NewString(),
		League:        rec.League,
		HomeTeam:      rec.HomeTeam,
		AwayTeam:      rec.AwayTeam,
		Matchday:      rec.Matchday,
		Date:          rec.Date.Format(domain.DateLayout),
		Hour:          rec.Hour,
		ModelVariant:  string(variant),
		SchemaVersion: m.Schema().Version,
		RawOutput:     raw,
		Fraction:      domain.ClampFraction(raw),
		Attendance:    attendance,
		Capacity:      profile.Capacity,
		Status:        status,
		Thresholds:    domain.Thresholds{P30: profile.P30, P70: profile.P70},
		Weather:       lookup.Summary(),
		PredictedAt:   domain.Now().UTC(),
	}, nil
}

func (p *Pipeline) reportDropped(vec schema.Vector) {
	for _, name := range vec.Dropped {
		p.metrics.DroppedColumns.WithLabelValues(schema.FieldOf(name)).Inc()
	}
	if len(vec.Dropped) > 0 {
		p.logger.Debug("encoded columns not in schema", "schema", vec.Schema.String(), "columns", vec.Dropped)
	}
}

// publish hands the prediction to the publisher. Failures are logged and
// counted but never fail the request. The event is written even if the caller
// has gone away; the publisher bounds the write.
func (p *Pipeline) publish(ctx context.Context, pred domain.Prediction) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(context.WithoutCancel(ctx), pred); err != nil {
		p.metrics.EventPublishFailures.Inc()
		p.logger.Warn("publish prediction event failed", "id", pred.ID, "error", err)
		return
	}
	p.metrics.EventsPublished.Inc()
}

func errorReason(err error) string {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return "validation"
	case errors.Is(err, domain.ErrMissingStadiumProfile):
		return "missing_profile"
	case errors.Is(err, domain.ErrUnknownTeam):
		return "unknown_team"
	case errors.Is(err, ErrUnknownLeague):
		return "unknown_league"
	case errors.Is(err, model.ErrSchemaMismatch), errors.Is(err, model.ErrDimensionMismatch):
		return "schema"
	default:
		return "model"
	}
}
