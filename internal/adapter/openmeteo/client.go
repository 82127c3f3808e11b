// Package openmeteo resolves match-hour weather from the Open-Meteo forecast
// API.
package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	"github.com/couchcryptid/stadium-attendance-service/internal/domain"
	"github.com/couchcryptid/stadium-attendance-service/internal/observability"
)

// DefaultBaseURL is the public Open-Meteo forecast endpoint.
const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

const (
	retryMinWait = 200 * time.Millisecond
	retryMaxWait = 2 * time.Second
)

// Client implements domain.WeatherResolver using the Open-Meteo forecast API.
// Results are never cached; identical lookups already in flight share one
// request.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
	maxRetries int
	retryWait  time.Duration
	breaker    *gobreaker.CircuitBreaker[domain.WeatherObservation]
	inflight   singleflight.Group
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo client. Each HTTP attempt is bounded by
// timeout; failed attempts are retried up to maxRetries times.
func NewClient(baseURL string, timeout time.Duration, maxRetries int, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:    baseURL,
		timeout:    timeout,
		maxRetries: maxRetries,
		retryWait:  retryMinWait,
		breaker:    newBreaker(),
		metrics:    metrics,
		logger:     logger,
	}
}

func newBreaker() *gobreaker.CircuitBreaker[domain.WeatherObservation] {
	return gobreaker.NewCircuitBreaker[domain.WeatherObservation](gobreaker.Settings{
		Name:        "open-meteo",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		// A cancelled lookup says nothing about the upstream's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

// ResolveWeather returns the forecast temperature and weather code at the
// given hour of date, in the stadium's local time zone.
func (c *Client) ResolveWeather(ctx context.Context, lat, lon float64, date time.Time, hour int) (domain.WeatherObservation, error) {
	if hour < 0 || hour > 23 {
		return domain.WeatherObservation{}, fmt.Errorf("hour %d out of range", hour)
	}

	// The shared lookup outlives any single caller; each caller stops
	// waiting when its own context ends.
	key := fmt.Sprintf("%.4f,%.4f|%s|%d", lat, lon, date.Format(domain.DateLayout), hour)
	ch := c.inflight.DoChan(key, func() (any, error) {
		sharedCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.budget())
		defer cancel()
		return c.resolveWithRetry(sharedCtx, lat, lon, date, hour)
	})

	select {
	case <-ctx.Done():
		return domain.WeatherObservation{}, fmt.Errorf("weather lookup: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return domain.WeatherObservation{}, res.Err
		}
		return res.Val.(domain.WeatherObservation), nil
	}
}

// budget bounds a shared lookup: every attempt at the full timeout plus the
// longest backoff between attempts.
func (c *Client) budget() time.Duration {
	return time.Duration(c.maxRetries+1)*c.timeout + time.Duration(c.maxRetries)*retryMaxWait
}

func (c *Client) resolveWithRetry(ctx context.Context, lat, lon float64, date time.Time, hour int) (domain.WeatherObservation, error) {
	wait := c.retryWait
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		obs, err := c.breaker.Execute(func() (domain.WeatherObservation, error) {
			return c.fetch(ctx, lat, lon, date, hour)
		})
		if err == nil {
			c.recordOutcome(obs)
			return obs, nil
		}
		lastErr = err

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.metrics.WeatherRequests.WithLabelValues("circuit_open").Inc()
			return domain.WeatherObservation{}, fmt.Errorf("weather lookup: %w", err)
		}
		if !retryable(err) || attempt == c.maxRetries {
			break
		}

		c.logger.Debug("weather lookup failed, retrying", "error", err, "attempt", attempt+1)
		if !sleepWithContext(ctx, wait) {
			lastErr = ctx.Err()
			break
		}
		wait = nextBackoff(wait, retryMaxWait)
	}

	c.metrics.WeatherRequests.WithLabelValues("error").Inc()
	return domain.WeatherObservation{}, fmt.Errorf("weather lookup: %w", lastErr)
}

func (c *Client) recordOutcome(obs domain.WeatherObservation) {
	if obs.Condition == domain.ConditionUnknown {
		c.metrics.WeatherRequests.WithLabelValues("unrecognized").Inc()
		return
	}
	c.metrics.WeatherRequests.WithLabelValues("success").Inc()
}

func (c *Client) fetch(ctx context.Context, lat, lon float64, date time.Time, hour int) (domain.WeatherObservation, error) {
	day := date.Format(domain.DateLayout)
	params := url.Values{
		"latitude":   {strconv.FormatFloat(lat, 'f', 4, 64)},
		"longitude":  {strconv.FormatFloat(lon, 'f', 4, 64)},
		"start_date": {day},
		"end_date":   {day},
		"hourly":     {"temperature_2m,weathercode"},
		"timezone":   {"auto"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.WeatherObservation{}, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.WeatherAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.WeatherObservation{}, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.WeatherObservation{}, &statusError{code: resp.StatusCode, body: string(body)}
	}

	var forecast response
	if err := json.NewDecoder(resp.Body).Decode(&forecast); err != nil {
		return domain.WeatherObservation{}, fmt.Errorf("decode response: %w", err)
	}
	return forecast.at(hour)
}

// statusError is a non-200 response from the API.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("open-meteo API error: status %d: %s", e.code, e.body)
}

// retryable reports whether err is a transport failure, a rate limit or a
// server error. Malformed responses and client errors are not retried.
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	var ue *url.Error
	return errors.As(err, &ue)
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Open-Meteo API response types.

type response struct {
	Hourly hourly `json:"hourly"`
}

type hourly struct {
	Time        []string   `json:"time"`
	Temperature []*float64 `json:"temperature_2m"`
	WeatherCode []*int     `json:"weathercode"`
}

// at picks the hour-th entry of the hourly series. A single-day request
// returns 24 entries starting at local midnight.
func (r response) at(hour int) (domain.WeatherObservation, error) {
	h := r.Hourly
	if hour >= len(h.Temperature) || hour >= len(h.WeatherCode) {
		return domain.WeatherObservation{}, fmt.Errorf("no hourly forecast for hour %d (got %d entries)", hour, len(h.Temperature))
	}
	temp, code := h.Temperature[hour], h.WeatherCode[hour]
	if temp == nil || code == nil {
		return domain.WeatherObservation{}, fmt.Errorf("hourly forecast for hour %d is empty", hour)
	}
	return domain.WeatherObservation{
		Temperature: *temp,
		Code:        *code,
		Condition:   domain.ConditionFromCode(*code),
	}, nil
}
