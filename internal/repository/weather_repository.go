package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fakhrymubarak/weather-lookup-api/internal/config"
	"github.com/fakhrymubarak/weather-lookup-api/internal/model"
	redisv9 "github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "weather:"

// WeatherRepository fetches the current weather for a location from the provider.
// The returned payload is the provider body, untouched.
type WeatherRepository interface {
	FetchWeather(ctx context.Context, location string) (json.RawMessage, error)
}

// cacheClient is the subset of the redis client the repository needs.
type cacheClient interface {
	Get(ctx context.Context, key string) *redisv9.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redisv9.StatusCmd
}

// weatherstackRepository implements WeatherRepository against the WeatherStack API
type weatherstackRepository struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	units      string

	// cache is nil unless caching is enabled
	cache    cacheClient
	cacheTTL time.Duration
}

// Option customises a repository built by NewWeatherRepository.
type Option func(*weatherstackRepository)

func WithHTTPClient(c *http.Client) Option {
	return func(r *weatherstackRepository) {
		if c != nil {
			r.httpClient = c
		}
	}
}

func WithBaseURL(u string) Option {
	return func(r *weatherstackRepository) { r.baseURL = u }
}

func WithAPIKey(key string) Option {
	return func(r *weatherstackRepository) { r.apiKey = key }
}

// WithCache keeps successful payloads in c for ttl.
func WithCache(c cacheClient, ttl time.Duration) Option {
	return func(r *weatherstackRepository) {
		r.cache = c
		r.cacheTTL = ttl
	}
}

// NewWeatherRepository creates a repository configured from internal/config, then applies opts.
func NewWeatherRepository(opts ...Option) WeatherRepository {
	r := &weatherstackRepository{
		httpClient: &http.Client{Timeout: config.GetWeatherstackTimeout()},
		baseURL:    config.GetWeatherstackApiUrl(),
		apiKey:     config.GetWeatherstackAPIKey(),
		units:      config.GetWeatherstackUnits(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FetchWeather returns the cached payload when caching is on, otherwise calls the provider.
func (r *weatherstackRepository) FetchWeather(ctx context.Context, location string) (json.RawMessage, error) {
	if r.cache != nil {
		if cached, err := r.getFromCache(ctx, location); err == nil {
			return cached, nil
		}
	}

	data, err := r.fetchFromExternalAPI(ctx, location)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		r.cacheWeather(ctx, location, data)
	}
	return data, nil
}

func (r *weatherstackRepository) fetchFromExternalAPI(ctx context.Context, location string) (json.RawMessage, error) {
	if r.apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	values := url.Values{}
	values.Set("access_key", r.apiKey)
	values.Set("query", location)
	values.Set("units", r.units)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		// url.Error carries the full URL, access key included
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return nil, transportError(urlErr.Err)
		}
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, statusError(resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, transportError(err)
	}
	if fields == nil {
		return nil, &UpstreamError{Kind: Transport, Detail: "empty response body"}
	}

	if rawErr, ok := fields["error"]; ok {
		if string(rawErr) == "null" {
			return nil, &UpstreamError{Kind: Transport, Detail: "provider error without details"}
		}
		var apiErr model.WeatherstackError
		if err := json.Unmarshal(rawErr, &apiErr); err != nil || apiErr.Info == "" {
			apiErr.Info = string(rawErr)
		}
		return nil, &UpstreamError{Kind: ProviderReported, Detail: apiErr.Info, Code: apiErr.Code}
	}

	return json.RawMessage(body), nil
}

func (r *weatherstackRepository) getFromCache(ctx context.Context, location string) (json.RawMessage, error) {
	val, err := r.cache.Get(ctx, cacheKeyPrefix+location).Bytes()
	if err != nil {
		if !errors.Is(err, redisv9.Nil) {
			config.GetLogger().Warnw("Weather cache read failed", "location", location, "error", err)
		}
		return nil, err
	}
	if !json.Valid(val) {
		config.GetLogger().Warnw("Discarding invalid cached weather payload", "location", location)
		return nil, errors.New("invalid cached payload")
	}
	return json.RawMessage(val), nil
}

func (r *weatherstackRepository) cacheWeather(ctx context.Context, location string, data json.RawMessage) {
	if err := r.cache.Set(ctx, cacheKeyPrefix+location, []byte(data), r.cacheTTL).Err(); err != nil {
		config.GetLogger().Warnw("Weather cache write failed", "location", location, "error", err)
	}
}
