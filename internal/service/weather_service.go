package service

import (
	"context"
	"time"

	"github.com/fakhrymubarak/weather-lookup-api/internal/config"
	"github.com/fakhrymubarak/weather-lookup-api/internal/model"
	"github.com/fakhrymubarak/weather-lookup-api/internal/repository"
	"github.com/fakhrymubarak/weather-lookup-api/internal/store"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned by GetWeather for an unknown identifier.
	ErrNotFound = store.ErrNotFound
	// ErrInternal matches every *InternalError.
	ErrInternal = errors.New("internal error")
)

// InternalError is an unexpected failure while handling a request. Its cause is for logs only.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string { return e.Err.Error() }

func (e *InternalError) Unwrap() error { return e.Err }

func (e *InternalError) Is(target error) bool { return target == ErrInternal }

func internal(err error, message string) error {
	return &InternalError{Err: errors.Wrap(err, message)}
}

type WeatherServiceInterface interface {
	CreateWeather(ctx context.Context, req model.WeatherRequest) (string, error)
	GetWeather(ctx context.Context, id string) (*model.WeatherRecord, error)
}

// WeatherService combines submitted lookups with provider data and keeps the result in a store.
type WeatherService struct {
	WeatherRepo repository.WeatherRepository
	Store       store.WeatherStore

	NewID func() string
	Now   func() time.Time
}

var _ WeatherServiceInterface = (*WeatherService)(nil)

// NewWeatherService wires a service; nil arguments fall back to the default repository and a fresh memory store.
func NewWeatherService(repo repository.WeatherRepository, st store.WeatherStore) *WeatherService {
	if repo == nil {
		repo = repository.NewWeatherRepository()
	}
	if st == nil {
		st = store.NewMemoryStore()
	}
	return &WeatherService{
		WeatherRepo: repo,
		Store:       st,
		NewID:       uuid.NewString,
		Now:         time.Now,
	}
}

// CreateWeather fetches weather for req.Location, stores the combined record and returns its id.
// Provider failures are returned as *repository.UpstreamError; nothing is stored on any error.
func (s *WeatherService) CreateWeather(ctx context.Context, req model.WeatherRequest) (string, error) {
	id := s.NewID()

	data, err := s.WeatherRepo.FetchWeather(ctx, req.Location)
	if err != nil {
		if errors.Is(err, repository.ErrUpstream) {
			config.GetLogger().Warnw("Weather provider call failed", "location", req.Location, "error", err)
			return "", err
		}
		return "", internal(err, "fetch weather")
	}

	record := model.WeatherRecord{
		ID:          id,
		Date:        req.Date,
		Location:    req.Location,
		Notes:       req.NotesOrEmpty(),
		WeatherData: data,
		CreatedAt:   s.Now().Format(time.RFC3339Nano),
	}
	if err := s.Store.Insert(ctx, record); err != nil {
		return "", internal(err, "insert weather record")
	}

	config.GetLogger().Infow("Created weather request", "id", id, "location", req.Location)
	return id, nil
}

// GetWeather returns the stored record for id, or ErrNotFound.
func (s *WeatherService) GetWeather(ctx context.Context, id string) (*model.WeatherRecord, error) {
	record, err := s.Store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, internal(err, "get weather record")
	}
	return &record, nil
}
