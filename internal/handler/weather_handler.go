package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/fakhrymubarak/weather-lookup-api/internal/config"
	"github.com/fakhrymubarak/weather-lookup-api/internal/model"
	"github.com/fakhrymubarak/weather-lookup-api/internal/repository"
	"github.com/fakhrymubarak/weather-lookup-api/internal/service"
	"github.com/go-playground/validator/v10"
)

const maxRequestBodyBytes = 1 << 20

const (
	detailNotFound = "Weather data not found"
	detailInternal = "Internal server error"
)

var validate = newValidator()

// newValidator reports fields by their JSON name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// createWeatherBody is the raw create payload. Pointers let validation check
// that a key is present without rejecting empty strings.
type createWeatherBody struct {
	Date     *string `json:"date" validate:"required"`
	Location *string `json:"location" validate:"required"`
	Notes    *string `json:"notes"`
}

func (b createWeatherBody) toRequest() model.WeatherRequest {
	return model.WeatherRequest{Date: *b.Date, Location: *b.Location, Notes: b.Notes}
}

type WeatherHandler struct {
	WeatherService service.WeatherServiceInterface
}

func NewWeatherHandler(svc ...service.WeatherServiceInterface) *WeatherHandler {
	var weatherService service.WeatherServiceInterface
	if len(svc) > 0 && svc[0] != nil {
		weatherService = svc[0]
	} else {
		weatherService = service.NewWeatherService(nil, nil)
	}
	return &WeatherHandler{
		WeatherService: weatherService,
	}
}

// RegisterRoutes mounts the weather endpoints on mux.
func (h *WeatherHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /weather", h.HandleCreateWeather)
	mux.HandleFunc("GET /weather/{id}", h.HandleGetWeather)
	mux.HandleFunc("GET /health", h.HandleHealth)
}

func (h *WeatherHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		config.GetLogger().Errorw("could not encode json", "error", err)
	}
}

func (h *WeatherHandler) writeError(w http.ResponseWriter, statusCode int, detail string) {
	h.writeJSONResponse(w, statusCode, model.ErrorResponse{Detail: detail})
}

// HandleCreateWeather handles POST /weather.
func (h *WeatherHandler) HandleCreateWeather(w http.ResponseWriter, r *http.Request) {
	var body createWeatherBody
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err := dec.Decode(&body); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "Invalid request body: "+err.Error())
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		h.writeError(w, http.StatusUnprocessableEntity, "Invalid request body: unexpected data after JSON object")
		return
	}
	if err := validate.Struct(body); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, validationDetail(err))
		return
	}
	req := body.toRequest()

	id, err := h.WeatherService.CreateWeather(r.Context(), req)
	if err != nil {
		var upstreamErr *repository.UpstreamError
		switch {
		case errors.As(err, &upstreamErr) && upstreamErr.Kind == repository.ProviderReported:
			h.writeError(w, http.StatusBadRequest, upstreamErr.Error())
		case errors.As(err, &upstreamErr):
			h.writeError(w, http.StatusInternalServerError, upstreamErr.Error())
		default:
			config.GetLogger().Errorw("Create weather request failed", "location", req.Location, "error", err)
			h.writeError(w, http.StatusInternalServerError, detailInternal)
		}
		return
	}

	h.writeJSONResponse(w, http.StatusOK, model.CreateWeatherResponse{ID: id})
}

// HandleGetWeather handles GET /weather/{id}.
func (h *WeatherHandler) HandleGetWeather(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	record, err := h.WeatherService.GetWeather(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, detailNotFound)
			return
		}
		config.GetLogger().Errorw("Get weather request failed", "id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, detailInternal)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, record)
}

func (h *WeatherHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request: " + err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("field '%s' is %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
