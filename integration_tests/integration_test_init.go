package integrationtest

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fakhrymubarak/weather-lookup-api/internal/handler"
	"github.com/fakhrymubarak/weather-lookup-api/internal/repository"
	"github.com/fakhrymubarak/weather-lookup-api/internal/server"
	"github.com/fakhrymubarak/weather-lookup-api/internal/service"
	"github.com/fakhrymubarak/weather-lookup-api/internal/store"
	redisv9 "github.com/redis/go-redis/v9"
)

const testAPIKey = "test_api_key"

const parisPayload = `{"request":{"type":"City","query":"Paris, France","language":"en","unit":"m"},"location":{"name":"Paris","country":"France","region":"Ile-de-France","timezone_id":"Europe/Paris"},"current":{"temperature":10,"weather_descriptions":["Partly cloudy"],"humidity":81,"wind_speed":13,"pressure":1021,"uv_index":1,"visibility":10,"feelslike":8}}`

// mockWeatherstack imitates the WeatherStack current endpoint and counts the calls it receives.
type mockWeatherstack struct {
	*httptest.Server
	calls atomic.Int32
}

func newMockWeatherstack() *mockWeatherstack {
	m := &mockWeatherstack{}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.calls.Add(1)
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")

		if q.Get("access_key") != testAPIKey {
			_, _ = w.Write([]byte(`{"success":false,"error":{"code":101,"type":"invalid_access_key","info":"You have not supplied a valid API Access Key."}}`))
			return
		}
		switch q.Get("query") {
		case "Paris":
			_, _ = w.Write([]byte(parisPayload))
		case "Maintenance":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			_, _ = w.Write([]byte(`{"success":false,"error":{"code":615,"type":"request_failed","info":"Your API request failed. Please try again or contact support."}}`))
		}
	}))
	return m
}

// testApp is one fully wired application instance with its own store.
type testApp struct {
	server *httptest.Server
	store  *store.MemoryStore
}

func (a *testApp) Close() { a.server.Close() }

func newTestApp(providerURL string, cache *redisv9.Client) *testApp {
	opts := []repository.Option{
		repository.WithBaseURL(providerURL),
		repository.WithAPIKey(testAPIKey),
	}
	if cache != nil {
		opts = append(opts, repository.WithCache(cache, time.Minute))
	}
	st := store.NewMemoryStore()
	svc := service.NewWeatherService(repository.NewWeatherRepository(opts...), st)
	return &testApp{
		server: httptest.NewServer(server.NewRouter(handler.NewWeatherHandler(svc))),
		store:  st,
	}
}

func newMiniRedisClient(mr *miniredis.Miniredis) *redisv9.Client {
	return redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
}
