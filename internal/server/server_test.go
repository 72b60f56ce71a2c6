package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fakhrymubarak/weather-lookup-api/internal/handler"
	"github.com/fakhrymubarak/weather-lookup-api/internal/redis"
	"github.com/fakhrymubarak/weather-lookup-api/internal/service"
	"github.com/fakhrymubarak/weather-lookup-api/internal/store"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticRepository struct{}

func (staticRepository) FetchWeather(ctx context.Context, location string) (json.RawMessage, error) {
	return json.RawMessage(fmt.Sprintf(`{"location":{"name":%q}}`, location)), nil
}

func newTestRouter() http.Handler {
	svc := service.NewWeatherService(staticRepository{}, store.NewMemoryStore())
	return NewRouter(handler.NewWeatherHandler(svc))
}

func TestNewRouter_CreateThenRead(t *testing.T) {
	router := newTestRouter()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/weather", strings.NewReader(`{"date":"2024-01-01","location":"Oslo"}`)))
	require.Equal(t, http.StatusOK, rr.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/weather/"+created.ID, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"name":"Oslo"`)
}

func TestNewRouter_AppliesCORS(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/weather", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()

	newTestRouter().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewHTTPServer_Timeouts(t *testing.T) {
	srv := NewHTTPServer(":0", http.NotFoundHandler())

	assert.Equal(t, ":0", srv.Addr)
	assert.Equal(t, 15*time.Second, srv.ReadHeaderTimeout)
	assert.Equal(t, 15*time.Second, srv.ReadTimeout)
	assert.Equal(t, 30*time.Second, srv.WriteTimeout)
	assert.Equal(t, 60*time.Second, srv.IdleTimeout)
}

func TestRepositoryOptions(t *testing.T) {
	t.Cleanup(func() {
		viper.Set("cache.enabled", nil)
		viper.Set("redis.addr", nil)
		redis.ResetClientForTest()
	})

	assert.Empty(t, repositoryOptions(context.Background()), "cache disabled by default")

	mr := miniredis.RunT(t)
	viper.Set("cache.enabled", true)
	viper.Set("redis.addr", mr.Addr())
	redis.ResetClientForTest()
	assert.Len(t, repositoryOptions(context.Background()), 1)

	mr.Close()
	redis.ResetClientForTest()
	assert.Empty(t, repositoryOptions(context.Background()), "unreachable redis disables the cache")
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewHTTPServer(ln.Addr().String(), newTestRouter())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, srv, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRun_InvalidAddr(t *testing.T) {
	err := Run(context.Background(), "not-an-address")
	assert.Error(t, err)
}
