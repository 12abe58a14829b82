package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"location-service/internal/metrics"
	"location-service/internal/models"
	"location-service/internal/repository"
	"location-service/internal/services"
	"location-service/internal/storage"
)

// statisticsStub plays the downstream data-store service. Status and body are
// swappable per test; hits counts how many requests actually reached it.
type statisticsStub struct {
	server *httptest.Server
	hits   int64
	status int64
	body   atomic.Value // []byte
}

func (s *statisticsStub) respond(status int, body string) {
	atomic.StoreInt64(&s.status, int64(status))
	s.body.Store([]byte(body))
}

// simulatorCounter plays the simulator service, counting register and
// deregister calls.
type simulatorCounter struct {
	server      *httptest.Server
	registers   int64
	deregisters int64
	putStatus   int64
}

type testApp struct {
	app        *fiber.App
	store      *storage.MemoryDocumentStore
	cache      *services.CacheService
	simulator  *simulatorCounter
	statistics *statisticsStub
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	sim := &simulatorCounter{}
	atomic.StoreInt64(&sim.putStatus, http.StatusOK)
	sim.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			atomic.AddInt64(&sim.registers, 1)
			w.WriteHeader(int(atomic.LoadInt64(&sim.putStatus)))
		case http.MethodDelete:
			atomic.AddInt64(&sim.deregisters, 1)
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(sim.server.Close)

	stats := &statisticsStub{}
	stats.respond(http.StatusOK, `{}`)
	stats.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&stats.hits, 1)
		w.WriteHeader(int(atomic.LoadInt64(&stats.status)))
		_, _ = w.Write(stats.body.Load().([]byte))
	}))
	t.Cleanup(stats.server.Close)

	store := storage.NewMemoryDocumentStore()
	m := metrics.NewMetrics(prometheus.NewRegistry())
	cache := services.NewCacheService(services.NewMemoryCacheBackend(), time.Minute, m)
	locationRepo := repository.NewLocationRepository(store)
	sensorRepo := repository.NewSensorRepository(store)
	simulator := services.NewSimulationService(sim.server.URL, m)
	traffic := services.NewTrafficService(stats.server.URL, m)

	lh := NewLocationHandler(services.NewLocationService(locationRepo, sensorRepo, cache, simulator))
	sh := NewSensorHandler(services.NewSensorService(sensorRepo, locationRepo, cache, simulator))
	th := NewTrafficHandler(traffic, cache)

	app := fiber.New()
	api := app.Group("/api")
	api.Get("/locations", lh.ListLocations)
	api.Post("/locations", lh.CreateLocation)
	api.Get("/locations/:locationId", lh.GetLocation)
	api.Put("/locations/:locationId", lh.UpdateLocation)
	api.Delete("/locations/:locationId", lh.DeleteLocation)
	api.Get("/locations/:locationId/sensors", sh.ListSensors)
	api.Post("/locations/:locationId/sensors", sh.CreateSensor)
	api.Get("/locations/:locationId/sensors/:sensorId", sh.GetSensor)
	api.Put("/locations/:locationId/sensors/:sensorId", sh.UpdateSensor)
	api.Delete("/locations/:locationId/sensors/:sensorId", sh.DeleteSensor)
	api.Get("/locations/:locationId/traffic_count", th.GetTrafficCount)
	api.Get("/locations/:locationId/peak_traffic", th.GetPeakTraffic)
	api.Get("/locations/:locationId/traffic_history", th.GetTrafficHistory)

	return &testApp{app: app, store: store, cache: cache, simulator: sim, statistics: stats}
}

// request performs an in-process HTTP call and decodes the response body into
// out when out is non-nil.
func (a *testApp) request(t *testing.T, method, target, body string, out interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := a.app.Test(req)
	require.NoError(t, err)
	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out), "body: %s", raw)
	}
	return resp
}

func (a *testApp) createLocation(t *testing.T, body string) models.Location {
	t.Helper()
	var loc models.Location
	resp := a.request(t, http.MethodPost, "/api/locations", body, &loc)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return loc
}

func (a *testApp) createSensor(t *testing.T, locationID, body string) models.Sensor {
	t.Helper()
	var sensor models.Sensor
	resp := a.request(t, http.MethodPost, "/api/locations/"+locationID+"/sensors", body, &sensor)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return sensor
}
