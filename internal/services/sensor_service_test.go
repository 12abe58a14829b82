package services

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"location-service/internal/metrics"
	"location-service/internal/models"
	"location-service/internal/repository"
	"location-service/internal/schemas"
	"location-service/internal/storage"
)

// simulatorStub records register/deregister calls and answers with a fixed
// status per method.
type simulatorStub struct {
	server      *httptest.Server
	registers   int64
	deregisters int64
	putStatus   int64
}

func newSimulatorStub(t *testing.T) *simulatorStub {
	t.Helper()
	stub := &simulatorStub{}
	atomic.StoreInt64(&stub.putStatus, http.StatusOK)
	stub.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			atomic.AddInt64(&stub.registers, 1)
			w.WriteHeader(int(atomic.LoadInt64(&stub.putStatus)))
		case http.MethodDelete:
			atomic.AddInt64(&stub.deregisters, 1)
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(stub.server.Close)
	return stub
}

type serviceFixture struct {
	store     *storage.MemoryDocumentStore
	cache     *CacheService
	simulator *simulatorStub
	locations *LocationService
	sensors   *SensorService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	store := storage.NewMemoryDocumentStore()
	m := metrics.NewMetrics(prometheus.NewRegistry())
	cache := NewCacheService(NewMemoryCacheBackend(), time.Minute, m)
	stub := newSimulatorStub(t)
	sim := NewSimulationService(stub.server.URL, m)
	locRepo := repository.NewLocationRepository(store)
	sensorRepo := repository.NewSensorRepository(store)
	return &serviceFixture{
		store:     store,
		cache:     cache,
		simulator: stub,
		locations: NewLocationService(locRepo, sensorRepo, cache, sim),
		sensors:   NewSensorService(sensorRepo, locRepo, cache, sim),
	}
}

func (f *serviceFixture) createLocation(t *testing.T, name string) *models.Location {
	t.Helper()
	loc, err := f.locations.Create(models.NewLocation(name, nil))
	require.NoError(t, err)
	return loc
}

func TestSensorCreateLinksAndRegisters(t *testing.T) {
	f := newServiceFixture(t)
	loc := f.createLocation(t, "Garage A")

	created, err := f.sensors.Create(loc, models.NewSensor("gate-1", "counter", loc.ID))
	require.NoError(t, err)

	stored, err := f.locations.Get(loc.ID)
	require.NoError(t, err)
	assert.True(t, stored.HasSensor(created.ID))
	assert.EqualValues(t, 1, atomic.LoadInt64(&f.simulator.registers))

	got, err := f.sensors.Get(loc.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "gate-1", got.Name)
}

func TestSensorCreateRollsBackOnSimulatorRejection(t *testing.T) {
	f := newServiceFixture(t)
	loc := f.createLocation(t, "Garage B")
	atomic.StoreInt64(&f.simulator.putStatus, http.StatusInternalServerError)

	sensor := models.NewSensor("gate-1", "counter", loc.ID)
	_, err := f.sensors.Create(loc, sensor)
	require.ErrorIs(t, err, ErrSimulatorRejected)

	// No orphan record and no dangling link survive the failed registration.
	_, err = f.sensors.Get(loc.ID, sensor.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	stored, err := f.locations.Get(loc.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Sensors)
}

func TestSensorCreateRollsBackWhenParentVanished(t *testing.T) {
	f := newServiceFixture(t)
	loc := f.createLocation(t, "Garage C")

	parent, err := f.sensors.Parent(loc.ID)
	require.NoError(t, err)
	require.NoError(t, f.locations.Delete(loc.ID))

	sensor := models.NewSensor("gate-1", "counter", loc.ID)
	_, err = f.sensors.Create(parent, sensor)
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = f.sensors.Get(loc.ID, sensor.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Zero(t, atomic.LoadInt64(&f.simulator.registers))
}

func TestSensorDeleteUnlinksAndDeregisters(t *testing.T) {
	f := newServiceFixture(t)
	loc := f.createLocation(t, "Garage D")
	created, err := f.sensors.Create(loc, models.NewSensor("gate-1", "counter", loc.ID))
	require.NoError(t, err)

	parent, err := f.sensors.Parent(loc.ID)
	require.NoError(t, err)
	require.NoError(t, f.sensors.Delete(parent, created.ID))

	_, err = f.sensors.Get(loc.ID, created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.EqualValues(t, 1, atomic.LoadInt64(&f.simulator.deregisters))

	stored, err := f.locations.Get(loc.ID)
	require.NoError(t, err)
	assert.False(t, stored.HasSensor(created.ID))
}

func TestSensorDeleteMissingSensor(t *testing.T) {
	f := newServiceFixture(t)
	loc := f.createLocation(t, "Garage E")

	parent, err := f.sensors.Parent(loc.ID)
	require.NoError(t, err)
	err = f.sensors.Delete(parent, models.NewSensor("x", "y", loc.ID).ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Zero(t, atomic.LoadInt64(&f.simulator.deregisters))
}

func TestLocationDeleteCascadesSensors(t *testing.T) {
	f := newServiceFixture(t)
	loc := f.createLocation(t, "Garage F")
	first, err := f.sensors.Create(loc, models.NewSensor("gate-1", "counter", loc.ID))
	require.NoError(t, err)
	second, err := f.sensors.Create(loc, models.NewSensor("gate-2", "counter", loc.ID))
	require.NoError(t, err)

	require.NoError(t, f.locations.Delete(loc.ID))

	_, err = f.locations.Get(loc.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	docs, err := f.store.QueryByPartitionKey(storage.ContainerSensors, loc.ID.String())
	require.NoError(t, err)
	assert.Empty(t, docs)
	_, err = f.sensors.Get(loc.ID, first.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = f.sensors.Get(loc.ID, second.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.EqualValues(t, 2, atomic.LoadInt64(&f.simulator.deregisters))
}

func TestLocationListServedFromCacheUntilInvalidated(t *testing.T) {
	f := newServiceFixture(t)
	f.createLocation(t, "Garage G")

	first, err := f.locations.List()
	require.NoError(t, err)
	require.Len(t, first, 1)

	f.createLocation(t, "Garage H")

	second, err := f.locations.List()
	require.NoError(t, err)
	assert.Len(t, second, 2)
}

func TestLocationUpdateRefreshesTimestamp(t *testing.T) {
	f := newServiceFixture(t)
	loc := f.createLocation(t, "Garage I")

	// Age the stored record so the refreshed timestamp is strictly greater.
	loc.UpdatedAt = loc.UpdatedAt.Add(-time.Hour)
	_, err := f.locations.locations.Replace(loc)
	require.NoError(t, err)
	f.cache.Delete(models.LocationCacheKey(loc.ID))

	name := "Garage I renamed"
	updated, err := f.locations.Update(loc.ID, &schemas.UpdateLocationInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.True(t, updated.UpdatedAt.After(loc.UpdatedAt))

	// A subsequent read reflects the update, not a stale cache entry.
	got, err := f.locations.Get(loc.ID)
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
}
