package services

import (
	"log"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"location-service/internal/models"
	"location-service/internal/repository"
	"location-service/internal/schemas"
	"location-service/internal/storage"
)

// LocationService owns the location lifecycle: CRUD against the document
// store, cache invalidation ordering, and the sensor cascade on delete.
type LocationService struct {
	locations *repository.LocationRepository
	sensors   *repository.SensorRepository
	cache     *CacheService
	simulator *SimulationService
}

// NewLocationService creates a LocationService.
func NewLocationService(
	locations *repository.LocationRepository,
	sensors *repository.SensorRepository,
	cache *CacheService,
	simulator *SimulationService,
) *LocationService {
	return &LocationService{
		locations: locations,
		sensors:   sensors,
		cache:     cache,
		simulator: simulator,
	}
}

// List returns every location, served cache-aside under all_locations.
func (s *LocationService) List() ([]*models.Location, error) {
	var locations []*models.Location
	err := s.cache.Memoize(models.AllLocationsCacheKey, 0, &locations, func() error {
		all, err := s.locations.All()
		if err != nil {
			return err
		}
		locations = all
		return nil
	})
	return locations, err
}

// Create persists a new location and primes its cache entry.
func (s *LocationService) Create(loc *models.Location) (*models.Location, error) {
	created, err := s.locations.Create(loc)
	if err != nil {
		return nil, err
	}
	s.cache.Set(models.LocationCacheKey(created.ID), created)
	s.cache.Delete(models.AllLocationsCacheKey)
	return created, nil
}

// Get returns one location, cache-first. A cache miss never signals
// non-existence; only the store does.
func (s *LocationService) Get(id uuid.UUID) (*models.Location, error) {
	var cached models.Location
	if s.cache.Get(models.LocationCacheKey(id), &cached) {
		return &cached, nil
	}
	loc, err := s.locations.GetByID(id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(models.LocationCacheKey(id), loc)
	return loc, nil
}

// Update merges the provided fields onto the stored location, refreshes its
// timestamp and replaces it in the store.
func (s *LocationService) Update(id uuid.UUID, in *schemas.UpdateLocationInput) (*models.Location, error) {
	existing, err := s.locations.GetByID(id)
	if err != nil {
		return nil, err
	}
	in.Apply(existing)
	updated, err := s.locations.Replace(existing)
	if err != nil {
		return nil, err
	}
	s.cache.Set(models.LocationCacheKey(id), updated)
	s.cache.Delete(models.AllLocationsCacheKey)
	return updated, nil
}

// Delete removes a location, cascading over its sensors first: each sensor's
// simulation is deregistered best-effort, then the sensor record deleted.
// A store failure mid-cascade aborts and leaves the earlier deletions in
// place; there is no rollback.
func (s *LocationService) Delete(id uuid.UUID) error {
	existing, err := s.locations.GetByID(id)
	if err != nil {
		return err
	}
	for _, sensorID := range existing.Sensors {
		if err := s.simulator.Deregister(id, sensorID); err != nil {
			// Deregistration is best-effort, the location delete proceeds.
			log.Printf("Could not deregister simulation for sensor %s: %v", sensorID, err)
		}
		if err := s.sensors.Delete(sensorID, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		s.cache.Delete(models.SensorCacheKey(sensorID))
	}
	if err := s.locations.Delete(id); err != nil {
		return err
	}
	s.cache.Delete(
		models.LocationCacheKey(id),
		models.SensorsForLocationCacheKey(id),
		models.AllLocationsCacheKey,
	)
	return nil
}
