package services

import (
	"log"

	"github.com/google/uuid"

	"location-service/internal/models"
	"location-service/internal/repository"
	"location-service/internal/schemas"
)

// SensorService owns the sensor lifecycle under a location: CRUD, the
// bidirectional location<->sensor linkage, simulator registration and cache
// invalidation.
type SensorService struct {
	sensors   *repository.SensorRepository
	locations *repository.LocationRepository
	cache     *CacheService
	simulator *SimulationService
}

// NewSensorService creates a SensorService.
func NewSensorService(
	sensors *repository.SensorRepository,
	locations *repository.LocationRepository,
	cache *CacheService,
	simulator *SimulationService,
) *SensorService {
	return &SensorService{
		sensors:   sensors,
		locations: locations,
		cache:     cache,
		simulator: simulator,
	}
}

// Parent resolves the owning location straight from the store. Sensor routes
// 404 immediately when it does not resolve.
func (s *SensorService) Parent(locationID uuid.UUID) (*models.Location, error) {
	return s.locations.GetByID(locationID)
}

// ListForLocation returns every sensor attached to a location, served
// cache-aside under sensorsFor:<location_id>.
func (s *SensorService) ListForLocation(locationID uuid.UUID) ([]*models.Sensor, error) {
	var sensors []*models.Sensor
	err := s.cache.Memoize(models.SensorsForLocationCacheKey(locationID), 0, &sensors, func() error {
		all, err := s.sensors.AllForLocation(locationID)
		if err != nil {
			return err
		}
		sensors = all
		return nil
	})
	return sensors, err
}

// Create persists a new sensor, links it into the parent location's sensor
// list and registers its simulation. If the link or the registration fails
// the sensor record is deleted again so no orphan survives.
func (s *SensorService) Create(parent *models.Location, sensor *models.Sensor) (*models.Sensor, error) {
	created, err := s.sensors.Create(sensor)
	if err != nil {
		return nil, err
	}

	parent.AddSensor(created.ID)
	s.cache.Delete(
		models.LocationCacheKey(parent.ID),
		models.SensorsForLocationCacheKey(parent.ID),
		models.AllLocationsCacheKey,
	)
	if _, err := s.locations.Replace(parent); err != nil {
		// The location may not exist anymore. Roll back the sensor creation.
		s.rollbackSensor(created)
		return nil, err
	}

	if err := s.simulator.Register(parent.ID, created.ID); err != nil {
		s.unlinkSensor(parent, created.ID)
		s.rollbackSensor(created)
		return nil, err
	}
	return created, nil
}

// Get returns one sensor under a location, cache-first with a partitioned
// point read on miss.
func (s *SensorService) Get(locationID, sensorID uuid.UUID) (*models.Sensor, error) {
	var cached models.Sensor
	if s.cache.Get(models.SensorCacheKey(sensorID), &cached) && cached.LocationID == locationID {
		return &cached, nil
	}
	sensor, err := s.sensors.GetByIDAndLocation(sensorID, locationID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(models.SensorCacheKey(sensorID), sensor)
	return sensor, nil
}

// Update merges the provided fields onto the stored sensor, refreshes its
// timestamp and replaces it in the store.
func (s *SensorService) Update(locationID, sensorID uuid.UUID, in *schemas.UpdateSensorInput) (*models.Sensor, error) {
	existing, err := s.sensors.GetByIDAndLocation(sensorID, locationID)
	if err != nil {
		return nil, err
	}
	in.Apply(existing)
	updated, err := s.sensors.Replace(existing)
	if err != nil {
		return nil, err
	}
	s.cache.Delete(models.SensorsForLocationCacheKey(locationID))
	s.cache.Set(models.SensorCacheKey(sensorID), updated)
	return updated, nil
}

// Delete removes a sensor: unlink from the parent location (a no-op when the
// id is not linked), deregister the simulation, then delete the record. All
// three steps must succeed in order; a failing step aborts and earlier
// effects stay in place.
func (s *SensorService) Delete(parent *models.Location, sensorID uuid.UUID) error {
	if _, err := s.sensors.GetByIDAndLocation(sensorID, parent.ID); err != nil {
		return err
	}

	if parent.RemoveSensor(sensorID) {
		s.cache.Delete(
			models.LocationCacheKey(parent.ID),
			models.SensorsForLocationCacheKey(parent.ID),
			models.AllLocationsCacheKey,
		)
		if _, err := s.locations.Replace(parent); err != nil {
			return err
		}
	}

	if err := s.simulator.Deregister(parent.ID, sensorID); err != nil {
		return err
	}

	if err := s.sensors.Delete(sensorID, parent.ID); err != nil {
		return err
	}
	s.cache.Delete(
		models.SensorCacheKey(sensorID),
		models.SensorsForLocationCacheKey(parent.ID),
	)
	return nil
}

func (s *SensorService) rollbackSensor(sensor *models.Sensor) {
	if err := s.sensors.Delete(sensor.ID, sensor.LocationID); err != nil {
		log.Printf("Could not roll back sensor %s: %v", sensor.ID, err)
	}
	s.cache.Delete(models.SensorCacheKey(sensor.ID))
}

func (s *SensorService) unlinkSensor(parent *models.Location, sensorID uuid.UUID) {
	if !parent.RemoveSensor(sensorID) {
		return
	}
	if _, err := s.locations.Replace(parent); err != nil {
		log.Printf("Could not unlink sensor %s from location %s: %v", sensorID, parent.ID, err)
	}
	s.cache.Delete(
		models.LocationCacheKey(parent.ID),
		models.SensorsForLocationCacheKey(parent.ID),
		models.AllLocationsCacheKey,
	)
}
