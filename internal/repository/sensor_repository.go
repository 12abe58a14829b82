package repository

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"location-service/internal/models"
	"location-service/internal/schemas"
	"location-service/internal/storage"
)

// SensorRepository provides typed access to the SENSORS container. Sensor
// records partition by their owning location id.
type SensorRepository struct {
	store storage.DocumentStore
}

// NewSensorRepository creates a new SensorRepository over the given document
// store.
func NewSensorRepository(store storage.DocumentStore) *SensorRepository {
	return &SensorRepository{store: store}
}

// GetByIDAndLocation retrieves a sensor via a partitioned point read.
func (r *SensorRepository) GetByIDAndLocation(id, locationID uuid.UUID) (*models.Sensor, error) {
	doc, err := r.store.GetByIDAndPartitionKey(id.String(), locationID.String(), storage.ContainerSensors)
	if err != nil {
		return nil, err
	}
	return schemas.LoadSensor(doc)
}

// GetByID retrieves a sensor without knowing its owning location.
// NOTE: cross-partition scan, inefficient; kept for parity with the store
// contract.
func (r *SensorRepository) GetByID(id uuid.UUID) (*models.Sensor, error) {
	doc, err := r.store.GetByID(id.String(), storage.ContainerSensors)
	if err != nil {
		return nil, err
	}
	return schemas.LoadSensor(doc)
}

// AllForLocation retrieves every sensor in one location's partition.
func (r *SensorRepository) AllForLocation(locationID uuid.UUID) ([]*models.Sensor, error) {
	docs, err := r.store.QueryByPartitionKey(storage.ContainerSensors, locationID.String())
	if err != nil {
		return nil, err
	}
	sensors := make([]*models.Sensor, 0, len(docs))
	for _, doc := range docs {
		sensor, err := schemas.LoadSensor(doc)
		if err != nil {
			return nil, err
		}
		sensors = append(sensors, sensor)
	}
	return sensors, nil
}

// Create upserts a new sensor document.
func (r *SensorRepository) Create(sensor *models.Sensor) (*models.Sensor, error) {
	doc, err := dumpSensor(sensor)
	if err != nil {
		return nil, err
	}
	stored, err := r.store.Upsert(sensor.ID.String(), sensor.LocationID.String(), doc, storage.ContainerSensors)
	if err != nil {
		return nil, err
	}
	return schemas.LoadSensor(stored)
}

// Replace persists sensor at its existing identity.
func (r *SensorRepository) Replace(sensor *models.Sensor) (*models.Sensor, error) {
	doc, err := dumpSensor(sensor)
	if err != nil {
		return nil, err
	}
	stored, err := r.store.Replace(sensor.ID.String(), sensor.LocationID.String(), doc, storage.ContainerSensors)
	if err != nil {
		return nil, err
	}
	return schemas.LoadSensor(stored)
}

// Delete removes a sensor document. Does not unlink the id from the parent
// location.
func (r *SensorRepository) Delete(id, locationID uuid.UUID) error {
	return r.store.Delete(id.String(), locationID.String(), storage.ContainerSensors)
}

func dumpSensor(sensor *models.Sensor) ([]byte, error) {
	doc, err := json.Marshal(sensor)
	if err != nil {
		return nil, errors.Wrap(err, "serializing sensor")
	}
	return doc, nil
}
