package models

import (
	"time"

	"github.com/google/uuid"
)

// SensorCacheKey returns the cache key for a single sensor.
func SensorCacheKey(id uuid.UUID) string {
	return "sensor:" + id.String()
}

// Sensor represents a device attached to exactly one location. Sensor
// records partition by their owning location id.
type Sensor struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	LocationID uuid.UUID `json:"locationId"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NewSensor creates a Sensor with a generated id and a fresh timestamp.
func NewSensor(name, sensorType string, locationID uuid.UUID) *Sensor {
	return &Sensor{
		ID:         uuid.New(),
		Name:       name,
		Type:       sensorType,
		LocationID: locationID,
		UpdatedAt:  Timestamp(),
	}
}
