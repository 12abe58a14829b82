package models

import (
	"time"

	"github.com/google/uuid"
)

// Cache keys for location-derived entries. The document store is always the
// source of truth; these entries are invalidated on every write.
const AllLocationsCacheKey = "all_locations"

// LocationCacheKey returns the cache key for a single location.
func LocationCacheKey(id uuid.UUID) string {
	return "location:" + id.String()
}

// SensorsForLocationCacheKey returns the cache key for a location's sensor list.
func SensorsForLocationCacheKey(locationID uuid.UUID) string {
	return "sensorsFor:" + locationID.String()
}

// Location represents a physical site that owns zero or more sensors.
// Locations are their own partition: LocationID always mirrors ID.
type Location struct {
	ID         uuid.UUID   `json:"id"`
	LocationID uuid.UUID   `json:"locationId"`
	Name       string      `json:"name"`
	Capacity   *int        `json:"capacity,omitempty"`
	UpdatedAt  time.Time   `json:"updatedAt"`
	Sensors    []uuid.UUID `json:"sensors"`
}

// NewLocation creates a Location with a generated id and a fresh timestamp.
func NewLocation(name string, capacity *int) *Location {
	id := uuid.New()
	return &Location{
		ID:         id,
		LocationID: id,
		Name:       name,
		Capacity:   capacity,
		UpdatedAt:  Timestamp(),
		Sensors:    []uuid.UUID{},
	}
}

// HasSensor reports whether the given sensor id is linked to this location.
func (l *Location) HasSensor(sensorID uuid.UUID) bool {
	for _, id := range l.Sensors {
		if id == sensorID {
			return true
		}
	}
	return false
}

// AddSensor appends a sensor id to the location's sensor list.
func (l *Location) AddSensor(sensorID uuid.UUID) {
	l.Sensors = append(l.Sensors, sensorID)
}

// RemoveSensor removes a sensor id from the location's sensor list and
// reports whether it was present.
func (l *Location) RemoveSensor(sensorID uuid.UUID) bool {
	for i, id := range l.Sensors {
		if id == sensorID {
			l.Sensors = append(l.Sensors[:i], l.Sensors[i+1:]...)
			return true
		}
	}
	return false
}

// Timestamp returns the current UTC time truncated to whole seconds, the
// precision persisted on updatedAt.
func Timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
