package schemas

import (
	"encoding/json"

	"github.com/google/uuid"

	"location-service/internal/models"
)

// CreateSensorInput accepts the user-settable fields of a sensor. A
// locationId in the body is permitted but the path value always wins.
type CreateSensorInput struct {
	Name       string    `json:"name" validate:"required"`
	Type       string    `json:"type" validate:"required"`
	LocationID uuid.UUID `json:"locationId"`
}

// UpdateSensorInput accepts only the mutable fields of a sensor. Unknown
// fields are rejected.
type UpdateSensorInput struct {
	Name *string `json:"name"`
	Type *string `json:"type"`
}

// Apply overlays the present fields onto an existing sensor and refreshes
// its timestamp.
func (in *UpdateSensorInput) Apply(sensor *models.Sensor) {
	if in.Name != nil {
		sensor.Name = *in.Name
	}
	if in.Type != nil {
		sensor.Type = *in.Type
	}
	sensor.UpdatedAt = models.Timestamp()
}

// LoadCreateSensor validates a create payload and builds a new sensor owned
// by the given location.
func LoadCreateSensor(data []byte, locationID uuid.UUID) (*models.Sensor, error) {
	var in CreateSensorInput
	if err := decodeStrict(data, &in); err != nil {
		return nil, err
	}
	if err := validate.Struct(&in); err != nil {
		return nil, asValidationError(err)
	}
	return models.NewSensor(in.Name, in.Type, locationID), nil
}

// LoadUpdateSensor validates a partial-update payload.
func LoadUpdateSensor(data []byte) (*UpdateSensorInput, error) {
	var in UpdateSensorInput
	if err := decodeStrict(data, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

// LoadSensor loads a stored sensor document, ignoring unknown fields.
func LoadSensor(data []byte) (*models.Sensor, error) {
	var sensor models.Sensor
	if err := json.Unmarshal(data, &sensor); err != nil {
		return nil, newValidationError("_schema", err.Error())
	}
	if sensor.ID == uuid.Nil {
		return nil, newValidationError("id", "required")
	}
	if sensor.LocationID == uuid.Nil {
		return nil, newValidationError("locationId", "required")
	}
	if sensor.UpdatedAt.IsZero() {
		sensor.UpdatedAt = models.Timestamp()
	}
	return &sensor, nil
}
