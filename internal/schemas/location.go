package schemas

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"

	"location-service/internal/models"
)

// CreateLocationInput accepts only the user-settable fields of a location.
// Unknown fields are rejected.
type CreateLocationInput struct {
	Name     string `json:"name" validate:"required"`
	Capacity *int   `json:"capacity"`
}

// UpdateLocationInput accepts only the mutable fields of a location for
// partial updates. Unknown fields are rejected; absent fields stay untouched.
type UpdateLocationInput struct {
	Name     *string `json:"name"`
	Capacity *int    `json:"capacity"`
}

// Apply overlays the present fields onto an existing location and refreshes
// its timestamp.
func (in *UpdateLocationInput) Apply(loc *models.Location) {
	if in.Name != nil {
		loc.Name = *in.Name
	}
	if in.Capacity != nil {
		loc.Capacity = in.Capacity
	}
	loc.UpdatedAt = models.Timestamp()
}

// LoadCreateLocation validates a create payload and builds a new location
// with a generated id and a fresh timestamp.
func LoadCreateLocation(data []byte) (*models.Location, error) {
	var in CreateLocationInput
	if err := decodeStrict(data, &in); err != nil {
		return nil, err
	}
	if err := validate.Struct(&in); err != nil {
		return nil, asValidationError(err)
	}
	return models.NewLocation(in.Name, in.Capacity), nil
}

// LoadUpdateLocation validates a partial-update payload.
func LoadUpdateLocation(data []byte) (*UpdateLocationInput, error) {
	var in UpdateLocationInput
	if err := decodeStrict(data, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

// LoadLocation loads a stored location document. Unknown fields are ignored
// so the store may grow fields this service does not know about. A fresh
// timestamp is assigned when the document carries none, and locationId is
// kept in lock-step with id.
func LoadLocation(data []byte) (*models.Location, error) {
	var loc models.Location
	if err := json.Unmarshal(data, &loc); err != nil {
		return nil, newValidationError("_schema", err.Error())
	}
	if loc.ID == uuid.Nil {
		return nil, newValidationError("id", "required")
	}
	loc.LocationID = loc.ID
	if loc.UpdatedAt.IsZero() {
		loc.UpdatedAt = models.Timestamp()
	}
	if loc.Sensors == nil {
		loc.Sensors = []uuid.UUID{}
	}
	return &loc, nil
}

// decodeStrict unmarshals client input, rejecting unknown fields.
func decodeStrict(data []byte, dest interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return newValidationError("_schema", err.Error())
	}
	return nil
}
