package schemas

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"location-service/internal/models"
)

func TestLoadCreateLocation(t *testing.T) {
	loc, err := LoadCreateLocation([]byte(`{"name":"Lab A","capacity":10}`))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, loc.ID)
	assert.Equal(t, loc.ID, loc.LocationID)
	assert.Equal(t, "Lab A", loc.Name)
	require.NotNil(t, loc.Capacity)
	assert.Equal(t, 10, *loc.Capacity)
	assert.Empty(t, loc.Sensors)
	assert.False(t, loc.UpdatedAt.IsZero())
	// Timestamps persist at whole-second precision.
	assert.Equal(t, loc.UpdatedAt, loc.UpdatedAt.Truncate(time.Second))
}

func TestLoadCreateLocationRejectsUnknownFields(t *testing.T) {
	_, err := LoadCreateLocation([]byte(`{"name":"Lab A","bogus":1}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestLoadCreateLocationRequiresName(t *testing.T) {
	_, err := LoadCreateLocation([]byte(`{"capacity":3}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "Name")
}

func TestLoadUpdateLocationRejectsUnknownFields(t *testing.T) {
	_, err := LoadUpdateLocation([]byte(`{"name":"x","sensors":[]}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestUpdateLocationApplyRefreshesTimestamp(t *testing.T) {
	loc := models.NewLocation("Lab A", nil)
	loc.UpdatedAt = loc.UpdatedAt.Add(-2 * time.Hour)
	before := loc.UpdatedAt

	name := "Lab A2"
	in := &UpdateLocationInput{Name: &name}
	in.Apply(loc)

	assert.Equal(t, "Lab A2", loc.Name)
	assert.Nil(t, loc.Capacity)
	assert.True(t, loc.UpdatedAt.After(before))
}

func TestLocationRoundTrip(t *testing.T) {
	capacity := 25
	original := models.NewLocation("Warehouse", &capacity)
	original.Sensors = []uuid.UUID{uuid.New(), uuid.New()}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	loaded, err := LoadLocation(data)
	require.NoError(t, err)
	assert.Equal(t, original.ID, loaded.ID)
	assert.Equal(t, original.ID, loaded.LocationID)
	assert.Equal(t, original.Name, loaded.Name)
	assert.Equal(t, original.Capacity, loaded.Capacity)
	assert.True(t, original.UpdatedAt.Equal(loaded.UpdatedAt))
	assert.Equal(t, original.Sensors, loaded.Sensors)
}

func TestLoadLocationIgnoresUnknownFields(t *testing.T) {
	id := uuid.New()
	doc := []byte(`{"id":"` + id.String() + `","locationId":"` + id.String() +
		`","name":"Lab","sensors":[],"updatedAt":"2024-05-01T12:00:00Z","_etag":"xyz","_ts":1714564800}`)
	loaded, err := LoadLocation(doc)
	require.NoError(t, err)
	assert.Equal(t, id, loaded.ID)
	assert.Equal(t, "Lab", loaded.Name)
}

func TestLoadLocationRequiresID(t *testing.T) {
	_, err := LoadLocation([]byte(`{"name":"Lab"}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "id")
}

func TestLoadLocationRejectsMalformedJSON(t *testing.T) {
	_, err := LoadLocation([]byte(`{"id":42}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}
