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

func TestLoadCreateSensor(t *testing.T) {
	locationID := uuid.New()
	sensor, err := LoadCreateSensor([]byte(`{"name":"temp-1","type":"temperature"}`), locationID)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, sensor.ID)
	assert.Equal(t, "temp-1", sensor.Name)
	assert.Equal(t, "temperature", sensor.Type)
	assert.Equal(t, locationID, sensor.LocationID)
	assert.False(t, sensor.UpdatedAt.IsZero())
}

func TestLoadCreateSensorPathLocationWins(t *testing.T) {
	locationID := uuid.New()
	body := []byte(`{"name":"temp-1","type":"temperature","locationId":"` + uuid.New().String() + `"}`)
	sensor, err := LoadCreateSensor(body, locationID)
	require.NoError(t, err)
	assert.Equal(t, locationID, sensor.LocationID)
}

func TestLoadCreateSensorRequiresNameAndType(t *testing.T) {
	_, err := LoadCreateSensor([]byte(`{"name":"temp-1"}`), uuid.New())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "Type")
}

func TestLoadCreateSensorRejectsUnknownFields(t *testing.T) {
	_, err := LoadCreateSensor([]byte(`{"name":"a","type":"b","firmware":"v2"}`), uuid.New())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestLoadUpdateSensorRejectsUnknownFields(t *testing.T) {
	_, err := LoadUpdateSensor([]byte(`{"name":"a","locationId":"x"}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestUpdateSensorApplyRefreshesTimestamp(t *testing.T) {
	sensor := models.NewSensor("temp-1", "temperature", uuid.New())
	sensor.UpdatedAt = sensor.UpdatedAt.Add(-time.Hour)
	before := sensor.UpdatedAt

	newType := "humidity"
	in := &UpdateSensorInput{Type: &newType}
	in.Apply(sensor)

	assert.Equal(t, "temp-1", sensor.Name)
	assert.Equal(t, "humidity", sensor.Type)
	assert.True(t, sensor.UpdatedAt.After(before))
}

func TestSensorRoundTrip(t *testing.T) {
	original := models.NewSensor("temp-1", "temperature", uuid.New())

	data, err := json.Marshal(original)
	require.NoError(t, err)

	loaded, err := LoadSensor(data)
	require.NoError(t, err)
	assert.Equal(t, original.ID, loaded.ID)
	assert.Equal(t, original.Name, loaded.Name)
	assert.Equal(t, original.Type, loaded.Type)
	assert.Equal(t, original.LocationID, loaded.LocationID)
	assert.True(t, original.UpdatedAt.Equal(loaded.UpdatedAt))
}

func TestLoadSensorRequiresIdentity(t *testing.T) {
	_, err := LoadSensor([]byte(`{"name":"temp-1","type":"temperature"}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "id")

	_, err = LoadSensor([]byte(`{"id":"` + uuid.New().String() + `","name":"temp-1"}`))
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "locationId")
}
