package schemas

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTrafficCountInputDefaultsTime(t *testing.T) {
	before := time.Now().Unix()
	in, err := LoadTrafficCountInput(map[string]string{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, in.Time, before)
}

func TestLoadTrafficCountInputParsesTime(t *testing.T) {
	in, err := LoadTrafficCountInput(map[string]string{"time": "1714564800"})
	require.NoError(t, err)
	assert.Equal(t, int64(1714564800), in.Time)

	_, err = LoadTrafficCountInput(map[string]string{"time": "yesterday"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "time")
}

func TestLoadPeakTrafficInputRequiresWindow(t *testing.T) {
	_, err := LoadPeakTrafficInput(map[string]string{"start_time": "100"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "end_time")

	in, err := LoadPeakTrafficInput(map[string]string{"start_time": "100", "end_time": "200"})
	require.NoError(t, err)
	assert.Equal(t, int64(100), in.StartTime)
	assert.Equal(t, int64(200), in.EndTime)
}

func TestTrafficHistoryInputValues(t *testing.T) {
	in, err := LoadTrafficHistoryInput(map[string]string{"start_time": "100", "end_time": "200"})
	require.NoError(t, err)
	assert.Equal(t, int64(defaultHistoryInterval), in.TimeInterval)

	locationID := uuid.New()
	values := in.Values(locationID)
	assert.Equal(t, "100", values.Get("start_time"))
	assert.Equal(t, "200", values.Get("end_time"))
	assert.Equal(t, "10", values.Get("time_interval"))
	assert.Equal(t, locationID.String(), values.Get("location_id"))
}

func TestLoadTrafficCountRekeysResponse(t *testing.T) {
	locationID := uuid.New()
	out, err := LoadTrafficCount([]byte(`{"fetchedAt":1714564800,"trafficCount":42}`), locationID, 1714564700)
	require.NoError(t, err)
	assert.Equal(t, locationID, out.LocationID)
	assert.Equal(t, int64(1714564700), out.Time)
	assert.Equal(t, int64(42), out.TrafficCount)
	assert.Equal(t, int64(1714564800), out.FetchedAt)
}

func TestLoadTrafficCountRequiresFields(t *testing.T) {
	_, err := LoadTrafficCount([]byte(`{"trafficCount":42}`), uuid.New(), 0)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "fetchedAt")
}

func TestLoadPeakTraffic(t *testing.T) {
	locationID := uuid.New()
	out, err := LoadPeakTraffic([]byte(`{"fetchedAt":10,"peakTraffic":{"time":5,"count":99}}`), locationID)
	require.NoError(t, err)
	assert.Equal(t, locationID, out.LocationID)
	assert.Equal(t, int64(5), out.PeakTraffic.Time)
	assert.Equal(t, int64(99), out.PeakTraffic.Count)

	_, err = LoadPeakTraffic([]byte(`{"fetchedAt":10}`), locationID)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "peakTraffic")
}

func TestLoadTrafficHistory(t *testing.T) {
	locationID := uuid.New()
	body := []byte(`{"fetchedAt":10,"trafficHistory":[{"time":1,"trafficCount":2},{"time":11,"trafficCount":3}]}`)
	out, err := LoadTrafficHistory(body, locationID)
	require.NoError(t, err)
	assert.Equal(t, locationID, out.LocationID)
	require.Len(t, out.TrafficHistory, 2)
	assert.Equal(t, int64(3), out.TrafficHistory[1].TrafficCount)

	// An absent history dumps as an empty list, not null.
	out, err = LoadTrafficHistory([]byte(`{"fetchedAt":10}`), locationID)
	require.NoError(t, err)
	assert.NotNil(t, out.TrafficHistory)
	assert.Empty(t, out.TrafficHistory)
}
