package schemas

import (
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"location-service/internal/models"
)

// The statistics service expects unix timestamps as snake_case query
// parameters rather than the camelCase wire convention of this API.

const defaultHistoryInterval = 10

// TrafficCountInput holds validated query parameters for a current-count
// request. Time defaults to now when absent.
type TrafficCountInput struct {
	Time int64
}

// PeakTrafficInput holds validated query parameters for a peak request.
type PeakTrafficInput struct {
	StartTime int64
	EndTime   int64
}

// TrafficHistoryInput holds validated query parameters for a history request.
type TrafficHistoryInput struct {
	StartTime    int64
	EndTime      int64
	TimeInterval int64
}

// LoadTrafficCountInput parses and validates traffic_count query parameters.
func LoadTrafficCountInput(query map[string]string) (*TrafficCountInput, error) {
	in := &TrafficCountInput{Time: time.Now().Unix()}
	if raw, ok := query["time"]; ok {
		t, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, newValidationError("time", "not a valid unix timestamp")
		}
		in.Time = t
	}
	return in, nil
}

// Values dumps the input as downstream query parameters.
func (in *TrafficCountInput) Values(locationID uuid.UUID) url.Values {
	v := url.Values{}
	v.Set("time", strconv.FormatInt(in.Time, 10))
	v.Set("location_id", locationID.String())
	return v
}

// LoadPeakTrafficInput parses and validates peak_traffic query parameters.
func LoadPeakTrafficInput(query map[string]string) (*PeakTrafficInput, error) {
	start, err := requiredUnix(query, "start_time")
	if err != nil {
		return nil, err
	}
	end, err := requiredUnix(query, "end_time")
	if err != nil {
		return nil, err
	}
	return &PeakTrafficInput{StartTime: start, EndTime: end}, nil
}

// Values dumps the input as downstream query parameters.
func (in *PeakTrafficInput) Values(locationID uuid.UUID) url.Values {
	v := url.Values{}
	v.Set("start_time", strconv.FormatInt(in.StartTime, 10))
	v.Set("end_time", strconv.FormatInt(in.EndTime, 10))
	v.Set("location_id", locationID.String())
	return v
}

// LoadTrafficHistoryInput parses and validates traffic_history query
// parameters. The sampling interval is fixed server-side.
func LoadTrafficHistoryInput(query map[string]string) (*TrafficHistoryInput, error) {
	start, err := requiredUnix(query, "start_time")
	if err != nil {
		return nil, err
	}
	end, err := requiredUnix(query, "end_time")
	if err != nil {
		return nil, err
	}
	return &TrafficHistoryInput{
		StartTime:    start,
		EndTime:      end,
		TimeInterval: defaultHistoryInterval,
	}, nil
}

// Values dumps the input as downstream query parameters.
func (in *TrafficHistoryInput) Values(locationID uuid.UUID) url.Values {
	v := url.Values{}
	v.Set("start_time", strconv.FormatInt(in.StartTime, 10))
	v.Set("end_time", strconv.FormatInt(in.EndTime, 10))
	v.Set("time_interval", strconv.FormatInt(in.TimeInterval, 10))
	v.Set("location_id", locationID.String())
	return v
}

// LoadTrafficCount re-validates a downstream traffic_count body and re-keys
// it with the location id and requested time.
func LoadTrafficCount(body []byte, locationID uuid.UUID, requestTime int64) (*models.TrafficCount, error) {
	var raw struct {
		FetchedAt    *int64 `json:"fetchedAt"`
		TrafficCount *int64 `json:"trafficCount"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, newValidationError("_schema", err.Error())
	}
	if raw.FetchedAt == nil {
		return nil, newValidationError("fetchedAt", "required")
	}
	if raw.TrafficCount == nil {
		return nil, newValidationError("trafficCount", "required")
	}
	return &models.TrafficCount{
		FetchedAt:    *raw.FetchedAt,
		LocationID:   locationID,
		Time:         requestTime,
		TrafficCount: *raw.TrafficCount,
	}, nil
}

// LoadPeakTraffic re-validates a downstream peak_traffic body and re-keys it
// with the location id.
func LoadPeakTraffic(body []byte, locationID uuid.UUID) (*models.PeakTraffic, error) {
	var raw struct {
		FetchedAt   *int64                   `json:"fetchedAt"`
		PeakTraffic *models.PeakTrafficPoint `json:"peakTraffic"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, newValidationError("_schema", err.Error())
	}
	if raw.FetchedAt == nil {
		return nil, newValidationError("fetchedAt", "required")
	}
	if raw.PeakTraffic == nil {
		return nil, newValidationError("peakTraffic", "required")
	}
	return &models.PeakTraffic{
		FetchedAt:   *raw.FetchedAt,
		LocationID:  locationID,
		PeakTraffic: *raw.PeakTraffic,
	}, nil
}

// LoadTrafficHistory re-validates a downstream traffic_history body and
// re-keys it with the location id.
func LoadTrafficHistory(body []byte, locationID uuid.UUID) (*models.TrafficHistory, error) {
	var raw struct {
		FetchedAt      *int64                       `json:"fetchedAt"`
		TrafficHistory []models.TrafficHistoryPoint `json:"trafficHistory"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, newValidationError("_schema", err.Error())
	}
	if raw.FetchedAt == nil {
		return nil, newValidationError("fetchedAt", "required")
	}
	if raw.TrafficHistory == nil {
		raw.TrafficHistory = []models.TrafficHistoryPoint{}
	}
	return &models.TrafficHistory{
		FetchedAt:      *raw.FetchedAt,
		LocationID:     locationID,
		TrafficHistory: raw.TrafficHistory,
	}, nil
}

func requiredUnix(query map[string]string, key string) (int64, error) {
	raw, ok := query[key]
	if !ok || raw == "" {
		return 0, newValidationError(key, "required")
	}
	t, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, newValidationError(key, "not a valid unix timestamp")
	}
	return t, nil
}
