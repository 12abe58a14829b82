package services

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"location-service/internal/metrics"
)

// TrafficEndpoint names a statistic the data-store service can serve.
type TrafficEndpoint string

const (
	TrafficCountEndpoint   TrafficEndpoint = "traffic_count"
	PeakTrafficEndpoint    TrafficEndpoint = "peak_traffic"
	TrafficHistoryEndpoint TrafficEndpoint = "traffic_history"
)

// TrafficService fetches occupancy statistics from the downstream data-store
// service. The data store expects unix timestamps as query parameters. One
// attempt per call, no retries; non-200 answers are handed back to the
// caller verbatim.
type TrafficService struct {
	baseURL string
	client  *http.Client
	metrics *metrics.Metrics
}

// NewTrafficService creates a client for the statistics service.
func NewTrafficService(baseURL string, m *metrics.Metrics) *TrafficService {
	return &TrafficService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		metrics: m,
	}
}

// Fetch requests one statistic for a location and returns the downstream
// status code and body.
func (s *TrafficService) Fetch(endpoint TrafficEndpoint, locationID uuid.UUID, params url.Values) (int, []byte, error) {
	u := fmt.Sprintf("%s/api/locations/%s/%s?%s", s.baseURL, locationID, endpoint, params.Encode())
	resp, err := s.client.Get(u)
	if err != nil {
		s.metrics.RecordDownstreamCall("datastore", "error")
		return 0, nil, errors.Wrapf(err, "fetching %s", endpoint)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.metrics.RecordDownstreamCall("datastore", "error")
		return 0, nil, errors.Wrapf(err, "reading %s response", endpoint)
	}
	if resp.StatusCode == http.StatusOK {
		s.metrics.RecordDownstreamCall("datastore", "ok")
	} else {
		s.metrics.RecordDownstreamCall("datastore", "rejected")
	}
	return resp.StatusCode, body, nil
}
