package services

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"location-service/internal/metrics"
)

// ErrSimulatorRejected is returned when the simulator service refuses a
// registration. The caller compensates by deleting the sensor record.
var ErrSimulatorRejected = errors.New("simulator rejected registration")

// SimulationService registers and deregisters sensor simulations with the
// external simulator service. Every call is attempted exactly once, no
// retries.
type SimulationService struct {
	baseURL string
	client  *http.Client
	metrics *metrics.Metrics
}

// NewSimulationService creates a client for the simulator service.
func NewSimulationService(baseURL string, m *metrics.Metrics) *SimulationService {
	return &SimulationService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		metrics: m,
	}
}

func (s *SimulationService) sensorURL(locationID, sensorID uuid.UUID) string {
	return fmt.Sprintf("%s/api/locations/%s/sensors/%s", s.baseURL, locationID, sensorID)
}

// Register starts a simulation for the sensor.
func (s *SimulationService) Register(locationID, sensorID uuid.UUID) error {
	req, err := http.NewRequest(http.MethodPut, s.sensorURL(locationID, sensorID), nil)
	if err != nil {
		return errors.Wrap(err, "building simulator register request")
	}
	resp, err := s.client.Do(req)
	if err != nil {
		s.metrics.RecordDownstreamCall("simulator", "error")
		return errors.Wrap(err, "registering sensor simulation")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.metrics.RecordDownstreamCall("simulator", "rejected")
		return errors.Wrapf(ErrSimulatorRejected, "status %d", resp.StatusCode)
	}
	s.metrics.RecordDownstreamCall("simulator", "ok")
	return nil
}

// Deregister stops a simulation for the sensor. The simulator answering
// 200, 404 or 400 all count as success: the simulation is gone either way.
func (s *SimulationService) Deregister(locationID, sensorID uuid.UUID) error {
	req, err := http.NewRequest(http.MethodDelete, s.sensorURL(locationID, sensorID), nil)
	if err != nil {
		return errors.Wrap(err, "building simulator deregister request")
	}
	resp, err := s.client.Do(req)
	if err != nil {
		s.metrics.RecordDownstreamCall("simulator", "error")
		return errors.Wrap(err, "deregistering sensor simulation")
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK, http.StatusNotFound, http.StatusBadRequest:
		s.metrics.RecordDownstreamCall("simulator", "ok")
		return nil
	}
	s.metrics.RecordDownstreamCall("simulator", "rejected")
	return errors.Errorf("simulator deregistration returned status %d", resp.StatusCode)
}
