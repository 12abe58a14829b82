package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"location-service/internal/models"
	"location-service/internal/schemas"
	"location-service/internal/services"
	"location-service/internal/storage"
)

const SensorNotFoundError = "sensor not found"

// SensorHandler defines handlers for managing sensor resources nested under
// a location. Every route resolves the parent location first and answers 404
// when it does not exist.
type SensorHandler struct {
	Service *services.SensorService
}

// NewSensorHandler creates a new SensorHandler with the given SensorService.
func NewSensorHandler(service *services.SensorService) *SensorHandler {
	return &SensorHandler{Service: service}
}

// resolveParent parses the locationId path parameter and fetches the owning
// location. It writes the error response itself and returns nil when the
// request cannot proceed.
func (h *SensorHandler) resolveParent(c *fiber.Ctx) *models.Location {
	locationID, err := uuid.Parse(c.Params("locationId"))
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
		return nil
	}
	parent, err := h.Service.Parent(locationID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			_ = c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": true, "message": LocationNotFoundError,
			})
			return nil
		}
		log.Printf("Error resolving location %s: %v", locationID, err)
		_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "could not resolve location",
		})
		return nil
	}
	return parent
}

// ListSensors handles GET /locations/:locationId/sensors.
// @Summary List sensors for a location
// @Description Gets all sensors attached to a location, served cache-aside
// @Tags sensors
// @Accept json
// @Produce json
// @Param locationId path string true "Location ID"
// @Success 200 {array} models.Sensor "List of sensors"
// @Failure 404 {object} map[string]interface{} "Location not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /locations/{locationId}/sensors [get]
func (h *SensorHandler) ListSensors(c *fiber.Ctx) error {
	parent := h.resolveParent(c)
	if parent == nil {
		return nil
	}
	sensors, err := h.Service.ListForLocation(parent.ID)
	if err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			log.Printf("Invalid format detected in sensor list: %v", verr)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": true, "message": "cannot return sensor list, invalid results",
			})
		}
		log.Printf("Error listing sensors for %s: %v", parent.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "could not list sensors",
		})
	}
	return c.JSON(sensors)
}

// CreateSensor handles POST /locations/:locationId/sensors. On success the
// parent location carries the new sensor id and the simulator has the sensor
// registered; on a failed link or registration the sensor record is rolled
// back.
// @Summary Create a sensor under a location
// @Description Creates a sensor, links it to the location and registers its simulation
// @Tags sensors
// @Accept json
// @Produce json
// @Param locationId path string true "Location ID"
// @Param sensor body schemas.CreateSensorInput true "Sensor to create"
// @Success 201 {object} models.Sensor "Sensor created"
// @Failure 400 {object} map[string]interface{} "Invalid arguments"
// @Failure 404 {object} map[string]interface{} "Location not found"
// @Failure 502 {object} map[string]interface{} "Simulator rejected the registration"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /locations/{locationId}/sensors [post]
func (h *SensorHandler) CreateSensor(c *fiber.Ctx) error {
	parent := h.resolveParent(c)
	if parent == nil {
		return nil
	}
	sensor, err := schemas.LoadCreateSensor(c.Body(), parent.ID)
	if err != nil {
		log.Printf("Could not create sensor: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "cannot create sensor, invalid arguments",
		})
	}
	created, err := h.Service.Create(parent, sensor)
	if err != nil {
		if errors.Is(err, services.ErrSimulatorRejected) {
			log.Printf("Simulator rejected sensor %s: %v", sensor.ID, err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": true, "message": "could not register sensor simulation",
			})
		}
		if errors.Is(err, storage.ErrNotFound) {
			// The location vanished between resolution and link.
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": true, "message": "could not register sensor to location, does not exist",
			})
		}
		log.Printf("Could not create sensor: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "could not create sensor due to an error",
		})
	}
	log.Printf("Created sensor %s under location %s", created.ID, parent.ID)
	return c.Status(fiber.StatusCreated).JSON(created)
}

// GetSensor handles GET /locations/:locationId/sensors/:sensorId.
// @Summary Get a sensor by ID
// @Description Get details of a specific sensor, cache-first
// @Tags sensors
// @Accept json
// @Produce json
// @Param locationId path string true "Location ID"
// @Param sensorId path string true "Sensor ID"
// @Success 200 {object} models.Sensor "Sensor found"
// @Failure 400 {object} map[string]interface{} "Invalid UUID"
// @Failure 404 {object} map[string]interface{} "Sensor not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /locations/{locationId}/sensors/{sensorId} [get]
func (h *SensorHandler) GetSensor(c *fiber.Ctx) error {
	parent := h.resolveParent(c)
	if parent == nil {
		return nil
	}
	sensorID, err := uuid.Parse(c.Params("sensorId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}
	sensor, err := h.Service.Get(parent.ID, sensorID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": true, "message": SensorNotFoundError,
			})
		}
		log.Printf("Error fetching sensor %s: %v", sensorID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "could not retrieve sensor",
		})
	}
	return c.JSON(sensor)
}

// UpdateSensor handles PUT /locations/:locationId/sensors/:sensorId.
// @Summary Update a sensor
// @Description Merges the provided fields onto the stored sensor and refreshes updatedAt
// @Tags sensors
// @Accept json
// @Produce json
// @Param locationId path string true "Location ID"
// @Param sensorId path string true "Sensor ID"
// @Param sensor body schemas.UpdateSensorInput true "Fields to update"
// @Success 200 {object} models.Sensor "Sensor updated"
// @Failure 400 {object} map[string]interface{} "Invalid arguments"
// @Failure 404 {object} map[string]interface{} "Sensor not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /locations/{locationId}/sensors/{sensorId} [put]
func (h *SensorHandler) UpdateSensor(c *fiber.Ctx) error {
	parent := h.resolveParent(c)
	if parent == nil {
		return nil
	}
	sensorID, err := uuid.Parse(c.Params("sensorId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}
	input, err := schemas.LoadUpdateSensor(c.Body())
	if err != nil {
		log.Printf("Cannot update sensor %s: %v", sensorID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "cannot update sensor, invalid arguments",
		})
	}
	updated, err := h.Service.Update(parent.ID, sensorID, input)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": true, "message": "cannot update sensor that does not exist",
			})
		}
		log.Printf("Error updating sensor %s: %v", sensorID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "could not update sensor",
		})
	}
	return c.JSON(updated)
}

// DeleteSensor handles DELETE /locations/:locationId/sensors/:sensorId.
// Unlink, simulator deregistration and record deletion must all succeed in
// order; a failing step aborts with 500 and leaves earlier effects in place.
// @Summary Delete a sensor
// @Description Unlinks the sensor from its location, deregisters its simulation and deletes the record
// @Tags sensors
// @Accept json
// @Produce json
// @Param locationId path string true "Location ID"
// @Param sensorId path string true "Sensor ID"
// @Success 200 {string} string "Sensor deleted"
// @Failure 400 {object} map[string]interface{} "Invalid UUID"
// @Failure 404 {object} map[string]interface{} "Sensor not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /locations/{locationId}/sensors/{sensorId} [delete]
func (h *SensorHandler) DeleteSensor(c *fiber.Ctx) error {
	parent := h.resolveParent(c)
	if parent == nil {
		return nil
	}
	sensorID, err := uuid.Parse(c.Params("sensorId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}
	if err := h.Service.Delete(parent, sensorID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": true, "message": "cannot delete sensor that does not exist",
			})
		}
		log.Printf("Error deleting sensor %s: %v", sensorID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "error occurred when deleting sensor",
		})
	}
	log.Printf("Deleted sensor %s under location %s", sensorID, parent.ID)
	return c.Status(fiber.StatusOK).SendString("")
}
