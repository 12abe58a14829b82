package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"location-service/internal/schemas"
	"location-service/internal/services"
	"location-service/internal/storage"
)

const InvalidUuidError = "invalid UUID"
const LocationNotFoundError = "location not found"

// LocationHandler defines handlers for managing location resources.
type LocationHandler struct {
	Service *services.LocationService
}

// NewLocationHandler creates a new LocationHandler with the given LocationService.
func NewLocationHandler(service *services.LocationService) *LocationHandler {
	return &LocationHandler{Service: service}
}

// ListLocations handles GET /locations to retrieve all locations.
// @Summary List all locations
// @Description Gets all locations, served cache-aside
// @Tags locations
// @Accept json
// @Produce json
// @Success 200 {array} models.Location "List of all locations"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /locations [get]
func (h *LocationHandler) ListLocations(c *fiber.Ctx) error {
	locations, err := h.Service.List()
	if err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			// Stored data failed validation, an integrity problem rather
			// than user error.
			log.Printf("Invalid format detected in location list: %v", verr)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": true, "message": "cannot return location list, invalid results",
			})
		}
		log.Printf("Error listing locations: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "could not list locations",
		})
	}
	return c.JSON(locations)
}

// CreateLocation handles POST /locations to create a new location.
// @Summary Create a location
// @Description Creates a location with a generated id
// @Tags locations
// @Accept json
// @Produce json
// @Param location body schemas.CreateLocationInput true "Location to create"
// @Success 201 {object} models.Location "Location created"
// @Failure 400 {object} map[string]interface{} "Invalid arguments"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /locations [post]
func (h *LocationHandler) CreateLocation(c *fiber.Ctx) error {
	loc, err := schemas.LoadCreateLocation(c.Body())
	if err != nil {
		log.Printf("Could not create location: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "cannot create location, invalid arguments",
		})
	}
	created, err := h.Service.Create(loc)
	if err != nil {
		log.Printf("Could not create location: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "could not create location due to an error",
		})
	}
	log.Printf("Created location %s", created.ID)
	return c.Status(fiber.StatusCreated).JSON(created)
}

// GetLocation handles GET /locations/:locationId to retrieve one location.
// @Summary Get a location by ID
// @Description Get details of a specific location, cache-first
// @Tags locations
// @Accept json
// @Produce json
// @Param locationId path string true "Location ID"
// @Success 200 {object} models.Location "Location found"
// @Failure 400 {object} map[string]interface{} "Invalid UUID"
// @Failure 404 {object} map[string]interface{} "Location not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /locations/{locationId} [get]
func (h *LocationHandler) GetLocation(c *fiber.Ctx) error {
	locationID, err := uuid.Parse(c.Params("locationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}
	location, err := h.Service.Get(locationID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": true, "message": LocationNotFoundError,
			})
		}
		log.Printf("Error fetching location %s: %v", locationID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "could not retrieve location",
		})
	}
	return c.JSON(location)
}

// UpdateLocation handles PUT /locations/:locationId for partial updates.
// @Summary Update a location
// @Description Merges the provided fields onto the stored location and refreshes updatedAt
// @Tags locations
// @Accept json
// @Produce json
// @Param locationId path string true "Location ID"
// @Param location body schemas.UpdateLocationInput true "Fields to update"
// @Success 200 {object} models.Location "Location updated"
// @Failure 400 {object} map[string]interface{} "Invalid arguments"
// @Failure 404 {object} map[string]interface{} "Location not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /locations/{locationId} [put]
func (h *LocationHandler) UpdateLocation(c *fiber.Ctx) error {
	locationID, err := uuid.Parse(c.Params("locationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}
	input, err := schemas.LoadUpdateLocation(c.Body())
	if err != nil {
		log.Printf("Cannot update location %s: %v", locationID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "cannot update location, invalid arguments",
		})
	}
	updated, err := h.Service.Update(locationID, input)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": true, "message": "cannot update location that does not exist",
			})
		}
		log.Printf("Error updating location %s: %v", locationID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "could not update location",
		})
	}
	return c.JSON(updated)
}

// DeleteLocation handles DELETE /locations/:locationId, cascading over the
// location's sensors first.
// @Summary Delete a location
// @Description Deletes a location and all sensors attached to it
// @Tags locations
// @Accept json
// @Produce json
// @Param locationId path string true "Location ID"
// @Success 200 {string} string "Location deleted"
// @Failure 400 {object} map[string]interface{} "Invalid UUID"
// @Failure 404 {object} map[string]interface{} "Location not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /locations/{locationId} [delete]
func (h *LocationHandler) DeleteLocation(c *fiber.Ctx) error {
	locationID, err := uuid.Parse(c.Params("locationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}
	if err := h.Service.Delete(locationID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": true, "message": "cannot delete location that does not exist",
			})
		}
		log.Printf("Error deleting location %s: %v", locationID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "error occurred when deleting location",
		})
	}
	log.Printf("Deleted location %s", locationID)
	return c.Status(fiber.StatusOK).SendString("")
}
