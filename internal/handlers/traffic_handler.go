package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"location-service/internal/models"
	"location-service/internal/schemas"
	"location-service/internal/services"
)

// Proxied statistics are short-lived, so responses are cached briefly keyed
// by the full request (path + query).
const trafficCacheTTL = 60 * time.Second

// TrafficHandler proxies occupancy statistics from the downstream data-store
// service. Nothing is stored locally.
type TrafficHandler struct {
	Traffic *services.TrafficService
	Cache   *services.CacheService
}

// NewTrafficHandler creates a new TrafficHandler.
func NewTrafficHandler(traffic *services.TrafficService, cache *services.CacheService) *TrafficHandler {
	return &TrafficHandler{Traffic: traffic, Cache: cache}
}

func trafficCacheKey(c *fiber.Ctx) string {
	return "traffic:" + c.OriginalURL()
}

// GetTrafficCount handles GET /locations/:locationId/traffic_count.
// @Summary Current traffic count for a location
// @Description Proxies the current occupancy count from the statistics service
// @Tags traffic
// @Accept json
// @Produce json
// @Param locationId path string true "Location ID"
// @Param time query int false "Unix timestamp, defaults to now"
// @Success 200 {object} models.TrafficCount "Current count"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 502 {object} map[string]interface{} "Statistics service unreachable"
// @Router /locations/{locationId}/traffic_count [get]
func (h *TrafficHandler) GetTrafficCount(c *fiber.Ctx) error {
	locationID, err := uuid.Parse(c.Params("locationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}
	var cached models.TrafficCount
	if h.Cache.Get(trafficCacheKey(c), &cached) {
		return c.JSON(cached)
	}
	input, err := schemas.LoadTrafficCountInput(c.Queries())
	if err != nil {
		log.Printf("Cannot get traffic count for %s: %v", locationID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "cannot get traffic for requested location, invalid request",
		})
	}
	status, body, err := h.Traffic.Fetch(services.TrafficCountEndpoint, locationID, input.Values(locationID))
	if err != nil {
		log.Printf("Traffic count fetch failed for %s: %v", locationID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": true, "message": "could not reach traffic statistics service",
		})
	}
	if status != fiber.StatusOK {
		// Pass the downstream answer through verbatim.
		return c.Status(status).Send(body)
	}
	out, err := schemas.LoadTrafficCount(body, locationID, input.Time)
	if err != nil {
		log.Printf("Cannot get traffic count for %s: %v", locationID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "cannot get traffic for requested location, invalid request",
		})
	}
	h.Cache.SetWithTTL(trafficCacheKey(c), out, trafficCacheTTL)
	return c.JSON(out)
}

// GetPeakTraffic handles GET /locations/:locationId/peak_traffic.
// @Summary Peak traffic for a location
// @Description Proxies peak occupancy within a time window from the statistics service
// @Tags traffic
// @Accept json
// @Produce json
// @Param locationId path string true "Location ID"
// @Param start_time query int true "Window start, unix timestamp"
// @Param end_time query int true "Window end, unix timestamp"
// @Success 200 {object} models.PeakTraffic "Peak stats"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 502 {object} map[string]interface{} "Statistics service unreachable"
// @Router /locations/{locationId}/peak_traffic [get]
func (h *TrafficHandler) GetPeakTraffic(c *fiber.Ctx) error {
	locationID, err := uuid.Parse(c.Params("locationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}
	var cached models.PeakTraffic
	if h.Cache.Get(trafficCacheKey(c), &cached) {
		return c.JSON(cached)
	}
	input, err := schemas.LoadPeakTrafficInput(c.Queries())
	if err != nil {
		log.Printf("Cannot get peak traffic for %s: %v", locationID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "cannot get traffic for requested location, invalid request",
		})
	}
	status, body, err := h.Traffic.Fetch(services.PeakTrafficEndpoint, locationID, input.Values(locationID))
	if err != nil {
		log.Printf("Peak traffic fetch failed for %s: %v", locationID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": true, "message": "could not reach traffic statistics service",
		})
	}
	if status != fiber.StatusOK {
		return c.Status(status).Send(body)
	}
	out, err := schemas.LoadPeakTraffic(body, locationID)
	if err != nil {
		log.Printf("Cannot get peak traffic for %s: %v", locationID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "cannot get traffic for requested location, invalid request",
		})
	}
	h.Cache.SetWithTTL(trafficCacheKey(c), out, trafficCacheTTL)
	return c.JSON(out)
}

// GetTrafficHistory handles GET /locations/:locationId/traffic_history.
// @Summary Traffic history for a location
// @Description Proxies sampled occupancy over a time window from the statistics service
// @Tags traffic
// @Accept json
// @Produce json
// @Param locationId path string true "Location ID"
// @Param start_time query int true "Window start, unix timestamp"
// @Param end_time query int true "Window end, unix timestamp"
// @Success 200 {object} models.TrafficHistory "Sampled history"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 502 {object} map[string]interface{} "Statistics service unreachable"
// @Router /locations/{locationId}/traffic_history [get]
func (h *TrafficHandler) GetTrafficHistory(c *fiber.Ctx) error {
	locationID, err := uuid.Parse(c.Params("locationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}
	var cached models.TrafficHistory
	if h.Cache.Get(trafficCacheKey(c), &cached) {
		return c.JSON(cached)
	}
	input, err := schemas.LoadTrafficHistoryInput(c.Queries())
	if err != nil {
		log.Printf("Cannot get traffic history for %s: %v", locationID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "cannot get traffic for requested location, invalid request",
		})
	}
	status, body, err := h.Traffic.Fetch(services.TrafficHistoryEndpoint, locationID, input.Values(locationID))
	if err != nil {
		log.Printf("Traffic history fetch failed for %s: %v", locationID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": true, "message": "could not reach traffic statistics service",
		})
	}
	if status != fiber.StatusOK {
		return c.Status(status).Send(body)
	}
	out, err := schemas.LoadTrafficHistory(body, locationID)
	if err != nil {
		log.Printf("Cannot get traffic history for %s: %v", locationID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "cannot get traffic for requested location, invalid request",
		})
	}
	h.Cache.SetWithTTL(trafficCacheKey(c), out, trafficCacheTTL)
	return c.JSON(out)
}
