package models

import (
	"github.com/google/uuid"
)

// TrafficCount is the proxied current-occupancy response for a location.
type TrafficCount struct {
	FetchedAt    int64     `json:"fetchedAt"`
	LocationID   uuid.UUID `json:"locationId"`
	Time         int64     `json:"time"`
	TrafficCount int64     `json:"trafficCount"`
}

// PeakTrafficPoint is the peak sample inside a PeakTraffic response.
type PeakTrafficPoint struct {
	Time  int64 `json:"time"`
	Count int64 `json:"count"`
}

// PeakTraffic is the proxied peak-occupancy response for a location.
type PeakTraffic struct {
	FetchedAt   int64            `json:"fetchedAt"`
	LocationID  uuid.UUID        `json:"locationId"`
	PeakTraffic PeakTrafficPoint `json:"peakTraffic"`
}

// TrafficHistoryPoint is a single sample in a TrafficHistory response.
type TrafficHistoryPoint struct {
	Time         int64 `json:"time"`
	TrafficCount int64 `json:"trafficCount"`
}

// TrafficHistory is the proxied occupancy-over-time response for a location.
type TrafficHistory struct {
	FetchedAt      int64                 `json:"fetchedAt"`
	LocationID     uuid.UUID             `json:"locationId"`
	TrafficHistory []TrafficHistoryPoint `json:"trafficHistory"`
}
