package repository

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"location-service/internal/models"
	"location-service/internal/schemas"
	"location-service/internal/storage"
)

// LocationRepository provides typed access to the LOCATIONS container.
// Locations are their own partition, so every operation addresses the
// partition by the location id itself.
type LocationRepository struct {
	store storage.DocumentStore
}

// NewLocationRepository creates a new LocationRepository over the given
// document store.
func NewLocationRepository(store storage.DocumentStore) *LocationRepository {
	return &LocationRepository{store: store}
}

// GetByID retrieves a location by its id via a partitioned point read.
func (r *LocationRepository) GetByID(id uuid.UUID) (*models.Location, error) {
	doc, err := r.store.GetByIDAndPartitionKey(id.String(), id.String(), storage.ContainerLocations)
	if err != nil {
		return nil, err
	}
	return schemas.LoadLocation(doc)
}

// All retrieves every location in the container. A stored document that no
// longer loads against the schema surfaces as a ValidationError.
func (r *LocationRepository) All() ([]*models.Location, error) {
	docs, err := r.store.QueryAll(storage.ContainerLocations)
	if err != nil {
		return nil, err
	}
	locations := make([]*models.Location, 0, len(docs))
	for _, doc := range docs {
		loc, err := schemas.LoadLocation(doc)
		if err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, nil
}

// Create upserts a new location document.
func (r *LocationRepository) Create(loc *models.Location) (*models.Location, error) {
	doc, err := dumpLocation(loc)
	if err != nil {
		return nil, err
	}
	stored, err := r.store.Upsert(loc.ID.String(), loc.ID.String(), doc, storage.ContainerLocations)
	if err != nil {
		return nil, err
	}
	return schemas.LoadLocation(stored)
}

// Replace persists loc at its existing identity.
func (r *LocationRepository) Replace(loc *models.Location) (*models.Location, error) {
	doc, err := dumpLocation(loc)
	if err != nil {
		return nil, err
	}
	stored, err := r.store.Replace(loc.ID.String(), loc.ID.String(), doc, storage.ContainerLocations)
	if err != nil {
		return nil, err
	}
	return schemas.LoadLocation(stored)
}

// Delete removes a location document.
func (r *LocationRepository) Delete(id uuid.UUID) error {
	return r.store.Delete(id.String(), id.String(), storage.ContainerLocations)
}

func dumpLocation(loc *models.Location) ([]byte, error) {
	// locationId doubles as the partition key and must mirror id.
	loc.LocationID = loc.ID
	doc, err := json.Marshal(loc)
	if err != nil {
		return nil, errors.Wrap(err, "serializing location")
	}
	return doc, nil
}
