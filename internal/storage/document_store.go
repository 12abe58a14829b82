package storage

import (
	"github.com/pkg/errors"
)

// Container names a logical partitioned collection in the document store.
type Container string

const (
	ContainerLocations Container = "locations"
	ContainerSensors   Container = "sensors"
)

// Table returns the backing table name for a container, or an error for a
// container that was never registered.
func (c Container) Table() (string, error) {
	switch c {
	case ContainerLocations, ContainerSensors:
		return string(c), nil
	}
	return "", errors.Errorf("container name: %s not found", string(c))
}

// ErrNotFound is returned when the requested item or container is absent.
// Any other store failure is a request error and surfaces wrapped.
var ErrNotFound = errors.New("item not found")

// DocumentStore is a barebones wrapper for a partitioned document database.
// Documents travel as raw JSON; the schemas layer owns their shape.
type DocumentStore interface {
	// GetByIDAndPartitionKey performs a point read within one partition.
	GetByIDAndPartitionKey(id, partitionKey string, container Container) ([]byte, error)
	// GetByID scans across partitions for a single item.
	// NOTE: inefficient due to lack of partition key.
	GetByID(id string, container Container) ([]byte, error)
	// QueryByPartitionKey returns every item in one partition.
	QueryByPartitionKey(container Container, partitionKey string) ([][]byte, error)
	// QueryAll returns every item in the container, cross-partition.
	QueryAll(container Container) ([][]byte, error)
	// Upsert stores a document under (id, partitionKey) and returns it.
	Upsert(id, partitionKey string, doc []byte, container Container) ([]byte, error)
	// Replace persists doc at the identity of an existing item. The stored
	// document keeps oldID regardless of what doc carries.
	Replace(oldID, partitionKey string, doc []byte, container Container) ([]byte, error)
	// Delete removes an item, ErrNotFound when absent.
	Delete(id, partitionKey string, container Container) error
}
