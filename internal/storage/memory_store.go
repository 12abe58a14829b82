package storage

import (
	"sync"
)

type memoryDocument struct {
	partitionKey string
	data         []byte
}

// MemoryDocumentStore is an in-process DocumentStore. It backs tests and
// development runs that have no database available.
type MemoryDocumentStore struct {
	mu         sync.RWMutex
	containers map[Container]map[string]memoryDocument
}

// NewMemoryDocumentStore creates an empty in-memory document store with the
// standard containers registered.
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{
		containers: map[Container]map[string]memoryDocument{
			ContainerLocations: {},
			ContainerSensors:   {},
		},
	}
}

func (s *MemoryDocumentStore) items(container Container) (map[string]memoryDocument, error) {
	if _, err := container.Table(); err != nil {
		return nil, err
	}
	return s.containers[container], nil
}

func (s *MemoryDocumentStore) GetByIDAndPartitionKey(id, partitionKey string, container Container) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items, err := s.items(container)
	if err != nil {
		return nil, err
	}
	doc, ok := items[id]
	if !ok || doc.partitionKey != partitionKey {
		return nil, ErrNotFound
	}
	return doc.data, nil
}

func (s *MemoryDocumentStore) GetByID(id string, container Container) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items, err := s.items(container)
	if err != nil {
		return nil, err
	}
	doc, ok := items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return doc.data, nil
}

func (s *MemoryDocumentStore) QueryByPartitionKey(container Container, partitionKey string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items, err := s.items(container)
	if err != nil {
		return nil, err
	}
	docs := make([][]byte, 0)
	for _, doc := range items {
		if doc.partitionKey == partitionKey {
			docs = append(docs, doc.data)
		}
	}
	return docs, nil
}

func (s *MemoryDocumentStore) QueryAll(container Container) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items, err := s.items(container)
	if err != nil {
		return nil, err
	}
	docs := make([][]byte, 0, len(items))
	for _, doc := range items {
		docs = append(docs, doc.data)
	}
	return docs, nil
}

func (s *MemoryDocumentStore) Upsert(id, partitionKey string, doc []byte, container Container) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.items(container)
	if err != nil {
		return nil, err
	}
	items[id] = memoryDocument{partitionKey: partitionKey, data: doc}
	return doc, nil
}

func (s *MemoryDocumentStore) Replace(oldID, partitionKey string, doc []byte, container Container) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.items(container)
	if err != nil {
		return nil, err
	}
	existing, ok := items[oldID]
	if !ok || existing.partitionKey != partitionKey {
		return nil, ErrNotFound
	}
	doc, err = overrideDocumentID(doc, oldID)
	if err != nil {
		return nil, err
	}
	items[oldID] = memoryDocument{partitionKey: partitionKey, data: doc}
	return doc, nil
}

func (s *MemoryDocumentStore) Delete(id, partitionKey string, container Container) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.items(container)
	if err != nil {
		return err
	}
	doc, ok := items[id]
	if !ok || doc.partitionKey != partitionKey {
		return ErrNotFound
	}
	delete(items, id)
	return nil
}
