package storage

import (
	"encoding/json"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// documentRow is the persisted form of a document: identity, co-location key
// and the JSON body itself.
type documentRow struct {
	ID           string `gorm:"primaryKey;size:64"`
	PartitionKey string `gorm:"index;size:64"`
	Data         []byte `gorm:"type:jsonb"`
}

// GormDocumentStore implements DocumentStore on PostgreSQL through GORM,
// one table per container.
type GormDocumentStore struct {
	db *gorm.DB
}

// NewGormDocumentStore creates a document store backed by the given GORM
// database connection.
func NewGormDocumentStore(db *gorm.DB) *GormDocumentStore {
	return &GormDocumentStore{db: db}
}

// Migrate creates the container tables.
func (s *GormDocumentStore) Migrate(containers ...Container) error {
	for _, c := range containers {
		tbl, err := c.Table()
		if err != nil {
			return err
		}
		if err := s.db.Table(tbl).AutoMigrate(&documentRow{}); err != nil {
			return errors.Wrapf(err, "migrating container %s", tbl)
		}
	}
	return nil
}

func (s *GormDocumentStore) GetByIDAndPartitionKey(id, partitionKey string, container Container) ([]byte, error) {
	tbl, err := container.Table()
	if err != nil {
		return nil, err
	}
	var row documentRow
	err = s.db.Table(tbl).Where("id = ? AND partition_key = ?", id, partitionKey).Take(&row).Error
	if err != nil {
		return nil, mapStoreError(err, "point read")
	}
	return row.Data, nil
}

func (s *GormDocumentStore) GetByID(id string, container Container) ([]byte, error) {
	tbl, err := container.Table()
	if err != nil {
		return nil, err
	}
	var row documentRow
	err = s.db.Table(tbl).Where("id = ?", id).Take(&row).Error
	if err != nil {
		return nil, mapStoreError(err, "unpartitioned read")
	}
	return row.Data, nil
}

func (s *GormDocumentStore) QueryByPartitionKey(container Container, partitionKey string) ([][]byte, error) {
	tbl, err := container.Table()
	if err != nil {
		return nil, err
	}
	var rows []documentRow
	if err := s.db.Table(tbl).Where("partition_key = ?", partitionKey).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "partition query failed")
	}
	return rowData(rows), nil
}

func (s *GormDocumentStore) QueryAll(container Container) ([][]byte, error) {
	tbl, err := container.Table()
	if err != nil {
		return nil, err
	}
	var rows []documentRow
	if err := s.db.Table(tbl).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "cross-partition query failed")
	}
	return rowData(rows), nil
}

func (s *GormDocumentStore) Upsert(id, partitionKey string, doc []byte, container Container) ([]byte, error) {
	tbl, err := container.Table()
	if err != nil {
		return nil, err
	}
	row := documentRow{ID: id, PartitionKey: partitionKey, Data: doc}
	err = s.db.Table(tbl).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"partition_key", "data"}),
	}).Create(&row).Error
	if err != nil {
		return nil, errors.Wrap(err, "upsert failed")
	}
	return doc, nil
}

func (s *GormDocumentStore) Replace(oldID, partitionKey string, doc []byte, container Container) ([]byte, error) {
	tbl, err := container.Table()
	if err != nil {
		return nil, err
	}
	doc, err = overrideDocumentID(doc, oldID)
	if err != nil {
		return nil, err
	}
	res := s.db.Table(tbl).
		Where("id = ? AND partition_key = ?", oldID, partitionKey).
		Update("data", doc)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "replace failed")
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return doc, nil
}

func (s *GormDocumentStore) Delete(id, partitionKey string, container Container) error {
	tbl, err := container.Table()
	if err != nil {
		return err
	}
	res := s.db.Table(tbl).Where("id = ? AND partition_key = ?", id, partitionKey).Delete(&documentRow{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete failed")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func rowData(rows []documentRow) [][]byte {
	docs := make([][]byte, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, row.Data)
	}
	return docs
}

func mapStoreError(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return errors.Wrapf(err, "%s failed", op)
}

// overrideDocumentID forces the stored document's id to match the identity
// being replaced, whatever the replacement carries.
func overrideDocumentID(doc []byte, id string) ([]byte, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(doc, &fields); err != nil {
		return nil, errors.Wrap(err, "replace document is not valid JSON")
	}
	fields["id"] = id
	out, err := json.Marshal(fields)
	if err != nil {
		return nil, errors.Wrap(err, "re-encoding replace document")
	}
	return out, nil
}
