package repositories

import (
	"context"

	"github.com/krushndayshmookh/krushn-calendar/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MetadataFields is the mutable part of an EventMetadata record.
type MetadataFields struct {
	Tags         []string
	Notes        string
	CategoryID   *uint
	CustomStatus *string
}

type MetadataRepository interface {
	FindByEventIDs(ctx context.Context, userID uint, eventIDs []string) ([]models.EventMetadata, error)
	ListByOwner(ctx context.Context, userID uint) ([]models.EventMetadata, error)
	Create(ctx context.Context, userID uint, eventID string, fields MetadataFields) (*models.EventMetadata, error)
	Upsert(ctx context.Context, userID uint, eventID string, fields MetadataFields) (*models.EventMetadata, error)
	DeleteByEventID(ctx context.Context, userID uint, eventID string) error
}

type metadataRepository struct {
	db *gorm.DB
}

func NewMetadataRepository(db *gorm.DB) MetadataRepository {
	return &metadataRepository{db: db}
}

func (r *metadataRepository) FindByEventIDs(ctx context.Context, userID uint, eventIDs []string) ([]models.EventMetadata, error) {
	records := []models.EventMetadata{}
	if len(eventIDs) == 0 {
		return records, nil
	}

	err := r.db.WithContext(ctx).
		Preload("Category", "user_id = ?", userID).
		Where("user_id = ? AND google_event_id IN ?", userID, eventIDs).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *metadataRepository) ListByOwner(ctx context.Context, userID uint) ([]models.EventMetadata, error) {
	records := []models.EventMetadata{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *metadataRepository) Create(ctx context.Context, userID uint, eventID string, fields MetadataFields) (*models.EventMetadata, error) {
	record := newRecord(userID, eventID, fields)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.find(ctx, userID, eventID)
}

// Upsert writes fields onto the caller's record for eventID, creating it if
// needed. A single INSERT ... ON CONFLICT statement keeps concurrent upserts
// on the same id from producing two rows. A nil CategoryID clears the
// reference; a nil CustomStatus keeps the stored one.
func (r *metadataRepository) Upsert(ctx context.Context, userID uint, eventID string, fields MetadataFields) (*models.EventMetadata, error) {
	record := newRecord(userID, eventID, fields)
	columns := []string{"tags", "notes", "category_id", "updated_at"}
	if fields.CustomStatus != nil {
		columns = append(columns, "custom_status")
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "google_event_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&record).Error
	if err != nil {
		return nil, err
	}
	return r.find(ctx, userID, eventID)
}

func (r *metadataRepository) DeleteByEventID(ctx context.Context, userID uint, eventID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND google_event_id = ?", userID, eventID).
		Delete(&models.EventMetadata{}).Error
}

func (r *metadataRepository) find(ctx context.Context, userID uint, eventID string) (*models.EventMetadata, error) {
	var record models.EventMetadata
	err := r.db.WithContext(ctx).
		Preload("Category", "user_id = ?", userID).
		Where("user_id = ? AND google_event_id = ?", userID, eventID).
		First(&record).Error
	if err != nil {
		return nil, wrapLookup("event metadata", err)
	}
	return &record, nil
}

func newRecord(userID uint, eventID string, fields MetadataFields) models.EventMetadata {
	tags := fields.Tags
	if tags == nil {
		tags = []string{}
	}
	status := ""
	if fields.CustomStatus != nil {
		status = *fields.CustomStatus
	}
	owner := userID
	return models.EventMetadata{
		GoogleEventID: eventID,
		UserID:        &owner,
		Tags:          tags,
		Notes:         fields.Notes,
		CategoryID:    fields.CategoryID,
		CustomStatus:  status,
	}
}
