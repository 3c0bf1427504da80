package repositories

import (
	"context"

	"github.com/krushndayshmookh/krushn-calendar/models"
	"gorm.io/gorm"
)

// AdoptionResult counts the ownerless rows assigned during one adoption.
// SkippedMetadata are ownerless rows left alone because the new owner
// already has a record for the same event id.
type AdoptionResult struct {
	Categories      int64
	Metadata        int64
	SkippedMetadata int64
}

type OwnershipRepository interface {
	AdoptOwnerless(ctx context.Context, userID uint) (AdoptionResult, error)
}

type ownershipRepository struct {
	db *gorm.DB
}

func NewOwnershipRepository(db *gorm.DB) OwnershipRepository {
	return &ownershipRepository{db: db}
}

// AdoptOwnerless assigns every ownerless Category and EventMetadata row to
// userID in one transaction. Running it again finds nothing left to adopt.
func (r *ownershipRepository) AdoptOwnerless(ctx context.Context, userID uint) (AdoptionResult, error) {
	var result AdoptionResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories := tx.Model(&models.Category{}).
			Where("user_id IS NULL").
			Update("user_id", userID)
		if categories.Error != nil {
			return categories.Error
		}
		result.Categories = categories.RowsAffected

		metadata := tx.Model(&models.EventMetadata{}).
			Where("user_id IS NULL").
			Where("google_event_id NOT IN (SELECT google_event_id FROM event_metadata WHERE user_id = ?)", userID).
			Update("user_id", userID)
		if metadata.Error != nil {
			return metadata.Error
		}
		result.Metadata = metadata.RowsAffected

		return tx.Model(&models.EventMetadata{}).
			Where("user_id IS NULL").
			Count(&result.SkippedMetadata).Error
	})
	if err != nil {
		return AdoptionResult{}, err
	}
	return result, nil
}
