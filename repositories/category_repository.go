package repositories

import (
	"context"

	"github.com/krushndayshmookh/krushn-calendar/models"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	ListByOwner(ctx context.Context, userID uint) ([]models.Category, error)
	FindOwned(ctx context.Context, userID, id uint) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	DeleteOwned(ctx context.Context, userID, id uint) (bool, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) ListByOwner(ctx context.Context, userID uint) ([]models.Category, error) {
	categories := []models.Category{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) FindOwned(ctx context.Context, userID, id uint) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&category).Error
	if err != nil {
		return nil, wrapLookup("category", err)
	}
	return &category, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// DeleteOwned removes the category only. Metadata referencing it keeps the id.
func (r *categoryRepository) DeleteOwned(ctx context.Context, userID, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Category{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
