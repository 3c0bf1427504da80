package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/krushndayshmookh/krushn-calendar/models"
	"github.com/krushndayshmookh/krushn-calendar/repositories"
)

type CategoryInput struct {
	Name      string
	Color     string
	IsDefault bool
}

type CategoryService struct {
	categories repositories.CategoryRepository
}

func NewCategoryService(categories repositories.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

func (s *CategoryService) List(ctx context.Context, user *models.User) ([]models.Category, error) {
	categories, err := s.categories.ListByOwner(ctx, user.ID)
	if err != nil {
		return nil, storeErr("list categories", err)
	}
	return categories, nil
}

func (s *CategoryService) Create(ctx context.Context, user *models.User, input CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}

	color := strings.TrimSpace(input.Color)
	if color == "" {
		color = models.DefaultCategoryColor
	}

	owner := user.ID
	category := &models.Category{
		Name:      name,
		Color:     color,
		UserID:    &owner,
		IsDefault: input.IsDefault,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, storeErr("create category", err)
	}
	return category, nil
}

// Delete removes the caller's category. Metadata that references it keeps
// its dangling category id. Deleting a missing or foreign id succeeds.
func (s *CategoryService) Delete(ctx context.Context, user *models.User, rawID string) error {
	id, err := strconv.ParseUint(strings.TrimSpace(rawID), 10, 64)
	if err != nil {
		return invalid("id", "must be a category id")
	}

	if _, err := s.categories.DeleteOwned(ctx, user.ID, uint(id)); err != nil {
		return storeErr("delete category", err)
	}
	return nil
}
