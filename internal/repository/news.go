// Package repository implements the data access layer for news items.
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"mulita-backend/internal/database"
	"mulita-backend/internal/model"
)

// NewsRepository performs the row operations on the "noticia" table. A row
// that does not exist is a normal outcome and is reported as a nil item,
// never as an error.
type NewsRepository struct {
	DB *database.DBinstanceStruct
}

// NewNewsRepository creates a NewsRepository over the given database handle.
func NewNewsRepository(db *database.DBinstanceStruct) *NewsRepository {
	return &NewsRepository{DB: db}
}

// ListAll returns every news item, newest creation timestamp first. An
// empty table yields an empty slice.
func (r *NewsRepository) ListAll(ctx context.Context) ([]model.News, error) {
	items := []model.News{}
	if err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list news: %w", err)
	}
	return items, nil
}

// GetByID returns the news item with the given id, or nil when absent.
func (r *NewsRepository) GetByID(ctx context.Context, id string) (*model.News, error) {
	var item model.News
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to retrieve news %s: %w", id, err)
	}
	return &item, nil
}

// Insert stores a new news item and fills in the generated id and creation
// timestamp.
func (r *NewsRepository) Insert(ctx context.Context, item *model.News) error {
	if err := r.DB.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to insert news: %w", err)
	}
	return nil
}

// Update applies only the fields present in the partial map and returns the
// updated row, or nil when the id does not exist. Fields absent from the
// map are left unchanged.
func (r *NewsRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (*model.News, error) {
	if len(fields) > 0 {
		res := r.DB.WithContext(ctx).Model(&model.News{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to update news %s: %w", id, res.Error)
		}
	}
	return r.GetByID(ctx, id)
}

// DeleteByID deletes the row if present and returns it; a missing row is
// not an error and yields nil.
func (r *NewsRepository) DeleteByID(ctx context.Context, id string) (*model.News, error) {
	item, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	if err := r.DB.WithContext(ctx).Delete(&model.News{}, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to delete news %s: %w", id, err)
	}
	return item, nil
}
