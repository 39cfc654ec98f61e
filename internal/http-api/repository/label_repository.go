package repository

import (
	"context"
	"fmt"

	"quantumflux/internal/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LabelRepo resolves and garbage-collects the name-keyed label tables
// (categories and tags).
type LabelRepo struct {
	db *gorm.DB
}

func NewLabelRepo(db *gorm.DB) *LabelRepo {
	return &LabelRepo{db: db}
}

// WithTx returns a copy of the repo bound to tx.
func (r *LabelRepo) WithTx(tx *gorm.DB) *LabelRepo {
	return &LabelRepo{db: tx}
}

// ResolveCategory returns the id of the category called name, inserting it first if absent.
func (r *LabelRepo) ResolveCategory(ctx context.Context, name string) (int64, error) {
	return r.resolve(ctx, "categories", &models.Category{Name: name}, name)
}

// ResolveTag returns the id of the tag called name, inserting it first if absent.
func (r *LabelRepo) ResolveTag(ctx context.Context, name string) (int64, error) {
	return r.resolve(ctx, "tags", &models.Tag{Name: name}, name)
}

// resolve is insert-or-ignore followed by a re-select, so callers racing on
// the same name all end up with the single surviving row.
func (r *LabelRepo) resolve(ctx context.Context, table string, row interface{}, name string) (int64, error) {
	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(row).Error
	if err != nil {
		return 0, fmt.Errorf("insert %s %q: %w", table, name, err)
	}

	var ids []int64
	if err := db.Table(table).Where("name = ?", name).Limit(1).Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("select %s %q: %w", table, name, err)
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("resolve %s %q: %w", table, name, gorm.ErrRecordNotFound)
	}
	return ids[0], nil
}

// DeleteCategoryIfUnused removes the category when no topic references it.
// The reference check and the delete are a single statement.
func (r *LabelRepo) DeleteCategoryIfUnused(ctx context.Context, categoryID int64) (bool, error) {
	res := r.db.WithContext(ctx).Exec(
		`DELETE FROM categories WHERE id = ? AND NOT EXISTS (SELECT 1 FROM topics WHERE category_id = ?)`,
		categoryID, categoryID,
	)
	if res.Error != nil {
		return false, fmt.Errorf("delete unused category %d: %w", categoryID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// DeleteTagIfUnused removes the tag when no topic_tags row links it.
func (r *LabelRepo) DeleteTagIfUnused(ctx context.Context, tagID int64) (bool, error) {
	res := r.db.WithContext(ctx).Exec(
		`DELETE FROM tags WHERE id = ? AND NOT EXISTS (SELECT 1 FROM topic_tags WHERE tag_id = ?)`,
		tagID, tagID,
	)
	if res.Error != nil {
		return false, fmt.Errorf("delete unused tag %d: %w", tagID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *LabelRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	list := []models.Category{}
	if err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("get categories: %w", err)
	}
	return list, nil
}

func (r *LabelRepo) ListTags(ctx context.Context) ([]models.Tag, error) {
	list := []models.Tag{}
	if err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("get tags: %w", err)
	}
	return list, nil
}
