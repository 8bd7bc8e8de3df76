package repository

import (
	"context"

	"recipebox/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoryRepository is the data access contract for the recipe category tree.
type CategoryRepository interface {
	Create(ctx context.Context, c *model.RecipeCategory) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RecipeCategory, error)
	FindBySlug(ctx context.Context, slug string) (*model.RecipeCategory, error)
	FindChildren(ctx context.Context, parentID uuid.UUID) ([]model.RecipeCategory, error)
	CountChildren(ctx context.Context, parentID uuid.UUID) (int64, error)
	// ListAll returns every category ordered by path, so parents come before
	// their children.
	ListAll(ctx context.Context) ([]model.RecipeCategory, error)
	Update(ctx context.Context, c *model.RecipeCategory) error
	UpdatePathLevel(ctx context.Context, id uuid.UUID, path string, level int) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateRecipeCount(ctx context.Context, id uuid.UUID, count int64) error
}

type categoryRepo struct{ db *gorm.DB }

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) Create(ctx context.Context, c *model.RecipeCategory) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *categoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.RecipeCategory, error) {
	var c model.RecipeCategory
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepo) FindBySlug(ctx context.Context, slug string) (*model.RecipeCategory, error) {
	var c model.RecipeCategory
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepo) FindChildren(ctx context.Context, parentID uuid.UUID) ([]model.RecipeCategory, error) {
	var list []model.RecipeCategory
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("sort_order asc, name asc").
		Find(&list).Error
	return list, err
}

func (r *categoryRepo) CountChildren(ctx context.Context, parentID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.RecipeCategory{}).
		Where("parent_id = ?", parentID).
		Count(&n).Error
	return n, err
}

func (r *categoryRepo) ListAll(ctx context.Context) ([]model.RecipeCategory, error) {
	var list []model.RecipeCategory
	err := r.db.WithContext(ctx).Order("path asc").Find(&list).Error
	return list, err
}

func (r *categoryRepo) Update(ctx context.Context, c *model.RecipeCategory) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *categoryRepo) UpdatePathLevel(ctx context.Context, id uuid.UUID, path string, level int) error {
	return r.db.WithContext(ctx).Model(&model.RecipeCategory{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"path": path, "level": level}).Error
}

func (r *categoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.RecipeCategory{}, "id = ?", id).Error
}

func (r *categoryRepo) UpdateRecipeCount(ctx context.Context, id uuid.UUID, count int64) error {
	return r.db.WithContext(ctx).Model(&model.RecipeCategory{}).
		Where("id = ?", id).
		Update("recipe_count", count).Error
}
