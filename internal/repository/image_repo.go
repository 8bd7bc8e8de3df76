package repository

import (
	"context"

	"recipebox/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ImageRepository interface {
	Create(ctx context.Context, img *model.RecipeImage) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RecipeImage, error)
	ListByRecipe(ctx context.Context, recipeID uuid.UUID) ([]model.RecipeImage, error)
	// SetPrimary makes imageID the only primary image of the recipe.
	SetPrimary(ctx context.Context, recipeID, imageID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByRecipe(ctx context.Context, recipeID uuid.UUID) error
}

type imageRepo struct{ db *gorm.DB }

func NewImageRepository(db *gorm.DB) ImageRepository { return &imageRepo{db: db} }

func (r *imageRepo) Create(ctx context.Context, img *model.RecipeImage) error {
	return r.db.WithContext(ctx).Create(img).Error
}

func (r *imageRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.RecipeImage, error) {
	var img model.RecipeImage
	err := r.db.WithContext(ctx).First(&img, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *imageRepo) ListByRecipe(ctx context.Context, recipeID uuid.UUID) ([]model.RecipeImage, error) {
	var list []model.RecipeImage
	err := r.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Order("is_primary desc, sort_order asc, created_at asc").
		Find(&list).Error
	return list, err
}

func (r *imageRepo) SetPrimary(ctx context.Context, recipeID, imageID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.RecipeImage{}).
			Where("recipe_id = ? AND is_primary = true", recipeID).
			Update("is_primary", false).Error; err != nil {
			return err
		}
		return tx.Model(&model.RecipeImage{}).
			Where("id = ? AND recipe_id = ?", imageID, recipeID).
			Update("is_primary", true).Error
	})
}

func (r *imageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.RecipeImage{}, "id = ?", id).Error
}

func (r *imageRepo) DeleteByRecipe(ctx context.Context, recipeID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("recipe_id = ?", recipeID).Delete(&model.RecipeImage{}).Error
}
