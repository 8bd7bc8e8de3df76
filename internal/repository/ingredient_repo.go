package repository

import (
	"context"

	"recipebox/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IngredientRepository interface {
	Create(ctx context.Context, i *model.RecipeIngredient) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RecipeIngredient, error)
	// ListByRecipe returns the lines with Food and Food.Profile preloaded.
	ListByRecipe(ctx context.Context, recipeID uuid.UUID) ([]model.RecipeIngredient, error)
	Update(ctx context.Context, i *model.RecipeIngredient) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByRecipe(ctx context.Context, recipeID uuid.UUID) error
	ListByFood(ctx context.Context, foodID uuid.UUID) ([]model.RecipeIngredient, error)
}

type ingredientRepo struct{ db *gorm.DB }

func NewIngredientRepository(db *gorm.DB) IngredientRepository { return &ingredientRepo{db: db} }

func (r *ingredientRepo) Create(ctx context.Context, i *model.RecipeIngredient) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(i).Error
}

func (r *ingredientRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.RecipeIngredient, error) {
	var i model.RecipeIngredient
	err := r.db.WithContext(ctx).Preload("Food.Profile").First(&i, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *ingredientRepo) ListByRecipe(ctx context.Context, recipeID uuid.UUID) ([]model.RecipeIngredient, error) {
	var list []model.RecipeIngredient
	err := r.db.WithContext(ctx).
		Preload("Food.Profile").
		Where("recipe_id = ?", recipeID).
		Order("sort_order asc, created_at asc").
		Find(&list).Error
	return list, err
}

func (r *ingredientRepo) Update(ctx context.Context, i *model.RecipeIngredient) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(i).Error
}

func (r *ingredientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.RecipeIngredient{}, "id = ?", id).Error
}

func (r *ingredientRepo) DeleteByRecipe(ctx context.Context, recipeID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("recipe_id = ?", recipeID).Delete(&model.RecipeIngredient{}).Error
}

func (r *ingredientRepo) ListByFood(ctx context.Context, foodID uuid.UUID) ([]model.RecipeIngredient, error) {
	var list []model.RecipeIngredient
	err := r.db.WithContext(ctx).
		Preload("Food.Profile").
		Where("food_id = ?", foodID).
		Find(&list).Error
	return list, err
}
