package repository

import (
	"context"

	"recipebox/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InstructionRepository interface {
	Create(ctx context.Context, s *model.RecipeInstruction) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RecipeInstruction, error)
	ListByRecipe(ctx context.Context, recipeID uuid.UUID) ([]model.RecipeInstruction, error)
	Update(ctx context.Context, s *model.RecipeInstruction) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByRecipe(ctx context.Context, recipeID uuid.UUID) error
	// MaxStep returns the highest step number of the recipe, 0 when it has none.
	MaxStep(ctx context.Context, recipeID uuid.UUID) (int, error)
}

type instructionRepo struct{ db *gorm.DB }

func NewInstructionRepository(db *gorm.DB) InstructionRepository { return &instructionRepo{db: db} }

func (r *instructionRepo) Create(ctx context.Context, s *model.RecipeInstruction) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *instructionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.RecipeInstruction, error) {
	var s model.RecipeInstruction
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *instructionRepo) ListByRecipe(ctx context.Context, recipeID uuid.UUID) ([]model.RecipeInstruction, error) {
	var list []model.RecipeInstruction
	err := r.db.WithContext(ctx).Where("recipe_id = ?", recipeID).Order("step_number asc").Find(&list).Error
	return list, err
}

func (r *instructionRepo) Update(ctx context.Context, s *model.RecipeInstruction) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *instructionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.RecipeInstruction{}, "id = ?", id).Error
}

func (r *instructionRepo) DeleteByRecipe(ctx context.Context, recipeID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("recipe_id = ?", recipeID).Delete(&model.RecipeInstruction{}).Error
}

func (r *instructionRepo) MaxStep(ctx context.Context, recipeID uuid.UUID) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&model.RecipeInstruction{}).
		Select("COALESCE(MAX(step_number), 0)").
		Where("recipe_id = ?", recipeID).
		Scan(&max).Error
	return max, err
}
