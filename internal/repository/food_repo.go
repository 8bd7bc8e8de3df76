package repository

import (
	"context"

	"recipebox/internal/dto"
	"recipebox/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FoodRepository is the data access contract for the food catalog and the
// per-100g nutrient profiles attached to it.
type FoodRepository interface {
	Create(ctx context.Context, f *model.Food) error
	// FindByID loads the food with its profile (Profile is nil when absent).
	FindByID(ctx context.Context, id uuid.UUID) (*model.Food, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Food, error)
	FindProfile(ctx context.Context, foodID uuid.UUID) (*model.NutrientProfile, error)
	// UpsertProfile inserts or replaces the single profile of p.FoodID.
	UpsertProfile(ctx context.Context, p *model.NutrientProfile) error
	List(ctx context.Context, filter dto.FoodFilter) ([]model.Food, int64, error)
	Update(ctx context.Context, f *model.Food) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountIngredientRefs(ctx context.Context, foodID uuid.UUID) (int64, error)
}

type foodRepo struct{ db *gorm.DB }

func NewFoodRepository(db *gorm.DB) FoodRepository { return &foodRepo{db: db} }

func (r *foodRepo) Create(ctx context.Context, f *model.Food) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(f).Error
}

func (r *foodRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Food, error) {
	var f model.Food
	err := r.db.WithContext(ctx).Preload("Profile").First(&f, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *foodRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Food, error) {
	var f model.Food
	err := r.db.WithContext(ctx).Preload("Profile").Where("barcode = ?", barcode).First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *foodRepo) FindProfile(ctx context.Context, foodID uuid.UUID) (*model.NutrientProfile, error) {
	var p model.NutrientProfile
	err := r.db.WithContext(ctx).Where("food_id = ?", foodID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *foodRepo) UpsertProfile(ctx context.Context, p *model.NutrientProfile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "food_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"calories", "protein_g", "carbohydrate_g", "sugar_g", "fat_g",
			"saturated_fat_g", "fiber_g", "sodium_mg", "calcium_mg", "iron_mg",
			"vitamin_c_mg", "vitamin_d_mcg", "confidence", "source", "extra",
			"updated_at",
		}),
	}).Create(p).Error
}

func (r *foodRepo) List(ctx context.Context, filter dto.FoodFilter) ([]model.Food, int64, error) {
	var foods []model.Food
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Food{})
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		q = q.Where("name ILIKE ? OR brand ILIKE ?", like, like)
	}
	if filter.VerifiedOnly {
		q = q.Where("is_verified = true")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Profile").Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&foods).Error
	return foods, total, err
}

func (r *foodRepo) Update(ctx context.Context, f *model.Food) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(f).Error
}

// Delete removes the food and its profile.
func (r *foodRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("food_id = ?", id).Delete(&model.NutrientProfile{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Food{}, "id = ?", id).Error
	})
}

func (r *foodRepo) CountIngredientRefs(ctx context.Context, foodID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.RecipeIngredient{}).
		Where("food_id = ?", foodID).
		Count(&n).Error
	return n, err
}
