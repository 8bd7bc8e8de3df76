package repository

import (
	"context"

	"recipebox/internal/dto"
	"recipebox/internal/model"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecipeRepository is the data access contract for recipes. Child rows
// (ingredients, instructions, images) have their own repositories.
type RecipeRepository interface {
	Create(ctx context.Context, r *model.Recipe) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error)
	Update(ctx context.Context, r *model.Recipe) error
	Delete(ctx context.Context, id uuid.UUID) error
	// UpdateSnapshot writes only the per-serving nutrition columns of r.
	UpdateSnapshot(ctx context.Context, r *model.Recipe) error
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
	Search(ctx context.Context, filter dto.RecipeFilter) ([]model.Recipe, int64, error)
	ListIDsByFood(ctx context.Context, foodID uuid.UUID) ([]uuid.UUID, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

type recipeRepo struct{ db *gorm.DB }

func NewRecipeRepository(db *gorm.DB) RecipeRepository { return &recipeRepo{db: db} }

func (r *recipeRepo) Create(ctx context.Context, rec *model.Recipe) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *recipeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	var rec model.Recipe
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recipeRepo) Update(ctx context.Context, rec *model.Recipe) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *recipeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Recipe{}, "id = ?", id).Error
}

var snapshotColumns = []string{
	"calories_per_serving",
	"protein_per_serving_g",
	"carbs_per_serving_g",
	"fat_per_serving_g",
	"fiber_per_serving_g",
	"sugar_per_serving_g",
	"sodium_per_serving_mg",
	"nutrition_updated_at",
}

func (r *recipeRepo) UpdateSnapshot(ctx context.Context, rec *model.Recipe) error {
	return r.db.WithContext(ctx).Model(rec).Select(snapshotColumns).Updates(rec).Error
}

func (r *recipeRepo) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Recipe{}).
		Where("category_id = ?", categoryID).
		Count(&n).Error
	return n, err
}

// sortColumns whitelists the columns a caller may order by.
var sortColumns = map[string]string{
	"name":       "name",
	"created_at": "created_at",
	"updated_at": "updated_at",
	"calories":   "calories_per_serving",
	"servings":   "servings",
}

// searchConditions turns the filter into a WHERE clause. Private recipes are
// only visible to their owner.
func searchConditions(filter dto.RecipeFilter) sq.And {
	where := sq.And{}

	switch {
	case filter.Mine:
		where = append(where, sq.Eq{"created_by": filter.CallerID})
	case filter.CallerID != "":
		where = append(where, sq.Or{sq.Eq{"is_public": true}, sq.Eq{"created_by": filter.CallerID}})
	default:
		where = append(where, sq.Eq{"is_public": true})
	}

	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		where = append(where, sq.Or{sq.ILike{"name": like}, sq.ILike{"description": like}})
	}
	if filter.CategoryID != "" {
		where = append(where, sq.Eq{"category_id": filter.CategoryID})
	}
	if filter.Tag != "" {
		where = append(where, sq.Expr("? = ANY(tags)", filter.Tag))
	}
	if filter.DietType != "" {
		where = append(where, sq.Expr("? = ANY(diet_types)", filter.DietType))
	}
	if filter.ExcludeAllergen != "" {
		where = append(where, sq.Expr("NOT (? = ANY(COALESCE(allergens, '{}')))", filter.ExcludeAllergen))
	}
	if filter.MaxCalories != nil {
		where = append(where, sq.LtOrEq{"calories_per_serving": *filter.MaxCalories})
	}
	return where
}

func orderClause(filter dto.RecipeFilter) string {
	col, ok := sortColumns[filter.Sort]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if filter.Order == "asc" || (filter.Order == "" && col == "name") {
		dir = "ASC"
	}
	return col + " " + dir + ", id ASC"
}

// Search runs the filtered, paginated recipe query. SQL is built with
// squirrel using "?" placeholders, which gorm rebinds for the dialect.
func (r *recipeRepo) Search(ctx context.Context, filter dto.RecipeFilter) ([]model.Recipe, int64, error) {
	page, limit := dto.NormalizePage(filter.Page, filter.Limit)
	where := searchConditions(filter)

	countSQL, countArgs, err := sq.Select("COUNT(*)").From("recipes").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.db.WithContext(ctx).Raw(countSQL, countArgs...).Scan(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := uint64(page-1) * uint64(limit)
	if offset >= uint64(total) {
		return []model.Recipe{}, total, nil
	}

	listSQL, listArgs, err := sq.Select("*").From("recipes").
		Where(where).
		OrderBy(orderClause(filter)).
		Limit(uint64(limit)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, err
	}
	var recipes []model.Recipe
	err = r.db.WithContext(ctx).Raw(listSQL, listArgs...).Scan(&recipes).Error
	return recipes, total, err
}

func (r *recipeRepo) ListIDsByFood(ctx context.Context, foodID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.RecipeIngredient{}).
		Distinct("recipe_id").
		Where("food_id = ?", foodID).
		Pluck("recipe_id", &ids).Error
	return ids, err
}

func (r *recipeRepo) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Recipe{}).Order("created_at asc").Pluck("id", &ids).Error
	return ids, err
}

