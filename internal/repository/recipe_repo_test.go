package repository

import (
	"context"
	"errors"
	"math"
	"testing"

	"recipebox/internal/dto"

	"github.com/DATA-DOG/go-sqlmock"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func whereSQL(t *testing.T, f dto.RecipeFilter) (string, []interface{}) {
	t.Helper()
	s, args, err := sq.Select("*").From("recipes").Where(searchConditions(f)).ToSql()
	require.NoError(t, err)
	return s, args
}

func TestSearchConditions_Visibility(t *testing.T) {
	s, args := whereSQL(t, dto.RecipeFilter{})
	assert.Contains(t, s, "is_public = ?")
	assert.NotContains(t, s, "created_by")
	assert.Equal(t, []interface{}{true}, args)

	s, args = whereSQL(t, dto.RecipeFilter{CallerID: "alice"})
	assert.Contains(t, s, "is_public = ? OR created_by = ?")
	assert.Equal(t, []interface{}{true, "alice"}, args)

	s, args = whereSQL(t, dto.RecipeFilter{CallerID: "alice", Mine: true})
	assert.Contains(t, s, "created_by = ?")
	assert.NotContains(t, s, "is_public")
	assert.Equal(t, []interface{}{"alice"}, args)
}

func TestSearchConditions_AllFilters(t *testing.T) {
	maxCal := 500
	catID := uuid.New().String()
	s, args := whereSQL(t, dto.RecipeFilter{
		CallerID:        "alice",
		Query:           "bread",
		CategoryID:      catID,
		Tag:             "baking",
		DietType:        "vegan",
		ExcludeAllergen: "nuts",
		MaxCalories:     &maxCal,
	})

	assert.Contains(t, s, "name ILIKE ? OR description ILIKE ?")
	assert.Contains(t, s, "category_id = ?")
	assert.Contains(t, s, "? = ANY(tags)")
	assert.Contains(t, s, "? = ANY(diet_types)")
	assert.Contains(t, s, "NOT (? = ANY(COALESCE(allergens, '{}')))")
	assert.Contains(t, s, "calories_per_serving <= ?")
	assert.Equal(t, []interface{}{
		true, "alice",
		"%bread%", "%bread%",
		catID,
		"baking",
		"vegan",
		"nuts",
		500,
	}, args)
}

func TestOrderClause(t *testing.T) {
	tests := []struct {
		name   string
		filter dto.RecipeFilter
		want   string
	}{
		{"default newest first", dto.RecipeFilter{}, "created_at DESC, id ASC"},
		{"name defaults ascending", dto.RecipeFilter{Sort: "name"}, "name ASC, id ASC"},
		{"name descending", dto.RecipeFilter{Sort: "name", Order: "desc"}, "name DESC, id ASC"},
		{"calories ascending", dto.RecipeFilter{Sort: "calories", Order: "asc"}, "calories_per_serving ASC, id ASC"},
		{"unknown column falls back", dto.RecipeFilter{Sort: "id; DROP TABLE recipes"}, "created_at DESC, id ASC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, orderClause(tt.filter))
		})
	}
}

func TestRecipeSearch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRecipeRepository(db)
	id := uuid.New()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM recipes WHERE .*is_public = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(`SELECT \* FROM recipes WHERE .*is_public = \$1.* ORDER BY name ASC, id ASC LIMIT 10 OFFSET 10`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "servings"}).AddRow(id.String(), "Bread", 4))

	recipes, total, err := repo.Search(context.Background(), dto.RecipeFilter{Sort: "name", Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(11), total)
	require.Len(t, recipes, 1)
	assert.Equal(t, id, recipes[0].ID)
	assert.Equal(t, "Bread", recipes[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecipeSearch_CountError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRecipeRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM recipes`).WillReturnError(errors.New("connection reset"))

	_, _, err := repo.Search(context.Background(), dto.RecipeFilter{Page: 1, Limit: 20})
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecipeSearch_PageBeyondTotalSkipsListQuery(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRecipeRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM recipes`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	recipes, total, err := repo.Search(context.Background(), dto.RecipeFilter{Page: math.MaxInt, Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Empty(t, recipes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecipeCountByCategory(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRecipeRepository(db)
	catID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "recipes" WHERE category_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountByCategory(context.Background(), catID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryUpdateRecipeCount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)
	id := uuid.New()

	mock.ExpectExec(`UPDATE "recipe_categories" SET "recipe_count"=\$1.* WHERE id = \$\d`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateRecipeCount(context.Background(), id, 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFoodFindByBarcode_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFoodRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "foods" WHERE barcode = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByBarcode(context.Background(), "0000000000000")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
