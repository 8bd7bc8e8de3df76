package service_test

import (
	"context"
	"testing"
	"time"

	"recipebox/internal/dto"
	"recipebox/internal/model"
	"recipebox/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice = "user-alice"
	bob   = "user-bob"
)

type fixture struct {
	store      *memStore
	images     *stubImageStore
	nutrition  service.NutritionService
	categories service.CategoryService
	recipes    service.RecipeService
	foods      service.FoodService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := newMemStore()
	foodRepo := &stubFoodRepo{s}
	recipeRepo := &stubRecipeRepo{s}
	ingredientRepo := &stubIngredientRepo{s}
	images := &stubImageStore{}

	nutritionSvc := service.NewNutritionService(recipeRepo, ingredientRepo, foodRepo)
	categorySvc := service.NewCategoryService(&stubCategoryRepo{s}, recipeRepo, nil, time.Minute)
	return &fixture{
		store:      s,
		images:     images,
		nutrition:  nutritionSvc,
		categories: categorySvc,
		recipes: service.NewRecipeService(
			recipeRepo, ingredientRepo, &stubInstructionRepo{s}, &stubImageRepo{s}, foodRepo,
			categorySvc, nutritionSvc, images,
		),
		foods: service.NewFoodService(foodRepo, nutritionSvc, nil),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

// seedFood stores a food with a profile carrying calories and protein per 100 g.
// An empty calories string stores the food without a profile.
func (f *fixture) seedFood(t *testing.T, name, calories, protein string, servingG *float64) uuid.UUID {
	t.Helper()
	req := dto.CreateFoodRequest{Name: name, ServingSizeG: servingG}
	if calories != "" {
		req.Profile = &dto.NutrientProfileRequest{Calories: dec(calories), ProteinG: dec(protein)}
	}
	resp, err := f.foods.Create(context.Background(), req)
	require.NoError(t, err)
	return uuid.MustParse(resp.ID)
}

// breadRecipe creates the four-serving bread made of 500 g flour.
func (f *fixture) breadRecipe(t *testing.T, flour uuid.UUID) *dto.RecipeDetailResponse {
	t.Helper()
	resp, err := f.recipes.Create(context.Background(), alice, dto.CreateRecipeRequest{
		Name:     "Bread",
		Servings: 4,
		Ingredients: []dto.AddIngredientRequest{
			{FoodID: flour.String(), Quantity: dec("500"), Unit: "g"},
		},
		Instructions: []dto.AddInstructionRequest{
			{Description: "Mix"},
			{Description: "Bake"},
		},
	})
	require.NoError(t, err)
	return resp
}

func (f *fixture) storedRecipe(t *testing.T, id string) model.Recipe {
	t.Helper()
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	rec, ok := f.store.recipes[uuid.MustParse(id)]
	require.True(t, ok)
	return rec
}

func ptr[T any](v T) *T { return &v }
