package service_test

import (
	"context"
	"errors"
	"testing"

	"recipebox/internal/dto"
	"recipebox/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoodCreate_RejectsNegativeProfile(t *testing.T) {
	f := newFixture(t)
	_, err := f.foods.Create(context.Background(), dto.CreateFoodRequest{
		Name:    "Broken",
		Profile: &dto.NutrientProfileRequest{Calories: dec("-1")},
	})
	assert.ErrorIs(t, err, service.ErrValidation)
	assert.Empty(t, f.store.foods)

	_, err = f.foods.Create(context.Background(), dto.CreateFoodRequest{
		Name:    "Unsure",
		Profile: &dto.NutrientProfileRequest{Calories: dec("10"), Confidence: ptr(dec("1.5"))},
	})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestFoodUpsertProfile_RefreshesRecipesInline(t *testing.T) {
	f := newFixture(t)
	flour := f.seedFood(t, "Flour", "364", "10", nil)
	bread := f.breadRecipe(t, flour)

	resp, err := f.foods.UpsertProfile(context.Background(), flour, dto.NutrientProfileRequest{
		Calories: dec("400"),
		ProteinG: dec("10"),
		Extra:    map[string]interface{}{"potassium_mg": 107},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Profile)
	assertDec(t, "1", resp.Profile.Confidence)
	assert.Len(t, f.store.profiles, 1, "profile stays one-to-one")

	assertDec(t, "500", f.storedRecipe(t, bread.ID).CaloriesPerServing)
	got, err := f.recipes.Get(context.Background(), uuid.MustParse(bread.ID), alice)
	require.NoError(t, err)
	assertDec(t, "2000", got.Ingredients[0].Calculated.Calories)
}

func TestFoodServingChange_EnqueuesRefresh(t *testing.T) {
	f := newFixture(t)
	queue := &stubQueue{}
	foods := service.NewFoodService(&stubFoodRepo{f.store}, f.nutrition, queue)

	egg := f.seedFood(t, "Egg", "143", "12.6", ptr(50.0))
	omelette, err := f.recipes.Create(context.Background(), alice, dto.CreateRecipeRequest{
		Name:        "Omelette",
		Servings:    1,
		Ingredients: []dto.AddIngredientRequest{{FoodID: egg.String(), Quantity: dec("2"), Unit: "whole"}},
	})
	require.NoError(t, err)
	assertDec(t, "143", omelette.PerServing.Calories)

	_, err = foods.Update(context.Background(), egg, dto.UpdateFoodRequest{ServingSizeG: ptr(60.0)})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{egg}, queue.queued)
	assertDec(t, "143", f.storedRecipe(t, omelette.ID).CaloriesPerServing, "refresh is left to the worker")

	n, err := f.nutrition.RefreshFood(context.Background(), egg)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assertDec(t, "171.6", f.storedRecipe(t, omelette.ID).CaloriesPerServing)
}

func TestFoodServingChange_FallsBackInlineWhenQueueFails(t *testing.T) {
	f := newFixture(t)
	foods := service.NewFoodService(&stubFoodRepo{f.store}, f.nutrition, &stubQueue{err: errors.New("redis down")})

	egg := f.seedFood(t, "Egg", "143", "12.6", nil)
	omelette, err := f.recipes.Create(context.Background(), alice, dto.CreateRecipeRequest{
		Name:        "Omelette",
		Servings:    1,
		Ingredients: []dto.AddIngredientRequest{{FoodID: egg.String(), Quantity: dec("1"), Unit: "piece"}},
	})
	require.NoError(t, err)
	assertDec(t, "143", omelette.PerServing.Calories, "100 g default piece")

	_, err = foods.Update(context.Background(), egg, dto.UpdateFoodRequest{ServingSizeG: ptr(50.0)})
	require.NoError(t, err)
	assertDec(t, "71.5", f.storedRecipe(t, omelette.ID).CaloriesPerServing)
}

func TestFoodDelete_InUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	flour := f.seedFood(t, "Flour", "364", "10", nil)
	salt := f.seedFood(t, "Salt", "0", "0", nil)
	f.breadRecipe(t, flour)

	assert.ErrorIs(t, f.foods.Delete(ctx, flour), service.ErrInUse)
	require.NoError(t, f.foods.Delete(ctx, salt))
	_, err := f.foods.Get(ctx, salt)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestFoodList(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"Apple", "Banana", "Cherry"} {
		f.seedFood(t, name, "50", "1", nil)
	}
	list, err := f.foods.List(context.Background(), dto.FoodFilter{Query: "an", Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "Banana", list.Data[0].Name)
	assert.Equal(t, int64(1), list.Pagination.TotalItems)
}

func TestRecalculateAll(t *testing.T) {
	f := newFixture(t)
	flour := f.seedFood(t, "Flour", "364", "10", nil)
	bread := f.breadRecipe(t, flour)

	f.store.mu.Lock()
	rec := f.store.recipes[uuid.MustParse(bread.ID)]
	rec.CaloriesPerServing = dec("0")
	f.store.recipes[rec.ID] = rec
	f.store.mu.Unlock()

	n, err := f.nutrition.RecalculateAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assertDec(t, "455", f.storedRecipe(t, bread.ID).CaloriesPerServing)
}

func TestFoodGetByBarcode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.foods.Create(ctx, dto.CreateFoodRequest{
		Name:    "Oat milk",
		Barcode: ptr("7790001"),
		Profile: &dto.NutrientProfileRequest{Calories: dec("46")},
	})
	require.NoError(t, err)

	got, err := f.foods.GetByBarcode(ctx, " 7790001 ")
	require.NoError(t, err)
	assert.Equal(t, "Oat milk", got.Name)
	require.NotNil(t, got.Profile)
	assertDec(t, "46", got.Profile.Calories)

	_, err = f.foods.GetByBarcode(ctx, "0000")
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = f.foods.GetByBarcode(ctx, "")
	assert.ErrorIs(t, err, service.ErrValidation)
}
