package service

import (
	"context"
	"fmt"
	"time"

	"recipebox/internal/dto"
	"recipebox/internal/model"
	"recipebox/internal/nutrition"
	"recipebox/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// storagePlaces is the scale of the decimal(12,4) nutrient columns.
const storagePlaces = 4

// NutritionService owns the derived nutrition state: the per-ingredient
// contributions and the per-serving snapshot cached on each recipe.
type NutritionService interface {
	// Recalculate folds the recipe's ingredient contributions into a new
	// per-serving snapshot, persists it and returns it. Idempotent.
	Recalculate(ctx context.Context, recipeID uuid.UUID) (nutrition.Snapshot, error)
	// RefreshIngredient recomputes and persists one ingredient's contribution
	// from the current food and profile.
	RefreshIngredient(ctx context.Context, ing *model.RecipeIngredient) error
	// RefreshFood refreshes every ingredient that references foodID and then
	// recalculates each affected recipe. Returns the number of recipes touched.
	RefreshFood(ctx context.Context, foodID uuid.UUID) (int, error)
	// RecalculateAll refreshes and recalculates every recipe.
	RecalculateAll(ctx context.Context) (int, error)
}

type nutritionService struct {
	recipes     repository.RecipeRepository
	ingredients repository.IngredientRepository
	foods       repository.FoodRepository
}

func NewNutritionService(
	recipes repository.RecipeRepository,
	ingredients repository.IngredientRepository,
	foods repository.FoodRepository,
) NutritionService {
	return &nutritionService{recipes: recipes, ingredients: ingredients, foods: foods}
}

func (s *nutritionService) Recalculate(ctx context.Context, recipeID uuid.UUID) (nutrition.Snapshot, error) {
	rec, err := s.recipes.FindByID(ctx, recipeID)
	if err != nil {
		return nutrition.Snapshot{}, notFound(err, "recipe")
	}
	lines, err := s.ingredients.ListByRecipe(ctx, recipeID)
	if err != nil {
		return nutrition.Snapshot{}, err
	}

	contributions := make([]nutrition.Contribution, 0, len(lines))
	for _, l := range lines {
		contributions = append(contributions, storedContribution(l))
	}
	snap, err := nutrition.PerServing(contributions, rec.Servings)
	if err != nil {
		return nutrition.Snapshot{}, validation("recipe %s: %v", recipeID, err)
	}
	snap.PerServing = snap.PerServing.Round(storagePlaces)

	applySnapshot(rec, snap.PerServing)
	if err := s.recipes.UpdateSnapshot(ctx, rec); err != nil {
		return nutrition.Snapshot{}, err
	}
	log.Debug().
		Str("recipe_id", recipeID.String()).
		Int("ingredients", len(lines)).
		Str("calories_per_serving", snap.PerServing.Calories.String()).
		Msg("nutrition: snapshot recalculated")
	return snap, nil
}

func (s *nutritionService) RefreshIngredient(ctx context.Context, ing *model.RecipeIngredient) error {
	if ing.Food == nil || ing.Food.ID != ing.FoodID {
		food, err := s.foods.FindByID(ctx, ing.FoodID)
		if err != nil {
			return notFound(err, "food")
		}
		ing.Food = food
	}
	computeIngredient(ing, ing.Food)
	return s.ingredients.Update(ctx, ing)
}

func (s *nutritionService) RefreshFood(ctx context.Context, foodID uuid.UUID) (int, error) {
	lines, err := s.ingredients.ListByFood(ctx, foodID)
	if err != nil {
		return 0, err
	}
	affected := make(map[uuid.UUID]struct{})
	for i := range lines {
		if err := s.RefreshIngredient(ctx, &lines[i]); err != nil {
			return 0, fmt.Errorf("refresh ingredient %s: %w", lines[i].ID, err)
		}
		affected[lines[i].RecipeID] = struct{}{}
	}
	for id := range affected {
		if _, err := s.Recalculate(ctx, id); err != nil {
			return 0, fmt.Errorf("recalculate recipe %s: %w", id, err)
		}
	}
	return len(affected), nil
}

func (s *nutritionService) RecalculateAll(ctx context.Context) (int, error) {
	ids, err := s.recipes.ListIDs(ctx)
	if err != nil {
		return 0, err
	}
	done, failed := 0, 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		if err := s.refreshRecipe(ctx, id); err != nil {
			failed++
			log.Error().Err(err).Str("recipe_id", id.String()).Msg("nutrition: recalculation failed")
			continue
		}
		done++
	}
	if failed > 0 {
		return done, fmt.Errorf("nutrition: %d of %d recipes failed to recalculate", failed, len(ids))
	}
	return done, nil
}

func (s *nutritionService) refreshRecipe(ctx context.Context, id uuid.UUID) error {
	lines, err := s.ingredients.ListByRecipe(ctx, id)
	if err != nil {
		return err
	}
	for i := range lines {
		if err := s.RefreshIngredient(ctx, &lines[i]); err != nil {
			return err
		}
	}
	_, err = s.Recalculate(ctx, id)
	return err
}

// ── Mapping helpers ──────────────────────────────────────────────────────────

// profileOf converts a stored profile; nil in, nil out.
func profileOf(p *model.NutrientProfile) *nutrition.Profile {
	if p == nil {
		return nil
	}
	return &nutrition.Profile{
		Calories:      p.Calories,
		ProteinG:      p.ProteinG,
		CarbohydrateG: p.CarbohydrateG,
		SugarG:        p.SugarG,
		FatG:          p.FatG,
		SaturatedFatG: p.SaturatedFatG,
		FiberG:        p.FiberG,
		SodiumMg:      p.SodiumMg,
		CalciumMg:     p.CalciumMg,
		IronMg:        p.IronMg,
		VitaminCMg:    p.VitaminCMg,
		VitaminDMcg:   p.VitaminDMcg,
		Confidence:    p.Confidence,
	}
}

// computeIngredient sets the calculated columns of ing from food. A food
// without a profile contributes zero.
func computeIngredient(ing *model.RecipeIngredient, food *model.Food) {
	var (
		profile *nutrition.Profile
		serving *float64
	)
	if food != nil {
		profile = profileOf(food.Profile)
		serving = food.ServingSizeG
	}
	if profile == nil {
		log.Warn().
			Str("food_id", ing.FoodID.String()).
			Msg("nutrition: food has no nutrient profile, contribution is zero")
	}
	c := nutrition.Compute(nutrition.Line{
		Quantity:     ing.Quantity,
		Unit:         nutrition.Unit(ing.Unit),
		ServingSizeG: serving,
	}, profile).Round(storagePlaces)

	ing.CaloriesCalculated = c.Calories
	ing.ProteinCalculatedG = c.ProteinG
	ing.CarbsCalculatedG = c.CarbsG
	ing.FatCalculatedG = c.FatG
	ing.FiberCalculatedG = c.FiberG
	ing.SugarCalculatedG = c.SugarG
	ing.SodiumCalculatedMg = c.SodiumMg
}

func storedContribution(ing model.RecipeIngredient) nutrition.Contribution {
	return nutrition.Contribution{
		Calories: ing.CaloriesCalculated,
		ProteinG: ing.ProteinCalculatedG,
		CarbsG:   ing.CarbsCalculatedG,
		FatG:     ing.FatCalculatedG,
		FiberG:   ing.FiberCalculatedG,
		SugarG:   ing.SugarCalculatedG,
		SodiumMg: ing.SodiumCalculatedMg,
	}
}

func applySnapshot(rec *model.Recipe, per nutrition.Contribution) {
	now := time.Now().UTC()
	rec.CaloriesPerServing = per.Calories
	rec.ProteinPerServingG = per.ProteinG
	rec.CarbsPerServingG = per.CarbsG
	rec.FatPerServingG = per.FatG
	rec.FiberPerServingG = per.FiberG
	rec.SugarPerServingG = per.SugarG
	rec.SodiumPerServingMg = per.SodiumMg
	rec.NutritionUpdatedAt = &now
}

func nutrientsResponse(c nutrition.Contribution) dto.NutrientsResponse {
	return dto.NutrientsResponse{
		Calories: c.Calories,
		ProteinG: c.ProteinG,
		CarbsG:   c.CarbsG,
		FatG:     c.FatG,
		FiberG:   c.FiberG,
		SugarG:   c.SugarG,
		SodiumMg: c.SodiumMg,
	}
}

func snapshotOf(rec model.Recipe) nutrition.Contribution {
	return nutrition.Contribution{
		Calories: rec.CaloriesPerServing,
		ProteinG: rec.ProteinPerServingG,
		CarbsG:   rec.CarbsPerServingG,
		FatG:     rec.FatPerServingG,
		FiberG:   rec.FiberPerServingG,
		SugarG:   rec.SugarPerServingG,
		SodiumMg: rec.SodiumPerServingMg,
	}
}
