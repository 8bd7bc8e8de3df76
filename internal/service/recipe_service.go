package service

import (
	"context"
	"fmt"
	"strings"

	"recipebox/internal/dto"
	"recipebox/internal/model"
	"recipebox/internal/nutrition"
	"recipebox/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ImageStore persists uploaded recipe images and returns their public URL.
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// RecipeService manages recipes and their child rows. Every mutation is
// restricted to the recipe's creator.
type RecipeService interface {
	Create(ctx context.Context, callerID string, req dto.CreateRecipeRequest) (*dto.RecipeDetailResponse, error)
	Get(ctx context.Context, id uuid.UUID, callerID string) (*dto.RecipeDetailResponse, error)
	Update(ctx context.Context, callerID string, id uuid.UUID, req dto.UpdateRecipeRequest) (*dto.RecipeResponse, error)
	Delete(ctx context.Context, callerID string, id uuid.UUID) error
	List(ctx context.Context, filter dto.RecipeFilter) (*dto.RecipeListResponse, error)
	Nutrition(ctx context.Context, id uuid.UUID, callerID string) (*dto.RecipeNutritionResponse, error)

	AddIngredient(ctx context.Context, callerID string, recipeID uuid.UUID, req dto.AddIngredientRequest) (*dto.IngredientResponse, error)
	UpdateIngredient(ctx context.Context, callerID string, recipeID, ingredientID uuid.UUID, req dto.UpdateIngredientRequest) (*dto.IngredientResponse, error)
	RemoveIngredient(ctx context.Context, callerID string, recipeID, ingredientID uuid.UUID) error
	ListIngredients(ctx context.Context, recipeID uuid.UUID, callerID string) ([]dto.IngredientResponse, error)

	AddInstruction(ctx context.Context, callerID string, recipeID uuid.UUID, req dto.AddInstructionRequest) (*dto.InstructionResponse, error)
	UpdateInstruction(ctx context.Context, callerID string, recipeID, instructionID uuid.UUID, req dto.UpdateInstructionRequest) (*dto.InstructionResponse, error)
	RemoveInstruction(ctx context.Context, callerID string, recipeID, instructionID uuid.UUID) error
	ListInstructions(ctx context.Context, recipeID uuid.UUID, callerID string) ([]dto.InstructionResponse, error)

	AddImage(ctx context.Context, callerID string, recipeID uuid.UUID, req dto.AddImageRequest) (*dto.ImageResponse, error)
	RemoveImage(ctx context.Context, callerID string, recipeID, imageID uuid.UUID) error
	ListImages(ctx context.Context, recipeID uuid.UUID, callerID string) ([]dto.ImageResponse, error)
}

type recipeService struct {
	recipes      repository.RecipeRepository
	ingredients  repository.IngredientRepository
	instructions repository.InstructionRepository
	images       repository.ImageRepository
	foods        repository.FoodRepository
	categories   CategoryService
	nutrition    NutritionService
	store        ImageStore
}

// NewRecipeService wires the recipe aggregate. store may be nil, in which case
// only caller-hosted image URLs are accepted.
func NewRecipeService(
	recipes repository.RecipeRepository,
	ingredients repository.IngredientRepository,
	instructions repository.InstructionRepository,
	images repository.ImageRepository,
	foods repository.FoodRepository,
	categories CategoryService,
	nutritionSvc NutritionService,
	store ImageStore,
) RecipeService {
	return &recipeService{
		recipes:      recipes,
		ingredients:  ingredients,
		instructions: instructions,
		images:       images,
		foods:        foods,
		categories:   categories,
		nutrition:    nutritionSvc,
		store:        store,
	}
}

// ── Mapping ──────────────────────────────────────────────────────────────────

func mapRecipe(r model.Recipe) dto.RecipeResponse {
	var categoryID *string
	if r.CategoryID != nil {
		s := r.CategoryID.String()
		categoryID = &s
	}
	return dto.RecipeResponse{
		ID:                 r.ID.String(),
		Name:               r.Name,
		Description:        r.Description,
		Servings:           r.Servings,
		PrepTimeMinutes:    r.PrepTimeMinutes,
		CookTimeMinutes:    r.CookTimeMinutes,
		Difficulty:         r.Difficulty,
		Cuisine:            r.Cuisine,
		CategoryID:         categoryID,
		CreatedBy:          r.CreatedBy,
		IsPublic:           r.IsPublic,
		Tags:               nonNil(r.Tags),
		DietTypes:          nonNil(r.DietTypes),
		Allergens:          nonNil(r.Allergens),
		PerServing:         nutrientsResponse(snapshotOf(r)),
		NutritionUpdatedAt: r.NutritionUpdatedAt,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func mapIngredient(i model.RecipeIngredient) dto.IngredientResponse {
	resp := dto.IngredientResponse{
		ID:          i.ID.String(),
		RecipeID:    i.RecipeID.String(),
		FoodID:      i.FoodID.String(),
		Quantity:    i.Quantity,
		Unit:        i.Unit,
		Preparation: i.Preparation,
		GroupLabel:  i.GroupLabel,
		SortOrder:   i.SortOrder,
		Calculated:  nutrientsResponse(storedContribution(i)),
	}
	if i.Food != nil {
		resp.FoodName = i.Food.Name
	}
	return resp
}

func mapInstruction(s model.RecipeInstruction) dto.InstructionResponse {
	return dto.InstructionResponse{
		ID:              s.ID.String(),
		StepNumber:      s.StepNumber,
		Description:     s.Description,
		DurationMinutes: s.DurationMinutes,
		TemperatureC:    s.TemperatureC,
		Technique:       s.Technique,
		GroupLabel:      s.GroupLabel,
		Equipment:       nonNil(s.Equipment),
	}
}

func mapImage(img model.RecipeImage) dto.ImageResponse {
	return dto.ImageResponse{
		ID:        img.ID.String(),
		URL:       img.URL,
		Caption:   img.Caption,
		IsPrimary: img.IsPrimary,
		SortOrder: img.SortOrder,
	}
}

func nonNil(a pq.StringArray) []string {
	if a == nil {
		return []string{}
	}
	return []string(a)
}

func mapSlice[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}

// ── Access ───────────────────────────────────────────────────────────────────

// loadOwned loads the recipe and checks that callerID created it.
func (s *recipeService) loadOwned(ctx context.Context, id uuid.UUID, callerID string) (*model.Recipe, error) {
	rec, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "recipe")
	}
	if callerID == "" || rec.CreatedBy != callerID {
		return nil, fmt.Errorf("recipe %s: %w", id, ErrNotAuthorized)
	}
	return rec, nil
}

// loadVisible loads a recipe the caller may read. Private recipes of other
// users are reported as missing.
func (s *recipeService) loadVisible(ctx context.Context, id uuid.UUID, callerID string) (*model.Recipe, error) {
	rec, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "recipe")
	}
	if !rec.IsPublic && (callerID == "" || rec.CreatedBy != callerID) {
		return nil, fmt.Errorf("recipe %s: %w", id, ErrNotFound)
	}
	return rec, nil
}

func (s *recipeService) refreshCategoryCount(ctx context.Context, id *uuid.UUID) {
	if id == nil || s.categories == nil {
		return
	}
	if err := s.categories.RefreshRecipeCount(ctx, *id); err != nil {
		log.Warn().Err(err).Str("category_id", id.String()).Msg("recipe: category count refresh failed")
	}
}

// ── Validation helpers ───────────────────────────────────────────────────────

func parseCategoryID(ctx context.Context, categories CategoryService, raw string) (*uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, validation("category_id: %v", err)
	}
	if categories != nil {
		if _, err := categories.Get(ctx, id); err != nil {
			return nil, err
		}
	}
	return &id, nil
}

// resolveIngredient validates req and returns the line with its contribution
// computed, ready to be stored under recipeID.
func (s *recipeService) resolveIngredient(ctx context.Context, recipeID uuid.UUID, req dto.AddIngredientRequest, sortOrder int) (*model.RecipeIngredient, error) {
	foodID, err := uuid.Parse(req.FoodID)
	if err != nil {
		return nil, validation("food_id: %v", err)
	}
	if !req.Quantity.IsPositive() {
		return nil, validation("quantity must be greater than zero")
	}
	unit, err := nutrition.ParseUnit(req.Unit)
	if err != nil {
		return nil, validation("%v", err)
	}
	food, err := s.foods.FindByID(ctx, foodID)
	if err != nil {
		return nil, notFound(err, "food "+req.FoodID)
	}
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	}

	ing := &model.RecipeIngredient{
		RecipeID:    recipeID,
		FoodID:      food.ID,
		Quantity:    req.Quantity,
		Unit:        string(unit),
		Preparation: req.Preparation,
		GroupLabel:  req.GroupLabel,
		SortOrder:   sortOrder,
		Food:        food,
	}
	computeIngredient(ing, food)
	return ing, nil
}

func newInstruction(recipeID uuid.UUID, step int, req dto.AddInstructionRequest) (*model.RecipeInstruction, error) {
	desc := strings.TrimSpace(req.Description)
	if desc == "" {
		return nil, validation("instruction description is required")
	}
	return &model.RecipeInstruction{
		RecipeID:        recipeID,
		StepNumber:      step,
		Description:     desc,
		DurationMinutes: req.DurationMinutes,
		TemperatureC:    req.TemperatureC,
		Technique:       req.Technique,
		GroupLabel:      req.GroupLabel,
		Equipment:       pq.StringArray(req.Equipment),
	}, nil
}

// numberSteps assigns step numbers: explicit numbers are kept, omitted ones
// continue after the highest number seen so far. Duplicates are rejected.
func numberSteps(reqs []dto.AddInstructionRequest) ([]int, error) {
	steps := make([]int, len(reqs))
	used := make(map[int]bool, len(reqs))
	for i, r := range reqs {
		if r.StepNumber == nil {
			continue
		}
		if *r.StepNumber < 1 {
			return nil, validation("instruction %d: step_number must be at least 1", i+1)
		}
		if used[*r.StepNumber] {
			return nil, validation("duplicate step_number %d", *r.StepNumber)
		}
		used[*r.StepNumber] = true
		steps[i] = *r.StepNumber
	}
	next := 0
	for i := range reqs {
		if steps[i] > next {
			next = steps[i]
			continue
		}
		if steps[i] == 0 {
			next++
			for used[next] {
				next++
			}
			used[next] = true
			steps[i] = next
		}
	}
	return steps, nil
}

// ── Recipe operations ────────────────────────────────────────────────────────

// Create validates the whole request (category, every food and unit, step
// numbers) before writing anything. Store failures after that point leave the
// partially written recipe in place and are returned.
func (s *recipeService) Create(ctx context.Context, callerID string, req dto.CreateRecipeRequest) (*dto.RecipeDetailResponse, error) {
	if callerID == "" {
		return nil, ErrNotAuthorized
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validation("name is required")
	}
	if req.Servings < 1 {
		return nil, validation("servings must be at least 1")
	}

	var categoryID *uuid.UUID
	if req.CategoryID != nil && *req.CategoryID != "" {
		id, err := parseCategoryID(ctx, s.categories, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		categoryID = id
	}

	lines := make([]*model.RecipeIngredient, 0, len(req.Ingredients))
	for i, ir := range req.Ingredients {
		ing, err := s.resolveIngredient(ctx, uuid.Nil, ir, i)
		if err != nil {
			return nil, fmt.Errorf("ingredient %d: %w", i+1, err)
		}
		lines = append(lines, ing)
	}

	steps, err := numberSteps(req.Instructions)
	if err != nil {
		return nil, err
	}
	instructions := make([]*model.RecipeInstruction, 0, len(req.Instructions))
	for i, sr := range req.Instructions {
		st, err := newInstruction(uuid.Nil, steps[i], sr)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i+1, err)
		}
		instructions = append(instructions, st)
	}

	rec := &model.Recipe{
		Name:            name,
		Description:     req.Description,
		Servings:        req.Servings,
		PrepTimeMinutes: req.PrepTimeMinutes,
		CookTimeMinutes: req.CookTimeMinutes,
		Difficulty:      req.Difficulty,
		Cuisine:         req.Cuisine,
		CategoryID:      categoryID,
		CreatedBy:       callerID,
		IsPublic:        req.IsPublic,
		Tags:            pq.StringArray(req.Tags),
		DietTypes:       pq.StringArray(req.DietTypes),
		Allergens:       pq.StringArray(req.Allergens),
	}
	if err := s.recipes.Create(ctx, rec); err != nil {
		return nil, err
	}

	partial := func(step string, err error) error {
		log.Error().Err(err).
			Str("recipe_id", rec.ID.String()).
			Str("step", step).
			Msg("recipe: create failed after the recipe was stored")
		return fmt.Errorf("recipe %s created partially (%s): %w", rec.ID, step, err)
	}

	for _, ing := range lines {
		ing.RecipeID = rec.ID
		if err := s.ingredients.Create(ctx, ing); err != nil {
			return nil, partial("ingredients", err)
		}
	}
	for _, st := range instructions {
		st.RecipeID = rec.ID
		if err := s.instructions.Create(ctx, st); err != nil {
			return nil, partial("instructions", err)
		}
	}
	if _, err := s.nutrition.Recalculate(ctx, rec.ID); err != nil {
		return nil, partial("nutrition", err)
	}
	s.refreshCategoryCount(ctx, categoryID)

	log.Info().
		Str("recipe_id", rec.ID.String()).
		Str("created_by", callerID).
		Int("ingredients", len(lines)).
		Int("instructions", len(instructions)).
		Msg("recipe created")
	return s.Get(ctx, rec.ID, callerID)
}

// Get loads the recipe and its children; the child lists are read concurrently.
func (s *recipeService) Get(ctx context.Context, id uuid.UUID, callerID string) (*dto.RecipeDetailResponse, error) {
	rec, err := s.loadVisible(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	var (
		ingredients  []model.RecipeIngredient
		instructions []model.RecipeInstruction
		images       []model.RecipeImage
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ingredients, err = s.ingredients.ListByRecipe(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		instructions, err = s.instructions.ListByRecipe(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		images, err = s.images.ListByRecipe(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &dto.RecipeDetailResponse{
		RecipeResponse: mapRecipe(*rec),
		Ingredients:    mapSlice(ingredients, mapIngredient),
		Instructions:   mapSlice(instructions, mapInstruction),
		Images:         mapSlice(images, mapImage),
	}, nil
}

func (s *recipeService) Update(ctx context.Context, callerID string, id uuid.UUID, req dto.UpdateRecipeRequest) (*dto.RecipeResponse, error) {
	rec, err := s.loadOwned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, validation("name is required")
		}
		rec.Name = name
	}
	servingsChanged := false
	if req.Servings != nil {
		if *req.Servings < 1 {
			return nil, validation("servings must be at least 1")
		}
		servingsChanged = *req.Servings != rec.Servings
		rec.Servings = *req.Servings
	}

	oldCategory := rec.CategoryID
	categoryChanged := false
	switch {
	case req.ClearCategory:
		categoryChanged = rec.CategoryID != nil
		rec.CategoryID = nil
	case req.CategoryID != nil:
		cid, err := parseCategoryID(ctx, s.categories, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		categoryChanged = rec.CategoryID == nil || *rec.CategoryID != *cid
		rec.CategoryID = cid
	}

	if req.Description != nil {
		rec.Description = req.Description
	}
	if req.PrepTimeMinutes != nil {
		rec.PrepTimeMinutes = *req.PrepTimeMinutes
	}
	if req.CookTimeMinutes != nil {
		rec.CookTimeMinutes = *req.CookTimeMinutes
	}
	if req.Difficulty != nil {
		rec.Difficulty = *req.Difficulty
	}
	if req.Cuisine != nil {
		rec.Cuisine = *req.Cuisine
	}
	if req.IsPublic != nil {
		rec.IsPublic = *req.IsPublic
	}
	if req.Tags != nil {
		rec.Tags = pq.StringArray(*req.Tags)
	}
	if req.DietTypes != nil {
		rec.DietTypes = pq.StringArray(*req.DietTypes)
	}
	if req.Allergens != nil {
		rec.Allergens = pq.StringArray(*req.Allergens)
	}

	if err := s.recipes.Update(ctx, rec); err != nil {
		return nil, err
	}
	if servingsChanged {
		snap, err := s.nutrition.Recalculate(ctx, rec.ID)
		if err != nil {
			return nil, err
		}
		applySnapshot(rec, snap.PerServing)
	}
	if categoryChanged {
		s.refreshCategoryCount(ctx, oldCategory)
		s.refreshCategoryCount(ctx, rec.CategoryID)
	}

	resp := mapRecipe(*rec)
	return &resp, nil
}

func (s *recipeService) Delete(ctx context.Context, callerID string, id uuid.UUID) error {
	rec, err := s.loadOwned(ctx, id, callerID)
	if err != nil {
		return err
	}
	if err := s.ingredients.DeleteByRecipe(ctx, id); err != nil {
		return err
	}
	if err := s.instructions.DeleteByRecipe(ctx, id); err != nil {
		return err
	}
	if err := s.images.DeleteByRecipe(ctx, id); err != nil {
		return err
	}
	if err := s.recipes.Delete(ctx, id); err != nil {
		return err
	}
	s.refreshCategoryCount(ctx, rec.CategoryID)
	log.Info().Str("recipe_id", id.String()).Msg("recipe deleted")
	return nil
}

func (s *recipeService) List(ctx context.Context, filter dto.RecipeFilter) (*dto.RecipeListResponse, error) {
	filter.Page, filter.Limit = dto.NormalizePage(filter.Page, filter.Limit)
	if filter.Mine && filter.CallerID == "" {
		return nil, ErrNotAuthorized
	}
	recipes, total, err := s.recipes.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &dto.RecipeListResponse{
		Data:       mapSlice(recipes, mapRecipe),
		Pagination: dto.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

// Nutrition returns the stored per-serving snapshot with the total and the
// per-ingredient breakdown it was derived from.
func (s *recipeService) Nutrition(ctx context.Context, id uuid.UUID, callerID string) (*dto.RecipeNutritionResponse, error) {
	rec, err := s.loadVisible(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	lines, err := s.ingredients.ListByRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	contributions := make([]nutrition.Contribution, 0, len(lines))
	for _, l := range lines {
		contributions = append(contributions, storedContribution(l))
	}
	return &dto.RecipeNutritionResponse{
		RecipeID:    rec.ID.String(),
		Servings:    rec.Servings,
		PerServing:  nutrientsResponse(snapshotOf(*rec)),
		Total:       nutrientsResponse(nutrition.Sum(contributions)),
		Ingredients: mapSlice(lines, mapIngredient),
	}, nil
}

// ── Ingredients ──────────────────────────────────────────────────────────────

func (s *recipeService) AddIngredient(ctx context.Context, callerID string, recipeID uuid.UUID, req dto.AddIngredientRequest) (*dto.IngredientResponse, error) {
	if _, err := s.loadOwned(ctx, recipeID, callerID); err != nil {
		return nil, err
	}
	existing, err := s.ingredients.ListByRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	ing, err := s.resolveIngredient(ctx, recipeID, req, len(existing))
	if err != nil {
		return nil, err
	}
	if err := s.ingredients.Create(ctx, ing); err != nil {
		return nil, err
	}
	if _, err := s.nutrition.Recalculate(ctx, recipeID); err != nil {
		return nil, err
	}
	resp := mapIngredient(*ing)
	return &resp, nil
}

// ownedIngredient loads an ingredient and checks it belongs to recipeID.
func (s *recipeService) ownedIngredient(ctx context.Context, recipeID, ingredientID uuid.UUID) (*model.RecipeIngredient, error) {
	ing, err := s.ingredients.FindByID(ctx, ingredientID)
	if err != nil {
		return nil, notFound(err, "ingredient")
	}
	if ing.RecipeID != recipeID {
		return nil, fmt.Errorf("ingredient %s: %w", ingredientID, ErrNotFound)
	}
	return ing, nil
}

func (s *recipeService) UpdateIngredient(ctx context.Context, callerID string, recipeID, ingredientID uuid.UUID, req dto.UpdateIngredientRequest) (*dto.IngredientResponse, error) {
	if _, err := s.loadOwned(ctx, recipeID, callerID); err != nil {
		return nil, err
	}
	ing, err := s.ownedIngredient(ctx, recipeID, ingredientID)
	if err != nil {
		return nil, err
	}

	if req.FoodID != nil {
		foodID, err := uuid.Parse(*req.FoodID)
		if err != nil {
			return nil, validation("food_id: %v", err)
		}
		if foodID != ing.FoodID || ing.Food == nil {
			food, err := s.foods.FindByID(ctx, foodID)
			if err != nil {
				return nil, notFound(err, "food "+*req.FoodID)
			}
			ing.FoodID = food.ID
			ing.Food = food
		}
	}
	if req.Quantity != nil {
		if !req.Quantity.IsPositive() {
			return nil, validation("quantity must be greater than zero")
		}
		ing.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		unit, err := nutrition.ParseUnit(*req.Unit)
		if err != nil {
			return nil, validation("%v", err)
		}
		ing.Unit = string(unit)
	}
	if req.Preparation != nil {
		ing.Preparation = req.Preparation
	}
	if req.GroupLabel != nil {
		ing.GroupLabel = req.GroupLabel
	}
	if req.SortOrder != nil {
		ing.SortOrder = *req.SortOrder
	}

	computeIngredient(ing, ing.Food)
	if err := s.ingredients.Update(ctx, ing); err != nil {
		return nil, err
	}
	if _, err := s.nutrition.Recalculate(ctx, recipeID); err != nil {
		return nil, err
	}
	resp := mapIngredient(*ing)
	return &resp, nil
}

func (s *recipeService) RemoveIngredient(ctx context.Context, callerID string, recipeID, ingredientID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, recipeID, callerID); err != nil {
		return err
	}
	if _, err := s.ownedIngredient(ctx, recipeID, ingredientID); err != nil {
		return err
	}
	if err := s.ingredients.Delete(ctx, ingredientID); err != nil {
		return err
	}
	_, err := s.nutrition.Recalculate(ctx, recipeID)
	return err
}

func (s *recipeService) ListIngredients(ctx context.Context, recipeID uuid.UUID, callerID string) ([]dto.IngredientResponse, error) {
	if _, err := s.loadVisible(ctx, recipeID, callerID); err != nil {
		return nil, err
	}
	lines, err := s.ingredients.ListByRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	return mapSlice(lines, mapIngredient), nil
}

// ── Instructions ─────────────────────────────────────────────────────────────

func (s *recipeService) stepTaken(ctx context.Context, recipeID uuid.UUID, step int, except uuid.UUID) error {
	steps, err := s.instructions.ListByRecipe(ctx, recipeID)
	if err != nil {
		return err
	}
	for _, st := range steps {
		if st.StepNumber == step && st.ID != except {
			return validation("step_number %d already exists", step)
		}
	}
	return nil
}

func (s *recipeService) AddInstruction(ctx context.Context, callerID string, recipeID uuid.UUID, req dto.AddInstructionRequest) (*dto.InstructionResponse, error) {
	if _, err := s.loadOwned(ctx, recipeID, callerID); err != nil {
		return nil, err
	}

	var step int
	if req.StepNumber == nil {
		max, err := s.instructions.MaxStep(ctx, recipeID)
		if err != nil {
			return nil, err
		}
		step = max + 1
	} else {
		step = *req.StepNumber
		if step < 1 {
			return nil, validation("step_number must be at least 1")
		}
		if err := s.stepTaken(ctx, recipeID, step, uuid.Nil); err != nil {
			return nil, err
		}
	}

	st, err := newInstruction(recipeID, step, req)
	if err != nil {
		return nil, err
	}
	if err := s.instructions.Create(ctx, st); err != nil {
		return nil, err
	}
	resp := mapInstruction(*st)
	return &resp, nil
}

func (s *recipeService) ownedInstruction(ctx context.Context, recipeID, instructionID uuid.UUID) (*model.RecipeInstruction, error) {
	st, err := s.instructions.FindByID(ctx, instructionID)
	if err != nil {
		return nil, notFound(err, "instruction")
	}
	if st.RecipeID != recipeID {
		return nil, fmt.Errorf("instruction %s: %w", instructionID, ErrNotFound)
	}
	return st, nil
}

func (s *recipeService) UpdateInstruction(ctx context.Context, callerID string, recipeID, instructionID uuid.UUID, req dto.UpdateInstructionRequest) (*dto.InstructionResponse, error) {
	if _, err := s.loadOwned(ctx, recipeID, callerID); err != nil {
		return nil, err
	}
	st, err := s.ownedInstruction(ctx, recipeID, instructionID)
	if err != nil {
		return nil, err
	}

	if req.StepNumber != nil && *req.StepNumber != st.StepNumber {
		if *req.StepNumber < 1 {
			return nil, validation("step_number must be at least 1")
		}
		if err := s.stepTaken(ctx, recipeID, *req.StepNumber, st.ID); err != nil {
			return nil, err
		}
		st.StepNumber = *req.StepNumber
	}
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		if desc == "" {
			return nil, validation("instruction description is required")
		}
		st.Description = desc
	}
	if req.DurationMinutes != nil {
		st.DurationMinutes = req.DurationMinutes
	}
	if req.TemperatureC != nil {
		st.TemperatureC = req.TemperatureC
	}
	if req.Technique != nil {
		st.Technique = req.Technique
	}
	if req.GroupLabel != nil {
		st.GroupLabel = req.GroupLabel
	}
	if req.Equipment != nil {
		st.Equipment = pq.StringArray(*req.Equipment)
	}

	if err := s.instructions.Update(ctx, st); err != nil {
		return nil, err
	}
	resp := mapInstruction(*st)
	return &resp, nil
}

func (s *recipeService) RemoveInstruction(ctx context.Context, callerID string, recipeID, instructionID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, recipeID, callerID); err != nil {
		return err
	}
	if _, err := s.ownedInstruction(ctx, recipeID, instructionID); err != nil {
		return err
	}
	return s.instructions.Delete(ctx, instructionID)
}

func (s *recipeService) ListInstructions(ctx context.Context, recipeID uuid.UUID, callerID string) ([]dto.InstructionResponse, error) {
	if _, err := s.loadVisible(ctx, recipeID, callerID); err != nil {
		return nil, err
	}
	steps, err := s.instructions.ListByRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	return mapSlice(steps, mapInstruction), nil
}

// ── Images ───────────────────────────────────────────────────────────────────

func (s *recipeService) AddImage(ctx context.Context, callerID string, recipeID uuid.UUID, req dto.AddImageRequest) (*dto.ImageResponse, error) {
	if _, err := s.loadOwned(ctx, recipeID, callerID); err != nil {
		return nil, err
	}
	hasURL := req.URL != nil && *req.URL != ""
	hasData := req.Data != nil && *req.Data != ""
	if hasURL == hasData {
		return nil, validation("exactly one of url or data is required")
	}

	url := ""
	if hasURL {
		url = *req.URL
	} else {
		if s.store == nil {
			return nil, validation("image uploads are not configured")
		}
		upload, err := decodeDataURI(*req.Data)
		if err != nil {
			return nil, err
		}
		key := fmt.Sprintf("recipes/%s/%s%s", recipeID, uuid.New(), upload.ext)
		url, err = s.store.Put(ctx, key, upload.contentType, upload.body)
		if err != nil {
			return nil, fmt.Errorf("upload image: %w", err)
		}
	}

	existing, err := s.images.ListByRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	img := &model.RecipeImage{
		RecipeID:  recipeID,
		URL:       url,
		Caption:   req.Caption,
		SortOrder: len(existing),
	}
	if err := s.images.Create(ctx, img); err != nil {
		return nil, err
	}
	if req.IsPrimary || len(existing) == 0 {
		if err := s.images.SetPrimary(ctx, recipeID, img.ID); err != nil {
			return nil, err
		}
		img.IsPrimary = true
	}
	resp := mapImage(*img)
	return &resp, nil
}

func (s *recipeService) RemoveImage(ctx context.Context, callerID string, recipeID, imageID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, recipeID, callerID); err != nil {
		return err
	}
	img, err := s.images.FindByID(ctx, imageID)
	if err != nil {
		return notFound(err, "image")
	}
	if img.RecipeID != recipeID {
		return fmt.Errorf("image %s: %w", imageID, ErrNotFound)
	}
	if err := s.images.Delete(ctx, imageID); err != nil {
		return err
	}
	if !img.IsPrimary {
		return nil
	}
	rest, err := s.images.ListByRecipe(ctx, recipeID)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return s.images.SetPrimary(ctx, recipeID, rest[0].ID)
	}
	return nil
}

func (s *recipeService) ListImages(ctx context.Context, recipeID uuid.UUID, callerID string) ([]dto.ImageResponse, error) {
	if _, err := s.loadVisible(ctx, recipeID, callerID); err != nil {
		return nil, err
	}
	images, err := s.images.ListByRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	return mapSlice(images, mapImage), nil
}
