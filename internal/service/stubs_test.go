package service_test

import (
	"context"
	"sort"
	"strings"
	"sync"

	"recipebox/internal/dto"
	"recipebox/internal/model"
	"recipebox/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── In-memory store shared by the repository stubs ───────────────────────────

type memStore struct {
	mu           sync.Mutex
	foods        map[uuid.UUID]model.Food
	profiles     map[uuid.UUID]model.NutrientProfile // by food id
	recipes      map[uuid.UUID]model.Recipe
	ingredients  map[uuid.UUID]model.RecipeIngredient
	instructions map[uuid.UUID]model.RecipeInstruction
	images       map[uuid.UUID]model.RecipeImage
	categories   map[uuid.UUID]model.RecipeCategory

	snapshotWrites int
	pathUpdates    int
	failIngredient bool
}

func newMemStore() *memStore {
	return &memStore{
		foods:        make(map[uuid.UUID]model.Food),
		profiles:     make(map[uuid.UUID]model.NutrientProfile),
		recipes:      make(map[uuid.UUID]model.Recipe),
		ingredients:  make(map[uuid.UUID]model.RecipeIngredient),
		instructions: make(map[uuid.UUID]model.RecipeInstruction),
		images:       make(map[uuid.UUID]model.RecipeImage),
		categories:   make(map[uuid.UUID]model.RecipeCategory),
	}
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// foodWithProfile must be called with mu held.
func (s *memStore) foodWithProfile(id uuid.UUID) (*model.Food, bool) {
	f, ok := s.foods[id]
	if !ok {
		return nil, false
	}
	if p, ok := s.profiles[id]; ok {
		p := p
		f.Profile = &p
	}
	return &f, true
}

// ── FoodRepository ───────────────────────────────────────────────────────────

type stubFoodRepo struct{ s *memStore }

func (r *stubFoodRepo) Create(_ context.Context, f *model.Food) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&f.ID)
	cp := *f
	cp.Profile = nil
	r.s.foods[f.ID] = cp
	return nil
}

func (r *stubFoodRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Food, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.foodWithProfile(id)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return f, nil
}

func (r *stubFoodRepo) FindByBarcode(_ context.Context, barcode string) (*model.Food, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, f := range r.s.foods {
		if f.Barcode != nil && *f.Barcode == barcode {
			found, _ := r.s.foodWithProfile(id)
			return found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubFoodRepo) FindProfile(_ context.Context, foodID uuid.UUID) (*model.NutrientProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[foodID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *stubFoodRepo) UpsertProfile(_ context.Context, p *model.NutrientProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.profiles[p.FoodID]; ok {
		p.ID = existing.ID
	}
	ensureID(&p.ID)
	r.s.profiles[p.FoodID] = *p
	return nil
}

func (r *stubFoodRepo) List(_ context.Context, filter dto.FoodFilter) ([]model.Food, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Food
	for id := range r.s.foods {
		f, _ := r.s.foodWithProfile(id)
		if filter.Query != "" && !strings.Contains(strings.ToLower(f.Name), strings.ToLower(filter.Query)) {
			continue
		}
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	total := int64(len(out))
	start := (filter.Page - 1) * filter.Limit
	if start > len(out) {
		start = len(out)
	}
	end := start + filter.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r *stubFoodRepo) Update(_ context.Context, f *model.Food) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *f
	cp.Profile = nil
	r.s.foods[f.ID] = cp
	return nil
}

func (r *stubFoodRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.foods, id)
	delete(r.s.profiles, id)
	return nil
}

func (r *stubFoodRepo) CountIngredientRefs(_ context.Context, foodID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, i := range r.s.ingredients {
		if i.FoodID == foodID {
			n++
		}
	}
	return n, nil
}

var _ repository.FoodRepository = (*stubFoodRepo)(nil)

// ── RecipeRepository ─────────────────────────────────────────────────────────

type stubRecipeRepo struct{ s *memStore }

func (r *stubRecipeRepo) Create(_ context.Context, rec *model.Recipe) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&rec.ID)
	r.s.recipes[rec.ID] = *rec
	return nil
}

func (r *stubRecipeRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Recipe, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.recipes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &rec, nil
}

func (r *stubRecipeRepo) Update(_ context.Context, rec *model.Recipe) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.recipes[rec.ID] = *rec
	return nil
}

func (r *stubRecipeRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.recipes, id)
	return nil
}

func (r *stubRecipeRepo) UpdateSnapshot(_ context.Context, rec *model.Recipe) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.recipes[rec.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.CaloriesPerServing = rec.CaloriesPerServing
	stored.ProteinPerServingG = rec.ProteinPerServingG
	stored.CarbsPerServingG = rec.CarbsPerServingG
	stored.FatPerServingG = rec.FatPerServingG
	stored.FiberPerServingG = rec.FiberPerServingG
	stored.SugarPerServingG = rec.SugarPerServingG
	stored.SodiumPerServingMg = rec.SodiumPerServingMg
	stored.NutritionUpdatedAt = rec.NutritionUpdatedAt
	r.s.recipes[rec.ID] = stored
	r.s.snapshotWrites++
	return nil
}

func (r *stubRecipeRepo) CountByCategory(_ context.Context, categoryID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, rec := range r.s.recipes {
		if rec.CategoryID != nil && *rec.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func (r *stubRecipeRepo) Search(_ context.Context, filter dto.RecipeFilter) ([]model.Recipe, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Recipe
	for _, rec := range r.s.recipes {
		visible := rec.IsPublic || rec.CreatedBy == filter.CallerID
		if filter.Mine {
			visible = rec.CreatedBy == filter.CallerID
		}
		if !visible {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(rec.Name), strings.ToLower(filter.Query)) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	total := int64(len(out))
	start := (filter.Page - 1) * filter.Limit
	if start > len(out) {
		start = len(out)
	}
	end := start + filter.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r *stubRecipeRepo) ListIDsByFood(_ context.Context, foodID uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	for _, i := range r.s.ingredients {
		if i.FoodID == foodID && !seen[i.RecipeID] {
			seen[i.RecipeID] = true
			ids = append(ids, i.RecipeID)
		}
	}
	return ids, nil
}

func (r *stubRecipeRepo) ListIDs(_ context.Context) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(r.s.recipes))
	for id := range r.s.recipes {
		ids = append(ids, id)
	}
	return ids, nil
}

var _ repository.RecipeRepository = (*stubRecipeRepo)(nil)

// ── IngredientRepository ─────────────────────────────────────────────────────

type stubIngredientRepo struct{ s *memStore }

type errStore struct{}

func (errStore) Error() string { return "store unavailable" }

func (r *stubIngredientRepo) Create(_ context.Context, i *model.RecipeIngredient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failIngredient {
		return errStore{}
	}
	ensureID(&i.ID)
	cp := *i
	cp.Food = nil
	r.s.ingredients[i.ID] = cp
	return nil
}

func (r *stubIngredientRepo) withFood(i model.RecipeIngredient) model.RecipeIngredient {
	if f, ok := r.s.foodWithProfile(i.FoodID); ok {
		i.Food = f
	}
	return i
}

func (r *stubIngredientRepo) FindByID(_ context.Context, id uuid.UUID) (*model.RecipeIngredient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.s.ingredients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	i = r.withFood(i)
	return &i, nil
}

func (r *stubIngredientRepo) ListByRecipe(_ context.Context, recipeID uuid.UUID) ([]model.RecipeIngredient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.RecipeIngredient
	for _, i := range r.s.ingredients {
		if i.RecipeID == recipeID {
			out = append(out, r.withFood(i))
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].SortOrder < out[b].SortOrder })
	return out, nil
}

func (r *stubIngredientRepo) Update(_ context.Context, i *model.RecipeIngredient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *i
	cp.Food = nil
	r.s.ingredients[i.ID] = cp
	return nil
}

func (r *stubIngredientRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.ingredients, id)
	return nil
}

func (r *stubIngredientRepo) DeleteByRecipe(_ context.Context, recipeID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, i := range r.s.ingredients {
		if i.RecipeID == recipeID {
			delete(r.s.ingredients, id)
		}
	}
	return nil
}

func (r *stubIngredientRepo) ListByFood(_ context.Context, foodID uuid.UUID) ([]model.RecipeIngredient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.RecipeIngredient
	for _, i := range r.s.ingredients {
		if i.FoodID == foodID {
			out = append(out, r.withFood(i))
		}
	}
	return out, nil
}

var _ repository.IngredientRepository = (*stubIngredientRepo)(nil)

// ── InstructionRepository ────────────────────────────────────────────────────

type stubInstructionRepo struct{ s *memStore }

func (r *stubInstructionRepo) Create(_ context.Context, st *model.RecipeInstruction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&st.ID)
	r.s.instructions[st.ID] = *st
	return nil
}

func (r *stubInstructionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.RecipeInstruction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.instructions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &st, nil
}

func (r *stubInstructionRepo) ListByRecipe(_ context.Context, recipeID uuid.UUID) ([]model.RecipeInstruction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.RecipeInstruction
	for _, st := range r.s.instructions {
		if st.RecipeID == recipeID {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].StepNumber < out[b].StepNumber })
	return out, nil
}

func (r *stubInstructionRepo) Update(_ context.Context, st *model.RecipeInstruction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.instructions[st.ID] = *st
	return nil
}

func (r *stubInstructionRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.instructions, id)
	return nil
}

func (r *stubInstructionRepo) DeleteByRecipe(_ context.Context, recipeID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, st := range r.s.instructions {
		if st.RecipeID == recipeID {
			delete(r.s.instructions, id)
		}
	}
	return nil
}

func (r *stubInstructionRepo) MaxStep(_ context.Context, recipeID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	max := 0
	for _, st := range r.s.instructions {
		if st.RecipeID == recipeID && st.StepNumber > max {
			max = st.StepNumber
		}
	}
	return max, nil
}

var _ repository.InstructionRepository = (*stubInstructionRepo)(nil)

// ── ImageRepository ──────────────────────────────────────────────────────────

type stubImageRepo struct{ s *memStore }

func (r *stubImageRepo) Create(_ context.Context, img *model.RecipeImage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&img.ID)
	r.s.images[img.ID] = *img
	return nil
}

func (r *stubImageRepo) FindByID(_ context.Context, id uuid.UUID) (*model.RecipeImage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	img, ok := r.s.images[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &img, nil
}

func (r *stubImageRepo) ListByRecipe(_ context.Context, recipeID uuid.UUID) ([]model.RecipeImage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.RecipeImage
	for _, img := range r.s.images {
		if img.RecipeID == recipeID {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].IsPrimary != out[b].IsPrimary {
			return out[a].IsPrimary
		}
		return out[a].SortOrder < out[b].SortOrder
	})
	return out, nil
}

func (r *stubImageRepo) SetPrimary(_ context.Context, recipeID, imageID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, img := range r.s.images {
		if img.RecipeID == recipeID {
			img.IsPrimary = id == imageID
			r.s.images[id] = img
		}
	}
	return nil
}

func (r *stubImageRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.images, id)
	return nil
}

func (r *stubImageRepo) DeleteByRecipe(_ context.Context, recipeID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, img := range r.s.images {
		if img.RecipeID == recipeID {
			delete(r.s.images, id)
		}
	}
	return nil
}

var _ repository.ImageRepository = (*stubImageRepo)(nil)

// ── CategoryRepository ───────────────────────────────────────────────────────

type stubCategoryRepo struct{ s *memStore }

func (r *stubCategoryRepo) Create(_ context.Context, c *model.RecipeCategory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&c.ID)
	for _, existing := range r.s.categories {
		if existing.Slug == c.Slug {
			return errStore{}
		}
	}
	r.s.categories[c.ID] = *c
	return nil
}

func (r *stubCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.RecipeCategory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *stubCategoryRepo) FindBySlug(_ context.Context, slug string) (*model.RecipeCategory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.categories {
		if c.Slug == slug {
			c := c
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCategoryRepo) FindChildren(_ context.Context, parentID uuid.UUID) ([]model.RecipeCategory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.RecipeCategory
	for _, c := range r.s.categories {
		if c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out, nil
}

func (r *stubCategoryRepo) CountChildren(ctx context.Context, parentID uuid.UUID) (int64, error) {
	children, _ := r.FindChildren(ctx, parentID)
	return int64(len(children)), nil
}

func (r *stubCategoryRepo) ListAll(_ context.Context) ([]model.RecipeCategory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.RecipeCategory, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Path < out[b].Path })
	return out, nil
}

func (r *stubCategoryRepo) Update(_ context.Context, c *model.RecipeCategory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.categories[c.ID] = *c
	return nil
}

func (r *stubCategoryRepo) UpdatePathLevel(_ context.Context, id uuid.UUID, path string, level int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Path, c.Level = path, level
	r.s.categories[id] = c
	r.s.pathUpdates++
	return nil
}

func (r *stubCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.categories, id)
	return nil
}

func (r *stubCategoryRepo) UpdateRecipeCount(_ context.Context, id uuid.UUID, count int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.RecipeCount = int(count)
	r.s.categories[id] = c
	return nil
}

var _ repository.CategoryRepository = (*stubCategoryRepo)(nil)

// ── ImageStore and RefreshQueue ──────────────────────────────────────────────

type stubImageStore struct {
	mu   sync.Mutex
	puts map[string][]byte
}

func (s *stubImageStore) Put(_ context.Context, key, _ string, body []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.puts == nil {
		s.puts = make(map[string][]byte)
	}
	s.puts[key] = body
	return "https://images.example.test/" + key, nil
}

type stubQueue struct {
	mu     sync.Mutex
	queued []uuid.UUID
	err    error
}

func (q *stubQueue) EnqueueNutritionRefresh(_ context.Context, foodID uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.queued = append(q.queued, foodID)
	return nil
}
