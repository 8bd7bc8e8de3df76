package service

import (
	"context"
	"fmt"
	"strings"

	"recipebox/internal/dto"
	"recipebox/internal/model"
	"recipebox/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// RefreshQueue schedules the recomputation of every ingredient that
// references a food. Implemented by worker.Dispatcher.
type RefreshQueue interface {
	EnqueueNutritionRefresh(ctx context.Context, foodID uuid.UUID) error
}

// FoodService manages the food catalog and nutrient profiles.
type FoodService interface {
	Create(ctx context.Context, req dto.CreateFoodRequest) (*dto.FoodResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.FoodResponse, error)
	GetByBarcode(ctx context.Context, barcode string) (*dto.FoodResponse, error)
	List(ctx context.Context, filter dto.FoodFilter) (*dto.FoodListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateFoodRequest) (*dto.FoodResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// UpsertProfile creates or replaces the food's single nutrient profile.
	UpsertProfile(ctx context.Context, foodID uuid.UUID, req dto.NutrientProfileRequest) (*dto.FoodResponse, error)
}

type foodService struct {
	repo      repository.FoodRepository
	nutrition NutritionService
	queue     RefreshQueue
}

// NewFoodService builds the service. With a nil queue, stale ingredients are
// refreshed inline before the call returns.
func NewFoodService(repo repository.FoodRepository, nutritionSvc NutritionService, queue RefreshQueue) FoodService {
	return &foodService{repo: repo, nutrition: nutritionSvc, queue: queue}
}

func mapProfile(p *model.NutrientProfile) *dto.NutrientProfileResponse {
	if p == nil {
		return nil
	}
	return &dto.NutrientProfileResponse{
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
		Source:        p.Source,
		Extra:         p.Extra,
	}
}

func mapFood(f model.Food) dto.FoodResponse {
	return dto.FoodResponse{
		ID:           f.ID.String(),
		Name:         f.Name,
		CategoryName: f.CategoryName,
		Brand:        f.Brand,
		Barcode:      f.Barcode,
		ServingSizeG: f.ServingSizeG,
		IsVerified:   f.IsVerified,
		Profile:      mapProfile(f.Profile),
	}
}

// profileFromRequest validates req and builds the stored profile.
func profileFromRequest(foodID uuid.UUID, req dto.NutrientProfileRequest) (*model.NutrientProfile, error) {
	confidence := decimal.NewFromInt(1)
	if req.Confidence != nil {
		confidence = *req.Confidence
	}
	p := &model.NutrientProfile{
		FoodID:        foodID,
		Calories:      req.Calories,
		ProteinG:      req.ProteinG,
		CarbohydrateG: req.CarbohydrateG,
		SugarG:        req.SugarG,
		FatG:          req.FatG,
		SaturatedFatG: req.SaturatedFatG,
		FiberG:        req.FiberG,
		SodiumMg:      req.SodiumMg,
		CalciumMg:     req.CalciumMg,
		IronMg:        req.IronMg,
		VitaminCMg:    req.VitaminCMg,
		VitaminDMcg:   req.VitaminDMcg,
		Confidence:    confidence,
		Source:        req.Source,
	}
	if req.Extra != nil {
		p.Extra = datatypes.JSONMap(req.Extra)
	}
	if err := profileOf(p).Validate(); err != nil {
		return nil, validation("%v", err)
	}
	return p, nil
}

func (s *foodService) Create(ctx context.Context, req dto.CreateFoodRequest) (*dto.FoodResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validation("name is required")
	}
	if req.ServingSizeG != nil && *req.ServingSizeG <= 0 {
		return nil, validation("serving_size_g must be positive")
	}

	f := &model.Food{
		Name:         name,
		CategoryName: req.CategoryName,
		Brand:        req.Brand,
		Barcode:      req.Barcode,
		ServingSizeG: req.ServingSizeG,
		IsVerified:   req.IsVerified,
	}
	var profile *model.NutrientProfile
	if req.Profile != nil {
		p, err := profileFromRequest(uuid.Nil, *req.Profile)
		if err != nil {
			return nil, err
		}
		profile = p
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	if profile != nil {
		profile.FoodID = f.ID
		if err := s.repo.UpsertProfile(ctx, profile); err != nil {
			return nil, err
		}
		f.Profile = profile
	}
	resp := mapFood(*f)
	return &resp, nil
}

func (s *foodService) Get(ctx context.Context, id uuid.UUID) (*dto.FoodResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "food")
	}
	resp := mapFood(*f)
	return &resp, nil
}

func (s *foodService) GetByBarcode(ctx context.Context, barcode string) (*dto.FoodResponse, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, validation("barcode is required")
	}
	f, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, notFound(err, "food")
	}
	resp := mapFood(*f)
	return &resp, nil
}

func (s *foodService) List(ctx context.Context, filter dto.FoodFilter) (*dto.FoodListResponse, error) {
	filter.Page, filter.Limit = dto.NormalizePage(filter.Page, filter.Limit)
	foods, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.FoodResponse, 0, len(foods))
	for _, f := range foods {
		data = append(data, mapFood(f))
	}
	return &dto.FoodListResponse{
		Data:       data,
		Pagination: dto.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

func (s *foodService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateFoodRequest) (*dto.FoodResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "food")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, validation("name is required")
		}
		f.Name = name
	}
	if req.CategoryName != nil {
		f.CategoryName = *req.CategoryName
	}
	if req.Brand != nil {
		f.Brand = req.Brand
	}
	if req.Barcode != nil {
		f.Barcode = req.Barcode
	}
	if req.IsVerified != nil {
		f.IsVerified = *req.IsVerified
	}

	servingChanged := false
	switch {
	case req.ClearServing:
		servingChanged = f.ServingSizeG != nil
		f.ServingSizeG = nil
	case req.ServingSizeG != nil:
		if *req.ServingSizeG <= 0 {
			return nil, validation("serving_size_g must be positive")
		}
		servingChanged = f.ServingSizeG == nil || *f.ServingSizeG != *req.ServingSizeG
		f.ServingSizeG = req.ServingSizeG
	}

	if err := s.repo.Update(ctx, f); err != nil {
		return nil, err
	}
	if servingChanged {
		if err := s.scheduleRefresh(ctx, f.ID); err != nil {
			return nil, err
		}
	}
	resp := mapFood(*f)
	return &resp, nil
}

func (s *foodService) Delete(ctx context.Context, id uuid.UUID) error {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFound(err, "food")
	}
	refs, err := s.repo.CountIngredientRefs(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return fmt.Errorf("food %q is used by %d ingredients: %w", f.Name, refs, ErrInUse)
	}
	return s.repo.Delete(ctx, id)
}

func (s *foodService) UpsertProfile(ctx context.Context, foodID uuid.UUID, req dto.NutrientProfileRequest) (*dto.FoodResponse, error) {
	f, err := s.repo.FindByID(ctx, foodID)
	if err != nil {
		return nil, notFound(err, "food")
	}
	p, err := profileFromRequest(foodID, req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpsertProfile(ctx, p); err != nil {
		return nil, err
	}
	f.Profile = p
	if err := s.scheduleRefresh(ctx, foodID); err != nil {
		return nil, err
	}
	resp := mapFood(*f)
	return &resp, nil
}

// scheduleRefresh marks every ingredient of the food as stale: it enqueues a
// refresh job, or runs the refresh inline when no queue is configured or the
// enqueue fails.
func (s *foodService) scheduleRefresh(ctx context.Context, foodID uuid.UUID) error {
	if s.queue != nil {
		err := s.queue.EnqueueNutritionRefresh(ctx, foodID)
		if err == nil {
			return nil
		}
		log.Warn().Err(err).Str("food_id", foodID.String()).Msg("food: enqueue failed, refreshing inline")
	}
	n, err := s.nutrition.RefreshFood(ctx, foodID)
	if err != nil {
		return fmt.Errorf("refresh recipes using food %s: %w", foodID, err)
	}
	log.Debug().Str("food_id", foodID.String()).Int("recipes", n).Msg("food: recipes refreshed inline")
	return nil
}
