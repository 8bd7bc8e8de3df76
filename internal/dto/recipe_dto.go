package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Request DTOs ──────────────────────────────────────────────────────────────

type CreateRecipeRequest struct {
	Name            string                  `json:"name"              validate:"required,min=2,max=200"`
	Description     *string                 `json:"description"`
	Servings        int                     `json:"servings"          validate:"required,min=1,max=500"`
	PrepTimeMinutes int                     `json:"prep_time_minutes" validate:"min=0"`
	CookTimeMinutes int                     `json:"cook_time_minutes" validate:"min=0"`
	Difficulty      string                  `json:"difficulty"        validate:"omitempty,oneof=easy medium hard"`
	Cuisine         string                  `json:"cuisine"`
	CategoryID      *string                 `json:"category_id"       validate:"omitempty,uuid"`
	IsPublic        bool                    `json:"is_public"`
	Tags            []string                `json:"tags"`
	DietTypes       []string                `json:"diet_types"`
	Allergens       []string                `json:"allergens"`
	Ingredients     []AddIngredientRequest  `json:"ingredients"       validate:"dive"`
	Instructions    []AddInstructionRequest `json:"instructions"      validate:"dive"`
}

type UpdateRecipeRequest struct {
	Name            *string   `json:"name"              validate:"omitempty,min=2,max=200"`
	Description     *string   `json:"description"`
	Servings        *int      `json:"servings"          validate:"omitempty,min=1,max=500"`
	PrepTimeMinutes *int      `json:"prep_time_minutes" validate:"omitempty,min=0"`
	CookTimeMinutes *int      `json:"cook_time_minutes" validate:"omitempty,min=0"`
	Difficulty      *string   `json:"difficulty"        validate:"omitempty,oneof=easy medium hard"`
	Cuisine         *string   `json:"cuisine"`
	CategoryID      *string   `json:"category_id"       validate:"omitempty,uuid"`
	ClearCategory   bool      `json:"clear_category"`
	IsPublic        *bool     `json:"is_public"`
	Tags            *[]string `json:"tags"`
	DietTypes       *[]string `json:"diet_types"`
	Allergens       *[]string `json:"allergens"`
}

type AddIngredientRequest struct {
	FoodID      string          `json:"food_id"     validate:"required,uuid"`
	Quantity    decimal.Decimal `json:"quantity"    validate:"required,gt=0"`
	Unit        string          `json:"unit"        validate:"required"`
	Preparation *string         `json:"preparation"`
	GroupLabel  *string         `json:"group_label"`
	SortOrder   *int            `json:"sort_order"`
}

type UpdateIngredientRequest struct {
	FoodID      *string          `json:"food_id"     validate:"omitempty,uuid"`
	Quantity    *decimal.Decimal `json:"quantity"    validate:"omitempty,gt=0"`
	Unit        *string          `json:"unit"`
	Preparation *string          `json:"preparation"`
	GroupLabel  *string          `json:"group_label"`
	SortOrder   *int             `json:"sort_order"`
}

type AddInstructionRequest struct {
	StepNumber      *int     `json:"step_number"      validate:"omitempty,min=1"`
	Description     string   `json:"description"      validate:"required,min=1"`
	DurationMinutes *int     `json:"duration_minutes" validate:"omitempty,min=0"`
	TemperatureC    *int     `json:"temperature_c"`
	Technique       *string  `json:"technique"`
	GroupLabel      *string  `json:"group_label"`
	Equipment       []string `json:"equipment"`
}

type UpdateInstructionRequest struct {
	StepNumber      *int      `json:"step_number"      validate:"omitempty,min=1"`
	Description     *string   `json:"description"      validate:"omitempty,min=1"`
	DurationMinutes *int      `json:"duration_minutes" validate:"omitempty,min=0"`
	TemperatureC    *int      `json:"temperature_c"`
	Technique       *string   `json:"technique"`
	GroupLabel      *string   `json:"group_label"`
	Equipment       *[]string `json:"equipment"`
}

// AddImageRequest takes either a hosted URL or a base64 data URI
// ("data:image/jpeg;base64,...") that is uploaded to the image store.
type AddImageRequest struct {
	URL       *string `json:"url"       validate:"omitempty,url"`
	Data      *string `json:"data"`
	Caption   *string `json:"caption"`
	IsPrimary bool    `json:"is_primary"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type RecipeFilter struct {
	Query           string `form:"q"`
	CategoryID      string `form:"category_id"     validate:"omitempty,uuid"`
	Tag             string `form:"tag"`
	DietType        string `form:"diet_type"`
	ExcludeAllergen string `form:"exclude_allergen"`
	Mine            bool   `form:"mine"`
	MaxCalories     *int   `form:"max_calories"    validate:"omitempty,min=0"`
	Sort            string `form:"sort"            validate:"omitempty,oneof=name created_at updated_at calories servings"`
	Order           string `form:"order"           validate:"omitempty,oneof=asc desc"`
	Page            int    `form:"page,default=1"   validate:"min=1"`
	Limit           int    `form:"limit,default=20" validate:"min=1,max=100"`

	// Set by the handler from the caller's identity, never from the query.
	CallerID string `form:"-"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type NutrientsResponse struct {
	Calories decimal.Decimal `json:"calories"`
	ProteinG decimal.Decimal `json:"protein_g"`
	CarbsG   decimal.Decimal `json:"carbs_g"`
	FatG     decimal.Decimal `json:"fat_g"`
	FiberG   decimal.Decimal `json:"fiber_g"`
	SugarG   decimal.Decimal `json:"sugar_g"`
	SodiumMg decimal.Decimal `json:"sodium_mg"`
}

type RecipeResponse struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	Description        *string           `json:"description,omitempty"`
	Servings           int               `json:"servings"`
	PrepTimeMinutes    int               `json:"prep_time_minutes"`
	CookTimeMinutes    int               `json:"cook_time_minutes"`
	Difficulty         string            `json:"difficulty,omitempty"`
	Cuisine            string            `json:"cuisine,omitempty"`
	CategoryID         *string           `json:"category_id"`
	CreatedBy          string            `json:"created_by"`
	IsPublic           bool              `json:"is_public"`
	Tags               []string          `json:"tags"`
	DietTypes          []string          `json:"diet_types"`
	Allergens          []string          `json:"allergens"`
	PerServing         NutrientsResponse `json:"nutrition_per_serving"`
	NutritionUpdatedAt *time.Time        `json:"nutrition_updated_at,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

type IngredientResponse struct {
	ID          string            `json:"id"`
	RecipeID    string            `json:"recipe_id"`
	FoodID      string            `json:"food_id"`
	FoodName    string            `json:"food_name,omitempty"`
	Quantity    decimal.Decimal   `json:"quantity"`
	Unit        string            `json:"unit"`
	Preparation *string           `json:"preparation,omitempty"`
	GroupLabel  *string           `json:"group_label,omitempty"`
	SortOrder   int               `json:"sort_order"`
	Calculated  NutrientsResponse `json:"nutrition"`
}

type InstructionResponse struct {
	ID              string   `json:"id"`
	StepNumber      int      `json:"step_number"`
	Description     string   `json:"description"`
	DurationMinutes *int     `json:"duration_minutes,omitempty"`
	TemperatureC    *int     `json:"temperature_c,omitempty"`
	Technique       *string  `json:"technique,omitempty"`
	GroupLabel      *string  `json:"group_label,omitempty"`
	Equipment       []string `json:"equipment"`
}

type ImageResponse struct {
	ID        string  `json:"id"`
	URL       string  `json:"url"`
	Caption   *string `json:"caption,omitempty"`
	IsPrimary bool    `json:"is_primary"`
	SortOrder int     `json:"sort_order"`
}

type RecipeDetailResponse struct {
	RecipeResponse
	Ingredients  []IngredientResponse  `json:"ingredients"`
	Instructions []InstructionResponse `json:"instructions"`
	Images       []ImageResponse       `json:"images"`
}

type RecipeListResponse struct {
	Data       []RecipeResponse `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

type RecipeNutritionResponse struct {
	RecipeID    string               `json:"recipe_id"`
	Servings    int                  `json:"servings"`
	PerServing  NutrientsResponse    `json:"per_serving"`
	Total       NutrientsResponse    `json:"total"`
	Ingredients []IngredientResponse `json:"ingredients"`
}
