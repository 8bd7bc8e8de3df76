package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type NutrientProfileRequest struct {
	Calories      decimal.Decimal        `json:"calories"        validate:"min=0"`
	ProteinG      decimal.Decimal        `json:"protein_g"       validate:"min=0"`
	CarbohydrateG decimal.Decimal        `json:"carbohydrate_g"  validate:"min=0"`
	SugarG        decimal.Decimal        `json:"sugar_g"         validate:"min=0"`
	FatG          decimal.Decimal        `json:"fat_g"           validate:"min=0"`
	SaturatedFatG decimal.Decimal        `json:"saturated_fat_g" validate:"min=0"`
	FiberG        decimal.Decimal        `json:"fiber_g"         validate:"min=0"`
	SodiumMg      decimal.Decimal        `json:"sodium_mg"       validate:"min=0"`
	CalciumMg     decimal.Decimal        `json:"calcium_mg"      validate:"min=0"`
	IronMg        decimal.Decimal        `json:"iron_mg"         validate:"min=0"`
	VitaminCMg    decimal.Decimal        `json:"vitamin_c_mg"    validate:"min=0"`
	VitaminDMcg   decimal.Decimal        `json:"vitamin_d_mcg"   validate:"min=0"`
	Confidence    *decimal.Decimal       `json:"confidence"      validate:"omitempty,min=0,max=1"`
	Source        string                 `json:"source"`
	Extra         map[string]interface{} `json:"extra"`
}

type CreateFoodRequest struct {
	Name         string                  `json:"name"           validate:"required,min=1,max=200"`
	CategoryName string                  `json:"category"`
	Brand        *string                 `json:"brand"`
	Barcode      *string                 `json:"barcode"        validate:"omitempty,max=32"`
	ServingSizeG *float64                `json:"serving_size_g" validate:"omitempty,gt=0"`
	IsVerified   bool                    `json:"is_verified"`
	Profile      *NutrientProfileRequest `json:"profile"`
}

type UpdateFoodRequest struct {
	Name         *string  `json:"name"           validate:"omitempty,min=1,max=200"`
	CategoryName *string  `json:"category"`
	Brand        *string  `json:"brand"`
	Barcode      *string  `json:"barcode"        validate:"omitempty,max=32"`
	ServingSizeG *float64 `json:"serving_size_g" validate:"omitempty,gt=0"`
	ClearServing bool     `json:"clear_serving_size"`
	IsVerified   *bool    `json:"is_verified"`
}

type FoodFilter struct {
	Query        string `form:"q"`
	VerifiedOnly bool   `form:"verified"`
	Page         int    `form:"page,default=1"   validate:"min=1"`
	Limit        int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type NutrientProfileResponse struct {
	Calories      decimal.Decimal        `json:"calories"`
	ProteinG      decimal.Decimal        `json:"protein_g"`
	CarbohydrateG decimal.Decimal        `json:"carbohydrate_g"`
	SugarG        decimal.Decimal        `json:"sugar_g"`
	FatG          decimal.Decimal        `json:"fat_g"`
	SaturatedFatG decimal.Decimal        `json:"saturated_fat_g"`
	FiberG        decimal.Decimal        `json:"fiber_g"`
	SodiumMg      decimal.Decimal        `json:"sodium_mg"`
	CalciumMg     decimal.Decimal        `json:"calcium_mg"`
	IronMg        decimal.Decimal        `json:"iron_mg"`
	VitaminCMg    decimal.Decimal        `json:"vitamin_c_mg"`
	VitaminDMcg   decimal.Decimal        `json:"vitamin_d_mcg"`
	Confidence    decimal.Decimal        `json:"confidence"`
	Source        string                 `json:"source,omitempty"`
	Extra         map[string]interface{} `json:"extra,omitempty"`
}

type FoodResponse struct {
	ID           string                   `json:"id"`
	Name         string                   `json:"name"`
	CategoryName string                   `json:"category,omitempty"`
	Brand        *string                  `json:"brand,omitempty"`
	Barcode      *string                  `json:"barcode,omitempty"`
	ServingSizeG *float64                 `json:"serving_size_g"`
	IsVerified   bool                     `json:"is_verified"`
	Profile      *NutrientProfileResponse `json:"profile"`
}

type FoodListResponse struct {
	Data       []FoodResponse `json:"data"`
	Pagination Pagination     `json:"pagination"`
}
