package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Recipe is the aggregate root. The *PerServing fields are a cached snapshot
// derived from the ingredient list and Servings; NutritionService owns them.
type Recipe struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name            string    `gorm:"index;not null"`
	Description     *string
	Servings        int `gorm:"not null;default:1"`
	PrepTimeMinutes int `gorm:"not null;default:0"`
	CookTimeMinutes int `gorm:"not null;default:0"`
	Difficulty      string
	Cuisine         string
	CategoryID      *uuid.UUID     `gorm:"type:uuid;index"`
	CreatedBy       string         `gorm:"index;not null"`
	IsPublic        bool           `gorm:"not null;default:false"`
	Tags            pq.StringArray `gorm:"type:text[]"`
	DietTypes       pq.StringArray `gorm:"type:text[]"`
	Allergens       pq.StringArray `gorm:"type:text[]"`

	CaloriesPerServing decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	ProteinPerServingG decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	CarbsPerServingG   decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	FatPerServingG     decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	FiberPerServingG   decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	SugarPerServingG   decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	SodiumPerServingMg decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	NutritionUpdatedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Recipe) TableName() string { return "recipes" }

// RecipeIngredient is one line of a recipe. The *Calculated fields are the
// absolute contribution of this line, computed at write time.
type RecipeIngredient struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RecipeID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	FoodID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	Unit        string          `gorm:"not null"`
	Preparation *string
	GroupLabel  *string
	SortOrder   int `gorm:"not null;default:0"`

	CaloriesCalculated decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	ProteinCalculatedG decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	CarbsCalculatedG   decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	FatCalculatedG     decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	FiberCalculatedG   decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	SugarCalculatedG   decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	SodiumCalculatedMg decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Food *Food `gorm:"foreignKey:FoodID"`
}

func (RecipeIngredient) TableName() string { return "recipe_ingredients" }

// RecipeInstruction is one numbered step; (recipe_id, step_number) is unique.
type RecipeInstruction struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RecipeID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_step"`
	StepNumber      int            `gorm:"not null;uniqueIndex:idx_recipe_step"`
	Description     string         `gorm:"type:text;not null"`
	DurationMinutes *int
	TemperatureC    *int
	Technique       *string
	GroupLabel      *string
	Equipment       pq.StringArray `gorm:"type:text[]"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (RecipeInstruction) TableName() string { return "recipe_instructions" }

type RecipeImage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RecipeID  uuid.UUID `gorm:"type:uuid;index;not null"`
	URL       string    `gorm:"not null"`
	Caption   *string
	IsPrimary bool `gorm:"not null;default:false"`
	SortOrder int  `gorm:"not null;default:0"`
	CreatedAt time.Time
}

func (RecipeImage) TableName() string { return "recipe_images" }
