package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Food is a catalog entry that recipe ingredients point at.
// ServingSizeG is the weight of "one piece"; nil means the unit converter
// falls back to its defaults.
type Food struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string    `gorm:"index;not null"`
	CategoryName string
	Brand        *string
	Barcode      *string  `gorm:"index"`
	ServingSizeG *float64 `gorm:"column:serving_size_g"`
	IsVerified   bool     `gorm:"not null;default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Profile *NutrientProfile `gorm:"foreignKey:FoodID"`
}

func (Food) TableName() string { return "foods" }

// NutrientProfile holds per-100g amounts for one food (1:1 with Food).
type NutrientProfile struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FoodID        uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"`
	Calories      decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	ProteinG      decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	CarbohydrateG decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	SugarG        decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	FatG          decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	SaturatedFatG decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	FiberG        decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	SodiumMg      decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	CalciumMg     decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	IronMg        decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	VitaminCMg    decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	VitaminDMcg   decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	Confidence    decimal.Decimal `gorm:"type:decimal(3,2);not null;default:1"`
	Source        string
	// Extra carries nutrients outside the fixed set (potassium, zinc, ...).
	// Stored and returned as-is; not aggregated.
	Extra     datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (NutrientProfile) TableName() string { return "nutrient_profiles" }
