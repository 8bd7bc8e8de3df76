package nutrition

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativeAmount  = errors.New("nutrient amount must not be negative")
	ErrConfidenceRange = errors.New("confidence must be between 0 and 1")
)

var hundred = decimal.NewFromInt(100)

// Profile is a per-100g nutrient table.
type Profile struct {
	Calories      decimal.Decimal
	ProteinG      decimal.Decimal
	CarbohydrateG decimal.Decimal
	SugarG        decimal.Decimal
	FatG          decimal.Decimal
	SaturatedFatG decimal.Decimal
	FiberG        decimal.Decimal
	SodiumMg      decimal.Decimal
	CalciumMg     decimal.Decimal
	IronMg        decimal.Decimal
	VitaminCMg    decimal.Decimal
	VitaminDMcg   decimal.Decimal
	Confidence    decimal.Decimal
}

// Scale multiplies every nutrient amount by factor. Confidence is carried over.
func (p Profile) Scale(factor decimal.Decimal) Profile {
	return Profile{
		Calories:      p.Calories.Mul(factor),
		ProteinG:      p.ProteinG.Mul(factor),
		CarbohydrateG: p.CarbohydrateG.Mul(factor),
		SugarG:        p.SugarG.Mul(factor),
		FatG:          p.FatG.Mul(factor),
		SaturatedFatG: p.SaturatedFatG.Mul(factor),
		FiberG:        p.FiberG.Mul(factor),
		SodiumMg:      p.SodiumMg.Mul(factor),
		CalciumMg:     p.CalciumMg.Mul(factor),
		IronMg:        p.IronMg.Mul(factor),
		VitaminCMg:    p.VitaminCMg.Mul(factor),
		VitaminDMcg:   p.VitaminDMcg.Mul(factor),
		Confidence:    p.Confidence,
	}
}

// ForGrams scales the per-100g table to an absolute amount of food.
func (p Profile) ForGrams(grams decimal.Decimal) Profile {
	return p.Scale(grams.Div(hundred))
}

// Contribution keeps the nutrients tracked on ingredients and recipes.
func (p Profile) Contribution() Contribution {
	return Contribution{
		Calories: p.Calories,
		ProteinG: p.ProteinG,
		CarbsG:   p.CarbohydrateG,
		FatG:     p.FatG,
		FiberG:   p.FiberG,
		SugarG:   p.SugarG,
		SodiumMg: p.SodiumMg,
	}
}

// Validate checks that no amount is negative and confidence is in [0,1].
func (p Profile) Validate() error {
	amounts := []struct {
		name string
		v    decimal.Decimal
	}{
		{"calories", p.Calories},
		{"protein_g", p.ProteinG},
		{"carbohydrate_g", p.CarbohydrateG},
		{"sugar_g", p.SugarG},
		{"fat_g", p.FatG},
		{"saturated_fat_g", p.SaturatedFatG},
		{"fiber_g", p.FiberG},
		{"sodium_mg", p.SodiumMg},
		{"calcium_mg", p.CalciumMg},
		{"iron_mg", p.IronMg},
		{"vitamin_c_mg", p.VitaminCMg},
		{"vitamin_d_mcg", p.VitaminDMcg},
	}
	for _, a := range amounts {
		if a.v.IsNegative() {
			return fmt.Errorf("%s: %w", a.name, ErrNegativeAmount)
		}
	}
	if p.Confidence.IsNegative() || p.Confidence.GreaterThan(decimal.NewFromInt(1)) {
		return ErrConfidenceRange
	}
	return nil
}
