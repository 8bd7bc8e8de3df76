package nutrition

import "github.com/shopspring/decimal"

// Contribution is the absolute amount of the tracked nutrients contributed by
// one ingredient line (or, divided by servings, one portion of a recipe).
type Contribution struct {
	Calories decimal.Decimal
	ProteinG decimal.Decimal
	CarbsG   decimal.Decimal
	FatG     decimal.Decimal
	FiberG   decimal.Decimal
	SugarG   decimal.Decimal
	SodiumMg decimal.Decimal
}

// Add returns the field-wise sum of c and o.
func (c Contribution) Add(o Contribution) Contribution {
	return Contribution{
		Calories: c.Calories.Add(o.Calories),
		ProteinG: c.ProteinG.Add(o.ProteinG),
		CarbsG:   c.CarbsG.Add(o.CarbsG),
		FatG:     c.FatG.Add(o.FatG),
		FiberG:   c.FiberG.Add(o.FiberG),
		SugarG:   c.SugarG.Add(o.SugarG),
		SodiumMg: c.SodiumMg.Add(o.SodiumMg),
	}
}

// Div divides every field by d. d must be non-zero.
func (c Contribution) Div(d decimal.Decimal) Contribution {
	return Contribution{
		Calories: c.Calories.Div(d),
		ProteinG: c.ProteinG.Div(d),
		CarbsG:   c.CarbsG.Div(d),
		FatG:     c.FatG.Div(d),
		FiberG:   c.FiberG.Div(d),
		SugarG:   c.SugarG.Div(d),
		SodiumMg: c.SodiumMg.Div(d),
	}
}

// Round rounds every field to places decimal places (storage precision).
func (c Contribution) Round(places int32) Contribution {
	return Contribution{
		Calories: c.Calories.Round(places),
		ProteinG: c.ProteinG.Round(places),
		CarbsG:   c.CarbsG.Round(places),
		FatG:     c.FatG.Round(places),
		FiberG:   c.FiberG.Round(places),
		SugarG:   c.SugarG.Round(places),
		SodiumMg: c.SodiumMg.Round(places),
	}
}

func (c Contribution) IsZero() bool {
	return c.Calories.IsZero() && c.ProteinG.IsZero() && c.CarbsG.IsZero() &&
		c.FatG.IsZero() && c.FiberG.IsZero() && c.SugarG.IsZero() && c.SodiumMg.IsZero()
}

// Line is the input of Compute: one ingredient as written by the caller.
type Line struct {
	Quantity     decimal.Decimal
	Unit         Unit
	ServingSizeG *float64
}

// Compute returns the nutrients contributed by line. A nil profile yields a
// zero contribution: missing data degrades instead of failing the recipe.
func Compute(line Line, profile *Profile) Contribution {
	if profile == nil {
		return Contribution{}
	}
	grams := ToGrams(line.Quantity, line.Unit, line.ServingSizeG)
	return profile.ForGrams(grams).Contribution()
}
