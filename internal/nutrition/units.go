// Package nutrition converts ingredient quantities into grams and derives
// nutrient contributions and per-serving snapshots from per-100g profiles.
// Everything here is pure; loading and persisting lives in the service layer.
package nutrition

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Unit is a measurement unit accepted on a recipe ingredient.
type Unit string

const (
	// Mass
	UnitGram      Unit = "g"
	UnitKilogram  Unit = "kg"
	UnitMilligram Unit = "mg"
	UnitOunce     Unit = "oz"
	UnitPound     Unit = "lb"

	// Volume (converted with a flat 1 ml ≈ 1 g density)
	UnitMilliliter Unit = "ml"
	UnitLiter      Unit = "l"
	UnitCup        Unit = "cup"
	UnitTablespoon Unit = "tbsp"
	UnitTeaspoon   Unit = "tsp"
	UnitFluidOunce Unit = "fl_oz"
	UnitPint       Unit = "pt"
	UnitQuart      Unit = "qt"
	UnitGallon     Unit = "gal"

	// Count
	UnitPiece   Unit = "piece"
	UnitWhole   Unit = "whole"
	UnitItem    Unit = "item"
	UnitSlice   Unit = "slice"
	UnitClove   Unit = "clove"
	UnitPinch   Unit = "pinch"
	UnitDash    Unit = "dash"
	UnitCan     Unit = "can"
	UnitPackage Unit = "package"
)

// Kind groups units by how they are converted.
type Kind int

const (
	KindUnknown Kind = iota
	KindMass
	KindVolume
	KindCount
)

func (k Kind) String() string {
	switch k {
	case KindMass:
		return "mass"
	case KindVolume:
		return "volume"
	case KindCount:
		return "count"
	default:
		return "unknown"
	}
}

// ErrUnknownUnit is returned by ParseUnit for strings outside the enumeration.
var ErrUnknownUnit = errors.New("unknown unit")

var (
	gramsPerMass = map[Unit]decimal.Decimal{
		UnitGram:      decimal.NewFromInt(1),
		UnitKilogram:  decimal.NewFromInt(1000),
		UnitMilligram: decimal.RequireFromString("0.001"),
		UnitOunce:     decimal.RequireFromString("28.3495"),
		UnitPound:     decimal.RequireFromString("453.592"),
	}

	// Approximation: every liquid is treated as water.
	gramsPerVolume = map[Unit]decimal.Decimal{
		UnitMilliliter: decimal.NewFromInt(1),
		UnitLiter:      decimal.NewFromInt(1000),
		UnitCup:        decimal.NewFromInt(240),
		UnitTablespoon: decimal.NewFromInt(15),
		UnitTeaspoon:   decimal.NewFromInt(5),
		UnitFluidOunce: decimal.RequireFromString("29.5735"),
		UnitPint:       decimal.RequireFromString("473.176"),
		UnitQuart:      decimal.RequireFromString("946.353"),
		UnitGallon:     decimal.RequireFromString("3785.41"),
	}

	// Count units that do not scale with the food's serving size.
	gramsPerFixedCount = map[Unit]decimal.Decimal{
		UnitClove:   decimal.NewFromInt(5),
		UnitPinch:   decimal.RequireFromString("0.36"),
		UnitDash:    decimal.RequireFromString("0.6"),
		UnitCan:     decimal.NewFromInt(400),
		UnitPackage: decimal.NewFromInt(250),
	}

	defaultPieceGrams = decimal.NewFromInt(100)
	defaultSliceGrams = decimal.NewFromInt(30)
	slicesPerServing  = decimal.NewFromInt(10)
)

// Kind reports the conversion family of u.
func (u Unit) Kind() Kind {
	if _, ok := gramsPerMass[u]; ok {
		return KindMass
	}
	if _, ok := gramsPerVolume[u]; ok {
		return KindVolume
	}
	switch u {
	case UnitPiece, UnitWhole, UnitItem, UnitSlice:
		return KindCount
	}
	if _, ok := gramsPerFixedCount[u]; ok {
		return KindCount
	}
	return KindUnknown
}

// Valid reports whether u belongs to the enumeration.
func (u Unit) Valid() bool { return u.Kind() != KindUnknown }

// ParseUnit normalises s (case, surrounding spaces, a few common spellings)
// and rejects anything outside the enumeration.
func ParseUnit(s string) (Unit, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if alias, ok := unitAliases[norm]; ok {
		norm = string(alias)
	}
	u := Unit(norm)
	if !u.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
	}
	return u, nil
}

var unitAliases = map[string]Unit{
	"gram":        UnitGram,
	"grams":       UnitGram,
	"kilogram":    UnitKilogram,
	"kilograms":   UnitKilogram,
	"ounce":       UnitOunce,
	"ounces":      UnitOunce,
	"pound":       UnitPound,
	"pounds":      UnitPound,
	"lbs":         UnitPound,
	"milliliter":  UnitMilliliter,
	"milliliters": UnitMilliliter,
	"liter":       UnitLiter,
	"liters":      UnitLiter,
	"cups":        UnitCup,
	"tablespoon":  UnitTablespoon,
	"tablespoons": UnitTablespoon,
	"teaspoon":    UnitTeaspoon,
	"teaspoons":   UnitTeaspoon,
	"pieces":      UnitPiece,
	"pcs":         UnitPiece,
	"slices":      UnitSlice,
	"cloves":      UnitClove,
}

// ToGrams converts quantity of unit into grams. servingSizeG is the weight of
// one piece of the referenced food; nil or non-positive means "unknown" and the
// count defaults apply (100 g per piece, 30 g per slice).
//
// The result is linear in quantity. A unit outside the enumeration converts
// with factor 1; ParseUnit keeps such values out of new writes.
func ToGrams(quantity decimal.Decimal, unit Unit, servingSizeG *float64) decimal.Decimal {
	return quantity.Mul(GramsPerUnit(unit, servingSizeG))
}

// GramsPerUnit returns the grams represented by one unit.
func GramsPerUnit(unit Unit, servingSizeG *float64) decimal.Decimal {
	if f, ok := gramsPerMass[unit]; ok {
		return f
	}
	if f, ok := gramsPerVolume[unit]; ok {
		return f
	}
	if f, ok := gramsPerFixedCount[unit]; ok {
		return f
	}

	serving, hasServing := servingGrams(servingSizeG)
	switch unit {
	case UnitPiece, UnitWhole, UnitItem:
		if hasServing {
			return serving
		}
		return defaultPieceGrams
	case UnitSlice:
		if hasServing {
			return serving.Div(slicesPerServing)
		}
		return defaultSliceGrams
	}

	log.Warn().Str("unit", string(unit)).Msg("nutrition: unknown unit, using factor 1")
	return decimal.NewFromInt(1)
}

func servingGrams(servingSizeG *float64) (decimal.Decimal, bool) {
	if servingSizeG == nil || *servingSizeG <= 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(*servingSizeG), true
}
