package nutrition_test

import (
	"testing"

	"recipebox/internal/nutrition"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

var allUnits = []nutrition.Unit{
	nutrition.UnitGram, nutrition.UnitKilogram, nutrition.UnitMilligram, nutrition.UnitOunce, nutrition.UnitPound,
	nutrition.UnitMilliliter, nutrition.UnitLiter, nutrition.UnitCup, nutrition.UnitTablespoon, nutrition.UnitTeaspoon,
	nutrition.UnitFluidOunce, nutrition.UnitPint, nutrition.UnitQuart, nutrition.UnitGallon,
	nutrition.UnitPiece, nutrition.UnitWhole, nutrition.UnitItem, nutrition.UnitSlice,
	nutrition.UnitClove, nutrition.UnitPinch, nutrition.UnitDash, nutrition.UnitCan, nutrition.UnitPackage,
}

func TestToGramsMassAndVolume(t *testing.T) {
	cases := []struct {
		unit nutrition.Unit
		qty  string
		want string
	}{
		{nutrition.UnitGram, "500", "500"},
		{nutrition.UnitKilogram, "1.5", "1500"},
		{nutrition.UnitMilligram, "250", "0.25"},
		{nutrition.UnitOunce, "2", "56.699"},
		{nutrition.UnitPound, "1", "453.592"},
		{nutrition.UnitMilliliter, "200", "200"},
		{nutrition.UnitLiter, "0.5", "500"},
		{nutrition.UnitCup, "2", "480"},
		{nutrition.UnitTablespoon, "3", "45"},
		{nutrition.UnitTeaspoon, "1", "5"},
		{nutrition.UnitFluidOunce, "1", "29.5735"},
		{nutrition.UnitGallon, "1", "3785.41"},
	}
	for _, tc := range cases {
		t.Run(string(tc.unit), func(t *testing.T) {
			got := nutrition.ToGrams(decimal.RequireFromString(tc.qty), tc.unit, nil)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s want %s", got, tc.want)
		})
	}
}

func TestToGramsCountUnitsUseServingSize(t *testing.T) {
	egg := ptr(50)

	got := nutrition.ToGrams(decimal.NewFromInt(3), nutrition.UnitPiece, egg)
	assert.True(t, got.Equal(decimal.NewFromInt(150)), got.String())

	got = nutrition.ToGrams(decimal.NewFromInt(2), nutrition.UnitSlice, ptr(400))
	assert.True(t, got.Equal(decimal.NewFromInt(80)), got.String())
}

func TestToGramsCountUnitsFallBackWithoutServingSize(t *testing.T) {
	got := nutrition.ToGrams(decimal.NewFromInt(2), nutrition.UnitPiece, nil)
	assert.True(t, got.Equal(decimal.NewFromInt(200)), got.String())

	got = nutrition.ToGrams(decimal.NewFromInt(2), nutrition.UnitSlice, nil)
	assert.True(t, got.Equal(decimal.NewFromInt(60)), got.String())

	// A zero serving size is treated as unknown.
	got = nutrition.ToGrams(decimal.NewFromInt(1), nutrition.UnitWhole, ptr(0))
	assert.True(t, got.Equal(decimal.NewFromInt(100)), got.String())
}

func TestToGramsFixedCountUnitsIgnoreServingSize(t *testing.T) {
	got := nutrition.ToGrams(decimal.NewFromInt(2), nutrition.UnitClove, ptr(999))
	assert.True(t, got.Equal(decimal.NewFromInt(10)), got.String())
}

func TestToGramsUnknownUnitIsFactorOne(t *testing.T) {
	got := nutrition.ToGrams(decimal.NewFromInt(7), nutrition.Unit("handful"), nil)
	assert.True(t, got.Equal(decimal.NewFromInt(7)), got.String())
}

func TestToGramsIsLinearInQuantity(t *testing.T) {
	quantities := []string{"0.25", "1", "3.5", "12", "500"}
	servings := []*float64{nil, ptr(50), ptr(33.3)}
	two := decimal.NewFromInt(2)

	for _, u := range allUnits {
		for _, s := range servings {
			for _, q := range quantities {
				qty := decimal.RequireFromString(q)
				single := nutrition.ToGrams(qty, u, s)
				double := nutrition.ToGrams(qty.Mul(two), u, s)
				assert.True(t, double.Equal(single.Mul(two)), "unit=%s q=%s", u, q)
			}
		}
	}
}

func TestParseUnit(t *testing.T) {
	u, err := nutrition.ParseUnit("  TBSP ")
	require.NoError(t, err)
	assert.Equal(t, nutrition.UnitTablespoon, u)

	u, err = nutrition.ParseUnit("grams")
	require.NoError(t, err)
	assert.Equal(t, nutrition.UnitGram, u)

	_, err = nutrition.ParseUnit("handful")
	assert.ErrorIs(t, err, nutrition.ErrUnknownUnit)
}

func TestUnitKind(t *testing.T) {
	assert.Equal(t, nutrition.KindMass, nutrition.UnitOunce.Kind())
	assert.Equal(t, nutrition.KindVolume, nutrition.UnitQuart.Kind())
	assert.Equal(t, nutrition.KindCount, nutrition.UnitSlice.Kind())
	assert.Equal(t, nutrition.KindCount, nutrition.UnitPinch.Kind())
	assert.Equal(t, nutrition.KindUnknown, nutrition.Unit("bushel").Kind())
	assert.Equal(t, "volume", nutrition.KindVolume.String())
}
