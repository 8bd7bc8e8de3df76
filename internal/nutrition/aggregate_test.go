package nutrition_test

import (
	"testing"

	"recipebox/internal/nutrition"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contribution(kcal, protein int64) nutrition.Contribution {
	return nutrition.Contribution{
		Calories: decimal.NewFromInt(kcal),
		ProteinG: decimal.NewFromInt(protein),
	}
}

func TestPerServingDividesTotals(t *testing.T) {
	lines := []nutrition.Contribution{contribution(1820, 50), contribution(0, 0), contribution(100, 7)}

	for _, servings := range []int{1, 3, 4, 7} {
		snap, err := nutrition.PerServing(lines, servings)
		require.NoError(t, err)

		s := decimal.NewFromInt(int64(servings))
		assert.True(t, snap.Total.Calories.Equal(decimal.NewFromInt(1920)))
		assert.True(t, snap.PerServing.Calories.Equal(snap.Total.Calories.Div(s)), "servings=%d", servings)
		assert.True(t, snap.PerServing.ProteinG.Equal(snap.Total.ProteinG.Div(s)), "servings=%d", servings)
		assert.True(t, snap.PerServing.SodiumMg.IsZero())
	}
}

func TestPerServingBreadScenario(t *testing.T) {
	flour := nutrition.Compute(nutrition.Line{Quantity: decimal.NewFromInt(500), Unit: nutrition.UnitGram}, flourProfile())

	snap, err := nutrition.PerServing([]nutrition.Contribution{flour}, 4)
	require.NoError(t, err)
	assert.True(t, snap.PerServing.Calories.Equal(decimal.NewFromInt(455)), snap.PerServing.Calories.String())
}

func TestPerServingIsIdempotent(t *testing.T) {
	lines := []nutrition.Contribution{contribution(333, 10), contribution(17, 2)}
	a, err := nutrition.PerServing(lines, 3)
	require.NoError(t, err)
	b, err := nutrition.PerServing(lines, 3)
	require.NoError(t, err)
	assert.Equal(t, a.PerServing.Calories.String(), b.PerServing.Calories.String())
	assert.Equal(t, a.PerServing.ProteinG.String(), b.PerServing.ProteinG.String())
}

func TestPerServingRejectsZeroServings(t *testing.T) {
	_, err := nutrition.PerServing(nil, 0)
	assert.ErrorIs(t, err, nutrition.ErrInvalidServings)
}

func TestPerServingEmptyRecipe(t *testing.T) {
	snap, err := nutrition.PerServing(nil, 2)
	require.NoError(t, err)
	assert.True(t, snap.PerServing.IsZero())
}
