package nutrition

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidServings is returned when a recipe has fewer than one serving.
var ErrInvalidServings = errors.New("servings must be at least 1")

// Snapshot is the derived nutrition state of a recipe.
type Snapshot struct {
	Servings   int
	Total      Contribution
	PerServing Contribution
}

// Sum folds contributions into their total. Zero-valued entries (missing data)
// count as 0.
func Sum(lines []Contribution) Contribution {
	var total Contribution
	for _, c := range lines {
		total = total.Add(c)
	}
	return total
}

// PerServing sums lines and divides the total by servings.
func PerServing(lines []Contribution, servings int) (Snapshot, error) {
	if servings < 1 {
		return Snapshot{}, ErrInvalidServings
	}
	total := Sum(lines)
	return Snapshot{
		Servings:   servings,
		Total:      total,
		PerServing: total.Div(decimal.NewFromInt(int64(servings))),
	}, nil
}
