package infra

// pdf.go: printable recipe cards using go-pdf/fpdf.
// An A5 card carries:
//   - Recipe name and servings/time line
//   - Ingredient table (food, quantity, unit)
//   - Numbered method steps
//   - Per-serving nutrition box
//
// The PDF is streamed to the caller's writer; nothing is stored on disk.

import (
	"fmt"
	"io"

	"recipebox/internal/dto"

	"github.com/go-pdf/fpdf"
)

// RenderRecipeCard writes a one-recipe PDF to w.
func RenderRecipeCard(w io.Writer, recipe *dto.RecipeDetailResponse) error {
	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(contentW, 8, tr(recipe.Name), "", "L", false)

	pdf.SetFont("Helvetica", "", 8)
	meta := fmt.Sprintf("Serves %d", recipe.Servings)
	if total := recipe.PrepTimeMinutes + recipe.CookTimeMinutes; total > 0 {
		meta += fmt.Sprintf("  |  %d min", total)
	}
	if recipe.Difficulty != "" {
		meta += "  |  " + recipe.Difficulty
	}
	pdf.CellFormat(contentW, 5, meta, "", 1, "L", false, 0, "")
	if recipe.Description != nil && *recipe.Description != "" {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(contentW, 4, tr(*recipe.Description), "", "L", false)
	}
	pdf.Ln(2)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(3)

	// ── Ingredients ──────────────────────────────────────────────────────────
	col1 := contentW * 0.60 // food
	col2 := contentW * 0.22 // quantity
	col3 := contentW * 0.18 // unit

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Ingredients", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	for _, ing := range recipe.Ingredients {
		name := ing.FoodName
		if ing.Preparation != nil && *ing.Preparation != "" {
			name += ", " + *ing.Preparation
		}
		if r := []rune(name); len(r) > 48 {
			name = string(r[:47]) + "..."
		}
		pdf.CellFormat(col1, 5, tr(name), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, ing.Quantity.String(), "", 0, "R", false, 0, "")
		pdf.CellFormat(col3, 5, ing.Unit, "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// ── Method ───────────────────────────────────────────────────────────────
	if len(recipe.Instructions) > 0 {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW, 6, "Method", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		for _, st := range recipe.Instructions {
			pdf.MultiCell(contentW, 4, tr(fmt.Sprintf("%d. %s", st.StepNumber, st.Description)), "", "L", false)
			pdf.Ln(1)
		}
		pdf.Ln(2)
	}

	// ── Nutrition per serving ────────────────────────────────────────────────
	n := recipe.PerServing
	rows := []struct {
		label string
		value string
	}{
		{"Calories", n.Calories.StringFixed(0) + " kcal"},
		{"Protein", n.ProteinG.StringFixed(1) + " g"},
		{"Carbohydrate", n.CarbsG.StringFixed(1) + " g"},
		{"  of which sugars", n.SugarG.StringFixed(1) + " g"},
		{"Fat", n.FatG.StringFixed(1) + " g"},
		{"Fiber", n.FiberG.StringFixed(1) + " g"},
		{"Sodium", n.SodiumMg.StringFixed(0) + " mg"},
	}
	boxW := contentW * 0.6
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(boxW, 6, "Nutrition per serving", "1", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	for _, r := range rows {
		pdf.CellFormat(boxW*0.6, 5, r.label, "L", 0, "L", false, 0, "")
		pdf.CellFormat(boxW*0.4, 5, r.value, "R", 1, "R", false, 0, "")
	}
	pdf.CellFormat(boxW, 0, "", "T", 1, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: render card: %w", err)
	}
	return nil
}
