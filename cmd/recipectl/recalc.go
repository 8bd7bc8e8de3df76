package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var recalcRecipeID string

var recalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Recompute ingredient contributions and per-serving snapshots",
	Long: `Refreshes every ingredient's nutrition from its food's current profile and
re-aggregates the per-serving snapshot. With --recipe only that recipe is
recalculated from the stored ingredient contributions.`,
	Args: cobra.NoArgs,
	RunE: runRecalc,
}

func init() {
	recalcCmd.Flags().StringVar(&recalcRecipeID, "recipe", "", "Recipe ID (default: all recipes)")
}

func runRecalc(cmd *cobra.Command, args []string) error {
	var recipeID uuid.UUID
	if recalcRecipeID != "" {
		id, err := uuid.Parse(recalcRecipeID)
		if err != nil {
			return fmt.Errorf("invalid --recipe: %w", err)
		}
		recipeID = id
	}

	svcs, closeFn, err := openServices()
	if err != nil {
		return err
	}
	defer closeFn()
	ctx := cmd.Context()

	if recipeID != uuid.Nil {
		snap, err := svcs.Nutrition.Recalculate(ctx, recipeID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "recipe %s: %s kcal per serving\n", recipeID, snap.PerServing.Calories)
		return nil
	}

	n, err := svcs.Nutrition.RecalculateAll(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "recalculated %d recipes\n", n)
	return nil
}
