package infra

import (
	"fmt"

	"recipebox/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens a GORM connection backed by pgx, migrates the schema and
// applies the idempotent SQL patches AutoMigrate cannot express.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates or updates every table and then applies the schema
// patches. Safe to run repeatedly.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Food{},
		&model.NutrientProfile{},
		&model.RecipeCategory{},
		&model.Recipe{},
		&model.RecipeIngredient{},
		&model.RecipeInstruction{},
		&model.RecipeImage{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL that GORM tags cannot describe:
// GIN indexes for array filters, a partial unique index enforcing a single
// primary image per recipe, and prefix lookups on category paths.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"gin index on recipes.tags",
			`CREATE INDEX IF NOT EXISTS idx_recipes_tags ON recipes USING GIN (tags)`},
		{"gin index on recipes.diet_types",
			`CREATE INDEX IF NOT EXISTS idx_recipes_diet_types ON recipes USING GIN (diet_types)`},
		{"gin index on recipes.allergens",
			`CREATE INDEX IF NOT EXISTS idx_recipes_allergens ON recipes USING GIN (allergens)`},
		{"one primary image per recipe",
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_recipe_images_primary
			    ON recipe_images (recipe_id) WHERE is_primary`},
		{"category path prefix index",
			`CREATE INDEX IF NOT EXISTS idx_recipe_categories_path_prefix
			    ON recipe_categories (path text_pattern_ops)`},
		{"non-negative servings", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_recipes_servings_positive') THEN
    ALTER TABLE recipes ADD CONSTRAINT chk_recipes_servings_positive CHECK (servings > 0);
  END IF;
END $$`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
