package model

import (
	"time"

	"github.com/google/uuid"
)

// RecipeCategory is a node of the category tree. ParentID is a plain id
// reference; Path and Level are derived from the ancestor chain's slugs.
type RecipeCategory struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string     `gorm:"not null"`
	Slug        string     `gorm:"uniqueIndex;not null"`
	Description *string
	ParentID    *uuid.UUID `gorm:"type:uuid;index"`
	Level       int        `gorm:"not null;default:0"`
	Path        string     `gorm:"index;not null"`
	SortOrder   int        `gorm:"not null;default:0"`
	IsActive    bool       `gorm:"not null;default:true"`
	RecipeCount int        `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (RecipeCategory) TableName() string { return "recipe_categories" }
