package dto

// ── Request DTOs ──────────────────────────────────────────────────────────────

type CreateCategoryRequest struct {
	Name        string  `json:"name"        validate:"required,min=1,max=100"`
	Slug        *string `json:"slug"        validate:"omitempty,max=100"`
	Description *string `json:"description"`
	ParentID    *string `json:"parent_id"   validate:"omitempty,uuid"`
	SortOrder   int     `json:"sort_order"`
}

// UpdateCategoryRequest changes only the fields that are set. MoveToRoot
// detaches the category from its parent.
type UpdateCategoryRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=1,max=100"`
	Slug        *string `json:"slug"        validate:"omitempty,max=100"`
	Description *string `json:"description"`
	ParentID    *string `json:"parent_id"   validate:"omitempty,uuid"`
	MoveToRoot  bool    `json:"move_to_root"`
	SortOrder   *int    `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

// ── Response DTOs ─────────────────────────────────────────────────────────────

type CategoryResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	ParentID    *string `json:"parent_id"`
	Level       int     `json:"level"`
	Path        string  `json:"path"`
	SortOrder   int     `json:"sort_order"`
	IsActive    bool    `json:"is_active"`
	RecipeCount int     `json:"recipe_count"`
}

type CategoryTreeNode struct {
	CategoryResponse
	Children []CategoryTreeNode `json:"children"`
}
