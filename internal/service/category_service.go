package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"recipebox/internal/categorytree"
	"recipebox/internal/dto"
	"recipebox/internal/model"
	"recipebox/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const treeCacheKey = "categories:tree"

// CategoryService manages the recipe category tree.
type CategoryService interface {
	Create(ctx context.Context, req dto.CreateCategoryRequest) (dto.CategoryResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (dto.CategoryResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (dto.CategoryResponse, error)
	GetBySlug(ctx context.Context, slug string) (dto.CategoryResponse, error)
	List(ctx context.Context) ([]dto.CategoryResponse, error)
	Tree(ctx context.Context) ([]dto.CategoryTreeNode, error)
	Breadcrumb(ctx context.Context, id uuid.UUID) ([]dto.CategoryResponse, error)
	Children(ctx context.Context, id uuid.UUID) ([]dto.CategoryResponse, error)
	RefreshRecipeCount(ctx context.Context, id uuid.UUID) error
	// RepairPaths recomputes path and level of every category from the
	// parent chain and persists the stale ones. Returns how many were fixed.
	RepairPaths(ctx context.Context) (int, error)
}

type categoryService struct {
	repo     repository.CategoryRepository
	recipes  repository.RecipeRepository
	rdb      *redis.Client
	cacheTTL time.Duration
}

// NewCategoryService builds the service. rdb may be nil, which disables the
// tree cache.
func NewCategoryService(
	repo repository.CategoryRepository,
	recipes repository.RecipeRepository,
	rdb *redis.Client,
	cacheTTL time.Duration,
) CategoryService {
	return &categoryService{repo: repo, recipes: recipes, rdb: rdb, cacheTTL: cacheTTL}
}

func mapCategory(c model.RecipeCategory) dto.CategoryResponse {
	var parentID *string
	if c.ParentID != nil {
		s := c.ParentID.String()
		parentID = &s
	}
	return dto.CategoryResponse{
		ID:          c.ID.String(),
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		ParentID:    parentID,
		Level:       c.Level,
		Path:        c.Path,
		SortOrder:   c.SortOrder,
		IsActive:    c.IsActive,
		RecipeCount: c.RecipeCount,
	}
}

func mapCategories(list []model.RecipeCategory) []dto.CategoryResponse {
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, mapCategory(c))
	}
	return out
}

func mapTree(nodes []*categorytree.Node) []dto.CategoryTreeNode {
	out := make([]dto.CategoryTreeNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, dto.CategoryTreeNode{
			CategoryResponse: mapCategory(n.Category),
			Children:         mapTree(n.Children),
		})
	}
	return out
}

// ensureSlugFree fails with ErrDuplicateSlug when slug belongs to a category
// other than self.
func (s *categoryService) ensureSlugFree(ctx context.Context, slug string, self uuid.UUID) error {
	existing, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if existing != nil && existing.ID != self {
		return fmt.Errorf("slug %q: %w", slug, ErrDuplicateSlug)
	}
	return nil
}

func (s *categoryService) Create(ctx context.Context, req dto.CreateCategoryRequest) (dto.CategoryResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return dto.CategoryResponse{}, validation("name is required")
	}
	source := name
	if req.Slug != nil && strings.TrimSpace(*req.Slug) != "" {
		source = *req.Slug
	}
	slug := categorytree.Slugify(source)
	if slug == "" {
		return dto.CategoryResponse{}, validation("slug %q has no usable characters", source)
	}
	if err := s.ensureSlugFree(ctx, slug, uuid.Nil); err != nil {
		return dto.CategoryResponse{}, err
	}

	var parent *model.RecipeCategory
	if req.ParentID != nil {
		pid, err := uuid.Parse(*req.ParentID)
		if err != nil {
			return dto.CategoryResponse{}, validation("parent_id: %v", err)
		}
		parent, err = s.repo.FindByID(ctx, pid)
		if err != nil {
			return dto.CategoryResponse{}, notFound(err, "parent category")
		}
		if parent.Level >= categorytree.MaxLevel {
			return dto.CategoryResponse{}, fmt.Errorf("parent %q is at level %d: %w", parent.Slug, parent.Level, ErrMaxDepthExceeded)
		}
	}

	c := &model.RecipeCategory{
		Name:        name,
		Slug:        slug,
		Description: req.Description,
		SortOrder:   req.SortOrder,
		IsActive:    true,
	}
	if parent != nil {
		c.ParentID = &parent.ID
	}
	c.Path, c.Level = categorytree.Placement(parent, slug)

	if err := s.repo.Create(ctx, c); err != nil {
		return dto.CategoryResponse{}, err
	}
	s.invalidateTree(ctx)
	return mapCategory(*c), nil
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (dto.CategoryResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.CategoryResponse{}, notFound(err, "category")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return dto.CategoryResponse{}, validation("name is required")
		}
		c.Name = name
	}
	if req.Description != nil {
		c.Description = req.Description
	}
	if req.SortOrder != nil {
		c.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	placementChanged := false
	if req.Slug != nil {
		slug := categorytree.Slugify(*req.Slug)
		if slug == "" {
			return dto.CategoryResponse{}, validation("slug %q has no usable characters", *req.Slug)
		}
		if slug != c.Slug {
			if err := s.ensureSlugFree(ctx, slug, c.ID); err != nil {
				return dto.CategoryResponse{}, err
			}
			c.Slug = slug
			placementChanged = true
		}
	}

	parent, moved, err := s.resolveNewParent(ctx, c, req)
	if err != nil {
		return dto.CategoryResponse{}, err
	}
	if moved {
		if parent == nil {
			c.ParentID = nil
		} else {
			c.ParentID = &parent.ID
		}
		placementChanged = true
	} else if placementChanged && c.ParentID != nil {
		parent, err = s.repo.FindByID(ctx, *c.ParentID)
		if err != nil {
			return dto.CategoryResponse{}, notFound(err, "parent category")
		}
	}

	if placementChanged {
		c.Path, c.Level = categorytree.Placement(parent, c.Slug)
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return dto.CategoryResponse{}, err
	}
	if placementChanged {
		if err := s.cascade(ctx, c); err != nil {
			s.invalidateTree(ctx)
			return dto.CategoryResponse{}, fmt.Errorf("cascade paths below %q: %w", c.Slug, err)
		}
	}
	s.invalidateTree(ctx)
	return mapCategory(*c), nil
}

// resolveNewParent returns the requested parent when the request moves c,
// after the cycle and depth checks. moved is false when the parent is unchanged.
func (s *categoryService) resolveNewParent(ctx context.Context, c *model.RecipeCategory, req dto.UpdateCategoryRequest) (*model.RecipeCategory, bool, error) {
	switch {
	case req.MoveToRoot:
		if c.ParentID == nil {
			return nil, false, nil
		}
		if err := s.checkSubtreeDepth(ctx, c.ID, 0); err != nil {
			return nil, false, err
		}
		return nil, true, nil
	case req.ParentID != nil:
		pid, err := uuid.Parse(*req.ParentID)
		if err != nil {
			return nil, false, validation("parent_id: %v", err)
		}
		if c.ParentID != nil && *c.ParentID == pid {
			return nil, false, nil
		}
		if pid == c.ID {
			return nil, false, fmt.Errorf("category %q cannot be its own parent: %w", c.Slug, ErrCircularReference)
		}
		parent, err := s.repo.FindByID(ctx, pid)
		if err != nil {
			return nil, false, notFound(err, "parent category")
		}

		all, err := s.repo.ListAll(ctx)
		if err != nil {
			return nil, false, err
		}
		idx := categorytree.NewIndex(all)
		if idx.WouldCycle(c.ID, pid) {
			return nil, false, fmt.Errorf("%q is below %q: %w", parent.Slug, c.Slug, ErrCircularReference)
		}
		if parent.Level+1+idx.Height(c.ID) > categorytree.MaxLevel {
			return nil, false, fmt.Errorf("moving %q under %q: %w", c.Slug, parent.Slug, ErrMaxDepthExceeded)
		}
		return parent, true, nil
	}
	return nil, false, nil
}

func (s *categoryService) checkSubtreeDepth(ctx context.Context, id uuid.UUID, newLevel int) error {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return err
	}
	if newLevel+categorytree.NewIndex(all).Height(id) > categorytree.MaxLevel {
		return ErrMaxDepthExceeded
	}
	return nil
}

// cascade rewrites path and level of every descendant of parent, top down.
// It is not atomic; RepairPaths fixes whatever an interrupted run leaves.
func (s *categoryService) cascade(ctx context.Context, parent *model.RecipeCategory) error {
	seen := map[uuid.UUID]bool{parent.ID: true}
	var walk func(p *model.RecipeCategory, depth int) error
	walk = func(p *model.RecipeCategory, depth int) error {
		if depth > categorytree.MaxDepth {
			return nil
		}
		children, err := s.repo.FindChildren(ctx, p.ID)
		if err != nil {
			return err
		}
		for i := range children {
			ch := &children[i]
			if seen[ch.ID] {
				continue
			}
			seen[ch.ID] = true
			path, level := categorytree.Placement(p, ch.Slug)
			if ch.Path != path || ch.Level != level {
				if err := s.repo.UpdatePathLevel(ctx, ch.ID, path, level); err != nil {
					return err
				}
				ch.Path, ch.Level = path, level
			}
			if err := walk(ch, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(parent, 1)
}

func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFound(err, "category")
	}
	n, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("category %q has %d children: %w", c.Slug, n, ErrHasChildren)
	}
	used, err := s.recipes.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if used > 0 {
		return fmt.Errorf("category %q is used by %d recipes: %w", c.Slug, used, ErrInUse)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateTree(ctx)
	return nil
}

func (s *categoryService) Get(ctx context.Context, id uuid.UUID) (dto.CategoryResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.CategoryResponse{}, notFound(err, "category")
	}
	return mapCategory(*c), nil
}

func (s *categoryService) GetBySlug(ctx context.Context, slug string) (dto.CategoryResponse, error) {
	c, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return dto.CategoryResponse{}, notFound(err, "category")
	}
	return mapCategory(*c), nil
}

func (s *categoryService) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapCategories(list), nil
}

func (s *categoryService) Tree(ctx context.Context) ([]dto.CategoryTreeNode, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, treeCacheKey).Bytes(); err == nil {
			var tree []dto.CategoryTreeNode
			if jsonErr := json.Unmarshal(cached, &tree); jsonErr == nil {
				return tree, nil
			}
		}
	}

	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	tree := mapTree(categorytree.Build(all))

	if s.rdb != nil {
		if b, jsonErr := json.Marshal(tree); jsonErr == nil {
			if err := s.rdb.Set(ctx, treeCacheKey, b, s.cacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("category tree: cache write failed")
			}
		}
	}
	return tree, nil
}

func (s *categoryService) invalidateTree(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, treeCacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("category tree: cache invalidation failed")
	}
}

// Breadcrumb returns the ancestors of id, oldest first, followed by id itself.
func (s *categoryService) Breadcrumb(ctx context.Context, id uuid.UUID) ([]dto.CategoryResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "category")
	}
	chain := []model.RecipeCategory{*c}
	seen := map[uuid.UUID]bool{c.ID: true}
	cur := c
	for i := 0; cur.ParentID != nil && i < categorytree.MaxDepth; i++ {
		if seen[*cur.ParentID] {
			break
		}
		parent, err := s.repo.FindByID(ctx, *cur.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break
			}
			return nil, err
		}
		seen[parent.ID] = true
		chain = append(chain, *parent)
		cur = parent
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return mapCategories(chain), nil
}

func (s *categoryService) Children(ctx context.Context, id uuid.UUID) ([]dto.CategoryResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, notFound(err, "category")
	}
	list, err := s.repo.FindChildren(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapCategories(list), nil
}

func (s *categoryService) RefreshRecipeCount(ctx context.Context, id uuid.UUID) error {
	n, err := s.recipes.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateRecipeCount(ctx, id, n); err != nil {
		return err
	}
	s.invalidateTree(ctx)
	return nil
}

func (s *categoryService) RepairPaths(ctx context.Context) (int, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	stale := categorytree.NewIndex(all).Recompute()
	for _, c := range stale {
		if err := s.repo.UpdatePathLevel(ctx, c.ID, c.Path, c.Level); err != nil {
			return 0, fmt.Errorf("repair %q: %w", c.Slug, err)
		}
		log.Info().Str("category", c.Slug).Str("path", c.Path).Int("level", c.Level).Msg("category path repaired")
	}
	if len(stale) > 0 {
		s.invalidateTree(ctx)
	}
	return len(stale), nil
}
