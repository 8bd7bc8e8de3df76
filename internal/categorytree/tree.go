// Package categorytree holds the pure parts of the recipe category hierarchy:
// slugs, materialized paths, and an id index over flat category records used
// for ancestor walks, cycle checks, descendant cascades and tree building.
//
// The index holds ids only; the records themselves belong to the store.
package categorytree

import (
	"regexp"
	"sort"
	"strings"

	"recipebox/internal/model"

	"github.com/google/uuid"
)

const (
	// MaxDepth is the number of levels a tree may have (levels 0..4).
	MaxDepth = 5
	// MaxLevel is the deepest level a category may sit at.
	MaxLevel = MaxDepth - 1
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace   = regexp.MustCompile(`\s+`)
	hyphens      = regexp.MustCompile(`-+`)
)

// Slugify derives a URL-safe slug from a display name: lowercase, anything
// other than letters, digits, spaces and hyphens removed, spaces turned into
// hyphens, runs of hyphens collapsed.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nonSlugChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = hyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// RootPath is the path of a category without a parent.
func RootPath(slug string) string { return "/" + slug }

// ChildPath is the path of a category placed under parentPath.
func ChildPath(parentPath, slug string) string { return parentPath + "/" + slug }

// Placement computes path and level for slug under parent (nil = root).
func Placement(parent *model.RecipeCategory, slug string) (path string, level int) {
	if parent == nil {
		return RootPath(slug), 0
	}
	return ChildPath(parent.Path, slug), parent.Level + 1
}

// Index maps category ids to records and parent ids to child ids.
type Index struct {
	nodes    map[uuid.UUID]model.RecipeCategory
	children map[uuid.UUID][]uuid.UUID
	roots    []uuid.UUID
}

// NewIndex indexes cats. Children lists are ordered by sort order, then name.
func NewIndex(cats []model.RecipeCategory) *Index {
	sorted := make([]model.RecipeCategory, len(cats))
	copy(sorted, cats)
	sortCategories(sorted)

	idx := &Index{
		nodes:    make(map[uuid.UUID]model.RecipeCategory, len(sorted)),
		children: make(map[uuid.UUID][]uuid.UUID),
	}
	for _, c := range sorted {
		idx.nodes[c.ID] = c
	}
	for _, c := range sorted {
		if c.ParentID == nil {
			idx.roots = append(idx.roots, c.ID)
			continue
		}
		idx.children[*c.ParentID] = append(idx.children[*c.ParentID], c.ID)
	}
	return idx
}

func sortCategories(cats []model.RecipeCategory) {
	sort.SliceStable(cats, func(i, j int) bool {
		if cats[i].SortOrder != cats[j].SortOrder {
			return cats[i].SortOrder < cats[j].SortOrder
		}
		return cats[i].Name < cats[j].Name
	})
}

func (idx *Index) Len() int { return len(idx.nodes) }

func (idx *Index) Get(id uuid.UUID) (model.RecipeCategory, bool) {
	c, ok := idx.nodes[id]
	return c, ok
}

// Children returns the direct child ids of id.
func (idx *Index) Children(id uuid.UUID) []uuid.UUID { return idx.children[id] }

// Ancestors walks parent links from id upward and returns the ancestors
// oldest first (id itself excluded). The walk stops at a missing parent and
// never visits a node twice, so it terminates even on corrupted data.
func (idx *Index) Ancestors(id uuid.UUID) []model.RecipeCategory {
	var chain []model.RecipeCategory
	seen := map[uuid.UUID]bool{id: true}

	cur, ok := idx.nodes[id]
	for ok && cur.ParentID != nil {
		pid := *cur.ParentID
		if seen[pid] {
			break
		}
		seen[pid] = true
		cur, ok = idx.nodes[pid]
		if ok {
			chain = append(chain, cur)
		}
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// WouldCycle reports whether making proposedParent the parent of id would
// close a loop, i.e. id is proposedParent itself or one of its ancestors.
func (idx *Index) WouldCycle(id, proposedParent uuid.UUID) bool {
	if id == proposedParent {
		return true
	}
	for _, a := range idx.Ancestors(proposedParent) {
		if a.ID == id {
			return true
		}
	}
	return false
}

// Descendants returns every id below id, breadth first.
func (idx *Index) Descendants(id uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	seen := map[uuid.UUID]bool{id: true}
	queue := append([]uuid.UUID(nil), idx.children[id]...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		out = append(out, cur)
		queue = append(queue, idx.children[cur]...)
	}
	return out
}

// Height is the number of levels below id (0 for a leaf).
func (idx *Index) Height(id uuid.UUID) int {
	type item struct {
		id    uuid.UUID
		depth int
	}
	h := 0
	seen := map[uuid.UUID]bool{id: true}
	queue := []item{{id: id}}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		if it.depth > h {
			h = it.depth
		}
		for _, c := range idx.children[it.id] {
			if !seen[c] {
				seen[c] = true
				queue = append(queue, item{id: c, depth: it.depth + 1})
			}
		}
	}
	return h
}

// Recompute derives path and level for every node reachable from a root and
// returns the records whose stored values differ, carrying the corrected
// values. Nodes under a missing parent are left alone.
func (idx *Index) Recompute() []model.RecipeCategory {
	var stale []model.RecipeCategory

	type item struct {
		id    uuid.UUID
		path  string
		level int
	}
	queue := make([]item, 0, len(idx.roots))
	for _, r := range idx.roots {
		queue = append(queue, item{id: r, path: RootPath(idx.nodes[r].Slug), level: 0})
	}

	seen := make(map[uuid.UUID]bool, len(idx.nodes))
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		if seen[it.id] {
			continue
		}
		seen[it.id] = true

		n := idx.nodes[it.id]
		if n.Path != it.path || n.Level != it.level {
			n.Path, n.Level = it.path, it.level
			idx.nodes[it.id] = n
			stale = append(stale, n)
		}
		for _, c := range idx.children[it.id] {
			queue = append(queue, item{id: c, path: ChildPath(it.path, idx.nodes[c].Slug), level: it.level + 1})
		}
	}
	return stale
}

// Node is one element of a materialized tree.
type Node struct {
	Category model.RecipeCategory
	Children []*Node
}

// Build materializes the active categories as a nested tree in two passes:
// index every active node by id, then attach each to its parent, or to the
// root list when it has no parent or its parent is not active.
func Build(cats []model.RecipeCategory) []*Node {
	active := make([]model.RecipeCategory, 0, len(cats))
	for _, c := range cats {
		if c.IsActive {
			active = append(active, c)
		}
	}
	sortCategories(active)

	byID := make(map[uuid.UUID]*Node, len(active))
	for _, c := range active {
		byID[c.ID] = &Node{Category: c}
	}

	roots := make([]*Node, 0)
	for _, c := range active {
		n := byID[c.ID]
		if c.ParentID != nil {
			if parent, ok := byID[*c.ParentID]; ok {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}
