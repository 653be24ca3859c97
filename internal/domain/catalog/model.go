package catalog

import (
	"errors"
	"time"
)

// MaxLevel ограничивает глубину дерева категорий (корень + подкатегории).
const MaxLevel = 2

var (
	ErrNotFound      = errors.New("category not found")
	ErrDuplicateName = errors.New("category name already exists at this level")
	ErrHasChildren   = errors.New("category has subcategories")
	ErrTooDeep       = errors.New("category tree is limited to two levels")
	ErrEmptyName     = errors.New("category name is required")
)

type Category struct {
	ID        int64
	Name      string
	ParentID  *int64
	Level     int
	CreatedAt time.Time
}

// Node is a category together with its subcategories.
type Node struct {
	Category
	Children []Node
}

// BuildTree groups a flat, name-ordered list into roots with their children.
// Categories whose parent is absent from the list are treated as roots.
func BuildTree(flat []Category) []Node {
	present := make(map[int64]bool, len(flat))
	for _, c := range flat {
		present[c.ID] = true
	}
	children := make(map[int64][]Category)
	var roots []Category
	for _, c := range flat {
		if c.ParentID != nil && present[*c.ParentID] {
			children[*c.ParentID] = append(children[*c.ParentID], c)
			continue
		}
		roots = append(roots, c)
	}

	var build func(c Category) Node
	build = func(c Category) Node {
		n := Node{Category: c}
		for _, ch := range children[c.ID] {
			n.Children = append(n.Children, build(ch))
		}
		return n
	}
	out := make([]Node, 0, len(roots))
	for _, r := range roots {
		out = append(out, build(r))
	}
	return out
}
