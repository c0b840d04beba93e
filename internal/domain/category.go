package domain

import (
	"slices"
	"strings"
)

const (
	// RootCategoryID is the synthetic root every category map is seeded with.
	RootCategoryID = "0"
	// UnknownCategoryPath is returned when a category id cannot be resolved.
	UnknownCategoryPath = "unknown"

	categoryPathSeparator = " > "
)

// CategoryNode is one entry of the category tree, linked to its parent by id.
type CategoryNode struct {
	Name   string `json:"name"`
	Parent string `json:"parent,omitempty"` // empty for the root
}

// CategoryMap maps category ids to their nodes.
type CategoryMap map[string]CategoryNode

// NewCategoryMap returns a map holding only the synthetic "Home" root.
func NewCategoryMap() CategoryMap {
	return CategoryMap{RootCategoryID: {Name: "Home"}}
}

// Merge copies every node of other into m. Existing ids are overwritten.
func (m CategoryMap) Merge(other CategoryMap) {
	for id, node := range other {
		m[id] = node
	}
}

// ResolvePath walks parent links from id and returns the names joined
// ancestor-first, e.g. "Home > Shoes > Boots". Unknown ids and cyclic
// chains yield UnknownCategoryPath.
func (m CategoryMap) ResolvePath(id string) string {
	var names []string
	for current := id; current != ""; {
		node, ok := m[current]
		if !ok {
			break
		}
		if len(names) == len(m) {
			return UnknownCategoryPath
		}
		names = append(names, node.Name)
		current = node.Parent
	}

	if len(names) == 0 {
		return UnknownCategoryPath
	}

	slices.Reverse(names)
	return strings.Join(names, categoryPathSeparator)
}

// Breadcrumb is one link of a product page's root-to-leaf category trail.
type Breadcrumb struct {
	Label string
	Link  string
}

// BranchResult is what resolving one top-level category branch produced.
type BranchResult struct {
	Outcome Outcome
	Nodes   CategoryMap
}
