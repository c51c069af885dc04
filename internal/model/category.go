package model

import "strings"

// ShoppingCategoryID is the well-known id of the shopping category seeded on
// first run. Renamed categories are still recognized by name.
const ShoppingCategoryID = "cat-shopping"

// Category groups master items and trip items.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	SortOrder int    `json:"sortOrder"`
}

// IsShopping reports whether this category is the shopping list, either by
// its seeded id or by name.
func (c Category) IsShopping() bool {
	return c.ID == ShoppingCategoryID || strings.Contains(strings.ToLower(c.Name), "shopping")
}
