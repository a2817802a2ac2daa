// ABOUTME: GroceryList groups ingredients and supplements derived from a plan
// ABOUTME: Ephemeral: regenerated on demand and never persisted
package models

import "strings"

// GroceryItem is one category with its ordered ingredient names
type GroceryItem struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

// GroceryList is the generated shopping list
type GroceryList struct {
	Categories []GroceryItem `json:"categories"`
}

// GroceryCategories are the groups the generator is asked to use
var GroceryCategories = []string{"Longevity Supplements", "Proteins", "Produce", "Fats & Oils", "Pantry"}

// genericConsumables are excluded from every list
var genericConsumables = map[string]bool{
	"water":     true,
	"salt":      true,
	"ice":       true,
	"tap water": true,
}

// IsGenericConsumable reports whether name is a generic item like plain water or salt
func IsGenericConsumable(name string) bool {
	return genericConsumables[strings.ToLower(strings.TrimSpace(name))]
}

// Normalize drops blank and generic entries, removes case-insensitive duplicates within each
// category and drops categories left empty. Order is preserved.
func (g GroceryList) Normalize() GroceryList {
	var out GroceryList
	for _, cat := range g.Categories {
		seen := make(map[string]bool)
		var items []string
		for _, item := range cat.Items {
			name := strings.TrimSpace(item)
			key := strings.ToLower(name)
			if name == "" || IsGenericConsumable(name) || seen[key] {
				continue
			}
			seen[key] = true
			items = append(items, name)
		}
		if len(items) == 0 {
			continue
		}
		out.Categories = append(out.Categories, GroceryItem{Category: strings.TrimSpace(cat.Category), Items: items})
	}
	return out
}
