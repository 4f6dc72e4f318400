package enums

import "fmt"

// MenuCategory groups menu items on the storefront.
type MenuCategory string

const (
	MenuCategoryMains    MenuCategory = "mains"
	MenuCategorySides    MenuCategory = "sides"
	MenuCategorySalads   MenuCategory = "salads"
	MenuCategoryDrinks   MenuCategory = "drinks"
	MenuCategoryDesserts MenuCategory = "desserts"
)

var validMenuCategories = []MenuCategory{
	MenuCategoryMains,
	MenuCategorySides,
	MenuCategorySalads,
	MenuCategoryDrinks,
	MenuCategoryDesserts,
}

// IsValid reports whether the value matches the canonical menu category enum.
func (m MenuCategory) IsValid() bool {
	for _, candidate := range validMenuCategories {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMenuCategory converts the raw string to MenuCategory.
func ParseMenuCategory(value string) (MenuCategory, error) {
	for _, candidate := range validMenuCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid menu category %q", value)
}
