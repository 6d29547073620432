package service

import "strings"

// Canonical supply categories shared by requests and resource stocks.
const (
	CategoryMedical  = "medical"
	CategoryMedicine = "medicine"
	CategoryWater    = "water"
	CategoryFood     = "food"
	CategoryShelter  = "shelter"
	CategoryClothing = "clothing"
)

// CompatibilityVersion identifies the current matching table so selection
// policy changes stay auditable.
const CompatibilityVersion = 1

// categoryAliases maps free-form request/resource category strings to a
// canonical category. Lookup happens on the lowercased, trimmed input.
var categoryAliases = map[string]string{
	"medical":        CategoryMedical,
	"medical aid":    CategoryMedical,
	"first aid":      CategoryMedical,
	"rescue":         CategoryMedical,
	"medicine":       CategoryMedicine,
	"medication":     CategoryMedicine,
	"drugs":          CategoryMedicine,
	"water":          CategoryWater,
	"drinking water": CategoryWater,
	"food":           CategoryFood,
	"emergency food": CategoryFood,
	"meals":          CategoryFood,
	"shelter":        CategoryShelter,
	"housing":        CategoryShelter,
	"tents":          CategoryShelter,
	"clothing":       CategoryClothing,
	"clothes":        CategoryClothing,
}

// resourceCompatibility lists, per canonical request category, the resource
// categories that can serve it. Many-to-many on purpose: a medical request can
// be served from medicine stock and vice versa.
var resourceCompatibility = map[string][]string{
	CategoryMedical:  {CategoryMedical, CategoryMedicine},
	CategoryMedicine: {CategoryMedicine, CategoryMedical},
	CategoryWater:    {CategoryWater},
	CategoryFood:     {CategoryFood},
	CategoryShelter:  {CategoryShelter},
	CategoryClothing: {CategoryClothing},
}

// NormalizeCategory resolves a free-form category string to its canonical
// form. Unknown categories pass through lowercased so exotic supplies can
// still match stock labeled identically.
func NormalizeCategory(category string) string {
	key := strings.ToLower(strings.TrimSpace(category))
	if canonical, ok := categoryAliases[key]; ok {
		return canonical
	}
	return key
}

// CompatibleResourceCategories returns the resource categories that can serve
// a request category.
func CompatibleResourceCategories(requestCategory string) []string {
	canonical := NormalizeCategory(requestCategory)
	if compatible, ok := resourceCompatibility[canonical]; ok {
		return compatible
	}
	return []string{canonical}
}
