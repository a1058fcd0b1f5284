package services

import "fmt"

// The set catalog mirrors the static hosting layout: one JSON file per
// difficulty band, category and set number.
var (
	CatalogLevels     = []string{"A1", "A2", "B1"}
	CatalogCategories = []string{"Lytting", "Lesing"}
)

const CatalogSetsPerLevel = 3

// SetKey composes the fetch key for one question set, e.g.
// "A1-Lytting-Sett-2".
func SetKey(level, category string, number int) string {
	return fmt.Sprintf("%s-%s-Sett-%d", level, category, number)
}

// SetCatalog lists every fetchable set key.
func SetCatalog() []string {
	keys := make([]string, 0, len(CatalogLevels)*len(CatalogCategories)*CatalogSetsPerLevel)
	for _, level := range CatalogLevels {
		for _, category := range CatalogCategories {
			for n := 1; n <= CatalogSetsPerLevel; n++ {
				keys = append(keys, SetKey(level, category, n))
			}
		}
	}
	return keys
}
