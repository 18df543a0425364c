package usecase

import (
	"slices"
	"strings"

	"github.com/foodlens/catalog/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// missingGrade sorts products without a nutrition grade after every real grade
const missingGrade = "z"

// SortProducts returns a new slice ordered by option. The input is never modified and
// equal elements keep their relative order, so sorting twice gives the same result.
func SortProducts(products []domain.Product, option domain.SortOption) []domain.Product {
	sorted := slices.Clone(products)
	if sorted == nil {
		sorted = []domain.Product{}
	}

	switch option {
	case domain.SortNameAsc, domain.SortNameDesc:
		// A Collator is not safe for concurrent use, so build one per call
		c := collate.New(language.English)
		desc := option == domain.SortNameDesc
		slices.SortStableFunc(sorted, func(a, b domain.Product) int {
			if desc {
				return c.CompareString(b.Name, a.Name)
			}
			return c.CompareString(a.Name, b.Name)
		})
	case domain.SortGradeAsc:
		slices.SortStableFunc(sorted, func(a, b domain.Product) int {
			return strings.Compare(gradeKey(a), gradeKey(b))
		})
	case domain.SortGradeDesc:
		slices.SortStableFunc(sorted, func(a, b domain.Product) int {
			return strings.Compare(gradeKey(b), gradeKey(a))
		})
	}

	return sorted
}

func gradeKey(p domain.Product) string {
	g := strings.ToLower(strings.TrimSpace(p.NutritionGrade))
	if g == "" {
		return missingGrade
	}
	return g
}
