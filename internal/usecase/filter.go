package usecase

import (
	"sort"
	"strings"
	"unicode"

	"github.com/foodlens/catalog/internal/domain"
)

// NormalizeCategory lower-cases and trims a category identifier and strips a
// locale prefix such as "en:" or "fr:".
func NormalizeCategory(id string) string {
	s := strings.ToLower(strings.TrimSpace(id))
	if prefix, rest, ok := strings.Cut(s, ":"); ok && isLocalePrefix(prefix) {
		s = strings.TrimSpace(rest)
	}
	return s
}

func isLocalePrefix(s string) bool {
	if len(s) < 2 || len(s) > 3 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// FilterByCategory keeps the products that belong to categoryID. Matching is loose:
// a product matches when one of its normalized tags equals the target, contains it,
// or is contained by it. Products without a tag list fall back to a substring test
// on the free-text category string. An empty selection returns the input unchanged.
func FilterByCategory(products []domain.Product, categoryID string) []domain.Product {
	target := NormalizeCategory(categoryID)
	if target == "" {
		return products
	}

	filtered := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if MatchesCategory(p, target) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// MatchesCategory reports whether p belongs to the already normalized target
func MatchesCategory(p domain.Product, target string) bool {
	if len(p.CategoryTags) == 0 {
		return strings.Contains(strings.ToLower(p.Categories), target)
	}

	for _, tag := range p.CategoryTags {
		t := NormalizeCategory(tag)
		if t == "" {
			continue
		}
		if t == target || strings.Contains(t, target) || strings.Contains(target, t) {
			return true
		}
	}
	return false
}

// CategoryDisplayName returns name, or the identifier without its locale prefix
func CategoryDisplayName(c domain.Category) string {
	if c.Name != "" {
		return c.Name
	}
	return strings.ReplaceAll(NormalizeCategory(c.ID), "-", " ")
}

// CategoriesFromProducts tallies the machine tags of products, most frequent first
func CategoriesFromProducts(products []domain.Product) []domain.Category {
	counts := make(map[string]int)
	for _, p := range products {
		seen := make(map[string]bool, len(p.CategoryTags))
		for _, tag := range p.CategoryTags {
			tag = strings.TrimSpace(tag)
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			counts[tag]++
		}
	}

	categories := make([]domain.Category, 0, len(counts))
	for id, n := range counts {
		c := domain.Category{ID: id, Products: n}
		c.Name = CategoryDisplayName(c)
		categories = append(categories, c)
	}

	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Products != categories[j].Products {
			return categories[i].Products > categories[j].Products
		}
		return categories[i].ID < categories[j].ID
	})

	return categories
}
