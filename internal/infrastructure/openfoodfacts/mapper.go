package openfoodfacts

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/foodlens/catalog/internal/domain"
)

// Nutriment keys as reported by Open Food Facts
const (
	NutrimentEnergy        = "energy"
	NutrimentProteins      = "proteins"
	NutrimentCarbohydrates = "carbohydrates"
	NutrimentFat           = "fat"
	NutrimentSaturatedFat  = "saturated-fat"
	NutrimentFiber         = "fiber"
	NutrimentSugars        = "sugars"
	NutrimentSalt          = "salt"
	NutrimentSodium        = "sodium"
)

// flexInt decodes integers that the API sometimes sends as strings ("page": "1")
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

// searchResponse is the body of cgi/search.pl?json=true
type searchResponse struct {
	Count    flexInt      `json:"count"`
	Page     flexInt      `json:"page"`
	PageSize flexInt      `json:"page_size"`
	Products []offProduct `json:"products"`
}

// productResponse is the body of api/v0/product/<code>.json
type productResponse struct {
	Code          string      `json:"code"`
	Status        flexInt     `json:"status"`
	StatusVerbose string      `json:"status_verbose"`
	Product       *offProduct `json:"product"`
}

// categoriesResponse is the body of categories.json
type categoriesResponse struct {
	Count flexInt       `json:"count"`
	Tags  []offCategory `json:"tags"`
}

type offCategory struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Products flexInt `json:"products"`
}

type offIngredient struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type offProduct struct {
	Code            string          `json:"code"`
	ProductName     string          `json:"product_name"`
	ProductNameEn   string          `json:"product_name_en"`
	Brands          string          `json:"brands"`
	Categories      string          `json:"categories"`
	CategoriesTags  []string        `json:"categories_tags"`
	NutritionGrades string          `json:"nutrition_grades"`
	ImageFrontURL   string          `json:"image_front_url"`
	ImageURL        string          `json:"image_url"`
	Labels          string          `json:"labels"`
	IngredientsText string          `json:"ingredients_text"`
	Ingredients     []offIngredient `json:"ingredients"`
	Nutriments      map[string]any  `json:"nutriments"`
}

// name returns the best available product name: product_name, then product_name_en
func (p *offProduct) name() string {
	if p.ProductName != "" {
		return p.ProductName
	}
	return p.ProductNameEn
}

// mapProduct converts an upstream product record to the domain model
func mapProduct(p *offProduct) domain.Product {
	product := domain.Product{
		Code:            p.Code,
		Name:            p.name(),
		Brands:          p.Brands,
		Categories:      p.Categories,
		CategoryTags:    p.CategoriesTags,
		NutritionGrade:  p.NutritionGrades,
		ImageURL:        p.ImageFrontURL,
		Labels:          p.Labels,
		IngredientsText: p.IngredientsText,
		Nutriments:      mapNutriments(p.Nutriments),
	}
	if product.ImageURL == "" {
		product.ImageURL = p.ImageURL
	}

	for _, ing := range p.Ingredients {
		text := strings.TrimSpace(ing.Text)
		if text == "" {
			text = ing.ID
		}
		if text != "" {
			product.Ingredients = append(product.Ingredients, text)
		}
	}

	return product
}

func mapProducts(raw []offProduct) []domain.Product {
	products := make([]domain.Product, 0, len(raw))
	for i := range raw {
		products = append(products, mapProduct(&raw[i]))
	}
	return products
}

func mapCategories(raw []offCategory) []domain.Category {
	categories := make([]domain.Category, 0, len(raw))
	for _, c := range raw {
		if c.ID == "" {
			continue
		}
		categories = append(categories, domain.Category{
			ID:       c.ID,
			Name:     c.Name,
			Products: int(c.Products),
		})
	}
	return categories
}

// mapNutriments extracts the tracked nutrients. Returns nil when the upstream sent no map.
func mapNutriments(m map[string]any) *domain.Nutriments {
	if len(m) == 0 {
		return nil
	}

	n := &domain.Nutriments{
		Energy:        nutrimentValue(m, NutrimentEnergy),
		Proteins:      nutrimentValue(m, NutrimentProteins),
		Carbohydrates: nutrimentValue(m, NutrimentCarbohydrates),
		Fat:           nutrimentValue(m, NutrimentFat),
		SaturatedFat:  nutrimentValue(m, NutrimentSaturatedFat),
		Fiber:         nutrimentValue(m, NutrimentFiber),
		Sugars:        nutrimentValue(m, NutrimentSugars),
		Salt:          nutrimentValue(m, NutrimentSalt),
		Sodium:        nutrimentValue(m, NutrimentSodium),
	}
	if unit, ok := m[NutrimentEnergy+"_unit"].(string); ok {
		n.EnergyUnit = unit
	}

	return n
}

// nutrimentValue prefers the explicit per-100g key and falls back to the bare key
func nutrimentValue(m map[string]any, key string) *float64 {
	if v, ok := extractFloat(m, key+"_100g"); ok {
		return &v
	}
	if v, ok := extractFloat(m, key); ok {
		return &v
	}
	return nil
}

// extractFloat coerces a nutriments map value to float64
func extractFloat(m map[string]any, key string) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
