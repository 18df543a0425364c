package domain

// Product is an immutable snapshot of an Open Food Facts product
type Product struct {
	Code            string      `json:"code"`
	Name            string      `json:"productName"`
	Brands          string      `json:"brands,omitempty"`
	Categories      string      `json:"categories,omitempty"`
	CategoryTags    []string    `json:"categoryTags,omitempty"` // nil means the upstream sent no tag list
	NutritionGrade  string      `json:"nutritionGrade,omitempty"`
	ImageURL        string      `json:"imageUrl,omitempty"`
	Labels          string      `json:"labels,omitempty"`
	IngredientsText string      `json:"ingredientsText,omitempty"`
	Ingredients     []string    `json:"ingredients,omitempty"`
	Nutriments      *Nutriments `json:"nutriments,omitempty"`
}

// Category is a filter key for products. IDs may carry a locale prefix ("en:beverages").
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Products int    `json:"products,omitempty"`
}

// ProductPage is one page of search results
type ProductPage struct {
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
	Count    int       `json:"count"`
	Products []Product `json:"products"`
}

// ProductDetail is a product together with its derived nutrition breakdown
type ProductDetail struct {
	Product      Product         `json:"product"`
	Facts        []NutritionFact `json:"nutritionFacts"`
	Distribution []MacroShare    `json:"macroDistribution,omitempty"`
	Labels       []string        `json:"labels,omitempty"`
}
