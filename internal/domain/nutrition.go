package domain

// Nutriments holds per-100g nutrient amounts. A nil field means the upstream did not report it.
type Nutriments struct {
	Energy        *float64 `json:"energy,omitempty"`
	EnergyUnit    string   `json:"energyUnit,omitempty"`
	Proteins      *float64 `json:"proteins,omitempty"`
	Carbohydrates *float64 `json:"carbohydrates,omitempty"`
	Fat           *float64 `json:"fat,omitempty"`
	SaturatedFat  *float64 `json:"saturatedFat,omitempty"`
	Fiber         *float64 `json:"fiber,omitempty"`
	Sugars        *float64 `json:"sugars,omitempty"`
	Salt          *float64 `json:"salt,omitempty"`
	Sodium        *float64 `json:"sodium,omitempty"`
}

// NutritionFact is a single row of a nutrition table
type NutritionFact struct {
	Key    string  `json:"key"`
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// MacroShare is one slice of the macronutrient distribution chart
type MacroShare struct {
	Name    string  `json:"name"`
	Grams   float64 `json:"grams"`
	Percent float64 `json:"percent"`
}
