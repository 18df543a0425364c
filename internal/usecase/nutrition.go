package usecase

import (
	"math"
	"strings"

	"github.com/foodlens/catalog/internal/domain"
)

// defaultEnergyUnit is assumed when the upstream omits energy_unit
const defaultEnergyUnit = "kJ"

// BuildNutritionFacts lists the reported nutrients in display order. Absent and
// zero amounts are left out.
func BuildNutritionFacts(n *domain.Nutriments) []domain.NutritionFact {
	if n == nil {
		return []domain.NutritionFact{}
	}

	energyUnit := n.EnergyUnit
	if energyUnit == "" {
		energyUnit = defaultEnergyUnit
	}

	rows := []struct {
		key, label, unit string
		amount           *float64
	}{
		{"energy", "Energy", energyUnit, n.Energy},
		{"proteins", "Protein", "g", n.Proteins},
		{"carbohydrates", "Carbohydrates", "g", n.Carbohydrates},
		{"fat", "Fat", "g", n.Fat},
		{"saturated-fat", "Saturated Fat", "g", n.SaturatedFat},
		{"fiber", "Fiber", "g", n.Fiber},
		{"sugars", "Sugars", "g", n.Sugars},
		{"salt", "Salt", "g", n.Salt},
		{"sodium", "Sodium", "g", n.Sodium},
	}

	facts := make([]domain.NutritionFact, 0, len(rows))
	for _, r := range rows {
		if r.amount == nil || *r.amount == 0 {
			continue
		}
		facts = append(facts, domain.NutritionFact{
			Key:    r.key,
			Label:  r.label,
			Amount: *r.amount,
			Unit:   r.unit,
		})
	}
	return facts
}

// MacroDistribution splits protein, carbohydrates and fat into percentage shares
// rounded to one decimal. It returns nil when none of them is reported.
func MacroDistribution(n *domain.Nutriments) []domain.MacroShare {
	if n == nil {
		return nil
	}

	shares := []domain.MacroShare{
		{Name: "Protein", Grams: valueOf(n.Proteins)},
		{Name: "Carbohydrates", Grams: valueOf(n.Carbohydrates)},
		{Name: "Fat", Grams: valueOf(n.Fat)},
	}

	var total float64
	for _, s := range shares {
		total += s.Grams
	}
	if total <= 0 {
		return nil
	}

	for i := range shares {
		shares[i].Percent = math.Round(shares[i].Grams/total*1000) / 10
	}
	return shares
}

// SplitLabels splits the comma-separated labels text
func SplitLabels(labels string) []string {
	var out []string
	for _, l := range strings.Split(labels, ",") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func valueOf(v *float64) float64 {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}
