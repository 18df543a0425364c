package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/foodlens/catalog/internal/domain"
	"github.com/foodlens/catalog/internal/usecase"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

	// Nutri-Score colors
	gradeColors = map[string]lipgloss.Color{
		"a": lipgloss.Color("28"),
		"b": lipgloss.Color("106"),
		"c": lipgloss.Color("220"),
		"d": lipgloss.Color("208"),
		"e": lipgloss.Color("160"),
	}
)

func gradeBadge(grade string) string {
	g := strings.ToLower(strings.TrimSpace(grade))
	color, ok := gradeColors[g]
	if !ok {
		return mutedStyle.Render("-")
	}
	return lipgloss.NewStyle().Bold(true).Foreground(color).Render(strings.ToUpper(g))
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return mutedStyle.Render("(unnamed)")
	}
	return s
}

func renderView(w io.Writer, view usecase.View) {
	if view.Error != nil {
		fmt.Fprintln(w, errorStyle.Render(view.Error.Message))
		return
	}
	if len(view.Products) == 0 {
		fmt.Fprintln(w, mutedStyle.Render(usecase.MessageNoProducts))
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		headerStyle.Render("Barcode"),
		headerStyle.Render("Name"),
		headerStyle.Render("Brands"),
		headerStyle.Render("Grade"))
	for _, p := range view.Products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Code, orPlaceholder(p.Name), p.Brands, gradeBadge(p.NutritionGrade))
	}
	tw.Flush()

	summary := fmt.Sprintf("%d of %d loaded products", len(view.Products), view.Total)
	if view.Category != "" {
		summary += " in " + view.Category
	}
	if view.HasMore {
		summary += ", more available"
	}
	fmt.Fprintln(w, mutedStyle.Render(summary))
}

func renderProduct(w io.Writer, detail *domain.ProductDetail) {
	p := detail.Product

	var b strings.Builder
	b.WriteString(titleStyle.Render(orPlaceholder(p.Name)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Barcode: %s\n", p.Code)
	if p.Brands != "" {
		fmt.Fprintf(&b, "Brands: %s\n", p.Brands)
	}
	fmt.Fprintf(&b, "Nutri-Score: %s", gradeBadge(p.NutritionGrade))
	if len(detail.Labels) > 0 {
		fmt.Fprintf(&b, "\nLabels: %s", strings.Join(detail.Labels, ", "))
	}
	fmt.Fprintln(w, boxStyle.Render(b.String()))

	if len(detail.Facts) > 0 {
		fmt.Fprintln(w, headerStyle.Render("Nutrition facts (per 100 g)"))
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, f := range detail.Facts {
			fmt.Fprintf(tw, "%s\t%g %s\n", f.Label, f.Amount, f.Unit)
		}
		tw.Flush()
	}

	if len(detail.Distribution) > 0 {
		fmt.Fprintln(w, headerStyle.Render("Macronutrients"))
		for _, m := range detail.Distribution {
			bar := strings.Repeat("█", int(m.Percent/5))
			fmt.Fprintf(w, "%-14s %5.1f%% %s\n", m.Name, m.Percent, bar)
		}
	}

	if len(p.Ingredients) > 0 {
		fmt.Fprintln(w, headerStyle.Render("Ingredients"))
		fmt.Fprintln(w, strings.Join(p.Ingredients, ", "))
	} else if p.IngredientsText != "" {
		fmt.Fprintln(w, headerStyle.Render("Ingredients"))
		fmt.Fprintln(w, p.IngredientsText)
	}
}

func renderCategories(w io.Writer, categories []domain.Category) {
	if len(categories) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No categories found."))
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "%s\t%s\t%s\n",
		headerStyle.Render("ID"),
		headerStyle.Render("Name"),
		headerStyle.Render("Products"))
	for _, c := range categories {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", c.ID, c.Name, c.Products)
	}
}
