package domain

import (
	"fmt"
	"strings"
)

// SortOption selects the comparator of the sort stage
type SortOption string

const (
	SortDefault   SortOption = "default"
	SortNameAsc   SortOption = "name-asc"
	SortNameDesc  SortOption = "name-desc"
	SortGradeAsc  SortOption = "grade-asc"
	SortGradeDesc SortOption = "grade-desc"
)

// ParseSortOption accepts the option names used by the web front end as well as the
// canonical ones. An empty string is the default order.
func ParseSortOption(s string) (SortOption, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return SortDefault, nil
	case "name-asc":
		return SortNameAsc, nil
	case "name-desc":
		return SortNameDesc, nil
	case "grade-asc", "nutrition-asc":
		return SortGradeAsc, nil
	case "grade-desc", "nutrition-desc":
		return SortGradeDesc, nil
	default:
		return SortDefault, fmt.Errorf("%w: unknown sort option %q", ErrInvalidRequest, s)
	}
}
