package main

import (
	"fmt"

	"github.com/foodlens/catalog/internal/domain"
	"github.com/foodlens/catalog/internal/usecase"
	"github.com/spf13/cobra"
)

func searchCmd(e *env) *cobra.Command {
	var (
		category string
		sortBy   string
		pages    int
	)

	cmd := &cobra.Command{
		Use:   "search [term]",
		Short: "Search products by name",
		Long: `Search the catalog and accumulate one or more result pages. Without a term
the whole catalog is browsed. --category and --sort are applied locally to the
accumulated results.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			option, err := domain.ParseSortOption(sortBy)
			if err != nil {
				return err
			}
			if pages < 1 {
				return fmt.Errorf("--pages must be at least 1")
			}

			session := usecase.NewSession(cmd.Context(), e.catalog, usecase.SessionConfig{
				DebounceWindow: e.cfg.Search.Debounce,
			}, e.logger)
			defer session.Close()

			if len(args) == 1 {
				session.SetSearchText(args[0])
				session.CommitSearch()
			} else {
				session.Browse()
			}
			session.Wait()

			for i := 1; i < pages; i++ {
				// Upstream failures show up in the view
				if err := session.LoadMore(cmd.Context()); err != nil {
					break
				}
			}

			if category != "" {
				view := session.View()
				if c, ok := usecase.ResolveCategory(category, view.Categories); ok {
					category = c.ID
				}
				session.SetCategory(category)
			}
			session.SetSort(option)

			renderView(cmd.OutOrStdout(), session.View())
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only show products in this category (id or name)")
	cmd.Flags().StringVar(&sortBy, "sort", "default", "sort order: default, name-asc, name-desc, grade-asc, grade-desc")
	cmd.Flags().IntVar(&pages, "pages", 1, "number of result pages to load")

	return cmd
}
