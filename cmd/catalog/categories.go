package main

import (
	"fmt"

	"github.com/foodlens/catalog/internal/domain"
	"github.com/foodlens/catalog/internal/usecase"
	"github.com/spf13/cobra"
)

func categoriesCmd(e *env) *cobra.Command {
	var (
		limit int
		match string
	)

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List product categories",
		Long:  `List the most common categories of the catalog, or find the one closest to --match.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := usecase.NewCategoryService(e.catalog, e.cfg.Search.CategoryLimit, e.logger)

			if match != "" {
				c, ok, err := svc.Resolve(cmd.Context(), match)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no category matches %q", match)
				}
				renderCategories(cmd.OutOrStdout(), []domain.Category{c})
				return nil
			}

			categories, err := svc.ListCategories(cmd.Context(), limit)
			if err != nil {
				return err
			}
			renderCategories(cmd.OutOrStdout(), categories)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of categories (default from config)")
	cmd.Flags().StringVar(&match, "match", "", "show the category closest to this name")

	return cmd
}

