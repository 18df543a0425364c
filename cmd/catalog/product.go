package main

import (
	"github.com/foodlens/catalog/internal/usecase"
	"github.com/spf13/cobra"
)

func productCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "product <barcode>",
		Short: "Show a product and its nutrition facts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := usecase.NewProductService(e.catalog, e.logger)

			detail, err := svc.GetProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			renderProduct(cmd.OutOrStdout(), detail)
			return nil
		},
	}
}
