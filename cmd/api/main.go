package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "skincare-api",
		Short:         "Skincare product picker and chat API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	var sender string
	formatCmd := &cobra.Command{
		Use:   "format [file]",
		Short: "Render chat text from a file or stdin as HTML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(cmd.InOrStdin(), cmd.OutOrStdout(), sender, args)
		},
	}
	formatCmd.Flags().StringVarP(&sender, "sender", "s", "bot", "Message author: bot or user")

	var category, query string
	productsCmd := &cobra.Command{
		Use:   "products",
		Short: "List catalog products",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProducts(cmd.OutOrStdout(), category, query)
		},
	}
	productsCmd.Flags().StringVarP(&category, "category", "c", "", "Only products in this category")
	productsCmd.Flags().StringVarP(&query, "query", "q", "", "Case-insensitive search in name, brand and description")

	var (
		seedClient   string
		seedProducts []int
		seedCleanup  bool
		seedDatabase string
	)
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Preselect products for a client in the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), cmd.OutOrStdout(), seedOptions{
				clientID:    seedClient,
				productIDs:  seedProducts,
				cleanup:     seedCleanup,
				databaseURL: seedDatabase,
			})
		},
	}
	seedCmd.Flags().StringVar(&seedClient, "client", "", "Client id (required)")
	seedCmd.Flags().IntSliceVarP(&seedProducts, "product", "p", nil, "Product id to select (repeatable)")
	seedCmd.Flags().BoolVar(&seedCleanup, "cleanup", false, "Clear the client's selection and transcript instead")
	seedCmd.Flags().StringVar(&seedDatabase, "db", "", "DATABASE_URL override")
	_ = seedCmd.MarkFlagRequired("client")

	rootCmd.AddCommand(serveCmd, formatCmd, productsCmd, seedCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
