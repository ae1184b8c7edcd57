package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lumi/backend/config"
	"github.com/lumi/backend/internal/catalog"
	"github.com/lumi/backend/internal/infrastructure/cache"
	"github.com/lumi/backend/internal/infrastructure/scrape"
	"github.com/lumi/backend/internal/usecase"
	"github.com/spf13/cobra"
)

var flagJSON bool

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "lumictl",
		Short:        "Inspect Lumi trends, suggestions and looks from the terminal",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.PersistentFlags().BoolVar(&flagJSON, "json", false, "print JSON instead of text")

	root.AddCommand(
		newTrendsCmd(),
		newSuggestCmd(),
		newLooksCmd(),
		newVersionCmd(),
	)
	return root
}

func newTrendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trends",
		Short: "Scrape the configured sources and print the trend capsules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			data, err := catalog.Default()
			if err != nil {
				return err
			}

			memoryCache := cache.NewMemoryCache()
			defer memoryCache.Close()

			service := usecase.NewTrendService(
				scrape.NewFetcher(cfg.Trends.FetchTimeout, cfg.Trends.MaxDocumentSize),
				memoryCache,
				usecase.NewTrendClusterer(data.FallbackClusters()),
				usecase.TrendServiceConfig{Sources: cfg.Trends.Sources},
			)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			snapshot := service.Refresh(ctx)

			if flagJSON {
				return writeJSON(cmd.OutOrStdout(), snapshot)
			}

			w := cmd.OutOrStdout()
			for _, source := range snapshot.Sources {
				line := fmt.Sprintf("%-20s %-6s %d headlines", source.Label, source.Status, len(source.Items))
				if source.Error != "" {
					line += " (" + source.Error + ")"
				}
				fmt.Fprintln(w, line)
			}
			if snapshot.Warning != "" {
				fmt.Fprintf(w, "\n! %s\n", snapshot.Warning)
			}
			for _, cluster := range snapshot.Clusters {
				fmt.Fprintf(w, "\n%s\n  %s\n", cluster.Title, cluster.Summary)
				for _, example := range cluster.Examples {
					fmt.Fprintf(w, "  - %s [%s]\n", example.Title, example.Source)
				}
			}
			return nil
		},
	}
}

func newSuggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest [query]",
		Short: "Rank the product catalog against a query",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := catalog.Default()
			if err != nil {
				return err
			}

			suggestions := usecase.NewRankingService(data.Products()).Rank(strings.Join(args, " "), nil)
			if flagJSON {
				return writeJSON(cmd.OutOrStdout(), suggestions)
			}

			for _, product := range suggestions {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n  %s\n  %s\n", product.Title, product.Retailer, product.Reason, product.URL)
			}
			return nil
		},
	}
}

func newLooksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "looks [query]",
		Short: "Search the curated Discover looks",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := catalog.Default()
			if err != nil {
				return err
			}

			looks := usecase.NewLookSearch(data.Looks()).Search(strings.Join(args, " "))
			if flagJSON {
				return writeJSON(cmd.OutOrStdout(), looks)
			}

			if len(looks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No looks found.")
				return nil
			}
			for _, look := range looks {
				fmt.Fprintf(cmd.OutOrStdout(), "%s - %s\n  #%s\n", look.Title, look.Vibe, strings.Join(look.Tags, " #"))
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lumictl %s\n", config.Version)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
