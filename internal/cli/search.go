package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/groundhog-ai/groundhog/internal/retrieval"
)

var (
	searchCollection  string
	searchContentType string
	searchSection     string
	searchTitle       string
	searchTags        []string
	searchInfer       bool
	searchLimit       int
	searchThreshold   float64
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search a knowledge base collection",
	Long: `Run a similarity search against a collection and print the raw results.

Filters constrain by document metadata. With --infer the filter is derived
from technology and section keywords in the query text instead.

Examples:
  groundhog search "vector databases" --collection projects
  groundhog search "deployment" --collection projects --content-type readme --tags go
  groundhog search "python readme" --collection projects --infer
  groundhog search "first job" --collection resume --section "Work Experience"`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchCollection, "collection", "c", "projects", "collection to search")
	searchCmd.Flags().StringVar(&searchContentType, "content-type", "", "filter by content type")
	searchCmd.Flags().StringVar(&searchSection, "section", "", "filter by section")
	searchCmd.Flags().StringVar(&searchTitle, "title", "", "filter by title substring")
	searchCmd.Flags().StringSliceVarP(&searchTags, "tags", "t", nil, "filter by technology tags")
	searchCmd.Flags().BoolVar(&searchInfer, "infer", false, "infer filters from query keywords")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "max results")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 0, "minimum similarity score")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	_, vectors, err := getLLM(ctx)
	if err != nil {
		return err
	}

	gateway := retrieval.NewGateway(vectors)
	results, err := gateway.Search(ctx, searchCollection, args[0], retrieval.Options{
		K: searchLimit,
		Filter: retrieval.QueryFilter{
			ContentType:   searchContentType,
			Section:       searchSection,
			TitleContains: searchTitle,
			Tags:          searchTags,
		},
		InferFromQuery: searchInfer,
		ScoreThreshold: searchThreshold,
	})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for i, r := range results {
		fmt.Printf("%d. [%.3f] %s", i+1, r.Score, r.Metadata.Title)
		if r.Metadata.Section != "" && r.Metadata.Section != r.Metadata.Title {
			fmt.Printf(" / %s", r.Metadata.Section)
		}
		fmt.Println()
		fmt.Println(indent(truncate(r.Content, 300), "   "))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

func indent(s, prefix string) string {
	out := prefix
	for _, r := range s {
		out += string(r)
		if r == '\n' {
			out += prefix
		}
	}
	return out
}
