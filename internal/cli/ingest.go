package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/groundhog-ai/groundhog/internal/ingest"
)

var (
	ingestProjectsURL  string
	ingestPortfolioURL string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Rebuild the static knowledge base",
	Long: `Rebuild the "projects" and "resume" collections from their sources.

Projects come from the portfolio's projects.json feed; for each project with
a repository, the GitHub README is fetched and chunked. Resume sections are
extracted from the portfolio page's Work Experience, Education and Skills
headers. Both collections are wiped and repopulated.

Examples:
  groundhog ingest
  groundhog ingest --projects-url https://example.dev/projects.json --portfolio-url https://example.dev/`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestProjectsURL, "projects-url", "", "projects.json URL (default from config)")
	ingestCmd.Flags().StringVar(&ingestPortfolioURL, "portfolio-url", "", "portfolio page URL (default from config)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	_, vectors, err := getLLM(ctx)
	if err != nil {
		return err
	}

	ingestCfg := ingest.Config{
		ProjectsURL:  cfg.ProjectsURL,
		PortfolioURL: cfg.PortfolioURL,
	}
	if ingestProjectsURL != "" {
		ingestCfg.ProjectsURL = ingestProjectsURL
	}
	if ingestPortfolioURL != "" {
		ingestCfg.PortfolioURL = ingestPortfolioURL
	}

	summary, err := ingest.New(vectors, ingestCfg, logger).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Projects:        %d\n", summary.Projects)
	fmt.Printf("Project chunks:  %d\n", summary.ProjectChunks)
	fmt.Printf("Resume sections: %d\n", summary.ResumeSections)
	return nil
}
