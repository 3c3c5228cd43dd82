package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

// errSearchUnavailable means no embedder or vector index was configured.
var errSearchUnavailable = errors.New("search service not configured")

var (
	searchProject  string
	searchTopK     int
	searchCategory string
	searchOutput   string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Performs semantic search over the anonymized chunks of a project.

The query is embedded with the configured embedding model and compared to
indexed chunks by cosine similarity. Results show anonymized content.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchProject, "project", "p", "", "project id (required)")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", domain.DefaultTopK, "maximum number of results")
	searchCmd.Flags().StringVarP(&searchCategory, "category", "c", "", "restrict to one document category")
	addOutputFlag(searchCmd, &searchOutput)
	_ = searchCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(searchCmd)
}

// searchResultView is the serialised form of a search result.
type searchResultView struct {
	ChunkID      string  `json:"chunk_id" yaml:"chunk_id"`
	DocumentID   string  `json:"document_id" yaml:"document_id"`
	DocumentName string  `json:"document_name" yaml:"document_name"`
	Category     string  `json:"category" yaml:"category"`
	PageNumber   int     `json:"page_number" yaml:"page_number"`
	SectionTitle string  `json:"section_title,omitempty" yaml:"section_title,omitempty"`
	Content      string  `json:"content" yaml:"content"`
	Score        float64 `json:"score" yaml:"score"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errSearchUnavailable
	}

	opts := domain.SearchOptions{
		TopK:     searchTopK,
		Category: domain.Category(searchCategory),
	}
	if opts.Category != "" && !opts.Category.IsValid() {
		return fmt.Errorf("invalid category %q", searchCategory)
	}

	results, err := searchService.Search(cmd.Context(), searchProject, query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	views := make([]searchResultView, len(results))
	for i, r := range results {
		views[i] = searchResultView{
			ChunkID:      r.ChunkID,
			DocumentID:   r.DocumentID,
			DocumentName: r.DocumentName,
			Category:     r.Category.String(),
			PageNumber:   r.PageNumber,
			SectionTitle: r.SectionTitle,
			Content:      r.Content,
			Score:        r.Score,
		}
	}

	return writeOutput(cmd, searchOutput, views, func() {
		outputSearchTable(cmd, results)
	})
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		r := results[i]
		// Format: [N] Document (p.X) - Score
		location := ""
		if r.PageNumber > 0 {
			location = fmt.Sprintf(" p.%d", r.PageNumber)
		}
		cmd.Printf("  [%d] %s%s (%.2f)\n", i+1, r.DocumentName, location, r.Score)
		cmd.Printf("      Category: %s\n", r.Category)
		if r.SectionTitle != "" {
			cmd.Printf("      Section: %s\n", r.SectionTitle)
		}
		cmd.Printf("      %s\n", snippet(r.Content, 200))
		cmd.Println()
	}
}

// snippet returns the first n runes of s on one line.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
