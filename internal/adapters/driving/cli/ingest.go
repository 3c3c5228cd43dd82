package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driving"
)

var (
	ingestProject  string
	ingestCategory string
	ingestJobs     int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Upload and index documents",
	Long: `Uploads files into a project, extracts their text, anonymizes it and
indexes the chunks for search.

Supported formats: pdf, docx, xlsx, pptx, txt, md. Legacy doc and xls files
are accepted but yield no text.

Categories:
  old_rfp       Previous call for tenders
  old_response  Previous response
  new_rfp       Current call for tenders`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestProject, "project", "p", "", "project id (required)")
	ingestCmd.Flags().StringVarP(&ingestCategory, "category", "c", string(domain.CategoryOldRFP),
		"document category: old_rfp, old_response or new_rfp")
	ingestCmd.Flags().IntVarP(&ingestJobs, "jobs", "j", 2, "number of files processed concurrently")
	_ = ingestCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	category := domain.Category(ingestCategory)
	if !category.IsValid() {
		return fmt.Errorf("invalid category %q", ingestCategory)
	}

	jobs := ingestJobs
	if jobs < 1 {
		jobs = 1
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Serialises output lines from concurrent workers.
	var mu sync.Mutex
	printf := func(format string, a ...any) {
		mu.Lock()
		defer mu.Unlock()
		cmd.Printf(format, a...)
	}

	var failures int
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for _, path := range args {
		g.Go(func() error {
			doc, err := ingestFile(gctx, ingestionService, ingestProject, path, category, true)
			if err != nil {
				mu.Lock()
				failures++
				mu.Unlock()
				printf("✗ %s: %v\n", filepath.Base(path), err)
				return nil
			}
			if doc.Status == domain.StatusFailed {
				mu.Lock()
				failures++
				mu.Unlock()
			}
			printf("%s\n", describeOutcome(doc))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d files could not be ingested", failures, len(args))
	}
	return nil
}

// ingestFile uploads one file and runs or starts its ingestion.
func ingestFile(
	ctx context.Context,
	svc driving.IngestionService,
	projectID string,
	path string,
	category domain.Category,
	wait bool,
) (*domain.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	doc, err := svc.Upload(ctx, driving.UploadRequest{
		ProjectID: projectID,
		Category:  category,
		Filename:  filepath.Base(path),
		Content:   content,
	})
	if err != nil {
		return nil, err
	}

	if !wait {
		if err := svc.Start(ctx, doc.ID); err != nil {
			return nil, err
		}
		return doc, nil
	}

	if err := svc.Process(ctx, doc.ID); err != nil {
		return nil, err
	}
	if documentService != nil {
		if updated, err := documentService.Get(ctx, doc.ID); err == nil {
			return updated, nil
		}
	}
	return doc, nil
}

func describeOutcome(doc *domain.Document) string {
	switch doc.Status {
	case domain.StatusCompleted:
		return fmt.Sprintf("✓ %s (%s): %d pages, %d chunks", doc.OriginalFilename, doc.ID, doc.PageCount, doc.ChunkCount)
	case domain.StatusFailed:
		return fmt.Sprintf("✗ %s (%s): %s", doc.OriginalFilename, doc.ID, doc.Error)
	default:
		return fmt.Sprintf("• %s (%s): %s", doc.OriginalFilename, doc.ID, doc.Status)
	}
}

// followProgress polls a document's progress until it reaches a terminal
// step, printing every change.
func followProgress(ctx context.Context, cmd *cobra.Command, svc driving.IngestionService, documentID string) (*domain.Progress, error) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	var last domain.Step
	for {
		progress, err := svc.Progress(ctx, documentID)
		if err != nil {
			return nil, err
		}
		if progress.Step != last {
			cmd.Printf("%3d%%  %s\n", max(progress.Percent, 0), progress.Label)
			last = progress.Step
		}
		if progress.IsTerminal() {
			return progress, nil
		}

		select {
		case <-ctx.Done():
			return progress, ctx.Err()
		case <-ticker.C:
		}
	}
}
