package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rfpvault/internal/connectors/filesystem"
	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

var (
	watchProject  string
	watchCategory string
	watchExisting bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Ingest documents dropped into a folder",
	Long: `Watches a directory and ingests every supported file written to it.

A file is ingested once it has stopped changing for a short moment. Each
new or modified file becomes a new document; earlier versions are kept.
Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchProject, "project", "p", "", "project id (required)")
	watchCmd.Flags().StringVarP(&watchCategory, "category", "c", string(domain.CategoryOldRFP),
		"document category: old_rfp, old_response or new_rfp")
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "also ingest files already in the directory")
	_ = watchCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	category := domain.Category(watchCategory)
	if !category.IsValid() {
		return fmt.Errorf("invalid category %q", watchCategory)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher := filesystem.New(args[0])
	defer func() { _ = watcher.Close() }()

	if watchExisting {
		paths, err := watcher.Scan()
		if err != nil {
			return err
		}
		for _, path := range paths {
			ingestWatched(ctx, cmd, path, category)
		}
	}

	changes, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Watching %s for project %s (Ctrl+C to stop)\n", watcher.Root(), watchProject)

	for change := range changes {
		ingestWatched(ctx, cmd, change.Path, category)
	}

	ingestionService.Wait()
	cmd.Println("Stopped.")
	return nil
}

func ingestWatched(ctx context.Context, cmd *cobra.Command, path string, category domain.Category) {
	doc, err := ingestFile(ctx, ingestionService, watchProject, path, category, false)
	if err != nil {
		cmd.Printf("✗ %s: %v\n", filepath.Base(path), err)
		return
	}
	cmd.Printf("• %s queued as %s\n", doc.OriginalFilename, doc.ID)
}
