package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var progressFollow bool

var progressCmd = &cobra.Command{
	Use:   "progress [document-id]",
	Short: "Show ingestion progress of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runProgress,
}

func init() {
	progressCmd.Flags().BoolVarP(&progressFollow, "follow", "f", false, "poll until processing finishes")
	rootCmd.AddCommand(progressCmd)
}

func runProgress(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	documentID := args[0]
	if progressFollow {
		progress, err := followProgress(cmd.Context(), cmd, ingestionService, documentID)
		if err != nil {
			return fmt.Errorf("failed to follow progress: %w", err)
		}
		if progress.Error != "" {
			return errors.New(progress.Error)
		}
		return nil
	}

	progress, err := ingestionService.Progress(cmd.Context(), documentID)
	if err != nil {
		return fmt.Errorf("failed to get progress: %w", err)
	}

	cmd.Printf("Document: %s\n", progress.DocumentID)
	cmd.Printf("  Step:     %s\n", progress.Step)
	if progress.Percent >= 0 {
		cmd.Printf("  Progress: %d%%\n", progress.Percent)
	}
	cmd.Printf("  Label:    %s\n", progress.Label)
	if !progress.UpdatedAt.IsZero() {
		cmd.Printf("  Updated:  %s\n", progress.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
