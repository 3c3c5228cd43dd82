package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui"
)

var tuiProject string

var tuiCmd = &cobra.Command{
	Use:   "tui [document-id]",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface.

With a document ID the UI follows that document's ingestion until it
completes or fails. With --project it opens the project menu: browse
documents and their anonymized chunks, follow ingestion, and search.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Select
  o        - Original / anonymized chunk text
  tab      - Cycle search category
  Esc      - Back
  q        - Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVarP(&tuiProject, "project", "p", "", "project to browse")
	rootCmd.AddCommand(tuiCmd)
}

func tuiStart(args []string) (tui.Start, error) {
	start := tui.Start{ProjectID: tuiProject}
	if len(args) == 1 {
		start.DocumentID = args[0]
	}
	if start.ProjectID == "" && start.DocumentID == "" {
		return start, errors.New("a document ID or --project is required")
	}
	return start, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	start, err := tuiStart(args)
	if err != nil {
		return err
	}

	ports := &tui.Ports{
		Document:  documentService,
		Ingestion: ingestionService,
		Search:    searchService,
	}

	app, err := tui.NewApp(ports, start)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
