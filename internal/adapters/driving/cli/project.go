package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var projectDeleteYes bool

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete [project-id]",
	Short: "Delete a project",
	Long: `Removes every document of a project together with its placeholder
mappings and vector collection. This cannot be undone.`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectDelete,
}

func init() {
	projectDeleteCmd.Flags().BoolVarP(&projectDeleteYes, "yes", "y", false, "skip confirmation")
	projectCmd.AddCommand(projectDeleteCmd)
	rootCmd.AddCommand(projectCmd)
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	projectID := args[0]
	if !projectDeleteYes {
		cmd.Printf("Delete project %s and all its documents and mappings? [y/N]: ", projectID)
		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n') //nolint:errcheck // empty answer means no
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := documentService.DeleteProject(cmd.Context(), projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	cmd.Printf("Project %s deleted.\n", projectID)
	return nil
}
