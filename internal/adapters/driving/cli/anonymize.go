package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var anonymizeProject string

var anonymizeCmd = &cobra.Command{
	Use:   "anonymize [text]",
	Short: "Replace sensitive values with placeholders",
	Long: `Detects companies, people, contacts and other sensitive values in the
text and replaces each with a project-scoped placeholder such as
[ENTREPRISE_1]. The same value always receives the same placeholder within
a project.

Reads standard input when no text argument is given or the argument is "-".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnonymize,
}

var deanonymizeCmd = &cobra.Command{
	Use:   "deanonymize [text]",
	Short: "Restore original values from placeholders",
	Long: `Replaces every active placeholder of the project found in the text with
its original value. Unknown placeholders are left untouched.

Reads standard input when no text argument is given or the argument is "-".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDeanonymize,
}

func init() {
	for _, c := range []*cobra.Command{anonymizeCmd, deanonymizeCmd} {
		c.Flags().StringVarP(&anonymizeProject, "project", "p", "", "project id (required)")
		_ = c.MarkFlagRequired("project")
		rootCmd.AddCommand(c)
	}
}

func runAnonymize(cmd *cobra.Command, args []string) error {
	if anonymizationService == nil {
		return errors.New("anonymization service not configured")
	}

	text, err := inputText(cmd, args)
	if err != nil {
		return err
	}

	out, err := anonymizationService.AnonymizeText(cmd.Context(), anonymizeProject, text)
	if err != nil {
		return fmt.Errorf("anonymization failed: %w", err)
	}
	cmd.Println(out)
	return nil
}

func runDeanonymize(cmd *cobra.Command, args []string) error {
	if anonymizationService == nil {
		return errors.New("anonymization service not configured")
	}

	text, err := inputText(cmd, args)
	if err != nil {
		return err
	}

	out, err := anonymizationService.DeanonymizeText(cmd.Context(), anonymizeProject, text)
	if err != nil {
		return fmt.Errorf("deanonymization failed: %w", err)
	}
	cmd.Println(out)
	return nil
}

// inputText returns the text argument or, when absent, standard input.
func inputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}
