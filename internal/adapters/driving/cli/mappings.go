package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

var (
	mappingsProject string
	mappingsOutput  string
)

var mappingsCmd = &cobra.Command{
	Use:   "mappings",
	Short: "Show and manage placeholder mappings",
	Long: `Lists the placeholder mappings of a project grouped by entity type.

Use the disable subcommand to stop a value from being replaced, for example
when a detection was a false positive.`,
	RunE: runMappingsShow,
}

var mappingsDisableCmd = &cobra.Command{
	Use:   "disable [original-value]",
	Short: "Stop replacing a value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setMappingActive(cmd, args[0], false)
	},
}

var mappingsEnableCmd = &cobra.Command{
	Use:   "enable [original-value]",
	Short: "Resume replacing a value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setMappingActive(cmd, args[0], true)
	},
}

func init() {
	mappingsCmd.PersistentFlags().StringVarP(&mappingsProject, "project", "p", "", "project id (required)")
	_ = mappingsCmd.MarkPersistentFlagRequired("project")
	addOutputFlag(mappingsCmd, &mappingsOutput)

	mappingsCmd.AddCommand(mappingsDisableCmd)
	mappingsCmd.AddCommand(mappingsEnableCmd)
	rootCmd.AddCommand(mappingsCmd)
}

// mappingView is the serialised form of a mapping.
type mappingView struct {
	Placeholder   string `json:"placeholder" yaml:"placeholder"`
	OriginalValue string `json:"original_value" yaml:"original_value"`
	Active        bool   `json:"active" yaml:"active"`
}

// mappingReportView is the serialised form of a mapping report.
type mappingReportView struct {
	ProjectID string                   `json:"project_id" yaml:"project_id"`
	Total     int                      `json:"total" yaml:"total"`
	ByType    map[string][]mappingView `json:"by_type" yaml:"by_type"`
}

func runMappingsShow(cmd *cobra.Command, _ []string) error {
	if anonymizationService == nil {
		return errors.New("anonymization service not configured")
	}

	report, err := anonymizationService.MappingReport(cmd.Context(), mappingsProject)
	if err != nil {
		return fmt.Errorf("failed to get mappings: %w", err)
	}

	view := mappingReportView{
		ProjectID: report.ProjectID,
		Total:     report.Total,
		ByType:    make(map[string][]mappingView, len(report.ByType)),
	}
	for t, mappings := range report.ByType {
		for _, m := range mappings {
			view.ByType[t.String()] = append(view.ByType[t.String()], mappingView{
				Placeholder:   m.Placeholder,
				OriginalValue: m.OriginalValue,
				Active:        m.Active,
			})
		}
	}

	return writeOutput(cmd, mappingsOutput, view, func() {
		outputMappingsTable(cmd, report)
	})
}

func outputMappingsTable(cmd *cobra.Command, report *domain.MappingReport) {
	if report.Total == 0 {
		cmd.Printf("No mappings for project %s.\n", report.ProjectID)
		return
	}

	cmd.Printf("Mappings for project %s:\n\n", report.ProjectID)
	for _, t := range domain.AllEntityTypes() {
		mappings := report.ByType[t]
		if len(mappings) == 0 {
			continue
		}
		cmd.Printf("[%s]\n", t)
		for _, m := range mappings {
			state := ""
			if !m.Active {
				state = " (disabled)"
			}
			cmd.Printf("  %-18s %s%s\n", m.Placeholder, m.OriginalValue, state)
		}
		cmd.Println()
	}
	cmd.Printf("Total: %d mappings\n", report.Total)
}

func setMappingActive(cmd *cobra.Command, value string, active bool) error {
	if anonymizationService == nil {
		return errors.New("anonymization service not configured")
	}

	if err := anonymizationService.SetMappingActive(cmd.Context(), mappingsProject, value, active); err != nil {
		return fmt.Errorf("failed to update mapping: %w", err)
	}

	state := "disabled"
	if active {
		state = "enabled"
	}
	cmd.Printf("Mapping for %q %s.\n", value, state)
	return nil
}
