package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

var (
	documentProject string
	documentOutput  string
	documentRaw     bool
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage ingested documents",
	Long:  `List, inspect, or delete the documents of a project.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents of a project",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentShow,
}

var documentChunksCmd = &cobra.Command{
	Use:   "chunks [doc-id]",
	Short: "Print document chunks",
	Long:  `Prints the anonymized chunks of a document. Use --raw to print the original text.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentChunks,
}

var documentImagesCmd = &cobra.Command{
	Use:   "images [doc-id]",
	Short: "List images extracted from a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentImages,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document",
	Long:  `Removes a document with its chunks, images, stored files and indexed vectors.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

func init() {
	documentListCmd.Flags().StringVarP(&documentProject, "project", "p", "", "project id (required)")
	_ = documentListCmd.MarkFlagRequired("project")
	addOutputFlag(documentListCmd, &documentOutput)
	documentChunksCmd.Flags().BoolVar(&documentRaw, "raw", false, "print original text instead of anonymized text")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentShowCmd)
	documentCmd.AddCommand(documentChunksCmd)
	documentCmd.AddCommand(documentImagesCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
}

// documentView is the serialised form of a document.
type documentView struct {
	ID         string `json:"id" yaml:"id"`
	Filename   string `json:"filename" yaml:"filename"`
	Category   string `json:"category" yaml:"category"`
	FileType   string `json:"file_type" yaml:"file_type"`
	Status     string `json:"status" yaml:"status"`
	PageCount  int    `json:"page_count" yaml:"page_count"`
	ChunkCount int    `json:"chunk_count" yaml:"chunk_count"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(cmd.Context(), documentProject)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	views := make([]documentView, len(docs))
	for i, d := range docs {
		views[i] = documentView{
			ID:         d.ID,
			Filename:   d.OriginalFilename,
			Category:   d.Category.String(),
			FileType:   string(d.FileType),
			Status:     d.Status.String(),
			PageCount:  d.PageCount,
			ChunkCount: d.ChunkCount,
			Error:      d.Error,
		}
	}

	return writeOutput(cmd, documentOutput, views, func() {
		outputDocumentTable(cmd, docs)
	})
}

func outputDocumentTable(cmd *cobra.Command, docs []domain.Document) {
	if len(docs) == 0 {
		cmd.Printf("No documents found for project: %s\n", documentProject)
		return
	}

	cmd.Printf("Documents for project %s:\n\n", documentProject)
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    File:     %s\n", docs[i].OriginalFilename)
		cmd.Printf("    Category: %s\n", docs[i].Category)
		cmd.Printf("    Status:   %s\n", docs[i].Status)
		if docs[i].Error != "" {
			cmd.Printf("    Error:    %s\n", docs[i].Error)
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
}

func runDocumentShow(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  File:     %s (%s, %d bytes)\n", doc.OriginalFilename, doc.FileType, doc.FileSize)
	cmd.Printf("  Project:  %s\n", doc.ProjectID)
	cmd.Printf("  Category: %s\n", doc.Category.Description())
	cmd.Printf("  Status:   %s\n", doc.Status)
	cmd.Printf("  Pages:    %d\n", doc.PageCount)
	cmd.Printf("  Chunks:   %d\n", doc.ChunkCount)
	if doc.Error != "" {
		cmd.Printf("  Error:    %s\n", doc.Error)
	}
	cmd.Printf("  Stored:   %s\n", doc.FilePath)
	cmd.Printf("  Created:  %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:  %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))

	return nil
}

func runDocumentChunks(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	chunks, err := documentService.GetChunks(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document chunks: %w", err)
	}

	for _, c := range chunks {
		header := fmt.Sprintf("--- chunk %d", c.ChunkIndex)
		if c.PageNumber > 0 {
			header += fmt.Sprintf(", page %d", c.PageNumber)
		}
		if c.SectionTitle != "" {
			header += ", " + c.SectionTitle
		}
		cmd.Println(header + " ---")

		content := c.AnonymizedContent
		if documentRaw || content == "" {
			content = c.Content
		}
		cmd.Println(content)
		cmd.Println()
	}
	return nil
}

func runDocumentImages(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	images, err := documentService.GetImages(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document images: %w", err)
	}

	if len(images) == 0 {
		cmd.Println("No images extracted.")
		return nil
	}
	for _, img := range images {
		cmd.Printf("  %s  page %d  %dx%d\n", img.FilePath, img.PageNumber, img.Width, img.Height)
	}
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Document %s deleted.\n", args[0])
	return nil
}
