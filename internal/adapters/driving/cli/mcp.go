package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rfpvault/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the archive to AI assistants",
	Long:  `Serve rfpvault over the Model Context Protocol.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start an MCP server over the project archive.

Assistants only ever receive anonymized text. The deanonymize tool restores
real values on request; pass --no-reveal to withhold it.

Without --port the server speaks JSON-RPC on stdio, which is what desktop
assistants expect. With --port it serves streamable HTTP, bound to
127.0.0.1 unless --host says otherwise.

Tools: search, anonymize, deanonymize, mappings, progress.
Resources: rfpvault://projects/{projectId}/documents and
rfpvault://documents/{documentId}/chunks.

Examples:
  rfpvault mcp serve
  rfpvault mcp serve --no-reveal
  rfpvault mcp serve --port 8080
  rfpvault mcp serve --port 8080 --host 0.0.0.0

Assistant configuration:
  {
    "mcpServers": {
      "rfpvault": {
        "command": "/path/to/rfpvault",
        "args": ["mcp", "serve", "--no-reveal"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

var (
	mcpPort     int
	mcpHost     string
	mcpNoReveal bool
)

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "serve HTTP on this port instead of stdio")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", mcp.DefaultHost, "interface to bind with --port")
	mcpServeCmd.Flags().BoolVar(&mcpNoReveal, "no-reveal", false, "do not offer the deanonymize tool")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return fmt.Errorf("mcp serve: %w", errSearchUnavailable)
	}

	var opts []mcp.Option
	if mcpNoReveal {
		opts = append(opts, mcp.WithoutReveal())
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Search:        searchService,
		Anonymization: anonymizationService,
		Document:      documentService,
		Ingestion:     ingestionService,
	}, opts...)
	if err != nil {
		return err
	}

	if mcpPort <= 0 {
		return server.Run(cmd.Context())
	}

	addr := mcp.ListenAddr(mcpHost, mcpPort)
	// stdout stays clean in stdio mode; here it is free for the banner
	fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s/\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
