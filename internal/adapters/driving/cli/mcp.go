package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cartographer/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Serves the extraction pipeline to MCP clients such as Claude Desktop.

Tools: list_clients, scan_client, estimate_cost, extract and analyze_files.
Resources: cartographer://clients and cartographer://history/{client}.

Without --port the server speaks JSON-RPC over stdio. With --port it serves
streamable HTTP on that port and Prometheus metrics at /metrics.

  cartographer mcp serve
  cartographer mcp serve --port 8080

claude_desktop_config.json:
  {
    "mcpServers": {
      "cartographer": {
        "command": "/path/to/cartographer",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func newMCPServer() (*mcp.Server, error) {
	if scanService == nil || extractionService == nil {
		return nil, errors.New("extraction service not configured")
	}
	return mcp.NewServer(&mcp.Ports{
		Scan:       scanService,
		Extraction: extractionService,
		Analysis:   analysisService,
		History:    historyService,
		Metrics:    metricsHandler,
	})
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	server, err := newMCPServer()
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
