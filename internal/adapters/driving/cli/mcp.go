package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reposcope/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp <repository>",
	Short: "Serve a repository to AI assistants over MCP",
	Long: `Start a Model Context Protocol server for one repository.

The server exposes tools to list files, open them, read their text and
force non-text files to render as text, plus the open documents as
resources.

By default, the server communicates over stdio using JSON-RPC. Use --port
to start an HTTP server instead, e.g. for the MCP Inspector.

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "reposcope": {
        "command": "/path/to/reposcope",
        "args": ["mcp", "owner/repo"]
      }
    }
  }`,
	Example: `  reposcope mcp spf13/cobra
  reposcope mcp spf13/cobra --port 8080`,
	Args: cobra.ExactArgs(1),
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	r, _, err := loadTree(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	ports := &mcp.Ports{
		Session:    r.Session,
		Explorer:   r.Explorer,
		Dispatcher: r.Dispatcher,
	}
	if r.NewOverrider != nil {
		ports.Overrider = r.NewOverrider()
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}
	defer closeQuietly(server)

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
