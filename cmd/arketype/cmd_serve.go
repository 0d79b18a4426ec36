package main

import (
	"context"

	"github.com/spf13/cobra"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"arketype/internal/logging"
	"arketype/internal/mcpserver"
)

var serveFlags struct {
	graphDir string
	axesFile string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the graph to MCP clients over stdio",
	Long: `Loads the graph once and exposes read-only lookup, distance, nearest,
pair-validation, and census tools over an MCP stdio transport. The server
watches for parent process death and shuts itself down when the client
disappears, so no orphaned server processes accumulate.`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.graphDir, "graph", defaultGraphDir, "Graph directory")
	f.StringVar(&serveFlags.axesFile, "axes", "", "Axis catalog YAML (default: embedded catalog)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	reg, err := loadRegistry(serveFlags.axesFile)
	if err != nil {
		return err
	}
	g, _, err := loadGraph(serveFlags.graphDir)
	if err != nil {
		return err
	}

	srv := mcpserver.NewServer(g, reg, version)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	mcpserver.WatchParent(ctx, cancel)

	logging.New("serve").Info("starting arketype MCP server over stdio", "graph", serveFlags.graphDir)
	return srv.Run(ctx, &sdkmcp.StdioTransport{})
}
