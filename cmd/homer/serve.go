package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rand/homer-sub001/internal/mcp"
	"github.com/rand/homer-sub001/internal/mcp/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the tool server (homer_query, homer_graph, homer_risk) over stdio",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("transport", "stdio", "transport; only stdio is supported")
	serveCmd.Flags().String("host", "", "unused; reserved for future non-stdio transports")
	serveCmd.Flags().Int("port", 0, "unused; reserved for future non-stdio transports")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	if transport != "stdio" {
		return fmt.Errorf("unsupported transport %q: only stdio is implemented", transport)
	}

	repoRoot, err := resolveRepoRoot(nil)
	if err != nil {
		return err
	}
	s, err := openStore(repoRoot)
	if err != nil {
		return err
	}
	defer s.Close()

	handler := mcp.NewHandler()
	handler.RegisterTool("homer_query", tools.NewQueryTool(s))
	handler.RegisterTool("homer_graph", tools.NewGraphTool(s))
	handler.RegisterTool("homer_risk", tools.NewRiskTool(s))

	Infof("serving homer tools over stdio from %s", repoRoot)
	st := mcp.NewStdioTransport(handler, os.Stdin, os.Stdout)
	return st.Serve()
}
