package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rand/homer-sub001/internal/mcp/tools"
)

var queryCmd = &cobra.Command{
	Use:   "query ENTITY",
	Short: "Find nodes by name substring",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().String("format", "text", "output format: text, json")
}

func runQuery(cmd *cobra.Command, args []string) error {
	repoRoot, err := resolveRepoRoot(nil)
	if err != nil {
		return err
	}
	s, err := openStore(repoRoot)
	if err != nil {
		return err
	}
	defer s.Close()

	tool := tools.NewQueryTool(s)
	result, err := tool.Execute(context.Background(), map[string]interface{}{"name": args[0]})
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	if format == "json" {
		fmt.Println(result)
		return nil
	}
	printHumanized(result)
	return nil
}

// printHumanized re-indents a tool's JSON result for text-format
// commands, which share the mcp tools' JSON bodies rather than
// maintaining a second rendering per command.
func printHumanized(jsonResult string) {
	var v interface{}
	if err := json.Unmarshal([]byte(jsonResult), &v); err != nil {
		fmt.Println(jsonResult)
		return
	}
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(jsonResult)
		return
	}
	fmt.Println(string(pretty))
}
