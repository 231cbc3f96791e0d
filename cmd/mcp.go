package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ahvonen/notesmith/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing note search and sync tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// Stdout carries the MCP protocol; everything else goes to stderr.
		log := newLogger()
		eng, cleanup, err := buildEngine(cfg, log)
		if err != nil {
			return err
		}
		defer cleanup()

		mcpserver.Version = Version
		fmt.Fprintf(os.Stderr, "notesmith MCP server started on stdio (db=%s)\n", cfg.DatabasePath())

		return mcpserver.NewServer(eng).Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
