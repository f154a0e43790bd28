package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the google-ads-mcp application
var rootCmd = &cobra.Command{
	Use:   "google-ads-mcp",
	Short: "MCP server exposing Google Ads reporting and keyword planning tools",
	Long: `google-ads-mcp is an MCP (Model Context Protocol) server that gives AI
assistants access to the Google Ads API: listing accessible accounts,
running GAQL queries and generating keyword ideas.

It can run as:
  - An MCP server over stdio (default) or streamable HTTP
  - A standalone CLI for OAuth login and account listing`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "google-ads-mcp version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newAccountsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
