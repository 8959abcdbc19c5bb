package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mozdata/probescraper/internal/mcp"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the probescraper MCP server",
	Long: `Launch an MCP server that lets AI agents query published metric,
ping and tag artifacts via standard tools.

The server reads the artifact directory produced by the scrape command;
it never scrapes on its own. Runs over stdio, so keep stdout clean.`,
	PreRunE: mcpSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg)
	},
}

// mcpSetup loads just enough configuration to locate artifacts. The MCP
// server serves published output, so it skips repository validation and
// cache initialization entirely.
func mcpSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	cfg.OutputDir = input.OutDir
	return nil
}

// mcpSetupWrapper wraps mcpSetup to provide PreRunE for the mcp command.
func mcpSetupWrapper(_ *cobra.Command, _ []string) error {
	return mcpSetup()
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
