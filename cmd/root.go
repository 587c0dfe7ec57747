package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/franHR11/pcpro-mcp-mysql/internal/config"
	"github.com/franHR11/pcpro-mcp-mysql/internal/logger"
	"github.com/franHR11/pcpro-mcp-mysql/internal/server"
)

const version = "v1.0.0"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pcpro-mcp-mysql",
	Short: "MCP server exposing a MySQL database as typed tools",
	Long: `A Model Context Protocol (MCP) server that exposes a MySQL database
through connect/query/execute/list_tables/describe_table tools.

Credentials come from tool arguments, then MYSQL_* environment variables
(a local .env file is honored), with conventional defaults.`,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("url", "u", os.Getenv("MYSQL_URL"), "mysql:// connection URL (overrides MYSQL_* variables)")
	rootCmd.PersistentFlags().BoolP("read-only", "r", false, "Disable the execute tool (read-only surface)")
	rootCmd.PersistentFlags().Bool("allow-show", false, "Let SHOW statements through the read-only gate")
	rootCmd.PersistentFlags().String("log-file", "", "Log file path (overrides LOG_FILE)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: DEBUG, INFO, WARN, ERROR (overrides LOG_LEVEL)")

	// Subcommand: stdio (local transport, for IDE/agent integration)
	stdioCmd := &cobra.Command{
		Use:   "stdio",
		Short: "Run over stdio transport (for local MCP clients)",
		RunE:  runStdioServer,
	}
	rootCmd.AddCommand(stdioCmd)

	// Subcommand: http (remote clients, streamable HTTP transport)
	httpCmd := &cobra.Command{
		Use:   "http",
		Short: "Run over HTTP transport (for remote clients)",
		RunE:  runHTTPServer,
	}
	httpCmd.Flags().String("addr", ":8080", "HTTP listen address")
	rootCmd.AddCommand(httpCmd)
}

// setup loads .env and initializes logging before any subcommand runs.
func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	logCfg := config.LoggingFromEnv()
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		logCfg.Level = level
	}
	if file, _ := cmd.Flags().GetString("log-file"); file != "" {
		logCfg.OutputFile = file
	}
	return logger.Initialize(logger.ConfigFromLoggingConfig(logCfg))
}

func serverConfig(cmd *cobra.Command) server.MCPServerConfig {
	url, _ := cmd.Flags().GetString("url")
	if url == "" {
		// .env is loaded after flag defaults are bound, so re-check here.
		url = os.Getenv("MYSQL_URL")
	}
	readOnly, _ := cmd.Flags().GetBool("read-only")
	allowShow, _ := cmd.Flags().GetBool("allow-show")

	return server.MCPServerConfig{
		Version:   version,
		ReadOnly:  readOnly,
		AllowShow: allowShow,
		URL:       url,
	}
}

func runStdioServer(cmd *cobra.Command, args []string) error {
	defer logger.Shutdown()
	return server.RunStdioServer(serverConfig(cmd))
}

func runHTTPServer(cmd *cobra.Command, args []string) error {
	defer logger.Shutdown()
	addr, _ := cmd.Flags().GetString("addr")
	return server.RunHTTPServer(serverConfig(cmd), addr)
}
