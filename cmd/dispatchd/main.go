package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "dispatchd",
		Short: "Serve routes declared in a TOML file through the action dispatcher",
		Long: `dispatchd loads routes, named middlewares and server settings from a
TOML config file and serves them over HTTP.

Route targets are Class@method pairs. The built-in classes are
HealthController and EchoController; the built-in middlewares are
requestlog, jwtauth and hotpaths.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "dispatch.toml", "path to the TOML config file")

	root.AddCommand(
		serveCmd(&configPath),
		routesCmd(&configPath),
		versionCmd(),
	)
	return root
}
