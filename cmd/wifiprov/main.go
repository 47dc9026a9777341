// Wifiprov keeps a device connected to a wifi network.
//
// On start it joins the network stored in the credential store. When that
// fails, or nothing is stored, it brings up its own access point and serves
// a small HTTP form where the network name and password can be entered.
// The submitted credentials are saved and the connection is retried.
//
// Usage:
//
//	wifiprov [command] [flags]
//
// See 'wifiprov --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/wifiprov/internal/logging"
	"github.com/muurk/wifiprov/internal/version"
)

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "wifiprov",
	Short: "Wifi connection manager with an access point provisioning portal",
	Long: `Wifiprov joins the wifi network stored on this device. When no network
is stored, or joining fails, it starts an access point and serves a form
where new credentials can be entered, then tries again.

Settings come from a YAML config file, WIFIPROV_* environment variables and
command-line flags. Logging is silent unless --log-level or
WIFIPROV_LOG_LEVEL is set.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: wifiprov.yaml in ., ~/.config/wifiprov, /etc/wifiprov)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wifiprov %s\n", version.Full())
	},
}
