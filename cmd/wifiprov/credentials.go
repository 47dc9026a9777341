package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/wifiprov/internal/credentials"
	"github.com/muurk/wifiprov/internal/ui"
)

var (
	credSSID     string
	credPassword string
	credReveal   bool
	credYes      bool
)

func init() {
	for _, c := range []*cobra.Command{credShowCmd, credSetCmd, credClearCmd} {
		addStoreFlags(c.Flags())
	}
	credShowCmd.Flags().BoolVar(&credReveal, "reveal", false, "Print the password instead of masking it")
	credSetCmd.Flags().StringVar(&credSSID, "ssid", "", "Network name (required)")
	credSetCmd.Flags().StringVar(&credPassword, "password", "", "Network password (prompted when omitted)")
	_ = credSetCmd.MarkFlagRequired("ssid")
	credClearCmd.Flags().BoolVarP(&credYes, "yes", "y", false, "Do not ask for confirmation")

	credentialsCmd.AddCommand(credShowCmd, credSetCmd, credClearCmd)
	rootCmd.AddCommand(credentialsCmd)
}

var credentialsCmd = &cobra.Command{
	Use:     "credentials",
	Aliases: []string{"creds"},
	Short:   "Inspect or change the stored wifi credentials",
}

// withStore opens the configured store for the duration of fn
func withStore(cmd *cobra.Command, fn func(store credentials.Store) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}
	defer func() { _ = closeStore() }()
	return fn(store)
}

var credShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored network",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(store credentials.Store) error {
			printer := ui.NewPrinter(nil)

			creds, err := store.Load()
			if errors.Is(err, credentials.ErrNotFound) {
				printer.PrintResult(ui.NewWarningResult("No credentials stored").
					AddDetail("Location", store.Location()))
				return nil
			}
			if err != nil {
				return err
			}

			password := "********"
			if credReveal {
				password = creds.Password
			}
			printer.PrintResult(ui.NewSuccessResult("Stored network").
				AddDetail("SSID", creds.SSID).
				AddDetail("Password", password).
				AddDetail("Location", creds.Origin))
			return nil
		})
	},
}

var credSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store a network to join on the next run",
	Example: `  wifiprov credentials set --ssid home
  wifiprov credentials set --ssid home --credentials-file /var/lib/wifiprov/wifi.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := credPassword
		if password == "" {
			var err error
			if password, err = readSecret(fmt.Sprintf("Password for %q: ", credSSID)); err != nil {
				return err
			}
		}

		creds, err := credentials.New(credSSID, password)
		if err != nil {
			return err
		}

		warnCredentials(creds)

		return withStore(cmd, func(store credentials.Store) error {
			if err := store.Save(creds); err != nil {
				return err
			}
			ui.NewPrinter(nil).PrintResult(ui.NewSuccessResult("Credentials saved").
				AddDetail("SSID", creds.SSID).
				AddDetail("Location", store.Location()))
			return nil
		})
	},
}

var credClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the stored network",
	Long: `Remove the stored credentials. The next run starts the access point
and waits for new credentials.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(store credentials.Store) error {
			if !credYes && !ui.Confirm(os.Stdin, os.Stdout, fmt.Sprintf("Clear credentials in %s?", store.Location())) {
				return nil
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Println("Credentials cleared.")
			return nil
		})
	},
}

// warnCredentials prints credentials a WPA network would likely refuse
func warnCredentials(creds *credentials.Credentials) {
	for _, w := range creds.Warnings() {
		fmt.Fprintf(os.Stderr, "%s  %s\n", ui.WarningMarker, w)
	}
}
