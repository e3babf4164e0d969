package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brightmill/storefront/internal/apiclient"
	"github.com/brightmill/storefront/internal/console"
)

func newConsoleCmd() *cobra.Command {
	var apiURL string
	cmd := &cobra.Command{
		Use:   "console",
		Short: "Run the terminal admin console",
		Long:  "Open the interactive admin console against a running storefront service.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(apiURL)
		},
	}
	cmd.Flags().StringVar(&apiURL, "api-url", "", "service URL (default: api_url from config.yaml)")
	return cmd
}

func runConsole(apiURL string) error {
	if apiURL == "" {
		configDir, err := resolveConfigDir()
		if err != nil {
			return exitError(exitSysError, fmt.Sprintf("resolve config directory: %s", err))
		}
		cfg, err := loadConfig(configDir)
		if err != nil {
			return exitError(exitUserError, fmt.Sprintf("load config: %s", err))
		}
		apiURL = cfg.GetString(cfgKeyAPIURL)
	}
	return console.Run(apiclient.New(apiURL))
}
