package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/brightmill/storefront/pkg/catalog"
	"github.com/brightmill/storefront/pkg/sqlite"
)

func newInitCmd() *cobra.Command {
	var demo bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize storefront storage",
		Long: "Create the configuration and data directories, write a default\n" +
			"config.yaml, and initialize the storage backend.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, demo)
		},
	}
	cmd.Flags().BoolVar(&demo, "demo", false, "seed a demo store with sample records")
	return cmd
}

func runInit(cmd *cobra.Command, demo bool) error {
	configDir, err := resolveConfigDir()
	if err != nil {
		return exitError(exitSysError, fmt.Sprintf("resolve config directory: %s", err))
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return exitError(exitSysError, fmt.Sprintf("create config directory: %s", err))
	}

	cfg, err := loadConfig(configDir)
	if err != nil {
		return exitError(exitUserError, fmt.Sprintf("load config: %s", err))
	}

	dataDir, err := resolveDataDir(cfg.GetString(cfgKeyDataDir))
	if err != nil {
		return exitError(exitSysError, fmt.Sprintf("resolve data directory: %s", err))
	}

	if err := writeConfigIfMissing(filepath.Join(configDir, "config.yaml"), dataDir); err != nil {
		return exitError(exitSysError, fmt.Sprintf("write config: %s", err))
	}

	// Initialize the data directory via Attach then Detach.
	backend := sqlite.NewBackend()
	if err := backend.Attach(catalog.Config{Backend: catalog.BackendSQLite, DataDir: dataDir}); err != nil {
		return exitError(exitSysError, fmt.Sprintf("initialize storage: %s", err))
	}

	if demo {
		storeID, err := sqlite.SeedDemo(backend)
		if err != nil {
			_ = backend.Detach()
			return exitError(exitSysError, fmt.Sprintf("seed demo store: %s", err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded demo store %s\n", storeID)
	}

	if err := backend.Detach(); err != nil {
		return exitError(exitSysError, fmt.Sprintf("finalize storage: %s", err))
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Storefront initialized")
	return nil
}
