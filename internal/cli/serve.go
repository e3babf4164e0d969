package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"pkt.systems/pslog"

	"github.com/brightmill/storefront/internal/events"
	"github.com/brightmill/storefront/internal/httpapi"
	"github.com/brightmill/storefront/internal/media"
	"github.com/brightmill/storefront/internal/service"
	"github.com/brightmill/storefront/pkg/catalog"
	"github.com/brightmill/storefront/pkg/sqlite"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront REST service",
		Long:  "Serve the store-scoped REST API and hosted media until interrupted.",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := pslog.Ctx(ctx)

	configDir, err := resolveConfigDir()
	if err != nil {
		return exitError(exitSysError, fmt.Sprintf("resolve config directory: %s", err))
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return exitError(exitUserError, fmt.Sprintf("load config: %s", err))
	}
	dataDir, err := resolveDataDir(cfg.GetString(cfgKeyDataDir))
	if err != nil {
		return exitError(exitSysError, fmt.Sprintf("resolve data directory: %s", err))
	}

	backend := sqlite.NewBackend()
	if err := backend.Attach(catalog.Config{Backend: catalog.BackendSQLite, DataDir: dataDir}); err != nil {
		return exitError(exitSysError, fmt.Sprintf("attach storage: %s", err))
	}
	defer func() {
		if err := backend.Detach(); err != nil {
			logger.Warn("detaching storage", "err", err)
		}
	}()

	mediaDir := cfg.GetString(cfgKeyMediaDir)
	if mediaDir == "" {
		mediaDir = filepath.Join(dataDir, "media")
	}
	mediaStore, err := media.NewStore(mediaDir, cfg.GetString(cfgKeyBaseURL))
	if err != nil {
		return exitError(exitSysError, fmt.Sprintf("media store: %s", err))
	}

	sink := buildSink(cfg, logger)
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Warn("closing event sinks", "err", err)
		}
	}()

	server := httpapi.NewServer(service.New(backend, sink), mediaStore)

	addr := cfg.GetString(cfgKeyListenAddr)
	logger.Info("storefront serving",
		"addr", addr,
		"data_dir", dataDir,
		"media_dir", mediaDir)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpapi.ListenAndServe(gctx, addr, server.Handler())
	})
	if err := g.Wait(); err != nil {
		return exitError(exitSysError, fmt.Sprintf("serve: %s", err))
	}

	logger.Info("storefront stopped")
	return nil
}

// buildSink assembles the record event feed: the log sink always runs and
// Kafka joins when brokers are configured.
func buildSink(cfg *viper.Viper, logger pslog.Logger) events.Sink {
	sinks := []events.Sink{events.NewLogSink(logger)}
	if brokers := cfg.GetStringSlice(cfgKeyKafkaBrokers); len(brokers) > 0 {
		topic := cfg.GetString(cfgKeyKafkaTopic)
		kafka, err := events.NewKafkaSink(brokers, topic)
		if err != nil {
			logger.Warn("kafka sink disabled", "err", err)
		} else {
			logger.Info("kafka sink enabled", "brokers", brokers, "topic", topic)
			sinks = append(sinks, kafka)
		}
	}
	if len(sinks) == 1 {
		return sinks[0]
	}
	return events.NewFanout(sinks...)
}
