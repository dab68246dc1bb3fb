// Command simple-registrator bridges Docker container lifecycle events to
// etcd service-discovery keys (spec §1).
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/SUNET/simple-registrator/internal/config"
	"github.com/SUNET/simple-registrator/internal/dockerrt"
	"github.com/SUNET/simple-registrator/internal/etcdkv"
	"github.com/SUNET/simple-registrator/internal/etcdsink"
	"github.com/SUNET/simple-registrator/internal/eventloop"
	"github.com/SUNET/simple-registrator/internal/logsink"
	"github.com/SUNET/simple-registrator/internal/projector"
	"github.com/SUNET/simple-registrator/internal/registry"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "simple-registrator",
		Short: "Bridge Docker container lifecycle to etcd service discovery",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configureLogging(debug)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, debug)
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	return cmd
}

func configureLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func run(ctx context.Context, debug bool) error {
	cfg, err := config.Load(debug)
	if err != nil {
		return err
	}

	docker, err := dockerrt.NewSDKClient()
	if err != nil {
		return err
	}
	defer docker.Close()

	kv, err := etcdkv.NewEtcdClient(cfg.EtcdHost, cfg.EtcdPort)
	if err != nil {
		return err
	}
	defer kv.Close()

	projCfg := projector.Config{
		Namespace:         cfg.Namespace,
		NameStripPrefixes: cfg.NameStripPrefixes,
		Hostname:          cfg.Hostname,
		HostIPv4:          cfg.HostIPv4,
	}

	sink := etcdsink.New(kv, projCfg, cfg.RefreshPeriod)

	reg := registry.New()
	registry.Register(reg, sink.Backend(), config.BackendEnabled(etcdsink.Name, sink.Backend().DefaultEnabled))
	registry.Register(reg, logsink.Backend(), config.BackendEnabled(logsink.Name, logsink.Backend().DefaultEnabled))

	loop := eventloop.New(docker, reg)

	slog.Info("simple-registrator: bootstrapping from currently running containers")
	if err := loop.Bootstrap(ctx); err != nil {
		return err
	}

	slog.Info("simple-registrator: watching Docker events")
	if err := loop.Run(ctx); err != nil {
		if ctx.Err() != nil {
			slog.Info("simple-registrator: shutting down")
			return nil
		}
		return err
	}
	return nil
}
