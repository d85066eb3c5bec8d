package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/devmaster24/shelly-smartplug-exporter/exporter/internal/api"
	"github.com/devmaster24/shelly-smartplug-exporter/exporter/internal/config"
	"github.com/devmaster24/shelly-smartplug-exporter/exporter/internal/device"
	"github.com/devmaster24/shelly-smartplug-exporter/exporter/internal/instrument"
	"github.com/devmaster24/shelly-smartplug-exporter/exporter/internal/poller"
	"github.com/devmaster24/shelly-smartplug-exporter/exporter/internal/shelly"
)

func main() {
	var (
		ips      config.StringList
		mappings config.StringList
		port     int
	)
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Var(&ips, "ip-addr", "IP address of a smart plug; space-separated or repeated")
	flag.Var(&ips, "i", "shorthand for -ip-addr")
	flag.Var(&mappings, "hostname-ip-mapping", "IP -> hostname mapping in `ip:hostname` format; repeatable")
	flag.Var(&mappings, "m", "shorthand for -hostname-ip-mapping")
	flag.IntVar(&port, "server-port", 0, "port to run the webserver at (default 9001)")
	flag.IntVar(&port, "p", 0, "shorthand for -server-port")
	flag.Parse()

	// JSON until the configured handler is known, so startup errors are
	// structured like everything after them.
	slog.SetDefault(newLogger(os.Stdout, config.Default().Exporter))

	cfg, err := loadConfig(*configPath, ips, mappings, port)
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(os.Stdout, cfg.Exporter))

	reg, err := device.FromConfig(cfg.Devices)
	if err != nil {
		slog.Error("failed to build device registry", "err", err)
		os.Exit(1)
	}
	for _, d := range reg.All() {
		slog.Info("registered device", "device", d.Label, "address", d.Address)
	}
	if reg.Len() == 0 {
		slog.Warn("no devices configured: /metrics will be empty")
	}

	self := prometheus.NewRegistry()
	metrics := instrument.New(self)
	metrics.SetDevices(reg.Len())

	coord := poller.New(shelly.NewClient(cfg.Exporter.FetchTimeout), metrics)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Devices are fixed for the process lifetime; edits are only reported.
	if *configPath != "" {
		go func() {
			running := make([]string, 0, reg.Len())
			for _, d := range reg.All() {
				running = append(running, d.Address)
			}
			if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
				// Flag devices are not in the file; keep them out of the diff.
				updated.AddDevices(ips, mappings)
				added, removed := updated.DeviceDiff(running)
				if len(added) == 0 && len(removed) == 0 {
					slog.Info("config file changed, device list unchanged", "path", *configPath)
					return
				}
				slog.Warn("config file changed: restart the exporter to apply",
					"path", *configPath, "added", added, "removed", removed)
			}); err != nil {
				slog.Error("config watcher stopped", "err", err)
			}
		}()
	}

	// Bind before serving so an unusable port fails startup.
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Exporter.Port))
	if err != nil {
		slog.Error("failed to listen", "port", cfg.Exporter.Port, "err", err)
		os.Exit(1)
	}

	httpSrv := &http.Server{
		Handler:           api.New(reg, coord, self),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("shelly-exporter listening", "port", cfg.Exporter.Port, "devices", reg.Len())
		if err := httpSrv.Serve(lis); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shelly-exporter shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Exporter.FetchTimeout+5*time.Second)
	defer stop()
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck
}

// loadConfig builds the effective configuration: the file at path when
// given (defaults otherwise), plus devices and port from the command line.
func loadConfig(path string, ips, mappings []string, port int) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.AddDevices(ips, mappings)
	if port != 0 {
		cfg.Exporter.Port = port
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg config.ExporterConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level()}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
