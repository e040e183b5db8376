package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/packer/internal/application"
	"github.com/eugenenazirov/packer/internal/config"
	"github.com/eugenenazirov/packer/internal/logging"
	"github.com/eugenenazirov/packer/internal/metrics"
	"github.com/eugenenazirov/packer/internal/parser"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("packer", "Package Packer - picks the most valuable items that fit each package")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	envFile := kingpinApp.Flag("env-file", "Path to a dotenv file (defaults to .env when present)").String()
	logLevel := kingpinApp.Flag("log-level", "Log level: debug, info, warn, error").String()
	logFormat := kingpinApp.Flag("log-format", "Log format: json or console").String()

	packCmd := kingpinApp.Command("pack", "Optimise every package line in a file and print one result per line")
	packFile := packCmd.Arg("file", "Path to the package file").Required().String()

	serveCmd := kingpinApp.Command("serve", "Run the HTTP packing service")
	port := serveCmd.Flag("port", "HTTP port exposed by the service").String()
	rateLimitRPSFlag := serveCmd.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := serveCmd.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	command := kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
		EnvFile:    *envFile,
		LogLevel:   logLevel,
		LogFormat:  logFormat,
	}

	if *port != "" {
		overrides.Port = port
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		kingpinApp.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		kingpinApp.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	switch command {
	case packCmd.FullCommand():
		if err := runPack(cfg, logger, *packFile, os.Stdout); err != nil {
			_ = logger.Sync()
			kingpinApp.Fatalf("%v", err)
		}
	case serveCmd.FullCommand():
		runServe(cfg, logger)
	}
}

// runPack packs the file at path and writes the rendered result to out.
func runPack(cfg config.Config, logger *zap.Logger, path string, out io.Writer) error {
	limits := func() (parser.Limits, error) {
		return cfg.Limits, nil
	}

	pk, err := application.NewPacker(cfg, logger, limits, metrics.NewNop())
	if err != nil {
		return err
	}

	result, err := pk.PackFile(path)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, result)
	return err
}

func runServe(cfg config.Config, logger *zap.Logger) {
	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
