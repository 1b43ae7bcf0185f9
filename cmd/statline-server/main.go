package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/statline-ff/statline/internal/config"
	"github.com/statline-ff/statline/internal/engine"
	"github.com/statline-ff/statline/internal/logging"
	"github.com/statline-ff/statline/internal/store"
)

func main() {
	var (
		configPath     = flag.String("config", "", "YAML config file (flags override it)")
		addr           = flag.String("addr", ":8080", "HTTP listen address")
		mcpPath        = flag.String("path", "/mcp", "HTTP path for MCP endpoint")
		rawRoot        = flag.String("raw-root", "data/raw", "root directory for raw JSON")
		derivedRoot    = flag.String("derived-root", "data/derived", "root directory for derived JSON")
		writeDerived   = flag.Bool("write-derived", false, "write computed rank tables to derived root")
		computeMissing = flag.Bool("compute-missing", true, "compute rank tables if missing from derived root")
		defaultFormat  = flag.String("format", "ppr", "default scoring format: standard|half|ppr")
		requireAuth    = flag.Bool("require-auth", false, "require API key auth via "+config.APIKeyEnv)
		authHeader     = flag.String("auth-header", "X-API-Key", "HTTP header to read API key from")
		logLevel       = flag.String("log-level", "info", "log level")
		logFormat      = flag.String("log-format", "text", "log format: text|json")
	)
	flag.Parse()

	cfg, err := config.Read(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}

	// Only flags given on the command line override the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "path":
			cfg.MCPPath = *mcpPath
		case "raw-root":
			cfg.RawRoot = *rawRoot
		case "derived-root":
			cfg.DerivedRoot = *derivedRoot
		case "write-derived":
			cfg.WriteDerived = *writeDerived
		case "compute-missing":
			cfg.ComputeMissing = *computeMissing
		case "format":
			cfg.DefaultFormat = *defaultFormat
		case "require-auth":
			cfg.RequireAuth = *requireAuth
		case "auth-header":
			cfg.AuthHeader = *authHeader
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-format":
			cfg.LogFormat = *logFormat
		}
	})

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid config")
	}

	opts := engine.Options{
		WriteDerived:   cfg.WriteDerived,
		ComputeMissing: cfg.ComputeMissing,
		Logger:         logrus.NewEntry(logger),
	}
	if cfg.DerivedRoot != "" {
		opts.Derived = store.NewJSONStore(cfg.DerivedRoot)
	}
	eng := engine.New(store.NewJSONStore(cfg.RawRoot), opts)

	srv := newServer(cfg, eng, logrus.NewEntry(logger))
	logger.WithFields(logrus.Fields{
		"addr":      cfg.Addr,
		"mcp_path":  cfg.MCPPath,
		"raw_root":  cfg.RawRoot,
		"auth":      cfg.APIKey != "",
		"tools":     len(srv.registry),
		"format":    cfg.Format(),
		"derived":   cfg.DerivedRoot,
		"write":     cfg.WriteDerived,
		"recompute": cfg.ComputeMissing,
	}).Info("statline server listening")

	if err := http.ListenAndServe(cfg.Addr, srv.routes()); err != nil {
		logger.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}
