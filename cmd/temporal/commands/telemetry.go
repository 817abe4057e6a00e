// Package commands implements CLI command handlers for temporal.
package commands

import (
	"log/slog"

	"github.com/engineering87/TemporalCollections-sub001/pkg/config"
	"github.com/engineering87/TemporalCollections-sub001/pkg/observability"
	"github.com/engineering87/TemporalCollections-sub001/pkg/version"
)

// telemetryConfig maps the loaded file/env configuration onto the
// observability initialization config for the given execution mode.
func telemetryConfig(cfg *config.Config, mode observability.AppMode) observability.Config {
	obsCfg := observability.DefaultConfig()
	obsCfg.Mode = mode
	obsCfg.ServiceVersion = version.Version
	obsCfg.OTLPEndpoint = cfg.Observability.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Observability.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Observability.OTLPInsecure
	obsCfg.DebugTrace = cfg.Observability.DebugTrace
	obsCfg.SampleRatio = cfg.Observability.SampleRatio
	obsCfg.LogLevel = parseLogLevel(cfg.Logging.Level)
	obsCfg.LogJSON = cfg.Logging.Format == "json"

	return obsCfg
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
