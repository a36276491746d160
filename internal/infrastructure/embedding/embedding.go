// Package embedding provides the interchangeable text-embedding backends of
// the pipeline: a remote API-backed provider and a local model server.
package embedding

import (
	"log/slog"

	"ContentEngine/internal/config"
	"ContentEngine/internal/ports"
)

// Provider names accepted by configuration.
const (
	ProviderRemote = "remote"
	ProviderLocal  = "local"
)

const defaultBatchSize = 64

// New selects a provider from configuration. A remote selection without a
// credential degrades to the local provider with a warning; it is never
// fatal.
func New(cfg config.EmbeddingConfig, logger *slog.Logger) ports.EmbeddingProvider {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	switch cfg.Provider {
	case ProviderRemote:
		if cfg.Remote.APIKey == "" {
			logger.Warn("remote embedding api key missing, falling back to local provider")
			return NewLocalProvider(cfg.Local, batchSize, logger)
		}
		return NewRemoteProvider(cfg.Remote, batchSize, logger)
	case ProviderLocal:
		return NewLocalProvider(cfg.Local, batchSize, logger)
	default:
		logger.Warn("unknown embedding provider, using local", "provider", cfg.Provider)
		return NewLocalProvider(cfg.Local, batchSize, logger)
	}
}
