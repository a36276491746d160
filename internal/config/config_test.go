package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv(configPathEnv)

	cfg := Load()

	if cfg.Logging.Level != "info" {
		t.Fatalf("unexpected log level: %s", cfg.Logging.Level)
	}
	if cfg.Pipeline.Dedup.SimilarityThreshold != 0.88 {
		t.Fatalf("unexpected dedup threshold: %v", cfg.Pipeline.Dedup.SimilarityThreshold)
	}
	if cfg.Pipeline.Embedding.BatchSize != 64 {
		t.Fatalf("unexpected batch size: %d", cfg.Pipeline.Embedding.BatchSize)
	}
	if cfg.Pipeline.Clustering.Algorithm != "density" {
		t.Fatalf("unexpected clustering algorithm: %s", cfg.Pipeline.Clustering.Algorithm)
	}
	if len(cfg.Audiences) == 0 {
		t.Fatalf("expected default audiences")
	}
	if cfg.Scheduler.Location() == nil {
		t.Fatalf("timezone not bound")
	}
}

func TestLoadMergesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
logging:
  level: debug
pipeline:
  dedup:
    similarityThreshold: 0.95
  clustering:
    algorithm: partition
    partitionCount: 5
audiences:
  - id: custom
    name: Custom Audience
    coreKeywords: [alpha, beta]
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()

	if cfg.Logging.Level != "debug" {
		t.Fatalf("file level not applied: %s", cfg.Logging.Level)
	}
	if cfg.Pipeline.Dedup.SimilarityThreshold != 0.95 {
		t.Fatalf("file threshold not applied: %v", cfg.Pipeline.Dedup.SimilarityThreshold)
	}
	if cfg.Pipeline.Clustering.PartitionCount != 5 {
		t.Fatalf("file partition count not applied: %d", cfg.Pipeline.Clustering.PartitionCount)
	}
	if len(cfg.Audiences) != 1 || cfg.Audiences[0].ID != "custom" {
		t.Fatalf("file audiences not applied: %v", cfg.Audiences)
	}

	// Untouched settings keep defaults.
	if cfg.Pipeline.Embedding.BatchSize != 64 {
		t.Fatalf("default batch size lost: %d", cfg.Pipeline.Embedding.BatchSize)
	}
}

func TestEnvOverrides(t *testing.T) {
	os.Unsetenv(configPathEnv)
	t.Setenv(databasePathEnv, "/tmp/engine-test.db")
	t.Setenv(geminiAPIKeyEnv, "gem-key")
	t.Setenv(embedProviderEnv, "remote")
	t.Setenv(openAIAPIKeyEnv, "oa-key")
	t.Setenv(telegramTokenEnv, "tg-token")

	cfg := Load()

	if cfg.Database.Path != "/tmp/engine-test.db" {
		t.Fatalf("database path override lost: %s", cfg.Database.Path)
	}
	if cfg.Pipeline.Embedding.Remote.APIKey != "gem-key" {
		t.Fatalf("gemini key override lost")
	}
	if cfg.Pipeline.Embedding.Provider != "remote" {
		t.Fatalf("provider override lost: %s", cfg.Pipeline.Embedding.Provider)
	}
	if cfg.Generation.APIKey != "oa-key" {
		t.Fatalf("openai key override lost")
	}
	if cfg.Telegram.BotToken != "tg-token" {
		t.Fatalf("telegram token override lost")
	}
}

func TestBindTimezoneFallback(t *testing.T) {
	cfg := defaultConfig()
	cfg.Scheduler.Timezone = "Not/AZone"
	cfg.bindTimezone()

	if cfg.Scheduler.Location().String() != defaultTimezone {
		t.Fatalf("expected %s fallback, got %s", defaultTimezone, cfg.Scheduler.Location())
	}
}
