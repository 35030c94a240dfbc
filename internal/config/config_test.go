package config

import (
	"log/slog"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "REDIS_URL", "LLM_PROVIDER", "OPENROUTER_API_KEY", "VENICE_API_KEY",
		"GROK_API_KEY", "CHAT_MODEL", "MEMORY_MODEL", "GOOGLE_API_KEY", "EMBEDDING_MODEL",
		"MEMORY_CAPACITY", "MEMORY_CONTEXT_LIMIT", "SIMILARITY_THRESHOLD", "ANALYTICS_TIMEOUT",
		"ANALYTICS_MIN_MESSAGES", "ANALYTICS_POLL_INTERVAL", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg := FromEnv()
	if cfg.LLMProvider != "openrouter" {
		t.Fatalf("expected openrouter provider, got %q", cfg.LLMProvider)
	}
	if cfg.MemoryModel != cfg.ChatModel || cfg.ChatModel == "" {
		t.Fatalf("expected memory model to default to chat model, got %q / %q", cfg.MemoryModel, cfg.ChatModel)
	}
	if cfg.MemoryCapacity != 50 || cfg.MemoryContextLimit != 3 {
		t.Fatalf("unexpected memory defaults: %d / %d", cfg.MemoryCapacity, cfg.MemoryContextLimit)
	}
	if cfg.AnalyticsTimeout != 5*time.Minute || cfg.AnalyticsMinMessages != 3 || cfg.AnalyticsPollInterval != 30*time.Second {
		t.Fatalf("unexpected analytics defaults: %+v", cfg)
	}
	if cfg.SimilarityThreshold != 0.7 {
		t.Fatalf("unexpected similarity threshold: %v", cfg.SimilarityThreshold)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("unexpected log level: %v", cfg.LogLevel)
	}
	if cfg.EmbeddingsEnabled() {
		t.Fatalf("embeddings should be disabled without GOOGLE_API_KEY")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", " Venice ")
	t.Setenv("VENICE_API_KEY", "vk")
	t.Setenv("ANALYTICS_TIMEOUT", "90s")
	t.Setenv("ANALYTICS_MIN_MESSAGES", "5")
	t.Setenv("MEMORY_CAPACITY", "not-a-number")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := FromEnv()
	if cfg.LLMProvider != "venice" || cfg.APIKey() != "vk" {
		t.Fatalf("unexpected provider config: %q / %q", cfg.LLMProvider, cfg.APIKey())
	}
	if cfg.AnalyticsTimeout != 90*time.Second || cfg.AnalyticsMinMessages != 5 {
		t.Fatalf("unexpected analytics config: %v / %d", cfg.AnalyticsTimeout, cfg.AnalyticsMinMessages)
	}
	if cfg.MemoryCapacity != 50 {
		t.Fatalf("invalid int should fall back to default, got %d", cfg.MemoryCapacity)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("unexpected log level: %v", cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ok", Config{DatabaseURL: "postgres://x", LLMProvider: "openrouter", OpenRouterAPIKey: "k", MemoryCapacity: 50}, false},
		{"missing database", Config{LLMProvider: "openrouter", OpenRouterAPIKey: "k", MemoryCapacity: 50}, true},
		{"unknown provider", Config{DatabaseURL: "postgres://x", LLMProvider: "other", MemoryCapacity: 50}, true},
		{"missing key", Config{DatabaseURL: "postgres://x", LLMProvider: "grok", OpenRouterAPIKey: "k", MemoryCapacity: 50}, true},
		{"bad capacity", Config{DatabaseURL: "postgres://x", LLMProvider: "venice", VeniceAPIKey: "k"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
