package config

import "testing"

func validConfig() Config {
	return Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Embedding: EmbeddingConfig{
			APIKey: "test-key",
			Model:  "text-embedding-3-small",
		},
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MissingModel(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Model = ""
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding model")
	}
}

func TestValidate_ResultLimitExceedsTopK(t *testing.T) {
	cfg := validConfig()
	cfg.Search.TopK = 5
	cfg.Search.ResultLimit = 50
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when result_limit > top_k")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()

	if cfg.Search.TopK != 20 {
		t.Errorf("TopK = %d, want 20", cfg.Search.TopK)
	}
	if cfg.Search.ResultLimit != 10 {
		t.Errorf("ResultLimit = %d, want 10", cfg.Search.ResultLimit)
	}
	if cfg.Search.ResultCacheTTLSec != 300 {
		t.Errorf("ResultCacheTTLSec = %d, want 300", cfg.Search.ResultCacheTTLSec)
	}
	if cfg.Search.IndexName != "protocol_chunks" {
		t.Errorf("IndexName = %q", cfg.Search.IndexName)
	}
	if cfg.Embedding.CacheEntries != 2048 {
		t.Errorf("CacheEntries = %d, want 2048", cfg.Embedding.CacheEntries)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("EMSEARCH_TEST_KEY", "secret")

	got := string(expandEnvVars([]byte("key: ${EMSEARCH_TEST_KEY}\nurl: ${MISSING:-fallback}")))
	want := "key: secret\nurl: fallback"
	if got != want {
		t.Errorf("expandEnvVars = %q, want %q", got, want)
	}
}
