package config

import (
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("HF_API_KEY", "hf_test")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.APIKey != "hf_test" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
	if cfg.Attempts != 5 {
		t.Errorf("Attempts = %d, want 5", cfg.Attempts)
	}
	if cfg.RetryDelay != 3*time.Second {
		t.Errorf("RetryDelay = %s, want 3s", cfg.RetryDelay)
	}
	if cfg.HTTPTimeout != 0 {
		t.Errorf("HTTPTimeout = %s, want 0", cfg.HTTPTimeout)
	}
	if cfg.Generator != "huggingface" {
		t.Errorf("Generator = %q", cfg.Generator)
	}
	if cfg.Endpoint != "" {
		t.Errorf("Endpoint = %q, want empty so the generator picks its default", cfg.Endpoint)
	}
	if cfg.UseS3() {
		t.Error("UseS3 should be false without BUCKET")
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("ATTEMPTS", "2")
	t.Setenv("RETRY_DELAY", "250ms")
	t.Setenv("GENERATOR", "stub")
	t.Setenv("BUCKET", "promptshot-images")
	t.Setenv("PROMPTS", "a red fox;a lighthouse at dusk")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Attempts != 2 || cfg.RetryDelay != 250*time.Millisecond {
		t.Errorf("got attempts=%d delay=%s", cfg.Attempts, cfg.RetryDelay)
	}
	if !cfg.UseS3() {
		t.Error("UseS3 should be true with BUCKET set")
	}
	if len(cfg.Prompts) != 2 || cfg.Prompts[1] != "a lighthouse at dusk" {
		t.Errorf("Prompts = %q", cfg.Prompts)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := map[string]map[string]string{
		"zero attempts":     {"ATTEMPTS": "0"},
		"negative delay":    {"RETRY_DELAY": "-1s"},
		"unknown generator": {"GENERATOR": "dezgo"},
		"negative warmup":   {"STUB_WARMUP": "-1"},
	}
	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range vars {
				t.Setenv(k, v)
			}
			if _, err := Parse(); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
