// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	def := Default()
	if cfg.Endpoint != def.Endpoint {
		t.Errorf("Endpoint = %q, want default %q", cfg.Endpoint, def.Endpoint)
	}
	if cfg.Model != def.Model {
		t.Errorf("Model = %q, want default %q", cfg.Model, def.Model)
	}
	if cfg.UI.Theme != "auto" {
		t.Errorf("Theme = %q, want auto", cfg.UI.Theme)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
endpoint = "https://example.test/v1"
model = "test-model"
timeout_secs = 5

[ui]
theme = "dark"
max_width = 80
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Endpoint != "https://example.test/v1" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.Model != "test-model" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.TimeoutSecs != 5 {
		t.Errorf("TimeoutSecs = %d", cfg.TimeoutSecs)
	}
	if cfg.UI.Theme != "dark" || cfg.UI.MaxWidth != 80 {
		t.Errorf("UI = %+v", cfg.UI)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WIRECHAT_ENDPOINT", "https://override.test/v1")
	t.Setenv("WIRECHAT_MODEL", "env-model")
	t.Setenv("WIRECHAT_TIMEOUT_SECS", "7")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Endpoint != "https://override.test/v1" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.Model != "env-model" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.TimeoutSecs != 7 {
		t.Errorf("TimeoutSecs = %d", cfg.TimeoutSecs)
	}
}

func TestLoad_InvalidEndpoint(t *testing.T) {
	dir := t.TempDir()
	content := `endpoint = "not a url"` + "\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := Load(dir); err == nil {
		t.Error("expected error for invalid endpoint")
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := Default()
	cfg.Model = "saved-model"
	cfg.UI.Theme = "light"
	if err := Save(dir, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Model != "saved-model" {
		t.Errorf("Model = %q, want saved-model", loaded.Model)
	}
	if loaded.UI.Theme != "light" {
		t.Errorf("Theme = %q, want light", loaded.UI.Theme)
	}
}

func TestValidate_ClampsTimeout(t *testing.T) {
	cfg := Default()
	cfg.TimeoutSecs = -1
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if cfg.TimeoutSecs != Default().TimeoutSecs {
		t.Errorf("TimeoutSecs = %d, want clamped default", cfg.TimeoutSecs)
	}
}

func TestValidate_RejectsBadTheme(t *testing.T) {
	cfg := Default()
	cfg.UI.Theme = "neon"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid theme")
	}
}
