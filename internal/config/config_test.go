package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// clearEnv blanks every Docent environment variable for one test so the
// host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DOCENT_API_KEY", "OPENROUTER_API_KEY",
		"DOCENT_BASE_URL", "DOCENT_GATEKEEPER_MODEL",
		"DOCENT_REFERENCE_MODEL", "DOCENT_DATA_DIR",
	} {
		t.Setenv(key, "")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.GatekeeperModel != DefaultGatekeeperModel {
		t.Errorf("GatekeeperModel = %q", cfg.GatekeeperModel)
	}
	if cfg.ReferenceModel != DefaultReferenceModel {
		t.Errorf("ReferenceModel = %q", cfg.ReferenceModel)
	}
	if cfg.APIKey != "" {
		t.Errorf("APIKey = %q, want empty by default", cfg.APIKey)
	}
	if filepath.Base(cfg.DataDir) != ".docent" {
		t.Errorf("DataDir = %q, want ~/.docent", cfg.DataDir)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DOCENT_DATA_DIR", t.TempDir())
	t.Setenv("DOCENT_API_KEY", "sk-test")
	t.Setenv("DOCENT_BASE_URL", "http://localhost:8080/v1")
	t.Setenv("DOCENT_GATEKEEPER_MODEL", "tiny-model")
	t.Setenv("DOCENT_REFERENCE_MODEL", "big-model")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.APIKey != "sk-test" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
	if cfg.BaseURL != "http://localhost:8080/v1" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.GatekeeperModel != "tiny-model" || cfg.ReferenceModel != "big-model" {
		t.Errorf("models = %q / %q", cfg.GatekeeperModel, cfg.ReferenceModel)
	}
}

func TestLoad_OpenRouterKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("DOCENT_DATA_DIR", t.TempDir())
	t.Setenv("OPENROUTER_API_KEY", "sk-openrouter")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "sk-openrouter" {
		t.Errorf("APIKey = %q, want OPENROUTER_API_KEY fallback", cfg.APIKey)
	}
}

func TestLoad_DocentKeyWinsOverOpenRouter(t *testing.T) {
	clearEnv(t)
	t.Setenv("DOCENT_DATA_DIR", t.TempDir())
	t.Setenv("DOCENT_API_KEY", "sk-docent")
	t.Setenv("OPENROUTER_API_KEY", "sk-openrouter")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "sk-docent" {
		t.Errorf("APIKey = %q, want DOCENT_API_KEY to win", cfg.APIKey)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("DOCENT_DATA_DIR", dir)

	file := `{"api_key": "sk-file", "gatekeeper_model": "file-model"}`
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte(file), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.APIKey != "sk-file" {
		t.Errorf("APIKey = %q, want value from config file", cfg.APIKey)
	}
	if cfg.GatekeeperModel != "file-model" {
		t.Errorf("GatekeeperModel = %q", cfg.GatekeeperModel)
	}
	// Fields absent from the file keep their defaults.
	if cfg.ReferenceModel != DefaultReferenceModel {
		t.Errorf("ReferenceModel = %q, want default", cfg.ReferenceModel)
	}
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("DOCENT_DATA_DIR", dir)
	t.Setenv("DOCENT_API_KEY", "sk-env")

	file := `{"api_key": "sk-file"}`
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte(file), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "sk-env" {
		t.Errorf("APIKey = %q, environment must beat the file", cfg.APIKey)
	}
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	clearEnv(t)
	t.Setenv("DOCENT_DATA_DIR", t.TempDir())

	if _, err := Load(); err != nil {
		t.Fatalf("Load with no config file: %v", err)
	}
}

func TestLoad_CorruptFileFails(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("DOCENT_DATA_DIR", dir)

	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("expected error for corrupt config file")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Validate without key = %v, want ErrMissingAPIKey", err)
	}

	cfg.APIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate with key = %v", err)
	}
}
