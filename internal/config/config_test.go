package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/statline-ff/statline/internal/model"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.RawRoot != "data/raw" || !cfg.ComputeMissing {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Format() != model.PPR {
		t.Errorf("Format = %s, want ppr", cfg.Format())
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	t.Setenv(APIKeyEnv, " secret ")
	path := filepath.Join(t.TempDir(), "statline.yaml")
	body := "addr: \":9090\"\nraw_root: /srv/raw\ndefault_format: half\nrequire_auth: true\nwrite_derived: true\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.RawRoot != "/srv/raw" || !cfg.WriteDerived {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.DerivedRoot != "data/derived" {
		t.Errorf("DerivedRoot = %q, want default kept", cfg.DerivedRoot)
	}
	if cfg.Format() != model.Half {
		t.Errorf("Format = %s, want half", cfg.Format())
	}
	if cfg.APIKey != "secret" {
		t.Errorf("APIKey = %q, want trimmed env value", cfg.APIKey)
	}
}

func TestLoad_RequireAuthWithoutKey(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	path := filepath.Join(t.TempDir(), "statline.yaml")
	if err := os.WriteFile(path, []byte("require_auth: true\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error when auth is required without a key")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestRead_SkipsValidation(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	path := filepath.Join(t.TempDir(), "statline.yaml")
	if err := os.WriteFile(path, []byte("require_auth: true\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Read(path)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if !cfg.RequireAuth {
		t.Error("RequireAuth not read")
	}
	cfg.RequireAuth = false
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate after override: %v", err)
	}
}
