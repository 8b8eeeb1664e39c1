package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kailas-cloud/facetsearch/internal/domain/asset"
)

func validConfig() Config {
	return Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Driver: "redis", Addrs: []string{"localhost:6379"}},
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_Driver(t *testing.T) {
	tests := []struct {
		driver  string
		wantErr bool
	}{
		{"redis", false},
		{"valkey", false},
		{"memcached", true},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			cfg := validConfig()
			cfg.Database.Driver = tt.driver
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_Facets(t *testing.T) {
	tests := []struct {
		name    string
		facets  []string
		wantErr string
	}{
		{"ok", []string{"brand", "color"}, ""},
		{"empty entry", []string{"brand", " "}, "search.facets[1] is empty"},
		{"case-insensitive duplicate", []string{"brand", "Brand"}, `duplicate category "brand"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Search.Facets = tt.facets
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_Assets(t *testing.T) {
	cfg := validConfig()
	cfg.Assets.Catalog = asset.Catalog{"font": {"header": {{URL: "x.woff"}}}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown asset type")
	}

	cfg.Assets.Catalog = asset.Catalog{asset.TypeJS: {"footer": {{URL: ""}}}}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing url")
	}
	if want := "assets.catalog.js.footer[0].url is required"; err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.Driver != "redis" {
		t.Errorf("expected Driver=redis, got %q", cfg.Database.Driver)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Search.Index != "products" {
		t.Errorf("expected Index=products, got %q", cfg.Search.Index)
	}
	if cfg.Search.KeyPrefix != "facetsearch:" {
		t.Errorf("expected KeyPrefix='facetsearch:', got %q", cfg.Search.KeyPrefix)
	}
	if cfg.Search.TitleField != "title" {
		t.Errorf("expected TitleField=title, got %q", cfg.Search.TitleField)
	}
	if cfg.Search.FacetSize != 20 || cfg.Search.PageSize != 20 || cfg.Search.MaxPage != 50 {
		t.Errorf("unexpected search defaults: %+v", cfg.Search)
	}
	if cfg.Cache.FacetTTLSec != 0 {
		t.Errorf("expected cache disabled by default, got %d", cfg.Cache.FacetTTLSec)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{Driver: "valkey", ReadinessTimeout: 15},
		Search:   SearchConfig{Index: "catalog", KeyPrefix: "custom:", PageSize: 48},
		Cache:    CacheConfig{FacetTTLSec: 60},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.Driver != "valkey" {
		t.Errorf("expected Driver=valkey, got %q", cfg.Database.Driver)
	}
	if cfg.Search.Index != "catalog" || cfg.Search.KeyPrefix != "custom:" || cfg.Search.PageSize != 48 {
		t.Errorf("search overridden: %+v", cfg.Search)
	}
	if cfg.Cache.FacetTTLSec != 60 {
		t.Errorf("expected FacetTTLSec=60, got %d", cfg.Cache.FacetTTLSec)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("FACETSEARCH_TEST_ADDR", "redis:6379")

	got := string(expandEnvVars([]byte("a: ${FACETSEARCH_TEST_ADDR}\nb: ${FACETSEARCH_TEST_UNSET:-fallback}\nc: ${FACETSEARCH_TEST_UNSET}")))
	want := "a: redis:6379\nb: fallback\nc: "
	if got != want {
		t.Errorf("expandEnvVars = %q, want %q", got, want)
	}
}

func TestParse_FullDocument(t *testing.T) {
	t.Setenv("FACETSEARCH_TEST_PORT", "9090")

	doc := `
http:
  port: ${FACETSEARCH_TEST_PORT}
database:
  addrs: ["localhost:6379"]
search:
  index: products
  facets: [brand, color]
cache:
  facet_ttl_sec: 30
assets:
  base_url: /static
  catalog:
    css:
      header:
        - url: css/app.css
    js:
      footer:
        - url: https://cdn.example.com/app.js
          integrity: sha384-abc
          defer: true
labels:
  brand: Brand
`
	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d", cfg.HTTP.Port)
	}
	if len(cfg.Search.Facets) != 2 || cfg.Search.Facets[1] != "color" {
		t.Errorf("facets = %v", cfg.Search.Facets)
	}
	js := cfg.Assets.Catalog.Lookup(asset.TypeJS, "footer")
	if len(js) != 1 || !js[0].Defer || js[0].Integrity != "sha384-abc" {
		t.Errorf("js footer = %+v", js)
	}
	if cfg.Labels["brand"] != "Brand" {
		t.Errorf("labels = %v", cfg.Labels)
	}
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	doc := "http:\n  port: 8081\ndatabase:\n  addrs: [\"localhost:6379\"]\n"
	if err := os.WriteFile(filepath.Join(dir, "config", "unittest.yaml"), []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	cfg, err := Load("unittest")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != 8081 {
		t.Errorf("port = %d", cfg.HTTP.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := Load("does-not-exist"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate_NegativeDB(t *testing.T) {
	cfg := validConfig()
	cfg.Database.DB = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative database.db")
	}
}
