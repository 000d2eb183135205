package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "parley.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
version: "1"
log:
  level: debug
modules:
  storage.sqlite:
    busy_timeout: 1000
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Version != "1" || cfg.Log.Level != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
	if _, ok := cfg.Modules["storage.sqlite"]; !ok {
		t.Error("storage.sqlite config entry missing")
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("PARLEY_TEST_BIND", "0.0.0.0:9090")
	path := writeConfig(t, `
version: "1"
modules:
  gateway.http:
    bind: ${PARLEY_TEST_BIND}
    token: ${PARLEY_TEST_MISSING:-fallback}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	node := cfg.Modules["gateway.http"]
	var gw struct {
		Bind  string `yaml:"bind"`
		Token string `yaml:"token"`
	}
	if err := node.Decode(&gw); err != nil {
		t.Fatal(err)
	}
	if gw.Bind != "0.0.0.0:9090" || gw.Token != "fallback" {
		t.Errorf("expanded = %+v", gw)
	}
}

func TestLoad_UnresolvedVariable(t *testing.T) {
	path := writeConfig(t, `
version: "1"
modules:
  gateway.http:
    token: ${PARLEY_TEST_NO_SUCH_VAR}
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unresolved variable")
	}
	if !strings.Contains(err.Error(), "PARLEY_TEST_NO_SUCH_VAR") {
		t.Errorf("error should name the variable: %v", err)
	}
}

func TestResolve_OrderAndDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Version: "1",
		Modules: map[string]yaml.Node{
			"backup.cron":    {},
			"gateway.http":   {},
			"storage.sqlite": {},
		},
	}
	ids := Resolve(cfg)

	idx := make(map[string]int, len(ids))
	for i, id := range ids {
		idx[id] = i
	}
	for _, want := range defaultModules {
		if _, ok := idx[want]; !ok {
			t.Errorf("default module %s missing from %v", want, ids)
		}
	}
	if idx["storage.sqlite"] > idx["provider.gemini"] ||
		idx["provider.gemini"] > idx["backup.cron"] ||
		idx["backup.cron"] > idx["gateway.http"] {
		t.Errorf("load order wrong: %v", ids)
	}
	if len(ids) != len(defaultModules)+1 {
		t.Errorf("ids = %v", ids)
	}
}
