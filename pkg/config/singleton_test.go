package config

import "testing"

func TestInitialize_SetsGlobalConfig(t *testing.T) {
	path := writeConfigFile(t, `
server:
  listen_address: "127.0.0.1:9191"
history:
  enabled: false
`)

	if err := Initialize(path); err != nil {
		t.Fatalf("failed to initialize: %v", err)
	}

	cfg := GetConfig()
	if cfg == nil {
		t.Fatal("expected global config after Initialize")
	}
	if cfg.Server.ListenAddress != "127.0.0.1:9191" {
		t.Errorf("unexpected listen address: %q", cfg.Server.ListenAddress)
	}

	// A second call is a no-op: the first loaded config stays in effect.
	if err := Initialize("/nonexistent/config.yaml"); err != nil {
		t.Fatalf("repeated initialize should not reload: %v", err)
	}
	if got := GetConfig(); got != cfg {
		t.Error("expected the original config instance to remain")
	}
}
