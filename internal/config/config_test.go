package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return path
}

const baseYAML = `
transport:
  ingress_bind: "tcp://127.0.0.1:5601"
  egress_bind: "tcp://127.0.0.1:5602"
engine:
  pending_capacity: 4096
  order_pool_capacity: 4096
venues:
  hyperliquid:
    user_address: "0xabc"
    private_key: "deadbeef"
    use_testnet: true
`

func TestLoadParsesYAML(t *testing.T) {
	t.Parallel()
	path := writeTestConfig(t, baseYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Transport.IngressBind != "tcp://127.0.0.1:5601" {
		t.Errorf("IngressBind = %q", cfg.Transport.IngressBind)
	}
	v, ok := cfg.Venues["hyperliquid"]
	if !ok {
		t.Fatal("missing hyperliquid venue")
	}
	if v.UserAddress != "0xabc" || !v.UseTestnet {
		t.Errorf("venue = %+v", v)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadEnvOverridesPrivateKey(t *testing.T) {
	path := writeTestConfig(t, baseYAML)

	t.Setenv("LATENTSPEED_HYPERLIQUID_PRIVATE_KEY", "override-key")
	t.Setenv("LATENTSPEED_HYPERLIQUID_USE_TESTNET", "false")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	v := cfg.Venues["hyperliquid"]
	if v.PrivateKey != "override-key" {
		t.Errorf("PrivateKey = %q, want override-key", v.PrivateKey)
	}
	if v.UseTestnet {
		t.Errorf("UseTestnet = true, want env override to false")
	}
}

func TestValidateRejectsMissingBinds(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing ingress", Config{
			Transport: TransportConfig{EgressBind: "tcp://127.0.0.1:5602"},
			Venues:    map[string]VenueConfig{"v": {PrivateKey: "x"}},
		}},
		{"missing egress", Config{
			Transport: TransportConfig{IngressBind: "tcp://127.0.0.1:5601"},
			Venues:    map[string]VenueConfig{"v": {PrivateKey: "x"}},
		}},
		{"no venues", Config{
			Transport: TransportConfig{IngressBind: "a", EgressBind: "b"},
			Venues:    map[string]VenueConfig{},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestValidateAllowsSignerInPlaceOfPrivateKey(t *testing.T) {
	t.Parallel()
	cfg := Config{
		Transport: TransportConfig{IngressBind: "a", EgressBind: "b"},
		Signer:    SignerConfig{Command: "signer-bin"},
		Venues:    map[string]VenueConfig{"hyperliquid": {UserAddress: "0xabc"}},
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
