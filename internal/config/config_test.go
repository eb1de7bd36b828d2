package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.ini")
	contents := "[broker]\nurl = tcp://example.org:1883\ntopic = msh/test/#\npsk = 000102030405060708090a0b0c0d0e0f\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BrokerURL != "tcp://example.org:1883" {
		t.Fatalf("BrokerURL = %q", cfg.BrokerURL)
	}
	if cfg.Topic != "msh/test/#" {
		t.Fatalf("Topic = %q", cfg.Topic)
	}

	key, ok, err := cfg.PSK()
	if err != nil {
		t.Fatalf("PSK: %v", err)
	}
	if !ok {
		t.Fatalf("PSK ok = false, want true")
	}
	want := [16]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 0xa, 0xb, 0xc, 0xd, 0xe, 0xf}
	if key != want {
		t.Fatalf("PSK = %x, want %x", key, want)
	}
}

func TestDefaultPSKAbsent(t *testing.T) {
	cfg := Default()
	_, ok, err := cfg.PSK()
	if err != nil {
		t.Fatalf("PSK: %v", err)
	}
	if ok {
		t.Fatalf("PSK ok = true for default config, want false")
	}
}

func TestPSKInvalidHex(t *testing.T) {
	cfg := Config{PSKHex: "not-hex"}
	if _, _, err := cfg.PSK(); err == nil {
		t.Fatalf("PSK: want error for invalid hex")
	}
}

func TestPSKWrongLength(t *testing.T) {
	cfg := Config{PSKHex: "0011"}
	if _, _, err := cfg.PSK(); err == nil {
		t.Fatalf("PSK: want error for short psk")
	}
}
