// Package config loads the optional broker connection settings file, the
// one piece of host configuration spec.md's distillation leaves implicit
// (broker URL, topic, and a PSK override for channels other than the
// public default channel).
package config

import (
	"encoding/hex"
	"fmt"

	"github.com/go-ini/ini"
)

// Config holds the settings read from an ini file's [broker] section.
// Every field has a zero value that means "use the built-in default";
// callers overlay command-line flags on top of whatever Load returns.
type Config struct {
	BrokerURL string
	Topic     string
	PSKHex    string
}

// Default returns the built-in connection settings: the public Meshtastic
// MQTT broker and its default topic, no PSK override.
func Default() Config {
	return Config{
		BrokerURL: "tcp://mqtt.meshtastic.org:1883",
		Topic:     "msh/US/2/json/#",
	}
}

// Load reads path as an ini file and overlays its [broker] section onto
// Default(). A file that is missing or cannot be parsed is returned as an
// error; the CLI only calls Load when a config path was given.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := ini.Load(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: loading %s: %w", path, err)
	}

	section := f.Section("broker")
	if key := section.Key("url"); key.String() != "" {
		cfg.BrokerURL = key.String()
	}
	if key := section.Key("topic"); key.String() != "" {
		cfg.Topic = key.String()
	}
	if key := section.Key("psk"); key.String() != "" {
		cfg.PSKHex = key.String()
	}

	return cfg, nil
}

// PSK decodes PSKHex into a 16-byte AES-128 key. An empty PSKHex is not an
// error; callers fall back to meshtastic.DefaultKey in that case.
func (c Config) PSK() ([16]byte, bool, error) {
	var key [16]byte
	if c.PSKHex == "" {
		return key, false, nil
	}

	raw, err := hex.DecodeString(c.PSKHex)
	if err != nil {
		return key, false, fmt.Errorf("config: psk is not valid hex: %w", err)
	}
	if len(raw) != 16 {
		return key, false, fmt.Errorf("config: psk must decode to 16 bytes, got %d", len(raw))
	}

	copy(key[:], raw)
	return key, true, nil
}
