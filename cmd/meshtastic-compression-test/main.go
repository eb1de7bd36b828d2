// Command meshtastic-compression-test subscribes to a Meshtastic MQTT
// topic, decrypts each packet's payload, and either dumps the decoded
// protobuf fields or runs the arithmetic coder over the plaintext to see
// how compressible it is — the two things the original host's main.c did
// with every packet it received.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	meshtastic "github.com/akohlsmith/meshtastic-compression-test"
	"github.com/akohlsmith/meshtastic-compression-test/arithcoder"
	"github.com/akohlsmith/meshtastic-compression-test/broker"
	"github.com/akohlsmith/meshtastic-compression-test/cdf"
	"github.com/akohlsmith/meshtastic-compression-test/internal/config"
	"github.com/akohlsmith/meshtastic-compression-test/internal/stats"
	"github.com/akohlsmith/meshtastic-compression-test/meshpb"
)

var (
	configPath string
	brokerURL  string
	topic      string
	verbose    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "meshtastic-compression-test",
	Short: "Subscribe to a Meshtastic MQTT topic and analyze packet compressibility",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to an optional broker.ini config file")
	rootCmd.PersistentFlags().StringVar(&brokerURL, "broker", "", "override the broker URL from config")
	rootCmd.PersistentFlags().StringVar(&topic, "topic", "", "override the subscribed topic from config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "trace nonce/key/ciphertext for every decrypted packet")

	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(roundtripCmd)
}

func loadConfig() config.Config {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			slog.Error("loading config", "path", configPath, "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if brokerURL != "" {
		cfg.BrokerURL = brokerURL
	}
	if topic != "" {
		cfg.Topic = topic
	}
	return cfg
}

func resolveKey(cfg config.Config) [16]byte {
	key, ok, err := cfg.PSK()
	if err != nil {
		slog.Error("resolving psk", "err", err)
		os.Exit(1)
	}
	if !ok {
		return meshtastic.DefaultKey
	}
	return key
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Decrypt packets and print their decoded protobuf fields",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		key := resolveKey(cfg)

		handler := func(payload []byte) {
			envelope, err := meshpb.ParseEnvelope(payload)
			if err != nil {
				slog.Warn("malformed envelope", "err", err)
				return
			}
			if envelope.Encrypted == nil {
				return
			}

			plain := append([]byte{}, envelope.Encrypted...)
			var trace io.Writer
			if verbose {
				trace = os.Stderr
			}
			if err := meshtastic.Decrypt(envelope.From, envelope.ID, plain, key, trace); err != nil {
				slog.Warn("decrypt failed", "err", err)
				return
			}

			data, err := meshpb.ParseData(plain)
			if err != nil {
				slog.Warn("malformed data payload", "err", err)
				return
			}

			fmt.Printf("packet %d from %d: port=%s (%d), %d bytes\n",
				envelope.ID, envelope.From, meshpb.PortName(data.Portnum), data.Portnum, len(data.Payload))

			if data.Portnum == meshpb.PortTelemetry {
				telemetry, err := meshpb.ParseTelemetry(data.Payload)
				if err != nil {
					slog.Warn("malformed telemetry", "err", err)
					return
				}
				switch {
				case telemetry.DeviceMetrics != nil:
					if metrics, err := meshpb.ParseDeviceMetrics(telemetry.DeviceMetrics); err == nil {
						meshpb.DumpDeviceMetrics(os.Stdout, metrics)
					}
				case telemetry.EnvironmentMetrics != nil:
					if metrics, err := meshpb.ParseEnvironmentMetrics(telemetry.EnvironmentMetrics); err == nil {
						meshpb.DumpEnvironmentMetrics(os.Stdout, metrics)
					}
				case telemetry.AirQualityMetrics != nil:
					if metrics, err := meshpb.ParseAirQualityMetrics(telemetry.AirQualityMetrics); err == nil {
						meshpb.DumpAirQualityMetrics(os.Stdout, metrics)
					}
				}
			}
		}

		subscribeAndBlock(cfg, handler)
	},
}

var quiet bool

func init() {
	roundtripFlags := pflag.NewFlagSet("roundtrip", pflag.ContinueOnError)
	roundtripFlags.BoolVar(&quiet, "quiet", false, "suppress the running stats line printed after every message")
	roundtripCmd.Flags().AddFlagSet(roundtripFlags)
}

var roundtripCmd = &cobra.Command{
	Use:   "roundtrip",
	Short: "Decrypt packets, run the arithmetic coder over the plaintext, and report compression stats",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		key := resolveKey(cfg)
		var acc stats.Accumulator

		handler := func(payload []byte) {
			envelope, err := meshpb.ParseEnvelope(payload)
			if err != nil || envelope.Encrypted == nil {
				return
			}

			plain := append([]byte{}, envelope.Encrypted...)
			if err := meshtastic.Decrypt(envelope.From, envelope.ID, plain, key, nil); err != nil {
				slog.Warn("decrypt failed", "err", err)
				return
			}

			distribution, err := cdf.Build(plain)
			if err != nil {
				slog.Warn("cdf build failed", "err", err)
				return
			}

			encoded, err := arithcoder.Encode(plain, distribution, nil)
			if err != nil {
				slog.Warn("encode failed", "err", err)
				return
			}

			decoded, err := arithcoder.Decode(encoded, distribution)
			if err != nil || string(decoded) != string(plain) {
				slog.Warn("round trip mismatch", "err", err)
				return
			}

			acc.Observe(len(plain), len(encoded))
			if !quiet {
				fmt.Println(acc.String())
			}
		}

		subscribeAndBlock(cfg, handler)
	},
}

func subscribeAndBlock(cfg config.Config, handler broker.Handler) {
	client, err := broker.Connect(cfg.BrokerURL, cfg.Topic, handler)
	if err != nil {
		slog.Error("connecting to broker", "url", cfg.BrokerURL, "err", err)
		os.Exit(1)
	}
	defer client.Close()

	slog.Info("subscribed", "broker", cfg.BrokerURL, "topic", cfg.Topic)
	select {}
}
