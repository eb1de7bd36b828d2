package meshpb

import (
	"fmt"
	"io"
	"math"

	"github.com/fatih/color"
	"google.golang.org/protobuf/encoding/protowire"
)

// Portnum field numbers recognized by PortName, ported from main.c's
// _portnum_str switch.
const (
	PortUnknown            = 0
	PortTextMessage        = 1
	PortRemoteHardware     = 2
	PortPosition           = 3
	PortNodeInfo           = 4
	PortRouting            = 5
	PortAdmin              = 6
	PortTextMessageCompressed = 7
	PortWaypoint           = 8
	PortTelemetry          = 67
)

// PortName returns the human-readable name for a Meshtastic port number,
// or "(unknown)" for anything this dumper doesn't recognize.
func PortName(portnum uint32) string {
	switch portnum {
	case PortUnknown:
		return "UNKNOWN_APP"
	case PortTextMessage:
		return "TEXT_MESSAGE_APP"
	case PortRemoteHardware:
		return "REMOTE_HARDWARE_APP"
	case PortPosition:
		return "POSITION_APP"
	case PortNodeInfo:
		return "NODEINFO_APP"
	case PortRouting:
		return "ROUTING_APP"
	case PortAdmin:
		return "ADMIN_APP"
	case PortTextMessageCompressed:
		return "TEXT_MESSAGE_COMPRESSED_APP"
	case PortWaypoint:
		return "WAYPOINT_APP"
	case PortTelemetry:
		return "TELEMETRY_APP"
	default:
		return "(unknown)"
	}
}

// DeviceMetrics is the subset of Meshtastic's DeviceMetrics message this
// dumper understands: uptime, battery level, voltage, and the two
// utilization percentages main.c's dump_device_metrics prints.
type DeviceMetrics struct {
	HasUptimeSeconds        bool
	UptimeSeconds            uint32
	HasBatteryLevel          bool
	BatteryLevel             uint32
	HasVoltage               bool
	Voltage                  float32
	HasChannelUtilization    bool
	ChannelUtilization       float32
	HasAirUtilTx             bool
	AirUtilTx                float32
}

const (
	deviceMetricUptime     = 1
	deviceMetricBattery    = 2
	deviceMetricVoltage    = 3
	deviceMetricChanUtil   = 4
	deviceMetricAirUtilTx  = 5
)

// ParseDeviceMetrics decodes a Telemetry message's embedded DeviceMetrics
// field.
func ParseDeviceMetrics(b []byte) (DeviceMetrics, error) {
	var m DeviceMetrics

	for len(b) > 0 {
		num, typ, tagLen := protowire.ConsumeTag(b)
		if tagLen < 0 {
			return DeviceMetrics{}, ErrMalformed
		}
		b = b[tagLen:]

		var consumed int
		switch {
		case num == deviceMetricUptime && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			consumed = n
			if n >= 0 {
				m.UptimeSeconds, m.HasUptimeSeconds = uint32(v), true
			}

		case num == deviceMetricBattery && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			consumed = n
			if n >= 0 {
				m.BatteryLevel, m.HasBatteryLevel = uint32(v), true
			}

		case num == deviceMetricVoltage && typ == protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(b)
			consumed = n
			if n >= 0 {
				m.Voltage, m.HasVoltage = math.Float32frombits(v), true
			}

		case num == deviceMetricChanUtil && typ == protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(b)
			consumed = n
			if n >= 0 {
				m.ChannelUtilization, m.HasChannelUtilization = math.Float32frombits(v), true
			}

		case num == deviceMetricAirUtilTx && typ == protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(b)
			consumed = n
			if n >= 0 {
				m.AirUtilTx, m.HasAirUtilTx = math.Float32frombits(v), true
			}

		default:
			consumed = protowire.ConsumeFieldValue(num, typ, b)
		}

		if consumed < 0 {
			return DeviceMetrics{}, ErrMalformed
		}
		b = b[consumed:]
	}

	return m, nil
}

// DumpDeviceMetrics prints m to w the way main.c's dump_device_metrics did,
// one present field per line.
func DumpDeviceMetrics(w io.Writer, m DeviceMetrics) {
	label := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintln(w, "  device metrics:")
	if m.HasUptimeSeconds {
		fmt.Fprintf(w, "    %s: %d\n", label("uptime"), m.UptimeSeconds)
	}
	if m.HasBatteryLevel {
		fmt.Fprintf(w, "    %s: %d\n", label("battery level"), m.BatteryLevel)
	}
	if m.HasVoltage {
		fmt.Fprintf(w, "    %s: %.2f\n", label("voltage"), m.Voltage)
	}
	if m.HasChannelUtilization {
		fmt.Fprintf(w, "    %s: %.2f\n", label("ch. util"), m.ChannelUtilization)
	}
	if m.HasAirUtilTx {
		fmt.Fprintf(w, "    %s: %.2f\n", label("air util"), m.AirUtilTx)
	}
}

// Telemetry field numbers, following Meshtastic's telemetry.proto: the
// Telemetry message's payload_variant oneof. Only the three variants this
// module dumps are scanned for; local_stats and health_metrics (tags 6, 7)
// are skipped like any other unrecognized field, matching main.c's
// dump_localstats_metrics/dump_health_metrics stubs, which print nothing.
const (
	telemetryDeviceMetricsField      = 2
	telemetryEnvironmentMetricsField = 3
	telemetryAirQualityMetricsField  = 4
)

// Telemetry holds the raw sub-message bytes of whichever payload_variant
// was present in a decoded Telemetry message. At most one field is
// populated, matching the source protobuf's oneof.
type Telemetry struct {
	DeviceMetrics      []byte
	EnvironmentMetrics []byte
	AirQualityMetrics  []byte
}

// ParseTelemetry decodes a Data.Payload carrying port TELEMETRY_APP into
// its oneof variant's raw sub-message bytes, mirroring dump_telemetry's
// switch on which_variant.
func ParseTelemetry(b []byte) (Telemetry, error) {
	var t Telemetry

	for len(b) > 0 {
		num, typ, tagLen := protowire.ConsumeTag(b)
		if tagLen < 0 {
			return Telemetry{}, ErrMalformed
		}
		b = b[tagLen:]

		var consumed int
		switch {
		case num == telemetryDeviceMetricsField && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			consumed = n
			if n >= 0 {
				t.DeviceMetrics = append([]byte{}, v...)
			}

		case num == telemetryEnvironmentMetricsField && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			consumed = n
			if n >= 0 {
				t.EnvironmentMetrics = append([]byte{}, v...)
			}

		case num == telemetryAirQualityMetricsField && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			consumed = n
			if n >= 0 {
				t.AirQualityMetrics = append([]byte{}, v...)
			}

		default:
			consumed = protowire.ConsumeFieldValue(num, typ, b)
		}

		if consumed < 0 {
			return Telemetry{}, ErrMalformed
		}
		b = b[consumed:]
	}

	return t, nil
}

// EnvironmentMetrics is the subset of Meshtastic's EnvironmentMetrics
// message dump_environment_metrics prints: temperature, humidity, pressure,
// and the weather-station/air-sensor fields that ride alongside them.
type EnvironmentMetrics struct {
	HasTemperature        bool
	Temperature           float32
	HasRelativeHumidity   bool
	RelativeHumidity      float32
	HasBarometricPressure bool
	BarometricPressure    float32
	HasGasResistance      bool
	GasResistance         float32
	HasVoltage            bool
	Voltage               float32
	HasCurrent            bool
	Current               float32
	HasIAQ                bool
	IAQ                   uint32
	HasDistance           bool
	Distance              float32
	HasLux                bool
	Lux                   float32
	HasWhiteLux           bool
	WhiteLux              float32
	HasIrLux              bool
	IrLux                 float32
	HasUvLux              bool
	UvLux                 float32
	HasWindDirection      bool
	WindDirection         uint32
	HasWindSpeed          bool
	WindSpeed             float32
	HasWeight             bool
	Weight                float32
	HasWindGust           bool
	WindGust              float32
	HasWindLull           bool
	WindLull              float32
}

// Field numbers below follow Meshtastic's telemetry.proto EnvironmentMetrics
// message.
const (
	envMetricTemperature        = 1
	envMetricRelativeHumidity   = 2
	envMetricBarometricPressure = 3
	envMetricGasResistance      = 4
	envMetricVoltage            = 5
	envMetricCurrent            = 6
	envMetricIAQ                = 7
	envMetricDistance           = 8
	envMetricLux                = 9
	envMetricWhiteLux           = 10
	envMetricIrLux              = 11
	envMetricUvLux              = 12
	envMetricWindDirection      = 13
	envMetricWindSpeed          = 14
	envMetricWeight             = 15
	envMetricWindGust           = 16
	envMetricWindLull           = 17
)

// ParseEnvironmentMetrics decodes a Telemetry message's embedded
// EnvironmentMetrics field, ported from dump_environment_metrics's field
// list in main.c.
func ParseEnvironmentMetrics(b []byte) (EnvironmentMetrics, error) {
	var m EnvironmentMetrics

	floatFields := map[uint64]func(float32){
		envMetricTemperature:        func(v float32) { m.Temperature, m.HasTemperature = v, true },
		envMetricRelativeHumidity:   func(v float32) { m.RelativeHumidity, m.HasRelativeHumidity = v, true },
		envMetricBarometricPressure: func(v float32) { m.BarometricPressure, m.HasBarometricPressure = v, true },
		envMetricGasResistance:      func(v float32) { m.GasResistance, m.HasGasResistance = v, true },
		envMetricVoltage:            func(v float32) { m.Voltage, m.HasVoltage = v, true },
		envMetricCurrent:            func(v float32) { m.Current, m.HasCurrent = v, true },
		envMetricDistance:           func(v float32) { m.Distance, m.HasDistance = v, true },
		envMetricLux:                func(v float32) { m.Lux, m.HasLux = v, true },
		envMetricWhiteLux:           func(v float32) { m.WhiteLux, m.HasWhiteLux = v, true },
		envMetricIrLux:              func(v float32) { m.IrLux, m.HasIrLux = v, true },
		envMetricUvLux:              func(v float32) { m.UvLux, m.HasUvLux = v, true },
		envMetricWindSpeed:          func(v float32) { m.WindSpeed, m.HasWindSpeed = v, true },
		envMetricWeight:             func(v float32) { m.Weight, m.HasWeight = v, true },
		envMetricWindGust:           func(v float32) { m.WindGust, m.HasWindGust = v, true },
		envMetricWindLull:           func(v float32) { m.WindLull, m.HasWindLull = v, true },
	}
	varintFields := map[uint64]func(uint64){
		envMetricIAQ:           func(v uint64) { m.IAQ, m.HasIAQ = uint32(v), true },
		envMetricWindDirection: func(v uint64) { m.WindDirection, m.HasWindDirection = uint32(v), true },
	}

	for len(b) > 0 {
		num, typ, tagLen := protowire.ConsumeTag(b)
		if tagLen < 0 {
			return EnvironmentMetrics{}, ErrMalformed
		}
		b = b[tagLen:]

		var consumed int
		switch typ {
		case protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(b)
			consumed = n
			if n >= 0 {
				if set, ok := floatFields[num]; ok {
					set(math.Float32frombits(v))
				}
			}

		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			consumed = n
			if n >= 0 {
				if set, ok := varintFields[num]; ok {
					set(v)
				}
			}

		default:
			consumed = protowire.ConsumeFieldValue(num, typ, b)
		}

		if consumed < 0 {
			return EnvironmentMetrics{}, ErrMalformed
		}
		b = b[consumed:]
	}

	return m, nil
}

// DumpEnvironmentMetrics prints m to w the way main.c's
// dump_environment_metrics did, one present field per line.
func DumpEnvironmentMetrics(w io.Writer, m EnvironmentMetrics) {
	label := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintln(w, "  environment metrics:")
	if m.HasTemperature {
		fmt.Fprintf(w, "    %s: %.1f\n", label("temperature"), m.Temperature)
	}
	if m.HasRelativeHumidity {
		fmt.Fprintf(w, "    %s: %.1f\n", label("humidity"), m.RelativeHumidity)
	}
	if m.HasBarometricPressure {
		fmt.Fprintf(w, "    %s: %.1f\n", label("barometric pressure"), m.BarometricPressure)
	}
	if m.HasWindDirection {
		fmt.Fprintf(w, "    %s: %d\n", label("wind bearing"), m.WindDirection)
	}
	if m.HasWindSpeed {
		fmt.Fprintf(w, "    %s: %.1f\n", label("wind speed"), m.WindSpeed)
	}
	if m.HasWindGust {
		fmt.Fprintf(w, "    %s: %.1f\n", label("wind gust"), m.WindGust)
	}
	if m.HasWindLull {
		fmt.Fprintf(w, "    %s: %.1f\n", label("wind lull"), m.WindLull)
	}
	if m.HasGasResistance {
		fmt.Fprintf(w, "    %s: %.1f\n", label("gas resistance"), m.GasResistance)
	}
	if m.HasVoltage {
		fmt.Fprintf(w, "    %s: %.2f\n", label("voltage"), m.Voltage)
	}
	if m.HasCurrent {
		fmt.Fprintf(w, "    %s: %.2f\n", label("current"), m.Current)
	}
	if m.HasIAQ {
		fmt.Fprintf(w, "    %s: %d\n", label("IAQ"), m.IAQ)
	}
	if m.HasDistance {
		fmt.Fprintf(w, "    %s: %.1f\n", label("distance"), m.Distance)
	}
	if m.HasLux {
		fmt.Fprintf(w, "    %s: %.1f\n", label("LUX"), m.Lux)
	}
	if m.HasWhiteLux {
		fmt.Fprintf(w, "    %s: %.1f\n", label("LUX (white)"), m.WhiteLux)
	}
	if m.HasIrLux {
		fmt.Fprintf(w, "    %s: %.1f\n", label("LUX (IR)"), m.IrLux)
	}
	if m.HasUvLux {
		fmt.Fprintf(w, "    %s: %.1f\n", label("LUX (UV)"), m.UvLux)
	}
	if m.HasWeight {
		fmt.Fprintf(w, "    %s: %.1f\n", label("weight"), m.Weight)
	}
}

// AirQualityMetrics is the subset of Meshtastic's AirQualityMetrics message
// dump_airquality_metrics prints: particulate-matter mass and count
// concentrations plus CO2.
type AirQualityMetrics struct {
	HasPM10Standard        bool
	PM10Standard           uint32
	HasPM25Standard        bool
	PM25Standard           uint32
	HasPM100Standard       bool
	PM100Standard          uint32
	HasPM10Environmental   bool
	PM10Environmental      uint32
	HasPM25Environmental   bool
	PM25Environmental      uint32
	HasPM100Environmental  bool
	PM100Environmental     uint32
	HasParticles03um       bool
	Particles03um          uint32
	HasParticles05um       bool
	Particles05um          uint32
	HasParticles10um       bool
	Particles10um          uint32
	HasParticles25um       bool
	Particles25um          uint32
	HasParticles50um       bool
	Particles50um          uint32
	HasParticles100um      bool
	Particles100um         uint32
	HasCO2                 bool
	CO2                    uint32
}

// Field numbers below follow Meshtastic's telemetry.proto AirQualityMetrics
// message.
const (
	airMetricPM10Standard       = 1
	airMetricPM25Standard       = 2
	airMetricPM100Standard      = 3
	airMetricPM10Environmental  = 4
	airMetricPM25Environmental  = 5
	airMetricPM100Environmental = 6
	airMetricParticles03um      = 7
	airMetricParticles05um      = 8
	airMetricParticles10um      = 9
	airMetricParticles25um      = 10
	airMetricParticles50um      = 11
	airMetricParticles100um     = 12
	airMetricCO2                = 13
)

// ParseAirQualityMetrics decodes a Telemetry message's embedded
// AirQualityMetrics field, ported from dump_airquality_metrics's field
// list in main.c. Every field in this message is a plain varint count.
func ParseAirQualityMetrics(b []byte) (AirQualityMetrics, error) {
	var m AirQualityMetrics

	varintFields := map[uint64]func(uint64){
		airMetricPM10Standard:       func(v uint64) { m.PM10Standard, m.HasPM10Standard = uint32(v), true },
		airMetricPM25Standard:       func(v uint64) { m.PM25Standard, m.HasPM25Standard = uint32(v), true },
		airMetricPM100Standard:      func(v uint64) { m.PM100Standard, m.HasPM100Standard = uint32(v), true },
		airMetricPM10Environmental:  func(v uint64) { m.PM10Environmental, m.HasPM10Environmental = uint32(v), true },
		airMetricPM25Environmental:  func(v uint64) { m.PM25Environmental, m.HasPM25Environmental = uint32(v), true },
		airMetricPM100Environmental: func(v uint64) { m.PM100Environmental, m.HasPM100Environmental = uint32(v), true },
		airMetricParticles03um:      func(v uint64) { m.Particles03um, m.HasParticles03um = uint32(v), true },
		airMetricParticles05um:      func(v uint64) { m.Particles05um, m.HasParticles05um = uint32(v), true },
		airMetricParticles10um:      func(v uint64) { m.Particles10um, m.HasParticles10um = uint32(v), true },
		airMetricParticles25um:      func(v uint64) { m.Particles25um, m.HasParticles25um = uint32(v), true },
		airMetricParticles50um:      func(v uint64) { m.Particles50um, m.HasParticles50um = uint32(v), true },
		airMetricParticles100um:     func(v uint64) { m.Particles100um, m.HasParticles100um = uint32(v), true },
		airMetricCO2:                func(v uint64) { m.CO2, m.HasCO2 = uint32(v), true },
	}

	for len(b) > 0 {
		num, typ, tagLen := protowire.ConsumeTag(b)
		if tagLen < 0 {
			return AirQualityMetrics{}, ErrMalformed
		}
		b = b[tagLen:]

		var consumed int
		if typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(b)
			consumed = n
			if n >= 0 {
				if set, ok := varintFields[num]; ok {
					set(v)
				}
			}
		} else {
			consumed = protowire.ConsumeFieldValue(num, typ, b)
		}

		if consumed < 0 {
			return AirQualityMetrics{}, ErrMalformed
		}
		b = b[consumed:]
	}

	return m, nil
}

// DumpAirQualityMetrics prints m to w the way main.c's
// dump_airquality_metrics did, one present field per line.
func DumpAirQualityMetrics(w io.Writer, m AirQualityMetrics) {
	label := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintln(w, "  air quality metrics:")
	if m.HasPM10Standard {
		fmt.Fprintf(w, "    %s: %d\n", label("PM10 std"), m.PM10Standard)
	}
	if m.HasPM25Standard {
		fmt.Fprintf(w, "    %s: %d\n", label("PM25 std"), m.PM25Standard)
	}
	if m.HasPM100Standard {
		fmt.Fprintf(w, "    %s: %d\n", label("PM100 std"), m.PM100Standard)
	}
	if m.HasPM10Environmental {
		fmt.Fprintf(w, "    %s: %d\n", label("PM10 env"), m.PM10Environmental)
	}
	if m.HasPM25Environmental {
		fmt.Fprintf(w, "    %s: %d\n", label("PM25 env"), m.PM25Environmental)
	}
	if m.HasPM100Environmental {
		fmt.Fprintf(w, "    %s: %d\n", label("PM100 env"), m.PM100Environmental)
	}
	if m.HasParticles03um {
		fmt.Fprintf(w, "    %s: %d\n", label("3um particles"), m.Particles03um)
	}
	if m.HasParticles05um {
		fmt.Fprintf(w, "    %s: %d\n", label("5um particles"), m.Particles05um)
	}
	if m.HasParticles10um {
		fmt.Fprintf(w, "    %s: %d\n", label("10um particles"), m.Particles10um)
	}
	if m.HasParticles25um {
		fmt.Fprintf(w, "    %s: %d\n", label("25um particles"), m.Particles25um)
	}
	if m.HasParticles50um {
		fmt.Fprintf(w, "    %s: %d\n", label("50um particles"), m.Particles50um)
	}
	if m.HasParticles100um {
		fmt.Fprintf(w, "    %s: %d\n", label("100um particles"), m.Particles100um)
	}
	if m.HasCO2 {
		fmt.Fprintf(w, "    %s: %d\n", label("CO2"), m.CO2)
	}
}
