// Package config holds the firmware settings. Boards carry an embedded YAML
// document; the host build may also load one from disk.
package config

import (
	"os"
	"time"

	"hapticlink/bus"
	"hapticlink/drivers/drv2605"
	"hapticlink/errcode"
	"hapticlink/services/central"
	"hapticlink/services/haptic"
	"hapticlink/services/heartbeat"
	"hapticlink/types"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Board     string        `yaml:"board"`
	LogLevel  string        `yaml:"log_level"`
	BootDelay time.Duration `yaml:"boot_delay"`
	Tick      time.Duration `yaml:"tick"`
	QueueLen  int           `yaml:"queue_len"`
	Scan      ScanConfig    `yaml:"scan"`
	Central   CentralConfig `yaml:"central"`
	Haptic    HapticConfig  `yaml:"haptic"`
	Host      HostConfig    `yaml:"host"`
}

// ScanConfig holds the scan timing. Not every BLE backend honours it.
type ScanConfig struct {
	Interval time.Duration `yaml:"interval"`
	Window   time.Duration `yaml:"window"`
}

type CentralConfig struct {
	TargetUUID uint16 `yaml:"target_uuid"`
	RangeStart uint16 `yaml:"range_start"`
	RangeEnd   uint16 `yaml:"range_end"`
	PeerName   string `yaml:"peer_name"`
}

type HapticConfig struct {
	Effect           uint8  `yaml:"effect"`
	BrakeTime        uint8  `yaml:"brake_time"`
	Library          uint8  `yaml:"library"`
	SkipWhilePlaying bool   `yaml:"skip_while_playing"`
}

// HostConfig only applies to the Linux build.
type HostConfig struct {
	I2CDevice string `yaml:"i2c_device"`
	RedisAddr string `yaml:"redis_addr"`
	RedisKey  string `yaml:"redis_key"`
}

// Default returns the stock settings.
func Default() *Config {
	return &Config{
		Board:     "nrf52840",
		LogLevel:  "info",
		BootDelay: 10 * time.Second,
		Tick:      time.Second,
		QueueLen:  32,
		Scan: ScanConfig{
			Interval: 500 * time.Millisecond,
			Window:   400 * time.Millisecond,
		},
		Central: CentralConfig{
			TargetUUID: 0xa001,
			RangeStart: 0xa000,
			RangeEnd:   0xa001,
		},
		Haptic: HapticConfig{
			Effect:    1,
			BrakeTime: 0x64,
			Library:   1,
		},
		Host: HostConfig{
			I2CDevice: "/dev/i2c-1",
			RedisKey:  "hapticlink",
		},
	}
}

// EmbeddedConfigLookup allows overriding how board configs are resolved.
var EmbeddedConfigLookup = func(board string) ([]byte, bool) {
	b, ok := embeddedConfigs[board]
	return b, ok
}

// Load returns the embedded configuration for board.
func Load(board string) (*Config, error) {
	raw, ok := EmbeddedConfigLookup(board)
	if !ok || len(raw) == 0 {
		return nil, &errcode.E{C: errcode.BadConfig, Op: "load", Msg: "no embedded config for board: " + board}
	}
	return Parse(raw)
}

// LoadFile reads a YAML file from disk.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errcode.Wrap(errcode.BadConfig, "read "+path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML document over Default() and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errcode.Wrap(errcode.BadConfig, "parse", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func invalid(msg string) error {
	return &errcode.E{C: errcode.BadConfig, Op: "validate", Msg: msg}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Tick <= 0 {
		return invalid("tick must be positive")
	}
	if c.BootDelay < 0 {
		return invalid("boot_delay must not be negative")
	}
	if c.Scan.Window > c.Scan.Interval {
		return invalid("scan window must not exceed scan interval")
	}
	if c.Central.RangeStart > c.Central.RangeEnd {
		return invalid("central range_start must not exceed range_end")
	}
	if c.Central.TargetUUID < c.Central.RangeStart || c.Central.TargetUUID > c.Central.RangeEnd {
		return invalid("central target_uuid outside discovery range")
	}
	if c.Haptic.Library > 7 {
		return invalid("haptic library must be 0-7")
	}
	if c.QueueLen < 0 {
		return invalid("queue_len must not be negative")
	}
	return nil
}

// Publish places the per-service sections on the bus as retained messages.
func (c *Config) Publish(conn *bus.Connection) {
	conn.Publish(conn.NewMessage(bus.T("config", "heartbeat"), heartbeat.Config{Interval: c.Tick}, true))
}

func (c *Config) CentralOptions() central.Options {
	return central.Options{
		Target:     types.UUID16(c.Central.TargetUUID),
		RangeStart: types.UUID16(c.Central.RangeStart),
		RangeEnd:   types.UUID16(c.Central.RangeEnd),
		PeerName:   c.Central.PeerName,
	}
}

func (c *Config) HapticOptions() haptic.Options {
	return haptic.Options{
		Effect:           c.Haptic.Effect,
		SkipWhilePlaying: c.Haptic.SkipWhilePlaying,
		Driver: drv2605.Config{
			BrakeTime: c.Haptic.BrakeTime,
			Library:   c.Haptic.Library,
		},
	}
}
