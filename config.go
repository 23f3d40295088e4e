
package jsbridge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/kmcsr/go-jsbridge/device"
	"github.com/kmcsr/go-jsbridge/emitter"
)

type AccelerometerConfig struct{
	UpdateIntervalMs int64 `json:"update_interval_ms" yaml:"update_interval_ms" toml:"update_interval_ms"`
}

type HostConfig struct{
	// Addr of a hostlink device host; empty runs on the built-in simulator.
	Addr string `json:"addr" yaml:"addr" toml:"addr"`
	// Token proves the engine to a host started with the same token.
	Token string `json:"token" yaml:"token" toml:"token"`
}

type MetricsConfig struct{
	// Addr to serve /metrics on; empty disables the endpoint.
	Addr string `json:"addr" yaml:"addr" toml:"addr"`
}

type Config struct{
	Strict        bool                `json:"strict" yaml:"strict" toml:"strict"`
	DisarmOnIdle  bool                `json:"disarm_on_idle" yaml:"disarm_on_idle" toml:"disarm_on_idle"`
	Accelerometer AccelerometerConfig `json:"accelerometer" yaml:"accelerometer" toml:"accelerometer"`
	Host          HostConfig          `json:"host" yaml:"host" toml:"host"`
	Metrics       MetricsConfig       `json:"metrics" yaml:"metrics" toml:"metrics"`
	LogLevel      string              `json:"log_level" yaml:"log_level" toml:"log_level"`
}

func DefaultConfig()(Config){
	return Config{
		Accelerometer: AccelerometerConfig{
			UpdateIntervalMs: device.Millis(device.DefaultUpdateInterval),
		},
		LogLevel: "info",
	}
}

// LoadConfig reads path, choosing the decoder by extension. Missing fields
// keep their DefaultConfig values.
func LoadConfig(path string)(cfg Config, err error){
	var data []byte
	if data, err = os.ReadFile(path); err != nil {
		return
	}
	cfg = DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("Unsupported config format '%s'", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("Cannot parse %s: %w", path, err)
	}
	if err = cfg.Validate(); err != nil {
		return
	}
	return
}

func (c Config)Validate()(err error){
	if c.Accelerometer.UpdateIntervalMs < 0 {
		return fmt.Errorf("accelerometer.update_interval_ms must not be negative, got %d", c.Accelerometer.UpdateIntervalMs)
	}
	if _, err = ParseLevel(c.LogLevel); err != nil {
		return
	}
	return
}

func (c Config)Policy()(emitter.Policy){
	if c.Strict {
		return emitter.Strict
	}
	return emitter.Permissive
}

// UpdateInterval is the accelerometer interval, zero meaning the default.
func (c Config)UpdateInterval()(time.Duration){
	if c.Accelerometer.UpdateIntervalMs <= 0 {
		return device.DefaultUpdateInterval
	}
	return device.FromMillis(c.Accelerometer.UpdateIntervalMs)
}
