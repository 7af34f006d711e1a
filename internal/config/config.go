// Package config loads the receiver's YAML configuration: sample rate,
// center frequency, per-channel demodulation/decode parameters, device
// selection, and CPU pinning. Grounded on the teacher's layered
// config-file handling (config.go's config_init taking a file name and
// filling shared structs) and deviceid.go's use of gopkg.in/yaml.v3 to
// unmarshal a structured document — YAML is a superset of JSON, so a
// plain JSON config file parses unchanged.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DeviceKind names which IQSource implementation a Device section
// resolves to. Only KindFile is backed by a working source in this repo;
// the others are accepted so configs naming real hardware remain valid
// documents, and rejected at startup with a clear error.
type DeviceKind string

const (
	KindRTL    DeviceKind = "rtl"
	KindAirspy DeviceKind = "airspy"
	KindUHD    DeviceKind = "uhd"
	KindFile   DeviceKind = "file"
)

// Device describes the SDR source (or file replay stand-in) to read from.
type Device struct {
	Kind DeviceKind `yaml:"kind"`
	// Path is the file to replay when Kind is KindFile.
	Path string `yaml:"path"`
	// BytesPerSecond paces FileSource's synthetic clock; 0 means read as
	// fast as possible.
	BytesPerSecond float64 `yaml:"bytesPerSecond"`
}

// Channel describes one demodulation/decode pipeline tapped off the
// shared wideband input.
type Channel struct {
	FreqHz              uint32    `yaml:"freqHz"`
	OutFifo             string    `yaml:"outFifo"`
	DecimationFactor    int       `yaml:"decimationFactor"`
	LPFTaps             []float64 `yaml:"lpfTaps"`
	ResampleDecimate    int       `yaml:"resampleDecimate"`
	ResampleInterpolate int       `yaml:"resampleInterpolate"`
	ResampleFilterTaps  []float64 `yaml:"resampleFilterTaps"`
	DCBlockerPole       float64   `yaml:"dcBlockerPole"`
	EnableDCBlocker     bool      `yaml:"enableDcBlocker"`
	GainDb              float64   `yaml:"gainDb"`
	DebugSignalFile     string    `yaml:"debugSignalFile"`

	// Decoder selects which protocol decoder (if any) this channel runs;
	// empty means the channel only emits PCM to OutFifo. Not part of the
	// legacy schema proper, but every channel needs one to be wired to a
	// Pipeline, and the schema has nowhere else to put it.
	Decoder string `yaml:"decoder"`
}

// CoreIDs is either a single CPU index or a list of them, accepting both
// `coreIds: 2` and `coreIds: [0, 1, 2]` the way the legacy config's
// loosely-typed fields do.
type CoreIDs []int

// UnmarshalYAML implements yaml.Unmarshaler, accepting a scalar or a
// sequence for coreIds.
func (c *CoreIDs) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var id int
		if err := value.Decode(&id); err != nil {
			return fmt.Errorf("coreIds: %w", err)
		}
		*c = CoreIDs{id}
		return nil
	case yaml.SequenceNode:
		var ids []int
		if err := value.Decode(&ids); err != nil {
			return fmt.Errorf("coreIds: %w", err)
		}
		*c = CoreIDs(ids)
		return nil
	default:
		return fmt.Errorf("coreIds: expected a number or a list of numbers")
	}
}

// Config is the receiver's full configuration document (spec §6's
// top-level keys).
type Config struct {
	SampleRate uint32    `yaml:"sampleRate"`
	CenterFreq uint32    `yaml:"centerFreq"`
	Channels   []Channel `yaml:"channels"`
	Device     Device    `yaml:"device"`
	CoreIDs    CoreIDs   `yaml:"coreIds"`
}

// merge overlays non-zero fields of other onto c, the "later files
// override earlier" rule. Slices and the device/channels are wholesale
// replaced when present in other, matching the document-level (not
// field-level) override a YAML re-read naturally gives full sections.
func (c *Config) merge(other *Config) {
	if other.SampleRate != 0 {
		c.SampleRate = other.SampleRate
	}
	if other.CenterFreq != 0 {
		c.CenterFreq = other.CenterFreq
	}
	if len(other.Channels) > 0 {
		c.Channels = other.Channels
	}
	if other.Device.Kind != "" {
		c.Device = other.Device
	}
	if len(other.CoreIDs) > 0 {
		c.CoreIDs = other.CoreIDs
	}
}

// Load reads and merges one or more YAML config files in the order
// given, later files overriding earlier ones, matching spec §6's CLI
// contract. At least one path is required.
func Load(paths ...string) (*Config, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("config: at least one config file is required")
	}

	cfg := &Config{}
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		var layer Config
		if err := yaml.Unmarshal(raw, &layer); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
		cfg.merge(&layer)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the merged configuration for the failures spec §7
// classifies as initialization failures: missing sample rate, a device
// kind this build can't actually open, and per-channel geometry that
// can't be wired into a Pipeline.
func (c *Config) Validate() error {
	if c.SampleRate == 0 {
		return fmt.Errorf("config: sampleRate must be set")
	}
	switch c.Device.Kind {
	case KindFile:
		if c.Device.Path == "" {
			return fmt.Errorf("config: device.path is required for kind %q", KindFile)
		}
	case KindRTL, KindAirspy, KindUHD:
		return fmt.Errorf("config: device kind %q is not implemented by this build (only %q is)", c.Device.Kind, KindFile)
	default:
		return fmt.Errorf("config: unknown device kind %q", c.Device.Kind)
	}
	if len(c.Channels) == 0 {
		return fmt.Errorf("config: at least one channel is required")
	}
	for i, ch := range c.Channels {
		if ch.DecimationFactor <= 0 {
			return fmt.Errorf("config: channels[%d].decimationFactor must be positive", i)
		}
		if (ch.ResampleDecimate == 0) != (ch.ResampleInterpolate == 0) {
			return fmt.Errorf("config: channels[%d] must set both resampleDecimate and resampleInterpolate, or neither", i)
		}
	}
	return nil
}
