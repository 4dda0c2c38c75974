package modsynth

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the host audio settings and the optional preset to load on
// start. It is read from .yml or .json files.
type Config struct {
	AudioChannels int          `yaml:"audiochannels" json:"audioChannels"`
	BufferSize    int          `yaml:"buffersize" json:"bufferSize"`
	Format        SampleFormat `yaml:"format" json:"format"`
	Samplerate    int          `yaml:"samplerate" json:"samplerate"`
	InputPads     int          `yaml:"inputpads,omitempty" json:"inputPads,omitempty"`
	Preset        string       `yaml:"preset,omitempty" json:"preset,omitempty"`
}

// DefaultConfig is stereo, 512 frames per block, 16-bit, 44100 Hz.
func DefaultConfig() Config {
	return Config{
		AudioChannels: 2,
		BufferSize:    512,
		Format:        DefaultFormat,
		Samplerate:    44100,
		InputPads:     1,
	}
}

// ParseConfig parses a config as JSON, falling back to YAML. Fields missing
// from the input keep their DefaultConfig values.
func ParseConfig(data []byte) (Config, error) {
	c := DefaultConfig()
	if errJSON := json.Unmarshal(data, &c); errJSON != nil {
		c = DefaultConfig()
		if errYaml := yaml.Unmarshal(data, &c); errYaml != nil {
			return Config{}, fmt.Errorf("the config could not be parsed as .json (%v) or .yml (%v)", errJSON, errYaml)
		}
	}
	if !c.Format.Valid() {
		return Config{}, fmt.Errorf("invalid sample format %d in config", int(c.Format))
	}
	return c.normalized(), nil
}

// LoadConfig reads and parses a config file.
func LoadConfig(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("could not read config %v: %w", filename, err)
	}
	c, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("could not parse config %v: %w", filename, err)
	}
	return c, nil
}

// Marshal encodes the config as YAML.
func (c Config) Marshal() ([]byte, error) {
	ret, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("could not marshal config: %w", err)
	}
	return ret, nil
}

// normalized clamps negative sizes and rates to zero.
func (c Config) normalized() Config {
	c.AudioChannels = max(c.AudioChannels, 0)
	c.BufferSize = max(c.BufferSize, 0)
	c.Samplerate = max(c.Samplerate, 0)
	c.InputPads = max(c.InputPads, 0)
	return c
}
