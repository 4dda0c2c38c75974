package modsynth

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Preset stores port values keyed by port specifier. It is the only
// persisted state of the unit; channel and kernel state is runtime only.
type Preset map[string]float64

// Preset returns the current values of all bound ports.
func (p *Ports) Preset() Preset {
	ret := make(Preset, p.Len())
	for _, port := range p.All() {
		ret[port.Specifier] = port.Value()
	}
	return ret
}

// Apply sets the ports named in the preset, clamping values to the port
// bounds. Entries may use port names or specifiers. Unknown entries are
// reported in the returned error after all known ones have been applied.
func (p *Ports) Apply(preset Preset) error {
	keys := make([]string, 0, len(preset))
	for k := range preset {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var unknown []string
	for _, k := range keys {
		port := p.Port(k)
		if port == nil {
			unknown = append(unknown, k)
			continue
		}
		port.SetClamped(preset[k])
	}
	if len(unknown) > 0 {
		return fmt.Errorf("preset has unknown ports %v", unknown)
	}
	return nil
}

// ParsePreset parses a preset as JSON, falling back to YAML.
func ParsePreset(data []byte) (Preset, error) {
	var ret Preset
	if errJSON := json.Unmarshal(data, &ret); errJSON != nil {
		ret = nil
		if errYaml := yaml.Unmarshal(data, &ret); errYaml != nil {
			return nil, fmt.Errorf("the preset could not be parsed as .json (%v) or .yml (%v)", errJSON, errYaml)
		}
	}
	return ret, nil
}

func LoadPreset(filename string) (Preset, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read preset %v: %w", filename, err)
	}
	ret, err := ParsePreset(data)
	if err != nil {
		return nil, fmt.Errorf("could not parse preset %v: %w", filename, err)
	}
	return ret, nil
}

// Marshal encodes the preset as YAML, keys sorted.
func (p Preset) Marshal() ([]byte, error) {
	ret, err := yaml.Marshal(map[string]float64(p))
	if err != nil {
		return nil, fmt.Errorf("could not marshal preset: %w", err)
	}
	return ret, nil
}
