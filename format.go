package modsynth

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// SampleFormat is the encoding of the samples in a scratch buffer.
type SampleFormat int

const (
	FormatS8 SampleFormat = iota
	FormatS16
	FormatS24 // stored in 32 bits, full scale is 2^23-1
	FormatS32
	FormatS64
	FormatFloat
	FormatDouble
)

var formatNames = [...]string{"s8", "s16", "s24", "s32", "s64", "float", "double"}

var bytesPerSample = [...]int{1, 2, 4, 4, 8, 4, 8}

// DefaultFormat is the format a new host audio object starts with.
const DefaultFormat = FormatS16

func (f SampleFormat) Valid() bool { return f >= 0 && int(f) < len(formatNames) }

func (f SampleFormat) String() string {
	if !f.Valid() {
		return fmt.Sprintf("SampleFormat(%d)", int(f))
	}
	return formatNames[f]
}

// BytesPerSample returns the size of one encoded sample, or 0 for an invalid
// format.
func (f SampleFormat) BytesPerSample() int {
	if !f.Valid() {
		return 0
	}
	return bytesPerSample[f]
}

// ParseSampleFormat accepts the names returned by String, plus "16bit"-style
// aliases for the integer formats.
func ParseSampleFormat(s string) (SampleFormat, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, "bit")
	s = strings.TrimSuffix(s, "-")
	for i, n := range formatNames {
		if s == n || "s"+s == n {
			return SampleFormat(i), nil
		}
	}
	return 0, fmt.Errorf("unknown sample format %q", s)
}

func (f SampleFormat) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid sample format %d", int(f))
	}
	return []byte(f.String()), nil
}

func (f *SampleFormat) UnmarshalText(text []byte) error {
	v, err := ParseSampleFormat(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func (f SampleFormat) MarshalYAML() (any, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid sample format %d", int(f))
	}
	return f.String(), nil
}

func (f *SampleFormat) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("sample format should be a string: %w", err)
	}
	return f.UnmarshalText([]byte(s))
}
