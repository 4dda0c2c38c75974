package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/vsariola/modsynth"
	"github.com/vsariola/modsynth/cmd"
)

var (
	configFile string
	synthName  string
	presetFile string
	verbose    bool
	channels   int
	bufferSize int
	formatName string
	samplerate int
)

var rootCmd = &cobra.Command{
	Use:   "modsynth",
	Short: "Modular synthesizer audio unit",
	Long: `modsynth runs the modular synthesizer: two oscillators, two envelopes,
two LFOs and noise, rendered per audio channel.

Audio settings come from the config file given with --config, overridden by
the individual flags.`,
	SilenceUsage: true,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&configFile, "config", "", "Config file (.yml or .json).")
	f.StringVar(&synthName, "synth", "", "Synth kernel to use.")
	f.StringVarP(&presetFile, "preset", "p", "", "Preset file to apply to the ports; overrides the config.")
	f.BoolVarP(&verbose, "verbose", "v", false, "Log configuration changes to standard error.")
	f.IntVarP(&channels, "channels", "c", 2, "Number of audio channels.")
	f.IntVarP(&bufferSize, "buffer-size", "b", 512, "Frames per processing block.")
	f.StringVarP(&formatName, "format", "f", modsynth.DefaultFormat.String(), "Sample format of the scratch buffers: s8, s16, s24, s32, s64, float or double.")
	f.IntVarP(&samplerate, "samplerate", "r", 44100, "Samplerate in Hz.")
}

// loadConfig reads the config file, if any, and applies the flags the user
// gave explicitly.
func loadConfig(c *cobra.Command) (modsynth.Config, error) {
	config := modsynth.DefaultConfig()
	if configFile != "" {
		var err error
		if config, err = modsynth.LoadConfig(configFile); err != nil {
			return config, err
		}
	}
	f := c.Flags()
	if f.Changed("channels") {
		config.AudioChannels = channels
	}
	if f.Changed("buffer-size") {
		config.BufferSize = bufferSize
	}
	if f.Changed("format") {
		format, err := modsynth.ParseSampleFormat(formatName)
		if err != nil {
			return config, err
		}
		config.Format = format
	}
	if f.Changed("samplerate") {
		config.Samplerate = samplerate
	}
	if f.Changed("preset") {
		config.Preset = presetFile
	}
	return config, nil
}

// newUnit creates a host audio object and a unit attached to it, with the
// preset of the config applied.
func newUnit(c *cobra.Command) (*modsynth.Audio, *modsynth.ModularSynthAudio, error) {
	config, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	synther, err := cmd.SyntherByName(synthName)
	if err != nil {
		return nil, nil, err
	}
	audio := modsynth.NewAudio(config)
	unit := modsynth.NewModularSynthAudio(synther)
	unit.SetLogger(logger())
	if err := unit.Attach(audio); err != nil {
		return nil, nil, err
	}
	if config.Preset != "" {
		preset, err := modsynth.LoadPreset(config.Preset)
		if err != nil {
			unit.Close()
			return nil, nil, err
		}
		if err := unit.Ports().Apply(preset); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}
	return audio, unit, nil
}

func logger() *log.Logger {
	if !verbose {
		return nil
	}
	return log.New(os.Stderr, "", log.LstdFlags)
}

// output writes contents to filename, or to standard output if filename is
// empty or "-".
func output(filename string, contents []byte) error {
	if filename == "" || filename == "-" {
		_, err := os.Stdout.Write(contents)
		return err
	}
	if err := os.WriteFile(filename, contents, 0644); err != nil {
		return fmt.Errorf("could not write file %v: %w", filename, err)
	}
	return nil
}
