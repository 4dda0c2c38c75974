package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"
	"github.com/vsariola/modsynth"
	"github.com/vsariola/modsynth/cmd"
)

var (
	renderKeys   []int
	renderLength float64
	renderHold   float64
	renderOut    string
	renderRaw    bool
	renderPCM    bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render notes offline to a .wav or .raw file",
	Long: `Render holds the given MIDI keys in the playback scope, releases them after
--hold seconds and writes --length seconds of audio.

Example:
  modsynth render -k 60 -k 64 -k 67 --hold 1 --length 2 -o chord.wav
`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	f := renderCmd.Flags()
	f.IntSliceVarP(&renderKeys, "key", "k", []int{69}, "MIDI keys to play.")
	f.Float64VarP(&renderLength, "length", "l", 2, "Length of the output in seconds.")
	f.Float64Var(&renderHold, "hold", 1, "Seconds until the keys are released.")
	f.StringVarP(&renderOut, "output", "o", "", "Output file; standard output if empty.")
	f.BoolVar(&renderRaw, "raw", false, "Output raw samples without the .wav header.")
	f.BoolVar(&renderPCM, "pcm", false, "Convert audio to 16-bit signed PCM.")
	rootCmd.AddCommand(renderCmd)
}

func runRender(c *cobra.Command, args []string) error {
	audio, unit, err := newUnit(c)
	if err != nil {
		return err
	}
	defer unit.Close()
	keys, err := toKeys(renderKeys)
	if err != nil {
		return err
	}
	rate := audio.Samplerate()
	r := &cmd.Renderer{Unit: unit, Scope: modsynth.ScopePlayback}
	buffer, err := r.Notes(keys, seconds(renderHold, rate), seconds(renderLength, rate))
	if err != nil {
		return err
	}
	var contents []byte
	if renderRaw {
		contents, err = modsynth.Raw(buffer, renderPCM)
	} else {
		contents, err = modsynth.Wav(buffer, audio.AudioChannels(), rate, renderPCM)
	}
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(c.ErrOrStderr(), "peak %.1f dBFS\n", modsynth.Peak(buffer))
	}
	return output(renderOut, contents)
}

func toKeys(ints []int) ([]byte, error) {
	ret := make([]byte, len(ints))
	for i, k := range ints {
		if k < 0 || k >= modsynth.NumKeys {
			return nil, fmt.Errorf("key %d: %w", k, modsynth.ErrKeyRange)
		}
		ret[i] = byte(k)
	}
	return ret, nil
}

func seconds(s float64, samplerate int) int {
	return int(math.Max(s, 0) * float64(samplerate))
}
