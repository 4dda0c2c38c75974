package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vsariola/modsynth"
	"github.com/vsariola/modsynth/gomidi"
)

var (
	midiDevice  string
	midiChannel int
	midiList    bool
)

var midiCmd = &cobra.Command{
	Use:   "midi",
	Short: "Play the MIDI scope live from a MIDI input",
	Long: `Midi opens a MIDI input and plays the notes it receives through the sound
card until interrupted. Needs a build with cgo.

Example:
  modsynth midi --device "Launchkey" --channel 0
`,
	Args: cobra.NoArgs,
	RunE: runMidi,
}

func init() {
	f := midiCmd.Flags()
	f.StringVarP(&midiDevice, "device", "d", "", "Open the first MIDI input whose name starts with this; any input if empty.")
	f.IntVar(&midiChannel, "channel", gomidi.Omni, "MIDI channel to listen to, 0-15; -1 for all.")
	f.BoolVar(&midiList, "list", false, "List the MIDI inputs and exit.")
	rootCmd.AddCommand(midiCmd)
}

func runMidi(c *cobra.Command, args []string) error {
	if midiList {
		devices, err := gomidi.Devices()
		if err != nil {
			return err
		}
		for _, d := range devices {
			fmt.Fprintln(c.OutOrStdout(), d)
		}
		return nil
	}
	audio, unit, err := newUnit(c)
	if err != nil {
		return err
	}
	defer unit.Close()
	stop, err := listenMidi(unit)
	if err != nil {
		return err
	}
	defer stop()
	sink, closeSink, err := openSink(audio)
	if err != nil {
		return err
	}
	defer closeSink()
	ctx, cancel := interruptContext()
	defer cancel()
	return stream(ctx, unit, modsynth.ScopeMIDI, sink)
}

func listenMidi(unit *modsynth.ModularSynthAudio) (stop func(), err error) {
	if midiChannel < gomidi.Omni || midiChannel > 15 {
		return nil, fmt.Errorf("invalid MIDI channel %d", midiChannel)
	}
	h := gomidi.NewHandler(unit)
	h.Channel = midiChannel
	h.Logger = logger()
	return gomidi.Listen(midiDevice, h)
}
