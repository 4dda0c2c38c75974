package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vsariola/modsynth"
	"github.com/vsariola/modsynth/gomidi"
	"github.com/vsariola/modsynth/rpc"
)

var (
	serveAddress string
	serveMidi    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ports for remote automation while playing the MIDI scope",
	Long: `Serve exposes the ports of the synth over net/rpc (Ports.Get, Ports.Set and
Ports.List) and plays the MIDI scope through the sound card until
interrupted. With --midi, notes from the MIDI input are played; without
a MIDI driver the server still runs.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVarP(&serveAddress, "address", "a", rpc.DefaultAddress, "Listen address of the rpc server.")
	f.BoolVar(&serveMidi, "midi", true, "Listen to a MIDI input too (see the midi command for --device and --channel).")
	f.StringVarP(&midiDevice, "device", "d", "", "Open the first MIDI input whose name starts with this.")
	f.IntVar(&midiChannel, "channel", gomidi.Omni, "MIDI channel to listen to, 0-15; -1 for all.")
	rootCmd.AddCommand(serveCmd)
}

func runServe(c *cobra.Command, args []string) error {
	audio, unit, err := newUnit(c)
	if err != nil {
		return err
	}
	defer unit.Close()
	server, err := rpc.Serve(serveAddress, unit)
	if err != nil {
		return err
	}
	defer server.Close()
	fmt.Fprintf(c.ErrOrStderr(), "serving ports on %v\n", server.Addr())
	if serveMidi {
		stop, err := listenMidi(unit)
		switch {
		case errors.Is(err, gomidi.ErrNoDriver):
			fmt.Fprintf(os.Stderr, "warning: %v, serving without MIDI input\n", err)
		case err != nil:
			return err
		default:
			defer stop()
		}
	}
	sink, closeSink, err := openSink(audio)
	if err != nil {
		return err
	}
	defer closeSink()
	ctx, cancel := interruptContext()
	defer cancel()
	return stream(ctx, unit, modsynth.ScopeMIDI, sink)
}
