package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vsariola/modsynth"
	"github.com/vsariola/modsynth/cmd"
	"github.com/vsariola/modsynth/oto"
)

var (
	playKeys   []int
	playLength float64
	playHold   float64
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play notes through the sound card",
	Args:  cobra.NoArgs,
	RunE:  runPlay,
}

func init() {
	f := playCmd.Flags()
	f.IntSliceVarP(&playKeys, "key", "k", []int{69}, "MIDI keys to play.")
	f.Float64VarP(&playLength, "length", "l", 2, "Seconds to play.")
	f.Float64Var(&playHold, "hold", 1, "Seconds until the keys are released.")
	rootCmd.AddCommand(playCmd)
}

func runPlay(c *cobra.Command, args []string) error {
	audio, unit, err := newUnit(c)
	if err != nil {
		return err
	}
	defer unit.Close()
	keys, err := toKeys(playKeys)
	if err != nil {
		return err
	}
	rate := audio.Samplerate()
	r := &cmd.Renderer{Unit: unit, Scope: modsynth.ScopePlayback}
	buffer, err := r.Notes(keys, seconds(playHold, rate), seconds(playLength, rate))
	if err != nil {
		return err
	}
	sink, closeSink, err := openSink(audio)
	if err != nil {
		return err
	}
	defer closeSink()
	return sink.WriteAudio(buffer)
}

// openSink opens the sound card in the channel count and samplerate of
// audio.
func openSink(audio *modsynth.Audio) (modsynth.AudioSink, func(), error) {
	audioContext, err := oto.NewContext(audio.AudioChannels(), audio.Samplerate())
	if err != nil {
		return nil, nil, fmt.Errorf("could not acquire oto AudioContext: %w", err)
	}
	sink, err := audioContext.Output(audio.AudioChannels(), audio.Samplerate())
	if err != nil {
		audioContext.Close()
		return nil, nil, err
	}
	return sink, func() {
		sink.Close()
		audioContext.Close()
	}, nil
}

// stream plays a scope of the unit until ctx is done.
func stream(ctx context.Context, unit *modsynth.ModularSynthAudio, scope modsynth.Scope, sink modsynth.AudioSink) error {
	r := &cmd.Renderer{Unit: unit, Scope: scope}
	for ctx.Err() == nil {
		block, _, err := r.Next()
		if err != nil {
			return err
		}
		if err := sink.WriteAudio(block); err != nil {
			return err
		}
	}
	return nil
}

// interruptContext is done on SIGINT or SIGTERM.
func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
