// Package gomidi feeds MIDI note input into a scope of the modular synth.
package gomidi

import (
	"errors"
	"log"

	"github.com/vsariola/modsynth"
	"gitlab.com/gomidi/midi/v2"
)

type (
	// KeyTarget receives the note events; *modsynth.ModularSynthAudio
	// implements it.
	KeyTarget interface {
		KeyOn(scope modsynth.Scope, key byte) error
		KeyOff(scope modsynth.Scope, key byte) error
		AllKeysOff(scope modsynth.Scope) error
	}

	// Handler turns MIDI messages into key-on and key-off events of one
	// scope of a KeyTarget. Note-ons with zero velocity are note-offs; the
	// all-notes-off and all-sound-off controllers release every key.
	Handler struct {
		Target KeyTarget
		Scope  modsynth.Scope
		// Channel is the MIDI channel listened to, 0-15, or Omni.
		Channel int
		Logger  *log.Logger
	}
)

// Omni makes a Handler accept notes of every MIDI channel.
const Omni = -1

const (
	controlAllSoundOff = 120
	controlAllNotesOff = 123
)

var ErrNoDriver = errors.New("no MIDI driver available")

func NewHandler(target KeyTarget) *Handler {
	return &Handler{Target: target, Scope: modsynth.ScopeMIDI, Channel: Omni}
}

// HandleMessage has the signature of midi.ListenTo callbacks.
func (h *Handler) HandleMessage(msg midi.Message, timestampms int32) {
	var channel, key, velocity, controller, value uint8
	var err error
	switch {
	case msg.GetNoteStart(&channel, &key, &velocity):
		if !h.accepts(channel) {
			return
		}
		err = h.Target.KeyOn(h.Scope, key)
	case msg.GetNoteEnd(&channel, &key):
		if !h.accepts(channel) {
			return
		}
		err = h.Target.KeyOff(h.Scope, key)
	case msg.GetControlChange(&channel, &controller, &value):
		if !h.accepts(channel) || (controller != controlAllNotesOff && controller != controlAllSoundOff) {
			return
		}
		err = h.Target.AllKeysOff(h.Scope)
	default:
		return
	}
	if err != nil && h.Logger != nil {
		h.Logger.Printf("midi %v at %d ms: %v", msg, timestampms, err)
	}
}

func (h *Handler) accepts(channel uint8) bool {
	return h.Channel == Omni || int(channel) == h.Channel
}
