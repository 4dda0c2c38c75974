//go:build cgo

package gomidi

import (
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// Devices lists the names of the MIDI inputs.
func Devices() ([]string, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDriver, err)
	}
	defer driver.Close()
	ins, err := driver.Ins()
	if err != nil {
		return nil, fmt.Errorf("listing MIDI inputs failed: %w", err)
	}
	ret := make([]string, len(ins))
	for i, in := range ins {
		ret[i] = in.String()
	}
	return ret, nil
}

// Listen opens the first MIDI input whose name starts with namePrefix, any
// input if namePrefix is empty, and delivers its messages to h until stop
// is called.
func Listen(namePrefix string, h *Handler) (stop func(), err error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDriver, err)
	}
	ins, err := driver.Ins()
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("listing MIDI inputs failed: %w", err)
	}
	for _, in := range ins {
		if !strings.HasPrefix(in.String(), namePrefix) {
			continue
		}
		if err := in.Open(); err != nil {
			driver.Close()
			return nil, fmt.Errorf("opening MIDI input %v failed: %w", in, err)
		}
		stopListening, err := midi.ListenTo(in, h.HandleMessage)
		if err != nil {
			in.Close()
			driver.Close()
			return nil, fmt.Errorf("listening to MIDI input %v failed: %w", in, err)
		}
		return func() {
			stopListening()
			in.Close()
			driver.Close()
		}, nil
	}
	driver.Close()
	return nil, fmt.Errorf("could not find any MIDI input starting with %q", namePrefix)
}
