package cmd

import (
	"fmt"
	"strings"

	"github.com/vsariola/modsynth"
	"github.com/vsariola/modsynth/vm"
)

// Synthers lists the kernels selectable with --synth; the first one is the
// default.
var Synthers = []modsynth.Synther{vm.GoSynther{}}

func SyntherByName(name string) (modsynth.Synther, error) {
	if name == "" {
		return Synthers[0], nil
	}
	names := make([]string, len(Synthers))
	for i, s := range Synthers {
		if strings.EqualFold(s.Name(), name) {
			return s, nil
		}
		names[i] = s.Name()
	}
	return nil, fmt.Errorf("unknown synth %q, available: %s", name, strings.Join(names, ", "))
}
