//go:build !cgo

package gomidi

// with no cgo, there is no rtmidi driver

func Devices() ([]string, error) {
	return nil, ErrNoDriver
}

func Listen(namePrefix string, h *Handler) (stop func(), err error) {
	return nil, ErrNoDriver
}
