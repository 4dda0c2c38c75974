// Package rpc exposes the ports of a modular synth for remote automation
// over net/rpc on HTTP.
package rpc

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/rpc"
	"strings"

	"github.com/vsariola/modsynth"
)

type (
	// PortSource gives the current port set; *modsynth.ModularSynthAudio
	// implements it. A nil port set means the unit is closed.
	PortSource interface {
		Ports() *modsynth.Ports
	}

	// PortService is the receiver registered as "Ports".
	PortService struct {
		source PortSource
	}

	SetArgs struct {
		Port  string // name or specifier
		Value float64
	}

	PortInfo struct {
		Name      string
		Specifier string
		Value     float64
		Default   float64
		Lower     float64
		Upper     float64
		Unit      string
	}

	Server struct {
		listener net.Listener
		done     chan struct{}
		err      error
	}

	Client struct {
		client *rpc.Client
	}
)

// DefaultAddress is the listen address of modsynth serve.
const DefaultAddress = ":31337"

var ErrUnknownPort = modsynth.ErrUnknownPort

func (s *PortService) ports() (*modsynth.Ports, error) {
	ports := s.source.Ports()
	if ports == nil {
		return nil, modsynth.ErrUnitClosed
	}
	return ports, nil
}

func (s *PortService) Get(port string, value *float64) error {
	ports, err := s.ports()
	if err != nil {
		return err
	}
	p := ports.Port(port)
	if p == nil {
		return fmt.Errorf("%w %q", ErrUnknownPort, port)
	}
	*value = p.Value()
	return nil
}

// Set clamps the value to the port bounds and replies with the value stored.
func (s *PortService) Set(args SetArgs, value *float64) error {
	ports, err := s.ports()
	if err != nil {
		return err
	}
	p := ports.Port(args.Port)
	if p == nil {
		return fmt.Errorf("%w %q", ErrUnknownPort, args.Port)
	}
	*value = p.SetClamped(args.Value)
	return nil
}

// List replies with the ports whose names start with prefix, all of them for
// an empty prefix.
func (s *PortService) List(prefix string, infos *[]PortInfo) error {
	ports, err := s.ports()
	if err != nil {
		return err
	}
	ret := make([]PortInfo, 0, ports.Len())
	for _, p := range ports.All() {
		if !strings.HasPrefix(p.Name, prefix) {
			continue
		}
		ret = append(ret, PortInfo{
			Name:      p.Name,
			Specifier: p.Specifier,
			Value:     p.Value(),
			Default:   p.Default,
			Lower:     p.Lower,
			Upper:     p.Upper,
			Unit:      p.Unit,
		})
	}
	*infos = ret
	return nil
}

// Serve listens on address and serves the ports of source until Close.
func Serve(address string, source PortSource) (*Server, error) {
	server := rpc.NewServer()
	if err := server.RegisterName("Ports", &PortService{source: source}); err != nil {
		return nil, fmt.Errorf("rpc register failed: %w", err)
	}
	l, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("net.Listen failed: %w", err)
	}
	s := &Server{listener: l, done: make(chan struct{})}
	go func() {
		defer close(s.done)
		if err := http.Serve(l, server); err != nil && !errors.Is(err, net.ErrClosed) {
			log.Printf("rpc server on %v stopped: %v", l.Addr(), err)
			s.err = err
		}
	}()
	return s, nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Close stops listening and waits for the serving goroutine to exit.
func (s *Server) Close() error {
	if err := s.listener.Close(); err != nil {
		return fmt.Errorf("closing rpc listener failed: %w", err)
	}
	<-s.done
	return s.err
}

func Dial(address string) (*Client, error) {
	client, err := rpc.DialHTTP("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("rpc.DialHTTP failed: %w", err)
	}
	return &Client{client: client}, nil
}

func (c *Client) Get(port string) (float64, error) {
	var value float64
	if err := c.client.Call("Ports.Get", port, &value); err != nil {
		return 0, fmt.Errorf("Ports.Get %q failed: %w", port, err)
	}
	return value, nil
}

// Set returns the value actually stored, after clamping.
func (c *Client) Set(port string, value float64) (float64, error) {
	var stored float64
	if err := c.client.Call("Ports.Set", SetArgs{Port: port, Value: value}, &stored); err != nil {
		return 0, fmt.Errorf("Ports.Set %q failed: %w", port, err)
	}
	return stored, nil
}

func (c *Client) List(prefix string) ([]PortInfo, error) {
	var infos []PortInfo
	if err := c.client.Call("Ports.List", prefix, &infos); err != nil {
		return nil, fmt.Errorf("Ports.List failed: %w", err)
	}
	return infos, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
