package backend

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

const (
	networkDefaultPort  = "9100"
	networkWriteTimeout = 10 * time.Second
)

// Network prints to a raw JetDirect-style TCP port. The printers accept
// jobs this way but never answer on the return channel, so the backend
// reports itself write-only.
type Network struct {
	url  string
	addr string
	conn net.Conn
}

// NewNetwork creates a network backend for tcp://HOST[:PORT]; the port
// defaults to 9100.
func NewNetwork(deviceURL string) (*Network, error) {
	spec := deviceURL
	if !strings.Contains(spec, "//") {
		spec = "tcp://" + spec
	}

	u, err := url.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnknownDevice, deviceURL, err)
	}
	if u.Scheme != "tcp" {
		return nil, fmt.Errorf("%w: scheme %q, the network backend only supports tcp://",
			ErrUnknownDevice, u.Scheme)
	}
	if u.Path != "" && u.Path != "/" {
		return nil, fmt.Errorf("%w: %q, want tcp://HOST[:PORT]", ErrUnknownDevice, deviceURL)
	}

	port := u.Port()
	if port == "" {
		port = networkDefaultPort
	}

	return &Network{
		url:  deviceURL,
		addr: net.JoinHostPort(u.Hostname(), port),
	}, nil
}

func (b *Network) DeviceURL() string { return b.url }

func (b *Network) SupportsRead() bool { return false }

func (b *Network) Open() error {
	if b.conn != nil {
		return nil
	}
	conn, err := net.DialTimeout("tcp", b.addr, networkWriteTimeout)
	if err != nil {
		return fmt.Errorf("%w: connecting to %s: %v", ErrTransport, b.addr, err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}
	b.conn = conn
	return nil
}

func (b *Network) Close() error {
	if b.conn == nil {
		return nil
	}
	err := b.conn.Close()
	b.conn = nil
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return nil
}

func (b *Network) Write(p []byte) error {
	if b.conn == nil {
		return fmt.Errorf("%w: network backend not open", ErrTransport)
	}
	if err := b.conn.SetWriteDeadline(time.Now().Add(networkWriteTimeout)); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if _, err := b.conn.Write(p); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return nil
}

func (b *Network) Read(max int) ([]byte, error) {
	return nil, ErrReadNotSupported
}
