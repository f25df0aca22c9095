package backend

import (
	"fmt"
	"os"
	"strings"
)

// File writes raw command bytes to a file, for debugging or deferred
// printing.
type File struct {
	url  string
	path string
	f    *os.File
}

// NewFile creates a file backend for file://PATH or a plain path.
func NewFile(deviceURL string) *File {
	return &File{
		url:  deviceURL,
		path: strings.TrimPrefix(deviceURL, "file://"),
	}
}

func (b *File) DeviceURL() string { return b.url }

func (b *File) SupportsRead() bool { return false }

func (b *File) Open() error {
	if b.f != nil {
		return nil
	}
	f, err := os.Create(b.path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	b.f = f
	return nil
}

func (b *File) Close() error {
	if b.f == nil {
		return nil
	}
	err := b.f.Close()
	b.f = nil
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return nil
}

func (b *File) Write(p []byte) error {
	if b.f == nil {
		return fmt.Errorf("%w: file backend not open", ErrTransport)
	}
	if _, err := b.f.Write(p); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return nil
}

func (b *File) Read(max int) ([]byte, error) {
	return nil, ErrReadNotSupported
}
