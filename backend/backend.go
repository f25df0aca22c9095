// Package backend delivers raster command streams to printers over USB,
// TCP, the Linux usblp character device, or plain files.
package backend

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.afab.re/brotherlabel/device"
)

var (
	// ErrTransport wraps I/O failures of the underlying device.
	ErrTransport = errors.New("transport error")

	// ErrUnsupportedModel is returned when USB enumeration finds the
	// right vendor but an unrecognized product.
	ErrUnsupportedModel = errors.New("unsupported printer model")

	// ErrUnknownDevice is returned when a device URL does not resolve to
	// a backend or an attached device. It is a kind of ErrUnknownID.
	ErrUnknownDevice = fmt.Errorf("%w: device", device.ErrUnknownID)

	// ErrReadNotSupported is returned by Read on write-only backends.
	ErrReadNotSupported = errors.New("backend does not support reading")
)

// Backend is a transport to one printer. Open and Close are idempotent.
type Backend interface {
	// DeviceURL returns the URL the backend was created from.
	DeviceURL() string

	Open() error
	Close() error

	// Write sends raw command bytes to the device.
	Write(p []byte) error

	// Read returns up to max bytes of status data, or an empty slice
	// when nothing is pending. Write-only backends return
	// ErrReadNotSupported.
	Read(max int) ([]byte, error)

	// SupportsRead reports whether Read returns device data.
	SupportsRead() bool
}

// Names of all known backends.
var Names = []string{"usb", "network", "linux", "file"}

// GuessName picks the backend for a device URL: the scheme prefix when
// present, otherwise filesystem heuristics choosing the file backend.
func GuessName(deviceURL string) (string, error) {
	switch {
	case strings.HasPrefix(deviceURL, "usb://"), strings.HasPrefix(deviceURL, "0x"):
		return "usb", nil
	case strings.HasPrefix(deviceURL, "lp://"),
		strings.HasPrefix(deviceURL, "/dev/usb/"),
		strings.HasPrefix(deviceURL, "lp"):
		return "linux", nil
	case strings.HasPrefix(deviceURL, "tcp://"):
		return "network", nil
	case strings.HasPrefix(deviceURL, "file://"):
		return "file", nil
	}

	if deviceURL != "" {
		if _, err := os.Stat(deviceURL); err == nil {
			return "file", nil
		}
		dir := filepath.Dir(deviceURL)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return "file", nil
		}
	}

	return "", fmt.Errorf("%w: cannot guess backend for %q", ErrUnknownDevice, deviceURL)
}

// New constructs the named backend for a device URL. An empty name
// guesses from the URL.
func New(name, deviceURL string) (Backend, error) {
	if name == "" || name == "auto" {
		var err error
		if name, err = GuessName(deviceURL); err != nil {
			return nil, err
		}
	}

	switch name {
	case "usb":
		return NewUSB(deviceURL)
	case "network":
		return NewNetwork(deviceURL)
	case "linux":
		return NewUSBLP(deviceURL)
	case "file":
		return NewFile(deviceURL), nil
	}
	return nil, fmt.Errorf("%w: backend %q", ErrUnknownDevice, name)
}

// usbAddr is a parsed usb:// device URL.
type usbAddr struct {
	vendorID  uint16
	productID uint16
	serial    string
}

// parseUSBURL parses usb://0xVVVV:0xPPPP[/SERIAL] (the scheme and 0x
// prefixes being optional).
func parseUSBURL(deviceURL string) (usbAddr, error) {
	spec := strings.TrimPrefix(deviceURL, "usb://")
	spec, serial, _ := strings.Cut(spec, "/")
	vendor, product, ok := strings.Cut(spec, ":")
	if !ok {
		return usbAddr{}, fmt.Errorf("%w: USB URL %q, want usb://0xVVVV:0xPPPP[/SERIAL]",
			ErrUnknownDevice, deviceURL)
	}

	parseID := func(s string) (uint16, error) {
		v, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 16)
		if err != nil {
			return 0, fmt.Errorf("%w: bad USB ID %q in %q", ErrUnknownDevice, s, deviceURL)
		}
		return uint16(v), nil
	}

	vid, err := parseID(vendor)
	if err != nil {
		return usbAddr{}, err
	}
	pid, err := parseID(product)
	if err != nil {
		return usbAddr{}, err
	}
	return usbAddr{vendorID: vid, productID: pid, serial: serial}, nil
}
