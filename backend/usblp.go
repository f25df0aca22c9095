package backend

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	usblpReadTimeout  = 10 * time.Millisecond
	usblpPollInterval = time.Millisecond
)

// USBLP talks to a printer through the Linux usblp class driver,
// /dev/usb/lpN. It supports status read-back.
type USBLP struct {
	url  string
	path string
	fd   int
}

// NewUSBLP creates a usblp backend for lp://lpN, lp:///dev/usb/lpN, a
// bare lpN, or a /dev/usb/lpN path.
func NewUSBLP(deviceURL string) (*USBLP, error) {
	spec := strings.TrimPrefix(deviceURL, "lp://")
	switch {
	case strings.HasPrefix(spec, "/dev/"):
	case strings.HasPrefix(spec, "lp"):
		spec = path.Join("/dev/usb", spec)
	default:
		return nil, fmt.Errorf("%w: %q, want lp://lpN or /dev/usb/lpN",
			ErrUnknownDevice, deviceURL)
	}

	return &USBLP{url: deviceURL, path: spec, fd: -1}, nil
}

func (b *USBLP) DeviceURL() string { return b.url }

func (b *USBLP) SupportsRead() bool { return true }

func (b *USBLP) Open() error {
	if b.fd >= 0 {
		return nil
	}
	fd, err := unix.Open(b.path, unix.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", ErrTransport, b.path, err)
	}
	b.fd = fd
	return nil
}

func (b *USBLP) Close() error {
	if b.fd < 0 {
		return nil
	}
	err := unix.Close(b.fd)
	b.fd = -1
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return nil
}

func (b *USBLP) Write(p []byte) error {
	if b.fd < 0 {
		return fmt.Errorf("%w: usblp backend not open", ErrTransport)
	}
	for wrote := 0; wrote != len(p); {
		n, err := unix.Write(b.fd, p[wrote:])
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case err != nil:
			return fmt.Errorf("%w: write: %v", ErrTransport, err)
		}
		wrote += n
	}
	return nil
}

// Read polls for status data for up to the read timeout and returns
// whatever arrived, possibly nothing.
func (b *USBLP) Read(max int) ([]byte, error) {
	if b.fd < 0 {
		return nil, fmt.Errorf("%w: usblp backend not open", ErrTransport)
	}

	deadline := time.Now().Add(usblpReadTimeout)
	buf := make([]byte, max)
	for {
		pollFds := []unix.PollFd{{Fd: int32(b.fd), Events: unix.POLLIN}}
		n, err := unix.Poll(pollFds, int(usblpPollInterval.Milliseconds()))
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case err != nil:
			return nil, fmt.Errorf("%w: poll: %v", ErrTransport, err)
		case pollFds[0].Revents&(unix.POLLERR|unix.POLLHUP) != 0:
			return nil, fmt.Errorf("%w: printer disconnected", ErrTransport)
		}

		if n > 0 && pollFds[0].Revents&unix.POLLIN != 0 {
			n, err := unix.Read(b.fd, buf)
			switch {
			case errors.Is(err, unix.EINTR):
				continue
			case err != nil:
				return nil, fmt.Errorf("%w: read: %v", ErrTransport, err)
			}
			return buf[:n], nil
		}

		if time.Now().After(deadline) {
			return nil, nil
		}
	}
}

// VendorProductID queries the device's USB IDs through the usblp
// GET_VID_PID ioctl, for discovery.
func (b *USBLP) VendorProductID() (uint16, uint16, error) {
	if b.fd < 0 {
		return 0, 0, fmt.Errorf("%w: usblp backend not open", ErrTransport)
	}

	const (
		iocNRShift   = 0
		iocTypeShift = 8
		iocSizeShift = 16
		iocDirShift  = 30

		iocRead        = 2
		iocnrGetVIDPID = 6
	)

	// The ioctl fills two ints of which only the low 16 bits are
	// meaningful.
	var id struct {
		vendorID  uint16
		_         uint16
		productID uint16
		_         uint16
	}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(b.fd), uintptr(
		iocnrGetVIDPID<<iocNRShift|
			'P'<<iocTypeShift|
			unsafe.Sizeof(id)<<iocSizeShift|
			iocRead<<iocDirShift,
	), uintptr(unsafe.Pointer(&id)))
	if errno != 0 {
		return 0, 0, fmt.Errorf("%w: GET_VID_PID: %v", ErrTransport, errno)
	}

	return id.vendorID, id.productID, nil
}
