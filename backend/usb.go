package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/google/gousb"
)

const (
	usbWriteTimeout = 15 * time.Second
	usbReadTimeout  = 10 * time.Millisecond
)

// USB talks to a printer directly over libusb. It supports status
// read-back.
type USB struct {
	url  string
	addr usbAddr

	ctx   *gousb.Context
	dev   *gousb.Device
	intf  *gousb.Interface
	done  func()
	epIn  *gousb.InEndpoint
	epOut *gousb.OutEndpoint
}

// NewUSB creates a USB backend for usb://0xVVVV:0xPPPP[/SERIAL].
func NewUSB(deviceURL string) (*USB, error) {
	addr, err := parseUSBURL(deviceURL)
	if err != nil {
		return nil, err
	}
	return &USB{url: deviceURL, addr: addr}, nil
}

func (b *USB) DeviceURL() string { return b.url }

func (b *USB) SupportsRead() bool { return true }

func (b *USB) Open() error {
	if b.dev != nil {
		return nil
	}

	ctx := gousb.NewContext()

	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == gousb.ID(b.addr.vendorID) &&
			desc.Product == gousb.ID(b.addr.productID)
	})
	// OpenDevices can return matches alongside an error for unrelated
	// devices it failed to probe.
	if len(devs) == 0 {
		ctx.Close()
		if err != nil {
			return fmt.Errorf("%w: enumerating USB devices: %v", ErrTransport, err)
		}
		return fmt.Errorf("%w: no USB device matches %s", ErrUnknownDevice, b.url)
	}

	var dev *gousb.Device
	for _, d := range devs {
		if dev != nil {
			d.Close()
			continue
		}
		if b.addr.serial != "" {
			serial, err := d.SerialNumber()
			if err != nil || serial != b.addr.serial {
				d.Close()
				continue
			}
		}
		dev = d
	}
	if dev == nil {
		ctx.Close()
		return fmt.Errorf("%w: no USB device matches %s", ErrUnknownDevice, b.url)
	}

	if err := dev.SetAutoDetach(true); err != nil {
		dev.Close()
		ctx.Close()
		return fmt.Errorf("%w: detaching kernel driver: %v", ErrTransport, err)
	}

	intf, done, err := dev.DefaultInterface()
	if err != nil {
		dev.Close()
		ctx.Close()
		return fmt.Errorf("%w: claiming interface: %v", ErrTransport, err)
	}

	var epIn *gousb.InEndpoint
	var epOut *gousb.OutEndpoint
	for _, ep := range intf.Setting.Endpoints {
		switch ep.Direction {
		case gousb.EndpointDirectionIn:
			if epIn == nil {
				epIn, err = intf.InEndpoint(ep.Number)
			}
		case gousb.EndpointDirectionOut:
			if epOut == nil {
				epOut, err = intf.OutEndpoint(ep.Number)
			}
		}
		if err != nil {
			break
		}
	}
	if err == nil && epOut == nil {
		err = fmt.Errorf("no OUT endpoint")
	}
	if err != nil {
		done()
		dev.Close()
		ctx.Close()
		return fmt.Errorf("%w: resolving endpoints: %v", ErrTransport, err)
	}

	b.ctx, b.dev, b.intf, b.done = ctx, dev, intf, done
	b.epIn, b.epOut = epIn, epOut
	return nil
}

func (b *USB) Close() error {
	if b.dev == nil {
		return nil
	}
	b.done()
	err := b.dev.Close()
	b.ctx.Close()
	b.ctx, b.dev, b.intf, b.done = nil, nil, nil, nil
	b.epIn, b.epOut = nil, nil
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return nil
}

func (b *USB) Write(p []byte) error {
	if b.epOut == nil {
		return fmt.Errorf("%w: USB backend not open", ErrTransport)
	}
	ctx, cancel := context.WithTimeout(context.Background(), usbWriteTimeout)
	defer cancel()
	if _, err := b.epOut.WriteContext(ctx, p); err != nil {
		return fmt.Errorf("%w: USB write: %v", ErrTransport, err)
	}
	return nil
}

func (b *USB) Read(max int) ([]byte, error) {
	if b.epIn == nil {
		return nil, fmt.Errorf("%w: USB backend not open", ErrTransport)
	}
	ctx, cancel := context.WithTimeout(context.Background(), usbReadTimeout)
	defer cancel()

	buf := make([]byte, max)
	n, err := b.epIn.ReadContext(ctx, buf)
	if err != nil {
		// A timeout means no status is pending, which is not an error.
		if ctx.Err() != nil {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: USB read: %v", ErrTransport, err)
	}
	return buf[:n], nil
}
