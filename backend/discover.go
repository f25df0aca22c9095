package backend

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/gousb"

	"go.afab.re/brotherlabel/device"
)

const usbPrinterClass = 0x07

// DeviceInfo describes one discovered printer. Individual probes fill in
// what they can see; records from multiple probes are merged per field.
type DeviceInfo struct {
	// Backend is the backend name that can open this device.
	Backend string

	Manufacturer string
	Model        string
	Serial       string

	// USBVendorID and USBProductID are four-digit lowercase hex.
	USBVendorID  string
	USBProductID string

	USBBusNum int
	USBDevNum int

	// DeviceURL can be passed to New to open the device.
	DeviceURL string

	// Supported reports whether the product ID maps to a catalog model.
	Supported bool
}

func (d *DeviceInfo) fillURL() {
	if d.USBVendorID == "" || d.USBProductID == "" {
		return
	}
	d.DeviceURL = fmt.Sprintf("usb://0x%s:0x%s", d.USBVendorID, d.USBProductID)
	if d.Serial != "" {
		d.DeviceURL += "/" + d.Serial
	}
}

func (d *DeviceInfo) fillSupported() {
	vid, err1 := strconv.ParseUint(d.USBVendorID, 16, 16)
	pid, err2 := strconv.ParseUint(d.USBProductID, 16, 16)
	if err1 != nil || err2 != nil {
		return
	}
	if m, ok := device.ModelByProductID(uint16(vid), uint16(pid)); ok {
		d.Supported = true
		if d.Model == "" {
			d.Model = m.Name
		}
	}
}

// merge overlays src onto dst, keeping dst's value wherever it already
// has one: the first probe to report a field wins.
func merge(dst, src *DeviceInfo) {
	if dst.Backend == "" {
		dst.Backend = src.Backend
	}
	if dst.Manufacturer == "" {
		dst.Manufacturer = src.Manufacturer
	}
	if dst.Model == "" {
		dst.Model = src.Model
	}
	if dst.Serial == "" {
		dst.Serial = src.Serial
	}
	if dst.USBVendorID == "" {
		dst.USBVendorID = src.USBVendorID
	}
	if dst.USBProductID == "" {
		dst.USBProductID = src.USBProductID
	}
	if dst.USBBusNum == 0 {
		dst.USBBusNum = src.USBBusNum
	}
	if dst.USBDevNum == 0 {
		dst.USBDevNum = src.USBDevNum
	}
	if dst.DeviceURL == "" {
		dst.DeviceURL = src.DeviceURL
	}
	dst.Supported = dst.Supported || src.Supported
}

// Discover lists attached USB label printers, combining the Linux sysfs
// (readable without privileges) with libusb enumeration. Records
// describing the same bus/device pair are merged.
func Discover(log *slog.Logger) []DeviceInfo {
	if log == nil {
		log = slog.Default()
	}

	infos := discoverSysfs(log)
	infos = append(infos, discoverLibusb(log)...)

	merged := map[string]*DeviceInfo{}
	var order []string
	for i := range infos {
		key := fmt.Sprintf("%d:%d", infos[i].USBBusNum, infos[i].USBDevNum)
		if existing, ok := merged[key]; ok {
			merge(existing, &infos[i])
			continue
		}
		info := infos[i]
		merged[key] = &info
		order = append(order, key)
	}

	sort.Strings(order)
	out := make([]DeviceInfo, 0, len(merged))
	for _, key := range order {
		info := merged[key]
		info.fillSupported()
		info.fillURL()
		out = append(out, *info)
	}
	return out
}

// discoverSysfs walks /sys/bus/usb/devices looking for printers with the
// Brother vendor ID.
func discoverSysfs(log *slog.Logger) []DeviceInfo {
	const root = "/sys/bus/usb/devices"
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	readTrim := func(path string) string {
		b, err := os.ReadFile(path)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(b))
	}
	readHex := func(path string) (uint16, bool) {
		v, err := strconv.ParseUint(readTrim(path), 16, 16)
		return uint16(v), err == nil
	}
	readInt := func(path string) int {
		v, _ := strconv.Atoi(readTrim(path))
		return v
	}

	var out []DeviceInfo
	for _, e := range entries {
		dir := filepath.Join(root, e.Name())
		vid, ok := readHex(filepath.Join(dir, "idVendor"))
		if !ok || vid != 0x04F9 {
			continue
		}
		pid, ok := readHex(filepath.Join(dir, "idProduct"))
		if !ok {
			continue
		}
		if !sysfsIsPrinter(dir) {
			log.Debug("skipping non-printer USB device", "path", dir)
			continue
		}

		info := DeviceInfo{
			Backend:      "usb",
			USBVendorID:  fmt.Sprintf("%04x", vid),
			USBProductID: fmt.Sprintf("%04x", pid),
			USBBusNum:    readInt(filepath.Join(dir, "busnum")),
			USBDevNum:    readInt(filepath.Join(dir, "devnum")),
			Manufacturer: readTrim(filepath.Join(dir, "manufacturer")),
			Model:        readTrim(filepath.Join(dir, "product")),
			Serial:       readTrim(filepath.Join(dir, "serial")),
		}
		out = append(out, info)
	}
	return out
}

// sysfsIsPrinter checks the device or any of its interfaces for the USB
// printer class.
func sysfsIsPrinter(dir string) bool {
	isPrinterClass := func(path string) bool {
		b, err := os.ReadFile(path)
		if err != nil {
			return false
		}
		v, err := strconv.ParseUint(strings.TrimSpace(string(b)), 16, 8)
		return err == nil && v == usbPrinterClass
	}

	if isPrinterClass(filepath.Join(dir, "bDeviceClass")) {
		return true
	}
	found := false
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || found || d.IsDir() {
			return nil
		}
		if d.Name() == "bInterfaceClass" && isPrinterClass(path) {
			found = true
		}
		return nil
	})
	return found
}

// discoverLibusb enumerates Brother printers through libusb.
func discoverLibusb(log *slog.Logger) []DeviceInfo {
	ctx := gousb.NewContext()
	defer ctx.Close()

	var out []DeviceInfo
	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if desc.Vendor != gousb.ID(0x04F9) {
			return false
		}
		for _, cfg := range desc.Configs {
			for _, intf := range cfg.Interfaces {
				for _, s := range intf.AltSettings {
					if s.Class == gousb.ClassPrinter {
						return true
					}
				}
			}
		}
		return false
	})
	if err != nil {
		log.Debug("libusb enumeration incomplete", "err", err)
	}

	for _, dev := range devs {
		info := DeviceInfo{
			Backend:      "usb",
			USBVendorID:  fmt.Sprintf("%04x", uint16(dev.Desc.Vendor)),
			USBProductID: fmt.Sprintf("%04x", uint16(dev.Desc.Product)),
			USBBusNum:    dev.Desc.Bus,
			USBDevNum:    dev.Desc.Address,
		}
		if s, err := dev.SerialNumber(); err == nil {
			info.Serial = strings.TrimSpace(s)
		}
		if s, err := dev.Manufacturer(); err == nil {
			info.Manufacturer = strings.TrimSpace(s)
		}
		if s, err := dev.Product(); err == nil {
			info.Model = strings.TrimSpace(s)
		}
		dev.Close()
		out = append(out, info)
	}
	return out
}

// MatchUSB picks the discovered device matching a usb:// URL. A URL with
// a serial must match it exactly; a vendor match with a product ID that
// is not in the catalog reports ErrUnsupportedModel.
func MatchUSB(infos []DeviceInfo, deviceURL string) (*DeviceInfo, error) {
	addr, err := parseUSBURL(deviceURL)
	if err != nil {
		return nil, err
	}

	vendorMatched := false
	for i := range infos {
		info := &infos[i]
		if info.USBVendorID != fmt.Sprintf("%04x", addr.vendorID) {
			continue
		}
		vendorMatched = true
		if info.USBProductID != fmt.Sprintf("%04x", addr.productID) {
			continue
		}
		if addr.serial != "" && info.Serial != addr.serial {
			continue
		}
		return info, nil
	}

	if vendorMatched {
		if _, ok := device.ModelByProductID(addr.vendorID, addr.productID); !ok {
			return nil, fmt.Errorf("%w: product 0x%04x", ErrUnsupportedModel, addr.productID)
		}
	}
	return nil, fmt.Errorf("%w: no attached device matches %s", ErrUnknownDevice, deviceURL)
}
