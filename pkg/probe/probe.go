package probe

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/gousb"
)

// Kind names a debug probe family. Values match the upload protocol names
// used in board manifests.
type Kind string

const (
	KindBlackMagic Kind = "blackmagic"
	KindJLink      Kind = "jlink"
	KindSTLink     Kind = "stlink"
	KindCMSISDAP   Kind = "cmsis-dap"
)

// Info describes a probe found on the USB bus.
type Info struct {
	Kind        Kind
	Description string
	VendorID    gousb.ID
	ProductID   gousb.ID
	Path        string
}

// Label returns a user-friendly description for the probe.
func (i Info) Label() string {
	if i.Description != "" {
		return i.Description
	}
	return fmt.Sprintf("%s (%s:%s)", string(i.Kind), i.VendorID, i.ProductID)
}

// Known is a VID/PID pair identifying a probe family.
type Known struct {
	Kind        Kind
	Vendor      gousb.ID
	Product     gousb.ID
	Description string
}

// KnownProbes lists the adapters this platform can drive.
var KnownProbes = []Known{
	{Kind: KindBlackMagic, Vendor: 0x1d50, Product: 0x6018, Description: "Black Magic Probe"},
	{Kind: KindJLink, Vendor: 0x1366, Product: 0x0101, Description: "SEGGER J-Link"},
	{Kind: KindJLink, Vendor: 0x1366, Product: 0x0105, Description: "SEGGER J-Link (CDC)"},
	{Kind: KindJLink, Vendor: 0x1366, Product: 0x1015, Description: "SEGGER J-Link OB"},
	{Kind: KindJLink, Vendor: 0x1366, Product: 0x1051, Description: "SEGGER J-Link OB (nRF)"},
	{Kind: KindSTLink, Vendor: 0x0483, Product: 0x3748, Description: "ST-LINK/V2"},
	{Kind: KindSTLink, Vendor: 0x0483, Product: 0x374b, Description: "ST-LINK/V2-1"},
	{Kind: KindSTLink, Vendor: 0x0483, Product: 0x374f, Description: "STLINK-V3"},
	{Kind: KindCMSISDAP, Vendor: 0x0d28, Product: 0x0204, Description: "DAPLink CMSIS-DAP"},
	{Kind: KindCMSISDAP, Vendor: 0x2e8a, Product: 0x000c, Description: "Raspberry Pi Debug Probe"},
}

// HWIDs returns the VID/PID pairs registered for a probe family, in the
// "0x1d50" notation used by board manifests.
func HWIDs(kind Kind) [][]string {
	var out [][]string
	for _, known := range KnownProbes {
		if known.Kind == kind {
			out = append(out, []string{hexID(known.Vendor), hexID(known.Product)})
		}
	}
	return out
}

func hexID(id gousb.ID) string {
	return "0x" + id.String()
}

// Classify matches a USB device descriptor against KnownProbes.
func Classify(desc *gousb.DeviceDesc) (Info, bool) {
	for _, known := range KnownProbes {
		if desc.Vendor == known.Vendor && desc.Product == known.Product {
			return Info{
				Kind:        known.Kind,
				Description: known.Description,
				VendorID:    known.Vendor,
				ProductID:   known.Product,
				Path:        fmt.Sprintf("%d/%d", desc.Bus, desc.Address),
			}, true
		}
	}
	return Info{}, false
}

// Discover enumerates connected USB devices and returns the recognised
// probes. Devices are never opened.
func Discover(ctx context.Context) ([]Info, error) {
	var results []Info
	usb := gousb.NewContext()
	defer usb.Close()

	_, err := usb.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}

		if info, ok := Classify(desc); ok {
			results = append(results, info)
		}
		return false
	})
	if err != nil && !errors.Is(err, gousb.ErrorAccess) {
		return results, fmt.Errorf("probe: enumerate usb: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// Filter keeps the probes whose kind is in kinds.
func Filter(infos []Info, kinds ...Kind) []Info {
	var out []Info
	for _, info := range infos {
		for _, kind := range kinds {
			if info.Kind == kind {
				out = append(out, info)
				break
			}
		}
	}
	return out
}
