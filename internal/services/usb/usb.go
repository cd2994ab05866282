// Package usb opens the microphone's LED control interface through libusb.
package usb

import (
	"errors"
	"fmt"

	"github.com/google/gousb"

	"github.com/KarimImran/quadcast2-go/internal/services/controller"
	"github.com/KarimImran/quadcast2-go/pkg/quadcast"
)

// ErrDeviceNotFound means no QuadCast 2 is attached.
var ErrDeviceNotFound = errors.New("quadcast 2 not found")

// Handle owns the libusb context and device behind the LED control interface.
// Claim and Release bracket each transfer pair; auto-detach moves any kernel
// HID driver out of the way when the interface is claimed.
type Handle struct {
	ctx  *gousb.Context
	dev  *gousb.Device
	cfg  *gousb.Config
	intf *gousb.Interface
}

var _ controller.Device = (*Handle)(nil)

// Open locates the device by vendor/product ID and prepares it for claiming.
func Open() (*Handle, error) {
	ctx := gousb.NewContext()

	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(quadcast.VendorID), gousb.ID(quadcast.ProductID))
	if err != nil {
		_ = ctx.Close()
		return nil, fmt.Errorf("open device: %w", err)
	}
	if dev == nil {
		_ = ctx.Close()
		return nil, ErrDeviceNotFound
	}

	// Best effort: the interface may already be free of a kernel driver
	_ = dev.SetAutoDetach(true)

	return &Handle{ctx: ctx, dev: dev}, nil
}

// Claim acquires the control interface.
func (h *Handle) Claim() error {
	cfg, err := h.dev.Config(1)
	if err != nil {
		return fmt.Errorf("claim configuration: %w", err)
	}

	intf, err := cfg.Interface(quadcast.InterfaceNumber, 0)
	if err != nil {
		_ = cfg.Close()
		return fmt.Errorf("claim interface: %w", err)
	}

	h.cfg = cfg
	h.intf = intf
	return nil
}

// Release relinquishes the control interface. Safe to call with nothing
// claimed, so fault paths can release unconditionally.
func (h *Handle) Release() error {
	if h.intf != nil {
		h.intf.Close()
		h.intf = nil
	}
	if h.cfg != nil {
		err := h.cfg.Close()
		h.cfg = nil
		if err != nil {
			return fmt.Errorf("release configuration: %w", err)
		}
	}
	return nil
}

// SendReport issues the SET_REPORT control transfer carrying one LED report.
func (h *Handle) SendReport(report []byte) error {
	_, err := h.dev.Control(
		quadcast.RequestTypeOut,
		quadcast.RequestSetReport,
		quadcast.ReportValue,
		uint16(quadcast.InterfaceNumber),
		report,
	)
	if err != nil {
		return fmt.Errorf("control transfer: %w", err)
	}
	return nil
}

// Close releases anything still claimed and tears down the device and
// libusb context.
func (h *Handle) Close() error {
	_ = h.Release()

	var firstErr error
	if h.dev != nil {
		if err := h.dev.Close(); err != nil {
			firstErr = err
		}
		h.dev = nil
	}
	if h.ctx != nil {
		if err := h.ctx.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		h.ctx = nil
	}
	return firstErr
}
