package printer

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"
)

const (
	dialTimeout  = 5 * time.Second
	writeTimeout = 10 * time.Second
	reachTimeout = 2 * time.Second
)

// Printer is a raw transport to a thermal printer. Each Send opens its own
// connection, so a printer that was switched off recovers without a restart.
type Printer interface {
	Send(ctx context.Context, data []byte) error
	// Reachable reports why the printer cannot be used right now, or nil.
	Reachable(ctx context.Context) error
	Close() error
}

// DevicePrinter writes to a character device such as /dev/usb/lp0.
type DevicePrinter struct {
	Path string
}

func (p DevicePrinter) Send(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.OpenFile(p.Path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("printer: open %s: %w", p.Path, err)
	}
	_, werr := f.Write(data)
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("printer: write %s: %w", p.Path, werr)
	}
	return cerr
}

func (p DevicePrinter) Reachable(context.Context) error {
	if _, err := os.Stat(p.Path); err != nil {
		return fmt.Errorf("printer: device %s: %w", p.Path, err)
	}
	return nil
}

func (DevicePrinter) Close() error { return nil }

// NetworkPrinter speaks raw TCP, usually to port 9100.
type NetworkPrinter struct {
	Address string
}

func (p NetworkPrinter) Send(ctx context.Context, data []byte) error {
	conn, err := p.dial(ctx, dialTimeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetWriteDeadline(deadline)

	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.Address, err)
	}
	return nil
}

func (p NetworkPrinter) Reachable(ctx context.Context) error {
	conn, err := p.dial(ctx, reachTimeout)
	if err != nil {
		return err
	}
	return conn.Close()
}

func (NetworkPrinter) Close() error { return nil }

func (p NetworkPrinter) dial(ctx context.Context, timeout time.Duration) (net.Conn, error) {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", p.Address)
	if err != nil {
		return nil, fmt.Errorf("printer: connect %s: %w", p.Address, err)
	}
	return conn, nil
}

// NewThermalPrinter returns the transport for a "usb" or "network" frame.
func NewThermalPrinter(kind, usbPath, address string) (Printer, error) {
	switch kind {
	case "usb":
		if usbPath == "" {
			return nil, fmt.Errorf("printer: PRINTER_USB_PATH is required for usb printers")
		}
		return DevicePrinter{Path: usbPath}, nil
	case "network":
		if address == "" {
			return nil, fmt.Errorf("printer: PRINTER_ADDRESS is required for network printers")
		}
		return NetworkPrinter{Address: address}, nil
	}
	return nil, fmt.Errorf("printer: %q is not a thermal printer type", kind)
}
