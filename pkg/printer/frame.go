package printer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
)

// ErrFrameClosed is returned by a frame used after Close.
var ErrFrameClosed = errors.New("printer: frame closed")

// Frame is the hidden print target a Spooler drives. Load returns once the
// page has loaded, Print returns once the print hand-off has completed.
// Unload drops a loaded page that will not be printed.
// A Frame is created once and reused for every job until Close.
type Frame interface {
	Name() string
	Load(ctx context.Context, page *Page) error
	Focus(ctx context.Context) error
	Print(ctx context.Context) error
	Unload()
	Close() error
	Ready() bool
}

// FrameConfig selects and configures the print frame.
type FrameConfig struct {
	Type     string // spool, usb, network or none
	SpoolDir string
	USBPath  string
	Address  string
}

// NewFrameFromConfig creates the frame for cfg. It returns a nil frame for
// "none", which makes every print fail with ErrPrintUnavailable.
func NewFrameFromConfig(cfg FrameConfig) (Frame, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "spool":
		return NewSpoolFrame(cfg.SpoolDir)
	case "usb", "network":
		p, err := NewThermalPrinter(cfg.Type, cfg.USBPath, cfg.Address)
		if err != nil {
			return nil, err
		}
		return NewThermalFrame(p), nil
	default:
		return nil, fmt.Errorf("printer: unknown printer type %q (use spool, usb, network, or none)", cfg.Type)
	}
}

// --- Spool frame (hands HTML documents to a print daemon through a directory) ---

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9-]+`)

// SpoolFrame writes the loaded page to "<dir>/<name>.html.part" and publishes
// it as "<dir>/<name>.html" on Print, so a watcher never sees partial files.
type SpoolFrame struct {
	dir string
	now func() time.Time

	mu      sync.Mutex
	pending string
	last    string
	closed  bool
}

// NewSpoolFrame creates the spool directory if needed.
func NewSpoolFrame(dir string) (*SpoolFrame, error) {
	if dir == "" {
		return nil, fmt.Errorf("printer: spool directory is required for spool printer type")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("printer: create spool directory %s: %w", dir, err)
	}
	return &SpoolFrame{dir: dir, now: time.Now}, nil
}

func (f *SpoolFrame) Name() string {
	return "spool:" + f.dir
}

func (f *SpoolFrame) Load(ctx context.Context, page *Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFrameClosed
	}
	f.discardPending()

	slug := strings.Trim(unsafeName.ReplaceAllString(page.Title, "-"), "-")
	if slug == "" {
		slug = "document"
	}
	name := fmt.Sprintf("%s-%s.html", f.now().Format("20060102-150405.000000"), slug)
	tmp := filepath.Join(f.dir, name+".part")
	if err := os.WriteFile(tmp, page.HTML, 0o644); err != nil {
		return fmt.Errorf("printer: write spool file: %w", err)
	}
	f.pending = tmp
	return nil
}

func (f *SpoolFrame) Focus(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFrameClosed
	}
	if f.pending == "" {
		return errors.New("printer: nothing loaded")
	}
	return ctx.Err()
}

func (f *SpoolFrame) Print(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFrameClosed
	}
	if f.pending == "" {
		return errors.New("printer: nothing loaded")
	}
	final := strings.TrimSuffix(f.pending, ".part")
	if err := os.Rename(f.pending, final); err != nil {
		return fmt.Errorf("printer: publish spool file: %w", err)
	}
	f.pending = ""
	f.last = final
	return nil
}

// LastPath returns the most recently published document.
func (f *SpoolFrame) LastPath() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func (f *SpoolFrame) Ready() bool {
	f.mu.Lock()
	closed := f.closed
	f.mu.Unlock()
	if closed {
		return false
	}
	info, err := os.Stat(f.dir)
	return err == nil && info.IsDir()
}

func (f *SpoolFrame) Unload() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.discardPending()
}

func (f *SpoolFrame) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.discardPending()
	f.closed = true
	return nil
}

func (f *SpoolFrame) discardPending() {
	if f.pending != "" {
		_ = os.Remove(f.pending)
		f.pending = ""
	}
}

// --- Thermal frame (sends the ESC/POS layout to a raw printer) ---

// ThermalFrame prints the ESC/POS rendering of a page. Pages without one,
// such as A4 reports, fail at load.
type ThermalFrame struct {
	printer Printer

	mu     sync.Mutex
	data   []byte
	closed bool
}

func NewThermalFrame(p Printer) *ThermalFrame {
	return &ThermalFrame{printer: p}
}

func (f *ThermalFrame) Name() string {
	return "thermal"
}

func (f *ThermalFrame) Load(ctx context.Context, page *Page) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFrameClosed
	}
	if len(page.ESCPOS) == 0 {
		return fmt.Errorf("printer: %q has no thermal layout", page.Title)
	}
	f.data = append(f.data[:0], page.ESCPOS...)
	return ctx.Err()
}

func (f *ThermalFrame) Focus(ctx context.Context) error {
	if err := f.printer.Reachable(ctx); err != nil {
		return err
	}
	return ctx.Err()
}

func (f *ThermalFrame) Print(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrFrameClosed
	}
	data := f.data
	f.data = nil
	f.mu.Unlock()

	if len(data) == 0 {
		return errors.New("printer: nothing loaded")
	}
	return f.printer.Send(ctx, data)
}

func (f *ThermalFrame) Unload() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = nil
}

func (f *ThermalFrame) Ready() bool {
	f.mu.Lock()
	closed := f.closed
	f.mu.Unlock()
	return !closed && f.printer.Reachable(context.Background()) == nil
}

func (f *ThermalFrame) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.data = nil
	return f.printer.Close()
}
