package printer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpoolFramePublishesOnPrint(t *testing.T) {
	dir := t.TempDir()
	frame, err := NewSpoolFrame(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, frame.Load(ctx, &Page{Title: "Receipt ORD-000001", HTML: []byte("<p>hi</p>")}))
	parts, _ := filepath.Glob(filepath.Join(dir, "*.part"))
	require.Len(t, parts, 1)
	published, _ := filepath.Glob(filepath.Join(dir, "*.html"))
	assert.Empty(t, published)

	require.NoError(t, frame.Focus(ctx))
	require.NoError(t, frame.Print(ctx))

	last := frame.LastPath()
	assert.True(t, strings.HasSuffix(last, "-Receipt-ORD-000001.html"))
	body, err := os.ReadFile(last)
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", string(body))
	parts, _ = filepath.Glob(filepath.Join(dir, "*.part"))
	assert.Empty(t, parts)
}

func TestSpoolFrameCancelledJobLeavesNoPartFile(t *testing.T) {
	dir := t.TempDir()
	frame, err := NewSpoolFrame(dir)
	require.NoError(t, err)
	s := NewSpooler(frame, SpoolerOptions{SettleDelay: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, s.Print(ctx, &staticPage{Page{Title: "Receipt", HTML: []byte("<p>r</p>")}}), context.DeadlineExceeded)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.True(t, frame.Ready())
}

func TestSpoolFrameClosed(t *testing.T) {
	frame, err := NewSpoolFrame(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, frame.Close())

	err = frame.Load(context.Background(), &Page{Title: "x"})
	assert.ErrorIs(t, err, ErrFrameClosed)
	assert.False(t, frame.Ready())
}

func TestSpoolFrameDiscardsUnprintedPage(t *testing.T) {
	dir := t.TempDir()
	frame, err := NewSpoolFrame(dir)
	require.NoError(t, err)

	require.NoError(t, frame.Load(context.Background(), &Page{Title: "a", HTML: []byte("a")}))
	require.NoError(t, frame.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type memPrinter struct {
	data      []byte
	connected bool
	err       error
}

func (p *memPrinter) Send(_ context.Context, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.data = append([]byte(nil), data...)
	return nil
}

func (p *memPrinter) Close() error { return nil }

func (p *memPrinter) Reachable(context.Context) error {
	if !p.connected {
		return errors.New("printer offline")
	}
	return nil
}

func TestThermalFrameSendsESCPOS(t *testing.T) {
	p := &memPrinter{connected: true}
	s := NewSpooler(NewThermalFrame(p), SpoolerOptions{})

	require.NoError(t, s.Print(context.Background(), sampleReceipt()))
	assert.NotEmpty(t, p.data)
}

func TestThermalFrameRejectsHTMLOnlyPages(t *testing.T) {
	p := &memPrinter{connected: true}
	frame := NewThermalFrame(p)

	err := frame.Load(context.Background(), &Page{Title: "Sales report", HTML: []byte("<html>")})
	assert.Error(t, err)
}

func TestThermalFramePrinterError(t *testing.T) {
	p := &memPrinter{connected: true, err: errors.New("offline")}
	s := NewSpooler(NewThermalFrame(p), SpoolerOptions{})

	err := s.Print(context.Background(), sampleReceipt())
	assert.EqualError(t, err, "offline")
	assert.Equal(t, StateFailed, s.Status().State)
}

func TestNewFrameFromConfig(t *testing.T) {
	frame, err := NewFrameFromConfig(FrameConfig{Type: "none"})
	assert.NoError(t, err)
	assert.Nil(t, frame)

	frame, err = NewFrameFromConfig(FrameConfig{Type: "spool", SpoolDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &SpoolFrame{}, frame)

	frame, err = NewFrameFromConfig(FrameConfig{Type: "network", Address: "127.0.0.1:9100"})
	require.NoError(t, err)
	assert.IsType(t, &ThermalFrame{}, frame)

	_, err = NewFrameFromConfig(FrameConfig{Type: "usb"})
	assert.Error(t, err)

	_, err = NewFrameFromConfig(FrameConfig{Type: "fax"})
	assert.Error(t, err)
}

type staticPage struct{ page Page }

func (d *staticPage) Render() (*Page, error) {
	p := d.page
	return &p, nil
}
