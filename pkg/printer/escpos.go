package printer

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ESC/POS command constants
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Text alignment
const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

// Font size
const (
	FontNormal = 0x00
	FontDouble = 0x11 // Double width + double height
	FontWide   = 0x10 // Double width only
	FontTall   = 0x01 // Double height only
)

// Ticket builds an ESC/POS byte stream for thermal printers.
// Column maths counts runes, not bytes, so non-ASCII item names line up.
type Ticket struct {
	buf   bytes.Buffer
	width int // print width in characters (32 for 58mm, 48 for 80mm)
}

// NewTicket creates a new ESC/POS ticket with the given character width.
func NewTicket(charWidth int) *Ticket {
	if charWidth <= 0 {
		charWidth = 32
	}
	t := &Ticket{width: charWidth}
	t.Init()
	return t
}

// Width returns the character width of a printed line.
func (t *Ticket) Width() int {
	return t.width
}

// Init sends the ESC @ (initialize printer) command.
func (t *Ticket) Init() *Ticket {
	t.buf.Write([]byte{ESC, '@'})
	return t
}

// LineFeed sends a line feed.
func (t *Ticket) LineFeed() *Ticket {
	t.buf.WriteByte(LF)
	return t
}

// FeedLines sends n line feeds.
func (t *Ticket) FeedLines(n int) *Ticket {
	for i := 0; i < n; i++ {
		t.buf.WriteByte(LF)
	}
	return t
}

func (t *Ticket) SetAlign(align int) *Ticket {
	t.buf.Write([]byte{ESC, 'a', byte(align)})
	return t
}

func (t *Ticket) SetBold(on bool) *Ticket {
	b := byte(0)
	if on {
		b = 1
	}
	t.buf.Write([]byte{ESC, 'E', b})
	return t
}

// SetFontSize sets the character size. Use FontNormal, FontDouble, FontWide, or FontTall.
func (t *Ticket) SetFontSize(size byte) *Ticket {
	t.buf.Write([]byte{GS, '!', size})
	return t
}

// Text writes a line of text followed by a line feed.
func (t *Ticket) Text(s string) *Ticket {
	t.buf.WriteString(s)
	t.buf.WriteByte(LF)
	return t
}

// TextF writes a formatted line of text followed by a line feed.
func (t *Ticket) TextF(format string, args ...interface{}) *Ticket {
	return t.Text(fmt.Sprintf(format, args...))
}

// Separator prints a full-width separator line.
func (t *Ticket) Separator(char byte) *Ticket {
	t.buf.WriteString(strings.Repeat(string(char), t.width))
	t.buf.WriteByte(LF)
	return t
}

// KeyValue prints a left-aligned key and right-aligned value on the same line.
func (t *Ticket) KeyValue(key, value string) *Ticket {
	t.buf.WriteString(t.spread(key, value))
	t.buf.WriteByte(LF)
	return t
}

// ItemLine prints "2x Name ... 40.00". Names too long for the line are cut.
func (t *Ticket) ItemLine(qty int, name, total string) *Ticket {
	prefix := fmt.Sprintf("%dx ", qty)
	room := t.width - utf8.RuneCountInString(prefix) - utf8.RuneCountInString(total) - 1
	t.buf.WriteString(t.spread(prefix+truncate(name, room), total))
	t.buf.WriteByte(LF)
	return t
}

// PartialCut sends the partial cut command.
func (t *Ticket) PartialCut() *Ticket {
	t.buf.Write([]byte{GS, 'V', 0x01})
	return t
}

// Bytes returns the accumulated ESC/POS byte stream.
func (t *Ticket) Bytes() []byte {
	return t.buf.Bytes()
}

func (t *Ticket) spread(left, right string) string {
	spaces := t.width - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if spaces < 1 {
		spaces = 1
	}
	return left + strings.Repeat(" ", spaces) + right
}

func truncate(s string, max int) string {
	if max < 1 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max])
}
