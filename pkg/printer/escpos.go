package printer

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ESC/POS control bytes
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

const (
	FontNormal = 0x00
	FontDouble = 0x11 // double width and height
	FontWide   = 0x10
	FontTall   = 0x01
)

// Widths in characters of the common paper rolls
const (
	Width58mm = 32
	Width80mm = 48
)

// Document builds an ESC/POS byte stream for thermal printers.
type Document struct {
	buf   bytes.Buffer
	width int
}

// NewDocument creates an initialised document that lays text out over
// width characters. Non-positive widths fall back to 58mm paper.
func NewDocument(width int) *Document {
	if width <= 0 {
		width = Width58mm
	}
	d := &Document{width: width}
	d.buf.Write([]byte{ESC, '@'})
	return d
}

// Width returns the line width in characters
func (d *Document) Width() int {
	return d.width
}

// Feed writes n line feeds.
func (d *Document) Feed(n int) *Document {
	for i := 0; i < n; i++ {
		d.buf.WriteByte(LF)
	}
	return d
}

// Align sets text alignment to AlignLeft, AlignCenter or AlignRight.
func (d *Document) Align(align int) *Document {
	d.buf.Write([]byte{ESC, 'a', byte(align)})
	return d
}

func (d *Document) Bold(on bool) *Document {
	var b byte
	if on {
		b = 1
	}
	d.buf.Write([]byte{ESC, 'E', b})
	return d
}

func (d *Document) Size(size byte) *Document {
	d.buf.Write([]byte{GS, '!', size})
	return d
}

// Line writes s followed by a line feed.
func (d *Document) Line(s string) *Document {
	d.buf.WriteString(ascii(s))
	d.buf.WriteByte(LF)
	return d
}

func (d *Document) Linef(format string, args ...any) *Document {
	return d.Line(fmt.Sprintf(format, args...))
}

// Rule prints char across the full width.
func (d *Document) Rule(char byte) *Document {
	d.buf.WriteString(strings.Repeat(string(char), d.width))
	d.buf.WriteByte(LF)
	return d
}

// Pair prints key on the left and value flush right, e.g.
// "Subtotal:                 25.00".
func (d *Document) Pair(key, value string) *Document {
	return d.Line(spread(ascii(key), ascii(value), d.width))
}

// Item prints "<qty>x <name>" with amount flush right. Long names are
// shortened so the amount stays on the line.
func (d *Document) Item(qty, name, amount string) *Document {
	prefix := ascii(qty) + "x "
	amount = ascii(amount)
	room := d.width - len(prefix) - len(amount) - 1
	name = ascii(name)
	if room > 3 && len(name) > room {
		name = name[:room-2] + ".."
	}
	return d.Line(spread(prefix+name, amount, d.width))
}

// Cut feeds and cuts the paper. Partial cuts leave a hinge.
func (d *Document) Cut(partial bool) *Document {
	mode := byte(0x00)
	if partial {
		mode = 0x01
	}
	d.buf.Write([]byte{GS, 'V', mode})
	return d
}

// Bytes returns the accumulated byte stream.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

func spread(left, right string, width int) string {
	gap := width - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// ascii replaces characters outside the printer's base code page with '?'.
func ascii(s string) string {
	if isASCII(s) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
