package printer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func lines(d *Document) []string {
	return strings.Split(string(d.Bytes()), "\n")
}

func TestNewDocumentStartsWithInit(t *testing.T) {
	d := NewDocument(0)
	assert.Equal(t, Width58mm, d.Width())
	assert.True(t, bytes.HasPrefix(d.Bytes(), []byte{ESC, '@'}))
}

func TestPairIsFullWidth(t *testing.T) {
	d := NewDocument(20).Pair("Total:", "24.30")
	got := lines(d)[0][2:] // skip init bytes
	assert.Len(t, got, 20)
	assert.True(t, strings.HasPrefix(got, "Total:"))
	assert.True(t, strings.HasSuffix(got, "24.30"))
}

func TestItemShortensLongNames(t *testing.T) {
	d := NewDocument(20).Item("2", "A very long product name", "20.00")
	got := lines(d)[0][2:]
	assert.Len(t, got, 20)
	assert.True(t, strings.HasPrefix(got, "2x A very"))
	assert.Contains(t, got, "..")
	assert.True(t, strings.HasSuffix(got, "20.00"))
}

func TestNonASCIIReplaced(t *testing.T) {
	d := NewDocument(32).Line("Café")
	assert.Contains(t, string(d.Bytes()), "Caf?\n")
}

func TestCut(t *testing.T) {
	assert.True(t, bytes.HasSuffix(NewDocument(32).Cut(true).Bytes(), []byte{GS, 'V', 0x01}))
	assert.True(t, bytes.HasSuffix(NewDocument(32).Cut(false).Bytes(), []byte{GS, 'V', 0x00}))
}
