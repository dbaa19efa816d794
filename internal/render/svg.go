// Package render draws the dashboard charts as standalone SVG documents.
package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/mattn/go-runewidth"
)

// Text metrics used to size labels. Widths are estimated from the display
// width of the string, so wide runes count double.
const (
	charWidthRatio = 0.6
	lineHeight     = 1.25
	minFontSize    = 8.0
)

type svgWriter struct {
	buf bytes.Buffer
}

func newSVG(width, height float64) *svgWriter {
	w := &svgWriter{}
	w.printf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%s" height="%s" font-family="sans-serif">`,
		num(width), num(height), num(width), num(height))

	return w
}

func (w *svgWriter) printf(format string, args ...any) {
	fmt.Fprintf(&w.buf, format, args...)
}

func (w *svgWriter) bytes() []byte {
	w.buf.WriteString("</svg>")

	return w.buf.Bytes()
}

// textWidth estimates the rendered width of s at the given font size.
func textWidth(s string, size float64) float64 {
	return float64(runewidth.StringWidth(s)) * size * charWidthRatio
}

func esc(s string) string {
	return html.EscapeString(s)
}

// num formats a coordinate with at most two decimals.
func num(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	for s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}

	if s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}

	if s == "-0" {
		return "0"
	}

	return s
}
