package render

import (
	"fmt"
	"math"

	"clusterdash/internal/views"
)

// Pie draws slices clockwise from twelve o'clock in the given order, each
// labelled with its name and share. Zero-valued slices are skipped.
func Pie(slices []views.Slice, size float64) []byte {
	svg := newSVG(size, size)
	cx, cy, r := size/2, size/2, size/2*0.95

	total := 0
	for _, s := range slices {
		if s.Value > 0 {
			total += s.Value
		}
	}

	if total == 0 {
		svg.printf(`<circle cx="%s" cy="%s" r="%s" fill="#EEE"/>`, num(cx), num(cy), num(r))
		svg.printf(`<text x="%s" y="%s" text-anchor="middle" fill="#666" font-size="14">No articles</text>`, num(cx), num(cy))

		return svg.bytes()
	}

	start := -math.Pi / 2

	for _, s := range slices {
		if s.Value <= 0 {
			continue
		}

		share := float64(s.Value) / float64(total)
		end := start + share*2*math.Pi

		svg.printf(`<g><title>%s: %d</title>`, esc(s.Label), s.Value)

		if share >= 1 {
			svg.printf(`<circle cx="%s" cy="%s" r="%s" fill="%s" stroke="#FFF"/>`, num(cx), num(cy), num(r), esc(s.Color))
		} else {
			svg.printf(`<path d="%s" fill="%s" stroke="#FFF"/>`, arcPath(cx, cy, r, start, end), esc(s.Color))
		}

		mid := (start + end) / 2
		lx, ly := cx+r*0.62*math.Cos(mid), cy+r*0.62*math.Sin(mid)

		if share >= 1 {
			lx, ly = cx, cy
		}

		fontSize := max(minFontSize, size/28)
		svg.printf(`<text x="%s" y="%s" text-anchor="middle" font-size="%s" fill="#111">`, num(lx), num(ly), num(fontSize))
		svg.printf(`<tspan x="%s" dy="0">%s</tspan>`, num(lx), esc(s.Label))
		svg.printf(`<tspan x="%s" dy="%s">%s</tspan>`, num(lx), num(fontSize*lineHeight), FormatPercent(share))
		svg.printf(`</text></g>`)

		start = end
	}

	return svg.bytes()
}

// FormatPercent formats a 0..1 share with one decimal, e.g. "33.3%".
func FormatPercent(share float64) string {
	return fmt.Sprintf("%.1f%%", share*100)
}

func arcPath(cx, cy, r, start, end float64) string {
	x1, y1 := cx+r*math.Cos(start), cy+r*math.Sin(start)
	x2, y2 := cx+r*math.Cos(end), cy+r*math.Sin(end)

	large := 0
	if end-start > math.Pi {
		large = 1
	}

	return fmt.Sprintf("M%s,%s L%s,%s A%s,%s 0 %d 1 %s,%s Z",
		num(cx), num(cy), num(x1), num(y1), num(r), num(r), large, num(x2), num(y2))
}
