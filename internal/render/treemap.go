package render

import (
	"sort"
	"strconv"
	"strings"

	"github.com/nikolaydubina/treemap/layout"

	"clusterdash/internal/views"
)

// TreemapOptions controls treemap geometry.
type TreemapOptions struct {
	Width    float64
	Height   float64
	Padding  float64
	FontSize float64
}

// DefaultTreemapOptions returns the options used when none are given.
func DefaultTreemapOptions(width, height int) TreemapOptions {
	return TreemapOptions{
		Width:    float64(width),
		Height:   float64(height),
		Padding:  2,
		FontSize: 18,
	}
}

// Treemap lays tiles out with the squarified algorithm and draws each as a
// linked rectangle with its wrapped label and a hover title. Tiles with a
// non-positive value are left out.
func Treemap(tiles []views.Tile, opts TreemapOptions) []byte {
	svg := newSVG(opts.Width, opts.Height)

	order := make([]int, 0, len(tiles))
	total := 0.0

	for i, t := range tiles {
		if t.Value > 0 {
			order = append(order, i)
			total += float64(t.Value)
		}
	}

	if len(order) == 0 {
		svg.printf(`<text x="%s" y="%s" text-anchor="middle" fill="#666" font-size="14">No articles</text>`,
			num(opts.Width/2), num(opts.Height/2))

		return svg.bytes()
	}

	// Squarify expects areas in decreasing order that fill the box.
	sort.SliceStable(order, func(a, b int) bool {
		return tiles[order[a]].Value > tiles[order[b]].Value
	})

	scale := opts.Width * opts.Height / total
	areas := make([]float64, len(order))

	for i, idx := range order {
		areas[i] = float64(tiles[idx].Value) * scale
	}

	boxes := layout.Squarify(layout.Box{X: 0, Y: 0, W: opts.Width, H: opts.Height}, areas)

	for i, box := range boxes {
		if i >= len(order) {
			break
		}

		drawTile(svg, tiles[order[i]], box, opts)
	}

	return svg.bytes()
}

func drawTile(svg *svgWriter, t views.Tile, box layout.Box, opts TreemapOptions) {
	x, y := box.X+opts.Padding/2, box.Y+opts.Padding/2
	w, h := box.W-opts.Padding, box.H-opts.Padding

	if w <= 0 || h <= 0 {
		return
	}

	if t.Link != "" {
		svg.printf(`<a href="%s">`, esc(t.Link))
	}

	svg.printf(`<g><title>%s</title>`, esc(hoverText(t)))
	svg.printf(`<rect x="%s" y="%s" width="%s" height="%s" rx="6" fill="%s" stroke="#000" stroke-width="0.5"/>`,
		num(x), num(y), num(w), num(h), esc(t.Color))

	lines := t.Lines
	if len(lines) == 0 {
		lines = []string{t.Label}
	}

	if size := fitFont(lines, w, h, opts.FontSize); size >= minFontSize {
		top := y + h/2 - float64(len(lines)-1)*size*lineHeight/2

		svg.printf(`<text x="%s" text-anchor="middle" dominant-baseline="middle" font-size="%s" font-weight="bold" fill="#111">`,
			num(x+w/2), num(size))

		for i, line := range lines {
			svg.printf(`<tspan x="%s" y="%s">%s</tspan>`, num(x+w/2), num(top+float64(i)*size*lineHeight), esc(line))
		}

		svg.printf(`</text>`)
	}

	svg.printf(`</g>`)

	if t.Link != "" {
		svg.printf(`</a>`)
	}
}

// fitFont returns the largest font size up to maxSize at which lines fit in w x h.
func fitFont(lines []string, w, h, maxSize float64) float64 {
	size := maxSize

	for _, line := range lines {
		if lw := textWidth(line, 1); lw > 0 {
			size = min(size, (w*0.9)/lw)
		}
	}

	return min(size, h*0.9/(float64(len(lines))*lineHeight))
}

func hoverText(t views.Tile) string {
	var b strings.Builder

	b.WriteString(t.Label)
	b.WriteString("\nNumber of Articles: ")
	b.WriteString(strconv.Itoa(t.Value))

	for _, s := range t.Samples {
		b.WriteString("\n- ")
		b.WriteString(s)
	}

	return b.String()
}
