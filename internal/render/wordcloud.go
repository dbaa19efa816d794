package render

import (
	"clusterdash/internal/views"
)

var wordColors = []string{"#1A1A1A", "#3D3D3D", "#5E5E5E", "#7F7F7F", "#9E9E9E"}

// WordCloudOptions controls word cloud layout.
type WordCloudOptions struct {
	Width       float64
	Height      float64
	MaxWords    int
	MaxFontSize float64
	MinFontSize float64
}

// DefaultWordCloudOptions returns an 800x400 cloud of up to maxWords words.
func DefaultWordCloudOptions(maxWords int) WordCloudOptions {
	return WordCloudOptions{
		Width:       800,
		Height:      400,
		MaxWords:    maxWords,
		MaxFontSize: 64,
		MinFontSize: 12,
	}
}

type placedWord struct {
	term views.Term
	size float64
	rank int
}

// WordCloud draws the most frequent terms in horizontal rows, largest first.
// Font size scales linearly with frequency. Terms is expected in decreasing
// frequency order. Words that do not fit are dropped.
func WordCloud(terms []views.Term, opts WordCloudOptions) []byte {
	svg := newSVG(opts.Width, opts.Height)
	svg.printf(`<rect width="100%%" height="100%%" fill="#FFF"/>`)

	if opts.MaxWords > 0 && len(terms) > opts.MaxWords {
		terms = terms[:opts.MaxWords]
	}

	if len(terms) == 0 {
		return svg.bytes()
	}

	hi, lo := terms[0].Count, terms[len(terms)-1].Count

	var (
		row   []placedWord
		rowW  float64
		y     float64
		gap   = opts.MinFontSize / 2
		limit = opts.Width * 0.95
	)

	flush := func() bool {
		if len(row) == 0 {
			return true
		}

		rowH := row[0].size * lineHeight
		if y+rowH > opts.Height {
			return false
		}

		x := (opts.Width - rowW) / 2
		for _, p := range row {
			w := textWidth(p.term.Word, p.size)
			svg.printf(`<text x="%s" y="%s" font-size="%s" fill="%s" dominant-baseline="hanging"><title>%s: %d</title>%s</text>`,
				num(x), num(y+(rowH-p.size*lineHeight)/2), num(p.size), wordColors[p.rank%len(wordColors)],
				esc(p.term.Word), p.term.Count, esc(p.term.Word))
			x += w + gap
		}

		y += rowH
		row, rowW = row[:0], 0

		return true
	}

	for i, t := range terms {
		size := opts.MaxFontSize
		if hi > lo {
			size = opts.MinFontSize + (opts.MaxFontSize-opts.MinFontSize)*float64(t.Count-lo)/float64(hi-lo)
		}

		w := textWidth(t.Word, size)
		if w > limit {
			continue
		}

		next := rowW + w
		if len(row) > 0 {
			next += gap
		}

		if next > limit {
			if !flush() {
				break
			}

			next = w
		}

		row = append(row, placedWord{term: t, size: size, rank: i})
		rowW = next
	}

	flush()

	return svg.bytes()
}
