package aggregator

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCategory is returned by ParseCategory for labels outside the enumeration.
var ErrUnknownCategory = errors.New("unknown collection")

// Category is one of the five editorial-leaning collection labels.
type Category string

// Collection labels, in display order.
const (
	MostlyLeft    Category = "mostly left"
	SomewhatLeft  Category = "somewhat left"
	Center        Category = "center"
	SomewhatRight Category = "somewhat right"
	MostlyRight   Category = "mostly right"
)

// Other is the pie-chart bucket for everything outside the current selection.
const (
	OtherLabel = "Other"
	OtherColor = "#5C6068"
)

// Categories lists every collection in display order. MostlyRight is last and
// doubles as the catch-all bucket.
var Categories = []Category{MostlyLeft, SomewhatLeft, Center, SomewhatRight, MostlyRight}

var categoryColors = map[Category]string{
	MostlyLeft:    "#2166AC",
	SomewhatLeft:  "#67A9CF",
	Center:        "#8E8E8E",
	SomewhatRight: "#EF8A62",
	MostlyRight:   "#B2182B",
}

// Resolution records how a raw label was mapped to a bucket.
type Resolution int

const (
	// ResolutionExact means the label matched a category after normalization.
	ResolutionExact Resolution = iota
	// ResolutionDefaulted means the label was unrecognized and counted as MostlyRight.
	ResolutionDefaulted
)

func (r Resolution) String() string {
	switch r {
	case ResolutionExact:
		return "exact"
	case ResolutionDefaulted:
		return "defaulted"
	}

	return fmt.Sprintf("Resolution(%d)", int(r))
}

// String returns the label text.
func (c Category) String() string {
	return string(c)
}

// Color returns the legend color for the collection.
func (c Category) Color() string {
	if color, ok := categoryColors[c]; ok {
		return color
	}

	return OtherColor
}

// Slug returns the underscore form used by source data keys, e.g. "mostly_left".
func (c Category) Slug() string {
	return strings.ReplaceAll(string(c), " ", "_")
}

// NormalizeLabel replaces underscores with spaces. Applying it twice is a no-op.
func NormalizeLabel(label string) string {
	return strings.ReplaceAll(label, "_", " ")
}

// Lookup matches a label against the enumeration, case-sensitively, after normalization.
func Lookup(label string) (Category, bool) {
	normalized := Category(NormalizeLabel(label))
	for _, c := range Categories {
		if c == normalized {
			return c, true
		}
	}

	return "", false
}

// Classify returns the bucket an article with this label is counted in.
// Unrecognized labels fall into MostlyRight with ResolutionDefaulted.
func Classify(label string) (Category, Resolution) {
	if c, ok := Lookup(label); ok {
		return c, ResolutionExact
	}

	return MostlyRight, ResolutionDefaulted
}

// ParseCategory is the strict form of Lookup for user input such as query parameters.
func ParseCategory(label string) (Category, error) {
	c, ok := Lookup(label)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, label)
	}

	return c, nil
}

// Labels returns the category labels as plain strings.
func Labels() []string {
	labels := make([]string, len(Categories))
	for i, c := range Categories {
		labels[i] = string(c)
	}

	return labels
}
