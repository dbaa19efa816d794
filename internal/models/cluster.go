package models

import "strings"

// Cluster is a group of articles treated as one story for a week.
// Color, ArticleCounts and Distribution are filled in by the aggregator.
type Cluster struct {
	Distribution  map[string]int               `json:"distribution" yaml:"-"`
	Summaries     map[string]CollectionSummary `json:"summaries,omitempty" yaml:"summaries"`
	Name          string                       `json:"name" yaml:"name"`
	Color         string                       `json:"color" yaml:"-"`
	Articles      []Article                    `json:"articles" yaml:"articles"`
	ArticleCounts int                          `json:"article_counts" yaml:"-"`
}

// Summary returns the summary for a collection label. Summary keys may use
// either underscores or spaces as separators.
func (c *Cluster) Summary(label string) (CollectionSummary, bool) {
	if s, ok := c.Summaries[label]; ok {
		return s, true
	}

	for key, s := range c.Summaries {
		if normalizeSeparators(key) == normalizeSeparators(label) {
			return s, true
		}
	}

	return CollectionSummary{}, false
}

func normalizeSeparators(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}
