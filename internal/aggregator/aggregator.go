// Package aggregator enriches clusters with colors and per-collection distributions.
package aggregator

import (
	"maps"

	"clusterdash/internal/models"
)

// Palette is the fixed cluster palette, assigned by position modulo its size.
var Palette = [10]string{
	"#C8CFA0", "#FFDFBA", "#FFFFBA", "#BAFFC9", "#DBB5B5",
	"#D1C4E9", "#E8C5E5", "#D6DAC8", "#D7CCC8", "#DCEDC8",
}

// ColorFor returns the palette color for a cluster's position within its week.
func ColorFor(index int) string {
	n := len(Palette)

	return Palette[((index%n)+n)%n]
}

// Unrecognized is one article whose collection label fell into the default bucket.
type Unrecognized struct {
	Week    string
	Label   string
	Cluster int
	Article int
}

// Report summarizes an aggregation pass.
type Report struct {
	Unrecognized []Unrecognized
	Weeks        int
	Clusters     int
	Articles     int
}

// Defaulted returns how many articles were counted in the catch-all bucket
// because their label was not recognized.
func (r *Report) Defaulted() int {
	return len(r.Unrecognized)
}

// UnrecognizedLabels returns each distinct unrecognized label with its occurrence count.
func (r *Report) UnrecognizedLabels() map[string]int {
	labels := make(map[string]int)
	for _, u := range r.Unrecognized {
		labels[u.Label]++
	}

	return labels
}

// Aggregator computes cluster colors, article counts and distributions.
type Aggregator struct{}

// New creates a new Aggregator.
func New() *Aggregator {
	return &Aggregator{}
}

// NewDistribution returns the five collection labels mapped to zero.
func NewDistribution() map[string]int {
	dist := make(map[string]int, len(Categories))
	for _, c := range Categories {
		dist[string(c)] = 0
	}

	return dist
}

// Aggregate returns an enriched copy of ds. The input is not modified.
// Unrecognized collection labels are counted as MostlyRight and listed in the report.
func (a *Aggregator) Aggregate(ds *models.Dataset) (*models.Dataset, *Report) {
	report := &Report{}
	out := &models.Dataset{}

	if ds == nil {
		return out, report
	}

	out.Weeks = make([]models.Week, len(ds.Weeks))

	for wi, week := range ds.Weeks {
		clusters := make([]models.Cluster, len(week.Clusters))

		for ci, c := range week.Clusters {
			clusters[ci] = a.aggregateCluster(week.Name, ci, c, report)
		}

		out.Weeks[wi] = models.Week{Name: week.Name, Clusters: clusters}
		report.Clusters += len(clusters)
	}

	report.Weeks = len(out.Weeks)

	return out, report
}

func (a *Aggregator) aggregateCluster(week string, index int, c models.Cluster, report *Report) models.Cluster {
	enriched := models.Cluster{
		Name:         c.Name,
		Color:        ColorFor(index),
		Distribution: NewDistribution(),
		Articles:     make([]models.Article, len(c.Articles)),
	}

	if c.Summaries != nil {
		enriched.Summaries = maps.Clone(c.Summaries)
	}

	for ai, article := range c.Articles {
		article.Collection = NormalizeLabel(article.Collection)
		enriched.Articles[ai] = article

		bucket, resolution := Classify(article.Collection)
		if resolution == ResolutionDefaulted {
			report.Unrecognized = append(report.Unrecognized, Unrecognized{
				Week:    week,
				Cluster: index,
				Article: ai,
				Label:   article.Collection,
			})
		}

		enriched.Distribution[string(bucket)]++
	}

	enriched.ArticleCounts = len(enriched.Articles)
	report.Articles += enriched.ArticleCounts

	return enriched
}
