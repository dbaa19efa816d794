// Package views turns the enriched dataset into the view models the pages and
// charts are drawn from. Every function is pure given its inputs, so results
// can be memoized per dataset fingerprint.
package views

import (
	"math/rand/v2"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"clusterdash/internal/aggregator"
	"clusterdash/internal/models"
	"clusterdash/pkg/utils"
)

// WrapWidth is the number of words per line in tile labels.
const WrapWidth = 3

// DefaultSampleSize is how many articles are listed per sample.
const DefaultSampleSize = 5

// SampleTitleWidth caps hover-text titles, in runes.
const SampleTitleWidth = 80

// Tile is one rectangle of a treemap.
type Tile struct {
	Label   string
	Lines   []string
	Value   int
	Color   string
	Link    string
	Samples []string
}

// Slice is one wedge of a pie chart.
type Slice struct {
	Label    string
	Value    int
	Color    string
	Selected bool
}

// Builder builds view models. It is safe for concurrent use.
type Builder struct {
	text       *utils.StringHelper
	sampleSize int
}

// NewBuilder creates a builder that lists sampleSize articles per sample.
func NewBuilder(sampleSize int) *Builder {
	if sampleSize < 1 {
		sampleSize = DefaultSampleSize
	}

	return &Builder{
		text:       utils.NewStringHelper(),
		sampleSize: sampleSize,
	}
}

// DisplayName title-cases a collection label or week name for headings.
func (b *Builder) DisplayName(label string) string {
	// cases.Caser keeps state between calls and is not safe to share.
	caser := cases.Title(language.English)

	return caser.String(aggregator.NormalizeLabel(label))
}

// Wrap splits a label into lines of WrapWidth words.
func (b *Builder) Wrap(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	return strings.Split(b.text.WrapWords(text, WrapWidth, "\n"), "\n")
}

// ClusterLink returns the cluster page URL for a cluster, optionally preselecting collections.
func ClusterLink(week string, index int, collections ...aggregator.Category) string {
	q := url.Values{}
	q.Set("week", week)
	q.Set("cluster", strconv.Itoa(index))

	for _, c := range collections {
		q.Add("collection", string(c))
	}

	return "/cluster_page?" + q.Encode()
}

// CollectionLink returns the collection page URL.
func CollectionLink(week string, collection aggregator.Category) string {
	q := url.Values{}
	q.Set("week", week)
	q.Set("collection", string(collection))

	return "/collection_page?" + q.Encode()
}

// HomeLink returns the home page URL for a week.
func HomeLink(week string) string {
	q := url.Values{}
	q.Set("week", week)

	return "/?" + q.Encode()
}

// MainTreemap returns one tile per cluster, sized by article count. Each tile
// carries up to sampleSize randomly chosen titles for its hover text.
func (b *Builder) MainTreemap(week *models.Week, rng *rand.Rand) []Tile {
	tiles := make([]Tile, 0, len(week.Clusters))

	for i, c := range week.Clusters {
		titles := make([]string, 0, len(c.Articles))
		for _, a := range c.Articles {
			titles = append(titles, b.text.TruncateString(b.text.NormalizeWhitespace(a.Title), SampleTitleWidth))
		}

		tiles = append(tiles, Tile{
			Label:   c.Name,
			Lines:   b.Wrap(c.Name),
			Value:   c.ArticleCounts,
			Color:   c.Color,
			Link:    ClusterLink(week.Name, i),
			Samples: sample(rng, titles, b.sampleSize),
		})
	}

	return tiles
}

// CollectionTreemap returns a tile for every cluster with at least one article
// in collection. With headline set, tiles are labelled by the collection's
// summary headline when one exists, otherwise by cluster name.
func (b *Builder) CollectionTreemap(week *models.Week, collection aggregator.Category, headline bool) []Tile {
	var tiles []Tile

	for i, c := range week.Clusters {
		count := c.Distribution[string(collection)]
		if count == 0 {
			continue
		}

		label := c.Name
		if headline {
			if s, ok := c.Summary(collection.Slug()); ok && s.Article.Title != "" {
				label = s.Article.Title
			}
		}

		tiles = append(tiles, Tile{
			Label: label,
			Lines: b.Wrap(label),
			Value: count,
			Color: c.Color,
			Link:  ClusterLink(week.Name, i, collection),
		})
	}

	return tiles
}

// CollectionShare returns the pie of the collection's articles against every
// other article of the week.
func (b *Builder) CollectionShare(week *models.Week, collection aggregator.Category) []Slice {
	total := week.TotalArticles()

	group := 0
	for _, c := range week.Clusters {
		group += c.Distribution[string(collection)]
	}

	return []Slice{
		{Label: "This group (" + strconv.Itoa(group) + ")", Value: group, Color: collection.Color(), Selected: true},
		{Label: aggregator.OtherLabel + " (" + strconv.Itoa(total-group) + ")", Value: total - group, Color: aggregator.OtherColor},
	}
}

// WeekHistory is one week's collection treemap on the collection page.
type WeekHistory struct {
	Week     *models.Week
	Selected bool
	Tiles    []Tile
}

// CollectionHistory returns the collection treemap of every week, newest first.
func (b *Builder) CollectionHistory(ds *models.Dataset, collection aggregator.Category, selected string) []WeekHistory {
	history := make([]WeekHistory, 0, len(ds.Weeks))

	for i := len(ds.Weeks) - 1; i >= 0; i-- {
		w := &ds.Weeks[i]
		history = append(history, WeekHistory{
			Week:     w,
			Selected: w.Name == selected,
			Tiles:    b.CollectionTreemap(w, collection, false),
		})
	}

	return history
}

func sample[T any](rng *rand.Rand, items []T, n int) []T {
	if n >= len(items) {
		return append([]T(nil), items...)
	}

	if rng == nil {
		return append([]T(nil), items[:n]...)
	}

	picked := make([]T, 0, n)
	for _, i := range rng.Perm(len(items))[:n] {
		picked = append(picked, items[i])
	}

	return picked
}
