package views

import (
	"math/rand/v2"
	"slices"
	"sort"

	"clusterdash/internal/aggregator"
	"clusterdash/internal/models"
)

// ArticleRow is an article as listed on a page.
type ArticleRow struct {
	Title      string
	URL        string
	Collection string
}

// Term is a headline word and how often it occurs.
type Term struct {
	Word  string
	Count int
}

// ParseSelection resolves raw collection labels into categories in display
// order, dropping duplicates. No labels selects every collection.
func ParseSelection(raw []string) ([]aggregator.Category, error) {
	if len(raw) == 0 {
		return slices.Clone(aggregator.Categories), nil
	}

	picked := make(map[aggregator.Category]bool, len(raw))

	for _, label := range raw {
		c, err := aggregator.ParseCategory(label)
		if err != nil {
			return nil, err
		}

		picked[c] = true
	}

	selected := make([]aggregator.Category, 0, len(picked))
	for _, c := range aggregator.Categories {
		if picked[c] {
			selected = append(selected, c)
		}
	}

	return selected, nil
}

func selectedSet(selected []aggregator.Category) map[string]bool {
	set := make(map[string]bool, len(selected))
	for _, c := range selected {
		set[string(c)] = true
	}

	return set
}

// Matching returns the cluster's articles whose collection is selected, in order.
func Matching(c *models.Cluster, selected []aggregator.Category) []models.Article {
	set := selectedSet(selected)

	var out []models.Article
	for _, a := range c.Articles {
		if set[aggregator.NormalizeLabel(a.Collection)] {
			out = append(out, a)
		}
	}

	return out
}

// Panel is everything shown for one set on the cluster page.
type Panel struct {
	Cluster    *models.Cluster
	Index      int
	Selected   []aggregator.Category
	Count      int
	Percentage float64
	Slices     []Slice
	Articles   []ArticleRow
	Terms      []Term
	Images     []string
}

// Denominator returns the article total percentages are computed against: the
// mostly-left summary's total when it is positive, else the cluster's own count.
func Denominator(c *models.Cluster) int {
	if s, ok := c.Summary(aggregator.MostlyLeft.Slug()); ok && s.TotalNumArticles > 0 {
		return s.TotalNumArticles
	}

	return c.ArticleCounts
}

// SelectedCount sums the distribution over the selected collections.
func SelectedCount(c *models.Cluster, selected []aggregator.Category) int {
	n := 0
	for _, cat := range selected {
		n += c.Distribution[string(cat)]
	}

	return n
}

// Percentage returns the selected share of Denominator, or 0 when it is zero.
func Percentage(c *models.Cluster, selected []aggregator.Category) float64 {
	den := Denominator(c)
	if den == 0 {
		return 0
	}

	return float64(SelectedCount(c, selected)) / float64(den) * 100
}

// SelectionSlices returns a slice per collection in display order. Slices
// outside the selection keep their size but are drawn in the neutral colour.
func SelectionSlices(c *models.Cluster, selected []aggregator.Category) []Slice {
	set := selectedSet(selected)
	out := make([]Slice, 0, len(aggregator.Categories))

	for _, cat := range aggregator.Categories {
		s := Slice{
			Label:    string(cat),
			Value:    c.Distribution[string(cat)],
			Color:    aggregator.OtherColor,
			Selected: set[string(cat)],
		}
		if s.Selected {
			s.Color = cat.Color()
		}

		out = append(out, s)
	}

	return out
}

// SampleArticles returns the first sampleSize selected articles.
func (b *Builder) SampleArticles(c *models.Cluster, selected []aggregator.Category) []ArticleRow {
	matching := Matching(c, selected)
	if len(matching) > b.sampleSize {
		matching = matching[:b.sampleSize]
	}

	return b.rows(matching)
}

// CollectionSamples takes up to sampleSize articles of the collection from each
// cluster of the week, then returns a random sample of n of them.
func (b *Builder) CollectionSamples(week *models.Week, collection aggregator.Category, n int, rng *rand.Rand) []ArticleRow {
	var pool []models.Article

	for i := range week.Clusters {
		matching := Matching(&week.Clusters[i], []aggregator.Category{collection})
		if len(matching) > b.sampleSize {
			matching = matching[:b.sampleSize]
		}

		pool = append(pool, matching...)
	}

	return b.rows(sample(rng, pool, n))
}

func (b *Builder) rows(articles []models.Article) []ArticleRow {
	rows := make([]ArticleRow, 0, len(articles))
	for _, a := range articles {
		rows = append(rows, ArticleRow{Title: a.Title, URL: a.URL, Collection: b.DisplayName(a.Collection)})
	}

	return rows
}

// HeadlineTerms counts the non-stopword words of the selected articles'
// titles, most frequent first with ties broken alphabetically.
func (b *Builder) HeadlineTerms(c *models.Cluster, selected []aggregator.Category) []Term {
	counts := make(map[string]int)

	for _, a := range Matching(c, selected) {
		for _, w := range b.text.Words(b.text.RemoveStopwords(a.Title)) {
			counts[w]++
		}
	}

	terms := make([]Term, 0, len(counts))
	for w, n := range counts {
		terms = append(terms, Term{Word: w, Count: n})
	}

	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}

		return terms[i].Word < terms[j].Word
	})

	return terms
}

// ImageURLs returns the summary image of each selected collection that has one.
func ImageURLs(c *models.Cluster, selected []aggregator.Category) []string {
	var urls []string

	for _, cat := range selected {
		if s, ok := c.Summary(cat.Slug()); ok && s.ImageURL != "" {
			urls = append(urls, s.ImageURL)
		}
	}

	return urls
}

// Panel builds the cluster page panel for cluster index of week.
func (b *Builder) Panel(week *models.Week, index int, selected []aggregator.Category) Panel {
	c := &week.Clusters[index]

	return Panel{
		Cluster:    c,
		Index:      index,
		Selected:   selected,
		Count:      SelectedCount(c, selected),
		Percentage: Percentage(c, selected),
		Slices:     SelectionSlices(c, selected),
		Articles:   b.SampleArticles(c, selected),
		Terms:      b.HeadlineTerms(c, selected),
		Images:     ImageURLs(c, selected),
	}
}
