package views

import (
	"bytes"
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"clusterdash/internal/aggregator"
	"clusterdash/internal/models"
)

func article(title, collection string) models.Article {
	return models.Article{Title: title, URL: "https://news.example/" + strings.ReplaceAll(title, " ", "-"), Collection: collection}
}

// testWeek returns an aggregated week with two clusters.
func testWeek(t *testing.T) *models.Week {
	t.Helper()

	raw := &models.Dataset{Weeks: []models.Week{{
		Name: "week 1",
		Clusters: []models.Cluster{
			{
				Name: "Storm Hits Coast Towns Hard",
				Articles: []models.Article{
					article("Storm hits coast", "mostly_left"),
					article("Coast storm damage", "mostly_left"),
					article("Storm recovery begins", "center"),
					article("Insurers count storm losses", "mostly_right"),
				},
				Summaries: map[string]models.CollectionSummary{
					"mostly_left": {
						Article:          models.SummaryArticle{Title: "Storm hits coast", URL: "https://news.example/1"},
						ImageURL:         "https://img.example/ml.png",
						TotalNumArticles: 10,
					},
					"center": {ImageURL: "https://img.example/c.png"},
				},
			},
			{
				Name: "Budget",
				Articles: []models.Article{
					article("Budget passes", "center"),
				},
			},
		},
	}}}

	ds, _ := aggregator.New().Aggregate(raw)

	return &ds.Weeks[0]
}

func TestBuilder_Wrap(t *testing.T) {
	b := NewBuilder(5)

	got := b.Wrap("Storm Hits Coast Towns Hard")
	want := []string{"Storm Hits Coast", "Towns Hard"}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Wrap mismatch (-want +got):\n%s", diff)
	}

	if b.Wrap("   ") != nil {
		t.Error("Wrap of blank text should be nil")
	}
}

func TestBuilder_DisplayName(t *testing.T) {
	b := NewBuilder(5)

	tests := map[string]string{
		"mostly_left":    "Mostly Left",
		"center":         "Center",
		"somewhat right": "Somewhat Right",
	}

	for in, want := range tests {
		if got := b.DisplayName(in); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuilder_MainTreemap(t *testing.T) {
	week := testWeek(t)
	b := NewBuilder(2)

	tiles := b.MainTreemap(week, rand.New(rand.NewPCG(1, 2)))
	if len(tiles) != 2 {
		t.Fatalf("got %d tiles, want 2", len(tiles))
	}

	first := tiles[0]
	if first.Value != 4 || first.Color != aggregator.Palette[0] {
		t.Errorf("unexpected first tile: %+v", first)
	}

	if first.Link != "/cluster_page?cluster=0&week=week+1" {
		t.Errorf("Link = %q", first.Link)
	}

	if len(first.Samples) != 2 {
		t.Errorf("got %d samples, want 2", len(first.Samples))
	}

	if len(tiles[1].Samples) != 1 {
		t.Errorf("small cluster should list all titles, got %v", tiles[1].Samples)
	}
}

func TestBuilder_MainTreemap_SampleTitles(t *testing.T) {
	long := strings.Repeat("word ", 30)
	week := &models.Week{
		Name: "week 1",
		Clusters: []models.Cluster{{
			Name:          "Long titles",
			ArticleCounts: 1,
			Articles:      []models.Article{{Title: "  Storm\n\thits   " + long}},
		}},
	}

	tiles := NewBuilder(5).MainTreemap(week, rand.New(rand.NewPCG(1, 2)))
	if len(tiles) != 1 || len(tiles[0].Samples) != 1 {
		t.Fatalf("unexpected tiles: %+v", tiles)
	}

	got := tiles[0].Samples[0]
	want := ("Storm hits " + long)[:SampleTitleWidth] + "..."
	if got != want {
		t.Errorf("sample = %q, want %q", got, want)
	}
}

func TestBuilder_CollectionTreemap(t *testing.T) {
	week := testWeek(t)
	b := NewBuilder(5)

	tiles := b.CollectionTreemap(week, aggregator.MostlyLeft, true)
	if len(tiles) != 1 {
		t.Fatalf("got %d tiles, want 1 (clusters without the collection are skipped)", len(tiles))
	}

	if tiles[0].Label != "Storm hits coast" || tiles[0].Value != 2 {
		t.Errorf("unexpected tile: %+v", tiles[0])
	}

	if !strings.Contains(tiles[0].Link, "collection=mostly+left") {
		t.Errorf("Link = %q, want collection preselected", tiles[0].Link)
	}

	center := b.CollectionTreemap(week, aggregator.Center, true)
	if len(center) != 2 {
		t.Fatalf("got %d center tiles, want 2", len(center))
	}

	// The center summary has no headline, so the cluster name is used.
	if center[0].Label != "Storm Hits Coast Towns Hard" || center[1].Label != "Budget" {
		t.Errorf("unexpected labels: %q, %q", center[0].Label, center[1].Label)
	}

	if got := b.CollectionTreemap(week, aggregator.SomewhatLeft, false); len(got) != 0 {
		t.Errorf("expected no tiles, got %d", len(got))
	}
}

func TestBuilder_CollectionShare(t *testing.T) {
	slices := NewBuilder(5).CollectionShare(testWeek(t), aggregator.Center)

	want := []Slice{
		{Label: "This group (2)", Value: 2, Color: aggregator.Center.Color(), Selected: true},
		{Label: "Other (3)", Value: 3, Color: aggregator.OtherColor},
	}

	if diff := cmp.Diff(want, slices); diff != "" {
		t.Errorf("CollectionShare mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilder_CollectionHistory(t *testing.T) {
	ds := &models.Dataset{Weeks: []models.Week{*testWeek(t), {Name: "week 2"}}}

	history := NewBuilder(5).CollectionHistory(ds, aggregator.Center, "week 1")
	if len(history) != 2 || history[0].Week.Name != "week 2" || history[1].Week.Name != "week 1" {
		t.Fatalf("history should be newest first, got %+v", history)
	}

	if history[1].Week != &ds.Weeks[0] {
		t.Error("history should point at the dataset's own weeks")
	}

	if history[0].Selected || !history[1].Selected {
		t.Error("only the selected week should be marked")
	}
}

func TestParseSelection(t *testing.T) {
	all, err := ParseSelection(nil)
	if err != nil || len(all) != len(aggregator.Categories) {
		t.Fatalf("empty selection = %v, %v", all, err)
	}

	got, err := ParseSelection([]string{"mostly right", "center", "mostly_right"})
	if err != nil {
		t.Fatalf("ParseSelection failed: %v", err)
	}

	want := []aggregator.Category{aggregator.Center, aggregator.MostlyRight}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseSelection mismatch (-want +got):\n%s", diff)
	}

	if _, err := ParseSelection([]string{"far left"}); !errors.Is(err, aggregator.ErrUnknownCategory) {
		t.Errorf("ParseSelection error = %v, want ErrUnknownCategory", err)
	}
}

func TestPercentage(t *testing.T) {
	week := testWeek(t)

	tests := []struct {
		name     string
		cluster  *models.Cluster
		selected []aggregator.Category
		want     float64
	}{
		{"summary total", &week.Clusters[0], []aggregator.Category{aggregator.MostlyLeft}, 20},
		{"summary total all", &week.Clusters[0], aggregator.Categories, 40},
		{"falls back to article count", &week.Clusters[1], []aggregator.Category{aggregator.Center}, 100},
		{"empty cluster", &models.Cluster{Distribution: aggregator.NewDistribution()}, aggregator.Categories, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percentage(tt.cluster, tt.selected); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Percentage = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectionSlices(t *testing.T) {
	week := testWeek(t)

	slices := SelectionSlices(&week.Clusters[0], []aggregator.Category{aggregator.Center})
	if len(slices) != 5 {
		t.Fatalf("got %d slices, want 5", len(slices))
	}

	for i, s := range slices {
		if s.Label != string(aggregator.Categories[i]) {
			t.Errorf("slice %d label = %q, want display order", i, s.Label)
		}

		wantColor := aggregator.OtherColor
		if aggregator.Categories[i] == aggregator.Center {
			wantColor = aggregator.Center.Color()
		}

		if s.Color != wantColor {
			t.Errorf("slice %q color = %s, want %s", s.Label, s.Color, wantColor)
		}
	}

	if slices[0].Value != 2 {
		t.Errorf("unselected slices keep their size, got %d", slices[0].Value)
	}
}

func TestBuilder_SampleArticles(t *testing.T) {
	week := testWeek(t)

	rows := NewBuilder(1).SampleArticles(&week.Clusters[0], []aggregator.Category{aggregator.MostlyLeft})
	want := []ArticleRow{{Title: "Storm hits coast", URL: "https://news.example/Storm-hits-coast", Collection: "Mostly Left"}}

	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("SampleArticles mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilder_CollectionSamples(t *testing.T) {
	week := testWeek(t)
	b := NewBuilder(5)

	rows := b.CollectionSamples(week, aggregator.Center, 5, rand.New(rand.NewPCG(7, 7)))
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	one := b.CollectionSamples(week, aggregator.Center, 1, rand.New(rand.NewPCG(7, 7)))
	again := b.CollectionSamples(week, aggregator.Center, 1, rand.New(rand.NewPCG(7, 7)))

	if len(one) != 1 || one[0] != again[0] {
		t.Errorf("sampling should be deterministic for a seed: %v vs %v", one, again)
	}
}

func TestBuilder_HeadlineTerms(t *testing.T) {
	week := testWeek(t)

	terms := NewBuilder(5).HeadlineTerms(&week.Clusters[0], []aggregator.Category{aggregator.MostlyLeft, aggregator.Center})
	want := []Term{
		{Word: "storm", Count: 3},
		{Word: "coast", Count: 2},
		{Word: "begins", Count: 1},
		{Word: "damage", Count: 1},
		{Word: "hits", Count: 1},
		{Word: "recovery", Count: 1},
	}

	if diff := cmp.Diff(want, terms); diff != "" {
		t.Errorf("HeadlineTerms mismatch (-want +got):\n%s", diff)
	}
}

func TestImageURLs(t *testing.T) {
	week := testWeek(t)

	got := ImageURLs(&week.Clusters[0], aggregator.Categories)
	want := []string{"https://img.example/ml.png", "https://img.example/c.png"}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ImageURLs mismatch (-want +got):\n%s", diff)
	}
}

func TestExport(t *testing.T) {
	week := testWeek(t)
	c := &week.Clusters[0]

	var buf bytes.Buffer
	if err := WriteCSV(&buf, c, []aggregator.Category{aggregator.MostlyRight}); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	want := "Title,collection,URL\nInsurers count storm losses,mostly right,https://news.example/Insurers-count-storm-losses\n"
	if buf.String() != want {
		t.Errorf("csv = %q, want %q", buf.String(), want)
	}

	if got := ExportFileName(c, "week 1", false); got != "Storm Hits Coast Towns Hard_week_week 1.csv" {
		t.Errorf("ExportFileName = %q", got)
	}

	if got := ExportFileName(c, "week 1", true); !strings.HasSuffix(got, "_1.csv") {
		t.Errorf("duplicate ExportFileName = %q", got)
	}
}

func TestBuilder_Panel(t *testing.T) {
	week := testWeek(t)

	p := NewBuilder(5).Panel(week, 0, []aggregator.Category{aggregator.MostlyLeft})
	if p.Count != 2 || p.Index != 0 || len(p.Articles) != 2 || len(p.Images) != 1 {
		t.Errorf("unexpected panel: count=%d articles=%d images=%d", p.Count, len(p.Articles), len(p.Images))
	}
}
