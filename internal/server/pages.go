package server

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"clusterdash/internal/aggregator"
	"clusterdash/internal/dataset"
	"clusterdash/internal/models"
	"clusterdash/internal/views"
)

// Page messages.
const (
	msgInvalidWeek       = "Select a valid week!"
	msgInvalidCluster    = "Select a valid cluster!"
	msgInvalidCollection = "Select a valid collection!"
)

// RegisterPageRoutes registers the HTML pages.
func (s *Server) RegisterPageRoutes(r *gin.Engine) {
	r.GET("/", s.handleHome)
	r.GET("/collection_page", s.handleCollectionPage)
	r.GET("/cluster_page", s.handleClusterPage)
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type legendItem struct {
	Label  string
	Color  string
	Anchor string
	Link   string
}

type collectionSection struct {
	legendItem
	Treemap template.HTML
	Empty   bool
}

type homePage struct {
	Title       string
	Weeks       []option
	Week        string
	WeekTitle   string
	Treemap     template.HTML
	Legend      []legendItem
	Collections []collectionSection
}

func weekOptions(dc *dataset.Context, selected string) []option {
	weeks := dc.Weeks()
	opts := make([]option, 0, len(weeks))

	for _, w := range weeks {
		opts = append(opts, option{Value: w, Label: w, Selected: w == selected})
	}

	return opts
}

func (s *Server) collectionOptions(selected []aggregator.Category) []option {
	set := make(map[aggregator.Category]bool, len(selected))
	for _, c := range selected {
		set[c] = true
	}

	opts := make([]option, 0, len(aggregator.Categories))
	for _, c := range aggregator.Categories {
		opts = append(opts, option{Value: string(c), Label: s.builder.DisplayName(string(c)), Selected: set[c]})
	}

	return opts
}

// resolveWeek returns the requested week, the first week when none was
// requested, or writes the invalid-week page.
func (s *Server) resolveWeek(c *gin.Context, dc *dataset.Context) (*models.Week, bool) {
	name := c.Query("week")
	if name == "" {
		name = dc.DefaultWeek()
	}

	w, err := dc.Week(name)
	if err != nil {
		s.renderError(c, http.StatusNotFound, msgInvalidWeek)
		return nil, false
	}

	return w, true
}

func (s *Server) legend(week string) []legendItem {
	items := make([]legendItem, 0, len(aggregator.Categories))

	for _, cat := range aggregator.Categories {
		items = append(items, legendItem{
			Label:  s.builder.DisplayName(string(cat)),
			Color:  cat.Color(),
			Anchor: "clusters-for-" + url.PathEscape(cat.Slug()),
			Link:   views.CollectionLink(week, cat),
		})
	}

	return items
}

func (s *Server) handleHome(c *gin.Context) {
	dc, ok := s.current(c)
	if !ok {
		return
	}

	w, ok := s.resolveWeek(c, dc)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	week := w.Name
	legend := s.legend(week)

	page := homePage{
		Title:     "Media Cloud Election Dashboard",
		Weeks:     weekOptions(dc, week),
		Week:      week,
		WeekTitle: s.builder.DisplayName(week),
		Treemap:   s.mainTreemap(ctx, dc, w),
		Legend:    legend,
	}

	for i, cat := range aggregator.Categories {
		page.Collections = append(page.Collections, collectionSection{
			legendItem: legend[i],
			Treemap:    s.collectionTreemap(ctx, dc, w, cat, true, homeCollectionTreemap),
			Empty:      len(s.builder.CollectionTreemap(w, cat, true)) == 0,
		})
	}

	s.renderPage(c, http.StatusOK, "home.html", page)
}

type historySection struct {
	Week     string
	Title    string
	Selected bool
	Treemap  template.HTML
}

type collectionPage struct {
	Title       string
	Collection  string
	Display     string
	Color       string
	Collections []option
	Weeks       []option
	Week        string
	HomeLink    string
	Share       template.HTML
	Treemap     template.HTML
	Samples     []views.ArticleRow
	History     []historySection
}

func (s *Server) handleCollectionPage(c *gin.Context) {
	dc, ok := s.current(c)
	if !ok {
		return
	}

	raw := c.DefaultQuery("collection", string(aggregator.MostlyLeft))

	collection, err := aggregator.ParseCategory(raw)
	if err != nil {
		s.renderError(c, http.StatusBadRequest, msgInvalidCollection)
		return
	}

	w, ok := s.resolveWeek(c, dc)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	week := w.Name

	page := collectionPage{
		Title:       "Clusters for " + s.builder.DisplayName(string(collection)),
		Collection:  string(collection),
		Display:     s.builder.DisplayName(string(collection)),
		Color:       collection.Color(),
		Collections: s.collectionOptions([]aggregator.Category{collection}),
		Weeks:       weekOptions(dc, week),
		Week:        week,
		HomeLink:    views.HomeLink(week),
		Share:       s.collectionShare(ctx, dc, w, collection),
		Treemap:     s.collectionTreemap(ctx, dc, w, collection, false, collectionTreemapH),
		Samples: s.builder.CollectionSamples(w, collection, s.render.SampleSize,
			s.rng(weekStream(dc, week)<<8|categoryIndex(collection))),
	}

	for _, h := range s.builder.CollectionHistory(dc.Dataset, collection, week) {
		page.History = append(page.History, historySection{
			Week:     h.Week.Name,
			Title:    s.builder.DisplayName(h.Week.Name),
			Selected: h.Selected,
			Treemap:  s.collectionTreemap(ctx, dc, h.Week, collection, false, collectionTreemapH),
		})
	}

	s.renderPage(c, http.StatusOK, "collection.html", page)
}

type hiddenField struct {
	Name  string
	Value string
}

// panelForm is the selector of one set on the cluster page. Each set has its
// own form that carries the other set's state in hidden fields.
type panelForm struct {
	Heading     string
	ClusterKey  string
	SelectKey   string
	Submit      string
	Clusters    []option
	Collections []option
	Hidden      []hiddenField
}

type panelView struct {
	views.Panel
	CSVLink   string
	Pie       template.HTML
	WordCloud template.HTML
	ImageSrcs []template.URL
}

type clusterPage struct {
	Title      string
	Week       string
	Weeks      []option
	FirstForm  panelForm
	First      panelView
	SecondForm panelForm
	Second     *panelView
}

var errBadIndex = errors.New("bad cluster index")

func parseIndex(raw string, n int) (int, error) {
	i, err := strconv.Atoi(raw)
	if err != nil || i < 0 || i >= n {
		return 0, errBadIndex
	}

	return i, nil
}

func exportLink(week string, index int, selected []aggregator.Category, duplicate bool) string {
	q := url.Values{}
	q.Set("week", week)
	q.Set("cluster", strconv.Itoa(index))

	for _, cat := range selected {
		q.Add("collection", string(cat))
	}

	if duplicate {
		q.Set("duplicate", "1")
	}

	return "/export.csv?" + q.Encode()
}

func selectionFields(week, clusterKey string, index int, selectKey string, selected []aggregator.Category) []hiddenField {
	fields := []hiddenField{
		{Name: "week", Value: week},
		{Name: clusterKey, Value: strconv.Itoa(index)},
	}

	for _, cat := range selected {
		fields = append(fields, hiddenField{Name: selectKey, Value: string(cat)})
	}

	return fields
}

func (s *Server) clusterOptions(clusters int, names func(int) string, selected int) []option {
	opts := make([]option, 0, clusters)
	for i := range clusters {
		opts = append(opts, option{Value: strconv.Itoa(i), Label: names(i), Selected: i == selected})
	}

	return opts
}

func (s *Server) handleClusterPage(c *gin.Context) {
	dc, ok := s.current(c)
	if !ok {
		return
	}

	w, ok := s.resolveWeek(c, dc)
	if !ok {
		return
	}

	week := w.Name
	if len(w.Clusters) == 0 {
		s.renderError(c, http.StatusNotFound, "This week has no clusters.")
		return
	}

	index, err := parseIndex(c.DefaultQuery("cluster", "0"), len(w.Clusters))
	if err != nil {
		s.renderError(c, http.StatusBadRequest, msgInvalidCluster)
		return
	}

	firstRaw := c.QueryArray("collection")

	selected, err := views.ParseSelection(firstRaw)
	if err != nil {
		s.renderError(c, http.StatusBadRequest, msgInvalidCollection)
		return
	}

	// The second set starts from the first set's request until compared.
	other, otherSelected := index, selected

	rawCompare, compare := c.GetQuery("compare")
	if compare {
		if other, err = parseIndex(rawCompare, len(w.Clusters)); err != nil {
			s.renderError(c, http.StatusBadRequest, msgInvalidCluster)
			return
		}

		if otherRaw, given := c.GetQueryArray("compare_collection"); given {
			if otherSelected, err = views.ParseSelection(otherRaw); err != nil {
				s.renderError(c, http.StatusBadRequest, msgInvalidCollection)
				return
			}
		}
	}

	names := func(i int) string { return w.Clusters[i].Name }

	page := clusterPage{
		Title: "Compare Media Coverage",
		Week:  week,
		Weeks: weekOptions(dc, week),
		FirstForm: panelForm{
			Heading:     "First Set",
			ClusterKey:  "cluster",
			SelectKey:   "collection",
			Submit:      "Update",
			Clusters:    s.clusterOptions(len(w.Clusters), names, index),
			Collections: s.collectionOptions(selected),
		},
		First: s.panel(c, dc, w, index, selected, false),
		SecondForm: panelForm{
			Heading:     "Second Set",
			ClusterKey:  "compare",
			SelectKey:   "compare_collection",
			Submit:      "Compare",
			Clusters:    s.clusterOptions(len(w.Clusters), names, other),
			Collections: s.collectionOptions(otherSelected),
			Hidden:      selectionFields(week, "cluster", index, "collection", selected),
		},
	}

	page.FirstForm.Hidden = []hiddenField{{Name: "week", Value: week}}

	if compare {
		page.FirstForm.Hidden = selectionFields(week, "compare", other, "compare_collection", otherSelected)

		second := s.panel(c, dc, w, other, otherSelected, other == index)
		page.Second = &second
	}

	s.renderPage(c, http.StatusOK, "cluster.html", page)
}

func (s *Server) panel(c *gin.Context, dc *dataset.Context, w *models.Week, index int, selected []aggregator.Category, duplicate bool) panelView {
	ctx := c.Request.Context()
	p := s.builder.Panel(w, index, selected)

	return panelView{
		Panel:     p,
		CSVLink:   exportLink(w.Name, index, selected, duplicate),
		Pie:       s.selectionPie(ctx, dc, w.Name, p),
		WordCloud: s.wordCloud(ctx, dc, w.Name, p),
		ImageSrcs: s.images(ctx, dc, p.Images),
	}
}
