package server

import (
	"context"
	"html/template"
	"math/rand/v2"
	"strconv"
	"strings"

	"clusterdash/internal/aggregator"
	"clusterdash/internal/cache"
	"clusterdash/internal/dataset"
	"clusterdash/internal/models"
	"clusterdash/internal/render"
	"clusterdash/internal/views"
)

// Chart sizes that are not configurable.
const (
	pieSize               = 360
	collectionTreemapH    = 400
	homeCollectionTreemap = 500
)

// svg memoizes a rendered chart under the dataset fingerprint and returns it
// ready to inline. The renderers escape all text they emit.
func (s *Server) svg(ctx context.Context, dc *dataset.Context, key []string, draw func() []byte) template.HTML {
	parts := append([]string{dc.Meta.Short()}, key...)

	out, err := s.memo.Do(ctx, cache.Key(parts...), func() ([]byte, error) {
		return draw(), nil
	})
	if err != nil {
		s.logger.Error("chart render failed", "key", strings.Join(key, "/"), "error", err)
		return ""
	}

	return template.HTML(out)
}

// rng returns a generator seeded by the configured seed and stream, so the
// same page always shows the same samples for a given dataset.
func (s *Server) rng(stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(s.seed, stream))
}

func weekStream(dc *dataset.Context, week string) uint64 {
	for i, name := range dc.Weeks() {
		if name == week {
			return uint64(i)
		}
	}

	return 0
}

func categoryIndex(c aggregator.Category) uint64 {
	for i, cat := range aggregator.Categories {
		if cat == c {
			return uint64(i)
		}
	}

	return 0
}

func (s *Server) mainTreemap(ctx context.Context, dc *dataset.Context, w *models.Week) template.HTML {
	return s.svg(ctx, dc, []string{"treemap", w.Name}, func() []byte {
		tiles := s.builder.MainTreemap(w, s.rng(weekStream(dc, w.Name)))

		return render.Treemap(tiles, render.DefaultTreemapOptions(s.render.TreemapWidth, s.render.TreemapHeight))
	})
}

func (s *Server) collectionTreemap(ctx context.Context, dc *dataset.Context, w *models.Week, collection aggregator.Category, headline bool, height int) template.HTML {
	key := []string{"collection-treemap", w.Name, string(collection), strconv.FormatBool(headline), strconv.Itoa(height)}

	return s.svg(ctx, dc, key, func() []byte {
		tiles := s.builder.CollectionTreemap(w, collection, headline)

		return render.Treemap(tiles, render.DefaultTreemapOptions(s.render.TreemapWidth, height))
	})
}

func (s *Server) collectionShare(ctx context.Context, dc *dataset.Context, w *models.Week, collection aggregator.Category) template.HTML {
	return s.svg(ctx, dc, []string{"share", w.Name, string(collection)}, func() []byte {
		return render.Pie(s.builder.CollectionShare(w, collection), pieSize)
	})
}

func selectionKey(selected []aggregator.Category) string {
	parts := make([]string, len(selected))
	for i, c := range selected {
		parts[i] = c.Slug()
	}

	return strings.Join(parts, ",")
}

func (s *Server) selectionPie(ctx context.Context, dc *dataset.Context, week string, p views.Panel) template.HTML {
	key := []string{"selection", week, strconv.Itoa(p.Index), selectionKey(p.Selected)}

	return s.svg(ctx, dc, key, func() []byte {
		return render.Pie(p.Slices, pieSize)
	})
}

func (s *Server) wordCloud(ctx context.Context, dc *dataset.Context, week string, p views.Panel) template.HTML {
	key := []string{"wordcloud", week, strconv.Itoa(p.Index), selectionKey(p.Selected)}

	return s.svg(ctx, dc, key, func() []byte {
		return render.WordCloud(p.Terms, render.DefaultWordCloudOptions(s.render.WordCloudMaxWords))
	})
}

// images returns img sources for urls: inlined data URIs when a fetcher is
// configured, the original urls otherwise. Failed downloads and urls that are
// not http(s) are dropped.
func (s *Server) images(ctx context.Context, dc *dataset.Context, urls []string) []template.URL {
	if len(urls) == 0 {
		return nil
	}

	var sources []string

	if s.fetcher == nil {
		sources = urls
	} else {
		key := cache.Key(append([]string{dc.Meta.Short(), "images"}, urls...)...)

		out, _ := s.memo.Do(ctx, key, func() ([]byte, error) {
			return []byte(strings.Join(s.fetcher.FetchAll(ctx, urls), "\n")), nil
		})

		sources = strings.Split(string(out), "\n")
	}

	var safe []template.URL

	for _, src := range sources {
		if strings.HasPrefix(src, "data:image/") || s.urls.IsValidURL(src) {
			safe = append(safe, template.URL(src))
		}
	}

	return safe
}
