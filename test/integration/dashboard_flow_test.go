package integration

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"clusterdash/internal/aggregator"
	"clusterdash/internal/cache"
	"clusterdash/internal/config"
	"clusterdash/internal/dataset"
	"clusterdash/internal/server"
	"clusterdash/internal/views"
)

func newDashboard(t *testing.T, path string) (*dataset.Store, http.Handler) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	store := dataset.NewStore(dataset.NewLoader(nil))
	if _, err := store.Load(path); err != nil {
		t.Fatalf("Failed to load dataset: %v", err)
	}

	cfg := config.Default()

	srv, err := server.New(server.Options{
		Store:  store,
		Render: cfg.Render,
		Seed:   cfg.Dataset.SampleSeed,
		Cache:  cache.NewMemoryCache(cfg.Cache.MaxEntries, 0),
	})
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	return store, srv.Router()
}

func fetch(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	return rec
}

func TestDashboardFlow_EveryPageRenders(t *testing.T) {
	store, router := newDashboard(t, samplePath)
	dc := store.Current()

	for _, week := range dc.Weeks() {
		q := "?week=" + strings.ReplaceAll(week, " ", "+")

		if rec := fetch(t, router, "/"+q); rec.Code != http.StatusOK {
			t.Errorf("home %s: status %d", week, rec.Code)
		}

		for _, cat := range []string{"mostly_left", "center", "mostly_right"} {
			if rec := fetch(t, router, "/collection_page"+q+"&collection="+cat); rec.Code != http.StatusOK {
				t.Errorf("collection %s %s: status %d", week, cat, rec.Code)
			}
		}

		w, _ := dc.Week(week)
		for i := range w.Clusters {
			target := "/cluster_page" + q + "&cluster=" + strconv.Itoa(i) + "&compare=0"
			if rec := fetch(t, router, target); rec.Code != http.StatusOK {
				t.Errorf("cluster %s %d: status %d", week, i, rec.Code)
			}
		}
	}
}

func TestDashboardFlow_ExportMatchesSelection(t *testing.T) {
	store, router := newDashboard(t, samplePath)
	dc := store.Current()

	week := dc.DefaultWeek()
	w, _ := dc.Week(week)

	for i := range w.Clusters {
		target := "/export.csv?week=" + strings.ReplaceAll(week, " ", "+") + "&cluster=" + strconv.Itoa(i) + "&collection=center"

		rec := fetch(t, router, target)
		if rec.Code != http.StatusOK {
			t.Fatalf("export cluster %d: status %d", i, rec.Code)
		}

		records, err := csv.NewReader(rec.Body).ReadAll()
		if err != nil {
			t.Fatalf("export cluster %d: invalid csv: %v", i, err)
		}

		want := len(views.Matching(&w.Clusters[i], []aggregator.Category{aggregator.Center}))
		if len(records)-1 != want {
			t.Errorf("export cluster %d: %d rows, want %d", i, len(records)-1, want)
		}
	}
}

func TestDashboardFlow_ReloadSwapsDataset(t *testing.T) {
	content, err := os.ReadFile(samplePath)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "clusters.json")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	store, router := newDashboard(t, path)
	before := store.Current().Meta.Hash

	rec := fetch(t, router, "/healthz")
	if !strings.Contains(rec.Body.String(), before) {
		t.Fatalf("healthz should report the loaded hash: %s", rec.Body.String())
	}

	replacement := `{"weeks": [{"name": "only week", "clusters": [{"name": "Solo", "articles": [{"title": "One", "url": "https://x.example/1", "collection": "center"}]}]}]}`
	if err := os.WriteFile(path, []byte(replacement), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	rec = fetch(t, router, "/")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Solo") {
		t.Errorf("home should serve the reloaded dataset, status %d", rec.Code)
	}

	if strings.Contains(fetch(t, router, "/healthz").Body.String(), before) {
		t.Error("healthz should report the new hash after reload")
	}
}
