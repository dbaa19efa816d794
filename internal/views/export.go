package views

import (
	"encoding/csv"
	"fmt"
	"io"

	"clusterdash/internal/aggregator"
	"clusterdash/internal/models"
)

// ExportHeader is the header row of a cluster export.
var ExportHeader = []string{"Title", "collection", "URL"}

// ExportRecords returns the header followed by one row per selected article.
func ExportRecords(c *models.Cluster, selected []aggregator.Category) [][]string {
	matching := Matching(c, selected)

	records := make([][]string, 0, len(matching)+1)
	records = append(records, ExportHeader)

	for _, a := range matching {
		records = append(records, []string{a.Title, a.Collection, a.URL})
	}

	return records
}

// ExportFileName names the CSV for a cluster. duplicate marks the second set
// of a comparison that shows the same cluster as the first.
func ExportFileName(c *models.Cluster, week string, duplicate bool) string {
	if duplicate {
		return fmt.Sprintf("%s_week_%s_1.csv", c.Name, week)
	}

	return fmt.Sprintf("%s_week_%s.csv", c.Name, week)
}

// WriteCSV writes the cluster export to w.
func WriteCSV(w io.Writer, c *models.Cluster, selected []aggregator.Category) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(ExportRecords(c, selected)); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}

	return nil
}
