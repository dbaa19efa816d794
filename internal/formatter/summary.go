package formatter

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"clusterdash/internal/aggregator"
	"clusterdash/internal/dataset"
	"clusterdash/internal/models"
)

// columnAbbrev shortens collection labels for table headers.
var columnAbbrev = map[aggregator.Category]string{
	aggregator.MostlyLeft:    "ML",
	aggregator.SomewhatLeft:  "SL",
	aggregator.Center:        "C",
	aggregator.SomewhatRight: "SR",
	aggregator.MostlyRight:   "MR",
}

// WeekTable returns a markdown table with one row per cluster of the week.
func WeekTable(week *models.Week) string {
	header := []string{"#", "Cluster", "Articles"}
	for _, c := range aggregator.Categories {
		header = append(header, columnAbbrev[c])
	}

	rows := make([][]string, 0, len(week.Clusters)+1)

	for i, c := range week.Clusters {
		row := []string{strconv.Itoa(i), c.Name, strconv.Itoa(c.ArticleCounts)}
		for _, cat := range aggregator.Categories {
			row = append(row, strconv.Itoa(c.Distribution[string(cat)]))
		}

		rows = append(rows, row)
	}

	total := []string{"", "Total", strconv.Itoa(week.TotalArticles())}
	for _, cat := range aggregator.Categories {
		n := 0
		for _, c := range week.Clusters {
			n += c.Distribution[string(cat)]
		}

		total = append(total, strconv.Itoa(n))
	}

	return Table(header, append(rows, total))
}

// Summary writes dataset summaries to a terminal.
type Summary struct {
	// Styled enables coloured swatches. Disable it when output is not a terminal.
	Styled bool
}

// Legend returns one swatch per collection, e.g. "[ML] mostly left".
func (s Summary) Legend() string {
	parts := make([]string, 0, len(aggregator.Categories))
	for _, c := range aggregator.Categories {
		parts = append(parts, s.swatch(columnAbbrev[c], c.Color())+" "+string(c))
	}

	return strings.Join(parts, "  ")
}

func (s Summary) swatch(text, color string) string {
	if !s.Styled {
		return "[" + text + "]"
	}

	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color(color)).
		Padding(0, 1).
		Render(text)
}

// Write prints the dataset header, the legend and the table of each requested
// week. No weeks means every week.
func (s Summary) Write(w io.Writer, ctx *dataset.Context, weeks ...string) error {
	if len(weeks) == 0 {
		weeks = ctx.Weeks()
	}

	title := "Dataset " + ctx.Meta.String()
	if s.Styled {
		title = lipgloss.NewStyle().Bold(true).Render(title)
	}

	fmt.Fprintln(w, title)
	fmt.Fprintln(w, s.Legend())

	for _, name := range weeks {
		week, err := ctx.Week(name)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "\n## %s\n\n%s\n", week.Name, WeekTable(week))
	}

	if labels := ctx.Report.UnrecognizedLabels(); len(labels) > 0 {
		names := make([]string, 0, len(labels))
		for l := range labels {
			names = append(names, l)
		}
		sort.Strings(names)

		fmt.Fprintf(w, "\n%d article(s) with unrecognized collections counted as %s:\n", ctx.Report.Defaulted(), aggregator.MostlyRight)

		for _, l := range names {
			fmt.Fprintf(w, "  %q: %d\n", l, labels[l])
		}
	}

	return nil
}
