package models

// Week is a reporting period and its ordered clusters.
type Week struct {
	Name     string    `json:"name" yaml:"name"`
	Clusters []Cluster `json:"clusters" yaml:"clusters"`
}

// Dataset is the ordered list of weeks loaded from the static source.
type Dataset struct {
	Weeks []Week `json:"weeks" yaml:"weeks"`
}

// WeekNames returns week names in dataset order.
func (d *Dataset) WeekNames() []string {
	names := make([]string, 0, len(d.Weeks))
	for _, w := range d.Weeks {
		names = append(names, w.Name)
	}

	return names
}

// Week looks up a week by name.
func (d *Dataset) Week(name string) (*Week, bool) {
	for i := range d.Weeks {
		if d.Weeks[i].Name == name {
			return &d.Weeks[i], true
		}
	}

	return nil, false
}

// TotalArticles sums article counts over the week's clusters.
func (w *Week) TotalArticles() int {
	total := 0
	for _, c := range w.Clusters {
		total += c.ArticleCounts
	}

	return total
}

// Counts returns the number of weeks, clusters and articles in the dataset.
func (d *Dataset) Counts() (weeks, clusters, articles int) {
	for _, w := range d.Weeks {
		clusters += len(w.Clusters)
		for _, c := range w.Clusters {
			articles += len(c.Articles)
		}
	}

	return len(d.Weeks), clusters, articles
}
