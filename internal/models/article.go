// Package models defines the dashboard's data structures.
package models

// Article is a single news article inside a cluster.
type Article struct {
	Title      string `json:"title" yaml:"title"`
	URL        string `json:"url" yaml:"url"`
	Collection string `json:"collection" yaml:"collection"`
}

// SummaryArticle is the headline article chosen for a collection summary.
type SummaryArticle struct {
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

// CollectionSummary describes one collection's slice of a cluster.
type CollectionSummary struct {
	Article          SummaryArticle `json:"article" yaml:"article"`
	ImageURL         string         `json:"image_url" yaml:"image_url"`
	TotalNumArticles int            `json:"total_num_articles" yaml:"total_num_articles"`
}
