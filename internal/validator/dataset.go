// Package validator lints a loaded dataset beyond the structural checks
// needed to aggregate it.
package validator

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"clusterdash/internal/aggregator"
	"clusterdash/internal/dataset"
	"clusterdash/internal/models"
	"clusterdash/pkg/metadata"
	"clusterdash/pkg/utils"
)

// ValidationError represents a validation finding with its location.
type ValidationError struct {
	Week    string
	Cluster int
	Article int
	Field   string
	Value   string
	Message string
}

// Location formats where the finding was made.
func (e ValidationError) Location() string {
	var parts []string

	if e.Week != "" {
		parts = append(parts, fmt.Sprintf("week %q", e.Week))
	}

	if e.Cluster >= 0 {
		parts = append(parts, fmt.Sprintf("cluster %d", e.Cluster))
	}

	if e.Article >= 0 {
		parts = append(parts, fmt.Sprintf("article %d", e.Article))
	}

	return strings.Join(parts, ", ")
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
	Stats    ValidationStats
	IsValid  bool
}

// ValidationStats contains validation statistics.
type ValidationStats struct {
	Weeks              int
	Clusters           int
	Articles           int
	DefaultedArticles  int
	InvalidURLs        int
	MissingSummaries   int
	UnknownSummaryKeys int
}

// Options tunes how strict validation is.
type Options struct {
	// Strict reports unrecognized collection labels as errors instead of warnings.
	Strict bool
}

// DatasetValidator lints an aggregated dataset.
type DatasetValidator struct {
	opts Options
	urls *utils.HTTPHelper
}

// NewDatasetValidator creates a new validator.
func NewDatasetValidator(opts Options) *DatasetValidator {
	return &DatasetValidator{opts: opts, urls: utils.NewHTTPHelper()}
}

// Validate checks the dataset in ctx and the aggregation report it was built with.
func (v *DatasetValidator) Validate(ctx *dataset.Context) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	result.Stats.Weeks, result.Stats.Clusters, result.Stats.Articles = ctx.Dataset.Counts()

	for _, week := range ctx.Dataset.Weeks {
		if len(week.Clusters) == 0 {
			result.warn(ValidationError{Week: week.Name, Cluster: -1, Article: -1, Message: "week has no clusters"})
		}

		for ci := range week.Clusters {
			v.validateCluster(result, week.Name, ci, &week.Clusters[ci])
		}
	}

	if ctx.Report != nil {
		for _, u := range ctx.Report.Unrecognized {
			result.Stats.DefaultedArticles++

			finding := ValidationError{
				Week:    u.Week,
				Cluster: u.Cluster,
				Article: u.Article,
				Field:   "collection",
				Value:   u.Label,
				Message: "unrecognized collection counted as " + string(aggregator.MostlyRight),
			}

			if v.opts.Strict {
				result.fail(finding)
			} else {
				result.warn(finding)
			}
		}
	}

	return result
}

// ValidateIntegrity checks that content hashes to the expected fingerprint.
func (v *DatasetValidator) ValidateIntegrity(expectedHash string, content []byte) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	meta := &metadata.Metadata{Hash: strings.ToLower(strings.TrimSpace(expectedHash))}
	if valid, err := meta.Verify(content); !valid {
		result.fail(ValidationError{Cluster: -1, Article: -1, Message: fmt.Sprintf("integrity check failed: %v", err)})
	}

	return result
}

func (v *DatasetValidator) validateCluster(result *ValidationResult, week string, index int, c *models.Cluster) {
	at := func(article int, field, value, msg string) ValidationError {
		return ValidationError{Week: week, Cluster: index, Article: article, Field: field, Value: value, Message: msg}
	}

	if strings.TrimSpace(c.Name) == "" {
		result.fail(at(-1, "name", "", "cluster name is empty"))
	}

	if len(c.Articles) == 0 {
		result.warn(at(-1, "articles", "", "cluster has no articles"))
	}

	for ai, a := range c.Articles {
		if strings.TrimSpace(a.Title) == "" {
			result.fail(at(ai, "title", "", "article title is empty"))
		}

		if !v.urls.IsValidURL(a.URL) {
			result.Stats.InvalidURLs++
			result.fail(at(ai, "url", a.URL, "article url is not an absolute http(s) url"))
		}
	}

	keys := make([]string, 0, len(c.Summaries))
	for key := range c.Summaries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, ok := aggregator.Lookup(key); !ok {
			result.Stats.UnknownSummaryKeys++
			result.warn(at(-1, "summaries", key, "summary for unknown collection is never shown"))

			continue
		}

		if img := c.Summaries[key].ImageURL; img != "" && !v.urls.IsValidURL(img) {
			result.Stats.InvalidURLs++
			result.fail(at(-1, "image_url", img, "summary image url is not an absolute http(s) url"))
		}
	}

	for _, cat := range aggregator.Categories {
		if c.Distribution[string(cat)] == 0 {
			continue
		}

		if _, ok := c.Summary(cat.Slug()); !ok {
			result.Stats.MissingSummaries++
			result.warn(at(-1, "summaries", cat.Slug(), "collection has articles but no summary; cluster name is used as headline"))
		}
	}

	if s, ok := c.Summary(aggregator.MostlyLeft.Slug()); !ok || s.TotalNumArticles <= 0 {
		result.warn(at(-1, "total_num_articles", "", "no mostly-left article total; percentages use the cluster's own count"))
	}
}

func (r *ValidationResult) fail(e ValidationError) {
	r.IsValid = false
	r.Errors = append(r.Errors, e)
}

func (r *ValidationResult) warn(e ValidationError) {
	r.Warnings = append(r.Warnings, e)
}

// String returns string representation of validation result.
func (r *ValidationResult) String() string {
	status := "✅ VALID"
	if !r.IsValid {
		status = "❌ INVALID"
	}

	return fmt.Sprintf(
		"%s | Weeks: %d | Clusters: %d | Articles: %d | Defaulted: %d | Errors: %d | Warnings: %d",
		status,
		r.Stats.Weeks,
		r.Stats.Clusters,
		r.Stats.Articles,
		r.Stats.DefaultedArticles,
		len(r.Errors),
		len(r.Warnings),
	)
}

// PrintErrors prints validation errors in readable format.
func (r *ValidationResult) PrintErrors(w io.Writer) {
	if len(r.Errors) == 0 {
		return
	}

	fmt.Fprintln(w, "❌ Validation Errors:")
	printFindings(w, r.Errors)
}

// PrintWarnings prints validation warnings.
func (r *ValidationResult) PrintWarnings(w io.Writer) {
	if len(r.Warnings) == 0 {
		return
	}

	fmt.Fprintln(w, "⚠️  Validation Warnings:")
	printFindings(w, r.Warnings)
}

func printFindings(w io.Writer, findings []ValidationError) {
	for _, f := range findings {
		fmt.Fprintf(w, "  %s", f.Location())

		if f.Field != "" {
			fmt.Fprintf(w, " [%s]", f.Field)
		}

		fmt.Fprintf(w, ": %s\n", f.Message)

		if f.Value != "" {
			fmt.Fprintf(w, "    Found: %q\n", f.Value)
		}
	}
}
