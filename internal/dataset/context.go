// Package dataset loads the static cluster data and owns the shared, read-only
// dataset context handed to the presentation layer.
package dataset

import (
	"errors"
	"fmt"

	"clusterdash/internal/aggregator"
	"clusterdash/internal/models"
	"clusterdash/pkg/metadata"
)

// Lookup errors.
var (
	ErrWeekNotFound      = errors.New("week not found")
	ErrClusterOutOfRange = errors.New("cluster index out of range")
)

// Context is an enriched dataset plus what is known about how it was built.
// It is never modified after construction.
type Context struct {
	Dataset *models.Dataset
	Report  *aggregator.Report
	Meta    *metadata.Metadata
}

// Weeks returns week names in dataset order.
func (c *Context) Weeks() []string {
	return c.Dataset.WeekNames()
}

// DefaultWeek returns the first week, or "" for an empty dataset.
func (c *Context) DefaultWeek() string {
	if len(c.Dataset.Weeks) == 0 {
		return ""
	}

	return c.Dataset.Weeks[0].Name
}

// Week returns the named week.
func (c *Context) Week(name string) (*models.Week, error) {
	w, ok := c.Dataset.Week(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrWeekNotFound, name)
	}

	return w, nil
}

// Cluster returns the cluster at index within the named week.
func (c *Context) Cluster(week string, index int) (*models.Cluster, error) {
	w, err := c.Week(week)
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(w.Clusters) {
		return nil, fmt.Errorf("%w: %d (week %q has %d clusters)", ErrClusterOutOfRange, index, week, len(w.Clusters))
	}

	return &w.Clusters[index], nil
}
