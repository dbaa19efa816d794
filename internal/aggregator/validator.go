package aggregator

import (
	"errors"
	"fmt"
	"strings"

	"clusterdash/internal/models"
)

// Dataset validation errors.
var (
	ErrNilDataset      = errors.New("dataset is nil")
	ErrNoWeeks         = errors.New("dataset contains no weeks")
	ErrEmptyWeekName   = errors.New("week name is empty")
	ErrDuplicateWeek   = errors.New("duplicate week name")
	ErrEmptyCollection = errors.New("article collection is empty")
)

// Validator checks the structural constraints the aggregator relies on.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks that the dataset has uniquely named weeks and that every
// article carries a non-empty collection label. Label spelling is not checked
// here: unrecognized labels are a reported fallback, not an error.
func (v *Validator) Validate(ds *models.Dataset) error {
	if ds == nil {
		return ErrNilDataset
	}

	if len(ds.Weeks) == 0 {
		return ErrNoWeeks
	}

	seen := make(map[string]bool, len(ds.Weeks))

	for wi, week := range ds.Weeks {
		if strings.TrimSpace(week.Name) == "" {
			return fmt.Errorf("%w at index %d", ErrEmptyWeekName, wi)
		}

		if seen[week.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateWeek, week.Name)
		}

		seen[week.Name] = true

		for ci, c := range week.Clusters {
			for ai, a := range c.Articles {
				if strings.TrimSpace(a.Collection) == "" {
					return fmt.Errorf("%w: week %q cluster %d article %d", ErrEmptyCollection, week.Name, ci, ai)
				}
			}
		}
	}

	return nil
}
