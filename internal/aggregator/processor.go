package aggregator

import (
	"fmt"

	"clusterdash/internal/logger"
	"clusterdash/internal/models"
)

// Processor validates a raw dataset and aggregates it.
type Processor struct {
	validator  *Validator
	aggregator *Aggregator
	logger     *logger.Logger
}

// NewProcessor creates a new processor instance.
func NewProcessor(log *logger.Logger) *Processor {
	return &Processor{
		validator:  NewValidator(),
		aggregator: New(),
		logger:     log,
	}
}

// Process returns the enriched dataset and the aggregation report.
func (p *Processor) Process(raw *models.Dataset) (*models.Dataset, *Report, error) {
	// 1. Validate the input data
	if err := p.validator.Validate(raw); err != nil {
		return nil, nil, fmt.Errorf("validation failed: %w", err)
	}

	// 2. Aggregate
	enriched, report := p.aggregator.Aggregate(raw)

	if p.logger != nil {
		for label, count := range report.UnrecognizedLabels() {
			p.logger.Warn("unrecognized collection counted as "+string(MostlyRight),
				"label", label, "articles", count)
		}

		p.logger.Debug("dataset aggregated",
			"weeks", report.Weeks, "clusters", report.Clusters, "articles", report.Articles)
	}

	return enriched, report, nil
}
