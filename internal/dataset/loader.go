package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"clusterdash/internal/aggregator"
	"clusterdash/internal/logger"
	"clusterdash/internal/models"
	"clusterdash/pkg/metadata"
)

// Supported dataset formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnsupportedFormat is returned for files that are neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// Loader reads a raw dataset file and builds a Context from it.
type Loader struct {
	processor *aggregator.Processor
	logger    *logger.Logger
}

// NewLoader creates a loader that logs through log.
func NewLoader(log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Discard()
	}

	return &Loader{
		processor: aggregator.NewProcessor(log),
		logger:    log,
	}
}

// FormatFromPath picks the decoder from the file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Decode parses raw dataset content.
func Decode(content []byte, format string) (*models.Dataset, error) {
	var ds models.Dataset

	switch format {
	case FormatJSON:
		if err := json.NewDecoder(bytes.NewReader(content)).Decode(&ds); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(content, &ds); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	return &ds, nil
}

// LoadFile reads, aggregates and fingerprints the dataset at path.
func (l *Loader) LoadFile(path string) (*Context, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}

	return l.LoadBytes(path, content, format)
}

// LoadBytes builds a Context from content already in memory. source is only
// recorded in the metadata.
func (l *Loader) LoadBytes(source string, content []byte, format string) (*Context, error) {
	raw, err := Decode(content, format)
	if err != nil {
		return nil, err
	}

	enriched, report, err := l.processor.Process(raw)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", source, err)
	}

	meta := metadata.New(source, content)
	meta.Weeks, meta.Clusters, meta.Articles = enriched.Counts()

	l.logger.Info("dataset loaded",
		"source", source,
		"weeks", meta.Weeks,
		"clusters", meta.Clusters,
		"articles", meta.Articles,
		"defaulted", report.Defaulted(),
		"hash", meta.Short(),
	)

	return &Context{Dataset: enriched, Report: report, Meta: meta}, nil
}
