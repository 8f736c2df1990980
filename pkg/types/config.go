package types

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ExtractionBackend selects how raw text is pulled out of a PDF.
type ExtractionBackend string

const (
	// BackendReader parses PDFs in-process.
	BackendReader ExtractionBackend = "reader"
	// BackendPdftotext pipes PDFs through pdftotext in a container.
	BackendPdftotext ExtractionBackend = "pdftotext"
)

// PathsConfig holds the conventional artifact locations.
type PathsConfig struct {
	// Catalog is the folder/paper list (read, then rewritten with affiliations).
	Catalog string `json:"catalog" yaml:"catalog" mapstructure:"catalog" validate:"required"`

	// PapersDir contains one subdirectory per catalog folder slug.
	PapersDir string `json:"papers_dir" yaml:"papers_dir" mapstructure:"papers_dir" validate:"required"`

	// SearchIndex is the full-text payload written by the index run.
	SearchIndex string `json:"search_index" yaml:"search_index" mapstructure:"search_index" validate:"required"`

	// Vocabulary is the controlled affiliation list, one name per line.
	Vocabulary string `json:"vocabulary" yaml:"vocabulary" mapstructure:"vocabulary" validate:"required"`

	// Synonyms is an optional YAML file of extra aliases keyed by the
	// stripped canonical name.
	Synonyms string `json:"synonyms,omitempty" yaml:"synonyms,omitempty" mapstructure:"synonyms"`
}

// IndexConfig holds settings for the index and title runs.
type IndexConfig struct {
	// Workers bounds concurrent PDF extraction (default 1).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers" validate:"min=1,max=64"`

	// Backend selects the text extraction backend: reader or pdftotext.
	Backend ExtractionBackend `json:"backend" yaml:"backend" mapstructure:"backend" validate:"oneof=reader pdftotext"`

	// PdftotextImage is the container image used by the pdftotext backend.
	PdftotextImage string `json:"pdftotext_image" yaml:"pdftotext_image" mapstructure:"pdftotext_image"`
}

// StoreConfig holds settings for the SQLite paper store.
type StoreConfig struct {
	// Dir is the directory holding papers.db and export files.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir" validate:"required"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results" validate:"min=0"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format string `json:"format" yaml:"format" mapstructure:"format" validate:"oneof=console json"`
	Output string `json:"output" yaml:"output" mapstructure:"output" validate:"oneof=stdout stderr"`
}

// MetricsConfig holds the optional Prometheus textfile output.
type MetricsConfig struct {
	// Textfile, when set, receives run metrics in the text exposition format.
	Textfile string `json:"textfile,omitempty" yaml:"textfile,omitempty" mapstructure:"textfile"`
}

// Config groups all settings for paper-index.
type Config struct {
	Paths   PathsConfig   `json:"paths" yaml:"paths" mapstructure:"paths"`
	Index   IndexConfig   `json:"index" yaml:"index" mapstructure:"index"`
	Store   StoreConfig   `json:"store" yaml:"store" mapstructure:"store"`
	Logging LoggingConfig `json:"logging" yaml:"logging" mapstructure:"logging"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics" mapstructure:"metrics"`
}

// DefaultConfig returns the conventional layout of the site repository.
func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			Catalog:     "public/papers.json",
			PapersDir:   "public/papers",
			SearchIndex: "public/papers-search.json",
			Vocabulary:  "public/affiliation.txt",
		},
		Index: IndexConfig{
			Workers:        1,
			Backend:        BackendReader,
			PdftotextImage: "pdftotext:latest",
		},
		Store: StoreConfig{
			Dir:        "index",
			MaxResults: 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
	}
}

var validate = validator.New()

// Validate checks field constraints and reports every violation at once.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validating config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
